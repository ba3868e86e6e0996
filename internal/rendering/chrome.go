package rendering

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// A4 in inches, with uniform half-inch margins
const (
	paperWidthIn  = 8.27
	paperHeightIn = 11.69
	marginIn      = 0.5
)

// settleScript resolves once web fonts are ready and every image and linked
// stylesheet has finished loading or failed. Markup set with SetDocumentContent
// produces no lifecycle events, so the network is checked from the page.
const settleScript = `Promise.all([
	document.fonts.ready,
	...Array.from(document.images).filter(img => !img.complete).map(img =>
		new Promise(resolve => { img.addEventListener("load", resolve); img.addEventListener("error", resolve); })),
	...Array.from(document.querySelectorAll("link[rel=stylesheet]")).filter(l => !l.sheet).map(l =>
		new Promise(resolve => { l.addEventListener("load", resolve); l.addEventListener("error", resolve); })),
]).then(() => true)`

// DefaultRenderTimeout bounds one markup-to-PDF conversion
const DefaultRenderTimeout = 60 * time.Second

// Engine converts markup into a fixed-layout paginated document
type Engine interface {
	PrintPDF(ctx context.Context, markup string) ([]byte, error)
}

// ChromeEngine prints markup to PDF with headless Chrome
type ChromeEngine struct {
	execPath string
	timeout  time.Duration
}

// NewChromeEngine creates an engine. An empty execPath lets chromedp find
// Chrome on the PATH; a zero timeout uses DefaultRenderTimeout.
func NewChromeEngine(execPath string, timeout time.Duration) *ChromeEngine {
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}
	return &ChromeEngine{execPath: execPath, timeout: timeout}
}

// PrintPDF loads markup into a fresh page, waits until web fonts, images and
// stylesheets have loaded, and prints it on A4 with backgrounds.
func (e *ChromeEngine) PrintPDF(ctx context.Context, markup string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if e.execPath != "" {
		opts = append(opts, chromedp.ExecPath(e.execPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, e.timeout)
	defer cancel()

	var (
		pdf     []byte
		settled bool
	)
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("get frame tree: %w", err)
			}
			return page.SetDocumentContent(tree.Frame.ID, markup).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(settleScript, &settled,
			func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
				return p.WithAwaitPromise(true)
			}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidthIn).
				WithPaperHeight(paperHeightIn).
				WithMarginTop(marginIn).
				WithMarginBottom(marginIn).
				WithMarginLeft(marginIn).
				WithMarginRight(marginIn).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chrome print failed: %w", err)
	}
	return pdf, nil
}

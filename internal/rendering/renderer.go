package rendering

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/jobfit/internal/observability"
	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"
)

// Result is one rendered document
type Result struct {
	Markup    string `json:"markup"`
	Document  []byte `json:"-"`
	Filename  string `json:"filename"`
	PageCount int    `json:"pageCount"`
}

// Renderer produces preview markup and the downloadable PDF for a document
type Renderer struct {
	engine Engine
	logger logrus.FieldLogger
}

// NewRenderer creates a renderer around engine.
func NewRenderer(engine Engine, logger logrus.FieldLogger) *Renderer {
	return &Renderer{engine: engine, logger: observability.OrDiscard(logger)}
}

// Render builds the markup, prints it and verifies the produced PDF. Engine
// failures are returned as *RenderError.
func (r *Renderer) Render(ctx context.Context, in Input) (*Result, error) {
	markup, err := RenderMarkup(in)
	if err != nil {
		return nil, err
	}
	kind := string(in.Kind)

	doc, err := r.engine.PrintPDF(ctx, markup)
	if err != nil {
		return nil, &RenderError{Kind: kind, Message: "rendering engine failed", Cause: err}
	}
	if len(doc) == 0 {
		return nil, &RenderError{Kind: kind, Message: "rendering engine returned an empty document"}
	}

	pages, err := CountPages(doc)
	if err != nil {
		return nil, &RenderError{Kind: kind, Message: "rendering engine returned an unreadable document", Cause: err}
	}

	result := &Result{
		Markup:    markup,
		Document:  doc,
		Filename:  in.Filename(),
		PageCount: pages,
	}
	r.logger.WithFields(logrus.Fields{
		"document_kind": kind,
		"filename":      result.Filename,
		"pages":         pages,
		"bytes":         len(doc),
	}).Debug("document rendered")
	return result, nil
}

// CountPages returns the number of pages in a PDF.
func CountPages(doc []byte) (n int, err error) {
	// the pdf reader panics on some truncated inputs
	defer func() {
		if rec := recover(); rec != nil {
			n, err = 0, fmt.Errorf("malformed pdf: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return 0, err
	}
	n = reader.NumPage()
	if n == 0 {
		return 0, errors.New("pdf has no pages")
	}
	return n, nil
}

package fetch

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/jobfit/internal/observability"
)

// MinContentLength is the extracted text length below which a page is
// assumed to be rendered client-side and the browser is tried.
const MinContentLength = 500

// Browser renders a page with scripts executed and returns its HTML.
type Browser interface {
	Render(ctx context.Context, url string) (string, error)
}

// JobFetcher turns a job posting URL into plain description text.
type JobFetcher struct {
	opts    *Options
	browser Browser
	logger  logrus.FieldLogger
}

// NewJobFetcher creates a fetcher. browser may be nil to disable the
// rendering fallback.
func NewJobFetcher(opts *Options, browser Browser, logger logrus.FieldLogger) *JobFetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JobFetcher{opts: opts, browser: browser, logger: observability.OrDiscard(logger)}
}

// JobDescription fetches url and extracts the posting text using the
// selectors for its job board.
func (f *JobFetcher) JobDescription(ctx context.Context, url string) (string, error) {
	log := f.logger.WithFields(logrus.Fields{"url": url, "platform": DetectPlatform(url)})
	content, noise := SelectorsFor(url)

	result, err := URL(ctx, url, f.opts)
	if err != nil {
		return "", err
	}
	text, err := ExtractMainText(result.HTML, content, noise...)
	if err != nil {
		return "", &Error{URL: url, Message: "content extraction failed", Cause: err}
	}
	log.WithField("chars", len(text)).Debug("extracted job posting")

	if len(text) < MinContentLength && f.browser != nil {
		log.Debug("job posting text is short, rendering in browser")
		rendered, err := f.browser.Render(ctx, url)
		if err != nil {
			log.WithError(err).Warn("browser rendering failed, keeping fetched text")
		} else if browserText, err := ExtractMainText(rendered, content, noise...); err != nil {
			log.WithError(err).Warn("browser content extraction failed")
		} else if len(browserText) > len(text) {
			text = browserText
		}
	}

	if text == "" {
		return "", &Error{URL: url, Message: fmt.Sprintf("no job description found in %d bytes of HTML", len(result.HTML))}
	}
	return text, nil
}

package parsing

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	htmlTagPattern    = regexp.MustCompile(`(?i)<(p|div|br|li|ul|ol|h[1-6]|span|strong|b|em|section|article|body|html)\b[^>]*>`)
	spacePattern      = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	blankLinesPattern = regexp.MustCompile(`\n{3,}`)
)

// CleanJobText normalizes a pasted job description. HTML fragments (as copied
// from job boards) are reduced to their text with list items kept as "- "
// bullets; whitespace is collapsed and runs of blank lines shortened.
func CleanJobText(raw string) string {
	text := raw
	if htmlTagPattern.MatchString(raw) {
		if extracted, err := htmlToText(raw); err == nil {
			text = extracted
		}
	}
	return normalizeWhitespace(text)
}

func htmlToText(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, noscript, nav, footer, iframe, svg").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("\n- ")
	})
	doc.Find("p, div, h1, h2, h3, h4, h5, h6, ul, ol, section, article, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n\n")
	})

	return doc.Text(), nil
}

func normalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spacePattern.ReplaceAllString(line, " "))
	}

	text = strings.Join(lines, "\n")
	text = blankLinesPattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

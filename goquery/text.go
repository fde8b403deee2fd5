package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/searchqa"
)

// Ensure TextExtractor implements searchqa.Extractor at compile time.
var _ searchqa.Extractor = (*TextExtractor)(nil)

// noiseSelector matches elements that never carry answer text.
const noiseSelector = "script, style, noscript, template, svg, iframe, form, nav, header, footer, aside, [role=navigation], [aria-hidden=true]"

// contentSelectors are tried in order before falling back to the body.
var contentSelectors = []string{"main", "[role=main]", "article", "#content", ".content"}

// TextExtractor keeps the whole visible body minus obvious chrome. It is
// the last resort after the main-content extractors find nothing.
type TextExtractor struct{}

// NewTextExtractor creates a new TextExtractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Extract implements searchqa.Extractor.
func (e *TextExtractor) Extract(html string) (*searchqa.ExtractResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, searchqa.Errorf(searchqa.EINVALID, "failed to parse HTML: %v", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find(noiseSelector).Remove()

	body := doc.Find("body")
	for _, selector := range contentSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 && strings.TrimSpace(sel.Text()) != "" {
			body = sel
			break
		}
	}

	content, err := body.Html()
	if err != nil {
		return nil, searchqa.Errorf(searchqa.EINTERNAL, "failed to render HTML: %v", err)
	}
	if strings.TrimSpace(body.Text()) == "" {
		content = ""
	}

	return &searchqa.ExtractResult{Title: title, ContentHTML: strings.TrimSpace(content)}, nil
}

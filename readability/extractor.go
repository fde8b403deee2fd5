// Package readability extracts the main content of result pages with
// github.com/go-shiori/go-readability. It complements trafilatura on
// article-style pages that trafilatura rejects.
package readability

import (
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/searchqa"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements searchqa.Extractor at compile time.
var _ searchqa.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability.
type Extractor struct {
	minText int
}

// NewExtractor creates a new Extractor. Articles whose text is shorter than
// minText runes yield empty content.
func NewExtractor(minText int) *Extractor {
	return &Extractor{minText: minText}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*searchqa.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, searchqa.Errorf(searchqa.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, searchqa.Errorf(searchqa.ENOTFOUND, "readability: %v", err)
	}

	result := &searchqa.ExtractResult{Title: strings.TrimSpace(article.Title)}
	if utf8.RuneCountInString(strings.TrimSpace(article.TextContent)) >= e.minText {
		result.ContentHTML = article.Content
	}
	return result, nil
}

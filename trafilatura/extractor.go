// Package trafilatura extracts the main content of result pages with
// github.com/markusmobius/go-trafilatura.
package trafilatura

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/searchqa"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements searchqa.Extractor at compile time.
var _ searchqa.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura. Comments are excluded; a page whose main
// text is shorter than the configured minimum yields empty content so the
// caller can try the next extractor.
type Extractor struct {
	language string
	minText  int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLanguage restricts extraction to pages in the given ISO 639-1 language.
func WithLanguage(code string) Option {
	return func(e *Extractor) {
		e.language = code
	}
}

// WithMinText sets the minimum main text length in runes.
func WithMinText(runes int) Option {
	return func(e *Extractor) {
		e.minText = runes
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*searchqa.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, searchqa.Errorf(searchqa.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
		TargetLanguage:  e.language,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, searchqa.Errorf(searchqa.ENOTFOUND, "trafilatura: %v", err)
	}

	out := &searchqa.ExtractResult{Title: strings.TrimSpace(result.Metadata.Title)}
	if result.ContentNode == nil || utf8.RuneCountInString(strings.TrimSpace(result.ContentText)) < e.minText {
		return out, nil
	}

	out.ContentHTML, err = renderNode(result.ContentNode)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

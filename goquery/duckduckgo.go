// Package goquery implements HTML-scraping pieces on top of
// github.com/PuerkitoBio/goquery: a DuckDuckGo results parser and a
// plain visible-text extractor.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/searchqa"
)

// Ensure DuckDuckGoParser implements searchqa.ResultParser at compile time.
var _ searchqa.ResultParser = (*DuckDuckGoParser)(nil)

// Result link selectors for the lite and html DuckDuckGo interfaces.
const (
	liteResultSelector = "a.result-link"
	htmlResultSelector = "a.result__a"
)

// DuckDuckGoParser parses DuckDuckGo results pages.
type DuckDuckGoParser struct{}

// NewDuckDuckGoParser creates a new DuckDuckGoParser.
func NewDuckDuckGoParser() *DuckDuckGoParser {
	return &DuckDuckGoParser{}
}

// ParseResults returns organic results in page order. Ads, which link to
// duckduckgo.com/y.js, are skipped, and redirect links are unwrapped to
// their target URL.
func (p *DuckDuckGoParser) ParseResults(html string) ([]searchqa.SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, searchqa.Errorf(searchqa.EUNAVAILABLE, "failed to parse results page: %v", err)
	}

	if doc.Find("form#challenge-form, .anomaly-modal__title").Length() > 0 {
		return nil, searchqa.Errorf(searchqa.ERATELIMIT, "duckduckgo served a bot challenge")
	}

	var results []searchqa.SearchResult
	seen := make(map[string]bool)
	doc.Find(liteResultSelector + ", " + htmlResultSelector).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		target := resultURL(href)
		if target == "" || seen[target] {
			return
		}
		seen[target] = true

		results = append(results, searchqa.SearchResult{
			URL:     target,
			Title:   strings.TrimSpace(sel.Text()),
			Snippet: snippetFor(sel),
		})
	})
	return results, nil
}

// resultURL unwraps a DuckDuckGo redirect ("//duckduckgo.com/l/?uddg=...")
// and returns "" for ads and non-http links.
func resultURL(href string) string {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	if strings.HasSuffix(u.Host, "duckduckgo.com") {
		if u.Path != "/l/" {
			return ""
		}
		target := u.Query().Get("uddg")
		if target == "" {
			return ""
		}
		if u, err = url.Parse(target); err != nil {
			return ""
		}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

// snippetFor finds the snippet belonging to a result link. The lite page
// puts it in the next table row; the html page in a sibling element.
func snippetFor(link *goquery.Selection) string {
	if snippet := link.Closest(".result, .result__body").Find(".result__snippet").First(); snippet.Length() > 0 {
		return strings.TrimSpace(snippet.Text())
	}
	row := link.Closest("tr")
	for next := row.Next(); next.Length() > 0; next = next.Next() {
		if next.Find("a.result-link").Length() > 0 {
			break
		}
		if snippet := next.Find("td.result-snippet"); snippet.Length() > 0 {
			return strings.TrimSpace(snippet.Text())
		}
	}
	return ""
}

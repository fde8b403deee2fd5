package mock

import (
	"context"

	"github.com/fwojciec/searchqa"
)

var _ searchqa.Searcher = (*Searcher)(nil)

// Searcher is a mock implementation of searchqa.Searcher.
type Searcher struct {
	SearchFn func(ctx context.Context, query string) ([]searchqa.SearchResult, error)
}

func (s *Searcher) Search(ctx context.Context, query string) ([]searchqa.SearchResult, error) {
	return s.SearchFn(ctx, query)
}

var _ searchqa.ResultParser = (*ResultParser)(nil)

// ResultParser is a mock implementation of searchqa.ResultParser.
type ResultParser struct {
	ParseResultsFn func(html string) ([]searchqa.SearchResult, error)
}

func (p *ResultParser) ParseResults(html string) ([]searchqa.SearchResult, error) {
	return p.ParseResultsFn(html)
}

package mock

import (
	"context"

	"github.com/fwojciec/searchqa"
)

var (
	_ searchqa.LanguageModel = (*LanguageModel)(nil)
	_ searchqa.TokenCounter  = (*TokenCounter)(nil)
)

// LanguageModel is a mock implementation of searchqa.LanguageModel.
type LanguageModel struct {
	CompleteFn func(ctx context.Context, system, user string) (string, error)
}

func (m *LanguageModel) Complete(ctx context.Context, system, user string) (string, error) {
	return m.CompleteFn(ctx, system, user)
}

// TokenCounter is a mock implementation of searchqa.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return tc.CountTokensFn(ctx, text)
}

package searchqa

import "context"

// LanguageModel wraps a text-completion capability.
type LanguageModel interface {
	// Complete generates a reply to the user prompt under the given system
	// role description. Implementations should be deterministic (zero
	// temperature) so that batch runs are reproducible.
	Complete(ctx context.Context, system, user string) (string, error)
}

// TokenCounter counts tokens in text for a specific model.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/searchqa"
)

// Ensure LoggingLanguageModel implements searchqa.LanguageModel.
var _ searchqa.LanguageModel = (*LoggingLanguageModel)(nil)

// LoggingLanguageModel wraps a LanguageModel with logging. Prompt and reply
// sizes are logged; the reply text is logged only at debug level.
type LoggingLanguageModel struct {
	next   searchqa.LanguageModel
	logger *slog.Logger
}

// NewLoggingLanguageModel creates a new LoggingLanguageModel.
func NewLoggingLanguageModel(next searchqa.LanguageModel, logger *slog.Logger) *LoggingLanguageModel {
	return &LoggingLanguageModel{next: next, logger: logger}
}

// Complete delegates to the wrapped model and logs the call.
func (m *LoggingLanguageModel) Complete(ctx context.Context, system, user string) (reply string, err error) {
	defer func(begin time.Time) {
		m.logger.Info("complete",
			"prompt_chars", len(system)+len(user),
			"reply_chars", len(reply),
			"duration", time.Since(begin),
			"err", err,
		)
		m.logger.Debug("completion", "reply", reply)
	}(time.Now())
	return m.next.Complete(ctx, system, user)
}

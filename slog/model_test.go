package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/searchqa/mock"
	sqaslog "github.com/fwojciec/searchqa/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingLanguageModel_Complete(t *testing.T) {
	t.Parallel()

	t.Run("logs sizes and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.LanguageModel{
			CompleteFn: func(ctx context.Context, system, user string) (string, error) {
				return "Paris.", nil
			},
		}

		model := sqaslog.NewLoggingLanguageModel(inner, logger)
		reply, err := model.Complete(context.Background(), "role", "question")

		require.NoError(t, err)
		assert.Equal(t, "Paris.", reply)
		output := buf.String()
		assert.Contains(t, output, "msg=complete")
		assert.Contains(t, output, "prompt_chars=12")
		assert.Contains(t, output, "reply_chars=6")
		assert.Contains(t, output, "duration=")
		assert.NotContains(t, output, "reply=Paris.")
	})

	t.Run("logs reply at debug level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		inner := &mock.LanguageModel{
			CompleteFn: func(ctx context.Context, system, user string) (string, error) {
				return "Paris.", nil
			},
		}

		model := sqaslog.NewLoggingLanguageModel(inner, logger)
		_, err := model.Complete(context.Background(), "role", "question")

		require.NoError(t, err)
		assert.Contains(t, buf.String(), "reply=Paris.")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.LanguageModel{
			CompleteFn: func(ctx context.Context, system, user string) (string, error) {
				return "", errors.New("model down")
			},
		}

		model := sqaslog.NewLoggingLanguageModel(inner, logger)
		_, err := model.Complete(context.Background(), "role", "question")

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=\"model down\"")
	})
}

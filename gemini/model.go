// Package gemini implements searchqa.LanguageModel and searchqa.TokenCounter
// using Google Gemini.
package gemini

import (
	"context"
	"errors"
	"net/http"

	"github.com/fwojciec/searchqa"
	"google.golang.org/genai"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.5-flash"

// Ensure LanguageModel implements searchqa.LanguageModel at compile time.
var _ searchqa.LanguageModel = (*LanguageModel)(nil)

// LanguageModel implements searchqa.LanguageModel using Google Gemini.
type LanguageModel struct {
	client *genai.Client
	model  string
}

// NewLanguageModel creates a new LanguageModel. An empty model selects DefaultModel.
func NewLanguageModel(client *genai.Client, model string) *LanguageModel {
	if model == "" {
		model = DefaultModel
	}
	return &LanguageModel{client: client, model: model}
}

// Complete generates a reply to user under the system instruction.
func (m *LanguageModel) Complete(ctx context.Context, system, user string) (string, error) {
	if user == "" {
		return "", searchqa.Errorf(searchqa.EINVALID, "prompt required")
	}

	result, err := m.client.Models.GenerateContent(ctx, m.model,
		[]*genai.Content{{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: user}},
		}},
		BuildConfig(system),
	)
	if err != nil {
		return "", classify(ctx, err)
	}
	if result == nil {
		return "", searchqa.Errorf(searchqa.EINTERNAL, "gemini returned nil result")
	}

	return result.Text(), nil
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
func BuildConfig(system string) *genai.GenerateContentConfig {
	temp := float32(0)
	config := &genai.GenerateContentConfig{
		Temperature: &temp,
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}
	return config
}

func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return searchqa.Errorf(searchqa.EUNAVAILABLE, "gemini request: %v", err)
	}

	switch code := apiErr.Code; {
	case code == http.StatusTooManyRequests:
		return searchqa.Errorf(searchqa.ERATELIMIT, "gemini rate limited: %s", apiErr.Message)
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return searchqa.Errorf(searchqa.EUNAUTHORIZED, "gemini rejected credentials: %s", apiErr.Message)
	case code == http.StatusNotFound:
		return searchqa.Errorf(searchqa.ENOTFOUND, "gemini model not found: %s", apiErr.Message)
	case code == http.StatusGatewayTimeout:
		return searchqa.Errorf(searchqa.ETIMEOUT, "gemini timed out: %s", apiErr.Message)
	case code >= 500:
		return searchqa.Errorf(searchqa.EUNAVAILABLE, "gemini unavailable: %s", apiErr.Message)
	default:
		return searchqa.Errorf(searchqa.EINVALID, "gemini rejected request (%d): %s", code, apiErr.Message)
	}
}

// Package openai implements searchqa.LanguageModel over any server that
// speaks the OpenAI chat completions protocol, such as a local llama.cpp,
// Ollama or vLLM instance.
package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/fwojciec/searchqa"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultBaseURL points at a llama.cpp server on its default port.
const DefaultBaseURL = "http://localhost:8080/v1"

var _ searchqa.LanguageModel = (*LanguageModel)(nil)

// LanguageModel implements searchqa.LanguageModel using chat completions.
type LanguageModel struct {
	client    *openai.Client
	model     string
	maxTokens int
	seed      *int
}

// Option configures a LanguageModel.
type Option func(*config)

type config struct {
	httpClient *http.Client
	maxTokens  int
	seed       *int
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *config) {
		cfg.httpClient = c
	}
}

// WithMaxTokens caps the length of each reply. Zero leaves it to the server.
func WithMaxTokens(n int) Option {
	return func(cfg *config) {
		cfg.maxTokens = n
	}
}

// WithSeed fixes the sampling seed on servers that honor it.
func WithSeed(seed int) Option {
	return func(cfg *config) {
		cfg.seed = &seed
	}
}

// NewLanguageModel creates a LanguageModel talking to baseURL.
// apiKey may be empty for local servers that do not check it.
func NewLanguageModel(baseURL, apiKey, model string, opts ...Option) *LanguageModel {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(baseURL, "/")
	} else {
		clientConfig.BaseURL = DefaultBaseURL
	}
	if cfg.httpClient != nil {
		clientConfig.HTTPClient = cfg.httpClient
	}

	return &LanguageModel{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     model,
		maxTokens: cfg.maxTokens,
		seed:      cfg.seed,
	}
}

// Complete sends the system and user prompts as one chat turn and returns
// the first choice. Temperature is zero so that replies are reproducible.
func (m *LanguageModel) Complete(ctx context.Context, system, user string) (string, error) {
	var messages []openai.ChatCompletionMessage
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: user,
	})

	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       m.model,
		Messages:    messages,
		Temperature: 0,
		MaxTokens:   m.maxTokens,
		Seed:        m.seed,
	})
	if err != nil {
		return "", classify(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return "", searchqa.Errorf(searchqa.EUNAVAILABLE, "model %q returned no choices", m.model)
	}

	return resp.Choices[0].Message.Content, nil
}

// classify maps client errors onto application error codes.
func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusError(apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return statusError(reqErr.HTTPStatusCode, reqErr.Error())
	}
	return searchqa.Errorf(searchqa.EUNAVAILABLE, "model request: %v", err)
}

func statusError(status int, msg string) error {
	switch {
	case status == http.StatusTooManyRequests:
		return searchqa.Errorf(searchqa.ERATELIMIT, "model rate limited: %s", msg)
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return searchqa.Errorf(searchqa.EUNAUTHORIZED, "model rejected credentials: %s", msg)
	case status == http.StatusNotFound:
		return searchqa.Errorf(searchqa.ENOTFOUND, "model not found: %s", msg)
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return searchqa.Errorf(searchqa.ETIMEOUT, "model timed out: %s", msg)
	case status >= 500:
		return searchqa.Errorf(searchqa.EUNAVAILABLE, "model unavailable: %s", msg)
	default:
		return searchqa.Errorf(searchqa.EINVALID, "model request rejected (%d): %s", status, msg)
	}
}

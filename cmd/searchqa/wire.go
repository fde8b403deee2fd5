package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fwojciec/searchqa"
	"github.com/fwojciec/searchqa/fetch"
	"github.com/fwojciec/searchqa/gemini"
	"github.com/fwojciec/searchqa/goquery"
	"github.com/fwojciec/searchqa/htmltomarkdown"
	sqahttp "github.com/fwojciec/searchqa/http"
	"github.com/fwojciec/searchqa/openai"
	"github.com/fwojciec/searchqa/qa"
	"github.com/fwojciec/searchqa/readability"
	"github.com/fwojciec/searchqa/retry"
	"github.com/fwojciec/searchqa/rod"
	sqaslog "github.com/fwojciec/searchqa/slog"
	"github.com/fwojciec/searchqa/trafilatura"
	"google.golang.org/genai"
)

// newPipeline builds the question answering pipeline described by cfg.
// The returned closer releases the fetchers.
func newPipeline(ctx context.Context, cfg *Config, logger *slog.Logger, stderr io.Writer) (*qa.Pipeline, func() error, error) {
	model, err := newLanguageModel(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check --model-provider, --model-url and SEARCHQA_API_KEY")
		return nil, nil, err
	}

	searcher, err := newSearcher(cfg, logger)
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check --search-provider, --search-url and SEARCHQA_SEARCH_API_KEY")
		return nil, nil, err
	}

	pages, closer := newPageFetcher(cfg, logger)

	p := &qa.Pipeline{
		Model:            model,
		Searcher:         searcher,
		Pages:            pages,
		Policy:           newPolicy(cfg, logger),
		MaxResults:       cfg.MaxResults,
		MaxEvidenceChars: cfg.MaxEvidenceChars,
		Mode:             qa.Mode(cfg.SearchMode),
		AmbiguousSearch:  cfg.Ambiguous,
		Language:         cfg.Language,
		Timeout:          cfg.QuestionTimeout,
		Logger:           logger,
	}

	if cfg.MaxEvidenceTokens > 0 {
		counter, err := gemini.NewTokenCounter(cfg.TokenizerModel)
		if err != nil {
			_ = closer()
			return nil, nil, fmt.Errorf("failed to create token counter: %w", err)
		}
		p.TokenCounter = counter
		p.MaxEvidenceTokens = cfg.MaxEvidenceTokens
	}

	return p, closer, nil
}

func newLanguageModel(ctx context.Context, cfg *Config, logger *slog.Logger) (searchqa.LanguageModel, error) {
	var model searchqa.LanguageModel
	switch cfg.ModelProvider {
	case "gemini":
		if cfg.APIKey == "" {
			return nil, searchqa.Errorf(searchqa.EUNAUTHORIZED, "GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		model = gemini.NewLanguageModel(client, cfg.Model)
	case "openai", "":
		if cfg.Model == "" {
			return nil, searchqa.Errorf(searchqa.EINVALID, "--model is required for OpenAI-compatible servers")
		}
		var opts []openai.Option
		if cfg.MaxTokens > 0 {
			opts = append(opts, openai.WithMaxTokens(cfg.MaxTokens))
		}
		if cfg.Seed != 0 {
			opts = append(opts, openai.WithSeed(cfg.Seed))
		}
		model = openai.NewLanguageModel(cfg.ModelURL, cfg.APIKey, cfg.Model, opts...)
	default:
		return nil, searchqa.Errorf(searchqa.EINVALID, "unknown model provider %q", cfg.ModelProvider)
	}

	if cfg.Verbose {
		model = sqaslog.NewLoggingLanguageModel(model, logger)
	}
	return model, nil
}

func newSearcher(cfg *Config, logger *slog.Logger) (searchqa.Searcher, error) {
	opts := []sqahttp.SearchOption{
		// Twice the pages read, so that failed fetches can be replaced.
		sqahttp.WithResultCount(2 * max(cfg.MaxResults, 1)),
		sqahttp.WithQPS(cfg.SearchQPS),
	}
	if cfg.SearchURL != "" && cfg.SearchProvider != "searxng" {
		opts = append(opts, sqahttp.WithEndpoint(cfg.SearchURL))
	}

	var searcher searchqa.Searcher
	switch cfg.SearchProvider {
	case "duckduckgo", "":
		searcher = sqahttp.NewDuckDuckGo(goquery.NewDuckDuckGoParser(), opts...)
	case "searxng":
		if cfg.SearchURL == "" {
			return nil, searchqa.Errorf(searchqa.EINVALID, "--search-url is required for searxng")
		}
		searcher = sqahttp.NewSearxNG(cfg.SearchURL, opts...)
	case "brave":
		if cfg.SearchAPIKey == "" {
			return nil, searchqa.Errorf(searchqa.EUNAUTHORIZED, "SEARCHQA_SEARCH_API_KEY not set for brave")
		}
		searcher = sqahttp.NewBrave(cfg.SearchAPIKey, opts...)
	case "bing":
		searcher = sqahttp.NewBing(opts...)
	default:
		return nil, searchqa.Errorf(searchqa.EINVALID, "unknown search provider %q", cfg.SearchProvider)
	}

	if cfg.Verbose {
		searcher = sqaslog.NewLoggingSearcher(searcher, logger)
	}
	return searcher, nil
}

// newPageFetcher composes static fetching, optional browser rendering,
// main-content extraction with fallbacks, and markdown conversion.
func newPageFetcher(cfg *Config, logger *slog.Logger) (searchqa.PageFetcher, func() error) {
	var fetcher searchqa.Fetcher = sqahttp.NewFetcher(sqahttp.WithTimeout(cfg.FetchTimeout))
	if cfg.Verbose {
		fetcher = sqaslog.NewLoggingFetcher(fetcher, logger)
	}
	closers := []func() error{fetcher.Close}

	minText := fetch.DefaultMinContentRunes
	extractors := []searchqa.Extractor{
		trafilatura.NewExtractor(trafilatura.WithMinText(minText)),
		readability.NewExtractor(minText),
		goquery.NewTextExtractor(),
	}

	opts := []fetch.Option{
		fetch.WithLimiter(fetch.NewDomainLimiter(cfg.DomainRPS, 1)),
		fetch.WithMinContent(minText),
	}
	if cfg.Browser {
		var browser searchqa.Fetcher = rod.NewFetcher(rod.WithTimeout(cfg.FetchTimeout))
		if cfg.Verbose {
			browser = sqaslog.NewLoggingFetcher(browser, logger)
		}
		closers = append(closers, browser.Close)
		opts = append(opts, fetch.WithBrowser(browser))
	}

	var pages searchqa.PageFetcher = fetch.NewPageFetcher(fetcher, htmltomarkdown.NewConverter(), extractors, opts...)
	if cfg.Verbose {
		pages = sqaslog.NewLoggingPageFetcher(pages, logger)
	}

	return pages, func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		return errors.Join(errs...)
	}
}

func newPolicy(cfg *Config, logger *slog.Logger) *retry.Policy {
	return &retry.Policy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.Backoff,
		Jitter:      cfg.Jitter,
		OnTransition: func(t retry.Transition) {
			logger.Debug("retry",
				"from", t.From.String(),
				"to", t.To.String(),
				"attempt", t.Attempt,
				"delay", t.Delay,
				"err", t.Err,
			)
		},
	}
}

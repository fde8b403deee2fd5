// Package qa implements the question-answering pipeline: intent refinement,
// search necessity decision, keyword extraction, evidence gathering under a
// retry policy, and answer synthesis.
package qa

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/searchqa"
	"github.com/fwojciec/searchqa/retry"
	"golang.org/x/sync/errgroup"
)

// Defaults used when the corresponding Pipeline field is zero.
const (
	DefaultMaxResults       = 3
	DefaultMaxEvidenceChars = 5000
)

// FallbackAnswer is recorded when the model cannot produce an answer.
const FallbackAnswer = "Sorry, I could not produce an answer to this question."

// Mode selects how the search necessity decision is made.
type Mode string

// Search modes.
const (
	ModeAuto   Mode = "auto"   // Ask the model
	ModeAlways Mode = "always" // Always search
	ModeNever  Mode = "never"  // Never search
)

// Ensure Pipeline implements searchqa.Answerer at compile time.
var _ searchqa.Answerer = (*Pipeline)(nil)

// Pipeline answers one question at a time. Its fields are read-only after
// construction, so one Pipeline may serve concurrent Answer calls.
type Pipeline struct {
	Model    searchqa.LanguageModel
	Searcher searchqa.Searcher
	Pages    searchqa.PageFetcher
	Policy   *retry.Policy

	// TokenCounter, if set, trims evidence to MaxEvidenceTokens.
	TokenCounter      searchqa.TokenCounter
	MaxEvidenceTokens int

	// MaxResults is how many result pages are read per search.
	MaxResults int

	// MaxEvidenceChars caps the combined evidence text in runes.
	MaxEvidenceChars int

	Mode Mode

	// AmbiguousSearch is the decision used when the model's reply is
	// neither yes nor no.
	AmbiguousSearch bool

	// Language answers and keywords are requested in.
	Language string

	// Timeout bounds refinement, decision, keywords and evidence
	// gathering. Synthesis always runs, with whatever evidence was found.
	Timeout time.Duration

	Logger *slog.Logger
}

// Answer runs the pipeline for q. Failures of individual steps degrade to
// fallbacks; an error is returned only for an invalid question.
func (p *Pipeline) Answer(ctx context.Context, q *searchqa.Question) (*searchqa.Answer, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	gatherCtx := ctx
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		gatherCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	refined := p.Refine(gatherCtx, q)

	var evidence []*searchqa.Evidence
	var attempts []searchqa.SearchAttempt
	if refined.NeedsSearch {
		evidence, attempts = p.Gather(gatherCtx, q.ID, refined.Query())
	}

	text := p.Synthesize(ctx, q.ID, refined.CoreQuestion, evidence)

	return &searchqa.Answer{
		QuestionID:    q.ID,
		Text:          text,
		UsedSearch:    refined.NeedsSearch && len(evidence) > 0,
		EvidenceCount: len(evidence),
		Attempts:      len(attempts),
	}, nil
}

// Refine runs steps 1-3: core question, search decision, keywords.
// It always returns a usable RefinedQuery.
func (p *Pipeline) Refine(ctx context.Context, q *searchqa.Question) *searchqa.RefinedQuery {
	refined := &searchqa.RefinedQuery{CoreQuestion: p.coreQuestion(ctx, q)}

	refined.NeedsSearch = p.needsSearch(ctx, q.ID, refined.CoreQuestion)
	if !refined.NeedsSearch {
		return refined
	}

	refined.Keywords = p.keywords(ctx, q.ID, refined.CoreQuestion)
	return refined
}

func (p *Pipeline) coreQuestion(ctx context.Context, q *searchqa.Question) string {
	raw := strings.TrimSpace(q.Text)

	prompt := BuildRefinePrompt(raw, p.language())
	reply, err := p.Model.Complete(ctx, prompt.System, prompt.User)
	if err != nil {
		p.degraded(q.ID, "refine", "model call failed, using raw question", err)
		return raw
	}

	core := firstLine(reply)
	if core == "" {
		p.degraded(q.ID, "refine", "empty reply, using raw question", nil)
		return raw
	}
	return core
}

func (p *Pipeline) needsSearch(ctx context.Context, id int, question string) bool {
	switch p.Mode {
	case ModeAlways:
		return true
	case ModeNever:
		return false
	}

	prompt := BuildDecisionPrompt(question)
	reply, err := p.Model.Complete(ctx, prompt.System, prompt.User)
	if err != nil {
		p.degraded(id, "decide", "model call failed, not searching", err)
		return false
	}

	decision := ParseDecision(reply)
	if decision == DecisionUnknown {
		p.degraded(id, "decide", "unparseable reply", nil)
	}
	return decision.Resolve(p.AmbiguousSearch)
}

func (p *Pipeline) keywords(ctx context.Context, id int, question string) []string {
	prompt := BuildKeywordsPrompt(question, p.language())
	reply, err := p.Model.Complete(ctx, prompt.System, prompt.User)
	if err != nil {
		p.degraded(id, "keywords", "model call failed, tokenizing question", err)
		reply = ""
	}

	keywords, fellBack := ExtractKeywords(reply, question)
	if fellBack && err == nil {
		p.degraded(id, "keywords", "too few keywords, tokenizing question", nil)
	}
	return keywords
}

// Gather runs search-and-fetch under the retry policy. It returns the
// evidence of the successful attempt, or none if every attempt failed.
func (p *Pipeline) Gather(ctx context.Context, id int, query string) ([]*searchqa.Evidence, []searchqa.SearchAttempt) {
	var evidence []*searchqa.Evidence
	var attempts []searchqa.SearchAttempt

	policy := p.Policy
	if policy == nil {
		policy = &retry.Policy{}
	}

	_, err := policy.Execute(ctx, func(ctx context.Context, n int) error {
		begin := time.Now()
		found, err := p.searchAndFetch(ctx, id, query)

		attempt := searchqa.SearchAttempt{Attempt: n, Query: query, Err: err, Duration: time.Since(begin)}
		if err == nil {
			for _, e := range found {
				attempt.URLs = append(attempt.URLs, e.SourceURL)
			}
			evidence = found
		}
		attempts = append(attempts, attempt)

		if err != nil {
			p.logger().Info("search attempt failed", "question", id, "attempt", n, "query", query, "err", err)
		}
		return err
	})
	if err != nil {
		p.degraded(id, "search", "no evidence available", err)
		return nil, attempts
	}

	return p.budget(ctx, id, evidence), attempts
}

func (p *Pipeline) searchAndFetch(ctx context.Context, id int, query string) ([]*searchqa.Evidence, error) {
	results, err := p.Searcher.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	n := p.maxResults()
	urls := candidateURLs(results, 2*n)
	if len(urls) == 0 {
		return nil, searchqa.Errorf(searchqa.ENORESULTS, "no results for %q", query)
	}

	var evidence []*searchqa.Evidence
	var errs []error
	for start := 0; len(evidence) < n && start < len(urls); {
		end := min(start+n-len(evidence), len(urls))
		found, fetchErrs := p.fetchAll(ctx, urls[start:end])
		evidence = append(evidence, found...)
		errs = append(errs, fetchErrs...)
		start = end
	}

	if len(evidence) > 0 {
		return evidence, nil
	}
	for _, err := range errs {
		p.logger().Debug("page fetch failed", "question", id, "err", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if anyTransient(errs) {
		return nil, searchqa.Errorf(searchqa.EUNAVAILABLE, "none of %d result pages could be fetched", len(urls))
	}
	return nil, searchqa.Errorf(searchqa.ENOTFOUND, "no readable page among %d results", len(urls))
}

// fetchAll fetches urls concurrently and returns evidence in input order.
func (p *Pipeline) fetchAll(ctx context.Context, urls []string) ([]*searchqa.Evidence, []error) {
	pages := make([]*searchqa.Page, len(urls))
	errs := make([]error, len(urls))

	var g errgroup.Group
	for i, u := range urls {
		g.Go(func() error {
			page, err := p.Pages.FetchPage(ctx, u)
			if err == nil && (page == nil || strings.TrimSpace(page.Content) == "") {
				err = searchqa.Errorf(searchqa.ENOTFOUND, "no readable text at %s", u)
			}
			pages[i], errs[i] = page, err
			return nil
		})
	}
	_ = g.Wait()

	var evidence []*searchqa.Evidence
	var failed []error
	for i, page := range pages {
		if errs[i] != nil {
			failed = append(failed, errs[i])
			continue
		}
		evidence = append(evidence, &searchqa.Evidence{
			SourceURL: urls[i],
			Title:     page.Title,
			Text:      compactText(page.Content),
		})
	}
	return evidence, failed
}

// budget trims evidence to the character limit and, if a token counter is
// configured, to the token limit.
func (p *Pipeline) budget(ctx context.Context, id int, evidence []*searchqa.Evidence) []*searchqa.Evidence {
	limit := p.MaxEvidenceChars
	if limit == 0 {
		limit = DefaultMaxEvidenceChars
	}
	evidence = searchqa.TruncateEvidence(evidence, limit)

	if p.TokenCounter == nil || p.MaxEvidenceTokens <= 0 {
		return evidence
	}

	for range 3 {
		text := searchqa.FormatEvidence(evidence)
		tokens, err := p.TokenCounter.CountTokens(ctx, text)
		if err != nil {
			p.logger().Warn("token count failed", "question", id, "err", err)
			return evidence
		}
		if tokens <= p.MaxEvidenceTokens {
			return evidence
		}
		// Estimate how many runes the excess tokens cover and cut that
		// much from the evidence text; headers are not truncatable.
		excess := (tokens-p.MaxEvidenceTokens)*utf8.RuneCountInString(text)/tokens + 1
		limit := evidenceRunes(evidence) - excess
		if limit <= 0 {
			p.logger().Warn("evidence does not fit token budget", "question", id, "tokens", tokens)
			return nil
		}
		evidence = searchqa.TruncateEvidence(evidence, limit)
	}
	return evidence
}

func evidenceRunes(evidence []*searchqa.Evidence) int {
	n := 0
	for _, e := range evidence {
		n += utf8.RuneCountInString(e.Text)
	}
	return n
}

// Synthesize runs step 5. It returns FallbackAnswer if the model fails or
// replies with nothing.
func (p *Pipeline) Synthesize(ctx context.Context, id int, question string, evidence []*searchqa.Evidence) string {
	prompt := BuildAnswerPrompt(question, evidence, p.language())
	reply, err := p.Model.Complete(ctx, prompt.System, prompt.User)
	if err != nil {
		p.degraded(id, "answer", "model call failed, using fallback answer", err)
		return FallbackAnswer
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		p.degraded(id, "answer", "empty reply, using fallback answer", nil)
		return FallbackAnswer
	}
	return reply
}

func (p *Pipeline) degraded(id int, step, msg string, err error) {
	attrs := []any{"question", id, "step", step}
	if err != nil {
		attrs = append(attrs, "err", err)
	}
	p.logger().Warn("degraded: "+msg, attrs...)
}

func (p *Pipeline) maxResults() int {
	if p.MaxResults <= 0 {
		return DefaultMaxResults
	}
	return p.MaxResults
}

func (p *Pipeline) language() string {
	if p.Language == "" {
		return DefaultLanguage
	}
	return p.Language
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p.Logger
}

// candidateURLs returns up to limit unique http(s) URLs in result order.
func candidateURLs(results []searchqa.SearchResult, limit int) []string {
	var urls []string
	seen := make(map[string]bool)
	for _, r := range results {
		u, err := url.Parse(strings.TrimSpace(r.URL))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			continue
		}
		u.Fragment = ""
		s := u.String()
		if seen[s] {
			continue
		}
		seen[s] = true
		urls = append(urls, s)
		if len(urls) == limit {
			break
		}
	}
	return urls
}

func anyTransient(errs []error) bool {
	for _, err := range errs {
		if searchqa.IsTransient(err) {
			return true
		}
	}
	return false
}

// firstLine returns the first non-empty line of s, trimmed of quotes.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.Trim(strings.TrimSpace(line), "\"'“”「」")
		if line != "" {
			return line
		}
	}
	return ""
}

// compactText trims every line and drops blank ones.
func compactText(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/fwojciec/searchqa"
	"golang.org/x/time/rate"
)

// Search provider endpoints.
const (
	DefaultDuckDuckGoEndpoint = "https://lite.duckduckgo.com/lite/"
	DefaultBraveEndpoint      = "https://api.search.brave.com/res/v1/web/search"
	DefaultBingEndpoint       = "https://www.bing.com/search"
)

// DefaultResultCount is the number of results requested per query.
const DefaultResultCount = 6

// DefaultSearchTimeout bounds a single search request.
const DefaultSearchTimeout = 15 * time.Second

// Compile-time interface verification.
var (
	_ searchqa.Searcher = (*DuckDuckGo)(nil)
	_ searchqa.Searcher = (*SearxNG)(nil)
	_ searchqa.Searcher = (*Brave)(nil)
	_ searchqa.Searcher = (*Bing)(nil)
)

// searchClient holds what every provider needs to issue a request.
type searchClient struct {
	client    *http.Client
	endpoint  string
	count     int
	limiter   *rate.Limiter
	userAgent string
}

// SearchOption configures a search provider.
type SearchOption func(*searchClient)

// WithEndpoint overrides the provider's default endpoint.
func WithEndpoint(endpoint string) SearchOption {
	return func(c *searchClient) {
		c.endpoint = endpoint
	}
}

// WithResultCount sets how many results are requested per query.
func WithResultCount(n int) SearchOption {
	return func(c *searchClient) {
		c.count = n
	}
}

// WithQPS limits the provider to qps queries per second across all
// callers. Free endpoints block clients that query in bursts. A qps of
// zero or less removes the limit.
func WithQPS(qps float64) SearchOption {
	return func(c *searchClient) {
		if qps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(qps), 1)
	}
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) SearchOption {
	return func(c *searchClient) {
		c.client = client
	}
}

func newSearchClient(endpoint string, opts []SearchOption) searchClient {
	c := searchClient{
		client:    &http.Client{Timeout: DefaultSearchTimeout},
		endpoint:  endpoint,
		count:     DefaultResultCount,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// fetch waits for the rate limiter, then GETs the endpoint with params.
func (c *searchClient) fetch(ctx context.Context, params url.Values, header http.Header) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if header == nil {
		header = http.Header{}
	}
	header.Set("User-Agent", c.userAgent)

	target := c.endpoint + "?" + params.Encode()
	resp, err := get(ctx, c.client, target, header)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return readBody(resp.Body)
}

// limitResults drops results without a URL, caps the count and reports
// ENORESULTS for an empty set.
func (c *searchClient) limitResults(query string, results []searchqa.SearchResult) ([]searchqa.SearchResult, error) {
	out := make([]searchqa.SearchResult, 0, len(results))
	for _, r := range results {
		r.URL = strings.TrimSpace(r.URL)
		if r.URL == "" {
			continue
		}
		out = append(out, r)
		if c.count > 0 && len(out) == c.count {
			break
		}
	}
	if len(out) == 0 {
		return nil, searchqa.Errorf(searchqa.ENORESULTS, "no results for %q", query)
	}
	return out, nil
}

func checkQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return searchqa.Errorf(searchqa.EINVALID, "empty search query")
	}
	return nil
}

// DuckDuckGo searches the DuckDuckGo lite HTML interface. It needs no API
// key; results are scraped from the page by the configured parser.
type DuckDuckGo struct {
	searchClient
	parser searchqa.ResultParser
}

// NewDuckDuckGo creates a DuckDuckGo searcher.
func NewDuckDuckGo(parser searchqa.ResultParser, opts ...SearchOption) *DuckDuckGo {
	return &DuckDuckGo{
		searchClient: newSearchClient(DefaultDuckDuckGoEndpoint, opts),
		parser:       parser,
	}
}

// Search implements searchqa.Searcher.
func (s *DuckDuckGo) Search(ctx context.Context, query string) ([]searchqa.SearchResult, error) {
	if err := checkQuery(query); err != nil {
		return nil, err
	}

	body, err := s.fetch(ctx, url.Values{"q": {query}}, nil)
	if err != nil {
		return nil, err
	}

	results, err := s.parser.ParseResults(string(body))
	if err != nil {
		return nil, err
	}
	return s.limitResults(query, results)
}

// SearxNG queries a SearxNG instance through its JSON API. The instance
// must have the json format enabled.
type SearxNG struct {
	searchClient
}

// NewSearxNG creates a SearxNG searcher for the instance at baseURL.
func NewSearxNG(baseURL string, opts ...SearchOption) *SearxNG {
	endpoint := strings.TrimSuffix(baseURL, "/") + "/search"
	return &SearxNG{searchClient: newSearchClient(endpoint, opts)}
}

type searxResponse struct {
	Results []struct {
		URL     string `json:"url"`
		Title   string `json:"title"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search implements searchqa.Searcher.
func (s *SearxNG) Search(ctx context.Context, query string) ([]searchqa.SearchResult, error) {
	if err := checkQuery(query); err != nil {
		return nil, err
	}

	body, err := s.fetch(ctx, url.Values{"q": {query}, "format": {"json"}}, nil)
	if err != nil {
		return nil, err
	}

	var resp searxResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, searchqa.Errorf(searchqa.EUNAVAILABLE, "decode searxng response: %v", err)
	}

	results := make([]searchqa.SearchResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, searchqa.SearchResult{URL: r.URL, Title: r.Title, Snippet: r.Content})
	}
	return s.limitResults(query, results)
}

// Brave queries the Brave Search API.
type Brave struct {
	searchClient
	apiKey string
}

// NewBrave creates a Brave searcher authenticated with apiKey.
func NewBrave(apiKey string, opts ...SearchOption) *Brave {
	return &Brave{searchClient: newSearchClient(DefaultBraveEndpoint, opts), apiKey: apiKey}
}

type braveResponse struct {
	Web struct {
		Results []struct {
			URL         string `json:"url"`
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// Search implements searchqa.Searcher.
func (s *Brave) Search(ctx context.Context, query string) ([]searchqa.SearchResult, error) {
	if err := checkQuery(query); err != nil {
		return nil, err
	}
	if s.apiKey == "" {
		return nil, searchqa.Errorf(searchqa.EUNAUTHORIZED, "brave search requires an API key")
	}

	header := http.Header{}
	header.Set("Accept", "application/json")
	header.Set("X-Subscription-Token", s.apiKey)

	params := url.Values{"q": {query}, "count": {strconv.Itoa(s.count)}}
	body, err := s.fetch(ctx, params, header)
	if err != nil {
		return nil, err
	}

	var resp braveResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, searchqa.Errorf(searchqa.EUNAVAILABLE, "decode brave response: %v", err)
	}

	results := make([]searchqa.SearchResult, 0, len(resp.Web.Results))
	for _, r := range resp.Web.Results {
		results = append(results, searchqa.SearchResult{URL: r.URL, Title: r.Title, Snippet: r.Description})
	}
	return s.limitResults(query, results)
}

// Bing reads Bing's RSS results feed.
type Bing struct {
	searchClient
}

// NewBing creates a Bing searcher.
func NewBing(opts ...SearchOption) *Bing {
	return &Bing{searchClient: newSearchClient(DefaultBingEndpoint, opts)}
}

// Search implements searchqa.Searcher.
func (s *Bing) Search(ctx context.Context, query string) ([]searchqa.SearchResult, error) {
	if err := checkQuery(query); err != nil {
		return nil, err
	}

	params := url.Values{"q": {query}, "format": {"rss"}, "count": {strconv.Itoa(s.count)}}
	body, err := s.fetch(ctx, params, nil)
	if err != nil {
		return nil, err
	}

	results, err := parseRSS(body)
	if err != nil {
		return nil, err
	}
	return s.limitResults(query, results)
}

// parseRSS reads the items of an RSS 2.0 feed.
func parseRSS(body []byte) ([]searchqa.SearchResult, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, searchqa.Errorf(searchqa.EUNAVAILABLE, "parse rss: %v", err)
	}

	var results []searchqa.SearchResult
	for _, item := range doc.FindElements("//channel/item") {
		r := searchqa.SearchResult{}
		if link := item.SelectElement("link"); link != nil {
			r.URL = link.Text()
		}
		if title := item.SelectElement("title"); title != nil {
			r.Title = strings.TrimSpace(title.Text())
		}
		if desc := item.SelectElement("description"); desc != nil {
			r.Snippet = strings.TrimSpace(desc.Text())
		}
		results = append(results, r)
	}
	return results, nil
}

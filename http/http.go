// Package http implements searchqa.Fetcher and searchqa.Searcher over
// net/http: a static page fetcher and clients for several search providers.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/fwojciec/searchqa"
)

// DefaultUserAgent identifies requests made by this package.
const DefaultUserAgent = "Mozilla/5.0 (compatible; searchqa/1.0)"

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 5 << 20

// statusError maps a non-2xx status to an application error. Rate limiting
// and server errors are transient; client errors are permanent.
func statusError(resp *http.Response, target string) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusTooManyRequests:
		return searchqa.Errorf(searchqa.ERATELIMIT, "HTTP %d for %s", code, target)
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return searchqa.Errorf(searchqa.ETIMEOUT, "HTTP %d for %s", code, target)
	case code >= 500:
		return searchqa.Errorf(searchqa.EUNAVAILABLE, "HTTP %d for %s", code, target)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return searchqa.Errorf(searchqa.EUNAUTHORIZED, "HTTP %d for %s", code, target)
	case code == http.StatusNotFound || code == http.StatusGone:
		return searchqa.Errorf(searchqa.ENOTFOUND, "HTTP %d for %s", code, target)
	default:
		return searchqa.Errorf(searchqa.EINVALID, "HTTP %d for %s", code, target)
	}
}

// transportError wraps a client.Do failure. Context cancellation passes
// through unchanged; timeouts become ETIMEOUT and other network failures
// EUNAVAILABLE.
func transportError(ctx context.Context, err error, target string) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return searchqa.Errorf(searchqa.ETIMEOUT, "request to %s timed out", target)
	}
	return searchqa.Errorf(searchqa.EUNAVAILABLE, "request to %s: %v", target, err)
}

// get performs a GET request and returns the response if its status is 2xx.
// The caller closes the body.
func get(ctx context.Context, client *http.Client, target string, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, searchqa.Errorf(searchqa.EINVALID, "invalid request for %s: %v", target, err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", DefaultUserAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, transportError(ctx, err, target)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, statusError(resp, target)
	}
	return resp, nil
}

// readBody reads at most maxBodyBytes of r.
func readBody(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// Package remote is the shared core of the GitHub and npm clients: a
// cache-checked JSON GET with typed errors and payload validation.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"design-system-api/internal/cache"
	"design-system-api/internal/logging"
	"design-system-api/internal/metrics"
)

// DefaultMaxBody caps how much of a response body is read.
const DefaultMaxBody = 8 << 20

// Fetcher performs cache-checked GET requests against one remote API.
type Fetcher struct {
	// Source names the API in errors, logs and metrics ("GitHub", "npm").
	Source string
	HTTP   *http.Client
	Cache  cache.Cache
	// TTL overrides the cache's default lifetime when positive.
	TTL     time.Duration
	MaxBody int64
	Headers map[string]string
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// NewFetcher builds a Fetcher with the package defaults filled in.
func NewFetcher(source string, httpClient *http.Client, c cache.Cache, logger *slog.Logger, m *metrics.Metrics) *Fetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Fetcher{
		Source:  source,
		HTTP:    httpClient,
		Cache:   c,
		MaxBody: DefaultMaxBody,
		Headers: map[string]string{},
		Logger:  logging.Component(logger, "remote").With("source", source),
		Metrics: m,
	}
}

// Fetch returns the value cached under cacheKey if fresh. Otherwise it GETs
// url, maps the status, decodes and validates the body as T, caches it with
// the fetcher's TTL and returns it. No retries are attempted.
func Fetch[T any](ctx context.Context, f *Fetcher, url, cacheKey string) (T, error) {
	var zero T
	if f.Cache != nil {
		if cached, ok := cache.Lookup[T](f.Cache, cacheKey); ok {
			f.Metrics.RemoteRequest(f.Source, "cached")
			return cached, nil
		}
	}

	body, err := f.get(ctx, url)
	if err != nil {
		return zero, err
	}

	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		f.Metrics.RemoteRequest(f.Source, "error")
		return zero, &FetchError{Source: f.Source, URL: url, Err: fmt.Errorf("%w: %v", ErrInvalidPayload, err)}
	}
	if err := check(out); err != nil {
		f.Metrics.RemoteRequest(f.Source, "error")
		return zero, &FetchError{Source: f.Source, URL: url, Err: fmt.Errorf("%w: %v", ErrInvalidPayload, err)}
	}

	f.Metrics.RemoteRequest(f.Source, "ok")
	if f.Cache != nil {
		f.Cache.Set(cacheKey, out, f.TTL)
	}
	return out, nil
}

// Raw GETs url with the given Accept header and returns the body as text.
// It bypasses the cache.
func (f *Fetcher) Raw(ctx context.Context, url, accept string) (string, error) {
	body, err := f.getWithAccept(ctx, url, accept)
	if err != nil {
		return "", err
	}
	f.Metrics.RemoteRequest(f.Source, "ok")
	return string(body), nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	return f.getWithAccept(ctx, url, "")
}

func (f *Fetcher) getWithAccept(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Source: f.Source, URL: url, Err: err}
	}
	for k, v := range f.Headers {
		req.Header.Set(k, v)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	start := time.Now()
	resp, err := f.HTTP.Do(req)
	if err != nil {
		f.Metrics.RemoteRequest(f.Source, "error")
		f.Logger.Warn("request failed", "url", url, "error", err)
		return nil, &FetchError{Source: f.Source, URL: url, Err: err}
	}
	defer resp.Body.Close()
	f.Logger.Debug("response", "url", url, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusForbidden {
			f.Metrics.RemoteRequest(f.Source, "rate_limited")
			return nil, &RateLimitError{Source: f.Source}
		}
		f.Metrics.RemoteRequest(f.Source, "error")
		return nil, &FetchError{
			Source:     f.Source,
			URL:        url,
			StatusCode: resp.StatusCode,
			Status:     statusText(resp),
		}
	}

	body, err := readBody(resp.Body, f.MaxBody)
	if err != nil {
		f.Metrics.RemoteRequest(f.Source, "error")
		return nil, &FetchError{Source: f.Source, URL: url, Err: err}
	}
	return body, nil
}

// readBody reads at most limit bytes of r. A non-positive limit reads it all.
func readBody(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: over %d bytes", ErrResponseTooLarge, limit)
	}
	return body, nil
}

// statusText returns the reason phrase without the leading code.
func statusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return resp.Status
}

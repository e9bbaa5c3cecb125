package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultFetchTimeout bounds a single CSV download.
const DefaultFetchTimeout = 10 * time.Second

// DefaultUserAgent is sent with every CSV request.
const DefaultUserAgent = "Mozilla/5.0 (compatible; PortfolioCatalog/1.0)"

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 4 << 20

// Fetcher downloads the raw CSV text for a source URL.
type Fetcher interface {
	Fetch(ctx context.Context, sourceURL string) (string, error)
}

// FetchError describes a failed download. It matches ErrSourceUnreachable
// under errors.Is.
type FetchError struct {
	URL        string
	StatusCode int
	Message    string
	Cause      error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrSourceUnreachable.
func (e *FetchError) Is(target error) bool {
	return target == ErrSourceUnreachable
}

// HTTPFetcher fetches CSV over HTTP GET.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPFetcher creates a fetcher with the given timeout. Zero uses
// DefaultFetchTimeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: DefaultUserAgent,
	}
}

// Fetch retrieves the body of sourceURL. Any non-2xx status is an error.
func (f *HTTPFetcher) Fetch(ctx context.Context, sourceURL string) (string, error) {
	parsed, err := url.Parse(sourceURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", &FetchError{URL: sourceURL, Message: "invalid URL", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", &FetchError{URL: sourceURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", &FetchError{URL: sourceURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{
			URL:        sourceURL,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", &FetchError{URL: sourceURL, StatusCode: resp.StatusCode, Message: "failed to read response body", Cause: err}
	}
	return string(body), nil
}

// Package fetcher downloads archives into a staging session.
package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/quantmind-br/archivepuller/internal/domain"
)

// ClientOptions contains options for creating the download HTTP client
type ClientOptions struct {
	// Timeout of 0 means no timeout
	Timeout   time.Duration
	Transport http.RoundTripper
}

// DefaultClientOptions returns default client options
func DefaultClientOptions() ClientOptions {
	return ClientOptions{}
}

// NewHTTPClient creates the client shared by the download strategies
func NewHTTPClient(opts ClientOptions) *http.Client {
	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: opts.Transport,
	}
}

// get issues a GET and fails with a DownloadError on transport errors and
// non-2xx statuses. The caller closes the body.
func get(ctx context.Context, client *http.Client, rawURL, userAgent string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, domain.NewDownloadError(rawURL, 0, err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, domain.NewDownloadError(rawURL, 0, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, domain.NewDownloadError(rawURL, resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}
	return resp, nil
}

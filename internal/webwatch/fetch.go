package webwatch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Fetcher performs a GET request and returns the response body. ok is false
// when the request failed or the status was not 2xx; the reason stays with
// the Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, url string, header http.Header) (body string, ok bool)
}

// HTTPFetcher is a Fetcher backed by net/http.
type HTTPFetcher struct {
	client *http.Client
	logger *slog.Logger
}

// NewHTTPFetcher creates an HTTPFetcher whose requests time out after timeout.
func NewHTTPFetcher(timeout time.Duration, logger *slog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string, header http.Header) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		f.logger.Error("create webwatch request", "url", url, "error", err)
		return "", false
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("webwatch request failed", "url", url, "error", err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.Warn("webwatch returned non-2xx", "url", url, "status", resp.StatusCode)
		return "", false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		f.logger.Warn("read webwatch body", "url", url, "error", err)
		return "", false
	}
	return string(body), true
}

func acceptHeader(mediaType string) http.Header {
	h := make(http.Header)
	h.Set("Accept", mediaType)
	return h
}

package agent

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// browserUserAgent identifies the client as a regular browser. The search
// endpoint rejects unrecognized clients, and plenty of ordinary sites do the
// same for fetches.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// maxFetchBytes caps how much of a response body is read.
const maxFetchBytes = 1 << 20 // 1MB

// webClient is shared by the fetch and search tools. The timeout is scoped
// to these tool calls only; the completion stream has no timeout of its own.
var webClient = &http.Client{Timeout: 30 * time.Second}

// HTTPStatusError reports a non-2xx response for a fetched URL.
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %s fetching %s", e.Status, e.URL)
}

// Fetch performs an HTTP GET and returns the raw body text regardless of
// content type.
func Fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := webClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &HTTPStatusError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	return decodePermissive(body), nil
}

package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// searchEndpoint is the HTML search frontend queried by Search. It is a
// variable so tests can point it at an httptest server.
var searchEndpoint = "https://html.duckduckgo.com/html/"

// ErrSearchBlocked reports that the search engine refused to serve the
// request (captcha or rate limiting). Retrying later may succeed.
var ErrSearchBlocked = errors.New("search engine blocked the request (captcha or rate limit), try again later")

// blockingMarkers are fragments whose presence in a response body means the
// engine is refusing service rather than reporting results.
var blockingMarkers = []string{
	"anomaly-modal",
	"unusual traffic",
	"captcha",
	"been blocked",
}

// noResultsMarker is the engine's explicit empty-result message.
const noResultsMarker = "no results."

// SearchResult is one extracted search hit.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// Search queries the search engine for the given text and renders the
// extracted results. Zero extracted results distinguishes "the engine
// reported no results" from "the page structure was not recognized" so the
// model sees an honest account either way.
func Search(ctx context.Context, query string) (string, error) {
	searchURL := fmt.Sprintf("%s?q=%s", searchEndpoint, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := webClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	page := string(body)

	// A blocked response may carry any status code, so the markers are
	// checked before the status.
	if isBlockedPage(page) {
		return "", ErrSearchBlocked
	}

	if resp.StatusCode != http.StatusOK {
		return "", &HTTPStatusError{
			URL:        searchURL,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	results, err := parseSearchResults(page, resp.Request.URL)
	if err != nil {
		return "", err
	}

	if len(results) == 0 {
		if strings.Contains(strings.ToLower(page), noResultsMarker) {
			return fmt.Sprintf("The search engine reported no results for: %s", query), nil
		}
		return "Search results page had an unrecognized structure; no results could be extracted.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Search results for %q:\n", query)
	for i, result := range results {
		fmt.Fprintf(&sb, "\n%d. %s\n%s\n", i+1, result.Title, result.URL)
		if result.Snippet != "" {
			fmt.Fprintf(&sb, "%s\n", result.Snippet)
		}
	}
	return sb.String(), nil
}

func isBlockedPage(page string) bool {
	lower := strings.ToLower(page)
	for _, marker := range blockingMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// parseSearchResults walks the parsed HTML and extracts the repeated result
// blocks. Blocks missing a title or URL are skipped.
func parseSearchResults(page string, base *url.URL) ([]SearchResult, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var results []SearchResult
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "div" && hasClass(n, "result") {
			result := extractResult(n, base)
			if result.Title != "" && result.URL != "" {
				results = append(results, result)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return results, nil
}

// extractResult pulls title, absolute URL, and snippet out of one result div.
func extractResult(n *html.Node, base *url.URL) SearchResult {
	var result SearchResult

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			switch {
			case hasClass(n, "result__a"):
				result.URL = resolveResultURL(attrValue(n, "href"), base)
				result.Title = textContent(n)
			case hasClass(n, "result__snippet"):
				result.Snippet = textContent(n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return result
}

// resolveResultURL makes the href absolute against the request URL and
// unwraps the engine's redirect indirection when present.
func resolveResultURL(href string, base *url.URL) string {
	if href == "" {
		return ""
	}

	resolved := href
	if base != nil {
		if ref, err := url.Parse(href); err == nil {
			resolved = base.ResolveReference(ref).String()
		}
	}

	// DuckDuckGo wraps result links as /l/?uddg=<escaped target>.
	if parsed, err := url.Parse(resolved); err == nil {
		if target := parsed.Query().Get("uddg"); target != "" {
			return target
		}
	}
	return resolved
}

func hasClass(n *html.Node, class string) bool {
	for _, field := range strings.Fields(attrValue(n, "class")) {
		if field == class {
			return true
		}
	}
	return false
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// Package tool provides tools that agents can call during a run.
package tool

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// WebFetch is a tool that fetches a web page and returns its readable text.
type WebFetch struct {
	Client    *http.Client
	MaxChars  int
	UserAgent string
}

type WebFetchOption func(*WebFetch)

// WithFetchHTTPClient sets the HTTP client used for requests.
func WithFetchHTTPClient(client *http.Client) WebFetchOption {
	return func(w *WebFetch) {
		w.Client = client
	}
}

// WithFetchMaxChars caps the length of the returned text.
func WithFetchMaxChars(maxChars int) WebFetchOption {
	return func(w *WebFetch) {
		if maxChars < 1 {
			maxChars = 1
		}
		w.MaxChars = maxChars
	}
}

// WithFetchUserAgent sets the User-Agent header for requests.
func WithFetchUserAgent(userAgent string) WebFetchOption {
	return func(w *WebFetch) {
		w.UserAgent = userAgent
	}
}

// NewWebFetch creates a new WebFetch tool.
func NewWebFetch(opts ...WebFetchOption) *WebFetch {
	w := &WebFetch{
		Client:    &http.Client{},
		MaxChars:  8000,
		UserAgent: "agentkit-webfetch/1.0",
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Name returns the name of the tool.
func (w *WebFetch) Name() string {
	return "Web_Fetch"
}

// Description returns the description of the tool.
func (w *WebFetch) Description() string {
	return "Fetches a web page and returns its readable text content. " +
		"Useful for reading articles and documentation. " +
		"Input should be a URL."
}

// Call fetches the page and extracts its text.
func (w *WebFetch) Call(ctx context.Context, input string) (string, error) {
	pageURL := strings.TrimSpace(input)
	if pageURL == "" {
		return "", fmt.Errorf("empty URL")
	}

	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", w.UserAgent)

	resp, err := w.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned status: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	var sb strings.Builder
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		sb.WriteString("Title: " + title + "\n\n")
	}

	doc.Find("h1, h2, h3, h4, h5, h6, p, li, td, pre").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text != "" {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
	})

	text := sb.String()
	if text == "" {
		text = strings.TrimSpace(doc.Text())
	}
	if text == "" {
		return "No readable content found", nil
	}

	if len(text) > w.MaxChars {
		text = text[:w.MaxChars]
	}
	return text, nil
}

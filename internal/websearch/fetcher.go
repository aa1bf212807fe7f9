package websearch

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// PageFetcher retrieves web pages over HTTP and extracts their visible
// text. It implements Fetcher and therefore never returns an error: a
// failed fetch is an empty string.
type PageFetcher struct {
	client *http.Client
}

// NewPageFetcher creates a PageFetcher with the given per-request timeout.
func NewPageFetcher(timeout time.Duration) *PageFetcher {
	return &PageFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch implements Fetcher.
func (f *PageFetcher) Fetch(ctx context.Context, url string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ""
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	return ExtractText(resp.Body)
}

// ExtractText tokenizes HTML and returns the visible text, skipping
// script and style elements, with runs of whitespace collapsed to single
// spaces. A parse error yields whatever text was extracted up to that
// point (io.EOF is the normal terminator).
func ExtractText(r io.Reader) string {
	tokenizer := html.NewTokenizer(r)

	var sb strings.Builder
	skipDepth := 0
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(sb.String())
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if skippedTag(string(name)) {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if skippedTag(string(name)) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			text := strings.TrimSpace(string(tokenizer.Text()))
			if text == "" {
				continue
			}
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strings.Join(strings.Fields(text), " "))
		}
	}
}

// skippedTag reports whether an element's text content is invisible.
func skippedTag(name string) bool {
	switch name {
	case "script", "style", "noscript":
		return true
	}
	return false
}

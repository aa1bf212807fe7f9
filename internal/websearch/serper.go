package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/inquestlab/inquest/internal/errors"
)

const serperEndpoint = "https://google.serper.dev/search"

// Serper is the Serper API provider, used as the secondary fallback.
type Serper struct {
	apiKey   string
	endpoint string
	count    int
	client   *http.Client
}

// NewSerper creates a Serper provider.
func NewSerper(apiKey string, count int, timeout time.Duration) *Serper {
	return &Serper{
		apiKey:   apiKey,
		endpoint: serperEndpoint,
		count:    count,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name implements Provider.
func (s *Serper) Name() string { return "serper" }

// serperResponse mirrors the slice of the Serper reply we consume.
type serperResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

// Search implements Provider.
func (s *Serper) Search(ctx context.Context, query string) ([]Result, error) {
	u := fmt.Sprintf("%s?q=%s&num=%d", s.endpoint, url.QueryEscape(query), s.count)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.NewSearchError(s.Name(), "building request", err)
	}
	req.Header.Set("X-API-KEY", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.NewSearchError(s.Name(), "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewSearchError(s.Name(), fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var decoded serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.NewSearchError(s.Name(), "decoding response", err)
	}

	results := make([]Result, 0, len(decoded.Organic))
	for _, r := range decoded.Organic {
		results = append(results, Result{
			Title:   r.Title,
			URL:     r.Link,
			Snippet: r.Snippet,
		})
	}
	return results, nil
}

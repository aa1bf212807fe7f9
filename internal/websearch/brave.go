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

const braveEndpoint = "https://api.search.brave.com/res/v1/web/search"

// Brave is the Brave Search API provider.
type Brave struct {
	apiKey   string
	endpoint string
	count    int
	client   *http.Client
}

// NewBrave creates a Brave provider. count is how many results to request
// per call.
func NewBrave(apiKey string, count int, timeout time.Duration) *Brave {
	return &Brave{
		apiKey:   apiKey,
		endpoint: braveEndpoint,
		count:    count,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name implements Provider.
func (b *Brave) Name() string { return "brave" }

// braveResponse mirrors the slice of the Brave API reply we consume.
type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// Search implements Provider.
func (b *Brave) Search(ctx context.Context, query string) ([]Result, error) {
	u := fmt.Sprintf("%s?q=%s&count=%d", b.endpoint, url.QueryEscape(query), b.count)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.NewSearchError(b.Name(), "building request", err)
	}
	req.Header.Set("X-Subscription-Token", b.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, errors.NewSearchError(b.Name(), "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewSearchError(b.Name(), fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var decoded braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.NewSearchError(b.Name(), "decoding response", err)
	}

	results := make([]Result, 0, len(decoded.Web.Results))
	for _, r := range decoded.Web.Results {
		results = append(results, Result{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Description,
		})
	}
	return results, nil
}

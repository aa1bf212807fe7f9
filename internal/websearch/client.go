package websearch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/inquestlab/inquest/internal/errors"
	"github.com/inquestlab/inquest/internal/logging"
)

// Page is one search result enriched with the fetched page text. Content
// is empty when the fetch failed or no fetcher is configured.
type Page struct {
	Result
	Content string
}

// Client combines an ordered list of providers with a content fetcher.
type Client struct {
	providers        []Provider
	fetcher          Fetcher
	fetchConcurrency int
	log              *logging.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithFetcher sets the content fetcher used to enrich results.
func WithFetcher(f Fetcher) ClientOption {
	return func(c *Client) { c.fetcher = f }
}

// WithFetchConcurrency bounds how many pages are fetched in parallel.
func WithFetchConcurrency(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.fetchConcurrency = n
		}
	}
}

// WithLogger sets the client's logger.
func WithLogger(log *logging.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// NewClient creates a Client that tries providers in the given order.
func NewClient(providers []Provider, opts ...ClientOption) *Client {
	c := &Client{
		providers:        providers,
		fetchConcurrency: 4,
		log:              logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search tries each provider in order until one returns results, then
// enriches each result with the page's plain text. Provider failures fall
// through to the next provider; only a fully empty sweep is an error.
func (c *Client) Search(ctx context.Context, query string) ([]Page, error) {
	if len(c.providers) == 0 {
		return nil, errors.ErrNoProviders
	}

	var results []Result
	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := p.Search(ctx, query)
		if err != nil {
			c.log.Warn("provider failed, falling through", "provider", p.Name(), "error", err)
			continue
		}
		if len(res) == 0 {
			c.log.Debug("provider returned no results", "provider", p.Name())
			continue
		}
		c.log.Info("search complete", "provider", p.Name(), "results", len(res))
		results = res
		break
	}
	if len(results) == 0 {
		return nil, errors.ErrNoResults
	}

	pages := make([]Page, len(results))
	for i, r := range results {
		pages[i] = Page{Result: r}
	}

	if c.fetcher != nil {
		// Fetches are independent and silent-on-failure, so the group
		// never carries an error; it only bounds concurrency.
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.fetchConcurrency)
		for i := range pages {
			g.Go(func() error {
				pages[i].Content = c.fetcher.Fetch(gctx, pages[i].URL)
				return nil
			})
		}
		_ = g.Wait()
	}

	return pages, nil
}

package websearch

import "context"

// Result is one web-search hit.
type Result struct {
	Title   string
	URL     string
	Snippet string
}

// Provider performs a web search against one external API.
type Provider interface {
	// Name identifies the provider in logs and errors.
	Name() string
	// Search returns an ordered list of results for the query. An empty
	// list with a nil error means the provider had nothing for this query.
	Search(ctx context.Context, query string) ([]Result, error)
}

// Fetcher retrieves the plain text of a web page. Implementations fail
// silently: any network or parse error yields an empty string.
type Fetcher interface {
	Fetch(ctx context.Context, url string) string
}

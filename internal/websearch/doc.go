// Package websearch provides the web-search and content-fetch collaborators
// consumed by the gathering phase.
//
// Providers are tried in a fixed fallback order: the first provider that
// returns results wins, and an empty or failed result moves on to the next.
// Each result is optionally enriched with the page's plain text by a
// fetcher that fails silently, returning an empty string on any network or
// parse error, so one bad page never aborts a search.
package websearch

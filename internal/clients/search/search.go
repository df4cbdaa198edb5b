// Package search implements the SearchClient contract: turning a query
// into ranked (title, url) results.
package search

import "context"

type Result struct {
	Title string
	URL   string
}

type Client interface {
	// Search returns at most limit results ordered by provider relevance.
	Search(ctx context.Context, query string, limit int) ([]Result, error)

	// ProviderID names the provider for Source.extra_metadata.provider.
	ProviderID() string
}

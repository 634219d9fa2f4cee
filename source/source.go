// Package source defines the domain models and collaborator interfaces for playable source discovery.
package source

import (
	"context"
	"errors"
)

// ErrNotFound is returned by detail lookups for identifiers the site does
// not know. A search returning zero results is not an error.
var ErrNotFound = errors.New("not found")

// Searcher is the catalog-search collaborator. Search is idempotent, may
// return zero candidates, and errors only on transport failure.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
}

// DetailFetcher is the per-site lookup collaborator for exact identifiers.
type DetailFetcher interface {
	FetchDetail(ctx context.Context, src, id string) (Candidate, error)
}

// Provider is the full catalog collaborator surface consumed by the resolver.
type Provider interface {
	Searcher
	DetailFetcher
}

package search

import (
	"context"

	"github.com/kailas-cloud/solrdex/internal/domain/search/filter"
	"github.com/kailas-cloud/solrdex/internal/domain/search/result"
)

// Searcher runs queries against the collection selected with Use.
type Searcher interface {
	Use(name string) error
	Search(ctx context.Context, term string, filters filter.Spec, pageNumber, pageLength int) (result.Result, error)
}

// SearcherFactory returns a fresh Searcher per call.
type SearcherFactory func() Searcher

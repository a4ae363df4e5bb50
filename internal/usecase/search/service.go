package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/solrdex/internal/domain"
	"github.com/kailas-cloud/solrdex/internal/domain/search/filter"
	"github.com/kailas-cloud/solrdex/internal/domain/search/result"
)

// Page size bounds.
const (
	DefaultPageLength = 20
	MaxPageLength     = 1000
)

// Request is a single search over one collection.
type Request struct {
	Term       string
	Filters    filter.Spec
	Page       int // zero-based
	PageLength int // 0 uses the default
}

// Service runs searches.
type Service struct {
	searchers     SearcherFactory
	defaultLength int
	maxLength     int
}

// New creates a search service.
func New(searchers SearcherFactory) *Service {
	return &Service{
		searchers:     searchers,
		defaultLength: DefaultPageLength,
		maxLength:     MaxPageLength,
	}
}

// WithPagination overrides the default and maximum page length.
func (s *Service) WithPagination(defaultLength, maxLength int) *Service {
	if defaultLength > 0 {
		s.defaultLength = defaultLength
	}
	if maxLength > 0 {
		s.maxLength = maxLength
	}
	return s
}

// Search runs req against collection. A result with OK false and a nil error
// means the engine answered with a non-200 status. When it could not be
// reached at all, the cause is returned as the error.
func (s *Service) Search(ctx context.Context, collection string, req Request) (result.Result, error) {
	if collection == "" {
		return result.Result{}, fmt.Errorf("%w: collection name is required", domain.ErrInvalidRequest)
	}
	if req.Page < 0 {
		return result.Result{}, fmt.Errorf("%w: page must be non-negative", domain.ErrInvalidRequest)
	}
	length := req.PageLength
	if length == 0 {
		length = s.defaultLength
	}
	if length < 0 || length > s.maxLength {
		return result.Result{}, fmt.Errorf("%w: page_length must be between 1 and %d",
			domain.ErrInvalidRequest, s.maxLength)
	}

	sr := s.searchers()
	if err := sr.Use(collection); err != nil {
		return result.Result{}, fmt.Errorf("select collection: %w", err)
	}
	res, err := sr.Search(ctx, req.Term, req.Filters, req.Page, length)
	if err != nil {
		return result.Result{}, fmt.Errorf("search %s: %w", collection, err)
	}
	if cause := res.Err(); cause != nil {
		return res, fmt.Errorf("search %s: %w", collection, cause)
	}
	return res, nil
}

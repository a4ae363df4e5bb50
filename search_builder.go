package solrdex

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/solrdex/internal/domain/search/filter"
	"github.com/kailas-cloud/solrdex/internal/domain/search/result"
	searchuc "github.com/kailas-cloud/solrdex/internal/usecase/search"
)

// Modifiers understood by Where.
const (
	Eq     = "eq"
	Not    = "not"
	Gt     = "gt"
	Gte    = "gte"
	Lt     = "lt"
	Lte    = "lte"
	Prefix = "prefix"
)

// SearchBuilder is a fluent builder for search queries.
type SearchBuilder struct {
	idx        *Index
	term       string
	groups     filter.Spec
	page       int
	pageLength int
}

// Where adds a modifier filter on field. A slice value yields one clause per
// element, OR-ed together.
func (b *SearchBuilder) Where(field, modifier string, value any) *SearchBuilder {
	b.groups = append(b.groups, filter.Group{field + ":" + modifier: value})
	return b
}

// Facet adds an exact-match facet filter. A later Facet on the same field wins,
// and replaces any Where on that field.
func (b *SearchBuilder) Facet(field string, value any) *SearchBuilder {
	b.groups = append(b.groups, filter.Group{field: value})
	return b
}

// Filter appends a raw filter group whose keys are "field:modifier" or facet names.
func (b *SearchBuilder) Filter(group map[string]any) *SearchBuilder {
	b.groups = append(b.groups, filter.Group(group))
	return b
}

// Page selects the zero-based page and its length. A length of 0 uses the
// client default.
func (b *SearchBuilder) Page(number, length int) *SearchBuilder {
	b.page = number
	b.pageLength = length
	return b
}

// Do executes the search. A non-200 answer is reported through
// SearchResult.OK, not as an error; an unreachable Solr is an error.
func (b *SearchBuilder) Do(ctx context.Context) (SearchResult, error) {
	start := time.Now()
	res, err := b.idx.client.searchSvc.Search(ctx, b.idx.name, searchuc.Request{
		Term:       b.term,
		Filters:    b.groups,
		Page:       b.page,
		PageLength: b.pageLength,
	})
	b.idx.client.obs.observeFlag("search", start, res.OK(), err)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search %q: %w", b.idx.name, err)
	}
	return resultFromDomain(res), nil
}

func resultFromDomain(res result.Result) SearchResult {
	out := SearchResult{
		OK:      res.OK(),
		Status:  res.Status(),
		Total:   res.Total(),
		Start:   res.Start(),
		Records: res.Records(),
		Raw:     res.Raw(),
	}
	if len(res.Facets()) > 0 {
		out.Facets = make(map[string][]Bucket, len(res.Facets()))
		for field, buckets := range res.Facets() {
			bs := make([]Bucket, len(buckets))
			for i, b := range buckets {
				bs[i] = Bucket{Value: b.Value, Count: b.Count}
			}
			out.Facets[field] = bs
		}
	}
	return out
}

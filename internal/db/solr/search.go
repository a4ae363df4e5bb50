package solr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kailas-cloud/solrdex/internal/domain/search/filter"
	"github.com/kailas-cloud/solrdex/internal/domain/search/result"
)

// Search runs term against the active collection.
//
// filters are translated to filter clauses; facets configured for the index
// are requested as terms facets. pageNumber is zero-based and pageLength <= 0
// leaves paging to the engine. A non-200 answer yields a result with OK false;
// when no answer arrived at all, result.Err holds the cause. An error is
// returned only for a precondition failure or an undecodable body.
func (c *Client) Search(
	ctx context.Context, term string, filters filter.Spec, pageNumber, pageLength int,
) (result.Result, error) {
	if err := c.requireIndex(); err != nil {
		return result.Result{}, err
	}
	base, err := c.InitIndex(c.indexName)
	if err != nil {
		return result.Result{}, err
	}

	q, err := c.translator.Translate(filters)
	if err != nil {
		return result.Result{}, err
	}

	opts := QueryOptions{Filters: q.FilterQueries()}
	if c.cfg.Debug {
		opts.Params = map[string]any{"debug": true}
	}
	if pageLength > 0 {
		offset := max(pageNumber, 0) * pageLength
		limit := pageLength
		opts.Offset, opts.Limit = &offset, &limit
	}
	if cfg, ok := c.cfg.Indices.Lookup(c.indexName); ok {
		opts.Facets = cfg.AttributesForFaceting()
	}

	req, err := ForQuery(base, c.indexName, term, opts)
	if err != nil {
		return result.Result{}, err
	}

	resp := c.send(ctx, OpQuery, req)
	data, err := resp.Body.Bytes()
	if err != nil {
		return result.Result{}, err
	}
	c.response = nil
	if resp.Status == 0 {
		return result.Unreachable(c.lastErr), nil
	}

	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		if resp.Status != http.StatusOK {
			return result.Failed(resp.Status, nil), nil
		}
		return result.Result{}, fmt.Errorf("decode search response: %w", err)
	}
	c.response = body

	if resp.Status != http.StatusOK {
		return result.Failed(resp.Status, body), nil
	}
	return decodeResult(resp.Status, body), nil
}

func decodeResult(status int, body map[string]any) result.Result {
	var (
		total, start int
		records      []map[string]any
	)
	if r, ok := body["response"].(map[string]any); ok {
		total = asInt(r["numFound"])
		start = asInt(r["start"])
		if docs, ok := r["docs"].([]any); ok {
			records = make([]map[string]any, 0, len(docs))
			for _, d := range docs {
				if doc, ok := d.(map[string]any); ok {
					records = append(records, doc)
				}
			}
		}
	}
	return result.New(true, status, total, start, records, decodeFacets(body["facets"]), body)
}

// decodeFacets maps JSON facet API output ({"field": {"buckets": [...]}}) to buckets.
func decodeFacets(raw any) map[string][]result.Bucket {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string][]result.Bucket)
	for field, v := range m {
		f, ok := v.(map[string]any)
		if !ok {
			continue
		}
		list, ok := f["buckets"].([]any)
		if !ok {
			continue
		}
		buckets := make([]result.Bucket, 0, len(list))
		for _, b := range list {
			bm, ok := b.(map[string]any)
			if !ok {
				continue
			}
			buckets = append(buckets, result.Bucket{Value: bm["val"], Count: asInt(bm["count"])})
		}
		out[field] = buckets
	}
	return out
}

func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	case int:
		return n
	}
	return 0
}

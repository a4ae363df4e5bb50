package solrdex

import (
	"context"
	"fmt"
	"time"
)

// Index is a handle on one collection. It holds no connection state.
type Index struct {
	name   string
	client *Client
}

// Name returns the collection name.
func (idx *Index) Name() string { return idx.name }

// Upsert writes a single document. The flag is true when Solr answered 200.
func (idx *Index) Upsert(ctx context.Context, doc Document) (bool, error) {
	return idx.write(ctx, "documents.upsert", []Document{doc})
}

// BulkUpsert writes docs in one request. The flag is true when Solr answered 200.
// A Solr that cannot be reached is reported as an error wrapping ErrTransport.
func (idx *Index) BulkUpsert(ctx context.Context, docs []Document) (bool, error) {
	return idx.write(ctx, "documents.bulk_upsert", docs)
}

func (idx *Index) write(ctx context.Context, op string, docs []Document) (bool, error) {
	start := time.Now()
	ok, err := idx.client.docSvc.Upsert(ctx, idx.name, docs)
	idx.client.obs.observeFlag(op, start, ok, err)
	if err != nil {
		return false, fmt.Errorf("upsert into %q: %w", idx.name, err)
	}
	return ok, nil
}

// Delete removes the document with id. The flag is true when Solr answered 200.
func (idx *Index) Delete(ctx context.Context, id string) (bool, error) {
	start := time.Now()
	ok, err := idx.client.docSvc.Delete(ctx, idx.name, id)
	idx.client.obs.observeFlag("documents.delete", start, ok, err)
	if err != nil {
		return false, fmt.Errorf("delete %q from %q: %w", id, idx.name, err)
	}
	return ok, nil
}

// Search starts a query for term. An empty term matches everything Solr's
// default query parser matches for "".
func (idx *Index) Search(term string) *SearchBuilder {
	return &SearchBuilder{idx: idx, term: term}
}

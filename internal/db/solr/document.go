package solr

import "context"

// Upsert adds or replaces a single document in the active collection.
func (c *Client) Upsert(ctx context.Context, doc map[string]any) (bool, error) {
	return c.BulkUpsert(ctx, []map[string]any{doc})
}

// BulkUpsert sends all docs in one committed update request and reports whether
// the engine answered 200. Chunking is the caller's concern.
func (c *Client) BulkUpsert(ctx context.Context, docs []map[string]any) (bool, error) {
	if err := c.requireIndex(); err != nil {
		return false, err
	}
	base, err := c.InitIndex(c.indexName)
	if err != nil {
		return false, err
	}
	req, err := ForUpdate(base, c.indexName, docs)
	if err != nil {
		return false, err
	}
	return Succeeded(c.send(ctx, OpUpdate, req))
}

// DeleteByID removes a document from the active collection and reports whether
// the engine answered 200.
func (c *Client) DeleteByID(ctx context.Context, id string) (bool, error) {
	if err := c.requireIndex(); err != nil {
		return false, err
	}
	base, err := c.InitIndex(c.indexName)
	if err != nil {
		return false, err
	}
	req, err := ForDelete(base, c.indexName, id)
	if err != nil {
		return false, err
	}
	return Succeeded(c.send(ctx, OpDelete, req))
}

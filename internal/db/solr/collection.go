package solr

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/solrdex/internal/domain"
)

// Operation names used for metrics and logs.
const (
	OpList   = "list"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
	OpQuery  = "query"
)

// ListCollections returns the collection names known to the engine.
func (c *Client) ListCollections(ctx context.Context) ([]string, error) {
	base, err := c.InitIndex(c.indexName)
	if err != nil {
		return nil, err
	}
	return c.listCollections(ctx, base)
}

func (c *Client) listCollections(ctx context.Context, base RawRequest) ([]string, error) {
	dec, err := Classify(c.send(ctx, OpList, ForCollectionList(base)))
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	raw, ok := dec.Body["collections"]
	if !ok {
		return nil, fmt.Errorf("%w: Unable to get collections", domain.ErrProtocol)
	}
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: collections is %T, want a list", domain.ErrProtocol, raw)
	}

	names := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			names = append(names, s)
		}
	}
	return names, nil
}

// CollectionExists reports whether the engine has a collection named name,
// compared case-insensitively. It selects name as the active collection.
func (c *Client) CollectionExists(ctx context.Context, name string) (bool, error) {
	base, err := c.InitIndex(name)
	if err != nil {
		return false, err
	}
	names, err := c.listCollections(ctx, base)
	if err != nil {
		return false, err
	}
	if len(names) == 0 {
		return false, nil
	}

	want := strings.ToLower(name)
	for _, n := range names {
		if strings.EqualFold(n, want) {
			return true, nil
		}
	}
	return false, nil
}

// EnsureCollection creates the collection unless it already exists.
func (c *Client) EnsureCollection(ctx context.Context, name string) (bool, error) {
	exists, err := c.CollectionExists(ctx, name)
	if err != nil {
		return false, err
	}
	if exists {
		return true, nil
	}
	return c.CreateCollection(ctx, name)
}

// CreateCollection issues a CREATE with the configured shard count and reports
// whether the engine answered 200. Engine errors (>= 400) are returned as errors.
func (c *Client) CreateCollection(ctx context.Context, name string) (bool, error) {
	cfg, _ := c.cfg.Indices.Lookup(name)

	base, err := c.InitIndex(name)
	if err != nil {
		return false, err
	}

	dec, err := Classify(c.send(ctx, OpCreate, ForCollectionCreate(base, name, cfg.NumShards())))
	if err != nil {
		return false, fmt.Errorf("create collection %s: %w", name, err)
	}
	return dec.Status == 200, nil
}

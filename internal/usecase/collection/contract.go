package collection

import "context"

// Admin manages search engine collections.
type Admin interface {
	ListCollections(ctx context.Context) ([]string, error)
	CollectionExists(ctx context.Context, name string) (bool, error)
	EnsureCollection(ctx context.Context, name string) (bool, error)
}

// AdminFactory returns a fresh Admin. Admins are single-use per call.
type AdminFactory func() Admin

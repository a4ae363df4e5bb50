package collection

import (
	"context"
	"fmt"
	"sort"

	"github.com/kailas-cloud/solrdex/internal/domain"
	"github.com/kailas-cloud/solrdex/internal/domain/index"
)

// Service handles collection administration.
type Service struct {
	admins  AdminFactory
	indices *index.Registry
}

// New creates a collection service.
func New(admins AdminFactory, indices *index.Registry) *Service {
	return &Service{admins: admins, indices: indices}
}

// List returns the engine's collection names, sorted.
func (s *Service) List(ctx context.Context) ([]string, error) {
	names, err := s.admins().ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Exists reports whether the collection exists, compared case-insensitively.
func (s *Service) Exists(ctx context.Context, name string) (bool, error) {
	if err := validateName(name); err != nil {
		return false, err
	}
	ok, err := s.admins().CollectionExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("collection exists: %w", err)
	}
	return ok, nil
}

// Ensure creates the collection when missing. The returned flag is false when
// the engine did not acknowledge the CREATE with 200.
func (s *Service) Ensure(ctx context.Context, name string) (bool, error) {
	if err := validateName(name); err != nil {
		return false, err
	}
	ok, err := s.admins().EnsureCollection(ctx, name)
	if err != nil {
		return false, fmt.Errorf("ensure collection: %w", err)
	}
	return ok, nil
}

// Config returns the static settings for name. Unknown names get defaults.
func (s *Service) Config(name string) index.Config {
	cfg, ok := s.indices.Lookup(name)
	if !ok {
		return index.New(name, 0, nil)
	}
	return cfg
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: collection name is required", domain.ErrInvalidRequest)
	}
	return nil
}

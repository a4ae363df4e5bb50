package document

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/solrdex/internal/domain"
)

// DefaultMaxBatchSize bounds a single upsert request.
const DefaultMaxBatchSize = 1000

// Service handles document writes.
type Service struct {
	writers      WriterFactory
	maxBatchSize int
}

// New creates a document service.
func New(writers WriterFactory) *Service {
	return &Service{writers: writers, maxBatchSize: DefaultMaxBatchSize}
}

// WithMaxBatchSize configures the maximum number of documents per upsert.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// Upsert writes docs to collection in one request. The flag reports whether
// the engine answered 200; an error means the request was never judged,
// including a transport failure.
func (s *Service) Upsert(ctx context.Context, collection string, docs []map[string]any) (bool, error) {
	if len(docs) == 0 || len(docs) > s.maxBatchSize {
		return false, fmt.Errorf("%w: documents count must be between 1 and %d",
			domain.ErrInvalidRequest, s.maxBatchSize)
	}
	w, err := s.writer(collection)
	if err != nil {
		return false, err
	}
	ok, err := w.BulkUpsert(ctx, docs)
	if err != nil {
		return false, fmt.Errorf("upsert documents: %w", err)
	}
	if !ok {
		return false, unanswered("upsert documents", w)
	}
	return true, nil
}

// Delete removes a document by id from collection.
func (s *Service) Delete(ctx context.Context, collection, id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("%w: document id is required", domain.ErrInvalidRequest)
	}
	w, err := s.writer(collection)
	if err != nil {
		return false, err
	}
	ok, err := w.DeleteByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	if !ok {
		return false, unanswered("delete document", w)
	}
	return true, nil
}

// unanswered turns a false flag into an error when the engine never answered.
// A false flag with a status stays a plain rejection.
func unanswered(op string, w Writer) error {
	if cause := w.LastError(); cause != nil {
		return fmt.Errorf("%s: %w", op, cause)
	}
	return nil
}

func (s *Service) writer(collection string) (Writer, error) {
	if collection == "" {
		return nil, fmt.Errorf("%w: collection name is required", domain.ErrInvalidRequest)
	}
	w := s.writers()
	if err := w.Use(collection); err != nil {
		return nil, fmt.Errorf("select collection: %w", err)
	}
	return w, nil
}

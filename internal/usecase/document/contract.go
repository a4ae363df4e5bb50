package document

import "context"

// Writer writes documents to the collection selected with Use.
type Writer interface {
	Use(name string) error
	BulkUpsert(ctx context.Context, docs []map[string]any) (bool, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	// LastError explains a false flag that had no engine status behind it.
	LastError() error
}

// WriterFactory returns a fresh Writer per call.
type WriterFactory func() Writer

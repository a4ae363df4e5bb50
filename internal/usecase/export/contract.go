package export

import (
	"context"

	"github.com/kailas-cloud/solrdex/internal/domain/job"
	"github.com/kailas-cloud/solrdex/internal/domain/record"
)

// JobSubmitter hands jobs to the queue.
type JobSubmitter interface {
	Submit(ctx context.Context, j job.Job) error
}

// RecordLister enumerates records of a class.
type RecordLister interface {
	Count(ctx context.Context, class string) (int, error)
	Page(ctx context.Context, class string, offset, length int) ([]record.Record, error)
	Get(ctx context.Context, class, id string) (record.Record, error)
}

// Indexer writes to a single, already selected collection.
type Indexer interface {
	BulkUpsert(ctx context.Context, docs []map[string]any) (bool, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	// LastError explains a false flag that had no engine status behind it.
	LastError() error
}

// IndexerFactory returns a fresh Indexer bound to index. Every job gets its own.
type IndexerFactory func(index string) (Indexer, error)

// JobSource yields queued jobs. ok is false when the wait timed out empty.
type JobSource interface {
	Next(ctx context.Context) (j job.Job, ok bool, err error)
	Len(ctx context.Context) (int64, error)
}

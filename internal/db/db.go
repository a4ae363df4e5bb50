package db

import (
	"context"
	"time"

	"github.com/kailas-cloud/solrdex/internal/domain/job"
	"github.com/kailas-cloud/solrdex/internal/domain/record"
)

// Pinger checks backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JobQueue is the job queue backend. Scheduling and retry belong to the backend.
type JobQueue interface {
	Pinger
	Submit(ctx context.Context, j job.Job) error
	// Next blocks up to the backend's block timeout. ok is false when no job arrived.
	Next(ctx context.Context) (j job.Job, ok bool, err error)
	Len(ctx context.Context) (int64, error)
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// RecordLister enumerates records of a class for export.
type RecordLister interface {
	Pinger
	Count(ctx context.Context, class string) (int, error)
	Page(ctx context.Context, class string, offset, length int) ([]record.Record, error)
	Get(ctx context.Context, class, id string) (record.Record, error)
}

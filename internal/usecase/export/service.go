package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/solrdex/internal/domain"
	"github.com/kailas-cloud/solrdex/internal/domain/job"
	"github.com/kailas-cloud/solrdex/internal/domain/record"
	"github.com/kailas-cloud/solrdex/internal/metrics"
)

// DefaultBatchLength is the page size of a bulk export job.
const DefaultBatchLength = 100

// Job outcome labels.
const (
	statusSubmitted = "submitted"
	statusOK        = "ok"
	statusFailed    = "failed"
	statusError     = "error"
)

// Service creates export/delete jobs and runs them.
type Service struct {
	queue       JobSubmitter
	records     RecordLister
	indexers    IndexerFactory
	batchLength int
}

// New creates an export service.
func New(queue JobSubmitter, records RecordLister, indexers IndexerFactory) *Service {
	return &Service{
		queue:       queue,
		records:     records,
		indexers:    indexers,
		batchLength: DefaultBatchLength,
	}
}

// WithBatchLength configures the bulk export page size.
func (s *Service) WithBatchLength(n int) *Service {
	if n > 0 {
		s.batchLength = n
	}
	return s
}

// BatchLength returns the bulk export page size.
func (s *Service) BatchLength() int { return s.batchLength }

// CreateBulkExportJob submits one bulk export job per page of class.
// Pages are ceil(count / batchLength); a class with no records submits nothing.
func (s *Service) CreateBulkExportJob(ctx context.Context, index, class string) ([]job.Job, error) {
	total, err := s.records.Count(ctx, class)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", class, err)
	}

	pages := (total + s.batchLength - 1) / s.batchLength
	jobs := make([]job.Job, 0, pages)
	for page := range pages {
		j, err := job.NewBulkExport(index, class, page*s.batchLength)
		if err != nil {
			return jobs, err
		}
		if err := s.submit(ctx, j); err != nil {
			return jobs, err
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

// CreateExportJob submits a job exporting a single record.
func (s *Service) CreateExportJob(ctx context.Context, index, class, id string) (job.Job, error) {
	j, err := job.NewExport(index, class, id)
	if err != nil {
		return job.Job{}, err
	}
	if err := s.submit(ctx, j); err != nil {
		return job.Job{}, err
	}
	return j, nil
}

// CreateDeleteJob submits a job deleting a single record from the index.
func (s *Service) CreateDeleteJob(ctx context.Context, index, class, id string) (job.Job, error) {
	j, err := job.NewDelete(index, class, id)
	if err != nil {
		return job.Job{}, err
	}
	if err := s.submit(ctx, j); err != nil {
		return job.Job{}, err
	}
	return j, nil
}

func (s *Service) submit(ctx context.Context, j job.Job) error {
	if err := s.queue.Submit(ctx, j); err != nil {
		return fmt.Errorf("submit %s job: %w", j.Kind, err)
	}
	metrics.JobsTotal.WithLabelValues(string(j.Kind), statusSubmitted).Inc()
	return nil
}

// Run executes j with its own indexer. A write the engine rejects is ErrJobFailed.
func (s *Service) Run(ctx context.Context, j job.Job) error {
	err := s.run(ctx, j)
	switch {
	case err == nil:
		metrics.JobsTotal.WithLabelValues(string(j.Kind), statusOK).Inc()
	case errors.Is(err, domain.ErrJobFailed):
		metrics.JobsTotal.WithLabelValues(string(j.Kind), statusFailed).Inc()
	default:
		metrics.JobsTotal.WithLabelValues(string(j.Kind), statusError).Inc()
	}
	return err
}

func (s *Service) run(ctx context.Context, j job.Job) error {
	if err := j.Validate(); err != nil {
		return fmt.Errorf("job %s: %w", j.ID, err)
	}
	ix, err := s.indexers(j.Index)
	if err != nil {
		return fmt.Errorf("job %s: indexer for %s: %w", j.ID, j.Index, err)
	}

	var ok bool
	switch j.Kind {
	case job.KindBulkExport:
		recs, err := s.records.Page(ctx, j.Class, j.Offset, s.batchLength)
		if err != nil {
			return fmt.Errorf("job %s: page %s@%d: %w", j.ID, j.Class, j.Offset, err)
		}
		if len(recs) == 0 {
			return nil
		}
		ok, err = ix.BulkUpsert(ctx, documents(recs))
		if err != nil {
			return fmt.Errorf("job %s: %w", j.ID, err)
		}

	case job.KindExport:
		rec, err := s.records.Get(ctx, j.Class, j.RecordID)
		if err != nil {
			return fmt.Errorf("job %s: get %s/%s: %w", j.ID, j.Class, j.RecordID, err)
		}
		ok, err = ix.BulkUpsert(ctx, documents([]record.Record{rec}))
		if err != nil {
			return fmt.Errorf("job %s: %w", j.ID, err)
		}

	case job.KindDelete:
		ok, err = ix.DeleteByID(ctx, j.RecordID)
		if err != nil {
			return fmt.Errorf("job %s: %w", j.ID, err)
		}
	}

	if !ok {
		if cause := ix.LastError(); cause != nil {
			return fmt.Errorf("job %s: %s %s: %w", j.ID, j.Kind, j.Index, cause)
		}
		return fmt.Errorf("job %s: %s %s rejected: %w", j.ID, j.Kind, j.Index, domain.ErrJobFailed)
	}
	return nil
}

func documents(recs []record.Record) []map[string]any {
	docs := make([]map[string]any, len(recs))
	for i, r := range recs {
		docs[i] = r.Document()
	}
	return docs
}

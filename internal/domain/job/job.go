package job

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/solrdex/internal/domain"
)

// Kind identifies what a job does when it runs.
type Kind string

const (
	// KindBulkExport exports one page of a record class.
	KindBulkExport Kind = "bulk_export"
	// KindExport exports a single record.
	KindExport Kind = "export"
	// KindDelete removes a single record from the index.
	KindDelete Kind = "delete"
)

// IsValid checks if the kind is supported.
func (k Kind) IsValid() bool {
	return k == KindBulkExport || k == KindExport || k == KindDelete
}

// Job is a unit of work handed to the queue. Jobs are idempotent.
type Job struct {
	ID        string `json:"id"`
	Kind      Kind   `json:"kind"`
	Index     string `json:"index"`
	Class     string `json:"class"`
	Offset    int    `json:"offset,omitempty"`
	RecordID  string `json:"record_id,omitempty"`
	CreatedAt int64  `json:"created_at"` // unix millis
}

// NewBulkExport creates a job exporting the page of class starting at offset.
func NewBulkExport(index, class string, offset int) (Job, error) {
	if err := validate(index, class); err != nil {
		return Job{}, err
	}
	if offset < 0 {
		return Job{}, fmt.Errorf("%w: offset must be non-negative, got %d", domain.ErrInvalidRequest, offset)
	}
	return newJob(KindBulkExport, index, class, offset, ""), nil
}

// NewExport creates a job exporting a single record.
func NewExport(index, class, recordID string) (Job, error) {
	if err := validateRecord(index, class, recordID); err != nil {
		return Job{}, err
	}
	return newJob(KindExport, index, class, 0, recordID), nil
}

// NewDelete creates a job deleting a single record from the index.
func NewDelete(index, class, recordID string) (Job, error) {
	if err := validateRecord(index, class, recordID); err != nil {
		return Job{}, err
	}
	return newJob(KindDelete, index, class, 0, recordID), nil
}

func newJob(kind Kind, index, class string, offset int, recordID string) Job {
	return Job{
		ID:        uuid.NewString(),
		Kind:      kind,
		Index:     index,
		Class:     class,
		Offset:    offset,
		RecordID:  recordID,
		CreatedAt: time.Now().UnixMilli(),
	}
}

func validate(index, class string) error {
	if index == "" {
		return fmt.Errorf("%w: index is required", domain.ErrInvalidRequest)
	}
	if class == "" {
		return fmt.Errorf("%w: record class is required", domain.ErrInvalidRequest)
	}
	return nil
}

func validateRecord(index, class, recordID string) error {
	if err := validate(index, class); err != nil {
		return err
	}
	if recordID == "" {
		return fmt.Errorf("%w: record id is required", domain.ErrInvalidRequest)
	}
	return nil
}

// Validate checks a decoded job for consistency.
func (j Job) Validate() error {
	if !j.Kind.IsValid() {
		return fmt.Errorf("%w: unknown job kind %q", domain.ErrInvalidRequest, j.Kind)
	}
	if j.Kind == KindBulkExport {
		if err := validate(j.Index, j.Class); err != nil {
			return err
		}
		if j.Offset < 0 {
			return fmt.Errorf("%w: offset must be non-negative, got %d", domain.ErrInvalidRequest, j.Offset)
		}
		return nil
	}
	return validateRecord(j.Index, j.Class, j.RecordID)
}

package export

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/solrdex/internal/metrics"
)

// DefaultErrorBackoff is the pause after the queue fails to yield a job.
const DefaultErrorBackoff = time.Second

// Worker consumes jobs from a queue and runs them one at a time.
type Worker struct {
	source  JobSource
	svc     *Service
	logger  *zap.Logger
	backoff time.Duration
}

// NewWorker creates a worker. A nil logger discards output.
func NewWorker(source JobSource, svc *Service, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{source: source, svc: svc, logger: logger, backoff: DefaultErrorBackoff}
}

// WithErrorBackoff overrides the pause after a queue error.
func (w *Worker) WithErrorBackoff(d time.Duration) *Worker {
	if d >= 0 {
		w.backoff = d
	}
	return w
}

// Run processes jobs until ctx is cancelled. Failed jobs are logged and dropped.
// A job already taken from the queue runs to completion on a context detached
// from ctx's cancellation; the handler timeout still bounds each exchange.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("export worker started")
	defer w.logger.Info("export worker stopped")

	for {
		if ctx.Err() != nil {
			return
		}
		w.reportDepth(ctx)

		j, ok, err := w.source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			w.logger.Error("failed to fetch job", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.backoff):
			}
			continue
		}
		if !ok {
			continue
		}

		start := time.Now()
		log := w.logger.With(
			zap.String("job_id", j.ID),
			zap.String("kind", string(j.Kind)),
			zap.String("index", j.Index),
			zap.String("class", j.Class),
		)
		if err := w.svc.Run(context.WithoutCancel(ctx), j); err != nil {
			log.Warn("job failed", zap.Error(err), zap.Duration("latency", time.Since(start)))
			continue
		}
		log.Info("job done", zap.Duration("latency", time.Since(start)))
	}
}

func (w *Worker) reportDepth(ctx context.Context) {
	n, err := w.source.Len(ctx)
	if err != nil {
		return
	}
	metrics.QueueDepth.Set(float64(n))
}

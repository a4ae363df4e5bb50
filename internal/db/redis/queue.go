package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/solrdex/internal/db"
	"github.com/kailas-cloud/solrdex/internal/domain/job"
)

// Key returns the list the queue pushes to.
func (q *Queue) Key() string { return q.key }

// Submit pushes j to the head of the list. Workers pop from the tail.
func (q *Queue) Submit(ctx context.Context, j job.Job) error {
	data, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	cmd := q.b().Lpush().Key(q.key).Element(string(data)).Build()
	if err := q.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpLPush, Err: err}
	}
	return nil
}

// Next pops the oldest job, blocking up to the configured timeout.
// ok is false when the timeout elapsed with an empty list.
func (q *Queue) Next(ctx context.Context) (job.Job, bool, error) {
	cmd := q.b().Brpop().Key(q.key).Timeout(q.blockTimeout.Seconds()).Build()
	reply, err := q.do(ctx, cmd).AsStrSlice()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return job.Job{}, false, nil
		}
		return job.Job{}, false, &db.Error{Op: db.OpBRPop, Err: err}
	}
	// BRPOP replies with [key, element].
	if len(reply) != 2 {
		return job.Job{}, false, &db.Error{
			Op:  db.OpBRPop,
			Err: fmt.Errorf("%w: unexpected reply length %d", db.ErrBadPayload, len(reply)),
		}
	}

	var j job.Job
	if err := json.Unmarshal([]byte(reply[1]), &j); err != nil {
		return job.Job{}, false, &db.Error{Op: db.OpBRPop, Err: fmt.Errorf("%w: %w", db.ErrBadPayload, err)}
	}
	if err := j.Validate(); err != nil {
		return job.Job{}, false, &db.Error{Op: db.OpBRPop, Err: fmt.Errorf("%w: %w", db.ErrBadPayload, err)}
	}
	return j, true, nil
}

// Len returns the number of pending jobs.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	cmd := q.b().Llen().Key(q.key).Build()
	n, err := q.do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpLLen, Err: err}
	}
	return n, nil
}

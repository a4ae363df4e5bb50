package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/solrdex/internal/db"
)

// Compile-time check: Queue implements db.JobQueue.
var _ db.JobQueue = (*Queue)(nil)

// DefaultKey is the list holding pending jobs.
const DefaultKey = "solrdex:jobs"

// DefaultBlockTimeout bounds a single BRPOP.
const DefaultBlockTimeout = 5 * time.Second

// Config holds connection parameters for the Redis job queue.
type Config struct {
	Addrs        []string
	Username     string
	Password     string
	DB           int
	Key          string
	BlockTimeout time.Duration
}

// Queue implements db.JobQueue over a Redis list via rueidis.
type Queue struct {
	client       rueidis.Client
	key          string
	blockTimeout time.Duration
}

// NewQueue creates a Redis job queue via rueidis.
func NewQueue(cfg Config) (*Queue, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return newQueue(client, cfg.Key, cfg.BlockTimeout), nil
}

func newQueue(client rueidis.Client, key string, blockTimeout time.Duration) *Queue {
	if key == "" {
		key = DefaultKey
	}
	if blockTimeout <= 0 {
		blockTimeout = DefaultBlockTimeout
	}
	return &Queue{client: client, key: key, blockTimeout: blockTimeout}
}

// Ping checks connectivity.
func (q *Queue) Ping(ctx context.Context) error {
	cmd := q.b().Ping().Build()
	if err := q.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the client.
func (q *Queue) Close() {
	q.client.Close()
}

// WaitForReady polls Ping until the queue responds or timeout expires.
func (q *Queue) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for queue: %w", ctx.Err())
		case <-ticker.C:
			if err := q.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func (q *Queue) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return q.client.Do(ctx, cmd)
}

func (q *Queue) b() rueidis.Builder {
	return q.client.B()
}

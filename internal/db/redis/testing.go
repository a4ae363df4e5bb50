package redis

import (
	"time"

	"github.com/redis/rueidis"
)

// NewQueueForTest creates a Queue with the provided rueidis client (test-only).
func NewQueueForTest(c rueidis.Client, key string, blockTimeout time.Duration) *Queue {
	return newQueue(c, key, blockTimeout)
}

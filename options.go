package solrdex

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type indexSettings struct {
	name      string
	numShards int
	facets    []string
}

type clientConfig struct {
	endpoint  string
	verifyTLS bool
	timeout   time.Duration
	debug     bool

	indices      []indexSettings
	maxBatchSize int
	pageLength   int
	maxPage      int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithEndpoint sets the Solr base URL, e.g. "https://solr:8983/solr".
// Without it the SOLR_END_POINT environment variable is read per operation.
func WithEndpoint(endpoint string) Option {
	return optionFunc(func(c *clientConfig) {
		c.endpoint = endpoint
	})
}

// WithVerifyTLS enables certificate verification. It is off by default.
func WithVerifyTLS() Option {
	return optionFunc(func(c *clientConfig) {
		c.verifyTLS = true
	})
}

// WithTimeout bounds every HTTP exchange. Zero (default) disables the timeout.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithDebug asks Solr for debug output on every search.
func WithDebug() Option {
	return optionFunc(func(c *clientConfig) {
		c.debug = true
	})
}

// WithIndex registers static settings for a collection: its shard count
// (0 uses the default of 2) and the fields to facet on.
func WithIndex(name string, numShards int, attributesForFaceting ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.indices = append(c.indices, indexSettings{
			name:      name,
			numShards: numShards,
			facets:    attributesForFaceting,
		})
	})
}

// WithMaxBatchSize sets the maximum number of documents per upsert.
// Default: 1000.
func WithMaxBatchSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxBatchSize = size
	})
}

// WithPagination sets the default and maximum search page length.
// Defaults: 20 and 1000.
func WithPagination(defaultLength, maxLength int) Option {
	return optionFunc(func(c *clientConfig) {
		c.pageLength = defaultLength
		c.maxPage = maxLength
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

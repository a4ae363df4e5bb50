package solrdex

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/solrdex/internal/db/solr"
	"github.com/kailas-cloud/solrdex/internal/domain/index"
	collectionuc "github.com/kailas-cloud/solrdex/internal/usecase/collection"
	documentuc "github.com/kailas-cloud/solrdex/internal/usecase/document"
	searchuc "github.com/kailas-cloud/solrdex/internal/usecase/search"
)

// Client is the solrdex SDK entry point.
type Client struct {
	engine    solr.Config
	collSvc   *collectionuc.Service
	docSvc    *documentuc.Service
	searchSvc *searchuc.Service
	obs       *observer
}

// New creates a Client. No connection is made until the first operation.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.endpoint != "" {
		if _, err := solr.ParseEndpoint(cfg.endpoint); err != nil {
			return nil, fmt.Errorf("solrdex: %w", err)
		}
	}
	if cfg.timeout < 0 {
		return nil, fmt.Errorf("solrdex: %w: timeout must be non-negative", ErrInvalidRequest)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return wireClient(engineConfig(cfg), cfg, obs), nil
}

func engineConfig(cfg *clientConfig) solr.Config {
	configs := make([]index.Config, len(cfg.indices))
	for i, s := range cfg.indices {
		configs[i] = index.New(s.name, s.numShards, s.facets)
	}
	endpoint := solr.EnvEndpoint
	if cfg.endpoint != "" {
		endpoint = solr.StaticEndpoint(cfg.endpoint)
	}
	return solr.Config{
		Endpoint:  endpoint,
		Indices:   index.NewRegistry(configs...),
		VerifyTLS: cfg.verifyTLS,
		Timeout:   cfg.timeout,
		Debug:     cfg.debug,
		Handler:   solr.NewHTTPHandler(cfg.timeout),
	}
}

func wireClient(engine solr.Config, cfg *clientConfig, obs *observer) *Client {
	c := &Client{engine: engine, obs: obs}

	c.collSvc = collectionuc.New(func() collectionuc.Admin { return c.adaptor() }, engine.Indices)
	c.docSvc = documentuc.New(func() documentuc.Writer { return c.adaptor() })
	if cfg.maxBatchSize > 0 {
		c.docSvc = c.docSvc.WithMaxBatchSize(cfg.maxBatchSize)
	}
	c.searchSvc = searchuc.New(func() searchuc.Searcher { return c.adaptor() }).
		WithPagination(cfg.pageLength, cfg.maxPage)
	return c
}

// adaptor builds a fresh single-use adaptor over the shared handler.
func (c *Client) adaptor() *solr.Client { return solr.New(c.engine) }

// Ping lists collections to check that Solr answers.
func (c *Client) Ping(ctx context.Context) error {
	start := time.Now()
	_, err := c.collSvc.List(ctx)
	c.obs.observe("ping", start, err)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Collections returns the names of every collection, sorted.
func (c *Client) Collections(ctx context.Context) ([]string, error) {
	start := time.Now()
	names, err := c.collSvc.List(ctx)
	c.obs.observe("collections.list", start, err)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return names, nil
}

// CollectionExists reports whether name exists, ignoring case.
func (c *Client) CollectionExists(ctx context.Context, name string) (bool, error) {
	start := time.Now()
	ok, err := c.collSvc.Exists(ctx, name)
	c.obs.observe("collections.exists", start, err)
	if err != nil {
		return false, fmt.Errorf("collection %q exists: %w", name, err)
	}
	return ok, nil
}

// EnsureCollection creates name unless it already exists. The flag is true
// when the collection exists afterwards.
func (c *Client) EnsureCollection(ctx context.Context, name string) (bool, error) {
	start := time.Now()
	ok, err := c.collSvc.Ensure(ctx, name)
	c.obs.observeFlag("collections.ensure", start, ok, err)
	if err != nil {
		return false, fmt.Errorf("ensure collection %q: %w", name, err)
	}
	return ok, nil
}

// CreateCollection creates name without checking for it first. The flag is
// true when Solr answered 200.
func (c *Client) CreateCollection(ctx context.Context, name string) (bool, error) {
	start := time.Now()
	ok, err := c.adaptor().CreateCollection(ctx, name)
	c.obs.observeFlag("collections.create", start, ok, err)
	if err != nil {
		return false, fmt.Errorf("create collection %q: %w", name, err)
	}
	return ok, nil
}

// Index returns a handle for document and search operations on name.
func (c *Client) Index(name string) *Index {
	return &Index{name: name, client: c}
}

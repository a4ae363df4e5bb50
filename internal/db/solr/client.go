package solr

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/solrdex/internal/domain"
	"github.com/kailas-cloud/solrdex/internal/domain/index"
	"github.com/kailas-cloud/solrdex/internal/domain/search/filter"
	"github.com/kailas-cloud/solrdex/internal/metrics"
)

// EndpointEnv is the environment variable read by EnvEndpoint.
const EndpointEnv = "SOLR_END_POINT"

// EndpointFunc returns the engine endpoint. It is called once per operation.
type EndpointFunc func() string

// EnvEndpoint reads the endpoint from EndpointEnv.
func EnvEndpoint() string { return os.Getenv(EndpointEnv) }

// StaticEndpoint returns an EndpointFunc that always yields endpoint.
func StaticEndpoint(endpoint string) EndpointFunc {
	return func() string { return endpoint }
}

// Config holds the adaptor settings.
type Config struct {
	Endpoint   EndpointFunc    // default: EnvEndpoint
	Indices    *index.Registry // per-index settings; nil means none configured
	VerifyTLS  bool            // enable certificate verification (disabled by default)
	Timeout    time.Duration   // HTTP client timeout; 0 disables
	Debug      bool            // adds params.debug to queries
	Translator *filter.Translator
	Logger     *zap.Logger
	// Handler is installed on first use instead of a new HTTPHandler. An
	// HTTPHandler is safe to share between clients and keeps their connections pooled.
	Handler Handler
}

// Client is a Solr adaptor holding its own handler, active collection and last
// request/response. It is not safe for concurrent use: use one Client per caller.
type Client struct {
	cfg        Config
	handler    Handler
	translator *filter.Translator
	logger     *zap.Logger

	indexName string
	rawQuery  RawRequest
	response  map[string]any
	lastErr   error
}

// New creates an adaptor client. No connection is made until the first operation.
func New(cfg Config) *Client {
	if cfg.Endpoint == nil {
		cfg.Endpoint = EnvEndpoint
	}
	tr := cfg.Translator
	if tr == nil {
		tr = filter.NewTranslator(nil)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{cfg: cfg, translator: tr, logger: logger}
}

// Handler returns the client's handler, creating it on first use.
func (c *Client) Handler() Handler {
	if c.handler != nil {
		return c.handler
	}
	if c.cfg.Handler != nil {
		return c.SetHandler(c.cfg.Handler)
	}
	return c.SetHandler(NewHTTPHandler(c.cfg.Timeout))
}

// SetHandler replaces the client's handler and returns it.
func (c *Client) SetHandler(h Handler) Handler {
	c.handler = h
	return c.handler
}

// InitIndex selects the active collection and returns a fresh base request.
func (c *Client) InitIndex(name string) (RawRequest, error) {
	c.Handler()
	c.indexName = name

	ep, err := ParseEndpoint(c.cfg.Endpoint())
	if err != nil {
		return RawRequest{}, err
	}
	c.rawQuery = BaseRequest(ep)
	if c.cfg.VerifyTLS {
		c.rawQuery.Options.InsecureSkipVerify = false
	}
	return c.LastRequest(), nil
}

// Use selects the active collection, discarding the base request.
func (c *Client) Use(name string) error {
	_, err := c.InitIndex(name)
	return err
}

// IndexName returns the active collection, or "" when none is selected.
func (c *Client) IndexName() string { return c.indexName }

// LastRequest returns a copy of the most recently built request.
func (c *Client) LastRequest() RawRequest { return c.rawQuery.Clone() }

// Response returns the decoded body of the last search.
func (c *Client) Response() map[string]any { return c.response }

// LastError returns why the last exchange produced no status: ErrTransport
// wrapping the handler error, or ErrUnknownStatus. It is nil once any status
// was received, including non-200 ones.
func (c *Client) LastError() error { return c.lastErr }

func (c *Client) requireIndex() error {
	if c.indexName == "" {
		return fmt.Errorf("%w: no active collection, call InitIndex first", domain.ErrPreconditionFailed)
	}
	return nil
}

// send hands req to the handler and records metrics. It does not classify.
func (c *Client) send(ctx context.Context, op string, req RawRequest) *RawResponse {
	c.rawQuery = req
	c.lastErr = nil
	h := c.Handler()

	start := time.Now()
	resp := h.Handle(ctx, &req)
	if resp == nil {
		resp = &RawResponse{}
	}
	dur := time.Since(start)

	status := "error"
	if resp.Status != 0 {
		status = strconv.Itoa(resp.Status)
	}
	metrics.SolrRequestsTotal.WithLabelValues(op, status).Inc()
	metrics.SolrRequestDuration.WithLabelValues(op).Observe(dur.Seconds())

	switch {
	case resp.Err != nil:
		c.lastErr = fmt.Errorf("%w: %s %s: %w", domain.ErrTransport, req.Method, req.URI, resp.Err)
	case resp.Status == 0:
		c.lastErr = fmt.Errorf("%w: %s %s", domain.ErrUnknownStatus, req.Method, req.URI)
	}

	if c.lastErr != nil {
		c.logger.Warn("solr exchange failed",
			zap.String("op", op),
			zap.String("method", req.Method),
			zap.String("uri", req.URI),
			zap.Duration("duration", dur),
			zap.Error(c.lastErr),
		)
	} else {
		c.logger.Debug("solr exchange",
			zap.String("op", op),
			zap.String("method", req.Method),
			zap.String("uri", req.URI),
			zap.Int("status", resp.Status),
			zap.Duration("duration", dur),
		)
	}
	return resp
}

package solr

import (
	"bytes"
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Handler executes a raw exchange. It never interprets status codes and reports
// failures to complete the exchange through RawResponse.Err.
type Handler interface {
	Handle(ctx context.Context, req *RawRequest) *RawResponse
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, req *RawRequest) *RawResponse

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, req *RawRequest) *RawResponse { return f(ctx, req) }

// HTTPHandler is the net/http Handler. It keeps one connection pool for verified
// and one for unverified TLS, both reused across exchanges.
type HTTPHandler struct {
	secure   *http.Client
	insecure *http.Client
}

// NewHTTPHandler creates an HTTP handler. timeout <= 0 disables the client timeout.
func NewHTTPHandler(timeout time.Duration) *HTTPHandler {
	return &HTTPHandler{
		secure:   newHTTPClient(timeout, false),
		insecure: newHTTPClient(timeout, true),
	}
}

func newHTTPClient(timeout time.Duration, skipVerify bool) *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: skipVerify, //nolint:gosec // configurable per endpoint
		MinVersion:         tls.VersionTLS12,
	}
	return &http.Client{Transport: tr, Timeout: timeout}
}

// Handle performs the exchange described by req.
func (h *HTTPHandler) Handle(ctx context.Context, req *RawRequest) *RawResponse {
	var body *bytes.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	} else {
		body = bytes.NewReader(nil)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, requestURL(req), body)
	if err != nil {
		return &RawResponse{Err: err}
	}
	for k, vs := range req.Header {
		if strings.EqualFold(k, "Host") {
			continue
		}
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	client := h.secure
	if req.Options.InsecureSkipVerify {
		client = h.insecure
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return &RawResponse{Err: err}
	}

	return &RawResponse{
		Status: resp.StatusCode,
		Reason: reasonPhrase(resp),
		Header: resp.Header,
		Body:   NewStreamBody(resp.Body),
	}
}

func requestURL(req *RawRequest) string {
	scheme := req.Scheme
	if scheme == "" {
		scheme = "http"
	}
	host := req.Header.Get("Host")
	switch {
	case req.Options.Port > 0:
		host = net.JoinHostPort(host, strconv.Itoa(req.Options.Port))
	case strings.Contains(host, ":"):
		host = "[" + host + "]"
	}
	return scheme + "://" + host + req.URI
}

// reasonPhrase strips the numeric code from "404 Not Found".
func reasonPhrase(resp *http.Response) string {
	if _, reason, ok := strings.Cut(resp.Status, " "); ok && reason != "" {
		return reason
	}
	return http.StatusText(resp.StatusCode)
}

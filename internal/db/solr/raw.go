package solr

import (
	"fmt"
	"io"
	"net/http"

	"github.com/kailas-cloud/solrdex/internal/domain"
)

// TransportOptions carries connection-level settings for a single exchange.
type TransportOptions struct {
	InsecureSkipVerify bool
	Port               int
}

// RawRequest describes one HTTP exchange before it reaches the wire.
// It is built fresh per operation and never shared.
type RawRequest struct {
	Method  string
	Scheme  string
	URI     string // absolute path + query string
	Header  http.Header
	Body    []byte
	Options TransportOptions
}

// Clone returns a deep copy of r.
func (r RawRequest) Clone() RawRequest {
	c := r
	c.Header = r.Header.Clone()
	if r.Body != nil {
		c.Body = append([]byte(nil), r.Body...)
	}
	return c
}

// RawResponse describes the outcome of an exchange.
// Status is 0 when no response was obtained; Err then holds the cause.
type RawResponse struct {
	Status int
	Reason string
	Header http.Header
	Body   *Body
	Err    error

	classified bool
}

// Body is a response body that may arrive as a stream.
// The stream is read at most once; the bytes are kept afterwards.
type Body struct {
	stream io.ReadCloser
	data   []byte
	read   bool
}

// NewBody wraps already materialized bytes.
func NewBody(data []byte) *Body {
	return &Body{data: data, read: true}
}

// NewStreamBody wraps a pending stream.
func NewStreamBody(rc io.ReadCloser) *Body {
	return &Body{stream: rc}
}

// Pending reports whether the body is a stream that has not been read yet.
func (b *Body) Pending() bool {
	return b != nil && !b.read
}

// Bytes materializes the body. A nil Body is empty.
func (b *Body) Bytes() ([]byte, error) {
	if b == nil {
		return nil, nil
	}
	if b.read {
		return b.data, nil
	}
	b.read = true
	if b.stream == nil {
		return nil, nil
	}
	defer b.stream.Close()
	data, err := io.ReadAll(b.stream)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrTransport, err)
	}
	b.data = data
	b.stream = nil
	return data, nil
}

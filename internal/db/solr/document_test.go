package solr

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/solrdex/internal/domain"
	"github.com/kailas-cloud/solrdex/internal/domain/index"
)

func TestDeleteByID_WithoutActiveCollection(t *testing.T) {
	h := &fakeHandler{}
	c := newTestClient(t, h)

	ok, err := c.DeleteByID(context.Background(), "1")
	if !errors.Is(err, domain.ErrPreconditionFailed) {
		t.Fatalf("expected ErrPreconditionFailed, got %v", err)
	}
	if ok {
		t.Error("expected false")
	}
	if len(h.reqs) != 0 {
		t.Errorf("expected no network call, got %d", len(h.reqs))
	}
}

func TestUpsert_WithoutActiveCollection(t *testing.T) {
	h := &fakeHandler{}
	c := newTestClient(t, h)

	if _, err := c.Upsert(context.Background(), map[string]any{"id": "1"}); !errors.Is(err, domain.ErrPreconditionFailed) {
		t.Fatalf("expected ErrPreconditionFailed, got %v", err)
	}
	if len(h.reqs) != 0 {
		t.Errorf("expected no network call, got %d", len(h.reqs))
	}
}

func TestUpsert_DelegatesToBulk(t *testing.T) {
	h := &fakeHandler{}
	c := newTestClient(t, h)
	if _, err := c.InitIndex("Products"); err != nil {
		t.Fatalf("init: %v", err)
	}

	ok, err := c.Upsert(context.Background(), map[string]any{"id": "1", "price": 10.0})
	if err != nil || !ok {
		t.Fatalf("upsert = %v, %v", ok, err)
	}
	if len(h.reqs) != 1 {
		t.Fatalf("expected one request, got %d", len(h.reqs))
	}
	r := h.reqs[0]
	if r.Method != http.MethodPost || r.URI != "/solr/products/update?commit=true" {
		t.Errorf("request = %s %s", r.Method, r.URI)
	}
	if string(r.Body) != `[{"id":"1","price":10.0}]` {
		t.Errorf("body = %s", r.Body)
	}
}

func TestBulkUpsert_SingleRequest(t *testing.T) {
	h := &fakeHandler{}
	c := newTestClient(t, h)
	_, _ = c.InitIndex("Products")

	docs := make([]map[string]any, 250)
	for i := range docs {
		docs[i] = map[string]any{"id": i}
	}
	ok, err := c.BulkUpsert(context.Background(), docs)
	if err != nil || !ok {
		t.Fatalf("bulk = %v, %v", ok, err)
	}
	if len(h.reqs) != 1 {
		t.Errorf("expected one request for the whole batch, got %d", len(h.reqs))
	}
}

func TestBulkUpsert_FailureFlags(t *testing.T) {
	tests := []struct {
		name string
		resp *RawResponse
	}{
		{"engine error", jsonResponse(http.StatusBadRequest, `{"error":{"msg":"bad doc"}}`)},
		{"transport failure", &RawResponse{Err: errors.New("timeout")}},
		{"non-200 success", jsonResponse(http.StatusNoContent, ``)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &fakeHandler{respond: func(*RawRequest) *RawResponse { return tt.resp }}
			c := newTestClient(t, h)
			_, _ = c.InitIndex("Products")

			ok, err := c.BulkUpsert(context.Background(), []map[string]any{{"id": "1"}})
			if err != nil {
				t.Fatalf("document operations report failure as a flag, got %v", err)
			}
			if ok {
				t.Error("expected false")
			}
		})
	}
}

func TestBulkUpsert_BodyReadFailure(t *testing.T) {
	h := &fakeHandler{respond: func(*RawRequest) *RawResponse {
		return &RawResponse{Status: 200, Body: NewStreamBody(io.NopCloser(failingReader{}))}
	}}
	c := newTestClient(t, h)
	_, _ = c.InitIndex("Products")

	if _, err := c.BulkUpsert(context.Background(), nil); !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestDeleteByID(t *testing.T) {
	h := &fakeHandler{}
	c := newTestClient(t, h)
	_, _ = c.InitIndex("Products")

	ok, err := c.DeleteByID(context.Background(), "sku-9")
	if err != nil || !ok {
		t.Fatalf("delete = %v, %v", ok, err)
	}
	r := h.reqs[0]
	if r.URI != "/solr/products/update?commit=true" || string(r.Body) != `{"delete":["sku-9"]}` {
		t.Errorf("request = %s %s", r.URI, r.Body)
	}
}

func TestDeleteByID_TransportFailureKeepsCause(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	cause := errors.New("dial tcp 10.0.0.7:8983: connect: connection refused")
	c := New(Config{
		Endpoint: StaticEndpoint(testEndpoint),
		Indices:  index.NewRegistry(),
		Logger:   zap.New(core),
	})
	c.SetHandler(&fakeHandler{respond: func(*RawRequest) *RawResponse {
		return &RawResponse{Err: cause}
	}})
	_, _ = c.InitIndex("Products")

	ok, err := c.DeleteByID(context.Background(), "sku-1")
	if err != nil || ok {
		t.Fatalf("delete = %v, %v; want false, nil", ok, err)
	}
	if !errors.Is(c.LastError(), domain.ErrTransport) || !errors.Is(c.LastError(), cause) {
		t.Errorf("last error = %v", c.LastError())
	}

	warnings := logs.FilterMessage("solr exchange failed").All()
	if len(warnings) != 1 || warnings[0].Level != zapcore.WarnLevel {
		t.Fatalf("expected one warning, got %v", logs.All())
	}

	// A later answered exchange clears the cause.
	c.SetHandler(&fakeHandler{})
	if ok, _ := c.DeleteByID(context.Background(), "sku-1"); !ok || c.LastError() != nil {
		t.Errorf("ok = %v, last error = %v", ok, c.LastError())
	}
}

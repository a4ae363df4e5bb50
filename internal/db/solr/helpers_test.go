package solr

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/kailas-cloud/solrdex/internal/domain/index"
)

const testEndpoint = "http://solr.local:8983/solr"

// fakeHandler records every request and answers through respond.
type fakeHandler struct {
	reqs    []RawRequest
	respond func(req *RawRequest) *RawResponse
}

func (f *fakeHandler) Handle(_ context.Context, req *RawRequest) *RawResponse {
	f.reqs = append(f.reqs, req.Clone())
	if f.respond == nil {
		return jsonResponse(http.StatusOK, `{"responseHeader":{"status":0}}`)
	}
	return f.respond(req)
}

func jsonResponse(status int, body string) *RawResponse {
	return &RawResponse{
		Status: status,
		Reason: http.StatusText(status),
		Header: http.Header{"Content-Type": {"application/json"}},
		Body:   NewBody([]byte(body)),
	}
}

func newTestClient(t *testing.T, h *fakeHandler, configs ...index.Config) *Client {
	t.Helper()
	c := New(Config{
		Endpoint: StaticEndpoint(testEndpoint),
		Indices:  index.NewRegistry(configs...),
	})
	c.SetHandler(h)
	return c
}

func decodeBody(t *testing.T, req RawRequest) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(req.Body, &m); err != nil {
		t.Fatalf("decode request body %q: %v", req.Body, err)
	}
	return m
}

// collectionsHandler answers LIST with names and CREATE with 200, adding the
// created collection to names.
func collectionsHandler(names ...string) *fakeHandler {
	if names == nil {
		names = []string{}
	}
	h := &fakeHandler{}
	h.respond = func(req *RawRequest) *RawResponse {
		switch {
		case strings.Contains(req.URI, "action=LIST"):
			data, _ := json.Marshal(map[string]any{"collections": names})
			return jsonResponse(http.StatusOK, string(data))
		case strings.Contains(req.URI, "action=CREATE"):
			_, q, _ := strings.Cut(req.URI, "?")
			for _, kv := range strings.Split(q, "&") {
				if name, ok := strings.CutPrefix(kv, "name="); ok {
					names = append(names, name)
				}
			}
			return jsonResponse(http.StatusOK, `{"responseHeader":{"status":0}}`)
		}
		return jsonResponse(http.StatusNotFound, `{"error":{"msg":"unexpected"}}`)
	}
	return h
}

package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gochi "github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/solrdex/internal/domain"
	"github.com/kailas-cloud/solrdex/internal/domain/index"
	"github.com/kailas-cloud/solrdex/internal/domain/job"
	"github.com/kailas-cloud/solrdex/internal/domain/record"
	"github.com/kailas-cloud/solrdex/internal/domain/search/filter"
	"github.com/kailas-cloud/solrdex/internal/domain/search/result"
	collectionuc "github.com/kailas-cloud/solrdex/internal/usecase/collection"
	documentuc "github.com/kailas-cloud/solrdex/internal/usecase/document"
	exportuc "github.com/kailas-cloud/solrdex/internal/usecase/export"
	healthuc "github.com/kailas-cloud/solrdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/solrdex/internal/usecase/search"
)

// --- mocks ---

type mockEngine struct {
	collections []string
	listErr     error
	ensureOK    bool
	ensureErr   error

	used      string
	upserted  []map[string]any
	deletedID string
	writeOK   bool
	lastErr   error

	searchTerm    string
	searchFilters filter.Spec
	searchPage    int
	searchLength  int
	searchResult  result.Result
	searchErr     error
}

func (m *mockEngine) ListCollections(_ context.Context) ([]string, error) {
	return m.collections, m.listErr
}

func (m *mockEngine) CollectionExists(_ context.Context, name string) (bool, error) {
	if m.listErr != nil {
		return false, m.listErr
	}
	for _, c := range m.collections {
		if strings.EqualFold(c, name) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockEngine) EnsureCollection(_ context.Context, name string) (bool, error) {
	if m.ensureErr == nil && m.ensureOK {
		m.collections = append(m.collections, strings.ToLower(name))
	}
	return m.ensureOK, m.ensureErr
}

func (m *mockEngine) Use(name string) error {
	m.used = name
	return nil
}

func (m *mockEngine) BulkUpsert(_ context.Context, docs []map[string]any) (bool, error) {
	m.upserted = append(m.upserted, docs...)
	return m.writeOK, nil
}

func (m *mockEngine) DeleteByID(_ context.Context, id string) (bool, error) {
	m.deletedID = id
	return m.writeOK, nil
}

func (m *mockEngine) LastError() error { return m.lastErr }

func (m *mockEngine) Search(
	_ context.Context, term string, filters filter.Spec, page, length int,
) (result.Result, error) {
	m.searchTerm = term
	m.searchFilters = filters
	m.searchPage = page
	m.searchLength = length
	return m.searchResult, m.searchErr
}

type mockQueue struct {
	submitted []job.Job
	err       error
}

func (m *mockQueue) Submit(_ context.Context, j job.Job) error {
	if m.err != nil {
		return m.err
	}
	m.submitted = append(m.submitted, j)
	return nil
}

func (m *mockQueue) Ping(_ context.Context) error { return m.err }

type mockRecords struct {
	count int
	err   error
}

func (m *mockRecords) Count(_ context.Context, class string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.count, nil
}

func (m *mockRecords) Page(_ context.Context, _ string, _, _ int) ([]record.Record, error) {
	return nil, m.err
}

func (m *mockRecords) Get(_ context.Context, _, _ string) (record.Record, error) {
	return nil, m.err
}

func (m *mockRecords) Ping(_ context.Context) error { return m.err }

// --- helpers ---

type fixture struct {
	engine  *mockEngine
	queue   *mockQueue
	records *mockRecords
	router  http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		engine:  &mockEngine{writeOK: true, ensureOK: true},
		queue:   &mockQueue{},
		records: &mockRecords{},
	}
	indices := index.NewRegistry(index.New("Products", 4, []string{"brand"}))

	srv := NewServer(
		collectionuc.New(func() collectionuc.Admin { return f.engine }, indices),
		documentuc.New(func() documentuc.Writer { return f.engine }),
		searchuc.New(func() searchuc.Searcher { return f.engine }),
		exportuc.New(f.queue, f.records, func(string) (exportuc.Indexer, error) {
			return f.engine, nil
		}).WithBatchLength(100),
		healthuc.New(func() healthuc.EngineChecker { return f.engine }, f.queue, f.records),
		nil,
	)
	r := gochi.NewRouter()
	srv.Routes(r)
	f.router = r
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return resp
}

// --- indexes ---

func TestListIndexes(t *testing.T) {
	f := newFixture(t)
	f.engine.collections = []string{"products", "articles"}

	rec := f.do(t, http.MethodGet, "/indexes", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Items []string `json:"items"`
		Count int      `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 2 || resp.Items[0] != "articles" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestListIndexes_EngineError(t *testing.T) {
	f := newFixture(t)
	f.engine.listErr = domain.NewEngineError(401, "Unauthorized", "")

	rec := f.do(t, http.MethodGet, "/indexes", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Code != CodeEngineError || resp.EngineStatus != 401 {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Message != "401 - Unauthorized" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestListIndexes_TransportError(t *testing.T) {
	f := newFixture(t)
	f.engine.listErr = errors.Join(domain.ErrTransport, errors.New("dial tcp 10.0.0.1:8983: refused"))

	rec := f.do(t, http.MethodGet, "/indexes", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Code != CodeEngineUnavailable {
		t.Errorf("code = %s", resp.Code)
	}
	if strings.Contains(resp.Message, "10.0.0.1") {
		t.Errorf("message leaks internals: %q", resp.Message)
	}
}

func TestGetIndex(t *testing.T) {
	f := newFixture(t)
	f.engine.collections = []string{"products"}

	rec := f.do(t, http.MethodGet, "/indexes/Products", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp IndexResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Exists || resp.NumShards != 4 || len(resp.AttributesForFaceting) != 1 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGetIndex_NotFound(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/indexes/Missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != CodeIndexNotFound {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestEnsureIndex(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPut, "/indexes/Widgets", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp IndexResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.NumShards != index.DefaultNumShards {
		t.Errorf("num_shards = %d, want default", resp.NumShards)
	}
}

func TestEnsureIndex_Rejected(t *testing.T) {
	f := newFixture(t)
	f.engine.ensureOK = false

	rec := f.do(t, http.MethodPut, "/indexes/Widgets", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != CodeEngineRejected {
		t.Errorf("code = %s", resp.Code)
	}
}

// --- documents ---

func TestUpsertDocuments_PreservesNumberLiterals(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/indexes/Products/documents",
		`{"documents":[{"id":"1","price":2.0},{"id":"2","price":3}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if f.engine.used != "Products" {
		t.Errorf("used = %q", f.engine.used)
	}
	if len(f.engine.upserted) != 2 {
		t.Fatalf("upserted %d docs", len(f.engine.upserted))
	}
	if got := f.engine.upserted[0]["price"]; got != json.Number("2.0") {
		t.Errorf("price = %#v, want json.Number(2.0)", got)
	}
}

func TestUpsertDocuments_Empty(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/indexes/Products/documents", `{"documents":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(f.engine.upserted) != 0 {
		t.Error("nothing should reach the engine")
	}
}

func TestUpsertDocuments_BadJSON(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/indexes/Products/documents", `{"documents":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != CodeBadRequest {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestUpsertDocuments_Rejected(t *testing.T) {
	f := newFixture(t)
	f.engine.writeOK = false

	rec := f.do(t, http.MethodPost, "/indexes/Products/documents", `{"documents":[{"id":"1"}]}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDeleteDocument(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodDelete, "/indexes/Products/documents/42", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if f.engine.deletedID != "42" {
		t.Errorf("deleted = %q", f.engine.deletedID)
	}
}

// --- search ---

func TestSearch(t *testing.T) {
	f := newFixture(t)
	f.engine.searchResult = result.New(true, 200, 1, 20,
		[]map[string]any{{"id": "1"}},
		map[string][]result.Bucket{"brand": {{Value: "Acme", Count: 3}}},
		nil)

	rec := f.do(t, http.MethodPost, "/indexes/Products/search",
		`{"term":"shoes","filters":[{"price:gte":10},{"brand":"Acme"}],"page":1,"page_length":20}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if f.engine.searchTerm != "shoes" || f.engine.searchPage != 1 || f.engine.searchLength != 20 {
		t.Errorf("search args: term=%q page=%d length=%d",
			f.engine.searchTerm, f.engine.searchPage, f.engine.searchLength)
	}
	if len(f.engine.searchFilters) != 2 {
		t.Errorf("filters = %v", f.engine.searchFilters)
	}

	var resp SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1 || resp.Start != 20 || len(resp.Records) != 1 {
		t.Errorf("resp = %+v", resp)
	}
	if b := resp.Facets["brand"]; len(b) != 1 || b[0].Count != 3 {
		t.Errorf("facets = %+v", resp.Facets)
	}
}

func TestSearch_DefaultPageLength(t *testing.T) {
	f := newFixture(t)
	f.engine.searchResult = result.New(true, 200, 0, 0, nil, nil, nil)

	rec := f.do(t, http.MethodPost, "/indexes/Products/search", `{"term":"x"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if f.engine.searchLength != searchuc.DefaultPageLength {
		t.Errorf("length = %d", f.engine.searchLength)
	}
	if !strings.Contains(rec.Body.String(), `"records":[]`) {
		t.Errorf("records should be an empty array, body %s", rec.Body.String())
	}
}

func TestSearch_EngineRejected(t *testing.T) {
	f := newFixture(t)
	f.engine.searchResult = result.Failed(500, nil)

	rec := f.do(t, http.MethodPost, "/indexes/Products/search", `{"term":"x"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Code != CodeEngineRejected || resp.EngineStatus != 500 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestSearch_UnknownModifier(t *testing.T) {
	f := newFixture(t)
	f.engine.searchErr = errors.Join(domain.ErrUnknownModifier, errors.New(`"between"`))

	rec := f.do(t, http.MethodPost, "/indexes/Products/search", `{"term":"x"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != CodeUnknownModifier {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestSearch_InvalidPage(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/indexes/Products/search", `{"term":"x","page":-1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != CodeValidationFailed {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestSearch_MalformedResponse(t *testing.T) {
	f := newFixture(t)
	f.engine.searchErr = errors.Join(domain.ErrMalformedResponse, errors.New("invalid character"))

	rec := f.do(t, http.MethodPost, "/indexes/Products/search", `{"term":"x"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Message != domain.ErrMalformedResponse.Error() {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestSearch_InvalidFilter(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"unrenderable facet", fmt.Errorf("facet %q: %w", "brand", filter.ErrInvalidValue)},
		{"field with query syntax", fmt.Errorf("facet %q: %w", "x OR *", filter.ErrInvalidField)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.engine.searchErr = tt.err

			rec := f.do(t, http.MethodPost, "/indexes/Products/search", `{"term":"x"}`)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", rec.Code)
			}
			if resp := decodeError(t, rec); resp.Code != CodeValidationFailed {
				t.Errorf("code = %s", resp.Code)
			}
		})
	}
}

func TestSearch_EngineUnreachable(t *testing.T) {
	f := newFixture(t)
	f.engine.searchResult = result.Unreachable(
		fmt.Errorf("%w: dial tcp 10.0.0.1:8983: refused", domain.ErrTransport))

	rec := f.do(t, http.MethodPost, "/indexes/Products/search", `{"term":"x"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Code != CodeEngineUnavailable {
		t.Errorf("code = %s", resp.Code)
	}
	if strings.Contains(resp.Message, "10.0.0.1") {
		t.Errorf("message leaks internals: %q", resp.Message)
	}
}

func TestUpsertDocuments_EngineUnreachable(t *testing.T) {
	f := newFixture(t)
	f.engine.writeOK = false
	f.engine.lastErr = fmt.Errorf("%w: no such host", domain.ErrTransport)

	rec := f.do(t, http.MethodPost, "/indexes/Products/documents", `{"documents":[{"id":"1"}]}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != CodeEngineUnavailable {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestListIndexes_EndpointMissing(t *testing.T) {
	f := newFixture(t)
	f.engine.listErr = domain.ErrEndpointRequired

	rec := f.do(t, http.MethodGet, "/indexes", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Code != CodeEngineUnavailable {
		t.Errorf("code = %s", resp.Code)
	}
	if resp.Message != domain.ErrEndpointRequired.Error() {
		t.Errorf("message = %q", resp.Message)
	}
}

// --- exports ---

func TestBulkExport(t *testing.T) {
	f := newFixture(t)
	f.records.count = 250

	rec := f.do(t, http.MethodPost, "/indexes/Products/exports/Product", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(f.queue.submitted) != 3 {
		t.Fatalf("submitted %d jobs, want 3", len(f.queue.submitted))
	}
	var resp struct {
		Items []JobResponse `json:"items"`
		Count int           `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 3 || resp.Items[2].Offset != 200 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestBulkExport_UnknownClass(t *testing.T) {
	f := newFixture(t)
	f.records.err = domain.ErrUnknownRecordClass

	rec := f.do(t, http.MethodPost, "/indexes/Products/exports/Nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != CodeUnknownRecordClass {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestExportRecord(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/indexes/Products/exports/Product/7", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp JobResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Kind != string(job.KindExport) || resp.RecordID != "7" || resp.ID == "" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestDeleteRecord(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodDelete, "/indexes/Products/exports/Product/7", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(f.queue.submitted) != 1 || f.queue.submitted[0].Kind != job.KindDelete {
		t.Errorf("submitted = %+v", f.queue.submitted)
	}
}

func TestExportRecord_QueueDown(t *testing.T) {
	f := newFixture(t)
	f.queue.err = errors.New("connection reset")

	rec := f.do(t, http.MethodPost, "/indexes/Products/exports/Product/7", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Message != "internal error" {
		t.Errorf("message = %q", resp.Message)
	}
}

// --- health ---

func TestHealthCheck(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != string(healthuc.Healthy) || len(resp.Checks) != 3 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestHealthCheck_EngineDown(t *testing.T) {
	f := newFixture(t)
	f.engine.listErr = domain.ErrTransport

	rec := f.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"solr":"error"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestMetrics(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestExports_Disabled(t *testing.T) {
	srv := NewServer(nil, nil, nil, nil, nil, nil)
	r := gochi.NewRouter()
	srv.Routes(r)

	req := httptest.NewRequest(http.MethodPost, "/indexes/Products/exports/Product", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != CodeNotImplemented {
		t.Errorf("code = %s", resp.Code)
	}
}

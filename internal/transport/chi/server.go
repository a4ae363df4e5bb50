package chi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/solrdex/internal/domain/job"
	"github.com/kailas-cloud/solrdex/internal/domain/search/filter"
	"github.com/kailas-cloud/solrdex/internal/domain/search/result"
	collectionuc "github.com/kailas-cloud/solrdex/internal/usecase/collection"
	documentuc "github.com/kailas-cloud/solrdex/internal/usecase/document"
	exportuc "github.com/kailas-cloud/solrdex/internal/usecase/export"
	healthuc "github.com/kailas-cloud/solrdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/solrdex/internal/usecase/search"
)

// maxBodyBytes caps request bodies accepted by the API.
const maxBodyBytes = 16 << 20

// Server is the admin HTTP API over the search engine adaptor.
type Server struct {
	collections   *collectionuc.Service
	documents     *documentuc.Service
	search        *searchuc.Service
	exports       *exportuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	collections *collectionuc.Service,
	documents *documentuc.Service,
	search *searchuc.Service,
	exports *exportuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		collections:   collections,
		documents:     documents,
		search:        search,
		exports:       exports,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Routes registers every API route on r.
func (s *Server) Routes(r gochi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/indexes", func(r gochi.Router) {
		r.Get("/", s.ListIndexes)
		r.Route("/{name}", func(r gochi.Router) {
			r.Get("/", s.GetIndex)
			r.Put("/", s.EnsureIndex)
			r.Post("/documents", s.UpsertDocuments)
			r.Delete("/documents/{id}", s.DeleteDocument)
			r.Post("/search", s.Search)
			r.Group(func(r gochi.Router) {
				r.Use(s.requireExports)
				r.Post("/exports/{class}", s.BulkExport)
				r.Post("/exports/{class}/{id}", s.ExportRecord)
				r.Delete("/exports/{class}/{id}", s.DeleteRecord)
			})
		})
	})
}

// IndexResponse describes one collection.
type IndexResponse struct {
	Name                  string   `json:"name"`
	Exists                bool     `json:"exists"`
	NumShards             int      `json:"num_shards"`
	AttributesForFaceting []string `json:"attributes_for_faceting,omitempty"`
}

// ListIndexes handles GET /indexes.
func (s *Server) ListIndexes(w http.ResponseWriter, r *http.Request) {
	names, err := s.collections.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": names,
		"count": len(names),
	})
}

// GetIndex handles GET /indexes/{name}.
func (s *Server) GetIndex(w http.ResponseWriter, r *http.Request) {
	name := gochi.URLParam(r, "name")
	exists, err := s.collections.Exists(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, CodeIndexNotFound, "index not found")
		return
	}
	writeJSON(w, http.StatusOK, s.indexResponse(name, true))
}

// EnsureIndex handles PUT /indexes/{name}.
func (s *Server) EnsureIndex(w http.ResponseWriter, r *http.Request) {
	name := gochi.URLParam(r, "name")
	ok, err := s.collections.Ensure(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if !ok {
		writeRejected(w, 0, "collection create")
		return
	}
	writeJSON(w, http.StatusOK, s.indexResponse(name, true))
}

func (s *Server) indexResponse(name string, exists bool) IndexResponse {
	cfg := s.collections.Config(name)
	return IndexResponse{
		Name:                  name,
		Exists:                exists,
		NumShards:             cfg.NumShards(),
		AttributesForFaceting: cfg.AttributesForFaceting(),
	}
}

// UpsertDocumentsRequest is the body of POST /indexes/{name}/documents.
type UpsertDocumentsRequest struct {
	Documents []map[string]any `json:"documents"`
}

// UpsertDocuments handles POST /indexes/{name}/documents.
func (s *Server) UpsertDocuments(w http.ResponseWriter, r *http.Request) {
	var req UpsertDocumentsRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	ok, err := s.documents.Upsert(r.Context(), gochi.URLParam(r, "name"), req.Documents)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if !ok {
		writeRejected(w, 0, "update")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"indexed": len(req.Documents)})
}

// DeleteDocument handles DELETE /indexes/{name}/documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	ok, err := s.documents.Delete(r.Context(), gochi.URLParam(r, "name"), gochi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if !ok {
		writeRejected(w, 0, "delete")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SearchRequest is the body of POST /indexes/{name}/search.
type SearchRequest struct {
	Term       string         `json:"term"`
	Filters    []filter.Group `json:"filters,omitempty"`
	Page       int            `json:"page"`
	PageLength int            `json:"page_length,omitempty"`
}

// BucketResponse is one facet value with its count.
type BucketResponse struct {
	Value any `json:"value"`
	Count int `json:"count"`
}

// SearchResponse is the body of a successful search.
type SearchResponse struct {
	Total   int                         `json:"total"`
	Start   int                         `json:"start"`
	Records []map[string]any            `json:"records"`
	Facets  map[string][]BucketResponse `json:"facets,omitempty"`
}

// Search handles POST /indexes/{name}/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	res, err := s.search.Search(r.Context(), gochi.URLParam(r, "name"), searchuc.Request{
		Term:       req.Term,
		Filters:    filter.Spec(req.Filters),
		Page:       req.Page,
		PageLength: req.PageLength,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if !res.OK() {
		writeRejected(w, res.Status(), "search")
		return
	}
	writeJSON(w, http.StatusOK, searchToResponse(res))
}

func searchToResponse(res result.Result) SearchResponse {
	records := res.Records()
	if records == nil {
		records = []map[string]any{}
	}
	resp := SearchResponse{
		Total:   res.Total(),
		Start:   res.Start(),
		Records: records,
	}
	if len(res.Facets()) > 0 {
		resp.Facets = make(map[string][]BucketResponse, len(res.Facets()))
		for field, buckets := range res.Facets() {
			out := make([]BucketResponse, len(buckets))
			for i, b := range buckets {
				out[i] = BucketResponse{Value: b.Value, Count: b.Count}
			}
			resp.Facets[field] = out
		}
	}
	return resp
}

// JobResponse describes a queued job.
type JobResponse struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Index    string `json:"index"`
	Class    string `json:"class"`
	Offset   int    `json:"offset,omitempty"`
	RecordID string `json:"record_id,omitempty"`
}

func jobToResponse(j job.Job) JobResponse {
	return JobResponse{
		ID:       j.ID,
		Kind:     string(j.Kind),
		Index:    j.Index,
		Class:    j.Class,
		Offset:   j.Offset,
		RecordID: j.RecordID,
	}
}

// requireExports rejects export routes when no job queue is configured.
func (s *Server) requireExports(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.exports == nil {
			writeError(w, http.StatusNotImplemented, CodeNotImplemented, "exports are disabled")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// BulkExport handles POST /indexes/{name}/exports/{class}.
func (s *Server) BulkExport(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.exports.CreateBulkExportJob(r.Context(), gochi.URLParam(r, "name"), gochi.URLParam(r, "class"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	items := make([]JobResponse, len(jobs))
	for i, j := range jobs {
		items[i] = jobToResponse(j)
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"items": items,
		"count": len(items),
	})
}

// ExportRecord handles POST /indexes/{name}/exports/{class}/{id}.
func (s *Server) ExportRecord(w http.ResponseWriter, r *http.Request) {
	j, err := s.exports.CreateExportJob(r.Context(),
		gochi.URLParam(r, "name"), gochi.URLParam(r, "class"), gochi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, jobToResponse(j))
}

// DeleteRecord handles DELETE /indexes/{name}/exports/{class}/{id}.
func (s *Server) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	j, err := s.exports.CreateDeleteJob(r.Context(),
		gochi.URLParam(r, "name"), gochi.URLParam(r, "class"), gochi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, jobToResponse(j))
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// decodeBody reads a JSON body keeping numbers as json.Number so that
// document values reach the engine with their original literal form.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, CodeBadRequest, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":"internal_error","message":"encode response"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

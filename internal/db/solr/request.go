package solr

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/kailas-cloud/solrdex/internal/domain"
)

// Endpoint is the parsed search engine root.
type Endpoint struct {
	Scheme string
	Host   string
	Port   int
	Path   string
}

// ParseEndpoint splits a configured endpoint URL into its parts.
func ParseEndpoint(raw string) (Endpoint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Endpoint{}, domain.ErrEndpointRequired
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: %w", domain.ErrEndpointRequired, err)
	}
	if u.Hostname() == "" {
		return Endpoint{}, fmt.Errorf("%w: no host in %q", domain.ErrEndpointRequired, raw)
	}

	ep := Endpoint{
		Scheme: u.Scheme,
		Host:   u.Hostname(),
		Path:   strings.TrimRight(u.Path, "/"),
	}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return Endpoint{}, fmt.Errorf("%w: invalid port %q", domain.ErrEndpointRequired, p)
		}
		ep.Port = port
	}
	return ep, nil
}

// BaseRequest builds the GET request every operation starts from.
// TLS verification is disabled by default.
func BaseRequest(ep Endpoint) RawRequest {
	h := make(http.Header)
	h.Set("Host", ep.Host)
	h.Set("Content-Type", "application/json")
	return RawRequest{
		Method: http.MethodGet,
		Scheme: ep.Scheme,
		URI:    ep.Path,
		Header: h,
		Options: TransportOptions{
			InsecureSkipVerify: true,
			Port:               ep.Port,
		},
	}
}

// ForCollectionList targets the Collections API LIST action.
func ForCollectionList(base RawRequest) RawRequest {
	r := base.Clone()
	r.Method = http.MethodGet
	r.URI = adminURI(base, url.Values{"action": {"LIST"}})
	return r
}

// ForCollectionCreate targets the Collections API CREATE action.
func ForCollectionCreate(base RawRequest, name string, numShards int) RawRequest {
	r := base.Clone()
	r.Method = http.MethodGet
	r.URI = adminURI(base, url.Values{
		"action":    {"CREATE"},
		"name":      {strings.ToLower(name)},
		"numShards": {strconv.Itoa(numShards)},
	})
	return r
}

// ForUpdate posts docs to the collection update handler with commit.
func ForUpdate(base RawRequest, collection string, docs []map[string]any) (RawRequest, error) {
	if docs == nil {
		docs = []map[string]any{}
	}
	body, err := EncodeJSON(docs)
	if err != nil {
		return RawRequest{}, fmt.Errorf("encode documents: %w", err)
	}
	return post(base, updateURI(base, collection), body), nil
}

// ForDelete posts a delete-by-id envelope to the collection update handler.
func ForDelete(base RawRequest, collection, id string) (RawRequest, error) {
	body, err := EncodeJSON(map[string]any{"delete": []string{id}})
	if err != nil {
		return RawRequest{}, fmt.Errorf("encode delete: %w", err)
	}
	return post(base, updateURI(base, collection), body), nil
}

// QueryOptions holds the optional parts of a JSON query request.
type QueryOptions struct {
	Params  map[string]any
	Filters []string
	Offset  *int
	Limit   *int
	Facets  []string
}

type facetRequest struct {
	Type  string `json:"type"`
	Field string `json:"field"`
}

type queryBody struct {
	Query  string                  `json:"query"`
	Params map[string]any          `json:"params"`
	Filter []string                `json:"filter,omitempty"`
	Offset *int                    `json:"offset,omitempty"`
	Limit  *int                    `json:"limit,omitempty"`
	Facet  map[string]facetRequest `json:"facet,omitempty"`
}

// ForQuery posts a JSON query for term to the collection query handler.
func ForQuery(base RawRequest, collection, term string, opts QueryOptions) (RawRequest, error) {
	qb := queryBody{
		Query:  strings.TrimSpace(term),
		Params: opts.Params,
		Filter: opts.Filters,
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}
	if qb.Params == nil {
		qb.Params = map[string]any{}
	}
	if len(opts.Facets) > 0 {
		qb.Facet = make(map[string]facetRequest, len(opts.Facets))
		for _, f := range opts.Facets {
			qb.Facet[f] = facetRequest{Type: "terms", Field: f}
		}
	}

	params, err := preserveFloats(reflect.ValueOf(qb.Params))
	if err != nil {
		return RawRequest{}, fmt.Errorf("encode query params: %w", err)
	}
	qb.Params, _ = params.(map[string]any)

	// Params already carry their float literals; marshaling the envelope
	// directly keeps its field order.
	body, err := json.Marshal(qb)
	if err != nil {
		return RawRequest{}, fmt.Errorf("encode query: %w", err)
	}
	return post(base, collectionURI(base, collection)+"/query", body), nil
}

func post(base RawRequest, uri string, body []byte) RawRequest {
	r := base.Clone()
	r.Method = http.MethodPost
	r.URI = uri
	r.Body = body
	return r
}

// basePath is the endpoint path of a base request, without any query string.
func basePath(base RawRequest) string {
	p, _, _ := strings.Cut(base.URI, "?")
	return strings.TrimRight(p, "/")
}

func adminURI(base RawRequest, q url.Values) string {
	return basePath(base) + "/admin/collections?" + q.Encode()
}

func collectionURI(base RawRequest, collection string) string {
	return basePath(base) + "/" + url.PathEscape(strings.ToLower(collection))
}

func updateURI(base RawRequest, collection string) string {
	return collectionURI(base, collection) + "/update?commit=true"
}

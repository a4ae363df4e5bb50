package result

// Bucket is a single facet value with its document count.
type Bucket struct {
	Value any
	Count int
}

// Result is the decoded outcome of a search request.
type Result struct {
	ok      bool
	status  int
	total   int
	start   int
	records []map[string]any
	facets  map[string][]Bucket
	raw     map[string]any
	err     error
}

// New creates a search result.
func New(
	ok bool, status, total, start int,
	records []map[string]any, facets map[string][]Bucket, raw map[string]any,
) Result {
	return Result{
		ok: ok, status: status, total: total, start: start,
		records: records, facets: facets, raw: raw,
	}
}

// Failed creates a result for a request the engine did not answer with 200.
func Failed(status int, raw map[string]any) Result {
	return Result{status: status, raw: raw}
}

// Unreachable creates a result for a request that got no status at all.
// err carries the cause.
func Unreachable(err error) Result {
	return Result{err: err}
}

// OK reports whether the engine answered with status 200.
func (r Result) OK() bool { return r.ok }

// Status returns the HTTP status, or 0 when no response was obtained.
func (r Result) Status() int { return r.status }

// Total returns the number of matching documents across all pages.
func (r Result) Total() int { return r.total }

// Start returns the offset of the first returned record.
func (r Result) Start() int { return r.start }

// Records returns the documents of the current page.
func (r Result) Records() []map[string]any { return r.records }

// Facets returns facet buckets keyed by field.
func (r Result) Facets() map[string][]Bucket { return r.facets }

// Raw returns the decoded response body.
func (r Result) Raw() map[string]any { return r.raw }

// Err returns why no response was obtained. It is nil for any answered request.
func (r Result) Err() error { return r.err }

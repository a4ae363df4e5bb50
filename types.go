package solrdex

// Document is a single Solr document. Float values with a zero fraction are
// sent as "N.0" so Solr keeps inferring a float field type.
type Document = map[string]any

// Bucket is a facet value with its document count.
type Bucket struct {
	Value any
	Count int
}

// SearchResult is a decoded search response. OK is false when Solr answered
// with a non-200 status or could not be reached; Status then holds the status
// (0 when no response arrived).
type SearchResult struct {
	OK      bool
	Status  int
	Total   int
	Start   int
	Records []Document
	Facets  map[string][]Bucket
	// Raw is the decoded response body as Solr sent it.
	Raw map[string]any
}

package record

import "fmt"

// Record is one exportable row of a record class, keyed by column name.
type Record map[string]any

// ID returns the record's "id" value as a string, or "" when absent.
func (r Record) ID() string {
	v, ok := r["id"]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Document returns the record as an engine document. The id is always a string.
func (r Record) Document() map[string]any {
	doc := make(map[string]any, len(r))
	for k, v := range r {
		doc[k] = v
	}
	if id := r.ID(); id != "" {
		doc["id"] = id
	}
	return doc
}

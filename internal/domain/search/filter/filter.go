package filter

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
)

// fieldName is the accepted shape of a field or facet name. Anything else
// could inject query syntax into a filter clause.
var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// Group maps filter keys to values. A key of the form "field:modifier" is
// modifier-qualified; any other key is a plain facet.
type Group map[string]any

// Spec is an ordered sequence of filter groups.
type Spec []Group

// Query is the translated form of a Spec: per-field fragments plus facet passthrough.
type Query struct {
	filters     map[string][]Fragment
	filterOrder []string
	facets      map[string]any
	facetOrder  []string
}

// Filters returns fragments keyed by field. Repeated fields accumulate.
func (q Query) Filters() map[string][]Fragment { return q.filters }

// Facets returns facet values keyed by facet name.
func (q Query) Facets() map[string]any { return q.facets }

// IsEmpty reports whether the query has neither filters nor facets.
func (q Query) IsEmpty() bool { return len(q.filters) == 0 && len(q.facets) == 0 }

// Fields returns filters and facets merged into a single mapping.
// Fragment lists are exposed as clause strings.
func (q Query) Fields() map[string]any {
	out := make(map[string]any, len(q.filters)+len(q.facets))
	for field, frags := range q.filters {
		clauses := make([]string, len(frags))
		for i, f := range frags {
			clauses[i] = f.Clause
		}
		out[field] = clauses
	}
	for k, v := range q.facets {
		out[k] = v
	}
	return out
}

// FilterQueries renders the query as engine filter clauses, one per returned string.
// Fragments from the same modifier on a field are OR-ed; different modifiers AND.
// Facet lists become an OR of exact matches.
func (q Query) FilterQueries() []string {
	var out []string
	for _, field := range q.filterOrder {
		frags := q.filters[field]
		byMod := make(map[string][]string)
		var mods []string
		for _, f := range frags {
			if _, seen := byMod[f.Modifier]; !seen {
				mods = append(mods, f.Modifier)
			}
			byMod[f.Modifier] = append(byMod[f.Modifier], f.Clause)
		}
		for _, m := range mods {
			clauses := byMod[m]
			if len(clauses) == 1 {
				out = append(out, clauses[0])
				continue
			}
			out = append(out, "("+strings.Join(clauses, " OR ")+")")
		}
	}
	for _, key := range q.facetOrder {
		switch v := q.facets[key].(type) {
		case []any:
			terms := make([]string, 0, len(v))
			for _, item := range v {
				if t, err := term(item); err == nil {
					terms = append(terms, t)
				}
			}
			if len(terms) > 0 {
				out = append(out, key+":("+strings.Join(terms, " OR ")+")")
			}
		default:
			if t, err := term(v); err == nil {
				out = append(out, key+":"+t)
			}
		}
	}
	return out
}

// Translator turns filter specs into queries using a modifier registry.
type Translator struct {
	modifiers Registry
}

// NewTranslator creates a translator. A nil registry uses DefaultModifiers.
func NewTranslator(modifiers Registry) *Translator {
	if modifiers == nil {
		modifiers = DefaultModifiers()
	}
	return &Translator{modifiers: modifiers}
}

var defaultTranslator = NewTranslator(nil)

// Translate translates spec with the built-in modifiers.
func Translate(spec Spec) (Query, error) {
	return defaultTranslator.Translate(spec)
}

type entry struct {
	key   string
	value any
}

// Translate partitions spec into modifier-qualified filters and facets, applies
// modifiers, and merges the results. Keys within a group are visited in sorted order.
// Field names must be identifiers and facet values must render as terms.
func (t *Translator) Translate(spec Spec) (Query, error) {
	var forFilters, forFacets []entry
	for _, group := range spec {
		keys := make([]string, 0, len(group))
		for k := range group {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			e := entry{key: k, value: group[k]}
			if strings.Contains(k, ":") {
				forFilters = append(forFilters, e)
			} else {
				forFacets = append(forFacets, e)
			}
		}
	}

	q := Query{
		filters: make(map[string][]Fragment),
		facets:  make(map[string]any),
	}

	var modified []Modified
	for _, e := range forFilters {
		field, name := splitKey(e.key)
		if !fieldName.MatchString(field) {
			return Query{}, fmt.Errorf("filter %q: %w", e.key, ErrInvalidField)
		}
		mod, err := t.modifiers.Lookup(name)
		if err != nil {
			return Query{}, fmt.Errorf("filter %q: %w", e.key, err)
		}
		values, isList := asList(e.value)
		if !isList {
			values = []any{e.value}
		}
		for _, v := range values {
			frag, err := mod.Apply(field, v)
			if err != nil {
				return Query{}, fmt.Errorf("filter %q: %w", e.key, err)
			}
			modified = append(modified, Modified{Field: field, Fragment: frag})
		}
	}

	for _, m := range modified {
		if _, ok := q.filters[m.Field]; !ok {
			q.filterOrder = append(q.filterOrder, m.Field)
		}
		q.filters[m.Field] = append(q.filters[m.Field], m.Fragment)
	}

	for _, e := range forFacets {
		if err := checkFacet(e); err != nil {
			return Query{}, err
		}
		if _, ok := q.filters[e.key]; ok {
			delete(q.filters, e.key)
			q.filterOrder = removeString(q.filterOrder, e.key)
		}
		if _, ok := q.facets[e.key]; !ok {
			q.facetOrder = append(q.facetOrder, e.key)
		}
		if values, isList := asList(e.value); isList {
			q.facets[e.key] = values
		} else {
			q.facets[e.key] = e.value
		}
	}

	return q, nil
}

// checkFacet rejects facets that FilterQueries could not render.
func checkFacet(e entry) error {
	if !fieldName.MatchString(e.key) {
		return fmt.Errorf("facet %q: %w", e.key, ErrInvalidField)
	}
	values, isList := asList(e.value)
	if !isList {
		values = []any{e.value}
	} else if len(values) == 0 {
		return fmt.Errorf("facet %q: %w: empty list", e.key, ErrInvalidValue)
	}
	for _, v := range values {
		if _, err := term(v); err != nil {
			return fmt.Errorf("facet %q: %w", e.key, err)
		}
	}
	return nil
}

// splitKey splits "field:modifier[:...]" into field and modifier.
func splitKey(key string) (field, modifier string) {
	parts := strings.Split(key, ":")
	return parts[0], parts[1]
}

// asList reports whether v is a slice or array and returns its elements in order.
func asList(v any) ([]any, bool) {
	switch list := v.(type) {
	case []any:
		return append([]any(nil), list...), true
	case []string:
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out, true
	case nil, string, []byte:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

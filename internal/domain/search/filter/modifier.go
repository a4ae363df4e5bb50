package filter

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/solrdex/internal/domain"
)

var (
	// ErrInvalidValue signals a filter value a modifier cannot render.
	ErrInvalidValue = errors.New("invalid filter value")
	// ErrInvalidField signals a field or facet name that is not a plain identifier.
	ErrInvalidField = errors.New("invalid filter field")
)

// Fragment is an engine-native query clause produced by a modifier.
type Fragment struct {
	Modifier string
	Clause   string
}

// Modified is a single field -> fragment pair.
type Modified struct {
	Field    string
	Fragment Fragment
}

// Modifier turns a (field, value) pair into an engine filter fragment.
type Modifier interface {
	Apply(field string, value any) (Fragment, error)
}

// ModifierFunc adapts a function to the Modifier interface.
type ModifierFunc func(field string, value any) (Fragment, error)

// Apply calls f.
func (f ModifierFunc) Apply(field string, value any) (Fragment, error) { return f(field, value) }

// Registry maps modifier names to implementations.
type Registry map[string]Modifier

// Lookup resolves a modifier by name.
func (r Registry) Lookup(name string) (Modifier, error) {
	m, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownModifier, name)
	}
	return m, nil
}

// DefaultModifiers returns the built-in modifier set.
func DefaultModifiers() Registry {
	return Registry{
		"eq":     ModifierFunc(equal),
		"not":    ModifierFunc(notEqual),
		"gt":     rangeModifier("gt", "{", "*", "]", true),
		"gte":    rangeModifier("gte", "[", "*", "]", true),
		"lt":     rangeModifier("lt", "[", "*", "}", false),
		"lte":    rangeModifier("lte", "[", "*", "]", false),
		"prefix": ModifierFunc(prefix),
	}
}

func equal(field string, value any) (Fragment, error) {
	v, err := term(value)
	if err != nil {
		return Fragment{}, fmt.Errorf("eq %s: %w", field, err)
	}
	return Fragment{Modifier: "eq", Clause: field + ":" + v}, nil
}

func notEqual(field string, value any) (Fragment, error) {
	v, err := term(value)
	if err != nil {
		return Fragment{}, fmt.Errorf("not %s: %w", field, err)
	}
	return Fragment{Modifier: "not", Clause: "-" + field + ":" + v}, nil
}

func prefix(field string, value any) (Fragment, error) {
	s, ok := value.(string)
	if !ok || s == "" {
		return Fragment{}, fmt.Errorf("prefix %s: %w: want non-empty string", field, ErrInvalidValue)
	}
	return Fragment{Modifier: "prefix", Clause: field + ":" + escape(s) + "*"}, nil
}

// rangeModifier builds an open-ended range: lower bound when lower is true, else upper.
func rangeModifier(name, open, wildcard, closing string, lower bool) Modifier {
	return ModifierFunc(func(field string, value any) (Fragment, error) {
		v, err := term(value)
		if err != nil {
			return Fragment{}, fmt.Errorf("%s %s: %w", name, field, err)
		}
		var clause string
		if lower {
			clause = fmt.Sprintf("%s:%s%s TO %s%s", field, open, v, wildcard, closing)
		} else {
			clause = fmt.Sprintf("%s:%s%s TO %s%s", field, open, wildcard, v, closing)
		}
		return Fragment{Modifier: name, Clause: clause}, nil
	})
}

// term renders a scalar as a query term: numbers and booleans bare, strings quoted.
func term(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return quote(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case json.Number:
		return v.String(), nil
	case fmt.Stringer:
		return quote(v.String()), nil
	default:
		return "", fmt.Errorf("%w: unsupported type %T", ErrInvalidValue, value)
	}
}

func quote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

var specialChars = strings.NewReplacer(
	`\`, `\\`, `+`, `\+`, `-`, `\-`, `!`, `\!`, `(`, `\(`, `)`, `\)`,
	`:`, `\:`, `^`, `\^`, `[`, `\[`, `]`, `\]`, `"`, `\"`, `{`, `\{`,
	`}`, `\}`, `~`, `\~`, `*`, `\*`, `?`, `\?`, `|`, `\|`, `&`, `\&`,
	`;`, `\;`, `/`, `\/`, ` `, `\ `,
)

func escape(s string) string { return specialChars.Replace(s) }

// Package complete produces ranked completion candidates for a cursor
// position in YQL source text.
package complete

import (
	"sort"
	"strings"

	"github.com/leapstack-labs/yql/pkg/catalog"
)

// DefaultLimit is the maximum number of candidates returned by Suggest.
const DefaultLimit = 10

// Engine suggests completions against a catalog. It is safe for concurrent use.
type Engine struct {
	catalog *catalog.Catalog
	limit   int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLimit caps the number of returned candidates. Values <= 0 select
// DefaultLimit.
func WithLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.limit = n
		}
	}
}

// New creates an Engine for c. A nil catalog selects the built-in default.
func New(c *catalog.Catalog, opts ...Option) *Engine {
	if c == nil {
		c = catalog.Default()
	}
	e := &Engine{catalog: c, limit: DefaultLimit}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog candidates are drawn from.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Limit returns the configured candidate cap.
func (e *Engine) Limit() int {
	return e.limit
}

// Suggest returns the ranked candidates for cursor, a byte offset into
// source. Out of range cursors are clamped. The result is never nil.
func (e *Engine) Suggest(source string, cursor int) []Candidate {
	if source == "" {
		return []Candidate{}
	}
	cursor = clamp(cursor, len(source))

	a := Analyze(source, cursor)

	var found []Candidate
	switch a.Context {
	case ContextRelation:
		found = e.relations(a.Word, found)
	case ContextProjection:
		found = e.fields(a.Word, found)
		found = e.functions(a.Word, found)
	case ContextPredicate:
		found = e.fields(a.Word, found)
	}
	found = e.keywords(a.Word, found)

	if len(found) == 0 {
		return []Candidate{}
	}
	found = dedupe(found)
	rank(found)
	if len(found) > e.limit {
		found = found[:e.limit]
	}
	return found
}

// Suggest is a shorthand for New(c).Suggest(source, cursor).
func Suggest(c *catalog.Catalog, source string, cursor int) []Candidate {
	return New(c).Suggest(source, cursor)
}

func (e *Engine) relations(word string, out []Candidate) []Candidate {
	for _, rel := range e.catalog.Relations() {
		if hasPrefixFold(rel, word) {
			out = append(out, Candidate{Label: rel, Kind: Relation, Detail: "Relation: " + rel})
		}
	}
	return out
}

// fields walks relations in catalog order, so a field shared by several
// relations is attributed to the first one that declares it.
func (e *Engine) fields(word string, out []Candidate) []Candidate {
	for _, rel := range e.catalog.Relations() {
		for _, f := range e.catalog.Fields(rel) {
			if hasPrefixFold(f, word) {
				out = append(out, Candidate{Label: f, Kind: Field, Detail: "Field from " + rel})
			}
		}
	}
	return out
}

func (e *Engine) functions(word string, out []Candidate) []Candidate {
	for _, fn := range e.catalog.Functions() {
		if hasPrefixFold(fn, word) {
			out = append(out, Candidate{
				Label:      fn,
				Kind:       Function,
				Detail:     "Function: " + fn,
				InsertText: fn + "()",
			})
		}
	}
	return out
}

func (e *Engine) keywords(word string, out []Candidate) []Candidate {
	for _, kw := range e.catalog.Keywords() {
		if hasPrefixFold(kw, word) {
			out = append(out, Candidate{Label: kw, Kind: Keyword, Detail: "Keyword: " + kw})
		}
	}
	return out
}

// dedupe keeps the first candidate for each exact label.
func dedupe(candidates []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		if _, ok := seen[c.Label]; ok {
			continue
		}
		seen[c.Label] = struct{}{}
		out = append(out, c)
	}
	return out
}

// rank orders by kind, then alphabetically by label.
func rank(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		la, lb := strings.ToLower(a.Label), strings.ToLower(b.Label)
		if la != lb {
			return la < lb
		}
		return a.Label < b.Label
	})
}

// hasPrefixFold reports whether the lowercased name starts with word, which
// is already lowercased.
func hasPrefixFold(name, word string) bool {
	return strings.HasPrefix(strings.ToLower(name), word)
}

// Package catalog holds the static vocabulary of the YQL language: reserved
// keywords, known relations with their fields, and callable functions.
//
// A Catalog is immutable once built. Swap a whole catalog through a Holder
// rather than mutating one in place.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyName is returned when a definition contains a blank name.
var ErrEmptyName = errors.New("catalog: empty name")

// UnknownRelationError is returned when fields are declared for a relation
// that does not exist in the definition.
type UnknownRelationError struct {
	Relation string
}

func (e *UnknownRelationError) Error() string {
	return fmt.Sprintf("catalog: fields declared for unknown relation %q", e.Relation)
}

// DuplicateError is returned when a relation is declared twice.
type DuplicateError struct {
	Kind string
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("catalog: duplicate %s %q", e.Kind, e.Name)
}

// RelationDef declares one relation and its ordered field list.
type RelationDef struct {
	Name   string   `koanf:"name" json:"name" yaml:"name"`
	Fields []string `koanf:"fields" json:"fields" yaml:"fields"`
}

// Definition is the serializable form of a catalog.
type Definition struct {
	Keywords  []string      `koanf:"keywords" json:"keywords" yaml:"keywords"`
	Relations []RelationDef `koanf:"relations" json:"relations" yaml:"relations"`
	Functions []string      `koanf:"functions" json:"functions" yaml:"functions"`

	// Fields declares fields separately from Relations, keyed by relation name.
	// Entries are appended to the matching relation's field list.
	Fields map[string][]string `koanf:"fields" json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Catalog is a read-only, indexed view of a Definition.
type Catalog struct {
	keywords  []string
	relations []string
	fields    map[string][]string
	functions []string

	keywordSet  map[string]struct{} // lowercased
	relationSet map[string]struct{} // as declared
	functionSet map[string]struct{} // lowercased
	fieldOwners map[string][]string // field as declared -> owning relations in order
}

// New validates def and builds an indexed catalog.
func New(def Definition) (*Catalog, error) {
	c := &Catalog{
		fields:      make(map[string][]string, len(def.Relations)),
		keywordSet:  make(map[string]struct{}, len(def.Keywords)),
		relationSet: make(map[string]struct{}, len(def.Relations)),
		functionSet: make(map[string]struct{}, len(def.Functions)),
		fieldOwners: make(map[string][]string),
	}

	for _, kw := range def.Keywords {
		if strings.TrimSpace(kw) == "" {
			return nil, fmt.Errorf("keyword: %w", ErrEmptyName)
		}
		lower := strings.ToLower(kw)
		if _, ok := c.keywordSet[lower]; ok {
			continue
		}
		c.keywordSet[lower] = struct{}{}
		c.keywords = append(c.keywords, kw)
	}

	for _, fn := range def.Functions {
		if strings.TrimSpace(fn) == "" {
			return nil, fmt.Errorf("function: %w", ErrEmptyName)
		}
		lower := strings.ToLower(fn)
		if _, ok := c.functionSet[lower]; ok {
			continue
		}
		c.functionSet[lower] = struct{}{}
		c.functions = append(c.functions, fn)
	}

	for _, rel := range def.Relations {
		if strings.TrimSpace(rel.Name) == "" {
			return nil, fmt.Errorf("relation: %w", ErrEmptyName)
		}
		if _, ok := c.relationSet[rel.Name]; ok {
			return nil, &DuplicateError{Kind: "relation", Name: rel.Name}
		}
		c.relationSet[rel.Name] = struct{}{}
		c.relations = append(c.relations, rel.Name)
		if err := c.addFields(rel.Name, rel.Fields); err != nil {
			return nil, err
		}
	}

	// Separately declared fields are applied in relation order so the
	// result does not depend on map iteration.
	for name := range def.Fields {
		if _, ok := c.relationSet[name]; !ok {
			return nil, &UnknownRelationError{Relation: name}
		}
	}
	for _, name := range c.relations {
		if extra, ok := def.Fields[name]; ok {
			if err := c.addFields(name, extra); err != nil {
				return nil, err
			}
		}
	}

	return c, nil
}

func (c *Catalog) addFields(relation string, fields []string) error {
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("field of %s: %w", relation, ErrEmptyName)
		}
		if containsString(c.fields[relation], f) {
			continue
		}
		c.fields[relation] = append(c.fields[relation], f)
		c.fieldOwners[f] = append(c.fieldOwners[f], relation)
	}
	return nil
}

// MustNew is like New but panics on an invalid definition.
func MustNew(def Definition) *Catalog {
	c, err := New(def)
	if err != nil {
		panic(err)
	}
	return c
}

// Keywords returns the keywords in declaration order.
func (c *Catalog) Keywords() []string {
	return cloneStrings(c.keywords)
}

// Relations returns the relation names in declaration order.
func (c *Catalog) Relations() []string {
	return cloneStrings(c.relations)
}

// Fields returns the ordered fields of relation, or nil if unknown.
func (c *Catalog) Fields(relation string) []string {
	return cloneStrings(c.fields[relation])
}

// Functions returns the function names in declaration order.
func (c *Catalog) Functions() []string {
	return cloneStrings(c.functions)
}

// IsKeyword reports whether ident is a keyword, ignoring case.
func (c *Catalog) IsKeyword(ident string) bool {
	_, ok := c.keywordSet[strings.ToLower(ident)]
	return ok
}

// IsRelation reports whether the lowercased ident names a relation exactly
// as declared. A relation declared with upper-case letters never matches.
func (c *Catalog) IsRelation(ident string) bool {
	_, ok := c.relationSet[strings.ToLower(ident)]
	return ok
}

// IsFunction reports whether ident is a function, ignoring case.
func (c *Catalog) IsFunction(ident string) bool {
	_, ok := c.functionSet[strings.ToLower(ident)]
	return ok
}

// IsField reports whether the lowercased ident is a field of any relation.
func (c *Catalog) IsField(ident string) bool {
	_, ok := c.fieldOwners[strings.ToLower(ident)]
	return ok
}

// Owners returns the relations declaring field, in relation order.
func (c *Catalog) Owners(field string) []string {
	return cloneStrings(c.fieldOwners[field])
}

// Definition returns a Definition that rebuilds an equivalent catalog.
func (c *Catalog) Definition() Definition {
	def := Definition{
		Keywords:  c.Keywords(),
		Functions: c.Functions(),
		Relations: make([]RelationDef, 0, len(c.relations)),
	}
	for _, name := range c.relations {
		def.Relations = append(def.Relations, RelationDef{Name: name, Fields: c.Fields(name)})
	}
	return def
}

// Describe returns a short human-readable description of a catalog entry,
// using the same precedence the lexer applies to identifiers.
func (c *Catalog) Describe(name string) (string, bool) {
	switch {
	case c.IsKeyword(name):
		return "Keyword: " + strings.ToUpper(name), true
	case c.IsRelation(name):
		rel := strings.ToLower(name)
		fields := c.fields[rel]
		return fmt.Sprintf("Relation: %s (%d fields)\n\n%s", rel, len(fields), strings.Join(fields, ", ")), true
	case c.IsFunction(name):
		return "Function: " + strings.ToUpper(name) + "()", true
	case c.IsField(name):
		field := strings.ToLower(name)
		return fmt.Sprintf("Field %s from %s", field, strings.Join(c.fieldOwners[field], ", ")), true
	}
	return "", false
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

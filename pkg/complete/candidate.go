package complete

import (
	"fmt"
	"strings"
)

// Kind classifies a completion candidate. The declaration order is the
// ranking order of the suggestion list.
type Kind int

// Candidate kinds, in ranking order.
const (
	Keyword Kind = iota
	Relation
	Field
	Function
)

var kindNames = [...]string{
	Keyword:  "keyword",
	Relation: "relation",
	Field:    "field",
	Function: "function",
}

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("KIND(%d)", int(k))
}

// MarshalText encodes the kind as its name in JSON and YAML.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind from its name.
func (k *Kind) UnmarshalText(data []byte) error {
	name := string(data)
	for i, n := range kindNames {
		if strings.EqualFold(n, name) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown candidate kind %q", name)
}

// Candidate is a single completion suggestion.
type Candidate struct {
	Label      string `json:"label" yaml:"label"`
	Kind       Kind   `json:"kind" yaml:"kind"`
	Detail     string `json:"detail,omitempty" yaml:"detail,omitempty"`
	InsertText string `json:"insertText,omitempty" yaml:"insert_text,omitempty"`
}

// Text returns the text to insert when the candidate is accepted.
func (c Candidate) Text() string {
	if c.InsertText != "" {
		return c.InsertText
	}
	return c.Label
}

package complete

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		source string
		want   Analysis
	}{
		{"", Analysis{Context: ContextNone}},
		{"SELECT na", Analysis{Context: ContextProjection, Word: "na", Previous: "select"}},
		{"SELECT a ", Analysis{Context: ContextProjection, Word: "", Previous: "a"}},
		{"select * FROM Pl", Analysis{Context: ContextRelation, Word: "pl", Previous: "from"}},
		{"SELECT * FROM t WHERE x", Analysis{Context: ContextPredicate, Word: "x", Previous: "where"}},
		{"  where\t", Analysis{Context: ContextPredicate, Word: "", Previous: "where"}},
		{"x AND\n", Analysis{Context: ContextPredicate, Word: "", Previous: "and"}},
		{"x = 1 y", Analysis{Context: ContextNone, Word: "y", Previous: "1"}},
		{"SELECT * FROM t WHERE a = 1 ", Analysis{Context: ContextNone, Word: "", Previous: "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.want, Analyze(tt.source, len(tt.source)))
		})
	}
}

func TestAnalyzeHonorsCursor(t *testing.T) {
	source := "SELECT na FROM players"
	assert.Equal(t, ContextProjection, Classify(source, 9))
	assert.Equal(t, ContextRelation, Classify(source, len(source)))
	assert.Equal(t, ContextNone, Classify(source, -1))
	assert.Equal(t, ContextRelation, Classify(source, 99))
}

func TestContextString(t *testing.T) {
	assert.Equal(t, "relation", ContextRelation.String())
	assert.Equal(t, "projection", ContextProjection.String())
	assert.Equal(t, "predicate", ContextPredicate.String())
	assert.Equal(t, "none", ContextNone.String())
}

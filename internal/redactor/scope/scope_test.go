package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name  string
		query Scope
		match Scope
		want  bool
	}{
		{"block blot", BlockBlot, BlockBlot, true},
		{"any level blot", Blot, BlockBlot, true},
		{"level mismatch", BlockBlot, InlineBlot, false},
		{"type mismatch", BlockBlot, BlockAttribute, false},
		{"any", Any, InlineAttribute, true},
		{"block query", Block, BlockAttribute, true},
		{"inline query", Inline, BlockAttribute, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.Matches(tt.match))
		})
	}
}

func TestLevel(t *testing.T) {
	assert.True(t, BlockBlot.IsBlock())
	assert.False(t, BlockBlot.IsInline())
	assert.True(t, InlineAttribute.IsInline())
	assert.True(t, Attribute.IsBlock())
	assert.True(t, Attribute.IsInline())
}

func TestString(t *testing.T) {
	assert.Equal(t, "block-blot", BlockBlot.String())
	assert.Equal(t, "inline-attribute", InlineAttribute.String())
	assert.Equal(t, "any", Any.String())
	assert.Equal(t, "block|inline|blot", Blot.String())
	assert.Equal(t, "block|inline|attribute", Attribute.String())
	assert.Equal(t, "none", Scope(0).String())
}

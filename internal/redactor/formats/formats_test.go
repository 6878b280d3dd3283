package formats

import (
	"testing"

	"github.com/aisa-it/redactor.go/internal/redactor/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	tests := []struct {
		value any
		tag   string
		want  string
	}{
		{ListBullet, "ul", ListBullet},
		{"ul", "ul", ListBullet},
		{ListOrdered, "ol", ListOrdered},
		{true, "ol", ListOrdered},
		{"other", "ol", ListOrdered},
	}
	for _, tt := range tests {
		node, err := createList(nil, tt.value)
		require.NoError(t, err)
		assert.Equal(t, tt.tag, dom.TagName(node), "%v", tt.value)
		assert.Equal(t, tt.want, classifyList(nil, node, nil), "%v", tt.value)
	}
}

func TestLink(t *testing.T) {
	tests := []struct {
		value any
		href  string
	}{
		{"https://example.com", "https://example.com"},
		{true, "about:blank"},
		{"", "about:blank"},
	}
	for _, tt := range tests {
		node, err := createLink(nil, tt.value)
		require.NoError(t, err)
		assert.Equal(t, "a", dom.TagName(node))
		assert.Equal(t, tt.href, dom.GetAttrValue(node, "href"))
		assert.Equal(t, "_blank", dom.GetAttrValue(node, "target"))
		assert.Equal(t, tt.href, classifyLink(nil, node, nil))
	}

	assert.Nil(t, classifyLink(nil, dom.NewElement("a"), nil))
}

func TestImage(t *testing.T) {
	node, err := createImage(nil, "x.png")
	require.NoError(t, err)
	assert.Equal(t, "x.png", imageValue(node))

	node, err = createImage(nil, true)
	require.NoError(t, err)
	assert.False(t, dom.HasAttr(node, "src"))
	assert.Nil(t, imageValue(node))
}

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	for _, def := range Definitions() {
		assert.NotNil(t, reg.Definition(def.Name), def.Name)
	}
	chain, err := reg.RequiredContainers(TableCell)
	require.NoError(t, err)
	assert.Equal(t, []string{TableRow, TableBody, Table}, chain)
}

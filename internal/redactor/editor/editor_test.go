package editor

import (
	"strings"
	"testing"

	"github.com/aisa-it/redactor.go/internal/redactor/formats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleDoc = `<!DOCTYPE html>
<html>
<body>
  <!-- header -->
  <h2 class="ql-align-center">Title</h2>
  <p>Plain <strong>bold</strong> text</p>
  <ol>
    <li>One</li>
    <li>Two</li>
  </ol>
  <pre>a
  b</pre>
</body>
</html>`

func TestParseDocument(t *testing.T) {
	reg, err := formats.NewRegistry()
	require.NoError(t, err)

	s, err := ParseDocument(strings.NewReader(exampleDoc), reg)
	require.NoError(t, err)
	defer s.Close()

	out, err := RenderString(s)
	require.NoError(t, err)
	assert.Equal(t,
		`<h2 class="ql-align-center">Title</h2><p>Plain <strong>bold</strong> text</p><ol><li>One</li><li>Two</li></ol><pre>a
  b</pre>`, out)

	lines := Outline(s)
	require.Len(t, lines, 5)
	assert.Equal(t, Line{Offset: 0, Length: 5, Blot: formats.Header, Formats: map[string]any{"header": "h2", "align": "center"}, Text: "Title"}, lines[0])
	assert.Equal(t, "Plain bold text", lines[1].Text)
	assert.Equal(t, formats.ListItem, lines[2].Blot)
	assert.Equal(t, 20, lines[2].Offset)
	assert.Equal(t, formats.CodeBlock, lines[4].Blot)
}

func TestParseFragment(t *testing.T) {
	reg, err := formats.NewRegistry()
	require.NoError(t, err)

	t.Run("bare text gets a block", func(t *testing.T) {
		s, err := ParseDocument(strings.NewReader("Hello"), reg)
		require.NoError(t, err)
		defer s.Close()

		out, err := RenderString(s)
		require.NoError(t, err)
		assert.Equal(t, "<p>Hello</p>", out)
	})

	t.Run("empty input", func(t *testing.T) {
		s, err := ParseDocument(strings.NewReader(""), reg)
		require.NoError(t, err)
		defer s.Close()

		out, err := RenderString(s)
		require.NoError(t, err)
		assert.Equal(t, "<p><br/></p>", out)
		assert.Len(t, Outline(s), 1)
	})
}

func TestRenderAfterEdit(t *testing.T) {
	reg, err := formats.NewRegistry()
	require.NoError(t, err)

	s, err := ParseDocument(strings.NewReader("<p>One</p><p>Two</p>"), reg)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.FormatAt(4, 1, formats.Header, "h1"))
	require.NoError(t, s.FormatAt(0, 3, formats.Italic, true))

	out, err := RenderString(s)
	require.NoError(t, err)
	assert.Equal(t, "<p><em>One</em></p><h1>Two</h1>", out)
}

func TestTrimLayout(t *testing.T) {
	reg, err := formats.NewRegistry()
	require.NoError(t, err)

	s, err := ParseDocument(strings.NewReader("<ul>\n  <li>a</li>\n  <!-- x -->\n  <li>b</li>\n</ul>"), reg)
	require.NoError(t, err)
	defer s.Close()

	out, err := RenderString(s)
	require.NoError(t, err)
	assert.Equal(t, "<ul><li>a</li><li>b</li></ul>", out)
}

package policy

import (
	"testing"

	"github.com/aisa-it/redactor.go/internal/redactor/formats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	reg, err := formats.NewRegistry()
	require.NoError(t, err)
	p := NewPolicy(reg)

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"script removed", `<p>a<script>alert(1)</script></p>`, `<p>a</p>`},
		{"event handler removed", `<p onclick="x()">a</p>`, `<p>a</p>`},
		{"unknown tag stripped", `<p><blink>a</blink></p>`, `<p>a</p>`},
		{"whitelisted class kept", `<p class="ql-align-center ql-indent-2">a</p>`, `<p class="ql-align-center ql-indent-2">a</p>`},
		{"foreign class dropped", `<p class="evil">a</p>`, `<p>a</p>`},
		{"value outside whitelist dropped", `<p class="ql-align-left">a</p>`, `<p>a</p>`},
		{"inline class on span", `<p><span class="ql-size-large">a</span></p>`, `<p><span class="ql-size-large">a</span></p>`},
		{"list kept", `<ol><li>a</li></ol>`, `<ol><li>a</li></ol>`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, p.Sanitize(tc.in))
		})
	}

	t.Run("link with rel and target", func(t *testing.T) {
		out := Sanitize(reg, `<a href="https://example.com" rel="noopener noreferrer" target="_blank">x</a>`)
		assert.Contains(t, out, `href="https://example.com"`)
		assert.Contains(t, out, `target="_blank"`)
	})

	t.Run("block class not allowed inline", func(t *testing.T) {
		out := p.Sanitize(`<p><span class="ql-align-center">a</span></p>`)
		assert.NotContains(t, out, "ql-align")
		assert.Contains(t, out, "a")
	})

	t.Run("javascript link dropped", func(t *testing.T) {
		out := p.Sanitize(`<p><a href="javascript:alert(1)">a</a></p>`)
		assert.NotContains(t, out, "javascript")
	})

	t.Run("style values checked", func(t *testing.T) {
		out := p.Sanitize(`<span style="color: #ff0000; position: fixed">a</span>`)
		assert.Contains(t, out, "color: #ff0000")
		assert.NotContains(t, out, "position")
	})
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "", PlainText(""))
	assert.Equal(t,
		"Title\nSee site <https://example.com> now\none\ntwo",
		PlainText(`<h1>Title</h1><p>See <a href="https://example.com"><b>site</b></a> now</p><ul><li>one</li><li>two</li></ul>`))
}

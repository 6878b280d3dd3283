package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aisa-it/redactor.go/internal/redactor/apierrors"
	"github.com/aisa-it/redactor.go/internal/redactor/config"
	"github.com/aisa-it/redactor.go/internal/redactor/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormatOp(t *testing.T) {
	cases := []struct {
		raw  string
		want formatOp
	}{
		{"0:5:bold", formatOp{0, 5, "bold", true}},
		{"0:5:bold=false", formatOp{0, 5, "bold", false}},
		{"2:1:header=2", formatOp{2, 1, "header", 2}},
		{"0:3:indent=1", formatOp{0, 3, "indent", 1}},
		{"0:3:link=https://example.com/a=b", formatOp{0, 3, "link", "https://example.com/a=b"}},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			op, err := parseFormatOp(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, op)
		})
	}

	for _, raw := range []string{"bold", "x:1:bold", "0:y:bold", "0:1:=true"} {
		_, err := parseFormatOp(raw)
		assert.Error(t, err, raw)
	}

	var ops formatOps
	require.NoError(t, ops.Set("0:1:bold"))
	require.NoError(t, ops.Set("1:1:italic"))
	assert.Equal(t, "0:1:bold=true,1:1:italic=true", ops.String())
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun(t *testing.T) {
	cfg := &config.Config{MaxOptimize: config.DefaultMaxOptimize, RulesTimeout: config.DefaultRulesTimeout}

	t.Run("format flags and outline", func(t *testing.T) {
		in := writeFile(t, "doc.html", "<p>Hello</p><p>World</p>")
		ops := formatOps{{0, 5, "bold", true}, {5, 1, "header", 2}}

		var out bytes.Buffer
		require.NoError(t, run(cfg, in, "", ops, false, true, &out))

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "<p><strong>Hello</strong></p><h2>World</h2>", lines[0])
		assert.JSONEq(t, `{"offset":5,"length":5,"blot":"header","formats":{"header":"h2"},"text":"World"}`, lines[2])
	})

	t.Run("script sanitize minify text", func(t *testing.T) {
		in := writeFile(t, "doc.html", `<p onclick="x()">Hello</p>`)
		script := writeFile(t, "edit.lua", `doc.format(0, 5, "italic", true)`)
		c := *cfg
		c.Sanitize, c.Minify = true, true

		var out bytes.Buffer
		require.NoError(t, run(&c, in, script, nil, false, false, &out))
		assert.Contains(t, out.String(), "<em>Hello</em>")
		assert.NotContains(t, out.String(), "onclick")

		out.Reset()
		require.NoError(t, run(&c, in, script, nil, true, false, &out))
		assert.Equal(t, "Hello\n", out.String())
	})

	t.Run("rules reject", func(t *testing.T) {
		in := writeFile(t, "doc.html", "<p>Hello</p>")
		c := *cfg
		c.RulesScript = writeFile(t, "rules.lua", `
		function BeforeFormat(params, format)
			return { status = format.name ~= "strike" }
		end`)

		var out bytes.Buffer
		err := run(&c, in, "", formatOps{{0, 5, "strike", true}}, false, false, &out)
		assert.ErrorIs(t, err, apierrors.ErrFormatScriptFail)
		assert.Empty(t, out.String())
	})
}

func TestWriteMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, metrics.Register(reg))
	metrics.Splits.Inc()

	var out bytes.Buffer
	require.NoError(t, writeMetrics(&out, reg))
	assert.Contains(t, out.String(), "redactor_block_split_total")
}

package rules

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aisa-it/redactor.go/internal/redactor/apierrors"
	"github.com/aisa-it/redactor.go/internal/redactor/blot"
	"github.com/aisa-it/redactor.go/internal/redactor/editor"
	"github.com/aisa-it/redactor.go/internal/redactor/formats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const formatScript = `
function BeforeFormat(params, format)
	print("format", format.name, params.index)
	if format.name == "color" and format.value == "red" then
		return { status = false, error = "Красный цвет запрещён." }
	end
	if format.name == "header" and params.lines:checkBlot("list-item") then
		return { status = false }
	end
	return { status = true }
end
`

func newDoc(t *testing.T, body string, engine *Engine) *blot.Scroll {
	t.Helper()
	reg, err := formats.NewRegistry()
	require.NoError(t, err)
	s, err := editor.ParseDocument(strings.NewReader(body), reg, blot.WithFormatHook(engine))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestBeforeFormat(t *testing.T) {
	t.Run("allowed", func(t *testing.T) {
		engine := New(formatScript)
		s := newDoc(t, "<p>Hello</p>", engine)

		require.NoError(t, s.FormatAt(0, 5, formats.Color, "blue"))
		logs := engine.Logs()
		require.Len(t, logs, 2)
		assert.Equal(t, "print", logs[0].Type)
		assert.Equal(t, "format color 0", logs[0].Msg)
		assert.Equal(t, "success", logs[1].Type)
	})

	t.Run("custom error", func(t *testing.T) {
		engine := New(formatScript)
		s := newDoc(t, "<p>Hello</p>", engine)

		err := s.FormatAt(0, 5, formats.Color, "red")
		require.Error(t, err)
		assert.ErrorIs(t, err, apierrors.ErrFormatCustomScriptFail)
		assert.Equal(t, "Красный цвет запрещён.", err.Error())
		assert.Equal(t, "<p>Hello</p>", mustRender(t, s))

		logs := engine.Logs()
		assert.Equal(t, "fail", logs[len(logs)-1].Type)
		assert.Equal(t, apierrors.ErrFormatCustomScriptFail.Code, logs[len(logs)-1].Code)
	})

	t.Run("status false", func(t *testing.T) {
		engine := New(formatScript)
		s := newDoc(t, "<ul><li>One</li></ul>", engine)

		err := s.FormatAt(0, 3, formats.Header, "h1")
		assert.ErrorIs(t, err, apierrors.ErrFormatScriptFail)
		assert.Equal(t, "<ul><li>One</li></ul>", mustRender(t, s))
	})

	t.Run("no function", func(t *testing.T) {
		engine := New(`x = 1`)
		s := newDoc(t, "<p>Hello</p>", engine)
		require.NoError(t, s.FormatAt(0, 5, formats.Bold, true))
		assert.Empty(t, engine.Logs())
	})

	t.Run("broken script does not block", func(t *testing.T) {
		engine := New(`function BeforeFormat(`)
		s := newDoc(t, "<p>Hello</p>", engine)
		require.NoError(t, s.FormatAt(0, 5, formats.Bold, true))

		logs := engine.Logs()
		require.Len(t, logs, 1)
		assert.Equal(t, "error", logs[0].Type)
		assert.Equal(t, errParseScript, logs[0].Msg)
		assert.NotNil(t, logs[0].LuaErr)
	})

	t.Run("sandbox", func(t *testing.T) {
		engine := New(`
		function BeforeFormat(params, format)
			return { status = os == nil and io == nil and require == nil }
		end`)
		s := newDoc(t, "<p>Hello</p>", engine)
		require.NoError(t, s.FormatAt(0, 5, formats.Bold, true))
	})

	t.Run("timeout", func(t *testing.T) {
		engine := New(`
		function BeforeFormat(params, format)
			while true do end
		end`, WithTimeout(50*time.Millisecond))
		s := newDoc(t, "<p>Hello</p>", engine)
		require.NoError(t, s.FormatAt(0, 5, formats.Bold, true))

		logs := engine.Logs()
		require.NotEmpty(t, logs)
		assert.Equal(t, errTimeout, logs[0].Msg)
		assert.Equal(t, apierrors.ErrScriptTimeout.Code, logs[0].Code)
	})
}

func TestLines(t *testing.T) {
	engine := New(`
	function BeforeFormat(params, format)
		if params:lineCount() ~= 2 then
			return { status = false, error = "expected two lines" }
		end
		if not params.lines:hasFormat("align") then
			return { status = false, error = "expected align" }
		end
		return { status = params.lines[1].formats.align == "right" }
	end`)
	s := newDoc(t, `<p class="ql-align-right">One</p><p>Two</p>`, engine)
	require.NoError(t, s.FormatAt(1, 3, formats.Indent, 1))
}

func TestRun(t *testing.T) {
	reg, err := formats.NewRegistry()
	require.NoError(t, err)

	t.Run("edits document", func(t *testing.T) {
		s, err := editor.ParseDocument(strings.NewReader("<p>Hello</p>"), reg)
		require.NoError(t, err)
		defer s.Close()

		msg, err := Run(context.Background(), s, `
			doc.insert(0, "Oh, ")
			doc.format(4, doc.length() - 4, "bold", true)
			doc.format(0, 1, "header", 2)
			local f = doc.formats(0)
			print(f.header)
		`)
		require.NoError(t, err)
		require.Len(t, msg, 1)
		assert.Equal(t, "h2", msg[0].Msg)
		assert.Equal(t, "<h2>Oh, <strong>Hello</strong></h2>", mustRender(t, s))
	})

	t.Run("operation error stops script", func(t *testing.T) {
		s, err := editor.ParseDocument(strings.NewReader("<p>Hello</p>"), reg)
		require.NoError(t, err)
		defer s.Close()

		_, err = Run(context.Background(), s, `doc.insert(0, "no-such-blot", true)`)
		assert.Error(t, err)
	})

	t.Run("timeout", func(t *testing.T) {
		s, err := editor.ParseDocument(strings.NewReader("<p>Hello</p>"), reg)
		require.NoError(t, err)
		defer s.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err = Run(ctx, s, `while true do end`)
		assert.ErrorIs(t, err, apierrors.ErrScriptTimeout)
	})
}

func mustRender(t *testing.T, s *blot.Scroll) string {
	t.Helper()
	out, err := editor.RenderString(s)
	require.NoError(t, err)
	return out
}

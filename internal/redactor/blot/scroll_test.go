package blot_test

import (
	"errors"
	"testing"

	"github.com/aisa-it/redactor.go/internal/redactor/apierrors"
	"github.com/aisa-it/redactor.go/internal/redactor/blot"
	"github.com/aisa-it/redactor.go/internal/redactor/dom"
	"github.com/aisa-it/redactor.go/internal/redactor/formats"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rejectHook struct {
	name  string
	calls []blot.FormatRequest
}

func (h *rejectHook) BeforeFormat(req blot.FormatRequest) error {
	h.calls = append(h.calls, req)
	if req.Name == h.name {
		return errors.New("rejected")
	}
	return nil
}

func TestNewScroll(t *testing.T) {
	t.Run("empty document gets default block", func(t *testing.T) {
		reg, err := formats.NewRegistry()
		require.NoError(t, err)
		s, err := blot.NewScroll(reg, nil)
		require.NoError(t, err)
		defer s.Close()

		assert.Equal(t, "<p><br/></p>", render(t, s))
		assert.Equal(t, 0, s.Length())
		assert.NotEqual(t, uuid.Nil, s.ID())
	})

	t.Run("unformatted inline is unwrapped", func(t *testing.T) {
		s := newScroll(t, "<p><span>plain</span></p>")
		assert.Equal(t, "<p>plain</p>", render(t, s))
	})

	t.Run("unknown element is replaced", func(t *testing.T) {
		s := newScroll(t, "<p>a<x-widget>b</x-widget>c</p>")
		assert.Equal(t, "<p>abc</p>", render(t, s))
		assert.Equal(t, 3, s.Length())
	})

	t.Run("orphan list item gets container", func(t *testing.T) {
		s := newScroll(t, "<li>One</li>")
		assert.Equal(t, "<ol><li>One</li></ol>", render(t, s))
	})

	t.Run("adjacent lists merge", func(t *testing.T) {
		s := newScroll(t, "<ol><li>One</li></ol><ol><li>Two</li></ol><ul><li>Three</li></ul>")
		assert.Equal(t, "<ol><li>One</li><li>Two</li></ol><ul><li>Three</li></ul>", render(t, s))
	})

	t.Run("optimize limit", func(t *testing.T) {
		reg, err := formats.NewRegistry()
		require.NoError(t, err)
		_, err = blot.NewScroll(reg, parseRoot(t, "<p><span>plain</span></p>"), blot.WithMaxOptimizeIterations(1))
		assert.ErrorIs(t, err, apierrors.ErrMaxOptimize)
	})
}

func TestScrollFormatAt(t *testing.T) {
	t.Run("block format over range", func(t *testing.T) {
		s := newScroll(t, "<p>One</p><p>Two</p><p>Three</p>")
		require.NoError(t, s.FormatAt(0, 4, formats.Align, "center"))
		assert.Equal(t, `<p class="ql-align-center">One</p><p class="ql-align-center">Two</p><p>Three</p>`, render(t, s))
	})

	t.Run("inline format wraps text", func(t *testing.T) {
		s := newScroll(t, "<p>Hello</p>")
		require.NoError(t, s.FormatAt(1, 3, formats.Bold, true))
		assert.Equal(t, "<p>H<strong>ell</strong>o</p>", render(t, s))
	})

	t.Run("inline attribute wraps in span", func(t *testing.T) {
		s := newScroll(t, "<p>Hello</p>")
		require.NoError(t, s.FormatAt(0, 5, formats.Color, "red"))
		assert.Equal(t, `<p><span style="color: red;">Hello</span></p>`, render(t, s))
	})

	t.Run("removing inline format unwraps", func(t *testing.T) {
		s := newScroll(t, "<p><strong>Hello</strong></p>")
		require.NoError(t, s.FormatAt(0, 5, formats.Bold, false))
		assert.Equal(t, "<p>Hello</p>", render(t, s))
	})

	t.Run("list format through container", func(t *testing.T) {
		s := newScroll(t, "<ol><li>One</li><li>Two</li></ol>")
		require.NoError(t, s.FormatAt(0, 1, formats.List, formats.ListBullet))
		assert.Equal(t, "<ul><li>One</li><li>Two</li></ul>", render(t, s))
	})

	t.Run("hook can reject", func(t *testing.T) {
		hook := &rejectHook{name: formats.Color}
		s := newScroll(t, `<h1 class="ql-align-right">Title</h1>`, blot.WithFormatHook(hook))

		require.NoError(t, s.FormatAt(0, 5, formats.Bold, true))
		err := s.FormatAt(0, 5, formats.Color, "red")
		assert.EqualError(t, err, "rejected")
		assert.Equal(t, `<h1 class="ql-align-right"><strong>Title</strong></h1>`, render(t, s))

		require.Len(t, hook.calls, 2)
		assert.Equal(t, []blot.LineInfo{{
			Blot:    formats.Header,
			Formats: map[string]any{"header": "h1", "align": "right"},
		}}, hook.calls[1].Lines)
	})
}

func TestScrollInsertAt(t *testing.T) {
	t.Run("text into empty document", func(t *testing.T) {
		reg, err := formats.NewRegistry()
		require.NoError(t, err)
		s, err := blot.NewScroll(reg, nil)
		require.NoError(t, err)
		defer s.Close()

		require.NoError(t, s.InsertAt(0, "Hello\n", nil))
		assert.Equal(t, "<p>Hello</p>", render(t, s))
	})

	t.Run("text past end adds block", func(t *testing.T) {
		s := newScroll(t, "<p>One</p>")
		require.NoError(t, s.InsertAt(3, "Two", nil))
		assert.Equal(t, "<p>One</p><p>Two</p>", render(t, s))
	})

	t.Run("structural past end", func(t *testing.T) {
		s := newScroll(t, "<p>One</p>")
		require.NoError(t, s.InsertAt(3, formats.Divider, true))
		assert.Equal(t, "<p>One</p><hr/>", render(t, s))
	})

	t.Run("text merges with neighbour", func(t *testing.T) {
		s := newScroll(t, "<p>Hello</p>")
		require.NoError(t, s.InsertAt(2, "--", nil))
		assert.Equal(t, "<p>He--llo</p>", render(t, s))
		assert.Len(t, line(t, s, 0).Children(), 1)
	})
}

func TestScrollDeleteAt(t *testing.T) {
	t.Run("inside block", func(t *testing.T) {
		s := newScroll(t, "<p>Hello</p>")
		require.NoError(t, s.DeleteAt(1, 3))
		assert.Equal(t, "<p>Ho</p>", render(t, s))
	})

	t.Run("whole document", func(t *testing.T) {
		s := newScroll(t, "<p>One</p><p>Two</p>")
		require.NoError(t, s.DeleteAt(0, s.Length()))
		assert.Equal(t, "<p><br/></p>", render(t, s))
	})
}

func TestScrollUpdate(t *testing.T) {
	t.Run("added block", func(t *testing.T) {
		s := newScroll(t, "<p>One</p>")
		p := dom.NewElement("p")
		p.AppendChild(dom.NewText("Two"))
		dom.AppendChild(s.DOMNode(), p)

		require.NoError(t, s.Update(nil, nil))
		require.Len(t, s.Children(), 2)
		assert.Equal(t, 6, s.Length())
		assert.Same(t, s.Find(p, false), line(t, s, 3))
	})

	t.Run("removed block", func(t *testing.T) {
		s := newScroll(t, "<p>One</p><p>Two</p>")
		first := line(t, s, 0)
		dom.Remove(first.DOMNode())

		require.NoError(t, s.Update(nil, nil))
		assert.Nil(t, first.Parent())
		assert.Nil(t, s.Find(first.DOMNode(), false))
		assert.Equal(t, 3, s.Length())
	})

	t.Run("character data", func(t *testing.T) {
		s := newScroll(t, "<p>One</p>")
		text := line(t, s, 0).Children()[0].(*blot.TextBlot)
		dom.SetText(text.DOMNode(), "Three")

		require.NoError(t, s.Update(nil, nil))
		assert.Equal(t, "Three", text.Text())
		assert.Equal(t, 5, s.Length())
	})
}

func TestScrollLines(t *testing.T) {
	s := newScroll(t, "<p>One</p><ol><li>Two</li><li>Three</li></ol><p>Four</p>")

	lines := s.Lines(0, s.Length())
	require.Len(t, lines, 4)
	assert.Equal(t, formats.ListItem, lines[1].Name())

	l, offset := s.Line(7)
	require.NotNil(t, l)
	assert.Equal(t, 1, offset)
	assert.Equal(t, 6, l.Offset(s))

	assert.Len(t, s.Lines(3, 1), 1)
}

package blot_test

import (
	"strings"
	"testing"

	"github.com/aisa-it/redactor.go/internal/redactor/blot"
	"github.com/aisa-it/redactor.go/internal/redactor/dom"
	"github.com/aisa-it/redactor.go/internal/redactor/formats"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parseRoot(t *testing.T, body string) *html.Node {
	t.Helper()
	root := dom.NewElement("div")
	nodes, err := html.ParseFragment(strings.NewReader(body), root)
	require.NoError(t, err)
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root
}

func newScroll(t *testing.T, body string, opts ...blot.ScrollOption) *blot.Scroll {
	t.Helper()
	reg, err := formats.NewRegistry()
	require.NoError(t, err)

	s, err := blot.NewScroll(reg, parseRoot(t, body), opts...)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func render(t *testing.T, s *blot.Scroll) string {
	t.Helper()
	var sb strings.Builder
	for _, n := range dom.Children(s.DOMNode()) {
		require.NoError(t, html.Render(&sb, n))
	}
	return sb.String()
}

func line(t *testing.T, s *blot.Scroll, index int) *blot.BlockBlot {
	t.Helper()
	b, _ := s.Line(index)
	require.NotNil(t, b, "no line at %d", index)
	return b
}

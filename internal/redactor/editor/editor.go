// Пакет связывает дерево документа с HTML: разбирает документ в корень дерева и выводит его обратно.
// Разметка, оставленная для читаемости исходника (переносы строк между блоками, комментарии),
// удаляется до построения дерева, чтобы не превращаться в пустые строки документа.
//
// Основные возможности:
//   - Парсинг HTML-документов и фрагментов из io.Reader в blot.Scroll.
//   - Вывод дерева в HTML через html.Render.
//   - Построчное описание документа: имя блока, его форматы, смещение и текст.
package editor

import (
	"io"
	"log/slog"
	"strings"

	"github.com/aisa-it/redactor.go/internal/redactor/blot"
	"github.com/aisa-it/redactor.go/internal/redactor/dom"
	"golang.org/x/net/html"
)

// Line - строка документа в том виде, в каком её видят правила и CLI.
type Line struct {
	Offset  int            `json:"offset"`
	Length  int            `json:"length"`
	Blot    string         `json:"blot"`
	Formats map[string]any `json:"formats,omitempty"`
	Text    string         `json:"text"`
}

// ParseDocument разбирает HTML и строит дерево из содержимого body.
func ParseDocument(r io.Reader, reg *blot.Registry, opts ...blot.ScrollOption) (*blot.Scroll, error) {
	rootNode, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	root := dom.NewElement("div")
	if body := getBody(rootNode); body != nil {
		for el := body.FirstChild; el != nil; {
			next := el.NextSibling
			body.RemoveChild(el)
			if keepNode(el, body) {
				trimLayout(el)
				root.AppendChild(el)
			}
			el = next
		}
	}

	return blot.NewScroll(reg, root, opts...)
}

// Render выводит содержимое корня без самого корневого элемента.
func Render(w io.Writer, s *blot.Scroll) error {
	if err := s.Update(nil, nil); err != nil {
		return err
	}
	for _, n := range dom.Children(s.DOMNode()) {
		if err := html.Render(w, n); err != nil {
			return err
		}
	}
	return nil
}

func RenderString(s *blot.Scroll) (string, error) {
	var sb strings.Builder
	if err := Render(&sb, s); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Outline возвращает строки документа по порядку.
func Outline(s *blot.Scroll) []Line {
	lines := s.Lines(0, s.Length())
	res := make([]Line, 0, len(lines))
	for _, l := range lines {
		res = append(res, Line{
			Offset:  l.Offset(s),
			Length:  l.Length(),
			Blot:    l.Name(),
			Formats: l.Formats(),
			Text:    getText(l.DOMNode()),
		})
	}
	return res
}

func keepNode(n, parent *html.Node) bool {
	switch n.Type {
	case html.ElementNode:
		return true
	case html.TextNode:
		if dom.TagName(parent) == "pre" {
			return true
		}
		if strings.TrimSpace(n.Data) == "" && strings.Contains(n.Data, "\n") {
			return false
		}
		return true
	}
	slog.Debug("Skip non-content node", "type", n.Type, "data", n.Data)
	return false
}

// trimLayout удаляет из поддерева комментарии и пробельные переносы между элементами.
func trimLayout(root *html.Node) {
	for el := root.FirstChild; el != nil; {
		next := el.NextSibling
		if !keepNode(el, root) {
			root.RemoveChild(el)
		} else if el.Type == html.ElementNode {
			trimLayout(el)
		}
		el = next
	}
}

func getText(root *html.Node) string {
	var sb strings.Builder
	iterNodes(root, func(child *html.Node) bool {
		if child.Type == html.TextNode {
			sb.WriteString(child.Data)
		}
		return false
	})
	return sb.String()
}

func findElementByTagName(rootNode *html.Node, tagName string) *html.Node {
	var el *html.Node
	iterNodes(rootNode, func(child *html.Node) bool {
		if el != nil {
			return true
		}
		if child.Type == html.ElementNode && child.Data == tagName {
			el = child
			return true
		}
		return false
	})
	return el
}

func getBody(rootNode *html.Node) *html.Node {
	return findElementByTagName(rootNode, "body")
}

func iterNodes(node *html.Node, f func(child *html.Node) bool) {
	if f(node) {
		return
	}
	for p := node.FirstChild; p != nil; p = p.NextSibling {
		iterNodes(p, f)
	}
}

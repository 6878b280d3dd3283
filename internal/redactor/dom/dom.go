// Пакет предоставляет внешнее представление документа поверх golang.org/x/net/html:
// создание элементов, работу с атрибутами, классами и стилями, а также операции над
// деревом, которые фиксируются наблюдателем мутаций.
//
// Основные возможности:
//   - Создание элементов и текстовых узлов.
//   - Чтение и изменение атрибутов, списка классов и inline-стилей.
//   - Вставка, удаление, разделение текстовых узлов с записью мутаций.
//   - Наблюдение за поддеревом и выдача накопленных пакетов мутаций.
package dom

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NewElement создает элемент с указанным тегом. Тег приводится к нижнему регистру.
func NewElement(tag string) *html.Node {
	tag = strings.ToLower(tag)
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}

// NewText создает текстовый узел.
func NewText(data string) *html.Node {
	return &html.Node{
		Type: html.TextNode,
		Data: data,
	}
}

// TagName возвращает тег элемента в нижнем регистре или пустую строку для не-элементов.
func TagName(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(n.Data)
}

func IsText(n *html.Node) bool {
	return n != nil && n.Type == html.TextNode
}

func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// CloneShallow копирует узел без потомков.
func CloneShallow(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	c.Attr = slices.Clone(n.Attr)
	return c
}

// Children возвращает снимок дочерних узлов.
func Children(n *html.Node) []*html.Node {
	var res []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		res = append(res, c)
	}
	return res
}

// Contains сообщает, является ли ancestor предком n (или самим n).
func Contains(ancestor, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// InsertBefore вставляет child в parent перед ref (в конец, если ref == nil).
// Если child уже находится в дереве, он сначала извлекается из старого родителя.
func InsertBefore(parent, child, ref *html.Node) {
	if child.Parent == parent && child.NextSibling == ref && ref != child {
		return
	}
	if child.Parent != nil {
		RemoveChild(child.Parent, child)
	}
	prev := parent.LastChild
	if ref != nil {
		prev = ref.PrevSibling
	}
	parent.InsertBefore(child, ref)
	record(MutationRecord{
		Type:            ChildList,
		Target:          parent,
		AddedNodes:      []*html.Node{child},
		PreviousSibling: prev,
		NextSibling:     ref,
	})
}

// AppendChild добавляет child последним потомком parent.
func AppendChild(parent, child *html.Node) {
	InsertBefore(parent, child, nil)
}

// RemoveChild извлекает child из parent.
func RemoveChild(parent, child *html.Node) {
	if child.Parent != parent {
		return
	}
	prev, next := child.PrevSibling, child.NextSibling
	parent.RemoveChild(child)
	record(MutationRecord{
		Type:            ChildList,
		Target:          parent,
		RemovedNodes:    []*html.Node{child},
		PreviousSibling: prev,
		NextSibling:     next,
	})
}

// Remove извлекает узел из его родителя, если он есть.
func Remove(n *html.Node) {
	if n.Parent != nil {
		RemoveChild(n.Parent, n)
	}
}

// ReplaceChild ставит replacement на место old.
func ReplaceChild(parent, replacement, old *html.Node) {
	next := old.NextSibling
	RemoveChild(parent, old)
	InsertBefore(parent, replacement, next)
}

// SetText меняет содержимое текстового узла.
func SetText(n *html.Node, data string) {
	if n.Data == data {
		return
	}
	old := n.Data
	n.Data = data
	record(MutationRecord{
		Type:     CharacterData,
		Target:   n,
		OldValue: old,
	})
}

// SplitText делит текстовый узел по смещению в рунах и возвращает вторую часть,
// вставленную сразу после исходного узла.
func SplitText(n *html.Node, offset int) *html.Node {
	runes := []rune(n.Data)
	offset = max(0, min(offset, len(runes)))
	after := NewText(string(runes[offset:]))
	SetText(n, string(runes[:offset]))
	if n.Parent != nil {
		InsertBefore(n.Parent, after, n.NextSibling)
	}
	return after
}

package blot

import (
	"errors"
	"slices"

	"github.com/aisa-it/redactor.go/internal/redactor/apierrors"
	"github.com/aisa-it/redactor.go/internal/redactor/dom"
	"github.com/aisa-it/redactor.go/internal/redactor/scope"
	"golang.org/x/net/html"
)

// parentBlot - узел со списком потомков. Порядок потомков всегда совпадает с
// порядком дочерних элементов внешнего представления.
type parentBlot struct {
	shadowBlot
	children []Blot
}

func (p *parentBlot) initParent(self Parent, scroll *Scroll, def *Definition, node *html.Node) error {
	p.init(self, scroll, def, node)
	return p.build()
}

func (p *parentBlot) parentBase() *parentBlot { return p }
func (p *parentBlot) asParent() Parent        { return p.self.(Parent) }

func (p *parentBlot) Children() []Blot {
	return slices.Clone(p.children)
}

// build создаёт потомков по дочерним элементам. Обход идёт с конца, чтобы
// каждый элемент уже стоял перед своим соседом и не перемещался.
func (p *parentBlot) build() error {
	p.children = nil
	nodes := dom.Children(p.node)
	var ref Blot
	for i := len(nodes) - 1; i >= 0; i-- {
		node := nodes[i]
		if node.Type != html.ElementNode && node.Type != html.TextNode {
			continue
		}
		child, err := p.scroll.makeAttachedBlot(node)
		if err != nil {
			var defined apierrors.DefinedError
			if errors.As(err, &defined) {
				p.scroll.logger.Debug("Skip unsupported node", "parent", p.Name(), "err", err)
				continue
			}
			return err
		}
		if err := p.asParent().InsertBefore(child, ref); err != nil {
			return err
		}
		// child мог оказаться обёрнут, соседом служит его предок в этом узле
		ref = child
		for ref.Parent() != nil && ref.Parent().parentBase() != p {
			ref = ref.Parent()
		}
	}
	return nil
}

func (p *parentBlot) indexOf(child Blot) int {
	return slices.Index(p.children, child)
}

func (p *parentBlot) before(child Blot) Blot {
	if i := p.indexOf(child); i > 0 {
		return p.children[i-1]
	}
	return nil
}

func (p *parentBlot) after(child Blot) Blot {
	if i := p.indexOf(child); i >= 0 && i+1 < len(p.children) {
		return p.children[i+1]
	}
	return nil
}

func (p *parentBlot) offsetOf(child Blot) int {
	offset := 0
	for _, c := range p.children {
		if c == child {
			return offset
		}
		offset += c.Length()
	}
	return offset
}

// find возвращает потомка, содержащего позицию index, и смещение внутри него.
// При inclusive позиция на правой границе потомка относится к нему.
func (p *parentBlot) find(index int, inclusive bool) (Blot, int) {
	for i, child := range p.children {
		length := child.Length()
		if index < length || (inclusive && index == length && (i+1 == len(p.children) || p.children[i+1].Length() != 0)) {
			return child, index
		}
		index -= length
	}
	return nil, 0
}

// forEachAt вызывает fn для каждого потомка, пересекающего диапазон, с
// локальными смещением и длиной. Следующий потомок выбирается до вызова fn.
func (p *parentBlot) forEachAt(index, length int, fn func(child Blot, offset, length int) error) error {
	if length <= 0 {
		return nil
	}
	start, offset := p.find(index, false)
	if start == nil {
		return nil
	}
	curIndex := index - offset
	cur := start
	for cur != nil && curIndex < index+length {
		next := p.after(cur)
		curLength := cur.Length()
		var err error
		if index > curIndex {
			err = fn(cur, index-curIndex, min(length, curIndex+curLength-index))
		} else {
			err = fn(cur, 0, min(curLength, index+length-curIndex))
		}
		if err != nil {
			return err
		}
		curIndex += curLength
		cur = next
	}
	return nil
}

func (p *parentBlot) Length() int {
	total := 0
	for _, child := range p.children {
		total += child.Length()
	}
	return total
}

func (p *parentBlot) Attach() {
	for _, child := range p.children {
		child.Attach()
	}
}

func (p *parentBlot) Detach() {
	for _, child := range slices.Clone(p.children) {
		child.Detach()
	}
	p.shadowBlot.Detach()
}

func (p *parentBlot) DeleteAt(index, length int) error {
	if index == 0 && length == p.self.Length() {
		p.self.Remove()
		return nil
	}
	return p.forEachAt(index, length, func(child Blot, offset, length int) error {
		return child.DeleteAt(offset, length)
	})
}

func (p *parentBlot) FormatAt(index, length int, name string, value any) error {
	return p.forEachAt(index, length, func(child Blot, offset, length int) error {
		return child.FormatAt(offset, length, name, value)
	})
}

func (p *parentBlot) InsertAt(index int, value string, def any) error {
	if child, offset := p.find(index, false); child != nil {
		return child.InsertAt(offset, value, def)
	}

	var (
		inserted Blot
		err      error
	)
	if def == nil {
		inserted, err = p.scroll.Create(TextName, value)
	} else {
		inserted, err = p.scroll.Create(value, def)
	}
	if err != nil {
		return err
	}
	return p.asParent().AppendChild(inserted)
}

func (p *parentBlot) AppendChild(child Blot) error {
	return p.asParent().InsertBefore(child, nil)
}

// InsertBefore ставит child перед ref (в конец при ref == nil) и в списке
// потомков, и во внешнем представлении.
func (p *parentBlot) InsertBefore(child, ref Blot) error {
	if child == nil {
		return apierrors.ErrUnknownBlot.WithFormattedMessage("nil")
	}
	if ref == child {
		return nil
	}
	if ref != nil && p.indexOf(ref) < 0 {
		ref = nil
	}

	cb := child.base()
	if cb.owner != nil {
		cb.owner.parentBase().removeFromList(child)
	}
	if ref == nil {
		p.children = append(p.children, child)
	} else {
		p.children = slices.Insert(p.children, p.indexOf(ref), child)
	}
	cb.owner = p.asParent()

	var refNode *html.Node
	if ref != nil {
		refNode = ref.DOMNode()
	}
	dom.InsertBefore(p.node, child.DOMNode(), refNode)
	child.Attach()
	return nil
}

func (p *parentBlot) removeFromList(child Blot) {
	if i := p.indexOf(child); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
}

// RemoveChild исключает child из списка потомков, не трогая внешнее представление.
func (p *parentBlot) RemoveChild(child Blot) {
	p.removeFromList(child)
	if cb := child.base(); cb.owner != nil && cb.owner.parentBase() == p {
		cb.owner = nil
	}
}

func (p *parentBlot) MoveChildren(target Parent, ref Blot) error {
	for _, child := range slices.Clone(p.children) {
		if err := target.InsertBefore(child, ref); err != nil {
			return err
		}
	}
	return nil
}

func (p *parentBlot) Optimize(ctx Context) error {
	if err := p.shadowBlot.Optimize(ctx); err != nil {
		return err
	}
	if err := p.enforceAllowedChildren(); err != nil {
		return err
	}
	if len(p.children) > 0 {
		return nil
	}
	if p.def.DefaultChild != "" {
		child, err := p.scroll.Create(p.def.DefaultChild, nil)
		if err != nil {
			return err
		}
		return p.asParent().AppendChild(child)
	}
	if p.owner != nil {
		p.self.Remove()
	}
	return nil
}

// enforceAllowedChildren убирает недопустимых потомков: блочный узел выносится
// наружу с разделением текущего узла, родительский разворачивается, остальные удаляются.
func (p *parentBlot) enforceAllowedChildren() error {
	for _, child := range slices.Clone(p.children) {
		if child.Parent() == nil || child.Parent().parentBase() != p {
			continue
		}
		if p.def.allows(child.Definition()) {
			continue
		}

		if child.Scope() == scope.BlockBlot {
			if child.Next() != nil {
				if _, err := p.asParent().SplitAfter(child); err != nil {
					return err
				}
			}
			if prev := child.Prev(); prev != nil {
				if _, err := p.asParent().SplitAfter(prev); err != nil {
					return err
				}
			}
			return child.Parent().Unwrap()
		}

		if cp, ok := child.(Parent); ok {
			if err := cp.Unwrap(); err != nil {
				return err
			}
		} else {
			child.Remove()
		}
	}
	return nil
}

func (p *parentBlot) ReplaceWithBlot(replacement Blot) (Blot, error) {
	if rp, ok := replacement.(Parent); ok {
		if err := p.asParent().MoveChildren(rp, nil); err != nil {
			return nil, err
		}
	}
	return p.shadowBlot.ReplaceWithBlot(replacement)
}

func (p *parentBlot) Split(index int, force bool) (Blot, error) {
	if !force {
		if index == 0 {
			return p.self, nil
		}
		if index == p.self.Length() {
			return p.self.Next(), nil
		}
	}

	clone, err := p.self.Clone()
	if err != nil {
		return nil, err
	}
	after, ok := clone.(Parent)
	if !ok {
		return nil, apierrors.ErrNotParent.WithFormattedMessage(clone.Name())
	}
	if p.owner != nil {
		if err := p.owner.InsertBefore(after, p.self.Next()); err != nil {
			return nil, err
		}
	}
	err = p.forEachAt(index, p.self.Length(), func(child Blot, offset, _ int) error {
		split, err := child.Split(offset, force)
		if err != nil {
			return err
		}
		if split != nil {
			return after.AppendChild(split)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return after, nil
}

// SplitAfter переносит всех потомков после child в копию текущего узла,
// которая вставляется следом за ним.
func (p *parentBlot) SplitAfter(child Blot) (Parent, error) {
	clone, err := p.self.Clone()
	if err != nil {
		return nil, err
	}
	after, ok := clone.(Parent)
	if !ok {
		return nil, apierrors.ErrNotParent.WithFormattedMessage(clone.Name())
	}
	for next := child.Next(); next != nil; next = child.Next() {
		if err := after.AppendChild(next); err != nil {
			return nil, err
		}
	}
	if p.owner != nil {
		if err := p.owner.InsertBefore(after, p.self.Next()); err != nil {
			return nil, err
		}
	}
	return after, nil
}

func (p *parentBlot) Unwrap() error {
	if p.owner != nil {
		if err := p.asParent().MoveChildren(p.owner, p.self.Next()); err != nil {
			return err
		}
	}
	p.self.Remove()
	return nil
}

// Descendant спускается по пути позиции index и возвращает первый узел,
// удовлетворяющий match, вместе со смещением внутри него.
func (p *parentBlot) Descendant(match func(Blot) bool, index int) (Blot, int) {
	child, offset := p.find(index, false)
	if child == nil {
		return nil, -1
	}
	if match(child) {
		return child, offset
	}
	if cp, ok := child.(Parent); ok {
		return cp.Descendant(match, offset)
	}
	return nil, -1
}

// Descendants возвращает все узлы поддерева, удовлетворяющие match, в порядке документа.
func (p *parentBlot) Descendants(match func(Blot) bool) []Blot {
	var res []Blot
	for _, child := range p.children {
		if match(child) {
			res = append(res, child)
		}
		if cp, ok := child.(Parent); ok {
			res = append(res, cp.Descendants(match)...)
		}
	}
	return res
}

// Update согласует список потомков с изменениями дочерних элементов:
// удалённые элементы отсоединяются, добавленные получают узлы.
func (p *parentBlot) Update(mutations []dom.MutationRecord, _ Context) error {
	var added, removed []*html.Node
	for _, m := range mutations {
		if m.Target == p.node && m.Type == dom.ChildList {
			added = append(added, m.AddedNodes...)
			removed = append(removed, m.RemovedNodes...)
		}
	}

	docRoot := rootOf(p.node)
	for _, node := range removed {
		if node.Parent != nil && rootOf(node) == docRoot {
			continue
		}
		b := p.scroll.Find(node, false)
		if b == nil {
			continue
		}
		if b.DOMNode().Parent == nil || b.DOMNode().Parent == p.node {
			b.Detach()
		}
	}

	added = slices.DeleteFunc(added, func(n *html.Node) bool {
		return n.Parent != p.node
	})
	position := make(map[*html.Node]int)
	for i, n := range dom.Children(p.node) {
		position[n] = i
	}
	// с конца, чтобы сосед справа уже имел узел
	slices.SortFunc(added, func(a, b *html.Node) int {
		return position[b] - position[a]
	})
	added = slices.Compact(added)

	for _, node := range added {
		if node.Type != html.ElementNode && node.Type != html.TextNode {
			continue
		}
		var ref Blot
		if node.NextSibling != nil {
			ref = p.scroll.Find(node.NextSibling, false)
		}
		b, err := p.scroll.makeAttachedBlot(node)
		if err != nil {
			var defined apierrors.DefinedError
			if errors.As(err, &defined) {
				continue
			}
			return err
		}
		if b.Parent() == nil || b.Parent().parentBase() != p || b.Next() != ref {
			if err := p.asParent().InsertBefore(b, ref); err != nil {
				return err
			}
		}
	}
	return p.enforceAllowedChildren()
}

func rootOf(n *html.Node) *html.Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

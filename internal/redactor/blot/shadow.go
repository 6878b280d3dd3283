package blot

import (
	"github.com/aisa-it/redactor.go/internal/redactor/apierrors"
	"github.com/aisa-it/redactor.go/internal/redactor/attributor"
	"github.com/aisa-it/redactor.go/internal/redactor/dom"
	"github.com/aisa-it/redactor.go/internal/redactor/metrics"
	"github.com/aisa-it/redactor.go/internal/redactor/scope"
	"golang.org/x/net/html"
)

// shadowBlot - общее поведение всех узлов. Поле self указывает на конкретный
// узел, чтобы переопределённые методы вызывались из общих.
type shadowBlot struct {
	self   Blot
	def    *Definition
	scroll *Scroll
	node   *html.Node
	owner  Parent
}

func (s *shadowBlot) init(self Blot, scroll *Scroll, def *Definition, node *html.Node) {
	s.self = self
	s.def = def
	s.scroll = scroll
	s.node = node
	scroll.register(node, self)
}

func (s *shadowBlot) base() *shadowBlot       { return s }
func (s *shadowBlot) Definition() *Definition { return s.def }
func (s *shadowBlot) Name() string            { return s.def.Name }
func (s *shadowBlot) Scope() scope.Scope      { return s.def.Scope() }
func (s *shadowBlot) DOMNode() *html.Node     { return s.node }
func (s *shadowBlot) Scroll() *Scroll         { return s.scroll }
func (s *shadowBlot) Parent() Parent          { return s.owner }
func (s *shadowBlot) Length() int             { return 1 }
func (s *shadowBlot) Attach()                 {}

func (s *shadowBlot) Optimize(_ Context) error {
	return s.wrapRequired()
}

func (s *shadowBlot) Update(_ []dom.MutationRecord, _ Context) error {
	return nil
}

func (s *shadowBlot) Prev() Blot {
	if s.owner == nil {
		return nil
	}
	return s.owner.parentBase().before(s.self)
}

func (s *shadowBlot) Next() Blot {
	if s.owner == nil {
		return nil
	}
	return s.owner.parentBase().after(s.self)
}

func (s *shadowBlot) Offset(root Blot) int {
	if s.owner == nil {
		return 0
	}
	if root == nil {
		root = s.owner
	}
	if s.self == root {
		return 0
	}
	return s.owner.parentBase().offsetOf(s.self) + s.owner.Offset(root)
}

func (s *shadowBlot) Clone() (Blot, error) {
	return s.scroll.construct(s.def, dom.CloneShallow(s.node))
}

func (s *shadowBlot) Detach() {
	if s.owner != nil {
		s.owner.RemoveChild(s.self)
	}
	s.scroll.unregister(s.node, s.self)
}

func (s *shadowBlot) Remove() {
	dom.Remove(s.node)
	s.self.Detach()
}

func (s *shadowBlot) DeleteAt(index, length int) error {
	target, err := s.self.Isolate(index, length)
	if err != nil {
		return err
	}
	target.Remove()
	return nil
}

// FormatAt оборачивает выделенный участок узлом формата или, для атрибутивного
// формата, узлом по умолчанию своего уровня с этим атрибутом.
func (s *shadowBlot) FormatAt(index, length int, name string, value any) error {
	target, err := s.self.Isolate(index, length)
	if err != nil {
		return err
	}

	if s.scroll.Query(name, scope.Blot) != nil && attributor.IsSet(value) {
		_, err = target.Wrap(name, value)
		return err
	}
	if s.scroll.Query(name, scope.Attribute) != nil {
		wrapper, err := s.scroll.CreateByScope(s.Scope())
		if err != nil {
			return err
		}
		if _, err := target.WrapWith(wrapper); err != nil {
			return err
		}
		if f, ok := wrapper.(Formattable); ok {
			return f.Format(name, value)
		}
	}
	return nil
}

func (s *shadowBlot) InsertAt(index int, value string, def any) error {
	var (
		inserted Blot
		err      error
	)
	if def == nil {
		inserted, err = s.scroll.Create(TextName, value)
	} else {
		inserted, err = s.scroll.Create(value, def)
	}
	if err != nil {
		return err
	}

	ref, err := s.self.Split(index, false)
	if err != nil {
		return err
	}
	if s.owner == nil {
		return apierrors.ErrDetached.WithFormattedMessage(s.Name())
	}
	return s.owner.InsertBefore(inserted, ref)
}

func (s *shadowBlot) Isolate(index, length int) (Blot, error) {
	target, err := s.self.Split(index, false)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, apierrors.ErrIsolateBoundary
	}
	if _, err := target.Split(length, false); err != nil {
		return nil, err
	}
	return target, nil
}

func (s *shadowBlot) Split(index int, _ bool) (Blot, error) {
	if index == 0 {
		return s.self, nil
	}
	return s.self.Next(), nil
}

func (s *shadowBlot) ReplaceWith(name string, value any) (Blot, error) {
	replacement, err := s.scroll.Create(name, value)
	if err != nil {
		return nil, err
	}
	return s.self.ReplaceWithBlot(replacement)
}

func (s *shadowBlot) ReplaceWithBlot(replacement Blot) (Blot, error) {
	if s.owner != nil {
		if err := s.owner.InsertBefore(replacement, s.self.Next()); err != nil {
			return nil, err
		}
		s.self.Remove()
	}
	metrics.Replacements.WithLabelValues(replacement.Name()).Inc()
	return replacement, nil
}

func (s *shadowBlot) Wrap(name string, value any) (Parent, error) {
	wrapper, err := s.scroll.Create(name, value)
	if err != nil {
		return nil, err
	}
	return s.self.WrapWith(wrapper)
}

func (s *shadowBlot) WrapWith(wrapper Blot) (Parent, error) {
	p, ok := wrapper.(Parent)
	if !ok {
		return nil, apierrors.ErrCannotWrap.WithFormattedMessage(wrapper.Name())
	}
	if s.owner != nil {
		if err := s.owner.InsertBefore(wrapper, s.self.Next()); err != nil {
			return nil, err
		}
	}
	if err := p.AppendChild(s.self); err != nil {
		return nil, err
	}
	return p, nil
}

// wrapRequired помещает узел в обязательный контейнер, если родитель им не является.
func (s *shadowBlot) wrapRequired() error {
	if s.def.RequiredContainer == "" || s.owner == nil || s.owner.Name() == s.def.RequiredContainer {
		return nil
	}
	_, err := s.self.Wrap(s.def.RequiredContainer, nil)
	return err
}

package blot

import (
	"maps"
	"slices"

	"github.com/aisa-it/redactor.go/internal/redactor/attributor"
	"github.com/aisa-it/redactor.go/internal/redactor/dom"
	"github.com/aisa-it/redactor.go/internal/redactor/scope"
	"golang.org/x/net/html"
)

// InlineBlot - строчный узел (жирный, ссылка, span с атрибутами).
type InlineBlot struct {
	parentBlot
	attributes *attributor.Store
}

func newInline(scroll *Scroll, def *Definition, node *html.Node) (*InlineBlot, error) {
	in := &InlineBlot{}
	in.attributes = attributor.NewStore(node, scroll.registry)
	if err := in.initParent(in, scroll, def, node); err != nil {
		return nil, err
	}
	return in, nil
}

func (in *InlineBlot) Attributes() *attributor.Store {
	return in.attributes
}

// Format применяет строчный формат. Снятие собственного формата разворачивает
// узел, перенося его атрибуты на потомков.
func (in *InlineBlot) Format(name string, value any) error {
	if name == in.def.Name && !attributor.IsSet(value) {
		for _, child := range in.Children() {
			target, ok := child.(*InlineBlot)
			if !ok {
				wrapper, err := child.Wrap(DefaultInlineName, true)
				if err != nil {
					return err
				}
				if target, ok = wrapper.(*InlineBlot); !ok {
					continue
				}
			}
			if err := in.attributes.Copy(target); err != nil {
				return err
			}
		}
		return in.Unwrap()
	}

	switch entry := in.scroll.Query(name, scope.Inline).(type) {
	case attributor.Attributor:
		in.attributes.Attribute(entry, value)
	case *Definition:
		if attributor.IsSet(value) && (name != in.def.Name || !formatEqual(in.Formats()[name], value)) {
			_, err := in.ReplaceWith(name, value)
			return err
		}
	}
	return nil
}

func (in *InlineBlot) Formats() map[string]any {
	res := in.attributes.Values()
	if v := ClassifyFormat(in.def, in.node, in.scroll); v != nil {
		res[in.def.Name] = v
	}
	return res
}

func (in *InlineBlot) FormatAt(index, length int, name string, value any) error {
	if _, own := in.Formats()[name]; own || in.scroll.Query(name, scope.Attribute) != nil {
		target, err := in.Isolate(index, length)
		if err != nil {
			return err
		}
		if f, ok := target.(Formattable); ok {
			return f.Format(name, value)
		}
		return nil
	}
	return in.parentBlot.FormatAt(index, length, name, value)
}

// Optimize разворачивает строчный узел без форматов и сливает его с соседом,
// имеющим те же форматы.
func (in *InlineBlot) Optimize(ctx Context) error {
	if err := in.parentBlot.Optimize(ctx); err != nil {
		return err
	}
	if in.owner == nil {
		return nil
	}

	formats := in.Formats()
	if len(formats) == 0 {
		return in.Unwrap()
	}
	next, ok := in.Next().(*InlineBlot)
	if ok && next.def == in.def && maps.EqualFunc(formats, next.Formats(), formatEqual) {
		if err := next.MoveChildren(in, nil); err != nil {
			return err
		}
		next.Remove()
	}
	return nil
}

func (in *InlineBlot) ReplaceWithBlot(replacement Blot) (Blot, error) {
	res, err := in.parentBlot.ReplaceWithBlot(replacement)
	if err != nil {
		return nil, err
	}
	if f, ok := res.(Formattable); ok {
		if err := in.attributes.Copy(f); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (in *InlineBlot) Update(mutations []dom.MutationRecord, ctx Context) error {
	if err := in.parentBlot.Update(mutations, ctx); err != nil {
		return err
	}
	if slices.ContainsFunc(mutations, func(m dom.MutationRecord) bool {
		return m.Target == in.node && m.Type == dom.Attributes
	}) {
		in.attributes.Build()
	}
	return nil
}

// WrapWith переносит атрибуты на строчную обёртку.
func (in *InlineBlot) WrapWith(wrapper Blot) (Parent, error) {
	p, err := in.parentBlot.WrapWith(wrapper)
	if err != nil {
		return nil, err
	}
	if target, ok := p.(*InlineBlot); ok {
		if err := in.attributes.Move(target); err != nil {
			return nil, err
		}
	}
	return p, nil
}

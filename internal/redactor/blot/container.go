package blot

import (
	"slices"

	"github.com/aisa-it/redactor.go/internal/redactor/attributor"
	"github.com/aisa-it/redactor.go/internal/redactor/dom"
	"github.com/aisa-it/redactor.go/internal/redactor/metrics"
	"github.com/aisa-it/redactor.go/internal/redactor/scope"
	"golang.org/x/net/html"
)

// ContainerBlot группирует блоки (например, список). Соседние контейнеры одного
// типа с одинаковым тегом сливаются при оптимизации.
type ContainerBlot struct {
	parentBlot
}

func newContainer(scroll *Scroll, def *Definition, node *html.Node) (*ContainerBlot, error) {
	c := &ContainerBlot{}
	if err := c.initParent(c, scroll, def, node); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *ContainerBlot) DeleteAt(index, length int) error {
	if err := c.parentBlot.DeleteAt(index, length); err != nil {
		return err
	}
	return c.enforceAllowedChildren()
}

func (c *ContainerBlot) FormatAt(index, length int, name string, value any) error {
	if err := c.parentBlot.FormatAt(index, length, name, value); err != nil {
		return err
	}
	return c.enforceAllowedChildren()
}

func (c *ContainerBlot) InsertAt(index int, value string, def any) error {
	if err := c.parentBlot.InsertAt(index, value, def); err != nil {
		return err
	}
	return c.enforceAllowedChildren()
}

func (c *ContainerBlot) Optimize(ctx Context) error {
	return optimizeContainer(&c.parentBlot, ctx)
}

func optimizeContainer(p *parentBlot, ctx Context) error {
	if err := p.Optimize(ctx); err != nil {
		return err
	}
	if len(p.children) == 0 || p.owner == nil {
		return nil
	}
	if next, ok := p.self.Next().(Parent); ok && next.Name() == p.def.Name && dom.TagName(next.DOMNode()) == dom.TagName(p.node) {
		if err := next.MoveChildren(p.asParent(), nil); err != nil {
			return err
		}
		next.Remove()
	}
	return nil
}

// FormattableContainer - контейнер, который принимает форматы от своих блоков:
// атрибутивные форматы и смену варианта (например, нумерованный или маркированный список).
type FormattableContainer struct {
	ContainerBlot
	attributes *attributor.Store
}

func newFormattableContainer(scroll *Scroll, def *Definition, node *html.Node) (*FormattableContainer, error) {
	c := &FormattableContainer{}
	c.attributes = attributor.NewStore(node, scroll.registry)
	if err := c.initParent(c, scroll, def, node); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *FormattableContainer) Attributes() *attributor.Store {
	return c.attributes
}

// Format применяет атрибутивный формат или меняет вариант контейнера.
// Снятие собственного формата контейнером игнорируется.
func (c *FormattableContainer) Format(name string, value any) error {
	switch entry := c.scroll.Query(name, scope.Block).(type) {
	case attributor.Attributor:
		c.attributes.Attribute(entry, value)
	case *Definition:
		if name != c.def.Name || !attributor.IsSet(value) {
			return nil
		}
		if formatEqual(c.Formats()[name], value) {
			return nil
		}
		_, err := c.ReplaceWith(name, value)
		return err
	}
	return nil
}

func (c *FormattableContainer) Formats() map[string]any {
	res := c.attributes.Values()
	if v := ClassifyFormat(c.def, c.node, c.scroll); v != nil {
		res[c.def.Name] = v
	}
	return res
}

func (c *FormattableContainer) ReplaceWithBlot(replacement Blot) (Blot, error) {
	res, err := c.parentBlot.ReplaceWithBlot(replacement)
	if err != nil {
		return nil, err
	}
	if f, ok := res.(Formattable); ok {
		if err := c.attributes.Copy(f); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (c *FormattableContainer) Update(mutations []dom.MutationRecord, ctx Context) error {
	if err := c.parentBlot.Update(mutations, ctx); err != nil {
		return err
	}
	if slices.ContainsFunc(mutations, func(m dom.MutationRecord) bool {
		return m.Target == c.node && m.Type == dom.Attributes
	}) {
		c.attributes.Build()
		metrics.AttributeRebuilds.Inc()
	}
	return nil
}

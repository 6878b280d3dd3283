package blot

import (
	"slices"
	"strconv"
	"strings"

	"github.com/aisa-it/redactor.go/internal/redactor/apierrors"
	"github.com/aisa-it/redactor.go/internal/redactor/attributor"
	"github.com/aisa-it/redactor.go/internal/redactor/dom"
	"github.com/aisa-it/redactor.go/internal/redactor/scope"
	"golang.org/x/net/html"
)

// Kind выбирает реализацию узла, которой обслуживается определение.
type Kind int

const (
	KindScroll Kind = iota + 1
	KindContainer
	KindBlock
	KindInline
	KindEmbed
	KindText
	KindBreak
)

func (k Kind) String() string {
	switch k {
	case KindScroll:
		return "scroll"
	case KindContainer:
		return "container"
	case KindBlock:
		return "block"
	case KindInline:
		return "inline"
	case KindEmbed:
		return "embed"
	case KindText:
		return "text"
	case KindBreak:
		return "break"
	}
	return "unknown"
}

// Names of the default definitions the tree falls back to.
const (
	DefaultBlockName  = "block"
	DefaultInlineName = "inline"
	TextName          = "text"
	ScrollName        = "scroll"
)

// Definition - статическое описание типа узла: имя, теги внешнего представления,
// допустимые потомки и обязательный контейнер.
type Definition struct {
	Name string
	Kind Kind
	// Level переопределяет область действия, заданную Kind (например, блочные вставки).
	Level     scope.Scope
	Tags      []string
	ClassName string

	// RequiredContainer - имя типа, внутри которого узел обязан находиться.
	RequiredContainer string
	DefaultChild      string
	// AllowedChildren содержит имена типов или имена видов: block, inline, container, leaf.
	AllowedChildren []string

	// Formattable позволяет контейнеру принимать форматы, переданные от потомков.
	Formattable bool

	// Classify заменяет стандартную классификацию структурного формата.
	Classify func(def *Definition, node *html.Node, root *Scroll) any
	// Create заменяет стандартное создание элемента по значению.
	Create func(def *Definition, value any) (*html.Node, error)
	// Value читает значение вставки из элемента.
	Value func(node *html.Node) any
}

func (d *Definition) Scope() scope.Scope {
	if d.Level != 0 {
		return d.Level
	}
	switch d.Kind {
	case KindScroll, KindContainer, KindBlock:
		return scope.BlockBlot
	}
	return scope.InlineBlot
}

func (d *Definition) String() string {
	return d.Name
}

func (d *Definition) allowedChildren() []string {
	if d.AllowedChildren != nil {
		return d.AllowedChildren
	}
	switch d.Kind {
	case KindScroll, KindContainer:
		return []string{"block", "container"}
	case KindBlock:
		return []string{"inline", "block", "leaf"}
	case KindInline:
		return []string{"inline", "leaf"}
	}
	return nil
}

// allows сообщает, может ли узел с определением child быть потомком узла d.
// Имя вида "block" покрывает и блочные вставки.
func (d *Definition) allows(child *Definition) bool {
	for _, entry := range d.allowedChildren() {
		if entry == child.Name {
			return true
		}
		switch entry {
		case "block":
			if child.Kind == KindBlock || (child.Kind == KindEmbed && child.Scope() == scope.BlockBlot) {
				return true
			}
		case "inline":
			if child.Kind == KindInline {
				return true
			}
		case "container":
			if child.Kind == KindContainer {
				return true
			}
		case "leaf":
			if child.Kind == KindEmbed || child.Kind == KindText || child.Kind == KindBreak {
				return true
			}
		}
	}
	return false
}

func (d *Definition) createNode(value any) (*html.Node, error) {
	if d.Create != nil {
		return d.Create(d, value)
	}
	if d.Kind == KindText {
		return dom.NewText(attributor.Stringify(value)), nil
	}
	if len(d.Tags) == 0 {
		return nil, apierrors.ErrMissingTagName.WithFormattedMessage(d.Name)
	}

	tag := d.Tags[0]
	if len(d.Tags) > 1 {
		if variant, ok := d.tagForValue(value); ok {
			tag = variant
		}
	}

	node := dom.NewElement(tag)
	if d.ClassName != "" {
		dom.AddClass(node, d.ClassName)
	}
	return node, nil
}

// normalizeValue приводит значение формата к виду, который возвращает
// ClassifyFormat: порядковый номер тега заменяется именем тега.
func (d *Definition) normalizeValue(value any) any {
	if d.Create != nil || len(d.Tags) < 2 {
		return value
	}
	if tag, ok := d.tagForValue(value); ok {
		return tag
	}
	return value
}

// tagForValue выбирает тег по значению: число (или строка из цифр) - порядковый
// номер тега начиная с единицы, строка - имя тега.
func (d *Definition) tagForValue(value any) (string, bool) {
	idx := -1
	switch v := value.(type) {
	case int:
		idx = v
	case string:
		if n, err := strconv.Atoi(v); err == nil && strconv.Itoa(n) == v {
			idx = n
		} else if tag := strings.ToLower(v); slices.Contains(d.Tags, tag) {
			return tag, true
		}
	}
	if idx >= 1 && idx <= len(d.Tags) {
		return d.Tags[idx-1], true
	}
	return "", false
}

func defaultNameFor(k Kind) string {
	switch k {
	case KindBlock:
		return DefaultBlockName
	case KindInline:
		return DefaultInlineName
	}
	return ""
}

// ClassifyFormat определяет структурный формат узла по его элементу:
// элемент с тегом типа по умолчанию формата не имеет, тип с единственным тегом
// сообщает true, тип с несколькими тегами - фактический тег в нижнем регистре.
func ClassifyFormat(def *Definition, node *html.Node, root *Scroll) any {
	if def.Classify != nil {
		return def.Classify(def, node, root)
	}
	tag := dom.TagName(node)
	if name := defaultNameFor(def.Kind); name != "" && root != nil {
		if match := root.registry.Definition(name); match != nil && len(match.Tags) == 1 && tag == match.Tags[0] {
			return nil
		}
	}
	switch {
	case len(def.Tags) == 1:
		return true
	case len(def.Tags) > 1:
		return tag
	}
	return nil
}

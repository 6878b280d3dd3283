package blot

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aisa-it/redactor.go/internal/redactor/apierrors"
	"github.com/aisa-it/redactor.go/internal/redactor/attributor"
	"github.com/aisa-it/redactor.go/internal/redactor/dom"
	"github.com/aisa-it/redactor.go/internal/redactor/scope"
	"golang.org/x/net/html"
)

// Entry - результат поиска формата: *Definition или attributor.Attributor.
type Entry interface {
	Scope() scope.Scope
}

// Registry сопоставляет имена форматов, классы и теги с определениями узлов и
// атрибутивными форматами. Заполняется при старте и далее только читается.
type Registry struct {
	types      map[string]Entry
	attributes map[string]attributor.Attributor
	classes    map[string]*Definition
	tags       map[string]*Definition
}

func NewRegistry() *Registry {
	return &Registry{
		types:      make(map[string]Entry),
		attributes: make(map[string]attributor.Attributor),
		classes:    make(map[string]*Definition),
		tags:       make(map[string]*Definition),
	}
}

// Register добавляет определения узлов и атрибутивные форматы.
func (r *Registry) Register(entries ...Entry) error {
	for _, entry := range entries {
		switch e := entry.(type) {
		case *Definition:
			if err := r.registerDefinition(e); err != nil {
				return err
			}
		case attributor.Attributor:
			r.types[e.AttrName()] = e
			r.attributes[e.KeyName()] = e
		default:
			return apierrors.ErrInvalidDefinition.WithFormattedMessage(fmt.Sprintf("%T", entry))
		}
	}
	return nil
}

func (r *Registry) registerDefinition(def *Definition) error {
	if def == nil || def.Name == "" || def.Name == "abstract" {
		return apierrors.ErrInvalidDefinition.WithFormattedMessage("blot definition without name")
	}
	if def.Kind == 0 {
		return apierrors.ErrInvalidDefinition.WithFormattedMessage(def.Name + ": kind is required")
	}
	if def.Kind != KindText && len(def.Tags) == 0 && def.Create == nil {
		return apierrors.ErrMissingTagName.WithFormattedMessage(def.Name)
	}

	r.types[def.Name] = def

	if def.ClassName != "" {
		r.classes[def.ClassName] = def
	}
	for i, tag := range def.Tags {
		tag = strings.ToLower(tag)
		def.Tags[i] = tag
		if r.tags[tag] == nil || def.ClassName == "" {
			r.tags[tag] = def
		}
	}
	return nil
}

func matches(entry Entry, s scope.Scope) Entry {
	if entry == nil || !s.Matches(entry.Scope()) {
		return nil
	}
	return entry
}

// Query ищет формат по имени (имя типа узла, имя атрибутивного формата или
// имя атрибута во внешнем представлении) с учётом области действия.
func (r *Registry) Query(name string, s scope.Scope) Entry {
	entry, ok := r.types[name]
	if !ok {
		if attr, exist := r.attributes[name]; exist {
			entry = attr
		}
	}
	return matches(entry, s)
}

// QueryNode ищет определение узла для элемента: сначала по классам, затем по тегу.
func (r *Registry) QueryNode(node *html.Node, s scope.Scope) Entry {
	if node == nil {
		return nil
	}
	if node.Type == html.TextNode {
		return matches(r.types[TextName], s)
	}
	if node.Type != html.ElementNode {
		return nil
	}

	var match *Definition
	for _, class := range dom.Classes(node) {
		if def, ok := r.classes[class]; ok {
			match = def
			break
		}
	}
	if match == nil {
		match = r.tags[dom.TagName(node)]
	}
	if match == nil {
		return nil
	}
	return matches(match, s)
}

// QueryScope возвращает определение по умолчанию для уровня области действия.
func (r *Registry) QueryScope(s scope.Scope) Entry {
	var entry Entry
	switch {
	case s&scope.Level&scope.Block != 0:
		entry = r.types[DefaultBlockName]
	case s&scope.Level&scope.Inline != 0:
		entry = r.types[DefaultInlineName]
	}
	return matches(entry, s)
}

// Definition возвращает определение узла по имени или nil.
func (r *Registry) Definition(name string) *Definition {
	def, _ := r.types[name].(*Definition)
	return def
}

// LookupAttributor реализует attributor.Resolver.
func (r *Registry) LookupAttributor(key string) (attributor.Attributor, bool) {
	attr, ok := r.Query(key, scope.Attribute).(attributor.Attributor)
	return attr, ok
}

// Definitions возвращает все зарегистрированные определения узлов, упорядоченные по имени.
func (r *Registry) Definitions() []*Definition {
	var res []*Definition
	for _, name := range slices.Sorted(maps.Keys(r.types)) {
		if def, ok := r.types[name].(*Definition); ok {
			res = append(res, def)
		}
	}
	return res
}

// Attributors возвращает все атрибутивные форматы, упорядоченные по имени.
func (r *Registry) Attributors() []attributor.Attributor {
	var res []attributor.Attributor
	for _, name := range slices.Sorted(maps.Keys(r.types)) {
		if attr, ok := r.types[name].(attributor.Attributor); ok {
			res = append(res, attr)
		}
	}
	return res
}

// RequiredContainers вычисляет цепочку обязательных контейнеров типа name, от
// ближайшего к самому внешнему. Цепочка обрывается на незарегистрированном контейнере.
func (r *Registry) RequiredContainers(name string) ([]string, error) {
	def := r.Definition(name)
	if def == nil {
		return nil, apierrors.ErrUnknownBlot.WithFormattedMessage(name)
	}

	var chain []string
	seen := map[string]bool{name: true}
	for next := def.RequiredContainer; next != ""; {
		if seen[next] {
			return nil, apierrors.ErrRequiredContainerCycle.WithFormattedMessage(next)
		}
		seen[next] = true
		chain = append(chain, next)

		container := r.Definition(next)
		if container == nil {
			break
		}
		next = container.RequiredContainer
	}
	return chain, nil
}

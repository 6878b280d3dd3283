package attributor

import (
	"maps"
	"slices"

	"golang.org/x/net/html"
)

// Resolver находит атрибутивный формат по имени атрибута, префиксу класса или
// свойству стиля. Реализуется реестром форматов.
type Resolver interface {
	LookupAttributor(key string) (Attributor, bool)
}

// Formatter - получатель форматов при копировании и переносе хранилища.
type Formatter interface {
	Format(name string, value any) error
}

// Store - хранилище атрибутивных форматов одного узла. Значения всегда читаются
// из внешнего представления в момент вызова, само хранилище помнит только
// какие дескрипторы применены.
type Store struct {
	node       *html.Node
	resolver   Resolver
	attributes map[string]Attributor
}

// NewStore создает хранилище для элемента и сразу строит его по текущим атрибутам.
func NewStore(node *html.Node, resolver Resolver) *Store {
	s := &Store{
		node:     node,
		resolver: resolver,
	}
	s.Build()
	return s
}

func (s *Store) Node() *html.Node {
	return s.node
}

// Attribute применяет формат; пустое значение снимает его.
func (s *Store) Attribute(attr Attributor, value any) {
	if !IsSet(value) {
		attr.Remove(s.node)
		delete(s.attributes, attr.AttrName())
		return
	}
	if attr.Add(s.node, value) {
		if attr.Value(s.node) != "" {
			s.attributes[attr.AttrName()] = attr
		} else {
			delete(s.attributes, attr.AttrName())
		}
	}
}

// Build пересобирает набор применённых форматов по атрибутам, классам и стилям элемента.
func (s *Store) Build() {
	s.attributes = make(map[string]Attributor)
	if s.node == nil || s.resolver == nil {
		return
	}

	keys := Keys(s.node)
	keys = append(keys, ClassKeys(s.node)...)
	keys = append(keys, StyleKeys(s.node)...)

	for _, key := range keys {
		attr, ok := s.resolver.LookupAttributor(key)
		if !ok {
			continue
		}
		if attr.Value(s.node) == "" {
			continue
		}
		s.attributes[attr.AttrName()] = attr
	}
}

// Copy применяет все текущие значения к target через его Format.
func (s *Store) Copy(target Formatter) error {
	for _, name := range s.names() {
		value := s.attributes[name].Value(s.node)
		if err := target.Format(name, value); err != nil {
			return err
		}
	}
	return nil
}

// Move копирует форматы в target и снимает их с исходного элемента.
func (s *Store) Move(target Formatter) error {
	if err := s.Copy(target); err != nil {
		return err
	}
	for _, name := range s.names() {
		s.attributes[name].Remove(s.node)
	}
	s.attributes = make(map[string]Attributor)
	return nil
}

// Values возвращает текущие значения применённых форматов.
func (s *Store) Values() map[string]any {
	res := make(map[string]any, len(s.attributes))
	for name, attr := range s.attributes {
		if value := attr.Value(s.node); value != "" {
			res[name] = value
		}
	}
	return res
}

func (s *Store) Len() int {
	return len(s.attributes)
}

func (s *Store) names() []string {
	return slices.Sorted(maps.Keys(s.attributes))
}

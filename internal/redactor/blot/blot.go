// Пакет реализует дерево документа: узлы (blots), каждый из которых владеет
// элементом внешнего представления (golang.org/x/net/html) и поддерживает его
// согласованным с логической моделью.
//
// Основные возможности:
//   - Реестр определений узлов и атрибутивных форматов с поиском по имени, классу и тегу.
//   - Блочный узел: чтение и применение форматов, делегирование форматов обязательному
//     контейнеру, вставка структурного содержимого с разделением блока.
//   - Строчные узлы, текст, вставки, контейнеры и корневой узел документа.
//   - Согласование дерева с пакетами мутаций внешнего представления и оптимизация
//     структуры (слияние, развёртывание, обязательные контейнеры).
package blot

import (
	"github.com/aisa-it/redactor.go/internal/redactor/dom"
	"github.com/aisa-it/redactor.go/internal/redactor/scope"
	"golang.org/x/net/html"
)

// Blot - узел дерева документа.
type Blot interface {
	Definition() *Definition
	Name() string
	Scope() scope.Scope
	DOMNode() *html.Node
	Scroll() *Scroll
	Parent() Parent
	Prev() Blot
	Next() Blot

	Length() int
	// Offset возвращает смещение узла относительно root (по умолчанию - родителя).
	Offset(root Blot) int

	Attach()
	Detach()
	Remove()
	Clone() (Blot, error)

	DeleteAt(index, length int) error
	FormatAt(index, length int, name string, value any) error
	// InsertAt вставляет текст value (def == nil) или узел типа value со значением def.
	InsertAt(index int, value string, def any) error

	Isolate(index, length int) (Blot, error)
	Split(index int, force bool) (Blot, error)
	ReplaceWith(name string, value any) (Blot, error)
	ReplaceWithBlot(replacement Blot) (Blot, error)
	Wrap(name string, value any) (Parent, error)
	WrapWith(wrapper Blot) (Parent, error)

	Optimize(ctx Context) error
	Update(mutations []dom.MutationRecord, ctx Context) error

	base() *shadowBlot
}

// Parent - узел, владеющий упорядоченным списком потомков.
type Parent interface {
	Blot
	Children() []Blot
	AppendChild(child Blot) error
	InsertBefore(child, ref Blot) error
	RemoveChild(child Blot)
	MoveChildren(target Parent, ref Blot) error
	SplitAfter(child Blot) (Parent, error)
	Unwrap() error
	Descendant(match func(Blot) bool, index int) (Blot, int)
	Descendants(match func(Blot) bool) []Blot

	parentBase() *parentBlot
}

// Formattable - узел, который сам принимает форматы и сообщает их.
type Formattable interface {
	Blot
	Format(name string, value any) error
	Formats() map[string]any
}

// Leaf - узел без потомков, имеющий значение.
type Leaf interface {
	Blot
	Value() any
}

// Context передаётся через Update и Optimize одной операции.
type Context map[string]any

// FormatRequest описывает форматирование диапазона документа до его применения.
type FormatRequest struct {
	Index  int
	Length int
	Name   string
	Value  any
	Lines  []LineInfo
}

// LineInfo - блок, попадающий в диапазон форматирования.
type LineInfo struct {
	Blot    string
	Formats map[string]any
}

// FormatHook вызывается перед применением форматирования диапазона и может его запретить.
type FormatHook interface {
	BeforeFormat(req FormatRequest) error
}

// Пакет описывает атрибутивные форматы: пары ключ-значение, которые накладываются на
// элемент внешнего представления, не меняя его структурного типа.
//
// Основные возможности:
//   - Attribute: формат хранится в обычном HTML-атрибуте.
//   - Class: формат хранится в классе вида "<ключ>-<значение>".
//   - Style: формат хранится в inline-стиле.
//   - Ограничение допустимых значений через whitelist.
//   - Store: хранилище форматов узла, синхронизированное с атрибутами элемента.
package attributor

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aisa-it/redactor.go/internal/redactor/dom"
	"github.com/aisa-it/redactor.go/internal/redactor/scope"
	"golang.org/x/net/html"
)

// Attributor - дескриптор атрибутивного формата.
type Attributor interface {
	// AttrName - имя формата, под которым он регистрируется и запрашивается.
	AttrName() string
	// KeyName - имя атрибута, префикс класса или свойство стиля во внешнем представлении.
	KeyName() string
	Scope() scope.Scope
	Whitelist() []string

	CanAdd(node *html.Node, value any) bool
	Add(node *html.Node, value any) bool
	Remove(node *html.Node)
	Value(node *html.Node) string
}

type Options struct {
	// Scope задает уровень (блочный или строчный); тип всегда атрибутивный.
	Scope     scope.Scope
	Whitelist []string
}

// Attribute хранит значение формата в HTML-атрибуте KeyName.
type Attribute struct {
	attrName  string
	keyName   string
	scope     scope.Scope
	whitelist []string
}

func NewAttribute(attrName, keyName string, opts Options) *Attribute {
	attributeBit := scope.Type & scope.Attribute
	s := scope.Attribute
	if opts.Scope != 0 {
		s = (opts.Scope & scope.Level) | attributeBit
	}
	return &Attribute{
		attrName:  attrName,
		keyName:   keyName,
		scope:     s,
		whitelist: opts.Whitelist,
	}
}

func (a *Attribute) AttrName() string     { return a.attrName }
func (a *Attribute) KeyName() string      { return a.keyName }
func (a *Attribute) Scope() scope.Scope   { return a.scope }
func (a *Attribute) Whitelist() []string  { return a.whitelist }
func (a *Attribute) String() string       { return fmt.Sprintf("attribute(%s)", a.attrName) }
func (a *Attribute) allowed(v string) bool { return a.whitelist == nil || slices.Contains(a.whitelist, v) }

func (a *Attribute) CanAdd(_ *html.Node, value any) bool {
	if a.whitelist == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return a.allowed(strings.NewReplacer(`"`, "", "'", "").Replace(s))
	}
	return a.allowed(Stringify(value))
}

func (a *Attribute) Add(node *html.Node, value any) bool {
	if !a.CanAdd(node, value) {
		return false
	}
	dom.SetAttr(node, a.keyName, Stringify(value))
	return true
}

func (a *Attribute) Remove(node *html.Node) {
	dom.RemoveAttr(node, a.keyName)
}

func (a *Attribute) Value(node *html.Node) string {
	value, _ := dom.GetAttr(node, a.keyName)
	if value != "" && a.CanAdd(node, value) {
		return value
	}
	return ""
}

// Keys возвращает имена всех атрибутов элемента.
func Keys(node *html.Node) []string {
	return dom.AttrKeys(node)
}

// Stringify приводит значение формата к строковому виду внешнего представления.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(value)
}

// IsSet повторяет правила истинности значений формата: nil, false, пустая строка
// и ноль означают отсутствие формата.
func IsSet(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	}
	return true
}

package attributor

import (
	"github.com/aisa-it/redactor.go/internal/redactor/dom"
	"golang.org/x/net/html"
)

// Style хранит значение формата в inline-стиле KeyName.
type Style struct {
	*Attribute
}

func NewStyle(attrName, keyName string, opts Options) *Style {
	return &Style{Attribute: NewAttribute(attrName, keyName, opts)}
}

func (s *Style) Add(node *html.Node, value any) bool {
	if !s.CanAdd(node, value) {
		return false
	}
	dom.SetStyle(node, s.keyName, Stringify(value))
	return true
}

func (s *Style) Remove(node *html.Node) {
	dom.SetStyle(node, s.keyName, "")
}

func (s *Style) Value(node *html.Node) string {
	value := dom.Style(node, s.keyName)
	if s.CanAdd(node, value) {
		return value
	}
	return ""
}

// StyleKeys возвращает имена свойств inline-стиля элемента.
func StyleKeys(node *html.Node) []string {
	var keys []string
	for _, style := range dom.Styles(node) {
		keys = append(keys, style.Key)
	}
	return keys
}

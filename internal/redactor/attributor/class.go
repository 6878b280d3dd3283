package attributor

import (
	"strings"

	"github.com/aisa-it/redactor.go/internal/redactor/dom"
	"golang.org/x/net/html"
)

// Class хранит значение формата в классе "<KeyName>-<значение>".
type Class struct {
	*Attribute
}

func NewClass(attrName, keyName string, opts Options) *Class {
	return &Class{Attribute: NewAttribute(attrName, keyName, opts)}
}

func (c *Class) matching(node *html.Node) []string {
	var res []string
	for _, name := range dom.Classes(node) {
		if strings.HasPrefix(name, c.keyName+"-") {
			res = append(res, name)
		}
	}
	return res
}

func (c *Class) Add(node *html.Node, value any) bool {
	if !c.CanAdd(node, value) {
		return false
	}
	c.Remove(node)
	dom.AddClass(node, c.keyName+"-"+Stringify(value))
	return true
}

func (c *Class) Remove(node *html.Node) {
	for _, name := range c.matching(node) {
		dom.RemoveClass(node, name)
	}
}

func (c *Class) Value(node *html.Node) string {
	matches := c.matching(node)
	if len(matches) == 0 {
		return ""
	}
	value := strings.TrimPrefix(matches[0], c.keyName+"-")
	if c.CanAdd(node, value) {
		return value
	}
	return ""
}

// ClassKeys возвращает префиксы классов элемента: для "ql-align-right" это "ql-align".
func ClassKeys(node *html.Node) []string {
	var keys []string
	for _, name := range dom.Classes(node) {
		idx := strings.LastIndex(name, "-")
		if idx <= 0 {
			continue
		}
		keys = append(keys, name[:idx])
	}
	return keys
}

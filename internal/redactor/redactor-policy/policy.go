// Строит политику очистки HTML по реестру форматов: пропускаются только теги зарегистрированных узлов
// и только те классы, стили и атрибуты, которые понимают зарегистрированные атрибутивные форматы.
//
// Основные возможности:
//   - Разрешение тегов всех блочных, строчных и встраиваемых определений реестра.
//   - Ограничение классов префиксами и белыми списками атрибутивных форматов.
//   - Ограничение значений стилей с помощью регулярных выражений (цвета, белые списки).
//   - Разрешение ссылок и изображений со стандартными схемами URL.
//   - Преобразование документа в простой текст с сохранением адресов ссылок.
package policy

import (
	"container/list"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/aisa-it/redactor.go/internal/redactor/attributor"
	"github.com/aisa-it/redactor.go/internal/redactor/blot"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var StripTagsPolicy *bluemonday.Policy = bluemonday.StrictPolicy()

var (
	colorRegexp  = regexp.MustCompile(`^(#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})|rgba?\((\d+),\s*(\d+),\s*(\d+)(,\s*[\d.]+)?\)|[a-zA-Z]+)$`)
	anyValRegexp = regexp.MustCompile(`^[\w\-.#%(), ]+$`)
	targetRegexp = regexp.MustCompile(`^_blank$`)
	relRegexp    = regexp.MustCompile(`^(noopener|noreferrer|nofollow)( (noopener|noreferrer|nofollow))*$`)
)

// NewPolicy возвращает политику, допускающую ровно то, что может построить дерево на реестре reg.
func NewPolicy(reg *blot.Registry) *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowStandardURLs()

	var blockTags, inlineTags []string
	for _, def := range reg.Definitions() {
		switch def.Kind {
		case blot.KindScroll, blot.KindText:
			continue
		case blot.KindInline, blot.KindEmbed, blot.KindBreak:
			inlineTags = append(inlineTags, def.Tags...)
		default:
			blockTags = append(blockTags, def.Tags...)
		}
	}
	p.AllowElements(blockTags...)
	p.AllowElements(inlineTags...)

	if slices.Contains(inlineTags, "a") {
		p.AllowAttrs("href").OnElements("a")
		p.AllowAttrs("target").Matching(targetRegexp).OnElements("a")
		p.AllowAttrs("rel").Matching(relRegexp).OnElements("a")
	}
	if slices.Contains(inlineTags, "img") {
		p.AllowImages()
	}

	var blockClasses, inlineClasses []string
	for _, attr := range reg.Attributors() {
		isBlock := attr.Scope().IsBlock()
		tags := inlineTags
		if isBlock {
			tags = blockTags
		}
		if len(tags) == 0 {
			continue
		}

		switch a := attr.(type) {
		case *attributor.Class:
			if isBlock {
				blockClasses = append(blockClasses, classPattern(a))
			} else {
				inlineClasses = append(inlineClasses, classPattern(a))
			}
		case *attributor.Style:
			p.AllowAttrs("style").OnElements(tags...)
			p.AllowStyles(a.KeyName()).Matching(valueRegexp(a)).OnElements(tags...)
		default:
			p.AllowAttrs(a.KeyName()).Matching(valueRegexp(a)).OnElements(tags...)
		}
	}
	if len(blockClasses) > 0 {
		p.AllowAttrs("class").Matching(classListRegexp(blockClasses)).OnElements(blockTags...)
	}
	if len(inlineClasses) > 0 {
		p.AllowAttrs("class").Matching(classListRegexp(inlineClasses)).OnElements(inlineTags...)
	}

	return p
}

// Sanitize очищает HTML политикой реестра reg.
func Sanitize(reg *blot.Registry, htmlContent string) string {
	return NewPolicy(reg).Sanitize(htmlContent)
}

func classPattern(c *attributor.Class) string {
	values := `[\w-]+`
	if wl := c.Whitelist(); len(wl) > 0 {
		values = "(?:" + quoteAll(wl) + ")"
	}
	return regexp.QuoteMeta(c.KeyName()) + "-" + values
}

// classListRegexp допускает список классов через пробел, каждый из которых подходит под один из шаблонов.
func classListRegexp(patterns []string) *regexp.Regexp {
	one := "(?:" + strings.Join(patterns, "|") + ")"
	return regexp.MustCompile(`^` + one + `(?:\s+` + one + `)*$`)
}

func valueRegexp(a attributor.Attributor) *regexp.Regexp {
	if wl := a.Whitelist(); len(wl) > 0 {
		return regexp.MustCompile("^(?:" + quoteAll(wl) + ")$")
	}
	if strings.Contains(a.KeyName(), "color") {
		return colorRegexp
	}
	return anyValRegexp
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = regexp.QuoteMeta(v)
	}
	return strings.Join(quoted, "|")
}

// PlainText возвращает текст документа без разметки; ссылки заменяются на "текст <адрес>".
func PlainText(htmlContent string) string {
	if htmlContent == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return StripTagsPolicy.Sanitize(htmlContent)
	}

	queue := list.New()
	queue.PushBack(doc)

	for queue.Len() > 0 {
		element := queue.Front()
		queue.Remove(element)
		node := element.Value.(*html.Node)

		var next *html.Node

		for child := node.FirstChild; child != nil; child = next {
			next = child.NextSibling
			if child.Type == html.ElementNode && child.Data == "a" && linkHref(child) != "" {
				processLinkNode(child)
			} else if child.Type == html.ElementNode && isLineBreak(child) {
				child.Parent.InsertBefore(&html.Node{Type: html.TextNode, Data: "\n"}, child.NextSibling)
				if child.FirstChild != nil {
					queue.PushBack(child)
				}
			} else if child.FirstChild != nil {
				queue.PushBack(child)
			}
		}
	}

	var result strings.Builder
	html.Render(&result, doc)

	return strings.TrimSpace(html.UnescapeString(StripTagsPolicy.Sanitize(result.String())))
}

func isLineBreak(node *html.Node) bool {
	switch node.Data {
	case "p", "li", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre", "tr", "hr":
		return true
	}
	return false
}

func linkHref(node *html.Node) string {
	for _, attr := range node.Attr {
		if attr.Key == "href" {
			return attr.Val
		}
	}
	return ""
}

func processLinkNode(node *html.Node) {
	replacementText := fmt.Sprintf("%s <%s>", nodeText(node), linkHref(node))
	textNode := &html.Node{
		Type: html.TextNode,
		Data: replacementText,
	}

	node.Parent.InsertBefore(textNode, node)
	node.Parent.RemoveChild(node)
}

func nodeText(node *html.Node) string {
	if node.Type == html.TextNode {
		return node.Data
	}
	var sb strings.Builder
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
	}
	return sb.String()
}

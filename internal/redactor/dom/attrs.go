package dom

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
)

func GetAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// GetAttrValue возвращает значение атрибута или пустую строку.
func GetAttrValue(n *html.Node, key string) string {
	val, _ := GetAttr(n, key)
	return val
}

func HasAttr(n *html.Node, key string) bool {
	return slices.ContainsFunc(n.Attr, func(attr html.Attribute) bool {
		return attr.Key == key
	})
}

// AttrKeys возвращает имена всех атрибутов элемента в порядке следования.
func AttrKeys(n *html.Node) []string {
	keys := make([]string, 0, len(n.Attr))
	for _, attr := range n.Attr {
		keys = append(keys, attr.Key)
	}
	return keys
}

func SetAttr(n *html.Node, key, val string) {
	old, exist := GetAttr(n, key)
	if exist && old == val {
		return
	}
	if exist {
		for i := range n.Attr {
			if n.Attr[i].Key == key {
				n.Attr[i].Val = val
			}
		}
	} else {
		n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
	}
	record(MutationRecord{
		Type:          Attributes,
		Target:        n,
		AttributeName: key,
		OldValue:      old,
	})
}

func RemoveAttr(n *html.Node, key string) {
	old, exist := GetAttr(n, key)
	if !exist {
		return
	}
	n.Attr = slices.DeleteFunc(n.Attr, func(attr html.Attribute) bool {
		return attr.Key == key
	})
	record(MutationRecord{
		Type:          Attributes,
		Target:        n,
		AttributeName: key,
		OldValue:      old,
	})
}

// Classes возвращает список классов элемента.
func Classes(n *html.Node) []string {
	return strings.Fields(GetAttrValue(n, "class"))
}

func HasClass(n *html.Node, class string) bool {
	return slices.Contains(Classes(n), class)
}

func AddClass(n *html.Node, class string) {
	classes := Classes(n)
	if slices.Contains(classes, class) {
		return
	}
	SetAttr(n, "class", strings.Join(append(classes, class), " "))
}

// RemoveClass удаляет класс; пустой атрибут class удаляется целиком.
func RemoveClass(n *html.Node, class string) {
	classes := Classes(n)
	if !slices.Contains(classes, class) {
		return
	}
	classes = slices.DeleteFunc(classes, func(c string) bool { return c == class })
	if len(classes) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(classes, " "))
}

// ParseStyles разбирает значение атрибута style в список пар ключ-значение.
// Пустые и некорректные объявления пропускаются.
func ParseStyles(raw string) []html.Attribute {
	var res []html.Attribute
	for _, styleRaw := range strings.Split(raw, ";") {
		key, val, ok := strings.Cut(styleRaw, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		res = append(res, html.Attribute{
			Key: key,
			Val: strings.TrimSpace(val),
		})
	}
	return res
}

func formatStyles(styles []html.Attribute) string {
	parts := make([]string, 0, len(styles))
	for _, style := range styles {
		parts = append(parts, style.Key+": "+style.Val+";")
	}
	return strings.Join(parts, " ")
}

// Styles возвращает inline-стили элемента.
func Styles(n *html.Node) []html.Attribute {
	return ParseStyles(GetAttrValue(n, "style"))
}

func Style(n *html.Node, key string) string {
	for _, style := range Styles(n) {
		if style.Key == key {
			return style.Val
		}
	}
	return ""
}

// SetStyle задает inline-стиль. Пустое значение удаляет объявление, а пустой
// атрибут style удаляется целиком.
func SetStyle(n *html.Node, key, val string) {
	key = strings.ToLower(key)
	styles := slices.DeleteFunc(Styles(n), func(style html.Attribute) bool {
		return style.Key == key
	})
	if val != "" {
		styles = append(styles, html.Attribute{Key: key, Val: val})
	}
	if len(styles) == 0 {
		RemoveAttr(n, "style")
		return
	}
	SetAttr(n, "style", formatStyles(styles))
}

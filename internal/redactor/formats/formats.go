// Пакет содержит стандартный набор форматов редактора: блочные и строчные узлы,
// контейнеры, вставки и атрибутивные форматы, а также реестр с ними.
//
// Основные возможности:
//   - Блоки: абзац, заголовки h1-h6, цитата, блок кода, элемент списка, ячейка таблицы.
//   - Контейнеры: списки (нумерованный и маркированный), таблицы.
//   - Строчные форматы: жирный, курсив, подчеркивание, зачеркивание, код, ссылка.
//   - Вставки: изображение, горизонтальная линия, перевод строки.
//   - Атрибутивные форматы: выравнивание, направление, отступ, язык кода, цвет, фон,
//     шрифт и размер.
package formats

import (
	"strconv"

	"github.com/aisa-it/redactor.go/internal/redactor/attributor"
	"github.com/aisa-it/redactor.go/internal/redactor/blot"
	"github.com/aisa-it/redactor.go/internal/redactor/dom"
	"github.com/aisa-it/redactor.go/internal/redactor/scope"
	"golang.org/x/net/html"
)

// Format names.
const (
	Scroll     = blot.ScrollName
	Block      = blot.DefaultBlockName
	Inline     = blot.DefaultInlineName
	Text       = blot.TextName
	Break      = "break"
	Header     = "header"
	Blockquote = "blockquote"
	CodeBlock  = "code-block"
	List       = "list"
	ListItem   = "list-item"
	Table      = "table"
	TableBody  = "table-body"
	TableRow   = "table-row"
	TableCell  = "table-cell"
	Divider    = "divider"
	Image      = "image"
	Bold       = "bold"
	Italic     = "italic"
	Underline  = "underline"
	Strike     = "strike"
	Code       = "code"
	Link       = "link"

	Align      = "align"
	Direction  = "direction"
	Indent     = "indent"
	Language   = "language"
	Color      = "color"
	Background = "background"
	Font       = "font"
	Size       = "size"
)

// List variants.
const (
	ListOrdered = "ordered"
	ListBullet  = "bullet"
)

// Definitions возвращает новые определения узлов стандартного набора.
func Definitions() []*blot.Definition {
	return []*blot.Definition{
		{Name: Scroll, Kind: blot.KindScroll, Tags: []string{"div"}, DefaultChild: Block},
		{Name: Block, Kind: blot.KindBlock, Tags: []string{"p"}, DefaultChild: Break},
		{Name: Break, Kind: blot.KindBreak, Tags: []string{"br"}},
		{Name: Text, Kind: blot.KindText},
		{Name: Inline, Kind: blot.KindInline, Tags: []string{"span"}},

		{Name: Header, Kind: blot.KindBlock, Tags: []string{"h1", "h2", "h3", "h4", "h5", "h6"}, DefaultChild: Break},
		{Name: Blockquote, Kind: blot.KindBlock, Tags: []string{"blockquote"}, DefaultChild: Break},
		{Name: CodeBlock, Kind: blot.KindBlock, Tags: []string{"pre"}, DefaultChild: Break, AllowedChildren: []string{Text, Break}},

		{
			Name:            List,
			Kind:            blot.KindContainer,
			Tags:            []string{"ol", "ul"},
			Formattable:     true,
			AllowedChildren: []string{ListItem},
			Create:          createList,
			Classify:        classifyList,
		},
		{Name: ListItem, Kind: blot.KindBlock, Tags: []string{"li"}, RequiredContainer: List, DefaultChild: Break},

		{Name: Table, Kind: blot.KindContainer, Tags: []string{"table"}, AllowedChildren: []string{TableBody}},
		{Name: TableBody, Kind: blot.KindContainer, Tags: []string{"tbody"}, RequiredContainer: Table, AllowedChildren: []string{TableRow}},
		{Name: TableRow, Kind: blot.KindContainer, Tags: []string{"tr"}, RequiredContainer: TableBody, AllowedChildren: []string{TableCell}},
		{Name: TableCell, Kind: blot.KindBlock, Tags: []string{"td"}, RequiredContainer: TableRow, DefaultChild: Break},

		{Name: Divider, Kind: blot.KindEmbed, Level: scope.BlockBlot, Tags: []string{"hr"}},
		{Name: Image, Kind: blot.KindEmbed, Tags: []string{"img"}, Create: createImage, Value: imageValue},

		{Name: Bold, Kind: blot.KindInline, Tags: []string{"strong", "b"}, Classify: always},
		{Name: Italic, Kind: blot.KindInline, Tags: []string{"em", "i"}, Classify: always},
		{Name: Underline, Kind: blot.KindInline, Tags: []string{"u"}},
		{Name: Strike, Kind: blot.KindInline, Tags: []string{"s"}},
		{Name: Code, Kind: blot.KindInline, Tags: []string{"code"}},
		{Name: Link, Kind: blot.KindInline, Tags: []string{"a"}, Create: createLink, Classify: classifyLink},
	}
}

// Attributors возвращает атрибутивные форматы стандартного набора.
func Attributors() []attributor.Attributor {
	block := attributor.Options{Scope: scope.Block}
	inline := attributor.Options{Scope: scope.Inline}

	indents := make([]string, 0, 8)
	for i := 1; i <= 8; i++ {
		indents = append(indents, strconv.Itoa(i))
	}

	return []attributor.Attributor{
		attributor.NewClass(Align, "ql-align", attributor.Options{Scope: scope.Block, Whitelist: []string{"right", "center", "justify"}}),
		attributor.NewClass(Direction, "ql-direction", attributor.Options{Scope: scope.Block, Whitelist: []string{"rtl"}}),
		attributor.NewClass(Indent, "ql-indent", attributor.Options{Scope: scope.Block, Whitelist: indents}),
		attributor.NewAttribute(Language, "data-language", block),

		attributor.NewStyle(Color, "color", inline),
		attributor.NewStyle(Background, "background-color", inline),
		attributor.NewClass(Font, "ql-font", attributor.Options{Scope: scope.Inline, Whitelist: []string{"serif", "monospace"}}),
		attributor.NewClass(Size, "ql-size", attributor.Options{Scope: scope.Inline, Whitelist: []string{"small", "large", "huge"}}),
	}
}

// NewRegistry возвращает реестр со стандартным набором форматов.
func NewRegistry() (*blot.Registry, error) {
	r := blot.NewRegistry()
	for _, def := range Definitions() {
		if err := r.Register(def); err != nil {
			return nil, err
		}
	}
	for _, attr := range Attributors() {
		if err := r.Register(attr); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func always(*blot.Definition, *html.Node, *blot.Scroll) any {
	return true
}

func createList(_ *blot.Definition, value any) (*html.Node, error) {
	switch attributor.Stringify(value) {
	case ListBullet, "ul":
		return dom.NewElement("ul"), nil
	}
	return dom.NewElement("ol"), nil
}

func classifyList(_ *blot.Definition, node *html.Node, _ *blot.Scroll) any {
	if dom.TagName(node) == "ul" {
		return ListBullet
	}
	return ListOrdered
}

func createLink(_ *blot.Definition, value any) (*html.Node, error) {
	node := dom.NewElement("a")
	href := attributor.Stringify(value)
	if href == "" || href == "true" {
		href = "about:blank"
	}
	dom.SetAttr(node, "href", href)
	dom.SetAttr(node, "rel", "noopener noreferrer")
	dom.SetAttr(node, "target", "_blank")
	return node, nil
}

func classifyLink(_ *blot.Definition, node *html.Node, _ *blot.Scroll) any {
	if href := dom.GetAttrValue(node, "href"); href != "" {
		return href
	}
	return nil
}

func createImage(_ *blot.Definition, value any) (*html.Node, error) {
	node := dom.NewElement("img")
	if src := attributor.Stringify(value); src != "" && src != "true" {
		dom.SetAttr(node, "src", src)
	}
	return node, nil
}

func imageValue(node *html.Node) any {
	if src := dom.GetAttrValue(node, "src"); src != "" {
		return src
	}
	return nil
}

package blot

import (
	"slices"
	"unicode/utf8"

	"github.com/aisa-it/redactor.go/internal/redactor/dom"
	"golang.org/x/net/html"
)

// TextBlot - текстовый узел. Длина считается в рунах.
type TextBlot struct {
	shadowBlot
	text string
}

func newText(scroll *Scroll, def *Definition, node *html.Node) *TextBlot {
	t := &TextBlot{text: node.Data}
	t.init(t, scroll, def, node)
	return t
}

func (t *TextBlot) Length() int {
	return utf8.RuneCountInString(t.text)
}

func (t *TextBlot) Value() any {
	return t.text
}

func (t *TextBlot) Text() string {
	return t.text
}

func (t *TextBlot) DeleteAt(index, length int) error {
	runes := []rune(t.text)
	index = max(0, min(index, len(runes)))
	end := max(index, min(index+length, len(runes)))
	t.text = string(slices.Delete(runes, index, end))
	dom.SetText(t.node, t.text)
	return nil
}

func (t *TextBlot) InsertAt(index int, value string, def any) error {
	if def != nil {
		return t.shadowBlot.InsertAt(index, value, def)
	}
	runes := []rune(t.text)
	index = max(0, min(index, len(runes)))
	t.text = string(runes[:index]) + value + string(runes[index:])
	dom.SetText(t.node, t.text)
	return nil
}

// Optimize удаляет пустой текст и сливает соседние текстовые узлы.
func (t *TextBlot) Optimize(ctx Context) error {
	if err := t.shadowBlot.Optimize(ctx); err != nil {
		return err
	}
	t.text = t.node.Data
	if t.text == "" {
		t.Remove()
		return nil
	}
	if next, ok := t.Next().(*TextBlot); ok {
		if err := t.InsertAt(t.Length(), next.text, nil); err != nil {
			return err
		}
		next.Remove()
	}
	return nil
}

func (t *TextBlot) Split(index int, force bool) (Blot, error) {
	if !force {
		if index == 0 {
			return t, nil
		}
		if index == t.Length() {
			return t.Next(), nil
		}
	}
	afterNode := dom.SplitText(t.node, index)
	t.text = t.node.Data

	after := newText(t.scroll, t.def, afterNode)
	if t.owner != nil {
		if err := t.owner.InsertBefore(after, t.Next()); err != nil {
			return nil, err
		}
	}
	return after, nil
}

func (t *TextBlot) Update(mutations []dom.MutationRecord, _ Context) error {
	for _, m := range mutations {
		if m.Type == dom.CharacterData && m.Target == t.node {
			t.text = t.node.Data
			return nil
		}
	}
	return nil
}

// EmbedBlot - вставка без текстового содержимого (изображение, разделитель).
type EmbedBlot struct {
	shadowBlot
}

func newEmbed(scroll *Scroll, def *Definition, node *html.Node) *EmbedBlot {
	e := &EmbedBlot{}
	e.init(e, scroll, def, node)
	return e
}

// Value возвращает {имя: значение}, где значение читается определением или равно true.
func (e *EmbedBlot) Value() any {
	var value any = true
	if e.def.Value != nil {
		if v := e.def.Value(e.node); v != nil {
			value = v
		}
	}
	return map[string]any{e.def.Name: value}
}

func (e *EmbedBlot) Format(name string, value any) error {
	return e.shadowBlot.FormatAt(0, e.Length(), name, value)
}

func (e *EmbedBlot) Formats() map[string]any {
	res := make(map[string]any)
	if e.def.Classify != nil {
		if v := e.def.Classify(e.def, e.node, e.scroll); v != nil {
			res[e.def.Name] = v
		}
	}
	return res
}

// BreakBlot - заполнитель пустого блока нулевой длины. Удаляется, как только у
// блока появляется другое содержимое.
type BreakBlot struct {
	shadowBlot
}

func newBreak(scroll *Scroll, def *Definition, node *html.Node) *BreakBlot {
	b := &BreakBlot{}
	b.init(b, scroll, def, node)
	return b
}

func (b *BreakBlot) Length() int { return 0 }
func (b *BreakBlot) Value() any  { return "" }

func (b *BreakBlot) Optimize(_ Context) error {
	if b.Prev() != nil || b.Next() != nil {
		b.Remove()
	}
	return nil
}

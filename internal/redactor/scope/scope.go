// Пакет описывает области действия (scope) форматов и узлов дерева документа.
//
// Область действия кодируется битовой маской из двух частей: тип (атрибут или узел)
// и уровень (блочный или строчный). Совпадение при поиске формата требует пересечения
// и по типу, и по уровню.
package scope

import "strings"

type Scope uint8

const (
	Type  Scope = (1 << 2) - 1
	Level Scope = ((1 << 2) - 1) << 2

	Attribute Scope = (1 << 0) | Level
	Blot      Scope = (1 << 1) | Level
	Inline    Scope = (1 << 2) | Type
	Block     Scope = (1 << 3) | Type

	BlockBlot       Scope = Block & Blot
	InlineBlot      Scope = Inline & Blot
	BlockAttribute  Scope = Block & Attribute
	InlineAttribute Scope = Inline & Attribute

	Any Scope = Type | Level
)

// Matches сообщает, подходит ли область match под запрос s: оба должны
// пересекаться и по уровню, и по типу.
func (s Scope) Matches(match Scope) bool {
	return s&Level&match != 0 && s&Type&match != 0
}

func (s Scope) IsBlock() bool {
	return s&Level&Block != 0
}

func (s Scope) IsInline() bool {
	return s&Level&Inline != 0
}

func (s Scope) String() string {
	switch s {
	case BlockBlot:
		return "block-blot"
	case InlineBlot:
		return "inline-blot"
	case BlockAttribute:
		return "block-attribute"
	case InlineAttribute:
		return "inline-attribute"
	case Any:
		return "any"
	}

	var parts []string
	if s&Level&Block != 0 {
		parts = append(parts, "block")
	}
	if s&Level&Inline != 0 {
		parts = append(parts, "inline")
	}
	if s&Type&Blot&^Attribute != 0 {
		parts = append(parts, "blot")
	}
	if s&Type&Attribute&^Blot != 0 {
		parts = append(parts, "attribute")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

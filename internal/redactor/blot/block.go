package blot

import (
	"reflect"
	"slices"
	"strings"

	"github.com/aisa-it/redactor.go/internal/redactor/apierrors"
	"github.com/aisa-it/redactor.go/internal/redactor/attributor"
	"github.com/aisa-it/redactor.go/internal/redactor/dom"
	"github.com/aisa-it/redactor.go/internal/redactor/metrics"
	"github.com/aisa-it/redactor.go/internal/redactor/scope"
	stack_error "github.com/aisa-it/redactor.go/internal/redactor/stack-error"
	"golang.org/x/net/html"
)

// BlockBlot - блочный узел документа (абзац, заголовок, элемент списка).
// Хранит атрибутивные форматы элемента и цепочку обязательных контейнеров своего типа.
type BlockBlot struct {
	parentBlot
	attributes         *attributor.Store
	requiredContainers []string
}

func newBlock(scroll *Scroll, def *Definition, node *html.Node) (*BlockBlot, error) {
	chain, err := scroll.registry.RequiredContainers(def.Name)
	if err != nil {
		return nil, err
	}
	b := &BlockBlot{requiredContainers: chain}
	if err := b.initParent(b, scroll, def, node); err != nil {
		return nil, err
	}
	b.attributes = attributor.NewStore(node, scroll.registry)
	return b, nil
}

func (b *BlockBlot) Attributes() *attributor.Store {
	return b.attributes
}

// RequiredContainers возвращает имена обязательных контейнеров от ближайшего к внешнему.
func (b *BlockBlot) RequiredContainers() []string {
	return slices.Clone(b.requiredContainers)
}

// Format применяет блочный формат name со значением value:
//   - имя из цепочки обязательных контейнеров передаётся соответствующему предку;
//   - неизвестный на блочном уровне формат игнорируется;
//   - атрибутивный формат ставится или снимается на элементе блока;
//   - структурный формат заменяет блок узлом другого типа, снятие собственного
//     формата возвращает блок к типу по умолчанию.
func (b *BlockBlot) Format(name string, value any) error {
	if slices.Contains(b.requiredContainers, name) {
		return b.formatContainer(name, value)
	}

	switch entry := b.scroll.Query(name, scope.Block).(type) {
	case nil:
		metrics.FormatOps.WithLabelValues(metrics.OutcomeNoop).Inc()
		return nil

	case attributor.Attributor:
		b.attributes.Attribute(entry, value)
		metrics.FormatOps.WithLabelValues(metrics.OutcomeAttribute).Inc()
		return nil

	case *Definition:
		own := b.def.Name
		switch {
		case name == own && !attributor.IsSet(value):
			if _, err := b.ReplaceWith(DefaultBlockName, nil); err != nil {
				return err
			}
		case attributor.IsSet(value) && (name != own || !formatEqual(b.Formats()[name], b.def.normalizeValue(value))):
			if _, err := b.ReplaceWith(name, value); err != nil {
				return err
			}
		default:
			metrics.FormatOps.WithLabelValues(metrics.OutcomeNoop).Inc()
			return nil
		}
		metrics.FormatOps.WithLabelValues(metrics.OutcomeReplace).Inc()
	}
	return nil
}

// formatContainer передаёт формат предку, соответствующему обязательному
// контейнеру name. Цепочка проверяется снизу вверх; если очередной предок не
// является ожидаемым контейнером, форматирование молча пропускается.
func (b *BlockBlot) formatContainer(name string, value any) error {
	var ancestor Parent = b.owner
	for _, container := range b.requiredContainers {
		if ancestor == nil || ancestor.Name() != container {
			b.scroll.logger.Debug("Required container not materialized", "blot", b.Name(), "container", container, "format", name)
			metrics.FormatOps.WithLabelValues(metrics.OutcomeNoop).Inc()
			return nil
		}
		if container == name {
			target, ok := ancestor.(Formattable)
			if !ok {
				return stack_error.TrackErrorStack(apierrors.ErrMissingFormat.WithFormattedMessage(ancestor.Name())).
					AddContext("blot", b.Name()).
					AddContext("format", name)
			}
			metrics.FormatOps.WithLabelValues(metrics.OutcomeContainer).Inc()
			return target.Format(name, value)
		}
		ancestor = ancestor.Parent()
	}
	return nil
}

// Formats возвращает атрибутивные форматы блока и его структурный формат, если он есть.
func (b *BlockBlot) Formats() map[string]any {
	res := b.attributes.Values()
	if v := ClassifyFormat(b.def, b.node, b.scroll); v != nil {
		res[b.def.Name] = v
	}
	return res
}

// FormatAt применяет блочные форматы к блоку целиком, остальные передаёт потомкам.
func (b *BlockBlot) FormatAt(index, length int, name string, value any) error {
	if b.scroll.Query(name, scope.Block) != nil {
		return b.Format(name, value)
	}
	return b.parentBlot.FormatAt(index, length, name, value)
}

// InsertAt вставляет текст или строчный узел внутрь блока. Структурное
// содержимое вставляется рядом с блоком, для чего блок делится по index.
func (b *BlockBlot) InsertAt(index int, value string, def any) error {
	if def == nil || b.scroll.Query(value, scope.Inline) != nil {
		return b.parentBlot.InsertAt(index, value, def)
	}

	inserted, err := b.scroll.Create(value, def)
	if err != nil {
		return err
	}

	after, err := b.Split(index, false)
	if err != nil {
		inserted.Detach()
		return err
	}
	if after == nil {
		inserted.Detach()
		return stack_error.TrackErrorStack(apierrors.ErrInsertBoundary).
			AddContext("blot", b.Name()).
			AddContext("index", index)
	}
	target := after.Parent()
	if target == nil {
		inserted.Detach()
		return apierrors.ErrDetached.WithFormattedMessage(after.Name())
	}
	if err := target.InsertBefore(inserted, after); err != nil {
		return err
	}
	metrics.Splits.Inc()
	return nil
}

// ReplaceWithBlot переносит потомков и атрибутивные форматы в replacement.
func (b *BlockBlot) ReplaceWithBlot(replacement Blot) (Blot, error) {
	res, err := b.parentBlot.ReplaceWithBlot(replacement)
	if err != nil {
		return nil, err
	}
	if f, ok := res.(Formattable); ok {
		if err := b.attributes.Copy(f); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Update согласует потомков и пересобирает атрибутивные форматы, если в
// пакете есть изменение атрибутов собственного элемента.
func (b *BlockBlot) Update(mutations []dom.MutationRecord, ctx Context) error {
	if err := b.parentBlot.Update(mutations, ctx); err != nil {
		return err
	}
	if slices.ContainsFunc(mutations, func(m dom.MutationRecord) bool {
		return m.Target == b.node && m.Type == dom.Attributes
	}) {
		b.attributes.Build()
		metrics.AttributeRebuilds.Inc()
	}
	return nil
}

// formatEqual сравнивает текущее значение формата с запрошенным; строки
// сравниваются без учёта регистра, остальные значения по содержимому.
func formatEqual(current, requested any) bool {
	if reflect.DeepEqual(current, requested) {
		return true
	}
	if s, ok := current.(string); ok {
		return strings.EqualFold(s, attributor.Stringify(requested))
	}
	return false
}

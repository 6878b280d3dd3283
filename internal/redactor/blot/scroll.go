package blot

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/aisa-it/redactor.go/internal/redactor/apierrors"
	"github.com/aisa-it/redactor.go/internal/redactor/dom"
	"github.com/aisa-it/redactor.go/internal/redactor/metrics"
	"github.com/aisa-it/redactor.go/internal/redactor/scope"
	stack_error "github.com/aisa-it/redactor.go/internal/redactor/stack-error"
	"github.com/gofrs/uuid"
	"golang.org/x/net/html"
)

const DefaultMaxOptimizeIterations = 100

// ScrollDefinition используется, если реестр не содержит собственного определения корня.
var ScrollDefinition = &Definition{
	Name:         ScrollName,
	Kind:         KindScroll,
	Tags:         []string{"div"},
	DefaultChild: DefaultBlockName,
}

// Scroll - корень дерева документа. Владеет реестром, таблицей соответствия
// элементов и узлов, наблюдателем мутаций и ограничением на число проходов оптимизации.
type Scroll struct {
	parentBlot

	id          uuid.UUID
	registry    *Registry
	observer    *dom.Observer
	logger      *slog.Logger
	hook        FormatHook
	maxOptimize int

	blots map[*html.Node]Blot
}

type ScrollOption func(*Scroll)

// WithMaxOptimizeIterations ограничивает число проходов оптимизации одной операции.
func WithMaxOptimizeIterations(n int) ScrollOption {
	return func(s *Scroll) {
		if n > 0 {
			s.maxOptimize = n
		}
	}
}

// WithFormatHook задаёт проверку, вызываемую перед каждым FormatAt.
func WithFormatHook(h FormatHook) ScrollOption {
	return func(s *Scroll) {
		s.hook = h
	}
}

func WithLogger(l *slog.Logger) ScrollOption {
	return func(s *Scroll) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScroll строит дерево по элементу node и начинает наблюдение за ним.
func NewScroll(registry *Registry, node *html.Node, opts ...ScrollOption) (*Scroll, error) {
	def := registry.Definition(ScrollName)
	if def == nil {
		def = ScrollDefinition
	}
	if node == nil {
		var err error
		if node, err = def.createNode(nil); err != nil {
			return nil, err
		}
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}

	s := &Scroll{
		id:          id,
		registry:    registry,
		maxOptimize: DefaultMaxOptimizeIterations,
		blots:       make(map[*html.Node]Blot),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("scroll", id.String())

	if err := s.initParent(s, s, def, node); err != nil {
		return nil, err
	}
	s.observer = dom.Observe(node)
	s.Attach()
	if err := s.Optimize(nil); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scroll) ID() uuid.UUID {
	return s.id
}

func (s *Scroll) Registry() *Registry {
	return s.registry
}

func (s *Scroll) Observer() *dom.Observer {
	return s.observer
}

func (s *Scroll) Logger() *slog.Logger {
	return s.logger
}

// Close прекращает наблюдение за внешним представлением.
func (s *Scroll) Close() {
	s.observer.Disconnect()
}

func (s *Scroll) register(node *html.Node, b Blot) {
	s.blots[node] = b
}

func (s *Scroll) unregister(node *html.Node, b Blot) {
	if s.blots[node] == b {
		delete(s.blots, node)
	}
}

// Find возвращает узел, владеющий элементом. При bubble поиск продолжается вверх по предкам.
func (s *Scroll) Find(node *html.Node, bubble bool) Blot {
	for n := node; n != nil; n = n.Parent {
		if b, ok := s.blots[n]; ok {
			return b
		}
		if !bubble {
			break
		}
	}
	return nil
}

func (s *Scroll) Query(name string, sc scope.Scope) Entry {
	return s.registry.Query(name, sc)
}

// Create создаёт узел зарегистрированного типа name со значением value.
func (s *Scroll) Create(name string, value any) (Blot, error) {
	def := s.registry.Definition(name)
	if def == nil {
		return nil, apierrors.ErrUnknownBlot.WithFormattedMessage(name)
	}
	node, err := def.createNode(value)
	if err != nil {
		return nil, err
	}
	return s.construct(def, node)
}

// CreateFromNode создаёт узел для существующего элемента по его классам и тегу.
func (s *Scroll) CreateFromNode(node *html.Node) (Blot, error) {
	def, ok := s.registry.QueryNode(node, scope.Any).(*Definition)
	if !ok {
		name := dom.TagName(node)
		if dom.IsText(node) {
			name = "#text"
		}
		return nil, apierrors.ErrUnknownBlot.WithFormattedMessage(name)
	}
	return s.construct(def, node)
}

// CreateByScope создаёт узел по умолчанию для уровня sc.
func (s *Scroll) CreateByScope(sc scope.Scope) (Blot, error) {
	def, ok := s.registry.QueryScope(sc).(*Definition)
	if !ok {
		return nil, apierrors.ErrUnknownBlot.WithFormattedMessage(sc.String())
	}
	return s.Create(def.Name, nil)
}

func (s *Scroll) construct(def *Definition, node *html.Node) (Blot, error) {
	switch def.Kind {
	case KindBlock:
		return newBlock(s, def, node)
	case KindInline:
		return newInline(s, def, node)
	case KindContainer:
		if def.Formattable {
			return newFormattableContainer(s, def, node)
		}
		return newContainer(s, def, node)
	case KindText:
		if node.Type != html.TextNode {
			return nil, apierrors.ErrInvalidDefinition.WithFormattedMessage(def.Name + ": text blot over element")
		}
		return newText(s, def, node), nil
	case KindEmbed:
		return newEmbed(s, def, node), nil
	case KindBreak:
		return newBreak(s, def, node), nil
	}
	return nil, apierrors.ErrInvalidDefinition.WithFormattedMessage(def.Name + ": cannot be nested")
}

// makeAttachedBlot возвращает узел элемента, создавая его при необходимости.
// Неизвестный элемент заменяется строчным узлом по умолчанию с теми же потомками.
func (s *Scroll) makeAttachedBlot(node *html.Node) (Blot, error) {
	if b := s.Find(node, false); b != nil {
		return b, nil
	}
	b, err := s.CreateFromNode(node)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, apierrors.ErrUnknownBlot) || node.Type != html.ElementNode {
		return nil, err
	}

	s.logger.Warn("Unknown element replaced with inline", "tag", dom.TagName(node))
	wrapper, err := s.CreateByScope(scope.Inline)
	if err != nil {
		return nil, err
	}
	for _, child := range dom.Children(node) {
		dom.AppendChild(wrapper.DOMNode(), child)
	}
	if node.Parent != nil {
		dom.ReplaceChild(node.Parent, wrapper.DOMNode(), node)
	}
	if p, ok := wrapper.(Parent); ok {
		if err := p.parentBase().build(); err != nil {
			return nil, err
		}
	}
	wrapper.Attach()
	return wrapper, nil
}

// InsertBefore оборачивает строчные узлы в блок по умолчанию.
func (s *Scroll) InsertBefore(child, ref Blot) error {
	if child.Scope() == scope.InlineBlot {
		wrapper, err := s.Create(s.def.DefaultChild, nil)
		if err != nil {
			return err
		}
		wp, ok := wrapper.(Parent)
		if !ok {
			return apierrors.ErrNotParent.WithFormattedMessage(wrapper.Name())
		}
		if err := wp.AppendChild(child); err != nil {
			return err
		}
		child = wrapper
	}
	return s.parentBlot.InsertBefore(child, ref)
}

func (s *Scroll) AppendChild(child Blot) error {
	return s.InsertBefore(child, nil)
}

// Line возвращает блок, содержащий позицию index, и смещение внутри него.
func (s *Scroll) Line(index int) (*BlockBlot, int) {
	b, offset := s.Descendant(isBlock, index)
	line, _ := b.(*BlockBlot)
	return line, offset
}

// Lines возвращает блоки, пересекающие диапазон [index, index+length).
func (s *Scroll) Lines(index, length int) []*BlockBlot {
	var res []*BlockBlot
	for _, b := range s.Descendants(isBlock) {
		line := b.(*BlockBlot)
		offset, size := line.Offset(s), line.Length()
		end := index + length
		if offset+size < index || offset > end {
			continue
		}
		// при ненулевой длине блоки, лишь касающиеся границ диапазона, не входят
		if length > 0 && (offset == end || (size > 0 && offset+size == index)) {
			continue
		}
		res = append(res, line)
	}
	return res
}

func isBlock(b Blot) bool {
	_, ok := b.(*BlockBlot)
	return ok
}

func (s *Scroll) DeleteAt(index, length int) error {
	if err := s.Update(nil, nil); err != nil {
		return err
	}
	if index == 0 && length == s.Length() {
		for _, child := range s.Children() {
			child.Remove()
		}
	} else if err := s.parentBlot.DeleteAt(index, length); err != nil {
		return err
	}
	return s.Optimize(nil)
}

// FormatAt применяет формат к диапазону после проверки правилами.
func (s *Scroll) FormatAt(index, length int, name string, value any) error {
	if err := s.Update(nil, nil); err != nil {
		return err
	}
	if s.hook != nil {
		req := FormatRequest{Index: index, Length: length, Name: name, Value: value}
		for _, line := range s.Lines(index, length) {
			req.Lines = append(req.Lines, LineInfo{Blot: line.Name(), Formats: line.Formats()})
		}
		if err := s.hook.BeforeFormat(req); err != nil {
			s.logger.Info("Format rejected by hook", "format", name, "index", index, "err", err)
			return err
		}
	}
	if err := s.parentBlot.FormatAt(index, length, name, value); err != nil {
		return err
	}
	return s.Optimize(nil)
}

// InsertAt вставляет текст или узел; позиция за концом документа создаёт новый блок.
func (s *Scroll) InsertAt(index int, value string, def any) error {
	if err := s.Update(nil, nil); err != nil {
		return err
	}
	if index >= s.Length() {
		if def == nil || s.Query(value, scope.Block) == nil {
			line, err := s.appendLine()
			if err != nil {
				return err
			}
			if def == nil && strings.HasSuffix(value, "\n") {
				value = value[:len(value)-1]
			}
			if value != "" || def != nil {
				if err := line.InsertAt(0, value, def); err != nil {
					return err
				}
			}
		} else {
			inserted, err := s.Create(value, def)
			if err != nil {
				return err
			}
			if err := s.AppendChild(inserted); err != nil {
				return err
			}
		}
	} else if err := s.parentBlot.InsertAt(index, value, def); err != nil {
		return err
	}
	return s.Optimize(nil)
}

// appendLine возвращает пустой последний блок или добавляет новый блок по умолчанию.
func (s *Scroll) appendLine() (Blot, error) {
	if n := len(s.children); n > 0 {
		if last, ok := s.children[n-1].(*BlockBlot); ok && last.Length() == 0 {
			return last, nil
		}
	}
	line, err := s.Create(s.def.DefaultChild, nil)
	if err != nil {
		return nil, err
	}
	if err := s.AppendChild(line); err != nil {
		return nil, err
	}
	return line, nil
}

// Update согласует дерево с пакетом мутаций; при mutations == nil берутся
// накопленные наблюдателем записи. Затем дерево оптимизируется.
func (s *Scroll) Update(mutations []dom.MutationRecord, ctx Context) error {
	if mutations == nil {
		mutations = s.observer.TakeRecords()
	}
	if ctx == nil {
		ctx = Context{}
	}

	var order []Blot
	grouped := make(map[Blot][]dom.MutationRecord)
	for _, m := range mutations {
		metrics.MutationRecords.WithLabelValues(m.Type.String()).Inc()
		b := s.Find(m.Target, true)
		if b == nil {
			continue
		}
		if _, ok := grouped[b]; !ok {
			order = append(order, b)
		}
		grouped[b] = append(grouped[b], m)
	}

	for _, b := range order {
		if b == Blot(s) {
			if err := s.parentBlot.Update(grouped[b], ctx); err != nil {
				return err
			}
			continue
		}
		if s.Find(b.DOMNode(), false) != b {
			continue
		}
		if err := b.Update(grouped[b], ctx); err != nil {
			return err
		}
	}
	return s.Optimize(ctx)
}

// Optimize повторяет проходы оптимизации по всему дереву, пока проход не
// перестанет менять внешнее представление, но не более maxOptimize раз.
func (s *Scroll) Optimize(ctx Context) error {
	if ctx == nil {
		ctx = Context{}
	}
	s.observer.TakeRecords()
	for pass := 1; ; pass++ {
		if pass > s.maxOptimize {
			err := stack_error.TrackErrorStack(apierrors.ErrMaxOptimize).AddContext("passes", s.maxOptimize)
			stack_error.LogError(err, "scroll", s.id.String())
			return err
		}
		if err := s.optimizeTree(s, ctx); err != nil {
			return err
		}
		if len(s.observer.TakeRecords()) == 0 {
			metrics.OptimizePasses.Observe(float64(pass))
			return nil
		}
	}
}

// optimizeTree оптимизирует потомков раньше родителя.
func (s *Scroll) optimizeTree(b Blot, ctx Context) error {
	if p, ok := b.(Parent); ok {
		for _, child := range p.Children() {
			if child.Parent() == nil || child.Parent().parentBase() != p.parentBase() {
				continue
			}
			if err := s.optimizeTree(child, ctx); err != nil {
				return err
			}
		}
	}
	if b == Blot(s) {
		return s.parentBlot.Optimize(ctx)
	}
	if b.Parent() == nil {
		return nil
	}
	return b.Optimize(ctx)
}

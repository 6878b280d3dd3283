// Пакет оборачивает ошибки нарушения структуры дерева, накапливая трассу вызовов и
// контекст (имя узла, индекс, формат) в виде атрибутов slog.
//
// Основные возможности:
//   - Накопление стека мест, через которые прошла ошибка.
//   - Добавление контекста без перезаписи уже заданных ключей.
//   - Логирование ошибки вместе с трассой и контекстом.
//   - Совместимость с errors.Is/errors.As через Unwrap.
package stack_error

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"runtime"
	"slices"
)

// Frame - место, через которое прошла ошибка.
type Frame struct {
	File string
	Line int
	Func string
}

func (f Frame) String() string {
	return fmt.Sprintf("%s:%d %s", f.File, f.Line, f.Func)
}

type TrackerError struct {
	Context map[string]any
	Frames  []Frame
	cause   error
}

// TrackErrorStack добавляет место вызова к трассе ошибки. Если в цепочке err уже
// есть TrackerError, дополняется он, иначе создается новый.
func TrackErrorStack(err error) *TrackerError {
	var te *TrackerError
	if !errors.As(err, &te) {
		te = &TrackerError{
			Context: make(map[string]any),
			cause:   err,
		}
	}
	te.Frames = append(te.Frames, callerFrame(2))
	return te
}

func (te *TrackerError) AddContext(k string, v any) *TrackerError {
	if _, ok := te.Context[k]; !ok {
		te.Context[k] = v
	}
	return te
}

func (te *TrackerError) Error() string {
	if te.cause != nil {
		return te.cause.Error()
	}
	return "TrackerError"
}

func (te *TrackerError) Unwrap() error {
	return te.cause
}

// LogValue разворачивает контекст и трассу в группу атрибутов.
func (te *TrackerError) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(te.Context)+1)
	for _, k := range slices.Sorted(maps.Keys(te.Context)) {
		attrs = append(attrs, slog.Any(k, te.Context[k]))
	}
	trace := make([]string, len(te.Frames))
	for i, f := range te.Frames {
		trace[i] = f.String()
	}
	attrs = append(attrs, slog.Any("trace", trace))
	return slog.GroupValue(attrs...)
}

// LogError пишет ошибку в лог вместе с трассой и контекстом, если он был накоплен.
func LogError(err error, attrs ...any) {
	var te *TrackerError
	if errors.As(err, &te) {
		attrs = append(attrs, slog.Any("tree", te))
	}
	attrs = append(attrs, slog.String("raw_error", err.Error()))

	slog.With(attrs...).Error("stack error")
}

func callerFrame(skip int) Frame {
	pc, path, line, ok := runtime.Caller(skip)
	if !ok {
		return Frame{File: "unknown"}
	}
	f := Frame{File: filepath.Base(path), Line: line}
	if fn := runtime.FuncForPC(pc); fn != nil {
		f.Func = filepath.Base(fn.Name())
	}
	return f
}

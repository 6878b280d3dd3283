package rules

import (
	"context"
	"errors"
	"strings"

	"github.com/aisa-it/redactor.go/internal/redactor/apierrors"
	"github.com/aisa-it/redactor.go/internal/redactor/blot"
	stack_error "github.com/aisa-it/redactor.go/internal/redactor/stack-error"
	lua "github.com/yuin/gopher-lua"
)

const runFn = "script"

// Run выполняет скрипт правки документа. Скрипту доступна глобальная таблица doc:
//
//	doc.length()                       -- длина документа
//	doc.format(index, length, name, value)
//	doc.insert(index, text [, value])  -- текст или узел name=text со значением value
//	doc.delete(index, length)
//	doc.formats(index)                 -- форматы строки, содержащей index
//
// Ошибка любой операции прерывает скрипт.
func Run(ctx context.Context, s *blot.Scroll, script string) ([]LuaOut, error) {
	state := lua.NewState()
	defer state.Close()
	state.SetContext(ctx)

	deniedLib(state)
	registerLogger(state)
	state.SetGlobal("doc", getDocument(state, s))

	// выполнение прерывается виртуальной машиной по отмене ctx
	err := state.DoString(script)
	messages := collectMessages(state, runFn)
	if err == nil {
		return messages, nil
	}
	if ctx.Err() != nil {
		return messages, stack_error.TrackErrorStack(apierrors.ErrScriptTimeout).AddContext("scroll", s.ID().String())
	}
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) {
		return messages, stack_error.TrackErrorStack(err).AddContext("lua", strings.TrimSpace(apiErr.Object.String()))
	}
	return messages, stack_error.TrackErrorStack(err)
}

func getDocument(state *lua.LState, s *blot.Scroll) *lua.LTable {
	doc := state.NewTable()
	state.SetFuncs(doc, map[string]lua.LGFunction{
		"length": func(L *lua.LState) int {
			L.Push(lua.LNumber(s.Length()))
			return 1
		},
		"format": func(L *lua.LState) int {
			index, length := L.CheckInt(1), L.CheckInt(2)
			name := L.CheckString(3)
			if err := s.FormatAt(index, length, name, fromLValue(L.Get(4))); err != nil {
				L.RaiseError("format %s: %s", name, err.Error())
			}
			return 0
		},
		"insert": func(L *lua.LState) int {
			index := L.CheckInt(1)
			text := L.CheckString(2)
			var value any
			if L.GetTop() >= 3 {
				value = fromLValue(L.Get(3))
			}
			if err := s.InsertAt(index, text, value); err != nil {
				L.RaiseError("insert: %s", err.Error())
			}
			return 0
		},
		"delete": func(L *lua.LState) int {
			index, length := L.CheckInt(1), L.CheckInt(2)
			if err := s.DeleteAt(index, length); err != nil {
				L.RaiseError("delete: %s", err.Error())
			}
			return 0
		},
		"formats": func(L *lua.LState) int {
			line, _ := s.Line(L.CheckInt(1))
			if line == nil {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(toLValue(L, line.Formats()))
			return 1
		},
	})
	return doc
}

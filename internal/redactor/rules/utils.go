// Содержит вспомогательные функции для обмена данными между деревом документа и Lua.
//
// Основные возможности:
//   - Ограничение окружения скрипта (отключение require, io, os и т.п.).
//   - Перехват print() в таблицу сообщений.
//   - Преобразование значений Go в значения Lua и обратно.
//   - Генерация таблицы строк документа с методами проверки для использования в Lua-скриптах.
package rules

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/aisa-it/redactor.go/internal/redactor/blot"
	lua "github.com/yuin/gopher-lua"
)

var (
	CheckBlot   func(L *lua.LState) int
	CheckFormat func(L *lua.LState) int
)

func init() {
	CheckBlot = createCheckFieldFunc("blot")
	CheckFormat = createHasFormatFunc()
}

type LuaOut struct {
	Msg    string
	Time   time.Time
	FnName string
}

type LuaResp struct {
	ClientResult     bool
	ScriptFlowResult bool
	Info             *debugInfo
}

type debugInfo struct {
	Function *string   `json:"function"`
	ScrollId string    `json:"scroll_id"`
	Format   string    `json:"format"`
	Index    int       `json:"index"`
	Time     time.Time `json:"time"`
}

func (r *LuaResp) GetTime() time.Time {
	return r.Info.Time
}

func (r *LuaResp) GetFnName() *string {
	return r.Info.Function
}

func deniedLib(state *lua.LState) {
	state.SetGlobal("require", lua.LNil)
	state.SetGlobal("loadfile", lua.LNil)
	state.SetGlobal("dofile", lua.LNil)
	state.SetGlobal("net", lua.LNil)
	state.SetGlobal("debug", lua.LNil)
	state.SetGlobal("coroutine", lua.LNil)
	state.SetGlobal("socket", lua.LNil)
	state.SetGlobal("lfs", lua.LNil)
	state.SetGlobal("os", lua.LNil)
	state.SetGlobal("io", lua.LNil)
	state.SetGlobal("package", lua.LNil)
	state.SetGlobal("ffi", lua.LNil)
}

// createCheckFieldFunc возвращает метод массива таблиц: есть ли элемент с полем fieldName, равным аргументу.
func createCheckFieldFunc(fieldName string) lua.LGFunction {
	return func(L *lua.LState) int {
		self := L.CheckTable(1)
		fieldValue := L.CheckString(2)
		for i := 1; i <= self.Len(); i++ {
			entry, ok := self.RawGetInt(i).(*lua.LTable)
			if !ok {
				continue
			}
			if entry.RawGetString(fieldName).String() == fieldValue {
				L.Push(lua.LTrue)
				return 1
			}
		}
		L.Push(lua.LFalse)
		return 1
	}
}

// createHasFormatFunc возвращает метод массива строк: задан ли хотя бы у одной строки формат с именем аргумента.
func createHasFormatFunc() lua.LGFunction {
	return func(L *lua.LState) int {
		self := L.CheckTable(1)
		name := L.CheckString(2)
		for i := 1; i <= self.Len(); i++ {
			entry, ok := self.RawGetInt(i).(*lua.LTable)
			if !ok {
				continue
			}
			if formats, ok := entry.RawGetString("formats").(*lua.LTable); ok && formats.RawGetString(name) != lua.LNil {
				L.Push(lua.LTrue)
				return 1
			}
		}
		L.Push(lua.LFalse)
		return 1
	}
}

func registerLogger(state *lua.LState) {
	messages := state.NewTable()
	state.SetGlobal("messages", messages)
	state.SetGlobal("print", state.NewFunction(func(L *lua.LState) int {
		var message string
		numArgs := L.GetTop()
		for i := 1; i <= numArgs; i++ {
			arg := L.ToString(i)
			if i > 1 {
				message += " "
			}
			message += arg
		}
		msgTable := L.NewTable()
		msgTable.RawSetString("msg", lua.LString(message))
		currentTime := time.Now()
		formattedTime := fmt.Sprintf("%d.%09d", currentTime.Unix(), currentTime.Nanosecond())
		msgTable.RawSetString("time", lua.LString(formattedTime))
		messages.Append(msgTable)
		return 0
	}))
}

// toLValue преобразует значение формата в значение Lua.
func toLValue(state *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case string:
		return lua.LString(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case map[string]any:
		table := state.NewTable()
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			table.RawSetString(k, toLValue(state, val[k]))
		}
		return table
	case []any:
		table := state.NewTable()
		for _, item := range val {
			table.Append(toLValue(state, item))
		}
		return table
	}
	return lua.LString(fmt.Sprint(v))
}

// fromLValue преобразует значение Lua в значение формата; целые числа становятся int.
func fromLValue(v lua.LValue) any {
	switch val := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(val)
	case lua.LString:
		return string(val)
	case lua.LNumber:
		f := float64(val)
		if f == math.Trunc(f) && math.Abs(f) < math.MaxInt32 {
			return int(f)
		}
		return f
	case *lua.LTable:
		res := make(map[string]any)
		val.ForEach(func(k, item lua.LValue) {
			res[k.String()] = fromLValue(item)
		})
		return res
	}
	return v.String()
}

func getLines(state *lua.LState, lines []blot.LineInfo) *lua.LTable {
	linesTable := state.NewTable()
	for _, line := range lines {
		entry := state.NewTable()
		entry.RawSetString("blot", lua.LString(line.Blot))
		entry.RawSetString("formats", toLValue(state, line.Formats))
		linesTable.Append(entry)
	}

	metaTable := state.NewTable()
	state.SetFuncs(metaTable, map[string]lua.LGFunction{
		"checkBlot": CheckBlot,
		"hasFormat": CheckFormat,
	})
	state.SetField(metaTable, "__index", metaTable)
	state.SetMetatable(linesTable, metaTable)
	return linesTable
}

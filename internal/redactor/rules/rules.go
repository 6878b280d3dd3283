// Пакет содержит правила форматирования на Lua: скрипт может разрешить или запретить форматирование
// диапазона документа до того, как оно будет применено к дереву, а также выполнять правки документа из CLI.
//
// Основные возможности:
//   - Выполнение функции BeforeFormat(params, format) перед каждым форматированием диапазона.
//   - Передача в скрипт позиции, длины и строк диапазона с их текущими форматами.
//   - Ограничение времени выполнения и окружения скрипта.
//   - Обработка результатов Lua-скрипта, журнал срабатываний и сообщений print().
package rules

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aisa-it/redactor.go/internal/redactor/blot"
	lua "github.com/yuin/gopher-lua"
)

const DefaultTimeout = 10 * time.Second

const beforeFormatFn = "BeforeFormat"

// Engine выполняет скрипт правил и реализует blot.FormatHook.
type Engine struct {
	script   string
	timeout  time.Duration
	scrollId string

	mu   sync.Mutex
	logs []RulesLog
}

type Option func(*Engine)

func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithScrollId помечает записи журнала идентификатором документа.
func WithScrollId(id string) Option {
	return func(e *Engine) {
		e.scrollId = id
	}
}

func New(script string, opts ...Option) *Engine {
	e := &Engine{script: script, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load читает скрипт правил из файла.
func Load(path string, opts ...Option) (*Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return New(string(data), opts...), nil
}

// BeforeFormat запускает функцию BeforeFormat скрипта. Ошибки самого скрипта
// попадают в журнал и не запрещают форматирование.
func (e *Engine) BeforeFormat(req blot.FormatRequest) error {
	res, msg, err := e.callEventFunction(beforeFormatFn, req)

	var logs []RulesLog
	AppendMsg(e.scrollId, msg, &logs)
	AppendError(e.scrollId, err, &logs)
	ResultToLog(e.scrollId, res, err, &logs)
	e.addLog(logs)

	if !res.ClientResult {
		return err
	}
	if err != nil {
		slog.Warn("Rules script failed", "function", beforeFormatFn, "format", req.Name, "err", err)
	}
	return nil
}

func (e *Engine) callEventFunction(fnName string, req blot.FormatRequest) (LuaResp, []LuaOut, IRulesError) {
	info := &debugInfo{
		Function: &fnName,
		ScrollId: e.scrollId,
		Format:   req.Name,
		Index:    req.Index,
	}

	errFull := &errDescription{}

	newErr := func(err string) IRulesError {
		info.Time = time.Now()
		return &rulesError{
			Err:     err,
			Info:    info,
			FullErr: errFull,
		}
	}

	resp := func(client, script bool) LuaResp {
		info.Time = time.Now()
		return LuaResp{
			ClientResult:     client,
			ScriptFlowResult: script,
			Info:             info,
		}
	}

	if strings.TrimSpace(e.script) == "" {
		return resp(true, false), nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	state := lua.NewState()
	defer state.Close()
	state.SetContext(ctx)

	deniedLib(state)
	registerLogger(state)

	errChan := make(chan error, 1)
	go func() {
		errChan <- state.DoString(e.script)
	}()

	select {
	case <-ctx.Done():
		<-errChan
		errFull.ErrMsg = errTimeout
		return resp(true, false), nil, newErr(errScript)
	case err := <-errChan:
		if err != nil {
			if ctx.Err() != nil {
				errFull.ErrMsg = errTimeout
				return resp(true, false), nil, newErr(errScript)
			}
			luaErr := strings.TrimSpace(err.Error())
			errFull.ErrMsg = errParseScript
			errFull.LuaError = &luaErr
			return resp(true, false), nil, newErr(errScript)
		}
	}

	fn := state.GetGlobal(fnName)
	if fn == lua.LNil {
		return resp(true, false), nil, nil
	}

	args := []lua.LValue{getCallParams(state, req), getFormat(state, req)}

	resultChan := make(chan callResult, 1)
	go func() {
		err := state.CallByParam(lua.P{
			Fn:      fn,
			NRet:    1,
			Protect: true,
		}, args...)
		if err != nil {
			resultChan <- callResult{ret: lua.LNil, err: err}
			return
		}
		resultChan <- callResult{ret: state.Get(-1)}
	}()

	select {
	case <-ctx.Done():
		<-resultChan
		errFull.ErrMsg = errTimeout
		return resp(true, false), nil, newErr(errScript)
	case res := <-resultChan:
		if res.err != nil && ctx.Err() != nil {
			errFull.ErrMsg = errTimeout
			return resp(true, false), nil, newErr(errScript)
		}
		if res.err != nil {
			luaErr := strings.TrimSpace(res.err.Error())
			errFull.ErrMsg = "Script error"
			errFull.LuaError = &luaErr
		}
		ret := res.ret
		messages := collectMessages(state, fnName)

		if ret == lua.LNil {
			return resp(true, false), messages, newErr(errScript)
		}

		retTable, ok := ret.(*lua.LTable)
		if !ok {
			luaErr := strings.TrimSpace(fmt.Sprintf("%T", ret))
			errFull.ErrMsg = "Unexpected return type from Lua script expected table"
			errFull.LuaError = &luaErr
			return resp(true, false), messages, newErr(errScript)
		}

		status := retTable.RawGetString("status")
		errStr := retTable.RawGetString("error")

		if status == lua.LNil {
			errFull.ErrMsg = "Lua table missing 'status' key"
			return resp(true, false), messages, newErr(errScript)
		}

		if errStr != lua.LNil {
			return resp(false, true), messages, newErr(errStr.String())
		}

		if status == lua.LTrue {
			return resp(true, true), messages, nil
		}
		return resp(false, true), messages, newErr(errScript)
	}
}

type callResult struct {
	ret lua.LValue
	err error
}

func collectMessages(state *lua.LState, fnName string) []LuaOut {
	var messages []LuaOut
	messagesTable, ok := state.GetGlobal("messages").(*lua.LTable)
	if !ok {
		return nil
	}
	for i := 1; i <= messagesTable.Len(); i++ {
		entry, ok := messagesTable.RawGetInt(i).(*lua.LTable)
		if !ok {
			continue
		}
		msg := entry.RawGetString("msg").String()
		timeStr := entry.RawGetString("time").String()
		var msgTime time.Time
		if len(timeStr) > 11 {
			seconds, err := strconv.ParseInt(timeStr[:10], 10, 64)
			nanoseconds, err2 := strconv.ParseInt(timeStr[11:], 10, 64)
			if err == nil && err2 == nil {
				msgTime = time.Unix(seconds, nanoseconds)
			}
		}

		messages = append(messages, LuaOut{
			Msg:    msg,
			Time:   msgTime,
			FnName: fnName,
		})
	}
	return messages
}

func getFormat(state *lua.LState, req blot.FormatRequest) *lua.LTable {
	format := state.NewTable()
	format.RawSetString("name", lua.LString(req.Name))
	format.RawSetString("value", toLValue(state, req.Value))
	return format
}

func getCallParams(state *lua.LState, req blot.FormatRequest) *lua.LTable {
	params := state.NewTable()
	params.RawSetString("index", lua.LNumber(req.Index))
	params.RawSetString("length", lua.LNumber(req.Length))
	params.RawSetString("lines", getLines(state, req.Lines))

	metaTable := state.NewTable()
	state.SetFuncs(metaTable, map[string]lua.LGFunction{
		"lineCount": func(L *lua.LState) int {
			self := L.CheckTable(1)
			lines, ok := self.RawGetString("lines").(*lua.LTable)
			if !ok {
				L.Push(lua.LNumber(0))
				return 1
			}
			L.Push(lua.LNumber(lines.Len()))
			return 1
		},
	})
	state.SetField(metaTable, "__index", metaTable)
	state.SetMetatable(params, metaTable)

	return params
}

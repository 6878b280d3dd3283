// Файл rules-activity.go содержит функции для ведения журнала
// выполнения Lua-скриптов правил.
//
// Журнал позволяет отслеживать:
//   - успешные/неуспешные срабатывания скриптов
//   - вывод print() из скриптов (тип "print")
//   - ошибки парсинга и выполнения Lua-кода (тип "error")
//
// Функции:
//   - Logs: копия журнала движка
//   - ResultToLog: преобразование результата выполнения скрипта в запись журнала
//   - AppendMsg: добавление сообщений print() в журнал
//   - AppendError: добавление ошибок скрипта в журнал
package rules

import (
	"log/slog"
	"slices"
	"time"

	"github.com/gofrs/uuid"
)

type RulesLog struct {
	Id           uuid.UUID `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	ScrollId     string    `json:"scroll_id,omitempty"`
	Time         time.Time `json:"time"`
	FunctionName *string   `json:"function_name,omitempty"`
	Type         string    `json:"type"`
	Code         int       `json:"code,omitempty"`
	Msg          string    `json:"msg"`
	LuaErr       *string   `json:"lua_err,omitempty"`
}

func genUUID() uuid.UUID {
	id, _ := uuid.NewV4()
	return id
}

func (e *Engine) addLog(logs []RulesLog) {
	if len(logs) == 0 {
		return
	}
	for _, l := range logs {
		slog.Debug("Rules log", "type", l.Type, "msg", l.Msg)
	}
	e.mu.Lock()
	e.logs = append(e.logs, logs...)
	e.mu.Unlock()
}

// Logs возвращает накопленный журнал срабатываний.
func (e *Engine) Logs() []RulesLog {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.logs)
}

func ResultToLog(scrollId string, result LuaResp, err IRulesError, logs *[]RulesLog) {
	if !result.ScriptFlowResult {
		return
	}
	var t, msg string
	var code int
	if result.ClientResult {
		t = "success"
	} else {
		t = "fail"
		msg = err.Error()
		err.SetClientError()
		code = err.ClientError().Code
	}
	*logs = append(*logs, RulesLog{
		Id:           genUUID(),
		CreatedAt:    time.Now(),
		ScrollId:     scrollId,
		Time:         result.GetTime(),
		FunctionName: result.GetFnName(),
		Type:         t,
		Code:         code,
		Msg:          msg,
	})
}

func AppendMsg(scrollId string, msg []LuaOut, logs *[]RulesLog) {
	for _, out := range msg {
		*logs = append(*logs, RulesLog{
			Id:           genUUID(),
			CreatedAt:    time.Now(),
			ScrollId:     scrollId,
			Time:         out.Time,
			FunctionName: &out.FnName,
			Type:         "print",
			Msg:          out.Msg,
		})
	}
}

func AppendError(scrollId string, err IRulesError, logs *[]RulesLog) {
	if err == nil {
		return
	}
	if len(*logs) != 0 && (*logs)[len(*logs)-1].Msg == errParseScript {
		return
	}
	if str, luaErr, ok := err.ScriptError(); ok {
		*logs = append(*logs, RulesLog{
			Id:           genUUID(),
			CreatedAt:    time.Now(),
			ScrollId:     scrollId,
			Time:         err.GetTime(),
			FunctionName: err.GetFnName(),
			Type:         "error",
			Code:         err.ClientError().Code,
			Msg:          str,
			LuaErr:       luaErr,
		})
	}
}

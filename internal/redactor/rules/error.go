// Файл error.go определяет типы ошибок для системы правил.
//
// IRulesError — интерфейс ошибки, который помимо стандартного Error() предоставляет:
//   - GetTime/GetFnName — информация для журнала (когда и в какой функции)
//   - ScriptError — детали ошибки Lua (текст ошибки парсера/рантайма)
//   - ClientError — преобразование в ошибку из каталога apierrors
//
// Ошибки делятся на три типа:
//   - errScript ("prohibition of formatting") — скрипт вернул status=false,
//     форматирование запрещено правилами
//   - errParseScript — синтаксическая ошибка в Lua-коде
//   - errTimeout — скрипт не уложился в отведённое время
package rules

import (
	"time"

	"github.com/aisa-it/redactor.go/internal/redactor/apierrors"
)

type IRulesError interface {
	error
	GetTime() time.Time
	GetFnName() *string
	ScriptError() (string, *string, bool)
	ClientError() apierrors.DefinedError
	SetClientError()
}

const errScript = "prohibition of formatting"
const errParseScript = "error parsing lua script"
const errTimeout = "Lua execution timed out"

type rulesError struct {
	Err     string          `json:"err,omitempty"`
	FullErr *errDescription `json:"full_err,omitempty"`
	Info    *debugInfo      `json:"info,omitempty"`
	Fail    bool            `json:"fail"`
}

type errDescription struct {
	ErrMsg   string  `json:"err_msg,omitempty"`
	LuaError *string `json:"lua_error,omitempty"`
}

func (e *rulesError) GetTime() time.Time {
	return e.Info.Time
}

func (e *rulesError) GetFnName() *string {
	return e.Info.Function
}

func (e *rulesError) Error() string {
	return e.Err
}

func (e *rulesError) ScriptError() (string, *string, bool) {
	if e.FullErr.ErrMsg == "" {
		return "", nil, false
	}
	return e.FullErr.ErrMsg, e.FullErr.LuaError, true
}

func (e *rulesError) ClientError() apierrors.DefinedError {
	if e.FullErr.ErrMsg == errTimeout {
		return apierrors.ErrScriptTimeout
	}
	if e.Err == errScript {
		return apierrors.ErrFormatScriptFail
	}
	if e.Fail {
		return apierrors.ErrFormatCustomScriptFail.WithFormattedMessage(e.Err)
	}
	return apierrors.ErrFormatScriptFail
}

func (e *rulesError) SetClientError() {
	e.Fail = true
}

// Unwrap позволяет сопоставлять ошибки правил с каталогом через errors.Is.
func (e *rulesError) Unwrap() error {
	return e.ClientError()
}

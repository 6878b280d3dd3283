// Пакет содержит определения ошибок дерева документа. Каждая ошибка имеет числовой код
// и описание на двух языках, что позволяет вышестоящим слоям показывать понятное
// сообщение и сопоставлять ошибки через errors.Is независимо от форматирования текста.
//
// Основные возможности:
//   - Ошибки нарушения структуры дерева (1***): вставка за границей блока, отсутствие
//     метода format у контейнера, превышение числа итераций оптимизации.
//   - Ошибки реестра форматов (2***): неизвестный тип узла, некорректное определение,
//     цикл обязательных контейнеров.
//   - Ошибки правил (3***): запрет форматирования скриптом, ошибка выполнения скрипта.
//   - Функция для форматирования сообщений об ошибках с использованием аргументов.
package apierrors

import (
	"fmt"
	"strings"
)

type DefinedError struct {
	Code  int    `json:"code"`
	Err   string `json:"error"`
	RuErr string `json:"ru_error,omitempty"`
}

func (e DefinedError) Error() string {
	return e.Err
}

// Is сравнивает ошибки по коду, чтобы отформатированные копии оставались сопоставимыми.
func (e DefinedError) Is(target error) bool {
	t, ok := target.(DefinedError)
	return ok && t.Code == e.Code
}

var (
	// 1*** - tree structure errors
	ErrInsertBoundary   = DefinedError{Code: 1001, Err: "attempt to insertAt after block boundaries", RuErr: "Попытка вставки за границей блока"}
	ErrIsolateBoundary  = DefinedError{Code: 1002, Err: "attempt to isolate at end", RuErr: "Попытка выделить участок за концом узла"}
	ErrMissingFormat    = DefinedError{Code: 1003, Err: "parent blot %s missing 'format' method", RuErr: "Родительский узел %s не поддерживает форматирование"}
	ErrCannotWrap       = DefinedError{Code: 1004, Err: "cannot wrap %s", RuErr: "Невозможно обернуть узлом %s"}
	ErrMaxOptimize      = DefinedError{Code: 1005, Err: "maximum optimize iterations reached", RuErr: "Превышено число итераций оптимизации"}
	ErrDetached         = DefinedError{Code: 1006, Err: "blot %s is not attached to a parent", RuErr: "Узел %s не присоединен к дереву"}
	ErrNotParent        = DefinedError{Code: 1007, Err: "blot %s cannot hold children", RuErr: "Узел %s не может содержать дочерние узлы"}
	ErrIndexOutOfBounds = DefinedError{Code: 1008, Err: "index %d out of bounds", RuErr: "Индекс %d вне допустимого диапазона"}

	// 2*** - registry errors
	ErrUnknownBlot            = DefinedError{Code: 2001, Err: "unable to create %s blot", RuErr: "Невозможно создать узел %s"}
	ErrInvalidDefinition      = DefinedError{Code: 2002, Err: "invalid definition: %s", RuErr: "Некорректное определение: %s"}
	ErrRequiredContainerCycle = DefinedError{Code: 2003, Err: "required container cycle at %s", RuErr: "Цикл обязательных контейнеров на %s"}
	ErrMissingTagName         = DefinedError{Code: 2004, Err: "blot definition %s missing tagName", RuErr: "В определении узла %s не указан тег"}

	// 3*** - rules errors
	ErrFormatScriptFail       = DefinedError{Code: 3001, Err: "format prohibited by rules script", RuErr: "Форматирование запрещено скриптом правил"}
	ErrFormatCustomScriptFail = DefinedError{Code: 3002, Err: "%s", RuErr: "%s"}
	ErrScriptTimeout          = DefinedError{Code: 3003, Err: "rules script timed out", RuErr: "Превышено время выполнения скрипта правил"}
)

func (e DefinedError) WithFormattedMessage(args ...interface{}) DefinedError {
	if len(args) > 0 {
		e.Err = fmt.Sprintf(e.Err, args...)
		e.RuErr = fmt.Sprintf(e.RuErr, args...)
	} else {
		e.Err = strings.Replace(e.Err, "%s", "", -1)
		e.RuErr = strings.Replace(e.RuErr, "%s", "", -1)
	}
	return e
}

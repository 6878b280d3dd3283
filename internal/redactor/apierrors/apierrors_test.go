package apierrors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithFormattedMessage(t *testing.T) {
	err := ErrMissingFormat.WithFormattedMessage("list")
	assert.Equal(t, "parent blot list missing 'format' method", err.Error())
	assert.Equal(t, "Родительский узел list не поддерживает форматирование", err.RuErr)
	assert.Equal(t, "parent blot %s missing 'format' method", ErrMissingFormat.Err)

	empty := ErrFormatCustomScriptFail.WithFormattedMessage()
	assert.Empty(t, empty.Err)
}

func TestIsByCode(t *testing.T) {
	err := fmt.Errorf("insert: %w", ErrIndexOutOfBounds.WithFormattedMessage(12))
	assert.ErrorIs(t, err, ErrIndexOutOfBounds)
	assert.NotErrorIs(t, err, ErrInsertBoundary)
	assert.Contains(t, err.Error(), "index 12 out of bounds")
}

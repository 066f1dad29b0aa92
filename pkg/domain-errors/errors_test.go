package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type customErr struct{}

func (customErr) Error() string   { return "custom" }
func (customErr) ErrorCode() Code { return CodeDuplicatePayment }

func TestHasCode(t *testing.T) {
	t.Run("matches direct code", func(t *testing.T) {
		err := New(CodeNotFound, "missing")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeInternal))
	})

	t.Run("matches through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", New(CodeConflict, "taken"))
		assert.True(t, HasCode(err, CodeConflict))
	})

	t.Run("matches inner code of wrapped coded error", func(t *testing.T) {
		err := Wrap(customErr{}, CodeInvalidCode, "scan failed")
		assert.True(t, HasCode(err, CodeInvalidCode))
		assert.True(t, HasCode(err, CodeDuplicatePayment))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.False(t, HasCode(nil, CodeInternal))
	})
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	assert.Equal(t, CodeDuplicatePayment, CodeOf(fmt.Errorf("x: %w", customErr{})))
	assert.Equal(t, CodeInvalidCode, CodeOf(Wrap(customErr{}, CodeInvalidCode, "outer")))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "load trader: db down", Wrap(errors.New("db down"), CodeInternal, "load trader").Error())
	assert.Equal(t, "missing", New(CodeNotFound, "missing").Error())
}

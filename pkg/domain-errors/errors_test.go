package domainerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	base := errors.New("boom")
	wrapped := Wrap(base, CodeValidation, "content is required")

	t.Run("matches direct code", func(t *testing.T) {
		assert.True(t, HasCode(wrapped, CodeValidation))
		assert.False(t, HasCode(wrapped, CodeInternal))
	})

	t.Run("matches through fmt wrapping", func(t *testing.T) {
		err := errors.Join(errors.New("outer"), wrapped)
		assert.True(t, HasCode(err, CodeValidation))
	})

	t.Run("keeps underlying error reachable", func(t *testing.T) {
		assert.ErrorIs(t, wrapped, base)
	})

	t.Run("plain errors are internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(base))
		assert.Empty(t, MessageOf(base))
	})
}

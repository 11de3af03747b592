package uid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	Init(1)

	a := Generate()
	b := Generate()
	assert.NotEqual(t, a, b)
	assert.Greater(t, b, a)
}

func TestParse(t *testing.T) {
	t.Run("round trips formatted ids", func(t *testing.T) {
		Init(1)
		id := Generate()

		got, err := Parse(Format(id))
		require.NoError(t, err)
		assert.Equal(t, id, got)
	})

	t.Run("trims whitespace", func(t *testing.T) {
		got, err := Parse(" 42 ")
		require.NoError(t, err)
		assert.Equal(t, int64(42), got)
	})

	for _, raw := range []string{"", "abc", "-5", "0", "12.5"} {
		t.Run("rejects "+raw, func(t *testing.T) {
			_, err := Parse(raw)
			assert.ErrorIs(t, err, ErrInvalidID)
		})
	}
}

package typesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceTotalNeverErrors(t *testing.T) {
	at := ArrowOptions{}

	v, err := Coerce("not-a-number", Int64, at)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = Coerce("NaN", Float64, at)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = Coerce("garbage", Date, at)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestCoerceBoolean(t *testing.T) {
	v, err := Coerce("YES", Boolean, ArrowOptions{})
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = Coerce("0", Boolean, ArrowOptions{})
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

func TestCoerceInteger(t *testing.T) {
	v, err := Coerce("42", Int64, ArrowOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	v, err = Coerce("42", Uint8, ArrowOptions{})
	require.NoError(t, err)
	assert.Equal(t, uint64(42), v)

	v, err = Coerce("-5", Uint32, ArrowOptions{})
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestCoerceNilIsNil(t *testing.T) {
	v, err := Coerce(nil, String, ArrowOptions{})
	require.NoError(t, err)
	assert.Nil(t, v)
}

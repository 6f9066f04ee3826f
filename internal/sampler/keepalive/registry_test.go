package keepalive

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPinRelease(t *testing.T) {
	r := NewRegistry(zerolog.Nop())

	owner := []int{1, 2, 3}
	h, err := r.Pin(owner)
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, 1, r.Size())

	require.NoError(t, r.Release(h))
	assert.Equal(t, 0, r.Size())
}

func TestReleaseTwice(t *testing.T) {
	r := NewRegistry(zerolog.Nop())

	h, err := r.Pin("owner")
	require.NoError(t, err)
	require.NoError(t, r.Release(h))

	assert.ErrorIs(t, r.Release(h), ErrUnknownHandle)
}

func TestReleaseForeignHandle(t *testing.T) {
	r := NewRegistry(zerolog.Nop())

	assert.Error(t, r.Release("not a handle"))
}

func TestPinNilOwner(t *testing.T) {
	r := NewRegistry(zerolog.Nop())

	_, err := r.Pin(nil)
	assert.Error(t, err)
}

func TestIndependentHandles(t *testing.T) {
	r := NewRegistry(zerolog.Nop())

	h1, err := r.Pin("a")
	require.NoError(t, err)
	h2, err := r.Pin("b")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
	assert.Equal(t, 2, r.Size())

	require.NoError(t, r.Release(h1))
	assert.Equal(t, 1, r.Size())
	require.NoError(t, r.Release(h2))
	assert.Equal(t, 0, r.Size())
}

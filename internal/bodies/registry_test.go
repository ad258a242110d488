package bodies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryGet(t *testing.T) {
	r := NewRegistry()

	t.Run("known body", func(t *testing.T) {
		b, err := r.Get("mars")
		require.NoError(t, err)
		assert.Equal(t, "Mars", b.Name)
		assert.Contains(t, b.TileURL, "{z}")
	})

	t.Run("case insensitive", func(t *testing.T) {
		b, err := r.Get("  Moon ")
		require.NoError(t, err)
		assert.Equal(t, "moon", b.Key)
	})

	t.Run("unknown body", func(t *testing.T) {
		_, err := r.Get("pluto")
		assert.ErrorIs(t, err, ErrUnknownBody)
	})
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry()

	list := r.List()
	require.Len(t, list, 3)

	// Registration order is stable.
	assert.Equal(t, "mars", list[0].Key)
	assert.Equal(t, "moon", list[1].Key)
	assert.Equal(t, "mercury", list[2].Key)

	for _, b := range list {
		assert.True(t, r.Has(b.Key))
		assert.NotEmpty(t, b.Attribution)
		assert.Greater(t, b.MaxZoom, 0)
	}
}

package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Barap1/UniExplorer/internal/annotations/domain"
)

func ann(id string) domain.Annotation {
	return domain.Annotation{ID: id, Body: "mars", Text: "t", Author: "a"}
}

func TestMarkerSetApply(t *testing.T) {
	t.Run("initial snapshot adds everything", func(t *testing.T) {
		m := NewMarkerSet()

		diff := m.Apply([]domain.Annotation{ann("a"), ann("b"), ann("c")})
		assert.Len(t, diff.Added, 3)
		assert.Empty(t, diff.Removed)
		assert.Equal(t, 3, m.Count())
	})

	t.Run("unchanged documents are left untouched", func(t *testing.T) {
		m := NewMarkerSet()
		m.Apply([]domain.Annotation{ann("a"), ann("b")})

		diff := m.Apply([]domain.Annotation{ann("a"), ann("b")})
		assert.Empty(t, diff.Added)
		assert.Empty(t, diff.Removed)
		assert.Equal(t, 2, m.Count())
	})

	t.Run("keyed diff adds new and removes missing", func(t *testing.T) {
		m := NewMarkerSet()
		m.Apply([]domain.Annotation{ann("a"), ann("b"), ann("c")})

		diff := m.Apply([]domain.Annotation{ann("b"), ann("d")})
		require.Len(t, diff.Added, 1)
		assert.Equal(t, "d", diff.Added[0].ID)
		assert.Equal(t, []string{"a", "c"}, diff.Removed)
		assert.Equal(t, 2, m.Count())
	})

	t.Run("count always equals the latest snapshot", func(t *testing.T) {
		m := NewMarkerSet()

		snapshots := [][]domain.Annotation{
			{ann("a")},
			{ann("a"), ann("b"), ann("c")},
			{},
			{ann("z")},
		}
		for _, snap := range snapshots {
			m.Apply(snap)
			assert.Equal(t, len(snap), m.Count())
		}
	})
}

func TestMarkerSetClear(t *testing.T) {
	m := NewMarkerSet()
	m.Apply([]domain.Annotation{ann("b"), ann("a")})

	removed := m.Clear()
	assert.Equal(t, []string{"a", "b"}, removed)
	assert.Equal(t, 0, m.Count())
	assert.Empty(t, m.All())
}

func TestMarkerSetAllSorted(t *testing.T) {
	m := NewMarkerSet()
	m.Apply([]domain.Annotation{ann("c"), ann("a"), ann("b")})

	all := m.All()
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "b", all[1].ID)
	assert.Equal(t, "c", all[2].ID)
}

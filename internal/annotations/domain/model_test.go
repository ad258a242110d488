package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDoc(t *testing.T) {
	t.Run("full document", func(t *testing.T) {
		now := time.Now()
		a, ok := FromDoc("doc1", map[string]interface{}{
			"lat":       float64(12.5),
			"lng":       float64(-44.25),
			"text":      "Olympus Mons",
			"author":    "Ada",
			"body":      "mars",
			"userId":    "uid-1",
			"createdAt": now,
		})
		require.True(t, ok)
		assert.Equal(t, "doc1", a.ID)
		assert.Equal(t, 12.5, a.Lat)
		assert.Equal(t, -44.25, a.Lng)
		assert.Equal(t, "Olympus Mons", a.Text)
		assert.Equal(t, "Ada", a.Author)
		assert.Equal(t, "mars", a.Body)
		assert.Equal(t, "uid-1", a.UserID)
		assert.Equal(t, now, a.CreatedAt)
	})

	t.Run("missing display fields get defaults", func(t *testing.T) {
		a, ok := FromDoc("doc2", map[string]interface{}{
			"lat": float64(0),
			"lng": float64(0),
		})
		require.True(t, ok)
		assert.Equal(t, DefaultText, a.Text)
		assert.Equal(t, DefaultAuthor, a.Author)
	})

	t.Run("blank display fields get defaults", func(t *testing.T) {
		a, ok := FromDoc("doc3", map[string]interface{}{
			"lat":    float64(1),
			"lng":    float64(1),
			"text":   "   ",
			"author": "",
		})
		require.True(t, ok)
		assert.Equal(t, DefaultText, a.Text)
		assert.Equal(t, DefaultAuthor, a.Author)
	})

	t.Run("integer coordinates are accepted", func(t *testing.T) {
		a, ok := FromDoc("doc4", map[string]interface{}{
			"lat": int64(45),
			"lng": int(-90),
		})
		require.True(t, ok)
		assert.Equal(t, 45.0, a.Lat)
		assert.Equal(t, -90.0, a.Lng)
	})

	t.Run("missing coordinates reject the document", func(t *testing.T) {
		_, ok := FromDoc("doc5", map[string]interface{}{
			"text": "lost in space",
		})
		assert.False(t, ok)
	})
}

func TestCreateAnnotationRequestValidate(t *testing.T) {
	valid := CreateAnnotationRequest{Lat: 10, Lng: 20, Text: "crater", Body: "moon"}

	t.Run("valid request", func(t *testing.T) {
		r := valid
		assert.NoError(t, r.Validate())
	})

	t.Run("empty text", func(t *testing.T) {
		r := valid
		r.Text = "  \t "
		assert.ErrorIs(t, r.Validate(), ErrEmptyText)
	})

	t.Run("latitude out of range", func(t *testing.T) {
		r := valid
		r.Lat = 90.01
		assert.ErrorIs(t, r.Validate(), ErrInvalidCoordinates)
	})

	t.Run("longitude out of range", func(t *testing.T) {
		r := valid
		r.Lng = -180.5
		assert.ErrorIs(t, r.Validate(), ErrInvalidCoordinates)
	})

	t.Run("missing body", func(t *testing.T) {
		r := valid
		r.Body = ""
		assert.ErrorIs(t, r.Validate(), ErrUnknownBody)
	})
}

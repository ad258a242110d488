package domain

import (
	"strings"
	"time"
)

const (
	// Defaults applied at the store boundary when a document is missing
	// optional display fields.
	DefaultText   = "No description"
	DefaultAuthor = "Anonymous"
)

// Annotation is a user-submitted point of interest tied to exactly one
// celestial body. Documents are insert-only: never updated, never deleted.
type Annotation struct {
	ID        string    `json:"id"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateAnnotationRequest carries the client-supplied fields of a new
// annotation. Author, user id and timestamp come from the session and the
// store, never from the request body.
type CreateAnnotationRequest struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Text string  `json:"text"`
	Body string  `json:"body"`
}

// Validate checks the client-controlled fields of a new annotation.
func (r *CreateAnnotationRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return ErrEmptyText
	}
	if r.Lat < -90 || r.Lat > 90 {
		return ErrInvalidCoordinates
	}
	if r.Lng < -180 || r.Lng > 180 {
		return ErrInvalidCoordinates
	}
	if strings.TrimSpace(r.Body) == "" {
		return ErrUnknownBody
	}
	return nil
}

// FromDoc parses a loosely-typed store document into a strict Annotation,
// applying the defaulting rules for missing display fields. It returns false
// when the document has no usable coordinates; such documents are skipped by
// callers rather than rendered as half-built markers.
func FromDoc(id string, data map[string]interface{}) (Annotation, bool) {
	lat, okLat := asFloat(data["lat"])
	lng, okLng := asFloat(data["lng"])
	if !okLat || !okLng {
		return Annotation{}, false
	}

	a := Annotation{
		ID:     id,
		Lat:    lat,
		Lng:    lng,
		Text:   asString(data["text"], DefaultText),
		Author: asString(data["author"], DefaultAuthor),
		Body:   asString(data["body"], ""),
		UserID: asString(data["userId"], ""),
	}

	if ts, ok := data["createdAt"].(time.Time); ok {
		a.CreatedAt = ts
	}

	return a, true
}

// ToDoc flattens an annotation into the store's field layout. CreatedAt is
// deliberately absent: the store assigns it server-side.
func (a Annotation) ToDoc() map[string]interface{} {
	return map[string]interface{}{
		"lat":    a.Lat,
		"lng":    a.Lng,
		"text":   a.Text,
		"author": a.Author,
		"body":   a.Body,
		"userId": a.UserID,
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

func asString(v interface{}, def string) string {
	if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return def
}

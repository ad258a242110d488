package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Barap1/UniExplorer/internal/annotations/domain"
	"github.com/Barap1/UniExplorer/internal/annotations/service"
	"github.com/Barap1/UniExplorer/internal/auth"
	"github.com/Barap1/UniExplorer/internal/bodies"
)

type memStore struct {
	created []domain.Annotation
	items   []domain.Annotation
}

func (m *memStore) Create(_ context.Context, a *domain.Annotation) (*domain.Annotation, error) {
	stored := *a
	stored.ID = "new-id"
	m.created = append(m.created, stored)
	return &stored, nil
}

func (m *memStore) ListByBody(_ context.Context, body, userID string) ([]domain.Annotation, error) {
	var out []domain.Annotation
	for _, a := range m.items {
		if a.Body == body && (userID == "" || a.UserID == userID) {
			out = append(out, a)
		}
	}
	return out, nil
}

// fakeSession stands in for the auth middleware in tests.
func fakeSession(uid, name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid != "" {
			c.Set(auth.CtxFirebaseUID, uid)
			c.Set(auth.CtxDisplayName, name)
		}
		c.Next()
	}
}

func setupRouter(store *memStore, uid, name string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	svc := service.NewAnnotationService(store, bodies.NewRegistry())
	h := New(svc)

	r := gin.New()
	g := r.Group("/annotations")
	g.Use(fakeSession(uid, name))
	g.GET("", h.list)
	g.POST("", h.create)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestCreateHandler(t *testing.T) {
	t.Run("signed-in write succeeds", func(t *testing.T) {
		store := &memStore{}
		r := setupRouter(store, "uid-1", "Ada")

		rr := do(r, http.MethodPost, "/annotations", `{"lat":4.5,"lng":137.4,"text":"Gale Crater","body":"mars"}`)
		require.Equal(t, http.StatusCreated, rr.Code)

		var resp struct {
			OK         bool              `json:"ok"`
			Annotation domain.Annotation `json:"annotation"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.True(t, resp.OK)
		assert.Equal(t, "new-id", resp.Annotation.ID)
		assert.Equal(t, "Ada", resp.Annotation.Author)
		assert.Len(t, store.created, 1)
	})

	t.Run("anonymous write produces one notice and no write", func(t *testing.T) {
		store := &memStore{}
		r := setupRouter(store, "", "")

		rr := do(r, http.MethodPost, "/annotations", `{"lat":1,"lng":1,"text":"x","body":"mars"}`)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Empty(t, store.created)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, false, resp["ok"])
		assert.NotEmpty(t, resp["error"])
	})

	t.Run("empty text produces no write", func(t *testing.T) {
		store := &memStore{}
		r := setupRouter(store, "uid-1", "Ada")

		rr := do(r, http.MethodPost, "/annotations", `{"lat":1,"lng":1,"text":"   ","body":"mars"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, store.created)
	})

	t.Run("malformed json", func(t *testing.T) {
		store := &memStore{}
		r := setupRouter(store, "uid-1", "Ada")

		rr := do(r, http.MethodPost, "/annotations", `{"lat":`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, store.created)
	})
}

func TestListHandler(t *testing.T) {
	store := &memStore{items: []domain.Annotation{
		{ID: "1", Body: "mars", UserID: "uid-1"},
		{ID: "2", Body: "mars", UserID: "uid-2"},
		{ID: "3", Body: "moon", UserID: "uid-1"},
	}}

	t.Run("lists by body", func(t *testing.T) {
		r := setupRouter(store, "", "")

		rr := do(r, http.MethodGet, "/annotations?body=mars", "")
		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Count)
	})

	t.Run("mine filter needs a session", func(t *testing.T) {
		r := setupRouter(store, "", "")
		rr := do(r, http.MethodGet, "/annotations?body=mars&mine=true", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("mine filter with session", func(t *testing.T) {
		r := setupRouter(store, "uid-1", "Ada")
		rr := do(r, http.MethodGet, "/annotations?body=mars&mine=true", "")
		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Count)
	})

	t.Run("missing body parameter", func(t *testing.T) {
		r := setupRouter(store, "", "")
		assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/annotations", "").Code)
	})

	t.Run("unknown body", func(t *testing.T) {
		r := setupRouter(store, "", "")
		assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/annotations?body=pluto", "").Code)
	})
}

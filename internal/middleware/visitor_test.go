package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visitorEcho() http.Handler {
	return Visitor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetVisitorID(r.Context())))
	}))
}

func TestVisitor(t *testing.T) {
	t.Run("issues a cookie on first visit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		visitorEcho().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, VisitorCookieName, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, cookies[0].Value, rec.Body.String())

		_, err := uuid.Parse(cookies[0].Value)
		assert.NoError(t, err)
	})

	t.Run("reuses an existing cookie", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: VisitorCookieName, Value: id})

		rec := httptest.NewRecorder()
		visitorEcho().ServeHTTP(rec, req)

		assert.Empty(t, rec.Result().Cookies())
		assert.Equal(t, id, rec.Body.String())
	})

	t.Run("replaces a malformed cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: VisitorCookieName, Value: "not-a-uuid"})

		rec := httptest.NewRecorder()
		visitorEcho().ServeHTTP(rec, req)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.NotEqual(t, "not-a-uuid", cookies[0].Value)
	})

	t.Run("missing from a bare context", func(t *testing.T) {
		assert.Empty(t, GetVisitorID(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
	})
}

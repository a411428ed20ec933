package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gabrieexl/proyecto-calidad/internal/handler"
)

func TestSetSession_CookieAttributes(t *testing.T) {
	for _, production := range []bool{false, true} {
		h := &handler.SessionHandler{Production: production}

		req := httptest.NewRequest(http.MethodPost, "/api/set-session", strings.NewReader(`{"token":"abc"}`))
		w := httptest.NewRecorder()
		h.SetSession(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)

		c := cookies[0]
		assert.Equal(t, handler.SessionCookie, c.Name)
		assert.Equal(t, "abc", c.Value)
		assert.Equal(t, "/", c.Path)
		assert.Equal(t, 86400, c.MaxAge)
		assert.True(t, c.HttpOnly)
		assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
		assert.Equal(t, production, c.Secure)
	}
}

func TestSetSession_RejectsMissingToken(t *testing.T) {
	h := &handler.SessionHandler{}

	for _, body := range []string{`{}`, `{"token":"  "}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/api/set-session", strings.NewReader(body))
		w := httptest.NewRecorder()
		h.SetSession(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Empty(t, w.Result().Cookies())
	}
}

func TestRequireSession(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("page without session redirects", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.RequireSession(ok).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard/clientes", nil))

		assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
		assert.Equal(t, "/?from=%2Fdashboard%2Fclientes", w.Header().Get("Location"))
	})

	t.Run("api without session is unauthorized", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.RequireAPISession(ok).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/clientes", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("session passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: handler.SessionCookie, Value: "abc"})

		w := httptest.NewRecorder()
		handler.RequireSession(handler.RequireAPISession(ok)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.Equal(t, "abc", handler.SessionToken(req))
	})
}

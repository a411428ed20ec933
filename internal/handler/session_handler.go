// internal/handler/session_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/Gabrieexl/proyecto-calidad/internal/service"
)

const SessionCookie = "__session"

// SessionHandler stores the identity provider's token in an HTTP-only cookie.
type SessionHandler struct {
	Production bool
}

func (h *SessionHandler) SetSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if strings.TrimSpace(body.Token) == "" {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "token is required"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    body.Token,
		Path:     "/",
		MaxAge:   int(service.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.Production,
		SameSite: http.SameSiteStrictMode,
	})
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SessionToken returns the session cookie value, or "".
func SessionToken(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// RequireSession redirects page requests without a session to the login page,
// remembering where they came from.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionToken(r) == "" {
			http.Redirect(w, r, "/?from="+url.QueryEscape(r.URL.Path), http.StatusTemporaryRedirect)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAPISession rejects API requests without a session.
func RequireAPISession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionToken(r) == "" {
			WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "session required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

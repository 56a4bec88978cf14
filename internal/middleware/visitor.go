package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

// VisitorContextKey holds the visitor id in request context
const VisitorContextKey contextKey = "visitor"

// VisitorCookieName is the cookie identifying an anonymous visitor
const VisitorCookieName = "pf_visitor"

const visitorMaxAge = 365 * 24 * 60 * 60

// GetVisitorID retrieves the visitor id from request context
func GetVisitorID(ctx context.Context) string {
	if id, ok := ctx.Value(VisitorContextKey).(string); ok {
		return id
	}
	return ""
}

// WithVisitorID returns a context carrying the visitor id
func WithVisitorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, VisitorContextKey, id)
}

// Visitor makes sure every request has a visitor id, issuing a cookie
// on the first visit. Malformed cookie values are replaced.
func Visitor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if cookie, err := r.Cookie(VisitorCookieName); err == nil {
			if parsed, err := uuid.Parse(cookie.Value); err == nil {
				id = parsed.String()
			}
		}

		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     VisitorCookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   r.TLS != nil,
				SameSite: http.SameSiteLaxMode,
				MaxAge:   visitorMaxAge,
			})
		}

		next.ServeHTTP(w, r.WithContext(WithVisitorID(r.Context(), id)))
	})
}

package handler

import (
	"context"
	"net/http"
)

// AuthCookieName is the HttpOnly session cookie holding the upstream
// bearer token. The browser never reads it; only this proxy does.
const AuthCookieName = "auth-token"

type contextKey string

const sessionTokenKey contextKey = "sessionToken"

// SessionTokenMiddleware copies the auth cookie's value into the
// request context. It never rejects: routes that need a session fail
// with 401 downstream, public routes just see an empty token.
func SessionTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(AuthCookieName); err == nil && cookie.Value != "" {
			ctx := context.WithValue(r.Context(), sessionTokenKey, cookie.Value)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// SessionTokenFromContext extracts the session token, empty when the
// request carried no auth cookie.
func SessionTokenFromContext(ctx context.Context) string {
	v, _ := ctx.Value(sessionTokenKey).(string)
	return v
}

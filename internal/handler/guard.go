package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/makeapi/makeapi-bff-go/internal/infra/observability"
	"github.com/makeapi/makeapi-bff-go/internal/service"

	"go.uber.org/zap"
)

var protectedPrefixes = []string{"/home", "/create"}

// SessionGuard enforces page-level access on the console routes:
// protected pages require a live session and bounce to /login with the
// original path in ?next=, and /login bounces an already-authenticated
// visitor to /home. The session is validated against the identity
// route, not by mere cookie presence, so a stale cookie still redirects.
func SessionGuard(authSvc *service.AuthService, metrics *observability.Metrics, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			if strings.HasPrefix(path, "/api") ||
				strings.HasPrefix(path, "/assets") ||
				strings.HasPrefix(path, "/favicon") {
				next.ServeHTTP(w, r)
				return
			}

			if isProtected(path) {
				if !hasSession(r, authSvc) {
					metrics.IncrGuardDecision("to_login")
					logger.Debug("guard: redirecting to login", zap.String("path", path))
					http.Redirect(w, r, "/login?next="+url.QueryEscape(path), http.StatusSeeOther)
					return
				}
				metrics.IncrGuardDecision("allowed")
				next.ServeHTTP(w, r)
				return
			}

			if path == "/login" && hasSession(r, authSvc) {
				metrics.IncrGuardDecision("to_home")
				http.Redirect(w, r, "/home", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isProtected(path string) bool {
	for _, p := range protectedPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func hasSession(r *http.Request, authSvc *service.AuthService) bool {
	token := SessionTokenFromContext(r.Context())
	if token == "" {
		return false
	}
	identity, err := authSvc.WhoAmI(r.Context(), token)
	return err == nil && identity.ID != ""
}

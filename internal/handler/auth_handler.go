package handler

import (
	"errors"
	"net/http"

	"github.com/makeapi/makeapi-bff-go/internal/config"
	"github.com/makeapi/makeapi-bff-go/internal/domain"
	"github.com/makeapi/makeapi-bff-go/internal/service"

	"go.uber.org/zap"
)

// The auth routes keep the response shapes the web console was built
// against: login answers with the raw grant or {message, status},
// me/register answer with {success, user|message}.

type authMessage struct {
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
}

type meResponse struct {
	Success bool             `json:"success"`
	User    *domain.Identity `json:"user,omitempty"`
	Message string           `json:"message,omitempty"`
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, authMessage{Message: msg, Status: status})
}

// loginHandler exchanges credentials upstream and plants the session
// cookie. The token also goes in the body for API clients; browsers
// rely on the cookie alone.
func loginHandler(svc *service.AuthService, cfg *config.Config, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.LoginRequest
		if err := decodeBody(r, &req); err != nil {
			writeAuthError(w, http.StatusBadRequest, "Corpo da requisição inválido")
			return
		}

		grant, err := svc.Login(r.Context(), &req, r.Host, r.URL.Path)
		if err != nil {
			var validation *domain.ErrValidation
			var unauthenticated *domain.ErrUnauthenticated
			var configuration *domain.ErrConfiguration
			var upstream *domain.ErrUpstream
			var protocol *domain.ErrProtocol
			switch {
			case errors.As(err, &validation):
				writeAuthError(w, http.StatusBadRequest, validation.Message)
			case errors.As(err, &unauthenticated):
				writeAuthError(w, http.StatusUnauthorized, unauthenticated.Message)
			case errors.As(err, &configuration):
				writeAuthError(w, http.StatusInternalServerError, configuration.Message)
			case errors.As(err, &upstream):
				writeAuthError(w, upstream.HTTPStatus(), upstream.Message)
			case errors.As(err, &protocol):
				writeAuthError(w, http.StatusBadGateway, protocol.Message)
			default:
				logger.Error("login: unhandled error", zap.Error(err))
				writeAuthError(w, http.StatusInternalServerError, "Erro interno do servidor")
			}
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     AuthCookieName,
			Value:    grant.AccessToken,
			Path:     "/",
			MaxAge:   int(cfg.CookieMaxAge.Seconds()),
			HttpOnly: true,
			Secure:   cfg.IsProduction(),
			SameSite: http.SameSiteLaxMode,
		})

		status := grant.Status
		if status == 0 {
			status = http.StatusOK
		}
		writeJSON(w, http.StatusOK, domain.TokenGrant{
			AccessToken: grant.AccessToken,
			Status:      status,
			ID:          grant.ID,
		})
	}
}

// logoutHandler clears the session cookie and the cached identity.
func logoutHandler(svc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.InvalidateSession(SessionTokenFromContext(r.Context()))

		http.SetCookie(w, &http.Cookie{
			Name:     AuthCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusOK, meResponse{Success: true})
	}
}

// meHandler resolves the session cookie into the authenticated user.
func meHandler(svc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := SessionTokenFromContext(r.Context())
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, meResponse{Success: false, Message: "Token de autenticação não encontrado"})
			return
		}

		identity, err := svc.WhoAmI(r.Context(), token)
		if err != nil {
			var unauthenticated *domain.ErrUnauthenticated
			var upstream *domain.ErrUpstream
			var protocol *domain.ErrProtocol
			switch {
			case errors.As(err, &unauthenticated):
				writeJSON(w, http.StatusUnauthorized, meResponse{Success: false, Message: unauthenticated.Message})
			case errors.As(err, &upstream):
				writeJSON(w, upstream.HTTPStatus(), meResponse{Success: false, Message: upstream.Message})
			case errors.As(err, &protocol):
				writeJSON(w, http.StatusBadGateway, meResponse{Success: false, Message: protocol.Message})
			default:
				logger.Error("me: unhandled error", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, meResponse{Success: false, Message: "Erro interno do servidor"})
			}
			return
		}

		writeJSON(w, http.StatusOK, meResponse{Success: true, User: identity})
	}
}

// registerHandler runs the stubbed registration. Deliberately no
// cookie: the minted token is not an upstream session.
func registerHandler(svc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.RegisterRequest
		if err := decodeBody(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, domain.RegisterResponse{Success: false, Message: "Corpo da requisição inválido"})
			return
		}

		resp, err := svc.Register(r.Context(), &req)
		if err != nil {
			var validation *domain.ErrValidation
			if errors.As(err, &validation) {
				writeJSON(w, http.StatusBadRequest, domain.RegisterResponse{Success: false, Message: validation.Message})
				return
			}
			logger.Error("register: unhandled error", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, domain.RegisterResponse{Success: false, Message: "Erro interno do servidor"})
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

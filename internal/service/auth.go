// Package service — AuthService handles login, session resolution and
// the stubbed registration flow. The upstream MakeAPI service owns the
// accounts; this layer validates, guards and enriches.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/makeapi/makeapi-bff-go/internal/domain"
	"github.com/makeapi/makeapi-bff-go/internal/infra/observability"
	"github.com/makeapi/makeapi-bff-go/internal/port"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var authTracer = otel.Tracer("service/auth")

const registrationTokenTTL = 7 * 24 * time.Hour

// AuthService orchestrates authentication flows.
type AuthService struct {
	gateway       port.AuthGateway
	identityCache port.Cache[*domain.Identity]
	upstreamBase  *url.URL
	jwtSecret     []byte
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// NewAuthService creates a new auth service. upstreamBase may be empty
// (the memstore backend has no URL); the self-loop guard is then inert.
func NewAuthService(
	gateway port.AuthGateway,
	identityCache port.Cache[*domain.Identity],
	upstreamBase string,
	jwtSecret string,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *AuthService {
	base, err := url.Parse(upstreamBase)
	if err != nil || upstreamBase == "" {
		base = nil
	}
	return &AuthService{
		gateway:       gateway,
		identityCache: identityCache,
		upstreamBase:  base,
		jwtSecret:     []byte(jwtSecret),
		metrics:       metrics,
		logger:        logger,
	}
}

// Login validates the credentials, refuses to proxy to itself, and
// exchanges them upstream for a bearer token. The caller's own host and
// path feed the self-loop check.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest, requestHost, requestPath string) (*domain.TokenGrant, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, &domain.ErrValidation{Field: "credentials", Message: "Email e senha são obrigatórios"}
	}

	if s.loopsBack(requestHost, requestPath) {
		s.logger.Error("login: upstream base URL points back at this service",
			zap.String("upstream", s.upstreamBase.String()),
			zap.String("request_host", requestHost),
		)
		return nil, &domain.ErrConfiguration{Message: "Erro de configuração do servidor"}
	}

	grant, err := s.gateway.Login(ctx, req.Email, req.Password)
	if err != nil {
		s.countUpstreamError("login", err)
		return nil, err
	}

	s.logger.Info("login ok", zap.String("user_id", grant.ID))
	return grant, nil
}

// WhoAmI resolves the identity behind a session token. Results are
// cached for a short TTL keyed by a hash of the token, so a burst of
// page loads does not hammer the upstream "me" route. Endpoint and item
// data is never cached; identity is the only exception.
func (s *AuthService) WhoAmI(ctx context.Context, token string) (*domain.Identity, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.WhoAmI")
	defer span.End()

	if token == "" {
		return nil, &domain.ErrUnauthenticated{Message: "Não autenticado"}
	}

	key := tokenCacheKey(token)
	if cached, ok := s.identityCache.Get(key); ok {
		s.metrics.IncrCacheHit("identity")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("identity")

	identity, err := s.gateway.Me(ctx, token)
	if err != nil {
		s.countUpstreamError("me", err)
		return nil, err
	}

	identity.Name = deriveNameFromEmail(identity.Email)
	s.identityCache.Set(key, identity)
	return identity, nil
}

// InvalidateSession drops the cached identity for a token. Called on
// logout so a replayed cookie cannot read a stale cache entry.
func (s *AuthService) InvalidateSession(token string) {
	if token != "" {
		s.identityCache.Delete(tokenCacheKey(token))
	}
}

// Register is a local stub: the upstream has no registration route, so
// the contract is honored with a minted signed token and no session
// cookie. The token is not accepted by the upstream; it exists so the
// client-side flow completes.
func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.RegisterResponse, error) {
	_, span := authTracer.Start(ctx, "AuthService.Register")
	defer span.End()

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, &domain.ErrValidation{Field: "register", Message: "Todos os campos são obrigatórios"}
	}
	if len(req.Password) < 6 {
		return nil, &domain.ErrValidation{Field: "password", Message: "Senha deve ter pelo menos 6 caracteres"}
	}

	user := &domain.Identity{
		ID:    "user-" + uuid.NewString(),
		Email: req.Email,
		Name:  req.Name,
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"name":  user.Name,
		"iat":   now.Unix(),
		"exp":   now.Add(registrationTokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered (stub)", zap.String("user_id", user.ID))

	return &domain.RegisterResponse{
		Success: true,
		User:    user,
		Token:   token,
	}, nil
}

// loopsBack reports whether the login proxy target is this very route
// on this very host. Without the check a misconfigured base URL turns
// login into infinite recursion.
func (s *AuthService) loopsBack(requestHost, requestPath string) bool {
	if s.upstreamBase == nil || requestHost == "" {
		return false
	}
	targetPath := strings.TrimSuffix(s.upstreamBase.Path, "/") + "/api/auth/login"
	return strings.EqualFold(s.upstreamBase.Host, requestHost) && targetPath == requestPath
}

func (s *AuthService) countUpstreamError(operation string, err error) {
	var upstream *domain.ErrUpstream
	var protocol *domain.ErrProtocol
	if errors.As(err, &upstream) || errors.As(err, &protocol) {
		s.metrics.IncrUpstreamError(operation)
	}
}

func tokenCacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// deriveNameFromEmail builds a display name from the email local part:
// "joao.silva@x.dev" becomes "Joao Silva". The upstream stores no name.
func deriveNameFromEmail(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found || local == "" {
		return "Usuário"
	}
	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	if len(parts) == 0 {
		return "Usuário"
	}
	for i, p := range parts {
		r := []rune(p)
		r[0] = unicode.ToUpper(r[0])
		parts[i] = string(r)
	}
	return strings.Join(parts, " ")
}

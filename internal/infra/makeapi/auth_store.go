package makeapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/makeapi/makeapi-bff-go/internal/domain"
)

// Login exchanges credentials for a bearer token. Credential failures
// arrive as 401/403 and map to ErrUnauthenticated; a 2xx body that
// lacks the token or the user id is a broken upstream, not a rejection,
// and maps to ErrProtocol.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.TokenGrant, error) {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	payload := map[string]string{"email": email, "password": password}
	body, err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", payload, "")
	if err != nil {
		var upstream *domain.ErrUpstream
		if errors.As(err, &upstream) && (upstream.Status == http.StatusUnauthorized || upstream.Status == http.StatusForbidden) {
			return nil, &domain.ErrUnauthenticated{Message: upstream.Message}
		}
		return nil, err
	}

	var grant domain.TokenGrant
	if err := decodeObject(body, &grant); err != nil {
		return nil, err
	}
	if grant.AccessToken == "" || grant.ID == "" {
		return nil, &domain.ErrProtocol{Message: "Resposta da API não contém access_token/id"}
	}
	return &grant, nil
}

// Me resolves the identity behind a bearer token. The upstream names
// the id field "idUser" on this route; older deployments used "id".
func (c *Client) Me(ctx context.Context, token string) (*domain.Identity, error) {
	ctx, span := tracer.Start(ctx, "Me")
	defer span.End()

	body, err := c.doRequest(ctx, http.MethodGet, "/api/auth/me", nil, token)
	if err != nil {
		var upstream *domain.ErrUpstream
		if errors.As(err, &upstream) && (upstream.Status == http.StatusUnauthorized || upstream.Status == http.StatusForbidden) {
			return nil, &domain.ErrUnauthenticated{Message: "Não autenticado"}
		}
		return nil, err
	}

	var me struct {
		IDUser string `json:"idUser"`
		ID     string `json:"id"`
		Email  string `json:"email"`
	}
	if err := decodeObject(body, &me); err != nil {
		return nil, err
	}
	id := me.IDUser
	if id == "" {
		id = me.ID
	}
	if id == "" || me.Email == "" {
		return nil, &domain.ErrProtocol{Message: "Resposta da API não contém idUser/email"}
	}
	return &domain.Identity{ID: id, Email: me.Email}, nil
}

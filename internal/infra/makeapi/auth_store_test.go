package makeapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/makeapi/makeapi-bff-go/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authServer(loginBody, meBody string) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(loginBody))
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(meBody))
	})
	return httptest.NewServer(mux)
}

func TestLogin_Success(t *testing.T) {
	srv := authServer(`{"access_token":"tok-abc","status":200,"id":"u-1"}`, `{}`)
	defer srv.Close()

	grant, err := newTestClient(srv.URL).Login(context.Background(), "a@b.c", "senha")
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", grant.AccessToken)
	assert.Equal(t, "u-1", grant.ID)
}

func TestLogin_BodyWithoutTokenIsProtocolError(t *testing.T) {
	srv := authServer(`{"status":200}`, `{}`)
	defer srv.Close()

	_, err := newTestClient(srv.URL).Login(context.Background(), "a@b.c", "senha")
	var protocol *domain.ErrProtocol
	require.True(t, errors.As(err, &protocol), "got %v", err)
}

func TestLogin_BodyWithoutIDIsProtocolError(t *testing.T) {
	// A token with no user id is still a broken grant.
	srv := authServer(`{"access_token":"tok-abc","status":200}`, `{}`)
	defer srv.Close()

	_, err := newTestClient(srv.URL).Login(context.Background(), "a@b.c", "senha")
	var protocol *domain.ErrProtocol
	require.True(t, errors.As(err, &protocol), "got %v", err)
}

func TestLogin_UpstreamRejectionIsUnauthenticated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Credenciais inválidas","status":401}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Login(context.Background(), "a@b.c", "errada")
	var unauth *domain.ErrUnauthenticated
	require.True(t, errors.As(err, &unauth), "got %v", err)
	assert.Equal(t, "Credenciais inválidas", unauth.Message)
}

func TestMe_Success(t *testing.T) {
	srv := authServer(`{}`, `{"idUser":"u-1","email":"a@b.c"}`)
	defer srv.Close()

	identity, err := newTestClient(srv.URL).Me(context.Background(), "tok-abc")
	require.NoError(t, err)
	assert.Equal(t, "u-1", identity.ID)
	assert.Equal(t, "a@b.c", identity.Email)
}

func TestMe_LegacyIDFieldStillResolves(t *testing.T) {
	srv := authServer(`{}`, `{"id":"u-1","email":"a@b.c"}`)
	defer srv.Close()

	identity, err := newTestClient(srv.URL).Me(context.Background(), "tok-abc")
	require.NoError(t, err)
	assert.Equal(t, "u-1", identity.ID)
}

func TestMe_MissingFieldsIsProtocolError(t *testing.T) {
	// A 2xx body without idUser/email must not produce an anonymous
	// identity; it is a protocol violation surfaced as 502.
	for _, body := range []string{
		`{"success":true}`,
		`{"idUser":"u-1"}`,
		`{"email":"a@b.c"}`,
	} {
		srv := authServer(`{}`, body)
		_, err := newTestClient(srv.URL).Me(context.Background(), "tok-abc")
		srv.Close()

		var protocol *domain.ErrProtocol
		require.True(t, errors.As(err, &protocol), "body %s: got %v", body, err)
	}
}

package makeapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/makeapi/makeapi-bff-go/internal/domain"
	"github.com/makeapi/makeapi-bff-go/internal/infra/resilience"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(baseURL string) *Client {
	return NewClient(
		&http.Client{Timeout: 2 * time.Second},
		baseURL,
		resilience.NewCircuitBreaker("test", nil),
		zap.NewNop(),
	)
}

func TestDoRequest_ForwardsTokenAndDisablesCaching(t *testing.T) {
	var gotAuth, gotCache string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCache = r.Header.Get("Cache-Control")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.doRequest(context.Background(), http.MethodGet, "/api/endpoint", nil, "tok-123")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "no-store", gotCache)
}

func TestDoRequest_NoTokenMeansNoAuthHeader(t *testing.T) {
	var sawAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.doRequest(context.Background(), http.MethodGet, "/api/endpoint", nil, "")
	require.NoError(t, err)
	assert.False(t, sawAuth)
}

func TestDoRequest_PropagatesUpstreamStatusAndMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"título já existe"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.doRequest(context.Background(), http.MethodPost, "/api/endpoint", map[string]string{"title": "x"}, "tok")

	var upstream *domain.ErrUpstream
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusConflict, upstream.Status)
	assert.Equal(t, "título já existe", upstream.Message)
}

func TestDoRequest_BodyStatusOverridesHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Credenciais inválidas","status":401}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.doRequest(context.Background(), http.MethodPost, "/api/auth/login", map[string]string{}, "")

	var upstream *domain.ErrUpstream
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusUnauthorized, upstream.Status)
}

func TestDoRequest_NetworkFailureDefaultsToBadGateway(t *testing.T) {
	c := newTestClient("http://127.0.0.1:1")
	_, err := c.doRequest(context.Background(), http.MethodGet, "/api/endpoint", nil, "")

	var upstream *domain.ErrUpstream
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusBadGateway, upstream.HTTPStatus())
}

func TestDoRequest_BreakerOpensOnSustained5xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"boom"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	for i := 0; i < 6; i++ {
		_, _ = c.doRequest(context.Background(), http.MethodGet, "/api/endpoint", nil, "")
	}

	_, err := c.doRequest(context.Background(), http.MethodGet, "/api/endpoint", nil, "")
	var upstream *domain.ErrUpstream
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusServiceUnavailable, upstream.Status)
}

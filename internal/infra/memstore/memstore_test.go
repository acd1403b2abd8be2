package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/makeapi/makeapi-bff-go/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func login(t *testing.T, s *Store) string {
	t.Helper()
	grant, err := s.Login(context.Background(), "demo@makeapi.dev", "senha123")
	require.NoError(t, err)
	return grant.AccessToken
}

func TestLogin(t *testing.T) {
	s := New()

	token := login(t, s)
	assert.NotEmpty(t, token)

	me, err := s.Me(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "demo@makeapi.dev", me.Email)

	_, err = s.Login(context.Background(), "demo@makeapi.dev", "errada")
	var unauth *domain.ErrUnauthenticated
	assert.True(t, errors.As(err, &unauth))

	_, err = s.Me(context.Background(), "nonexistent-token")
	assert.True(t, errors.As(err, &unauth))
}

func TestMutationsRequireSession(t *testing.T) {
	s := New()

	_, err := s.CreateEndpoint(context.Background(), "bad-token", "Livros", []domain.EndpointField{
		{Title: "titulo", Tipo: domain.FieldString},
	})
	var unauth *domain.ErrUnauthenticated
	assert.True(t, errors.As(err, &unauth))
}

func TestDeleteEndpointCascadesToItems(t *testing.T) {
	s := New()
	token := login(t, s)

	items, err := s.QueryItems(context.Background(), token, "1")
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.NoError(t, s.DeleteEndpoint(context.Background(), token, "1"))

	items, err = s.QueryItems(context.Background(), token, "1")
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = s.GetItem(context.Background(), "1")
	var notFound *domain.ErrNotFound
	assert.True(t, errors.As(err, &notFound))

	// The other endpoint's items survive.
	items, err = s.QueryItems(context.Background(), token, "2")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestItemLifecycle(t *testing.T) {
	s := New()
	token := login(t, s)

	created, err := s.CreateItem(context.Background(), token, "1", map[string]any{
		"nome": "iPad", "preco": float64(3999),
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	patched, err := s.PatchItem(context.Background(), token, created.ID, map[string]any{
		"nome": "iPad Pro", "preco": float64(8999),
	})
	require.NoError(t, err)
	assert.Equal(t, "iPad Pro", patched.Data["nome"])

	require.NoError(t, s.DeleteItem(context.Background(), token, created.ID))

	_, err = s.GetItem(context.Background(), created.ID)
	var notFound *domain.ErrNotFound
	assert.True(t, errors.As(err, &notFound))
}

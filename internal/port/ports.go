// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the service
// layer from concrete implementations: the live MakeAPI proxy client in
// production, the in-memory fake in tests and local development.
package port

import (
	"context"

	"github.com/makeapi/makeapi-bff-go/internal/domain"
)

// AuthGateway exchanges credentials for a bearer token and resolves the
// identity behind one. The token is opaque to this application.
type AuthGateway interface {
	Login(ctx context.Context, email, password string) (*domain.TokenGrant, error)
	Me(ctx context.Context, token string) (*domain.Identity, error)
}

// EndpointStore provides CRUD on endpoint definitions. Mutations carry
// the caller's bearer token; reads are public upstream.
type EndpointStore interface {
	ListEndpoints(ctx context.Context) ([]domain.Endpoint, error)
	GetEndpoint(ctx context.Context, id string) (*domain.Endpoint, error)
	CreateEndpoint(ctx context.Context, token, title string, campos []domain.EndpointField) (*domain.Endpoint, error)
	UpdateEndpoint(ctx context.Context, token, id string, patch map[string]any) (*domain.Endpoint, error)
	DeleteEndpoint(ctx context.Context, token, id string) error
}

// ItemStore provides CRUD on endpoint items. Upstream addressing is
// flat (items are not nested under endpoints); listing by endpoint is a
// filtered query capped at QueryLimit results.
type ItemStore interface {
	QueryItems(ctx context.Context, token, endpointID string) ([]domain.EndpointItem, error)
	GetItem(ctx context.Context, itemID string) (*domain.EndpointItem, error)
	CreateItem(ctx context.Context, token, endpointID string, values map[string]any) (*domain.EndpointItem, error)
	PatchItem(ctx context.Context, token, itemID string, values map[string]any) (*domain.EndpointItem, error)
	DeleteItem(ctx context.Context, token, itemID string) error
}

// QueryLimit is the hard cap on filtered item queries. Endpoints with
// more items will not show the remainder; there is no pagination
// follow-up upstream.
const QueryLimit = 200

// Cache provides generic caching with TTL. Only identity lookups are
// cached; endpoint/item data always goes to the upstream.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

package makeapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/makeapi/makeapi-bff-go/internal/domain"
)

// ListEndpoints fetches every endpoint definition. The route is public
// upstream; no token travels with it.
func (c *Client) ListEndpoints(ctx context.Context) ([]domain.Endpoint, error) {
	ctx, span := tracer.Start(ctx, "ListEndpoints")
	defer span.End()

	body, err := c.doRequest(ctx, http.MethodGet, "/api/endpoint", nil, "")
	if err != nil {
		return nil, err
	}
	return decodeArray[domain.Endpoint](body)
}

// GetEndpoint fetches one endpoint definition by id.
func (c *Client) GetEndpoint(ctx context.Context, id string) (*domain.Endpoint, error) {
	ctx, span := tracer.Start(ctx, "GetEndpoint")
	defer span.End()

	body, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/endpoint/%s", id), nil, "")
	if err != nil {
		return nil, err
	}
	var ep domain.Endpoint
	if err := decodeObject(body, &ep); err != nil {
		return nil, err
	}
	return &ep, nil
}

// CreateEndpoint creates an endpoint definition owned by the caller.
func (c *Client) CreateEndpoint(ctx context.Context, token, title string, campos []domain.EndpointField) (*domain.Endpoint, error) {
	ctx, span := tracer.Start(ctx, "CreateEndpoint")
	defer span.End()

	payload := map[string]any{
		"title":  title,
		"campos": campos,
	}
	body, err := c.doRequest(ctx, http.MethodPost, "/api/endpoint", payload, token)
	if err != nil {
		return nil, err
	}
	var ep domain.Endpoint
	if err := decodeObject(body, &ep); err != nil {
		return nil, err
	}
	return &ep, nil
}

// UpdateEndpoint applies a partial update to an endpoint definition.
// The upstream accepts a full-resource PUT but tolerates sparse bodies.
func (c *Client) UpdateEndpoint(ctx context.Context, token, id string, patch map[string]any) (*domain.Endpoint, error) {
	ctx, span := tracer.Start(ctx, "UpdateEndpoint")
	defer span.End()

	body, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/api/endpoint/%s", id), patch, token)
	if err != nil {
		return nil, err
	}
	var ep domain.Endpoint
	if err := decodeObject(body, &ep); err != nil {
		return nil, err
	}
	return &ep, nil
}

// DeleteEndpoint removes an endpoint definition.
func (c *Client) DeleteEndpoint(ctx context.Context, token, id string) error {
	ctx, span := tracer.Start(ctx, "DeleteEndpoint")
	defer span.End()

	_, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/endpoint/%s", id), nil, token)
	return err
}

package makeapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/makeapi/makeapi-bff-go/internal/domain"
	"github.com/makeapi/makeapi-bff-go/internal/port"
)

// QueryItems lists the items of one endpoint through the upstream's
// filtered query route. The result set is capped; endpoints with more
// items than the cap silently lose the tail.
func (c *Client) QueryItems(ctx context.Context, token, endpointID string) ([]domain.EndpointItem, error) {
	ctx, span := tracer.Start(ctx, "QueryItems")
	defer span.End()

	payload := map[string]any{
		"filters": []map[string]any{
			{"field": "endpointId", "op": "==", "value": endpointID},
		},
		"limit": port.QueryLimit,
	}
	body, err := c.doRequest(ctx, http.MethodPost, "/api/itens/query", payload, token)
	if err != nil {
		return nil, err
	}
	return decodeArray[domain.EndpointItem](body)
}

// GetItem fetches one item by its flat id.
func (c *Client) GetItem(ctx context.Context, itemID string) (*domain.EndpointItem, error) {
	ctx, span := tracer.Start(ctx, "GetItem")
	defer span.End()

	body, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/itens/%s", itemID), nil, "")
	if err != nil {
		return nil, err
	}
	var item domain.EndpointItem
	if err := decodeObject(body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem stores a new item under an endpoint. The upstream's write
// shape keys the payload as "values"; reads hand it back as "data".
func (c *Client) CreateItem(ctx context.Context, token, endpointID string, values map[string]any) (*domain.EndpointItem, error) {
	ctx, span := tracer.Start(ctx, "CreateItem")
	defer span.End()

	payload := map[string]any{
		"endpointId": endpointID,
		"values":     values,
	}
	body, err := c.doRequest(ctx, http.MethodPost, "/api/itens", payload, token)
	if err != nil {
		return nil, err
	}
	var item domain.EndpointItem
	if err := decodeObject(body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// PatchItem overwrites an item's payload. Despite the PATCH verb the
// body always carries the full field set; partial writes are not part
// of the editing contract.
func (c *Client) PatchItem(ctx context.Context, token, itemID string, values map[string]any) (*domain.EndpointItem, error) {
	ctx, span := tracer.Start(ctx, "PatchItem")
	defer span.End()

	payload := map[string]any{"values": values}
	body, err := c.doRequest(ctx, http.MethodPatch, fmt.Sprintf("/api/itens/%s", itemID), payload, token)
	if err != nil {
		return nil, err
	}
	var item domain.EndpointItem
	if err := decodeObject(body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem removes one item.
func (c *Client) DeleteItem(ctx context.Context, token, itemID string) error {
	ctx, span := tracer.Start(ctx, "DeleteItem")
	defer span.End()

	_, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/itens/%s", itemID), nil, token)
	return err
}

package service

import (
	"context"
	"errors"

	"github.com/makeapi/makeapi-bff-go/internal/domain"
	"github.com/makeapi/makeapi-bff-go/internal/infra/observability"
	"github.com/makeapi/makeapi-bff-go/internal/port"
	"github.com/makeapi/makeapi-bff-go/internal/schema"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var itemsTracer = otel.Tracer("service/items")

// ItemsService manages the records stored under an endpoint. Upstream
// addressing is flat, so every item read under an endpoint path is
// checked for ownership: an item fetched through the wrong endpoint is
// reported as not found, never leaked.
type ItemsService struct {
	endpoints port.EndpointStore
	store     port.ItemStore
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewItemsService creates a new items service.
func NewItemsService(endpoints port.EndpointStore, store port.ItemStore, metrics *observability.Metrics, logger *zap.Logger) *ItemsService {
	return &ItemsService{endpoints: endpoints, store: store, metrics: metrics, logger: logger}
}

// List returns the items of one endpoint, capped at the query limit.
func (s *ItemsService) List(ctx context.Context, token, endpointID string) ([]domain.EndpointItem, error) {
	ctx, span := itemsTracer.Start(ctx, "ItemsService.List")
	defer span.End()

	items, err := s.store.QueryItems(ctx, token, endpointID)
	if err != nil {
		s.countUpstreamError(err)
		return nil, err
	}
	return items, nil
}

// Get fetches one item and verifies it belongs to the endpoint in the
// request path.
func (s *ItemsService) Get(ctx context.Context, endpointID, itemID string) (*domain.EndpointItem, error) {
	ctx, span := itemsTracer.Start(ctx, "ItemsService.Get")
	defer span.End()

	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		s.countUpstreamError(err)
		return nil, err
	}
	if err := s.checkOwnership(item, endpointID, itemID); err != nil {
		return nil, err
	}
	return item, nil
}

// Create stores a new item under an endpoint. The endpoint must exist;
// string inputs landing on number fields are coerced. Beyond that the
// payload is stored as given, schema conformance is the form layer's
// concern.
func (s *ItemsService) Create(ctx context.Context, token, endpointID string, values map[string]any) (*domain.EndpointItem, error) {
	ctx, span := itemsTracer.Start(ctx, "ItemsService.Create")
	defer span.End()

	if token == "" {
		return nil, &domain.ErrUnauthenticated{Message: "Não autenticado"}
	}
	if values == nil {
		return nil, &domain.ErrValidation{Field: "values", Message: "Valores são obrigatórios"}
	}

	ep, err := s.endpoints.GetEndpoint(ctx, endpointID)
	if err != nil {
		s.countUpstreamError(err)
		return nil, err
	}

	item, err := s.store.CreateItem(ctx, token, endpointID, schema.CoerceValues(ep.Campos, values))
	if err != nil {
		s.countUpstreamError(err)
		return nil, err
	}

	s.logger.Info("item created",
		zap.String("endpoint_id", endpointID),
		zap.String("item_id", item.ID),
	)
	return item, nil
}

// Update overwrites an item's payload after the ownership check. Every
// update carries the full field set; there are no partial writes.
func (s *ItemsService) Update(ctx context.Context, token, endpointID, itemID string, values map[string]any) (*domain.EndpointItem, error) {
	ctx, span := itemsTracer.Start(ctx, "ItemsService.Update")
	defer span.End()

	if token == "" {
		return nil, &domain.ErrUnauthenticated{Message: "Não autenticado"}
	}
	if values == nil {
		return nil, &domain.ErrValidation{Field: "values", Message: "Valores são obrigatórios"}
	}

	current, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		s.countUpstreamError(err)
		return nil, err
	}
	if err := s.checkOwnership(current, endpointID, itemID); err != nil {
		return nil, err
	}

	if ep, err := s.endpoints.GetEndpoint(ctx, endpointID); err == nil {
		values = schema.CoerceValues(ep.Campos, values)
	}

	item, err := s.store.PatchItem(ctx, token, itemID, values)
	if err != nil {
		s.countUpstreamError(err)
		return nil, err
	}

	s.logger.Info("item updated",
		zap.String("endpoint_id", endpointID),
		zap.String("item_id", itemID),
	)
	return item, nil
}

// Delete removes one item after the ownership check.
func (s *ItemsService) Delete(ctx context.Context, token, endpointID, itemID string) error {
	ctx, span := itemsTracer.Start(ctx, "ItemsService.Delete")
	defer span.End()

	if token == "" {
		return &domain.ErrUnauthenticated{Message: "Não autenticado"}
	}

	current, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		s.countUpstreamError(err)
		return err
	}
	if err := s.checkOwnership(current, endpointID, itemID); err != nil {
		return err
	}

	if err := s.store.DeleteItem(ctx, token, itemID); err != nil {
		s.countUpstreamError(err)
		return err
	}

	s.logger.Info("item deleted",
		zap.String("endpoint_id", endpointID),
		zap.String("item_id", itemID),
	)
	return nil
}

func (s *ItemsService) checkOwnership(item *domain.EndpointItem, endpointID, itemID string) error {
	if item.EndpointID != "" && item.EndpointID != endpointID {
		s.logger.Warn("item ownership mismatch",
			zap.String("item_id", itemID),
			zap.String("path_endpoint_id", endpointID),
			zap.String("item_endpoint_id", item.EndpointID),
		)
		return &domain.ErrNotFound{Resource: "item", ID: itemID}
	}
	return nil
}

func (s *ItemsService) countUpstreamError(err error) {
	var upstream *domain.ErrUpstream
	var protocol *domain.ErrProtocol
	if errors.As(err, &upstream) || errors.As(err, &protocol) {
		s.metrics.IncrUpstreamError("items")
	}
}

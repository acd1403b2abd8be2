package service

import (
	"context"
	"errors"
	"strings"

	"github.com/makeapi/makeapi-bff-go/internal/domain"
	"github.com/makeapi/makeapi-bff-go/internal/infra/observability"
	"github.com/makeapi/makeapi-bff-go/internal/port"
	"github.com/makeapi/makeapi-bff-go/internal/schema"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var registryTracer = otel.Tracer("service/registry")

// RegistryService manages endpoint definitions: the user-defined
// schemas everything else hangs off.
type RegistryService struct {
	endpoints port.EndpointStore
	items     port.ItemStore
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewRegistryService creates a new registry service.
func NewRegistryService(endpoints port.EndpointStore, items port.ItemStore, metrics *observability.Metrics, logger *zap.Logger) *RegistryService {
	return &RegistryService{
		endpoints: endpoints,
		items:     items,
		metrics:   metrics,
		logger:    logger,
	}
}

// List returns every endpoint definition.
func (s *RegistryService) List(ctx context.Context) ([]domain.Endpoint, error) {
	ctx, span := registryTracer.Start(ctx, "RegistryService.List")
	defer span.End()

	eps, err := s.endpoints.ListEndpoints(ctx)
	if err != nil {
		s.countUpstreamError(err)
		return nil, err
	}
	return eps, nil
}

// Get returns one endpoint with its items attached. Some upstream
// deployments inline items on the endpoint resource; when they don't,
// the items come from a separate filtered query.
func (s *RegistryService) Get(ctx context.Context, token, id string) (*domain.Endpoint, error) {
	ctx, span := registryTracer.Start(ctx, "RegistryService.Get")
	defer span.End()

	ep, err := s.endpoints.GetEndpoint(ctx, id)
	if err != nil {
		s.countUpstreamError(err)
		return nil, err
	}

	if ep.Items == nil {
		items, err := s.items.QueryItems(ctx, token, id)
		if err != nil {
			s.countUpstreamError(err)
			return nil, err
		}
		ep.Items = items
	}
	return ep, nil
}

// Create validates and stores a new endpoint definition. Blank-titled
// field rows are dropped; duplicate titles (case-insensitive) and
// unknown field types are rejected.
func (s *RegistryService) Create(ctx context.Context, token, title string, campos []domain.EndpointField) (*domain.Endpoint, error) {
	ctx, span := registryTracer.Start(ctx, "RegistryService.Create")
	defer span.End()

	if token == "" {
		return nil, &domain.ErrUnauthenticated{Message: "Não autenticado"}
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &domain.ErrValidation{Field: "title", Message: "Título é obrigatório"}
	}
	valid, err := schema.ValidateCampos(campos)
	if err != nil {
		return nil, err
	}

	ep, err := s.endpoints.CreateEndpoint(ctx, token, title, valid)
	if err != nil {
		s.countUpstreamError(err)
		return nil, err
	}

	s.logger.Info("endpoint created",
		zap.String("endpoint_id", ep.ID),
		zap.String("title", ep.Title),
		zap.Int("campos", len(valid)),
	)
	return ep, nil
}

// Update renames an endpoint and/or replaces its field list. A nil
// campos leaves the schema untouched; existing items are never migrated
// when the schema changes. Unlike Create, the field list is proxied as
// given: duplicate-title rejection applies to new schemas only, an
// existing schema the upstream already tolerates must stay editable.
func (s *RegistryService) Update(ctx context.Context, token, id string, title *string, campos []domain.EndpointField) (*domain.Endpoint, error) {
	ctx, span := registryTracer.Start(ctx, "RegistryService.Update")
	defer span.End()

	if token == "" {
		return nil, &domain.ErrUnauthenticated{Message: "Não autenticado"}
	}

	patch := map[string]any{}
	if title != nil {
		trimmed := strings.TrimSpace(*title)
		if trimmed == "" {
			return nil, &domain.ErrValidation{Field: "title", Message: "Título é obrigatório"}
		}
		patch["title"] = trimmed
	}
	if campos != nil {
		patch["campos"] = campos
	}
	if len(patch) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "Nada para atualizar"}
	}

	ep, err := s.endpoints.UpdateEndpoint(ctx, token, id, patch)
	if err != nil {
		s.countUpstreamError(err)
		return nil, err
	}

	s.logger.Info("endpoint updated", zap.String("endpoint_id", id))
	return ep, nil
}

// Delete removes an endpoint definition.
func (s *RegistryService) Delete(ctx context.Context, token, id string) error {
	ctx, span := registryTracer.Start(ctx, "RegistryService.Delete")
	defer span.End()

	if token == "" {
		return &domain.ErrUnauthenticated{Message: "Não autenticado"}
	}
	if err := s.endpoints.DeleteEndpoint(ctx, token, id); err != nil {
		s.countUpstreamError(err)
		return err
	}
	s.logger.Info("endpoint deleted", zap.String("endpoint_id", id))
	return nil
}

func (s *RegistryService) countUpstreamError(err error) {
	var upstream *domain.ErrUpstream
	var protocol *domain.ErrProtocol
	if errors.As(err, &upstream) || errors.As(err, &protocol) {
		s.metrics.IncrUpstreamError("endpoints")
	}
}

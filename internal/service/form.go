package service

import (
	"context"

	"github.com/makeapi/makeapi-bff-go/internal/domain"
	"github.com/makeapi/makeapi-bff-go/internal/port"
	"github.com/makeapi/makeapi-bff-go/internal/schema"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var formTracer = otel.Tracer("service/form")

// FormService builds the editing view of an item: the endpoint's field
// list reconciled against the stored payload, so the form always shows
// exactly the schema's fields in schema order, whatever shape the data
// arrived in.
type FormService struct {
	endpoints port.EndpointStore
	items     *ItemsService
	logger    *zap.Logger
}

// NewFormService creates a new form service.
func NewFormService(endpoints port.EndpointStore, items *ItemsService, logger *zap.Logger) *FormService {
	return &FormService{endpoints: endpoints, items: items, logger: logger}
}

// FormView is the working set handed to the edit form.
type FormView struct {
	Endpoint   *domain.Endpoint       `json:"endpoint"`
	Item       *domain.EndpointItem   `json:"item,omitempty"`
	Fields     []domain.EndpointField `json:"fields"`
	Values     map[string]any         `json:"values"`
	Matched    int                    `json:"matched"`
	Rehydrated bool                   `json:"rehydrated,omitempty"`
}

// NewItemForm builds the create-mode working set: every field present
// with an empty value.
func (s *FormService) NewItemForm(ctx context.Context, token, endpointID string) (*FormView, error) {
	ctx, span := formTracer.Start(ctx, "FormService.NewItemForm")
	defer span.End()

	ep, err := s.endpoints.GetEndpoint(ctx, endpointID)
	if err != nil {
		return nil, err
	}

	ws := schema.Reconcile(ep.Campos, nil)
	return &FormView{
		Endpoint: ep,
		Fields:   ep.Campos,
		Values:   ws.Values,
	}, nil
}

// LoadEditForm builds the edit-mode working set. Endpoint and item are
// fetched concurrently; when reconciliation resolves nothing at all the
// item is refetched once and reconciled again, covering the upstream's
// occasional empty-then-populated read sequence. The fallback fires at
// most once per load.
func (s *FormService) LoadEditForm(ctx context.Context, token, endpointID, itemID string) (*FormView, error) {
	ctx, span := formTracer.Start(ctx, "FormService.LoadEditForm")
	defer span.End()

	var (
		ep   *domain.Endpoint
		item *domain.EndpointItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ep, err = s.endpoints.GetEndpoint(gctx, endpointID)
		return err
	})
	g.Go(func() error {
		var err error
		item, err = s.items.Get(gctx, endpointID, itemID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ws := schema.Reconcile(ep.Campos, schema.ExtractData(item.Data))
	view := &FormView{
		Endpoint: ep,
		Item:     item,
		Fields:   ep.Campos,
		Values:   ws.Values,
		Matched:  ws.Matched,
	}

	if ws.Empty() {
		fresh, err := s.items.Get(ctx, endpointID, itemID)
		if err == nil {
			retry := schema.Reconcile(ep.Campos, schema.ExtractData(fresh.Data))
			if retry.Matched > 0 {
				view.Item = fresh
				view.Values = retry.Values
				view.Matched = retry.Matched
				view.Rehydrated = true
				ws = retry
			}
		}
	}

	for _, title := range ws.Collisions {
		s.logger.Warn("ambiguous field match in stored item data",
			zap.String("item_id", itemID),
			zap.String("field", title),
		)
	}

	return view, nil
}

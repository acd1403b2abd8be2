package handler

import (
	"net/http"
	"strings"

	"github.com/makeapi/makeapi-bff-go/internal/config"
	"github.com/makeapi/makeapi-bff-go/internal/infra/observability"
	"github.com/makeapi/makeapi-bff-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter creates the HTTP router with all routes and middleware.
// Routes follow the API contract the web console was built against.
func NewRouter(
	authSvc *service.AuthService,
	registrySvc *service.RegistryService,
	itemsSvc *service.ItemsService,
	formSvc *service.FormService,
	cfg *config.Config,
	metrics *observability.Metrics,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(SessionTokenMiddleware)

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(metrics))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API ---
	r.Route("/api", func(r chi.Router) {

		// =============================================
		// Sessão
		// =============================================
		r.Post("/auth/login", loginHandler(authSvc, cfg, logger))
		r.Post("/auth/logout", logoutHandler(authSvc))
		r.Post("/auth/register", registerHandler(authSvc, logger))
		r.Get("/me", meHandler(authSvc, logger))

		// =============================================
		// Endpoints (schemas definidos pelo usuário)
		// =============================================
		r.Route("/endpoints", func(r chi.Router) {
			r.Get("/", listEndpointsHandler(registrySvc, logger))
			r.Post("/", createEndpointHandler(registrySvc, logger))

			r.Route("/{endpointId}", func(r chi.Router) {
				r.Get("/", getEndpointHandler(registrySvc, logger))
				r.Put("/", updateEndpointHandler(registrySvc, logger))
				r.Delete("/", deleteEndpointHandler(registrySvc, logger))

				r.Get("/form", newItemFormHandler(formSvc, logger))

				// =============================================
				// Itens do endpoint
				// =============================================
				r.Route("/items", func(r chi.Router) {
					r.Get("/", listItemsHandler(itemsSvc, logger))
					r.Post("/", createItemHandler(itemsSvc, logger))

					r.Route("/{itemId}", func(r chi.Router) {
						r.Get("/", getItemHandler(itemsSvc, logger))
						r.Put("/", updateItemHandler(itemsSvc, logger))
						r.Delete("/", deleteItemHandler(itemsSvc, logger))

						r.Get("/form", editItemFormHandler(formSvc, logger))
					})
				})
			})
		})
	})

	// --- Web console (SPA) ---
	// Everything that is not an API route falls through to the guarded
	// static handler; unknown API paths stay JSON 404s.
	guarded := SessionGuard(authSvc, metrics, logger)(spaHandler(cfg.StaticDir))
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/api" || strings.HasPrefix(req.URL.Path, "/api/") {
			writeError(w, http.StatusNotFound, "Rota não encontrada")
			return
		}
		guarded.ServeHTTP(w, req)
	})

	return r
}

// healthzHandler reports liveness plus a coarse metrics snapshot so an
// operator sees upstream error pressure at a glance.
func healthzHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := metrics.GetSnapshot()
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"metrics": snapshot,
		})
	}
}

// readyzHandler reports readiness. The proxy holds no connections to
// warm up, so readiness equals liveness.
func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

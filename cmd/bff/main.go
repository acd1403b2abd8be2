package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/makeapi/makeapi-bff-go/internal/config"
	"github.com/makeapi/makeapi-bff-go/internal/domain"
	"github.com/makeapi/makeapi-bff-go/internal/handler"
	"github.com/makeapi/makeapi-bff-go/internal/infra/cache"
	"github.com/makeapi/makeapi-bff-go/internal/infra/makeapi"
	"github.com/makeapi/makeapi-bff-go/internal/infra/memstore"
	"github.com/makeapi/makeapi-bff-go/internal/infra/observability"
	"github.com/makeapi/makeapi-bff-go/internal/infra/resilience"
	"github.com/makeapi/makeapi-bff-go/internal/port"
	"github.com/makeapi/makeapi-bff-go/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = godotenv.Load()

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("env", cfg.Env),
		zap.String("makeapi_base_url", cfg.MakeAPIBaseURL),
		zap.Bool("use_memstore", cfg.UseMemStore),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("identity_cache_ttl", cfg.IdentityCacheTTL),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "makeapi-bff")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache (identity only; data always goes upstream) ---
	identityCache := cache.New[*domain.Identity](cfg.IdentityCacheTTL)

	// --- Stores ---
	var (
		authGateway   port.AuthGateway
		endpointStore port.EndpointStore
		itemStore     port.ItemStore
		upstreamBase  string
	)

	if cfg.UseMemStore {
		logger.Info("using in-memory store as data backend")
		store := memstore.New()
		authGateway = store
		endpointStore = store
		itemStore = store
	} else {
		logger.Info("using MakeAPI as data backend",
			zap.String("base_url", cfg.MakeAPIBaseURL),
		)
		client := makeapi.NewClient(
			&http.Client{Timeout: cfg.HTTPTimeout},
			cfg.MakeAPIBaseURL,
			resilience.NewCircuitBreaker("makeapi", metrics.SetBreakerState),
			logger,
		)
		authGateway = client
		endpointStore = client
		itemStore = client
		upstreamBase = client.BaseURL()
	}

	// --- Services ---
	authSvc := service.NewAuthService(authGateway, identityCache, upstreamBase, cfg.JWTSecret, metrics, logger)
	registrySvc := service.NewRegistryService(endpointStore, itemStore, metrics, logger)
	itemsSvc := service.NewItemsService(endpointStore, itemStore, metrics, logger)
	formSvc := service.NewFormService(endpointStore, itemsSvc, logger)

	// --- Router ---
	router := handler.NewRouter(authSvc, registrySvc, itemsSvc, formSvc, cfg, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"catalog-sync-shopify-layer/internal/application"
	"catalog-sync-shopify-layer/internal/domain"
	"catalog-sync-shopify-layer/internal/infrastructure/pubsub"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	httpSwagger "github.com/swaggo/http-swagger"
)

// CredentialsManager is the credentials surface used by the handlers
type CredentialsManager interface {
	SaveCredentials(ctx context.Context, input application.SaveCredentialsInput) (*domain.APICredentials, error)
	GetCredentials(ctx context.Context, shop string) (*domain.APICredentials, error)
	SetAutoSync(ctx context.Context, shop string, enabled bool, accessToken string) (*domain.APICredentials, error)
}

// Syncer runs catalog syncs
type Syncer interface {
	Sync(ctx context.Context, req application.SyncRequest) (*domain.SyncReport, error)
	SyncShop(ctx context.Context, shop string, trigger string) (*domain.SyncReport, error)
	ListRuns(ctx context.Context, shop string) ([]*domain.SyncReport, error)
}

// ProductCreator publishes single products
type ProductCreator interface {
	CreateProduct(ctx context.Context, shop string, accessToken string, draft domain.ProductDraft) (*goshopify.Product, error)
}

// RouterDeps holds everything the HTTP surface needs
type RouterDeps struct {
	Credentials    CredentialsManager
	Sync           Syncer
	Products       ProductCreator
	Events         *pubsub.SyncPubSub
	MetricsHandler http.Handler
	SyncTimeout    time.Duration
	SwaggerFile    string
	Logger         zerolog.Logger
}

// NewRouter builds the chi router with middleware and all routes
func NewRouter(deps RouterDeps) http.Handler {
	if deps.SwaggerFile == "" {
		deps.SwaggerFile = "./docs/swagger.json"
	}
	logger := deps.Logger

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("requestId", middleware.GetReqID(r.Context())).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request handled")
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, deps.SwaggerFile)
	})

	// Actions
	r.Post("/saveApiCredentials", saveCredentialsHandler(deps.Credentials, logger))
	r.Post("/sync", syncHandler(deps.Sync, deps.SyncTimeout, logger))
	r.HandleFunc("/createProduct", createProductHandler(deps.Products, logger))

	r.Get("/credentials/{shop}", getCredentialsHandler(deps.Credentials, logger))
	r.Post("/credentials/{shop}/autoSync", autoSyncHandler(deps.Credentials, logger))
	r.Post("/shops/{shop}/sync", syncStoredHandler(deps.Sync, deps.SyncTimeout, logger))
	r.Get("/sync/runs/{shop}", listRunsHandler(deps.Sync, logger))
	if deps.Events != nil {
		r.Get("/sync/events", syncEventsHandler(deps.Events, logger))
	}

	return r
}

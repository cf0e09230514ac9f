package rest

import (
	"net/http"
	"time"

	querybus "itemname-api/application/queries/bus"
	"itemname-api/interfaces/http/rest/handlers"
	"itemname-api/interfaces/http/rest/middleware"
	pkgerrors "itemname-api/pkg/errors"
	"itemname-api/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	queryBus     *querybus.QueryBus
	errorHandler *pkgerrors.ErrorHandler
	readiness    handlers.ReadinessCheck
	collector    *observability.Collector
	tracer       *observability.Tracer
	timeout      time.Duration
	logger       *zap.Logger
}

// Option customizes a Router
type Option func(*Router)

// WithPrometheus records HTTP metrics and serves them on /metrics
func WithPrometheus(collector *observability.Collector) Option {
	return func(rt *Router) { rt.collector = collector }
}

// WithTracing opens an X-Ray segment per request
func WithTracing(tracer *observability.Tracer) Option {
	return func(rt *Router) { rt.tracer = tracer }
}

// WithTimeout bounds every request with a context deadline
func WithTimeout(timeout time.Duration) Option {
	return func(rt *Router) { rt.timeout = timeout }
}

// NewRouter creates a new router instance
func NewRouter(
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	readiness handlers.ReadinessCheck,
	logger *zap.Logger,
	opts ...Option,
) *Router {
	rt := &Router{
		queryBus:     queryBus,
		errorHandler: errorHandler,
		readiness:    readiness,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(chimiddleware.RealIP)
	if rt.tracer != nil {
		router.Use(rt.tracer.Middleware)
	}
	router.Use(middleware.Logger(rt.logger))
	if rt.collector != nil {
		router.Use(middleware.Metrics(rt.collector))
	}
	router.Use(rt.errorHandler.Middleware)
	if rt.timeout > 0 {
		router.Use(chimiddleware.Timeout(rt.timeout))
	}

	router.Use(middleware.AllowAnyOrigin)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	health := handlers.NewHealthHandler(rt.readiness, rt.logger)
	router.Get("/health", health.Health)
	router.Get("/ready", health.Ready)

	if rt.collector != nil {
		router.Handle("/metrics", rt.collector.Handler())
	}

	itemHandler := handlers.NewItemHandler(rt.queryBus, rt.errorHandler, rt.logger)
	router.Get("/list", itemHandler.ListItems)
	router.Get("/search", itemHandler.SearchItems)

	return router
}

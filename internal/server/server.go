package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/handlers"
	"sales-dashboard/internal/middleware"
	"sales-dashboard/internal/services"
)

type Server struct {
	analytics   *services.Analytics
	router      chi.Router
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

type Option func(*options)

type options struct {
	middlewares []middleware.Middleware
	metricsPath string
	metrics     http.Handler
}

// WithMiddleware installs route-aware middleware inside the router, where
// the matched route pattern is visible.
func WithMiddleware(mw ...middleware.Middleware) Option {
	return func(o *options) { o.middlewares = append(o.middlewares, mw...) }
}

// WithMetrics serves h at path.
func WithMetrics(path string, h http.Handler) Option {
	return func(o *options) {
		o.metricsPath = path
		o.metrics = h
	}
}

func NewServer(analytics *services.Analytics, renderer *charts.Renderer, logger *slog.Logger, templateHandlers *TemplateHandlers, opts ...Option) *Server {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{
		analytics:   analytics,
		router:      chi.NewRouter(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, logger),
		sseHandlers: handlers.NewSSEHandlers(analytics, renderer, logger),
	}
	for _, mw := range o.middlewares {
		s.router.Use(mw)
	}
	s.setupRoutes(templateHandlers, o)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers, o options) {
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errors.WriteError(w, r, s.logger, errors.NotFound("Resource not found"))
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", "GET")
		errors.WriteError(w, r, s.logger, errors.New(errors.CodeMethodNotAllowed, "Method not allowed"))
	})

	// Dashboard routes
	s.router.Get("/", templateHandlers.Dashboard)
	s.router.Get("/health", s.apiHandlers.HandleHealth)
	s.router.Get("/admin/stats", s.apiHandlers.HandleStats)
	if o.metrics != nil {
		s.router.Method(http.MethodGet, o.metricsPath, o.metrics)
	}

	// REST API endpoints
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/dimensions", s.apiHandlers.HandleDimensions)
		r.Get("/kpis", s.apiHandlers.HandleKPIs)
		r.Get("/breakdown/{dimension}", s.apiHandlers.HandleBreakdown)
		r.Get("/monthly-sales", s.apiHandlers.HandleMonthlySales)
		r.Get("/salespeople", s.apiHandlers.HandleSalespeople)
		r.Get("/goal", s.apiHandlers.HandleGoal)
		r.Get("/transactions", s.apiHandlers.HandleTransactions)
		r.Get("/dashboard", s.apiHandlers.HandleDashboard)
		r.Get("/export.xlsx", s.apiHandlers.HandleExport)
	})

	// Datastar SSE endpoints
	s.router.Route("/sse", func(r chi.Router) {
		r.Get("/refresh", s.sseHandlers.HandleRefresh)
		r.Get("/kpis", s.sseHandlers.HandleKPIs)
		r.Get("/charts", s.sseHandlers.HandleCharts)
		r.Get("/table", s.sseHandlers.HandleTable)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

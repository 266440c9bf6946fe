package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/config"
	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/grpcserver"
	"sales-dashboard/internal/handlers"
	"sales-dashboard/internal/middleware"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/server"
	"sales-dashboard/internal/services"
)

const csvLoadTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}

// app is the wired dependency graph behind the HTTP handler.
type app struct {
	handler   http.Handler
	analytics *services.Analytics
	metrics   *observability.Metrics
}

func newApp(cfg *config.Config, logger *slog.Logger) *app {
	metrics := observability.NewMetrics()

	store := dataset.NewStore(cfg.Data.CSVFile,
		dataset.WithWorkers(cfg.Data.ParseWorkers),
		dataset.WithReloadOnChange(cfg.Data.ReloadOnChange),
		dataset.WithLogger(logger),
		dataset.WithObserver(metrics),
	)
	analytics := services.NewAnalytics(store,
		services.WithLogger(logger),
		services.WithRecorder(metrics),
		services.WithTableRows(cfg.Dashboard.TableRows),
		services.WithAchievementLimit(cfg.Dashboard.AchievementLimit),
	)
	renderer := charts.NewRenderer(charts.DefaultTheme)

	page := handlers.NewPageHandlers(analytics, renderer, handlers.PageInfo{
		Title:    cfg.Dashboard.Title,
		Subtitle: cfg.Dashboard.Subtitle,
		Version:  config.Version,
		DataFile: cfg.Data.CSVFile,
	}, logger)
	templateHandlers := &server.TemplateHandlers{
		Dashboard: page.HandleDashboard,
	}

	opts := []server.Option{
		server.WithMiddleware(middleware.Tracing(), middleware.Metrics(metrics)),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, server.WithMetrics(cfg.Metrics.Path, metrics.Handler()))
	}
	srv := server.NewServer(analytics, renderer, logger, templateHandlers, opts...)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	return &app{
		handler:   middlewareChain(srv),
		analytics: analytics,
		metrics:   metrics,
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting application",
		"version", config.Version,
		"config", cfg,
	)

	tracing, err := observability.NewTracing(cfg.Tracing, logger)
	if err != nil {
		return err
	}

	a := newApp(cfg, logger)

	// A dashboard without data is useless, so a failed load stops startup.
	loadCtx, cancel := context.WithTimeout(ctx, csvLoadTimeout)
	defer cancel()

	start := time.Now()
	table, err := a.analytics.Table(loadCtx)
	if err != nil {
		logger.Error("failed to load CSV data", "path", cfg.Data.CSVFile, "error", err)
		_ = tracing.Shutdown(context.Background())
		return err
	}
	logger.Info("CSV data loaded successfully",
		"rows", table.Len(),
		"duration", time.Since(start))

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      a.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server)

	if cfg.GRPC.Enabled {
		grpcSrv := grpcserver.New(cfg.GRPCAddress(), logger)
		grpcSrv.SetServing(true)
		gracefulServer.Go("grpc", grpcSrv.Start)
		gracefulServer.RegisterShutdownHook("grpc", grpcSrv.Stop)
	}

	gracefulServer.RegisterShutdownHook("tracing", tracing.Shutdown)

	return gracefulServer.Run(ctx)
}

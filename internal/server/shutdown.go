package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/config"
)

const hookTimeout = 10 * time.Second

type shutdownHook struct {
	name string
	fn   func(ctx context.Context) error
}

type component struct {
	name string
	run  func() error
}

// GracefulServer runs the HTTP server alongside background components and
// drains everything when its context ends or any of them fails.
type GracefulServer struct {
	server     *http.Server
	logger     *slog.Logger
	config     config.ServerConfig
	shutdownFn []shutdownHook
	components []component
	mu         sync.RWMutex
}

func NewGracefulServer(server *http.Server, logger *slog.Logger, cfg config.ServerConfig) *GracefulServer {
	return &GracefulServer{
		server: server,
		logger: logger.With("component", "server"),
		config: cfg,
	}
}

func (gs *GracefulServer) RegisterShutdownHook(name string, fn func(ctx context.Context) error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.shutdownFn = append(gs.shutdownFn, shutdownHook{name: name, fn: fn})
}

// Go runs fn next to the HTTP server. A non-nil return starts shutdown.
func (gs *GracefulServer) Go(name string, fn func() error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.components = append(gs.components, component{name: name, run: fn})
}

// Run listens on the server's address until ctx is done.
func (gs *GracefulServer) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", gs.server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", gs.server.Addr, err)
	}
	return gs.Serve(ctx, lis)
}

// Serve is Run on an existing listener.
func (gs *GracefulServer) Serve(ctx context.Context, lis net.Listener) error {
	failures := make(chan error, 1)
	report := func(err error) {
		select {
		case failures <- err:
		default:
		}
	}

	go func() {
		gs.logger.Info("starting server",
			"addr", lis.Addr().String(),
			"read_timeout", gs.config.ReadTimeout,
			"write_timeout", gs.config.WriteTimeout,
		)
		if err := gs.server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			report(fmt.Errorf("server failed: %w", err))
		}
	}()

	gs.mu.RLock()
	components := append([]component(nil), gs.components...)
	gs.mu.RUnlock()
	for _, c := range components {
		go func() {
			if err := c.run(); err != nil {
				report(fmt.Errorf("%s failed: %w", c.name, err))
			}
		}()
	}

	var cause error
	select {
	case cause = <-failures:
		gs.logger.Error("component failed, shutting down", "error", cause)
	case <-ctx.Done():
		gs.logger.Info("shutdown signal received", "cause", context.Cause(ctx))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), gs.config.ShutdownTimeout)
	defer cancel()

	if err := gs.shutdown(shutdownCtx); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

func (gs *GracefulServer) shutdown(ctx context.Context) error {
	gs.logger.Info("starting graceful shutdown",
		"timeout", gs.config.ShutdownTimeout,
	)

	gs.mu.RLock()
	hooks := append([]shutdownHook(nil), gs.shutdownFn...)
	gs.mu.RUnlock()

	var g errgroup.Group
	for _, hook := range hooks {
		g.Go(func() error {
			hookCtx, cancel := context.WithTimeout(ctx, hookTimeout)
			defer cancel()

			gs.logger.Debug("executing shutdown hook", "hook", hook.name)
			if err := hook.fn(hookCtx); err != nil {
				gs.logger.Error("shutdown hook failed",
					"hook", hook.name,
					"error", err,
				)
				return fmt.Errorf("shutdown hook %s failed: %w", hook.name, err)
			}
			gs.logger.Debug("shutdown hook completed", "hook", hook.name)
			return nil
		})
	}

	g.Go(func() error {
		gs.logger.Info("stopping HTTP server")
		if err := gs.server.Shutdown(ctx); err != nil {
			gs.logger.Error("HTTP server shutdown failed", "error", err)
			return fmt.Errorf("HTTP server shutdown failed: %w", err)
		}
		gs.logger.Info("HTTP server stopped gracefully")
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		gs.logger.Info("graceful shutdown completed")
		return err
	case <-ctx.Done():
		gs.logger.Warn("shutdown timeout exceeded, forcing exit")
		return ctx.Err()
	}
}

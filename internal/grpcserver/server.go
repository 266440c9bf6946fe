// Package grpcserver exposes the standard gRPC health service so
// orchestrators can tell when the sales data is loaded.
package grpcserver

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health-check service name reported next to the
// overall ("") status.
const ServiceName = "sales_dashboard.Dashboard"

type Server struct {
	addr   string
	health *health.Server
	logger *slog.Logger
	Server *grpc.Server
}

// New builds a server whose health starts as NOT_SERVING.
func New(addr string, logger *slog.Logger) *Server {
	logger = logger.With("component", "grpc")
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(logUnary(logger)))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)

	srv := &Server{
		addr:   addr,
		health: hs,
		logger: logger,
		Server: s,
	}
	srv.SetServing(false)
	return srv
}

// SetServing flips both the overall and the dashboard service status.
func (s *Server) SetServing(ok bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("grpc server listening", "addr", lis.Addr().String())
	return s.Server.Serve(lis)
}

// Stop drains in-flight calls until ctx expires, then closes the rest.
func (s *Server) Stop(ctx context.Context) error {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.Server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.Server.Stop()
		return ctx.Err()
	}
}

func logUnary(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Debug("grpc call",
			"method", info.FullMethod,
			"duration", time.Since(start),
			"error", err)
		return resp, err
	}
}

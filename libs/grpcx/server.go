package grpcx

import (
	"context"
	"log/slog"
	"net"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Server is a gRPC server exposing the standard health service.
type Server struct {
	*grpc.Server
	Health *health.Server
	logger *slog.Logger
}

func NewServer(logger *slog.Logger, extra ...grpc.ServerOption) *Server {
	opts := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			UnaryServerRequestIDInterceptor(),
			UnaryServerLogInterceptor(logger),
		),
	}
	srv := grpc.NewServer(append(opts, extra...)...)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	return &Server{Server: srv, Health: hs, logger: logger}
}

// SetServing flips the overall and the per-service status.
func (s *Server) SetServing(service string, serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.Health.SetServingStatus("", st)
	if service != "" {
		s.Health.SetServingStatus(service, st)
	}
}

// Serve runs on lis until ctx is cancelled, then marks everything NOT_SERVING and stops gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) {
	go func() {
		s.logger.Info("grpc server starting", "addr", lis.Addr().String())
		if err := s.Server.Serve(lis); err != nil {
			s.logger.Error("grpc server error", "err", err)
		}
	}()

	go func() {
		<-ctx.Done()
		s.Health.Shutdown()
		s.GracefulStop()
		s.logger.Info("grpc server stopped")
	}()
}

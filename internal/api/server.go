package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/aimsmarine/aims-diagnostics/internal/config"
	dashboardv1 "github.com/aimsmarine/aims-diagnostics/internal/grpc/dashboardv1"
)

// Server hosts the Dashboard service with health, reflection and Prometheus interceptors.
type Server struct {
	grpc     *grpc.Server
	health   *health.Server
	listener net.Listener
	drain    time.Duration
}

// NewServer listens on cfg.Address.
func NewServer(cfg config.ServerConfig, service dashboardv1.DashboardServer, opts ...grpc.ServerOption) (*Server, error) {
	lis, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.Address, err)
	}
	return NewServerWithListener(cfg, lis, service, opts...), nil
}

// NewServerWithListener serves on lis, e.g. a bufconn listener.
func NewServerWithListener(cfg config.ServerConfig, lis net.Listener, service dashboardv1.DashboardServer, opts ...grpc.ServerOption) *Server {
	grpc_prometheus.EnableHandlingTimeHistogram()
	g := grpc.NewServer(append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(grpc_prometheus.UnaryServerInterceptor),
		grpc.ChainStreamInterceptor(grpc_prometheus.StreamServerInterceptor),
	}, opts...)...)

	dashboardv1.RegisterDashboardServer(g, service)
	grpc_prometheus.Register(g)

	hs := health.NewServer()
	for _, name := range []string{"", dashboardv1.ServiceName} {
		hs.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}
	healthpb.RegisterHealthServer(g, hs)
	reflection.Register(g)

	return &Server{grpc: g, health: hs, listener: lis, drain: cfg.GracefulTimeout}
}

// Serve blocks until ctx is cancelled or the listener fails. On cancellation health flips
// to NOT_SERVING and in-flight RPCs get the graceful timeout to finish before a hard stop.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.grpc.Serve(s.listener) }()

	select {
	case err := <-errCh:
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.health.Shutdown()
	stopped := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(stopped)
	}()
	timer := time.NewTimer(s.drain)
	defer timer.Stop()
	select {
	case <-stopped:
	case <-timer.C:
		s.grpc.Stop()
		<-stopped
	}
	return nil
}

// Address is the bound listener address.
func (s *Server) Address() string {
	return s.listener.Addr().String()
}

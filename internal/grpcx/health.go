// Package grpcx serves the standard gRPC health protocol for orchestrator probes.
package grpcx

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Probe reports whether a dependency is usable.
type Probe func(ctx context.Context) error

type HealthServer struct {
	srv    *grpc.Server
	health *health.Server
	name   string
	log    *slog.Logger
}

// NewHealthServer registers the health service; service name reports the
// overall status and starts NOT_SERVING until the first probe passes.
func NewHealthServer(service string, log *slog.Logger) *HealthServer {
	srv := grpc.NewServer()
	h := health.NewServer()
	healthpb.RegisterHealthServer(srv, h)
	h.SetServingStatus(service, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthServer{srv: srv, health: h, name: service, log: log}
}

func (s *HealthServer) Serve(l net.Listener) error {
	return s.srv.Serve(l)
}

// Watch runs probe every interval and flips the status accordingly until ctx ends.
func (s *HealthServer) Watch(ctx context.Context, interval time.Duration, probe Probe) {
	s.check(ctx, probe)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.check(ctx, probe)
		}
	}
}

func (s *HealthServer) check(ctx context.Context, probe Probe) {
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := probe(pctx); err != nil {
		s.log.Warn("health probe failed", "service", s.name, "err", err)
		s.health.SetServingStatus(s.name, healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	s.health.SetServingStatus(s.name, healthpb.HealthCheckResponse_SERVING)
}

func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.srv.GracefulStop()
}

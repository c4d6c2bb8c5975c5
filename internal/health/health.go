// Package health serves the standard gRPC health checking protocol for the monitor.
package health

import (
	"fmt"
	"net"

	"Go2NetWatch/internal/model"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Service names reported by the health server.
const (
	ServiceMonitor = "netwatch.monitor"
	ServiceSampler = "netwatch.sampler"
)

// Server wraps a gRPC server exposing grpc.health.v1.
type Server struct {
	addr   string
	grpc   *grpc.Server
	health *health.Server
	lis    net.Listener
}

// NewServer creates a health server. Both services start NOT_SERVING.
func NewServer(addr string) *Server {
	hs := health.NewServer()
	hs.SetServingStatus(ServiceMonitor, healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceSampler, healthpb.HealthCheckResponse_NOT_SERVING)

	s := grpc.NewServer()
	healthpb.RegisterHealthServer(s, hs)

	return &Server{addr: addr, grpc: s, health: hs}
}

// Checker exposes the underlying health implementation.
func (s *Server) Checker() healthpb.HealthServer {
	return s.health
}

// SetMonitorServing marks the monitor service as running or stopped.
func (s *Server) SetMonitorServing(serving bool) {
	s.health.SetServingStatus(ServiceMonitor, status(serving))
}

// Observe reports the sampler as healthy only when no field was degraded.
func (s *Server) Observe(snap model.MetricsSnapshot) {
	s.health.SetServingStatus(ServiceSampler, status(len(snap.Degraded) == 0))
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.lis = lis

	go func() {
		log.Infof("gRPC health server starting on %s", lis.Addr())
		if err := s.grpc.Serve(lis); err != nil {
			log.WithError(err).Error("gRPC health server stopped")
		}
	}()
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	if s.lis == nil {
		return s.addr
	}
	return s.lis.Addr().String()
}

// Stop marks every service NOT_SERVING and stops the gRPC server.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

func status(serving bool) healthpb.HealthCheckResponse_ServingStatus {
	if serving {
		return healthpb.HealthCheckResponse_SERVING
	}
	return healthpb.HealthCheckResponse_NOT_SERVING
}

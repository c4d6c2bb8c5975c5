// Package api serves the monitor's snapshots, score, topology and live
// stream over HTTP.
package api

import (
	"context"
	"net"
	"net/http"
	"os"

	"Go2NetWatch/internal/alerter"
	"Go2NetWatch/internal/model"
	"Go2NetWatch/internal/topology"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// Deps are the read-only views the API exposes.
type Deps struct {
	Monitor    model.Aggregator
	Threshold  float64
	Interfaces func() map[string]model.InterfaceInfo
	Attacks    func() []alerter.AttackEvent
	Metrics    http.Handler
	// Host overrides the topology root, for tests.
	Host func() topology.Host
}

// Server is the HTTP API server.
type Server struct {
	deps Deps
	hub  *Hub
	http *http.Server
	lis  net.Listener
}

// NewServer creates the server and its router.
func NewServer(addr string, deps Deps) *Server {
	if deps.Host == nil {
		deps.Host = localHost
	}
	s := &Server{deps: deps, hub: NewHub()}
	s.http = &http.Server{Addr: addr, Handler: s.Router()}
	return s
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/snapshots/latest", s.handleLatest).Methods(http.MethodGet)
	v1.HandleFunc("/snapshots", s.handleSnapshots).Methods(http.MethodGet)
	v1.HandleFunc("/score", s.handleScore).Methods(http.MethodGet)
	v1.HandleFunc("/topology", s.handleTopology).Methods(http.MethodGet)
	v1.HandleFunc("/interfaces", s.handleInterfaces).Methods(http.MethodGet)
	v1.HandleFunc("/attacks", s.handleAttacks).Methods(http.MethodGet)
	v1.HandleFunc("/stream", s.hub.ServeWS).Methods(http.MethodGet)
	if s.deps.Metrics != nil {
		r.Handle("/metrics", s.deps.Metrics).Methods(http.MethodGet)
	}
	return r
}

// Broadcast pushes a snapshot to every stream client.
func (s *Server) Broadcast(snap model.MetricsSnapshot) {
	s.hub.Broadcast(snap)
}

// Start listens and serves in the background.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	s.lis = lis
	go func() {
		log.Infof("HTTP API server starting on %s", lis.Addr())
		if err := s.http.Serve(lis); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("HTTP API server error")
		}
	}()
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	if s.lis == nil {
		return s.http.Addr
	}
	return s.lis.Addr().String()
}

// Shutdown closes the stream clients and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.http.Shutdown(ctx)
}

func localHost() topology.Host {
	name, _ := os.Hostname()
	return topology.Host{Name: name}
}

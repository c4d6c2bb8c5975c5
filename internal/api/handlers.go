package api

import (
	"net/http"
	"strconv"

	"Go2NetWatch/internal/anomaly"
	"Go2NetWatch/internal/model"
	"Go2NetWatch/internal/topology"

	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type latestResponse struct {
	Snapshot model.MetricsSnapshot `json:"snapshot"`
	Status   anomaly.Status        `json:"status"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("failed to encode API response")
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.deps.Monitor.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, "no snapshot taken yet")
		return
	}
	writeJSON(w, http.StatusOK, latestResponse{Snapshot: snap, Status: anomaly.Evaluate(snap, s.deps.Threshold)})
}

func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	history := s.deps.Monitor.History()
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		if limit < len(history) {
			history = history[len(history)-limit:]
		}
	}
	if history == nil {
		history = []model.MetricsSnapshot{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.deps.Monitor.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, "no snapshot taken yet")
		return
	}
	writeJSON(w, http.StatusOK, anomaly.Evaluate(snap, s.deps.Threshold))
}

func (s *Server) handleTopology(w http.ResponseWriter, r *http.Request) {
	var conns map[string][]model.ConnectionRecord
	if snap, ok := s.deps.Monitor.Latest(); ok {
		conns = snap.Connections
	}
	g := topology.Build(s.deps.Host(), s.interfaces(), conns)

	if r.URL.Query().Get("format") == "dot" {
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		w.Write([]byte(topology.DOT(g)))
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleInterfaces(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.interfaces())
}

func (s *Server) handleAttacks(w http.ResponseWriter, r *http.Request) {
	if s.deps.Attacks == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Attacks())
}

func (s *Server) interfaces() map[string]model.InterfaceInfo {
	if s.deps.Interfaces == nil {
		return map[string]model.InterfaceInfo{}
	}
	return s.deps.Interfaces()
}

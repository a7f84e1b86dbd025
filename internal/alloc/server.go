package alloc

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kostasthomson/cloud-simulator/pkg/logger"
)

// Server exposes the heuristic allocator over HTTP
type Server struct {
	mux       *http.ServeMux
	allocator *HeuristicAllocator
}

// NewServer wires the allocator behind its HTTP routes
func NewServer(allocator *HeuristicAllocator) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		allocator: allocator,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/v1/allocate", s.handleAllocate)
	s.mux.HandleFunc("/v1/statistics", s.handleStatistics)

	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"method":    MethodHeuristic,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleAllocate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req AllocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Task.NumVMs <= 0 {
		s.writeError(w, http.StatusBadRequest, "task must request at least one VM")
		return
	}

	s.writeJSON(w, http.StatusOK, s.allocator.Allocate(&req))
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.allocator.Statistics())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": message,
	})
}

package server

import (
	"context"
	"net/http"
	"time"

	"github.com/secunda/directory/internal/api"
	"github.com/secunda/directory/internal/directory"
	httpmiddleware "github.com/secunda/directory/internal/http"
	"github.com/secunda/directory/internal/logger"
	"github.com/secunda/directory/internal/store"
)

const healthTimeout = 2 * time.Second

// Server exposes the directory queries over HTTP.
type Server struct {
	store   store.DirectoryStore
	service *directory.Service
	metrics *httpmiddleware.Metrics
}

// NewServer creates a server reading from st. metrics may be nil, in which
// case routes are not instrumented.
func NewServer(st store.DirectoryStore, metrics *httpmiddleware.Metrics) *Server {
	return &Server{
		store:   st,
		service: directory.NewService(st),
		metrics: metrics,
	}
}

// Handler returns the HTTP handler for the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint for load balancer
	s.handle(mux, "GET /health", s.health)

	s.handle(mux, "GET "+api.BasePath+"/buildings/organizations", s.organizationsByAddress)
	s.handle(mux, "GET "+api.BasePath+"/buildings/{id}/nearby", s.nearby)
	s.handle(mux, "GET "+api.BasePath+"/activities", s.listActivities)
	s.handle(mux, "GET "+api.BasePath+"/activities/{name}/organizations", s.organizationsByActivity)
	s.handle(mux, "GET "+api.BasePath+"/activities/{name}/tree/organizations", s.organizationsByActivityTree)
	s.handle(mux, "GET "+api.BasePath+"/organizations/search", s.searchOrganizations)
	s.handle(mux, "GET "+api.BasePath+"/organizations/{id}", s.getOrganization)

	return mux
}

func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	var handler http.Handler = h
	if s.metrics != nil {
		handler = s.metrics.Instrument(pattern, handler)
	}
	mux.Handle(pattern, handler)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("health check failed")
		writeUncached(w, http.StatusServiceUnavailable, api.HealthResponse{Status: "unavailable", Error: err.Error()})
		return
	}
	writeUncached(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

// writeUncached skips the ETag so health probes always see the live status.
func writeUncached(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Cache-Control", "no-store")
	httpmiddleware.WriteJSON(w, nil, status, v)
}

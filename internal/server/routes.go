package server

import (
	"net/http"
	"strings"
	"time"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Dashboard
	mux.HandleFunc("/api/categories/", s.routeCategories)
	mux.HandleFunc("/api/categories", s.handleCategories)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/charts/allocation", s.handleAllocationChart)
}

// routeCategories dispatches /api/categories/{category}/* to the appropriate handler.
func (s *Server) routeCategories(w http.ResponseWriter, r *http.Request) {
	category := PathParam(r, "/api/categories/", "/")
	if category == "" {
		WriteError(w, http.StatusBadRequest, "category is required in path")
		return
	}

	subpath := strings.TrimPrefix(r.URL.Path, "/api/categories/"+category)
	subpath = strings.Trim(subpath, "/")

	switch subpath {
	case "table":
		s.handleCategoryTable(w, r, category)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}

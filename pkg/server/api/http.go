// Package api provides the HTTP and WebSocket endpoints of the price tracker.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vikboyechko/pricetracker/pkg/history"
	"github.com/vikboyechko/pricetracker/pkg/logging"
	"github.com/vikboyechko/pricetracker/pkg/metrics"
	"github.com/vikboyechko/pricetracker/pkg/tracker"
)

// Server represents the HTTP API server.
type Server struct {
	addr     string
	tracker  *tracker.Tracker
	server   *http.Server
	logger   *logging.Logger
	wsServer *WebSocketServer // Optional WebSocket server for live updates
}

// NewServer creates a new HTTP API server.
func NewServer(addr string, trk *tracker.Tracker, logger *logging.Logger) *Server {
	return &Server{
		addr:    addr,
		tracker: trk,
		logger:  logger,
	}
}

// SetWebSocketServer sets the WebSocket server observations are pushed to.
func (s *Server) SetWebSocketServer(ws *WebSocketServer) {
	s.wsServer = ws
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/v1/product", s.handleProduct)
	mux.HandleFunc("/v1/observe", s.handleObserve)
	mux.HandleFunc("/v1/history", s.handleHistory)
	mux.HandleFunc("/v1/options", s.handleOptions)
	mux.HandleFunc("/v1/options/toggle", s.handleToggle)

	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("Starting HTTP server", "addr", s.addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		s.logger.Info("Stopping HTTP server")
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleHealth handles the /health endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()
	defer func() {
		metrics.RecordHTTPRequest("/health", "200", time.Since(start))
	}()

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// productResponse is the detection payload. Detected=false is a valid
// outcome for non-product pages, not an error.
type productResponse struct {
	Detected bool                 `json:"detected"`
	Product  *tracker.ProductInfo `json:"product,omitempty"`
}

// handleProduct handles GET /v1/product?url=. It fetches the page and runs
// detection without recording anything.
func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "200"
	defer func() {
		metrics.RecordHTTPRequest("/v1/product", status, time.Since(start))
	}()

	url := r.URL.Query().Get("url")
	if url == "" {
		status = "400"
		http.Error(w, "missing url parameter", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	info, err := s.tracker.Inspect(ctx, url)
	switch {
	case errors.Is(err, tracker.ErrNoProduct):
		s.sendJSON(w, productResponse{Detected: false})
	case errors.Is(err, tracker.ErrFetchFailed):
		status = "502"
		s.logger.Error("Failed to fetch page", "url", url, "error", err)
		http.Error(w, "failed to fetch page", http.StatusBadGateway)
	case err != nil:
		status = "500"
		s.logger.Error("Product detection failed", "url", url, "error", err)
		http.Error(w, "detection failed", http.StatusInternalServerError)
	default:
		s.sendJSON(w, productResponse{Detected: true, Product: info})
	}
}

type observeRequest struct {
	URL string `json:"url"`
}

// handleObserve handles POST /v1/observe. It fetches the page, records the
// observation and pushes the resulting summary to WebSocket clients.
func (s *Server) handleObserve(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "200"
	defer func() {
		metrics.RecordHTTPRequest("/v1/observe", status, time.Since(start))
	}()

	if r.Method != http.MethodPost {
		status = "405"
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req observeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		status = "400"
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	summary, err := s.tracker.Observe(ctx, req.URL, time.Now())
	switch {
	case errors.Is(err, tracker.ErrNoProduct):
		s.sendJSON(w, productResponse{Detected: false})
	case errors.Is(err, tracker.ErrTrackingDisabled):
		status = "409"
		http.Error(w, "tracking is disabled", http.StatusConflict)
	case errors.Is(err, tracker.ErrFetchFailed):
		status = "502"
		s.logger.Error("Failed to fetch page", "url", req.URL, "error", err)
		http.Error(w, "failed to fetch page", http.StatusBadGateway)
	case err != nil:
		status = "500"
		s.logger.Error("Failed to record observation", "url", req.URL, "error", err)
		http.Error(w, "failed to record observation", http.StatusInternalServerError)
	default:
		if s.wsServer != nil {
			s.wsServer.SendUpdate(summary)
		}
		s.sendJSON(w, summary)
	}
}

// handleHistory handles GET /v1/history?key=.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "200"
	defer func() {
		metrics.RecordHTTPRequest("/v1/history", status, time.Since(start))
	}()

	key := r.URL.Query().Get("key")
	if key == "" {
		status = "400"
		http.Error(w, "missing key parameter", http.StatusBadRequest)
		return
	}

	hist, err := s.tracker.History(r.Context(), key)
	switch {
	case errors.Is(err, history.ErrNotFound):
		status = "404"
		http.Error(w, "no history for key", http.StatusNotFound)
	case err != nil:
		status = "500"
		s.logger.Error("Failed to load history", "key", key, "error", err)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
	default:
		s.sendJSON(w, hist)
	}
}

// handleOptions handles GET /v1/options.
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "200"
	defer func() {
		metrics.RecordHTTPRequest("/v1/options", status, time.Since(start))
	}()

	opts, err := s.tracker.Options(r.Context())
	if err != nil {
		status = "500"
		s.logger.Error("Failed to load tracking options", "error", err)
		http.Error(w, "failed to load options", http.StatusInternalServerError)
		return
	}
	s.sendJSON(w, opts)
}

type toggleRequest struct {
	Option string `json:"option"`
}

// handleToggle handles POST /v1/options/toggle.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "200"
	defer func() {
		metrics.RecordHTTPRequest("/v1/options/toggle", status, time.Since(start))
	}()

	if r.Method != http.MethodPost {
		status = "405"
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Option == "" {
		status = "400"
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	opts, err := s.tracker.ToggleOption(r.Context(), req.Option)
	switch {
	case errors.Is(err, tracker.ErrUnknownOption):
		status = "400"
		http.Error(w, "unknown option", http.StatusBadRequest)
	case err != nil:
		status = "500"
		s.logger.Error("Failed to toggle option", "option", req.Option, "error", err)
		http.Error(w, "failed to toggle option", http.StatusInternalServerError)
	default:
		s.sendJSON(w, opts)
	}
}

// sendJSON sends a JSON response.
func (s *Server) sendJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response", "error", err)
	}
}

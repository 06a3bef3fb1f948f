// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jeranaias/scribe-tui/internal/backend"
	"github.com/jeranaias/scribe-tui/internal/util"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultPort is the default port for the proxy server.
	DefaultPort = 3000

	// Version is the proxy server version.
	Version = "1.0.0"

	// MaxRequestBodySize limits incoming chat request bodies.
	// SECURITY: Prevents memory exhaustion from oversized requests.
	MaxRequestBodySize = 1 * 1024 * 1024 // 1MB

	// healthProbeTimeout bounds the backend reachability check.
	healthProbeTimeout = 2 * time.Second
)

// ============================================================================
// SERVER STATS
// ============================================================================

// ServerStats tracks proxy usage statistics.
type ServerStats struct {
	// StartTime is when the server started.
	StartTime time.Time

	totalRequests int64
	chatRequests  int64
	imageRequests int64
	errorCount    int64
}

// NewServerStats creates a new ServerStats instance.
func NewServerStats() *ServerStats {
	return &ServerStats{StartTime: time.Now()}
}

// RecordChat records a relayed chat request.
func (s *ServerStats) RecordChat() {
	atomic.AddInt64(&s.totalRequests, 1)
	atomic.AddInt64(&s.chatRequests, 1)
}

// RecordImage records an image download request.
func (s *ServerStats) RecordImage() {
	atomic.AddInt64(&s.totalRequests, 1)
	atomic.AddInt64(&s.imageRequests, 1)
}

// RecordError records a request that ended in an error response.
func (s *ServerStats) RecordError() {
	atomic.AddInt64(&s.errorCount, 1)
}

// Snapshot returns a consistent copy of the counters.
func (s *ServerStats) Snapshot() (total, chat, image, errors int64) {
	return atomic.LoadInt64(&s.totalRequests),
		atomic.LoadInt64(&s.chatRequests),
		atomic.LoadInt64(&s.imageRequests),
		atomic.LoadInt64(&s.errorCount)
}

// Uptime returns how long the server has been running.
func (s *ServerStats) Uptime() time.Duration {
	return time.Since(s.StartTime)
}

// ============================================================================
// SERVER
// ============================================================================

// Server is the local HTTP proxy between the chat frontend and the remote
// solution-architect backend. It relays chat requests verbatim and fronts
// diagram image downloads so the frontend never talks to the backend host
// directly.
type Server struct {
	port    int
	backend *backend.Client
	router  *http.ServeMux
	server  *http.Server
	stats   *ServerStats

	rateRPS   float64
	rateBurst int
	cors      *CORSConfig

	mu sync.RWMutex
}

// NewServer creates a new proxy server on the given port, relaying to the
// given backend client.
func NewServer(port int, client *backend.Client) *Server {
	if port <= 0 {
		port = DefaultPort
	}
	s := &Server{
		port:      port,
		backend:   client,
		router:    http.NewServeMux(),
		stats:     NewServerStats(),
		rateRPS:   10,
		rateBurst: 20,
		cors:      DefaultCORSConfig(),
	}
	s.setupRoutes()
	return s
}

// WithRateLimit sets the per-client rate limit. A zero or negative rps
// disables limiting.
func (s *Server) WithRateLimit(rps float64, burst int) *Server {
	s.rateRPS = rps
	s.rateBurst = burst
	return s
}

// WithCORS sets the CORS configuration.
func (s *Server) WithCORS(cors *CORSConfig) *Server {
	s.cors = cors
	return s
}

// Port returns the port the server listens on.
func (s *Server) Port() int {
	return s.port
}

// Stats returns the server's usage statistics.
func (s *Server) Stats() *ServerStats {
	return s.stats
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return Chain(
		RecoveryMiddleware(),
		RequestIDMiddleware(),
		LoggingMiddleware(log.Default()),
		CORSMiddleware(s.cors),
		RateLimitMiddleware(NewRateLimiter(s.rateRPS, s.rateBurst)),
	)(s.router)
}

// setupRoutes configures the HTTP routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("POST /api/chat", s.handleChatRelay)
	s.router.HandleFunc("GET /api/chat", s.handleImageDownload)
	s.router.HandleFunc("GET /health", s.handleHealth)
}

// ============================================================================
// CHAT RELAY HANDLER
// ============================================================================

// handleChatRelay handles POST /api/chat.
//
// The request body is forwarded to the backend conversation endpoint without
// inspection and the remote JSON is passed back verbatim. A remote non-2xx
// status or a transport failure both surface as HTTP 500 with error details,
// never as the remote status itself.
func (s *Server) handleChatRelay(w http.ResponseWriter, r *http.Request) {
	s.stats.RecordChat()

	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Failed to read request body", err.Error())
		return
	}

	respBody, status, err := s.backend.RelayChat(r.Context(), body)
	if err != nil {
		log.Printf("CHAT_RELAY_FAILED | req=%s error=%v", RequestID(r.Context()), err)
		s.writeError(w, http.StatusInternalServerError, "Failed to process chat request", err.Error())
		return
	}
	if status < 200 || status > 299 {
		log.Printf("CHAT_RELAY_FAILED | req=%s backend_status=%d", RequestID(r.Context()), status)
		s.writeError(w, http.StatusInternalServerError, "Failed to process chat request",
			fmt.Sprintf("backend returned HTTP %d", status))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(respBody)
}

// ============================================================================
// IMAGE DOWNLOAD HANDLER
// ============================================================================

// handleImageDownload handles GET /api/chat?url=...&filename=...
//
// Fetches the diagram image from the backend and streams it back as an
// attachment so the frontend can trigger a download without exposing the
// backend host to the browser.
func (s *Server) handleImageDownload(w http.ResponseWriter, r *http.Request) {
	s.stats.RecordImage()

	imageURL := r.URL.Query().Get("url")
	if imageURL == "" {
		s.writeError(w, http.StatusBadRequest, "url parameter is required", "")
		return
	}

	filename := r.URL.Query().Get("filename")
	if filename == "" {
		filename = util.DefaultImageFilename
	}
	filename = util.SanitizeHeaderFilename(filename)

	data, err := s.backend.FetchImage(r.Context(), imageURL)
	if err != nil {
		log.Printf("IMAGE_DOWNLOAD_FAILED | req=%s url=%s error=%v", RequestID(r.Context()), imageURL, err)
		s.writeError(w, http.StatusInternalServerError, "Failed to download image", err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ============================================================================
// HEALTH HANDLER
// ============================================================================

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	BackendStatus string `json:"backend_status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:        "ok",
		Version:       Version,
		UptimeSeconds: int64(s.stats.Uptime().Seconds()),
	}

	if !s.backend.IsConfigured() {
		health.BackendStatus = "not_configured"
		health.Status = "degraded"
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
		defer cancel()

		if err := s.backend.CheckReachable(ctx); err != nil {
			health.BackendStatus = "unreachable"
			health.Status = "degraded"
		} else {
			health.BackendStatus = "ok"
		}
	}

	s.writeJSON(w, http.StatusOK, health)
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)

	s.mu.Lock()
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	srv := s.server
	s.mu.Unlock()

	log.Printf("PROXY_START | addr=%s version=%s backend=%s", addr, Version, s.backend.BaseURL())
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.server
	s.mu.RUnlock()

	if srv == nil {
		return nil
	}

	total, chat, image, errCount := s.stats.Snapshot()
	log.Printf("PROXY_SHUTDOWN | total=%d chat=%d image=%d errors=%d", total, chat, image, errCount)

	return srv.Shutdown(ctx)
}

// ============================================================================
// HELPERS
// ============================================================================

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorResponse is the JSON error body shape.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// writeError writes a JSON error response and counts it.
func (s *Server) writeError(w http.ResponseWriter, status int, message, details string) {
	s.stats.RecordError()
	s.writeJSON(w, status, errorResponse{
		Error:   message,
		Details: details,
	})
}

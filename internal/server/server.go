// Package server provides the HTTP status server for gimbaltrack.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"gocv.io/x/gocv"

	"github.com/ayusman/gimbaltrack/internal/app"
	"github.com/ayusman/gimbaltrack/internal/server/api"
	"github.com/ayusman/gimbaltrack/internal/store"
)

// shutdownTimeout bounds how long Run waits for open requests on exit.
const shutdownTimeout = 5 * time.Second

// Tracker is the part of app.App the server reads from.
type Tracker interface {
	Status() app.Status
	Mask(dst *gocv.Mat) bool
	SetEnabled(enabled bool)
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Tracker   Tracker
}

// Server represents the HTTP server for the gimbaltrack application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	status *StatusHandler
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	// Register session API handler if Store is configured
	if s.config.Store != nil {
		sessions := api.NewSessionHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessions)
		s.mux.Handle("/api/sessions/", sessions)
	}

	// Live endpoints need a running tracker
	if s.config.Tracker != nil {
		s.mux.HandleFunc("/api/status", s.handleStatus)
		s.status = NewStatusHandler(s.config.Tracker)
		s.mux.Handle("/api/ws", s.status)
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Tracker))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type healthResponse struct {
	Status string      `json:"status"`
	Uptime string      `json:"uptime"`
	Host   *hostHealth `json:"host,omitempty"`
}

type hostHealth struct {
	MemUsedPercent float64 `json:"mem_used_percent"`
	MemAvailable   uint64  `json:"mem_available"`
	Load1          float64 `json:"load1"`
	Load5          float64 `json:"load5"`
	Load15         float64 `json:"load15"`
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := healthResponse{
		Status: "ok",
		Uptime: time.Since(s.start).String(),
		Host:   readHostHealth(r.Context()),
	}

	writeJSON(w, http.StatusOK, response)
}

// readHostHealth collects memory and load figures. Figures the platform
// cannot report are left at zero; nil means nothing could be read.
func readHostHealth(ctx context.Context) *hostHealth {
	h := &hostHealth{}
	ok := false

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		h.MemUsedPercent = vm.UsedPercent
		h.MemAvailable = vm.Available
		ok = true
	}
	if avg, err := load.AvgWithContext(ctx); err == nil {
		h.Load1, h.Load5, h.Load15 = avg.Load1, avg.Load5, avg.Load15
		ok = true
	}

	if !ok {
		return nil
	}
	return h
}

type setEnabledRequest struct {
	Enabled *bool `json:"enabled"`
}

// handleStatus handles GET /api/status and PUT /api/status {"enabled": bool}.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.config.Tracker.Status())
	case http.MethodPut:
		var req setEnabledRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "expected {\"enabled\": bool}"})
			return
		}
		s.config.Tracker.SetEnabled(*req.Enabled)
		writeJSON(w, http.StatusOK, s.config.Tracker.Status())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if s.status != nil {
		go s.status.Broadcast(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

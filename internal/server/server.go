// Package server provides the optional debug HTTP server: live overlay
// stream, gesture state feed and history endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/ayusman/gesturedrive/internal/server/api"
	"github.com/ayusman/gesturedrive/internal/store"
)

const shutdownTimeout = 3 * time.Second

// Config holds the server configuration. Every endpoint except health is
// registered only when its backing component is set.
type Config struct {
	Store  *store.Store
	Frames *FrameBuffer
	Hub    *Hub
	Clock  quartz.Clock
	Logger *log.Logger
}

// Server is the debug HTTP server.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Clock == nil {
		config.Clock = quartz.NewReal()
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	config.Logger = config.Logger.WithPrefix("server")

	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  config.Clock.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		runs := api.NewRunHandler(s.config.Store)
		sessions := api.NewSessionHandler(s.config.Store)
		s.mux.Handle("/api/runs", runs)
		s.mux.Handle("/api/runs/", runs)
		s.mux.Handle("/api/sessions", sessions)
		s.mux.Handle("/api/sessions/", sessions)
	}

	if s.config.Frames != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Frames))
	}

	if s.config.Hub != nil {
		s.mux.Handle("/api/state", s.config.Hub)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": s.config.Clock.Since(s.start).String(),
	}
	if s.config.Hub != nil {
		response["state_clients"] = s.config.Hub.Clients()
	}
	if s.config.Frames != nil {
		response["stream_viewers"] = s.config.Frames.Viewers()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
// Open streams and websocket clients are closed on shutdown.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		if s.config.Hub != nil {
			s.config.Hub.Close()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.config.Logger.Warn("shutdown", "err", err)
		}
	}()

	s.config.Logger.Info("listening", "addr", addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return err
}

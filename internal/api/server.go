// Package api provides the HTTP API for observing and playing the store chain.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (player command plane).
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"github.com/talgya/storefront/internal/engine"
	"github.com/talgya/storefront/internal/journal"
)

const maxStreamConns = 8

// Server serves the world over HTTP.
type Server struct {
	World    *engine.World
	Eng      *engine.Engine   // Optional; speed control is unavailable without it
	Journal  *journal.Journal // Optional; history endpoints fall back to the in-memory log
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	// CommandLimit caps POST requests per client IP per minute. Zero means 120.
	CommandLimit int

	streamConns int32
	srv         *http.Server
}

// Handler builds the router. Exposed for tests and embedding.
func (s *Server) Handler() http.Handler {
	limit := s.CommandLimit
	if limit <= 0 {
		limit = 120
	}
	commands := NewRateLimiter(limit, time.Minute)

	r := mux.NewRouter()
	v1 := r.PathPrefix("/api/v1").Subrouter()

	// Public endpoints (GET, read-only).
	v1.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	v1.HandleFunc("/stores", s.handleStores).Methods(http.MethodGet)
	v1.HandleFunc("/stores/{index:[0-9]+}", s.handleStore).Methods(http.MethodGet)
	v1.HandleFunc("/notifications", s.handleNotifications).Methods(http.MethodGet)
	v1.HandleFunc("/reports", s.handleReports).Methods(http.MethodGet)
	v1.HandleFunc("/catalog", s.handleCatalog).Methods(http.MethodGet)
	v1.HandleFunc("/speed", s.handleSpeed).Methods(http.MethodGet)

	// Websocket snapshot stream.
	v1.HandleFunc("/stream", s.handleStream).Methods(http.MethodGet)

	// Player commands (POST, bearer token, rate limited).
	cmd := func(h http.HandlerFunc) http.HandlerFunc {
		return s.adminOnly(RateLimitMiddleware(commands, h))
	}
	v1.HandleFunc("/stores", cmd(s.handleOpenStore)).Methods(http.MethodPost)
	v1.HandleFunc("/stores/{index:[0-9]+}/restock", cmd(s.handleRestock)).Methods(http.MethodPost)
	v1.HandleFunc("/stores/{index:[0-9]+}/upgrades", cmd(s.handleStoreUpgrade)).Methods(http.MethodPost)
	v1.HandleFunc("/stores/{index:[0-9]+}/fix", cmd(s.handleFix)).Methods(http.MethodPost)
	v1.HandleFunc("/upgrades", cmd(s.handleGlobalUpgrade)).Methods(http.MethodPost)
	v1.HandleFunc("/prices", cmd(s.handlePrice)).Methods(http.MethodPost)
	v1.HandleFunc("/speed", s.adminOnly(s.handleSpeed)).Methods(http.MethodPost)

	return corsMiddleware(r)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops the server started by Start.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "commands disabled (no STORESIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

func (s *Server) activeStreams() int32 {
	return atomic.LoadInt32(&s.streamConns)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Debug("write json failed", "error", err)
	}
}

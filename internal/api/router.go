// Package api provides the REST API for the calc service.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ternarybob/calc/internal/config"
	"github.com/ternarybob/calc/internal/keypad"
	"github.com/ternarybob/calc/internal/mcp"
)

// Server represents the API server.
type Server struct {
	cfg    *config.Config
	router chi.Router
	pad    *keypad.Keypad
	mcp    http.Handler
}

// NewServer creates a new API server driving pad. With MCP enabled the same
// keypad is also served as MCP tools at /mcp.
func NewServer(cfg *config.Config, pad *keypad.Keypad) *Server {
	var mcpHandler http.Handler
	if cfg.MCP.Enabled {
		mcpHandler = mcp.NewServer(pad, version).HTTPHandler()
	}
	return newServer(cfg, pad, mcpHandler)
}

func newServer(cfg *config.Config, pad *keypad.Keypad, mcpHandler http.Handler) *Server {
	s := &Server{
		cfg: cfg,
		pad: pad,
		mcp: mcpHandler,
	}

	s.setupRouter()
	return s
}

// setupRouter configures all routes.
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-API-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if s.cfg.API.APIKey != "" {
		r.Use(s.apiKeyAuth)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/health", s.handleHealth)
		r.Get("/version", s.handleVersion)

		r.Route("/calculator", func(r chi.Router) {
			r.Get("/", s.handleSnapshot)
			r.Post("/keys", s.handleKeys)
			r.Post("/digits", s.handleDigit)
			r.Post("/operations", s.handleOperation)
			r.Post("/compute", s.handleCompute)
			r.Post("/clear", s.handleClear)
		})
	})

	// Streamable MCP sessions outlive the request timeout.
	if s.mcp != nil {
		r.Handle("/mcp", s.mcp)
	}

	s.router = r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// apiKeyAuth rejects requests without the configured X-API-Key, except
// health and version checks.
func (s *Server) apiKeyAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || r.URL.Path == "/version" {
			next.ServeHTTP(w, r)
			return
		}

		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			apiKey = r.URL.Query().Get("api_key")
		}

		if apiKey != s.cfg.API.APIKey {
			writeError(w, http.StatusUnauthorized, "Invalid or missing API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Package api exposes summarization and the article store over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/hyperifyio/gosummarize/internal/app"
	"github.com/hyperifyio/gosummarize/internal/store"
	"github.com/hyperifyio/gosummarize/internal/summarize"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 8 << 20

// Pipeline is the part of app.App the server needs.
type Pipeline interface {
	Process(ctx context.Context, rawURL string) (store.Record, error)
	SummarizeText(req summarize.Request, strategy string, keywords int) (app.TextSummary, error)
	Store() store.Store
}

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	pipeline Pipeline
	log      zerolog.Logger
	apiKey   string
}

// NewServer creates and configures the HTTP server. An empty apiKey leaves
// /api routes open.
func NewServer(p Pipeline, log zerolog.Logger, apiKey string) *Server {
	s := &Server{
		pipeline: p,
		log:      log,
		apiKey:   apiKey,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.apiKey != "" {
			r.Use(AuthMiddleware(s.apiKey, s.log))
		}

		r.Post("/api/summarize", s.handleSummarize)
		r.Post("/api/articles", s.handleCreateArticle)
		r.Get("/api/articles", s.handleListArticles)
		r.Get("/api/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

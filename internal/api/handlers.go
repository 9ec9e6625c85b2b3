package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/hyperifyio/gosummarize/internal/app"
	"github.com/hyperifyio/gosummarize/internal/extract"
	"github.com/hyperifyio/gosummarize/internal/fetch"
	"github.com/hyperifyio/gosummarize/internal/store"
	"github.com/hyperifyio/gosummarize/internal/summarize"
)

type summarizeRequest struct {
	summarize.Request
	Strategy string `json:"strategy,omitempty"`
	Keywords int    `json:"keywords,omitempty"`
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Keywords < 0 {
		jsonError(w, "keywords must not be negative", http.StatusBadRequest)
		return
	}
	out, err := s.pipeline.SummarizeText(req.Request, req.Strategy, req.Keywords)
	if err != nil {
		if errors.Is(err, summarize.ErrConfiguration) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.log.Error().Err(err).Msg("summarize failed")
		jsonError(w, "summarize failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type articleRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		jsonError(w, "url is required", http.StatusBadRequest)
		return
	}
	rec, err := s.pipeline.Process(r.Context(), req.URL)
	if err != nil {
		code := processStatus(err)
		if code >= http.StatusInternalServerError {
			s.log.Warn().Err(err).Str("url", req.URL).Int("status", code).Msg("article failed")
		}
		jsonError(w, err.Error(), code)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// processStatus maps a pipeline error to an HTTP status.
func processStatus(err error) int {
	switch {
	case errors.Is(err, fetch.ErrInvalidURL), errors.Is(err, summarize.ErrConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrEmptyArticle):
		return http.StatusUnprocessableEntity
	case errors.Is(err, fetch.ErrUnsupportedContentType), errors.Is(err, extract.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, app.ErrSave):
		return http.StatusInternalServerError
	}
	return http.StatusBadGateway
}

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records, err := s.pipeline.Store().List(r.Context(), store.Filter{
		URL:    q.Get("url"),
		Title:  q.Get("title"),
		Author: q.Get("author"),
	})
	if err != nil {
		jsonError(w, "failed to list articles: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []store.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"articles": records, "count": len(records)})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	totals, err := s.pipeline.Store().Stats(r.Context())
	if err != nil {
		jsonError(w, "failed to read stats: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

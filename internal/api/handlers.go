package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/vidyagam/vidyagam/internal/database"
	"github.com/vidyagam/vidyagam/internal/digest"
	"github.com/vidyagam/vidyagam/internal/ingestion"
	"github.com/vidyagam/vidyagam/internal/models"
	"log/slog"
)

const (
	defaultDigestLimit  = 50
	defaultRecentHours  = 24
	defaultSessionLimit = 20
	maxLimit            = 200
)

// SourceStore lists scrape sources. Satisfied by
// *database.PostgresSourceRepository.
type SourceStore interface {
	List(ctx context.Context) ([]models.SourceDefinition, error)
	ListEnabled(ctx context.Context) ([]models.SourceDefinition, error)
}

// Handler serves the digest and scrape-trigger endpoints.
type Handler struct {
	db        *sql.DB
	runner    *ingestion.Runner
	assembler *digest.Assembler
	sources   SourceStore
	sessions  ingestion.SessionRepository
	logger    *slog.Logger
	startTime time.Time
}

// NewHandler creates the API handler.
func NewHandler(
	db *sql.DB,
	runner *ingestion.Runner,
	assembler *digest.Assembler,
	sources SourceStore,
	sessions ingestion.SessionRepository,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		db:        db,
		runner:    runner,
		assembler: assembler,
		sources:   sources,
		sessions:  sessions,
		logger:    logger,
		startTime: time.Now(),
	}
}

// HealthHandler handles GET /health
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := "ok"
	code := http.StatusOK
	if err := database.HealthCheck(r.Context(), h.db); err != nil {
		h.logger.Error("health check failed", "error", err)
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]interface{}{
		"status":         status,
		"uptime_seconds": int(time.Since(h.startTime).Seconds()),
	}, h.logger)
}

// DigestHandler handles GET /api/digest, the ranked current-day digest.
func (h *Handler) DigestHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := queryInt(r, "limit", defaultDigestLimit)

	d, err := h.assembler.CurrentDay(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to assemble digest", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, d, h.logger)
}

// CurrentDayArticlesHandler handles GET /api/articles/current-day
func (h *Handler) CurrentDayArticlesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := queryInt(r, "limit", defaultDigestLimit)

	d, err := h.assembler.CurrentDay(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to load current-day articles", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, articlesResponse{
		Articles: d.Articles,
		Count:    d.Total,
	}, h.logger)
}

// RecentArticlesHandler handles GET /api/articles/recent
func (h *Handler) RecentArticlesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	hours := queryInt(r, "hours", defaultRecentHours)
	limit := queryInt(r, "limit", defaultDigestLimit)

	d, err := h.assembler.Recent(r.Context(), hours, limit)
	if err != nil {
		h.logger.Error("failed to load recent articles", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, articlesResponse{
		Articles: d.Articles,
		Count:    d.Total,
	}, h.logger)
}

// scrapeRequest is the POST /api/scrape body.
type scrapeRequest struct {
	FilterCurrentDay *bool `json:"filter_current_day,omitempty"`
}

// ScrapeHandler handles POST /api/scrape, the manual scrape trigger. The
// response mirrors the runner's structured result; a failed run is a 200
// with success=false, not a 5xx, because the run itself is the payload.
func (h *Handler) ScrapeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filterCurrentDay := true
	if r.Body != nil {
		var req scrapeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.FilterCurrentDay != nil {
			filterCurrentDay = *req.FilterCurrentDay
		}
	}

	sources, err := h.sources.ListEnabled(r.Context())
	if err != nil {
		h.logger.Error("failed to load sources for scrape", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Detach the run from the request context so a client disconnect
	// doesn't abort a scrape that is already writing.
	result := h.runner.Run(context.WithoutCancel(r.Context()), sources, filterCurrentDay)

	writeJSON(w, http.StatusOK, result, h.logger)
}

// SessionsHandler handles GET /api/sessions
func (h *Handler) SessionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := queryInt(r, "limit", defaultSessionLimit)

	sessions, err := h.sessions.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to load sessions", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, sessionsResponse{
		Sessions: sessions,
		Count:    len(sessions),
	}, h.logger)
}

// SourcesHandler handles GET /api/sources
func (h *Handler) SourcesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sources, err := h.sources.List(r.Context())
	if err != nil {
		h.logger.Error("failed to load sources", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, sourcesResponse{
		Sources: sources,
		Count:   len(sources),
	}, h.logger)
}

type articlesResponse struct {
	Articles []models.ScoredArticle `json:"articles"`
	Count    int                    `json:"count"`
}

type sessionsResponse struct {
	Sessions []models.ScrapeSession `json:"sessions"`
	Count    int                    `json:"count"`
}

type sourcesResponse struct {
	Sources []models.SourceDefinition `json:"sources"`
	Count   int                       `json:"count"`
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

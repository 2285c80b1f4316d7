package api

import (
	"net/http"
)

// SetupRoutes wires the handler's endpoints into the mux.
func SetupRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("/health", handler.HealthHandler)
	mux.HandleFunc("/api/digest", handler.DigestHandler)
	mux.HandleFunc("/api/articles/current-day", handler.CurrentDayArticlesHandler)
	mux.HandleFunc("/api/articles/recent", handler.RecentArticlesHandler)
	mux.HandleFunc("/api/scrape", handler.ScrapeHandler)
	mux.HandleFunc("/api/sessions", handler.SessionsHandler)
	mux.HandleFunc("/api/sources", handler.SourcesHandler)
}

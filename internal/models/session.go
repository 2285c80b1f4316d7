package models

import (
	"time"
)

// SessionStatus tracks the lifecycle of a scrape session. A session only
// ever moves running -> completed or running -> failed.
type SessionStatus string

const (
	SessionStatusRunning   SessionStatus = "running"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusFailed    SessionStatus = "failed"
)

// ScrapeSession is the audit record for one full run of the scrape
// pipeline across all enabled sources. Created when the run starts,
// updated exactly once at the terminal transition, immutable after that.
type ScrapeSession struct {
	ID                string        `json:"id"`
	SessionType       string        `json:"session_type"`
	StartedAt         time.Time     `json:"started_at"`
	CompletedAt       *time.Time    `json:"completed_at,omitempty"`
	Status            SessionStatus `json:"status"`
	ArticlesFound     int           `json:"articles_found"`
	ArticlesProcessed int           `json:"articles_processed"`
	ErrorsCount       int           `json:"errors_count"`
	ErrorDetails      string        `json:"error_details,omitempty"`
}

// Terminal reports whether the session has reached a terminal status.
func (s *ScrapeSession) Terminal() bool {
	return s.Status == SessionStatusCompleted || s.Status == SessionStatusFailed
}

package models

import (
	"time"
)

// RawEntry is a single parsed feed item before scoring. It lives only for
// the duration of a scrape run and is never persisted as-is.
type RawEntry struct {
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Summary     string     `json:"summary"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// ScoredArticle is a scraped, scored and persisted article. ID is the
// content fingerprint derived from the entry URL and title.
type ScoredArticle struct {
	ID                string      `json:"id"`
	Title             string      `json:"title"`
	Description       string      `json:"description"`
	Summary           string      `json:"summary"`
	URL               string      `json:"url"`
	Source            string      `json:"source"`
	SignificanceScore float64     `json:"significance_score"`
	ImpactLevel       ImpactLevel `json:"impact_level"`
	PublishedAt       time.Time   `json:"published_at"`
	ScrapedAt         time.Time   `json:"scraped_at"`
	IsCurrentDay      bool        `json:"is_current_day"`
	LLMProcessed      bool        `json:"llm_processed"`
}

// ImpactLevel classifies the expected reach of an article.
type ImpactLevel string

const (
	ImpactLow    ImpactLevel = "low"
	ImpactMedium ImpactLevel = "medium"
	ImpactHigh   ImpactLevel = "high"
)

// Valid reports whether the impact level is one of the known values.
func (l ImpactLevel) Valid() bool {
	switch l {
	case ImpactLow, ImpactMedium, ImpactHigh:
		return true
	}
	return false
}

// NormalizeImpactLevel maps arbitrary input to a known impact level,
// defaulting to medium for anything unrecognized.
func NormalizeImpactLevel(raw string) ImpactLevel {
	level := ImpactLevel(raw)
	if level.Valid() {
		return level
	}
	return ImpactMedium
}

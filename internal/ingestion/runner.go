package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vidyagam/vidyagam/internal/models"
	"github.com/vidyagam/vidyagam/internal/scoring"
)

// FeedFetcher retrieves raw entries for one source. Satisfied by *Fetcher;
// tests substitute a stub.
type FeedFetcher interface {
	Fetch(ctx context.Context, source models.SourceDefinition) ([]models.RawEntry, error)
}

// Metrics receives pipeline observations. Satisfied by *metrics.Collector.
type Metrics interface {
	ObserveArticlesFound(n int)
	ObserveArticlesProcessed(n int)
	ObserveArticleSkipped(reason string)
	ObserveSessionDuration(status string, d time.Duration)
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) ObserveArticlesFound(int)                     {}
func (NopMetrics) ObserveArticlesProcessed(int)                 {}
func (NopMetrics) ObserveArticleSkipped(string)                 {}
func (NopMetrics) ObserveSessionDuration(string, time.Duration) {}

// Result is the structured outcome of a scrape run. The runner always
// returns a Result rather than raising: a failed run must not crash the
// scheduler or HTTP trigger that invoked it.
type Result struct {
	SessionID         string `json:"session_id"`
	ArticlesFound     int    `json:"articles_found"`
	ArticlesProcessed int    `json:"articles_processed"`
	Success           bool   `json:"success"`
	Error             string `json:"error,omitempty"`
}

// Runner orchestrates one scrape run: fetch each enabled source, classify
// recency, dedupe by fingerprint, score, and upsert, all wrapped in a
// scrape session audit record.
type Runner struct {
	fetcher    FeedFetcher
	scorer     scoring.Scorer
	classifier *Classifier
	articles   ArticleRepository
	sessions   SessionRepository
	metrics    Metrics
	logger     *slog.Logger
}

// NewRunner creates a scrape runner.
func NewRunner(
	fetcher FeedFetcher,
	scorer scoring.Scorer,
	classifier *Classifier,
	articles ArticleRepository,
	sessions SessionRepository,
	metrics Metrics,
	logger *slog.Logger,
) *Runner {
	if metrics == nil {
		metrics = NopMetrics{}
	}

	return &Runner{
		fetcher:    fetcher,
		scorer:     scorer,
		classifier: classifier,
		articles:   articles,
		sessions:   sessions,
		metrics:    metrics,
		logger:     logger,
	}
}

// Run executes a scrape across the given sources. Sources are processed
// sequentially; within one source, entries are processed in feed order.
// Fetch and scoring failures are local (log and continue); persistence
// failures abort the run and fail the session, since continuing to write
// into a possibly-broken store helps nobody.
func (r *Runner) Run(ctx context.Context, sources []models.SourceDefinition, filterCurrentDay bool) Result {
	enabled := make([]models.SourceDefinition, 0, len(sources))
	for _, source := range sources {
		if source.Enabled {
			enabled = append(enabled, source)
		}
	}

	// Configuration errors fail fast, before any network call.
	if len(enabled) == 0 {
		r.logger.Error("scrape aborted: no sources enabled")
		return Result{Success: false, Error: "no sources enabled"}
	}

	session, err := r.beginSession(ctx, "scrape")
	if err != nil {
		r.logger.Error("failed to begin scrape session", "error", err)
		return Result{Success: false, Error: err.Error()}
	}

	r.logger.Info("scrape session started",
		"session_id", session.id,
		"sources", len(enabled),
		"filter_current_day", filterCurrentDay,
		"current_day", r.classifier.CurrentDay())

	found := 0
	processed := 0

	for _, source := range enabled {
		if err := ctx.Err(); err != nil {
			return r.failRun(ctx, session, found, processed,
				fmt.Errorf("scrape cancelled: %w", err))
		}

		entries, err := r.fetcher.Fetch(ctx, source)
		if err != nil {
			// Transient source errors skip the source; the next
			// scheduled run retries naturally.
			r.logger.Warn("failed to fetch source, skipping",
				"source", source.Name,
				"error", err)
			r.metrics.ObserveArticleSkipped("fetch_error")
			continue
		}

		r.logger.Info("fetched source",
			"source", source.Name,
			"entries", len(entries))

		for _, entry := range entries {
			found++

			isCurrentDay := r.classifier.IsCurrentDay(entry.PublishedAt)
			if filterCurrentDay && !isCurrentDay {
				r.metrics.ObserveArticleSkipped("not_current_day")
				continue
			}

			id := Fingerprint(entry.Link, entry.Title)

			exists, err := r.articles.Exists(ctx, id)
			if err != nil {
				return r.failRun(ctx, session, found, processed,
					fmt.Errorf("dedup check failed: %w", err))
			}
			if exists {
				r.metrics.ObserveArticleSkipped("duplicate")
				continue
			}

			analysis := r.scorer.Score(ctx, entry.Title, entry.Summary)

			now := time.Now().UTC()
			publishedAt := now
			if entry.PublishedAt != nil {
				publishedAt = *entry.PublishedAt
			}

			article := models.ScoredArticle{
				ID:                id,
				Title:             entry.Title,
				Description:       entry.Summary,
				Summary:           analysis.Summary,
				URL:               entry.Link,
				Source:            source.Name,
				SignificanceScore: analysis.SignificanceScore,
				ImpactLevel:       analysis.ImpactLevel,
				PublishedAt:       publishedAt,
				ScrapedAt:         now,
				IsCurrentDay:      isCurrentDay,
				LLMProcessed:      analysis.LLMProcessed,
			}

			if err := r.articles.Upsert(ctx, article); err != nil {
				return r.failRun(ctx, session, found, processed,
					fmt.Errorf("failed to persist article %s: %w", entry.Link, err))
			}

			processed++
		}
	}

	if err := session.complete(ctx, found, processed); err != nil {
		r.logger.Error("failed to complete scrape session",
			"session_id", session.id,
			"error", err)
	}

	r.metrics.ObserveArticlesFound(found)
	r.metrics.ObserveArticlesProcessed(processed)
	r.metrics.ObserveSessionDuration(string(models.SessionStatusCompleted), time.Since(session.startedAt))

	r.logger.Info("scrape session completed",
		"session_id", session.id,
		"articles_found", found,
		"articles_processed", processed)

	return Result{
		SessionID:         session.id,
		ArticlesFound:     found,
		ArticlesProcessed: processed,
		Success:           true,
	}
}

func (r *Runner) failRun(ctx context.Context, session *session, found, processed int, cause error) Result {
	r.logger.Error("scrape session failed",
		"session_id", session.id,
		"articles_found", found,
		"articles_processed", processed,
		"error", cause)

	// Terminal updates must not be lost to the same cancellation that
	// aborted the run.
	if err := session.fail(context.WithoutCancel(ctx), cause.Error()); err != nil {
		r.logger.Error("failed to record session failure",
			"session_id", session.id,
			"error", err)
	}

	r.metrics.ObserveArticlesFound(found)
	r.metrics.ObserveArticlesProcessed(processed)
	r.metrics.ObserveSessionDuration(string(models.SessionStatusFailed), time.Since(session.startedAt))

	return Result{
		SessionID:         session.id,
		ArticlesFound:     found,
		ArticlesProcessed: processed,
		Success:           false,
		Error:             cause.Error(),
	}
}

// session is a run-scoped handle over the session repository that makes
// terminal transitions structurally single-shot.
type session struct {
	id        string
	startedAt time.Time
	repo      SessionRepository

	mu   sync.Mutex
	done bool
}

func (r *Runner) beginSession(ctx context.Context, sessionType string) (*session, error) {
	record := models.ScrapeSession{
		ID:          uuid.NewString(),
		SessionType: sessionType,
		StartedAt:   time.Now().UTC(),
		Status:      models.SessionStatusRunning,
	}

	if err := r.sessions.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create scrape session: %w", err)
	}

	return &session{
		id:        record.ID,
		startedAt: record.StartedAt,
		repo:      r.sessions,
	}, nil
}

func (s *session) complete(ctx context.Context, found, processed int) error {
	if err := s.terminate(); err != nil {
		return err
	}
	return s.repo.Complete(ctx, s.id, found, processed)
}

func (s *session) fail(ctx context.Context, detail string) error {
	if err := s.terminate(); err != nil {
		return err
	}
	return s.repo.Fail(ctx, s.id, detail)
}

func (s *session) terminate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return fmt.Errorf("session %s already terminated", s.id)
	}
	s.done = true
	return nil
}

// Package scheduler wires the cron jobs that periodically trigger a scrape
// run and prune articles past the retention window.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/vidyagam/vidyagam/internal/ingestion"
	"github.com/vidyagam/vidyagam/internal/models"
)

// ScrapeTrigger starts one scrape run. Satisfied by *ingestion.Runner.
type ScrapeTrigger interface {
	Run(ctx context.Context, sources []models.SourceDefinition, filterCurrentDay bool) ingestion.Result
}

// SourceLister loads the enabled source registry for a run.
type SourceLister interface {
	ListEnabled(ctx context.Context) ([]models.SourceDefinition, error)
}

// ArticlePruner removes articles older than the retention cutoff.
type ArticlePruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Config controls the scheduled scrape cycle.
type Config struct {
	ScrapeInterval   time.Duration
	FilterCurrentDay bool
	RetentionDays    int
	RunOnStart       bool
}

// Scheduler wraps robfig/cron around the scrape trigger and the retention
// cleanup.
type Scheduler struct {
	cron    *cron.Cron
	runner  ScrapeTrigger
	sources SourceLister
	pruner  ArticlePruner
	config  Config
	logger  *slog.Logger
}

// New creates a scheduler. The scrape interval must be at least one hour;
// the cleanup job always runs once a day.
func New(runner ScrapeTrigger, sources SourceLister, pruner ArticlePruner, cfg Config, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		runner:  runner,
		sources: sources,
		pruner:  pruner,
		config:  cfg,
		logger:  logger,
	}
}

// Start registers the jobs and starts the cron loop. When RunOnStart is
// set, one scrape fires immediately so a fresh deployment has content
// before the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	scrapeSpec := fmt.Sprintf("@every %dh", int(s.config.ScrapeInterval.Hours()))

	if _, err := s.cron.AddFunc(scrapeSpec, func() { s.runScrape(ctx) }); err != nil {
		return fmt.Errorf("failed to register scrape job: %w", err)
	}

	if _, err := s.cron.AddFunc("@daily", func() { s.runCleanup(ctx) }); err != nil {
		return fmt.Errorf("failed to register cleanup job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started",
		"scrape_spec", scrapeSpec,
		"retention_days", s.config.RetentionDays)

	if s.config.RunOnStart {
		go s.runScrape(ctx)
	}

	return nil
}

// Stop shuts the scheduler down, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runScrape(ctx context.Context) {
	sources, err := s.sources.ListEnabled(ctx)
	if err != nil {
		s.logger.Error("scheduled scrape: failed to load sources", "error", err)
		return
	}

	result := s.runner.Run(ctx, sources, s.config.FilterCurrentDay)
	if !result.Success {
		// A failed run is retried at the next tick; the session record
		// already carries the detail.
		s.logger.Warn("scheduled scrape failed",
			"session_id", result.SessionID,
			"error", result.Error)
		return
	}

	s.logger.Info("scheduled scrape finished",
		"session_id", result.SessionID,
		"articles_found", result.ArticlesFound,
		"articles_processed", result.ArticlesProcessed)
}

func (s *Scheduler) runCleanup(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -s.config.RetentionDays)

	deleted, err := s.pruner.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("retention cleanup failed", "error", err)
		return
	}

	s.logger.Info("retention cleanup finished",
		"cutoff", cutoff,
		"deleted", deleted)
}

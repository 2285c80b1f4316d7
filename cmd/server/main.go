package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/vidyagam/vidyagam/internal/api"
	"github.com/vidyagam/vidyagam/internal/config"
	"github.com/vidyagam/vidyagam/internal/database"
	"github.com/vidyagam/vidyagam/internal/digest"
	"github.com/vidyagam/vidyagam/internal/ingestion"
	"github.com/vidyagam/vidyagam/internal/logging"
	"github.com/vidyagam/vidyagam/internal/metrics"
	"github.com/vidyagam/vidyagam/internal/scheduler"
	"github.com/vidyagam/vidyagam/internal/scoring"
	"github.com/vidyagam/vidyagam/internal/server"
	"github.com/vidyagam/vidyagam/internal/sources"
	"log/slog"
)

func main() {
	// Best-effort .env for local development; deployed environments set
	// real environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	logger.Info("starting vidyagam")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbConfig := database.DefaultConfig()
	dbConfig.URL = cfg.Database.URL

	logger.Info("connecting to database")
	db, err := database.Connect(ctx, dbConfig)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("database connected")

	if err := database.RunMigrations(db, logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	articleRepo := database.NewPostgresArticleRepository(db)
	sessionRepo := database.NewPostgresSessionRepository(db)
	sourceRepo := database.NewPostgresSourceRepository(db)

	if err := sourceRepo.Seed(ctx, sources.Defaults()); err != nil {
		logger.Error("failed to seed source registry", "error", err)
		os.Exit(1)
	}

	collector, err := metrics.NewCollector()
	if err != nil {
		logger.Error("failed to init metrics", "error", err)
		os.Exit(1)
	}

	classifier, err := ingestion.NewClassifier(cfg.Scraper.Timezone)
	if err != nil {
		logger.Error("failed to init recency classifier", "error", err)
		os.Exit(1)
	}

	fetcherConfig := ingestion.DefaultFetcherConfig()
	fetcherConfig.Timeout = cfg.Scraper.FetchTimeout
	fetcherConfig.PerSourceLimit = cfg.Scraper.PerSourceLimit
	fetcher := ingestion.NewFetcher(fetcherConfig, logger)

	// LLM availability is decided once here; the pipeline never probes
	// for it via call failures.
	var scorer scoring.Scorer
	if cfg.LLMAvailable() {
		openaiScorer := scoring.NewOpenAIScorer(scoring.OpenAIConfig{
			APIKey:      cfg.OpenAI.APIKey,
			Model:       cfg.OpenAI.Model,
			Temperature: cfg.OpenAI.Temperature,
			MaxTokens:   cfg.OpenAI.MaxTokens,
			Timeout:     cfg.OpenAI.Timeout,
		}, logger)
		openaiScorer.OnFallback(collector.ObserveScoringFallback)
		scorer = openaiScorer
		logger.Info("llm scoring enabled", "model", cfg.OpenAI.Model)
	} else {
		scorer = scoring.NewFallbackScorer()
		logger.Info("llm scoring disabled, using heuristic fallback")
	}

	runner := ingestion.NewRunner(fetcher, scorer, classifier, articleRepo, sessionRepo, collector, logger)
	assembler := digest.NewAssembler(articleRepo)

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.New(runner, sourceRepo, articleRepo, scheduler.Config{
			ScrapeInterval:   cfg.Scheduler.ScrapeInterval,
			FilterCurrentDay: cfg.Scraper.FilterCurrentDay,
			RetentionDays:    cfg.Scraper.RetentionDays,
			RunOnStart:       true,
		}, logger)

		if err := sched.Start(ctx); err != nil {
			logger.Error("failed to start scheduler", "error", err)
			os.Exit(1)
		}
	}

	handler := api.NewHandler(db, runner, assembler, sourceRepo, sessionRepo, logger)

	mux := http.NewServeMux()
	api.SetupRoutes(mux, handler)
	mux.Handle("/metrics", collector.Handler())

	srv := server.New(cfg.Server, logger, collector.InstrumentHandler(mux))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
		}
	}

	cancel()
	if sched != nil {
		sched.Stop()
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

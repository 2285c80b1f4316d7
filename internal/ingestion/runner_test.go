package ingestion

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/vidyagam/vidyagam/internal/models"
	"github.com/vidyagam/vidyagam/internal/scoring"
)

type stubFetcher struct {
	entries map[string][]models.RawEntry
	errors  map[string]error
}

func (f *stubFetcher) Fetch(ctx context.Context, source models.SourceDefinition) ([]models.RawEntry, error) {
	if err, ok := f.errors[source.Name]; ok {
		return nil, err
	}
	return f.entries[source.Name], nil
}

type failingArticleRepository struct {
	*MemoryArticleRepository
	upsertErr error
	existsErr error
}

func (r *failingArticleRepository) Upsert(ctx context.Context, article models.ScoredArticle) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	return r.MemoryArticleRepository.Upsert(ctx, article)
}

func (r *failingArticleRepository) Exists(ctx context.Context, id string) (bool, error) {
	if r.existsErr != nil {
		return false, r.existsErr
	}
	return r.MemoryArticleRepository.Exists(ctx, id)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runnerFixture(t *testing.T, fetcher FeedFetcher, articles ArticleRepository) (*Runner, *MemorySessionRepository) {
	t.Helper()

	ist := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2024, 3, 15, 8, 0, 0, 0, ist)
	classifier := newTestClassifier(t, "Asia/Kolkata", now)

	sessions := NewMemorySessionRepository()
	runner := NewRunner(fetcher, scoring.NewFallbackScorer(), classifier, articles, sessions, nil, discardLogger())
	return runner, sessions
}

func enabledSource(name string) models.SourceDefinition {
	return models.SourceDefinition{
		Name:        name,
		FeedURL:     "https://example.com/" + name + "/feed",
		ContentType: models.ContentTypeBlogs,
		Enabled:     true,
		Priority:    1,
	}
}

func tsPtr(t time.Time) *time.Time { return &t }

func TestRunFiltersToCurrentDay(t *testing.T) {
	// Reference day is 2024-03-15 IST.
	fetcher := &stubFetcher{
		entries: map[string][]models.RawEntry{
			"Lab Blog": {
				{
					Title:       "Fresh release",
					Link:        "https://example.com/fresh",
					Summary:     "A model announcement.",
					PublishedAt: tsPtr(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)),
				},
				{
					Title:       "Morning post",
					Link:        "https://example.com/morning",
					Summary:     "Still the reference day at 01:30 IST.",
					PublishedAt: tsPtr(time.Date(2024, 3, 14, 20, 0, 0, 0, time.UTC)),
				},
				{
					Title:       "Yesterday's news",
					Link:        "https://example.com/stale",
					Summary:     "Old announcement.",
					PublishedAt: tsPtr(time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)),
				},
			},
		},
	}
	articles := NewMemoryArticleRepository()
	runner, sessions := runnerFixture(t, fetcher, articles)

	result := runner.Run(context.Background(), []models.SourceDefinition{enabledSource("Lab Blog")}, true)

	if !result.Success {
		t.Fatalf("run failed: %s", result.Error)
	}
	if result.ArticlesFound != 3 {
		t.Errorf("found = %d, want 3", result.ArticlesFound)
	}
	if result.ArticlesProcessed != 2 {
		t.Errorf("processed = %d, want 2", result.ArticlesProcessed)
	}
	if articles.Size() != 2 {
		t.Errorf("stored = %d, want 2", articles.Size())
	}

	session, ok := sessions.Get(result.SessionID)
	if !ok {
		t.Fatal("session not recorded")
	}
	if session.Status != models.SessionStatusCompleted {
		t.Errorf("session status = %s, want completed", session.Status)
	}
	if session.ArticlesFound != 3 || session.ArticlesProcessed != 2 {
		t.Errorf("session counters: found=%d processed=%d",
			session.ArticlesFound, session.ArticlesProcessed)
	}
}

func TestRunAdmitsUndatedEntriesWhenFilterOff(t *testing.T) {
	fetcher := &stubFetcher{
		entries: map[string][]models.RawEntry{
			"Lab Blog": {
				{Title: "No date", Link: "https://example.com/undated", Summary: "No timestamp in feed."},
			},
		},
	}
	articles := NewMemoryArticleRepository()
	runner, _ := runnerFixture(t, fetcher, articles)

	result := runner.Run(context.Background(), []models.SourceDefinition{enabledSource("Lab Blog")}, false)

	if !result.Success {
		t.Fatalf("run failed: %s", result.Error)
	}
	if result.ArticlesProcessed != 1 {
		t.Fatalf("processed = %d, want 1", result.ArticlesProcessed)
	}

	stored, err := articles.GetByID(context.Background(), Fingerprint("https://example.com/undated", "No date"))
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored == nil {
		t.Fatal("undated article not stored")
	}
	if stored.IsCurrentDay {
		t.Error("undated entry must classify as not current day")
	}
	if stored.PublishedAt.IsZero() {
		t.Error("published time should fall back to scrape time")
	}
}

func TestRunRejectsUndatedEntriesWhenFilterOn(t *testing.T) {
	fetcher := &stubFetcher{
		entries: map[string][]models.RawEntry{
			"Lab Blog": {
				{Title: "No date", Link: "https://example.com/undated", Summary: "No timestamp in feed."},
			},
		},
	}
	articles := NewMemoryArticleRepository()
	runner, _ := runnerFixture(t, fetcher, articles)

	result := runner.Run(context.Background(), []models.SourceDefinition{enabledSource("Lab Blog")}, true)

	if !result.Success {
		t.Fatalf("run failed: %s", result.Error)
	}
	if result.ArticlesFound != 1 {
		t.Errorf("found = %d, want 1", result.ArticlesFound)
	}
	if result.ArticlesProcessed != 0 {
		t.Errorf("processed = %d, want 0", result.ArticlesProcessed)
	}
	if articles.Size() != 0 {
		t.Errorf("stored = %d, want 0", articles.Size())
	}
}

func TestRunDeduplicatesAcrossRuns(t *testing.T) {
	fetcher := &stubFetcher{
		entries: map[string][]models.RawEntry{
			"Lab Blog": {
				{
					Title:       "Fresh release",
					Link:        "https://example.com/fresh",
					Summary:     "A model announcement.",
					PublishedAt: tsPtr(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)),
				},
			},
		},
	}
	articles := NewMemoryArticleRepository()
	runner, _ := runnerFixture(t, fetcher, articles)
	sources := []models.SourceDefinition{enabledSource("Lab Blog")}

	first := runner.Run(context.Background(), sources, true)
	if !first.Success || first.ArticlesProcessed != 1 {
		t.Fatalf("first run: success=%v processed=%d", first.Success, first.ArticlesProcessed)
	}

	second := runner.Run(context.Background(), sources, true)
	if !second.Success {
		t.Fatalf("second run failed: %s", second.Error)
	}
	if second.ArticlesFound != 1 {
		t.Errorf("second run found = %d, want 1", second.ArticlesFound)
	}
	if second.ArticlesProcessed != 0 {
		t.Errorf("second run processed = %d, want 0 (duplicate)", second.ArticlesProcessed)
	}
	if articles.Size() != 1 {
		t.Errorf("stored = %d, want 1", articles.Size())
	}
}

func TestRunSkipsFailingSource(t *testing.T) {
	fetcher := &stubFetcher{
		entries: map[string][]models.RawEntry{
			"Healthy": {
				{
					Title:       "Works",
					Link:        "https://example.com/works",
					Summary:     "Reachable feed.",
					PublishedAt: tsPtr(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)),
				},
			},
		},
		errors: map[string]error{
			"Broken": errors.New("connection refused"),
		},
	}
	articles := NewMemoryArticleRepository()
	runner, _ := runnerFixture(t, fetcher, articles)

	result := runner.Run(context.Background(),
		[]models.SourceDefinition{enabledSource("Broken"), enabledSource("Healthy")}, true)

	if !result.Success {
		t.Fatalf("run should survive a single source failure: %s", result.Error)
	}
	if result.ArticlesProcessed != 1 {
		t.Errorf("processed = %d, want 1", result.ArticlesProcessed)
	}
}

func TestRunFailsFastWithoutEnabledSources(t *testing.T) {
	articles := NewMemoryArticleRepository()
	runner, sessions := runnerFixture(t, &stubFetcher{}, articles)

	disabled := enabledSource("Disabled")
	disabled.Enabled = false

	result := runner.Run(context.Background(), []models.SourceDefinition{disabled}, true)

	if result.Success {
		t.Error("run with no enabled sources should fail")
	}
	if result.SessionID != "" {
		t.Error("no session should be created before validation passes")
	}

	recorded, err := sessions.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(recorded) != 0 {
		t.Errorf("expected no sessions, got %d", len(recorded))
	}
}

func TestRunFailsSessionOnPersistenceError(t *testing.T) {
	fetcher := &stubFetcher{
		entries: map[string][]models.RawEntry{
			"Lab Blog": {
				{
					Title:       "Fresh release",
					Link:        "https://example.com/fresh",
					Summary:     "A model announcement.",
					PublishedAt: tsPtr(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)),
				},
			},
		},
	}
	articles := &failingArticleRepository{
		MemoryArticleRepository: NewMemoryArticleRepository(),
		upsertErr:               errors.New("disk full"),
	}
	runner, sessions := runnerFixture(t, fetcher, articles)

	result := runner.Run(context.Background(), []models.SourceDefinition{enabledSource("Lab Blog")}, true)

	if result.Success {
		t.Error("run should fail on persistence error")
	}

	session, ok := sessions.Get(result.SessionID)
	if !ok {
		t.Fatal("session not recorded")
	}
	if session.Status != models.SessionStatusFailed {
		t.Errorf("session status = %s, want failed", session.Status)
	}
	if session.ErrorDetails == "" {
		t.Error("expected failure detail on session")
	}
}

func TestRunFailsSessionOnCancelledContext(t *testing.T) {
	fetcher := &stubFetcher{
		entries: map[string][]models.RawEntry{
			"Lab Blog": {
				{Title: "Unreached", Link: "https://example.com/unreached", Summary: "Never fetched."},
			},
		},
	}
	articles := NewMemoryArticleRepository()
	runner, sessions := runnerFixture(t, fetcher, articles)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := runner.Run(ctx, []models.SourceDefinition{enabledSource("Lab Blog")}, true)

	if result.Success {
		t.Error("run with cancelled context should fail")
	}

	// The terminal write must survive the cancellation that aborted the run.
	session, ok := sessions.Get(result.SessionID)
	if !ok {
		t.Fatal("session not recorded")
	}
	if session.Status != models.SessionStatusFailed {
		t.Errorf("session status = %s, want failed", session.Status)
	}
}

package digest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/vidyagam/vidyagam/internal/ingestion"
	"github.com/vidyagam/vidyagam/internal/models"
)

func seedArticles(t *testing.T, repo *ingestion.MemoryArticleRepository, n int, currentDay bool) {
	t.Helper()

	now := time.Now().UTC()
	for i := 0; i < n; i++ {
		article := models.ScoredArticle{
			ID:                fmt.Sprintf("fp-%d-%v", i, currentDay),
			Title:             fmt.Sprintf("Article %d", i),
			URL:               fmt.Sprintf("https://example.com/%d-%v", i, currentDay),
			Source:            "Test Source",
			SignificanceScore: float64(i),
			ImpactLevel:       models.ImpactMedium,
			PublishedAt:       now,
			ScrapedAt:         now,
			IsCurrentDay:      currentDay,
		}
		if err := repo.Upsert(context.Background(), article); err != nil {
			t.Fatalf("seed upsert failed: %v", err)
		}
	}
}

func TestCurrentDayDigest(t *testing.T) {
	repo := ingestion.NewMemoryArticleRepository()
	seedArticles(t, repo, 8, true)
	seedArticles(t, repo, 3, false)

	assembler := NewAssembler(repo)

	digest, err := assembler.CurrentDay(context.Background(), 0)
	if err != nil {
		t.Fatalf("CurrentDay failed: %v", err)
	}

	if digest.Total != 8 {
		t.Errorf("total = %d, want 8 (stale articles excluded)", digest.Total)
	}
	if len(digest.TopStories) != 5 {
		t.Errorf("top stories = %d, want 5", len(digest.TopStories))
	}
	if digest.GeneratedAt.IsZero() {
		t.Error("digest should carry a generation timestamp")
	}

	// Top story is the highest-scored article.
	if digest.TopStories[0].SignificanceScore != 7 {
		t.Errorf("top story score = %v, want 7", digest.TopStories[0].SignificanceScore)
	}
}

func TestCurrentDayDigestRespectsLimit(t *testing.T) {
	repo := ingestion.NewMemoryArticleRepository()
	seedArticles(t, repo, 8, true)

	assembler := NewAssembler(repo)

	digest, err := assembler.CurrentDay(context.Background(), 3)
	if err != nil {
		t.Fatalf("CurrentDay failed: %v", err)
	}

	if digest.Total != 3 {
		t.Errorf("total = %d, want 3", digest.Total)
	}
	if len(digest.TopStories) != 3 {
		t.Errorf("top stories = %d, want 3 when fewer than five articles", len(digest.TopStories))
	}
}

func TestRecentDigest(t *testing.T) {
	repo := ingestion.NewMemoryArticleRepository()
	seedArticles(t, repo, 2, true)

	old := models.ScoredArticle{
		ID:                "fp-old",
		Title:             "Old article",
		URL:               "https://example.com/old",
		Source:            "Test Source",
		SignificanceScore: 9,
		ImpactLevel:       models.ImpactHigh,
		PublishedAt:       time.Now().UTC().Add(-72 * time.Hour),
		ScrapedAt:         time.Now().UTC().Add(-72 * time.Hour),
	}
	if err := repo.Upsert(context.Background(), old); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	assembler := NewAssembler(repo)

	digest, err := assembler.Recent(context.Background(), 24, 0)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}

	if digest.Total != 2 {
		t.Errorf("total = %d, want 2 (articles outside window excluded)", digest.Total)
	}
}

func TestEmptyDigest(t *testing.T) {
	assembler := NewAssembler(ingestion.NewMemoryArticleRepository())

	digest, err := assembler.CurrentDay(context.Background(), 0)
	if err != nil {
		t.Fatalf("CurrentDay failed: %v", err)
	}

	if digest.Total != 0 {
		t.Errorf("total = %d, want 0", digest.Total)
	}
	if len(digest.TopStories) != 0 {
		t.Errorf("top stories = %d, want 0", len(digest.TopStories))
	}
}

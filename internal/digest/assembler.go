// Package digest composes ranked digests from persisted articles. It is a
// pure consumer of the article repository: ranking happens at query time,
// so no ordering guarantees are required from the scrape pipeline.
package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/vidyagam/vidyagam/internal/ingestion"
	"github.com/vidyagam/vidyagam/internal/models"
)

const defaultTopStories = 5

// Digest is a ranked selection of scored articles for delivery.
type Digest struct {
	GeneratedAt time.Time              `json:"generated_at"`
	TopStories  []models.ScoredArticle `json:"top_stories"`
	Articles    []models.ScoredArticle `json:"articles"`
	Total       int                    `json:"total"`
}

// Assembler builds digests over the article repository.
type Assembler struct {
	articles ingestion.ArticleRepository
}

// NewAssembler creates a digest assembler.
func NewAssembler(articles ingestion.ArticleRepository) *Assembler {
	return &Assembler{articles: articles}
}

// CurrentDay assembles a digest of today's articles, ranked by
// significance.
func (a *Assembler) CurrentDay(ctx context.Context, limit int) (*Digest, error) {
	articles, err := a.articles.QueryCurrentDay(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load current-day articles: %w", err)
	}
	return build(articles), nil
}

// Recent assembles a digest of articles scraped within the trailing
// window, ranked by significance.
func (a *Assembler) Recent(ctx context.Context, hours, limit int) (*Digest, error) {
	articles, err := a.articles.QueryRecent(ctx, hours, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent articles: %w", err)
	}
	return build(articles), nil
}

func build(articles []models.ScoredArticle) *Digest {
	top := articles
	if len(top) > defaultTopStories {
		top = top[:defaultTopStories]
	}

	return &Digest{
		GeneratedAt: time.Now().UTC(),
		TopStories:  top,
		Articles:    articles,
		Total:       len(articles),
	}
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/vidyagam/vidyagam/internal/models"
)

// PostgresArticleRepository stores scored articles in PostgreSQL.
type PostgresArticleRepository struct {
	db *sql.DB
}

// NewPostgresArticleRepository creates a new PostgreSQL article repository.
func NewPostgresArticleRepository(db *sql.DB) *PostgresArticleRepository {
	return &PostgresArticleRepository{db: db}
}

const articleColumns = `id, title, description, summary, url, source,
	significance_score, impact_level, published_at, scraped_at,
	is_current_day, llm_processed`

// Upsert inserts an article or replaces the existing row with the same
// fingerprint. Last write wins; a URL collision from a different
// fingerprint also resolves to a replace so uniqueness violations never
// surface to the caller.
func (r *PostgresArticleRepository) Upsert(ctx context.Context, article models.ScoredArticle) error {
	query := `
		INSERT INTO articles (
			id, title, description, summary, url, source,
			significance_score, impact_level, published_at, scraped_at,
			is_current_day, llm_processed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			summary = EXCLUDED.summary,
			url = EXCLUDED.url,
			source = EXCLUDED.source,
			significance_score = EXCLUDED.significance_score,
			impact_level = EXCLUDED.impact_level,
			published_at = EXCLUDED.published_at,
			scraped_at = EXCLUDED.scraped_at,
			is_current_day = EXCLUDED.is_current_day,
			llm_processed = EXCLUDED.llm_processed
	`

	_, err := r.db.ExecContext(ctx, query,
		article.ID,
		article.Title,
		article.Description,
		article.Summary,
		article.URL,
		article.Source,
		article.SignificanceScore,
		string(article.ImpactLevel),
		article.PublishedAt,
		article.ScrapedAt,
		article.IsCurrentDay,
		article.LLMProcessed,
	)
	if err == nil {
		return nil
	}

	// The same URL can arrive under a new fingerprint when a feed rewrites
	// titles. Resolve against the URL uniqueness constraint by replacing
	// that row instead of surfacing a duplicate-key error.
	if isUniqueViolation(err) {
		return r.replaceByURL(ctx, article)
	}

	return fmt.Errorf("failed to upsert article: %w", err)
}

func (r *PostgresArticleRepository) replaceByURL(ctx context.Context, article models.ScoredArticle) error {
	query := `
		UPDATE articles SET
			id = $1,
			title = $2,
			description = $3,
			summary = $4,
			source = $6,
			significance_score = $7,
			impact_level = $8,
			published_at = $9,
			scraped_at = $10,
			is_current_day = $11,
			llm_processed = $12
		WHERE url = $5
	`

	_, err := r.db.ExecContext(ctx, query,
		article.ID,
		article.Title,
		article.Description,
		article.Summary,
		article.URL,
		article.Source,
		article.SignificanceScore,
		string(article.ImpactLevel),
		article.PublishedAt,
		article.ScrapedAt,
		article.IsCurrentDay,
		article.LLMProcessed,
	)
	if err != nil {
		return fmt.Errorf("failed to replace article by url: %w", err)
	}
	return nil
}

// Exists checks if an article with the given fingerprint exists.
func (r *PostgresArticleRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM articles WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check article existence: %w", err)
	}
	return exists, nil
}

// GetByID retrieves an article by its fingerprint.
func (r *PostgresArticleRepository) GetByID(ctx context.Context, id string) (*models.ScoredArticle, error) {
	query := fmt.Sprintf("SELECT %s FROM articles WHERE id = $1", articleColumns)

	article, err := scanArticle(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query article by id: %w", err)
	}
	return article, nil
}

// QueryCurrentDay returns current-day articles ordered by significance then
// recency.
func (r *PostgresArticleRepository) QueryCurrentDay(ctx context.Context, limit int) ([]models.ScoredArticle, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM articles
		WHERE is_current_day = TRUE
		ORDER BY significance_score DESC, published_at DESC
		LIMIT $1
	`, articleColumns)

	return r.queryArticles(ctx, query, limit)
}

// QueryRecent returns articles scraped within the trailing window, ordered
// by significance then recency.
func (r *PostgresArticleRepository) QueryRecent(ctx context.Context, hours, limit int) ([]models.ScoredArticle, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM articles
		WHERE scraped_at >= NOW() - $1 * INTERVAL '1 hour'
		ORDER BY significance_score DESC, published_at DESC
		LIMIT $2
	`, articleColumns)

	return r.queryArticles(ctx, query, hours, limit)
}

// DeleteOlderThan removes articles scraped before the cutoff and returns
// the number of rows deleted.
func (r *PostgresArticleRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM articles WHERE scraped_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old articles: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted articles: %w", err)
	}
	return deleted, nil
}

// Count returns the total number of stored articles.
func (r *PostgresArticleRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}

func (r *PostgresArticleRepository) queryArticles(ctx context.Context, query string, args ...interface{}) ([]models.ScoredArticle, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var articles []models.ScoredArticle
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, *article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}
	return articles, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (*models.ScoredArticle, error) {
	var article models.ScoredArticle
	var impactLevel string

	err := row.Scan(
		&article.ID,
		&article.Title,
		&article.Description,
		&article.Summary,
		&article.URL,
		&article.Source,
		&article.SignificanceScore,
		&impactLevel,
		&article.PublishedAt,
		&article.ScrapedAt,
		&article.IsCurrentDay,
		&article.LLMProcessed,
	)
	if err != nil {
		return nil, err
	}

	article.ImpactLevel = models.ImpactLevel(impactLevel)
	return &article, nil
}

// isUniqueViolation reports whether the error is a PostgreSQL unique
// constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vidyagam/vidyagam/internal/models"
)

// PostgresSourceRepository stores feed source definitions in PostgreSQL.
type PostgresSourceRepository struct {
	db *sql.DB
}

// NewPostgresSourceRepository creates a new PostgreSQL source repository.
func NewPostgresSourceRepository(db *sql.DB) *PostgresSourceRepository {
	return &PostgresSourceRepository{db: db}
}

const sourceColumns = `name, feed_url, website, content_type, category,
	enabled, priority, description`

// Upsert inserts or updates a source definition keyed by name.
func (r *PostgresSourceRepository) Upsert(ctx context.Context, source models.SourceDefinition) error {
	query := `
		INSERT INTO sources (
			name, feed_url, website, content_type, category,
			enabled, priority, description
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (name) DO UPDATE SET
			feed_url = EXCLUDED.feed_url,
			website = EXCLUDED.website,
			content_type = EXCLUDED.content_type,
			category = EXCLUDED.category,
			enabled = EXCLUDED.enabled,
			priority = EXCLUDED.priority,
			description = EXCLUDED.description
	`

	_, err := r.db.ExecContext(ctx, query,
		source.Name,
		source.FeedURL,
		source.Website,
		string(source.ContentType),
		source.Category,
		source.Enabled,
		source.Priority,
		source.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert source: %w", err)
	}
	return nil
}

// ListEnabled returns enabled sources in priority order.
func (r *PostgresSourceRepository) ListEnabled(ctx context.Context) ([]models.SourceDefinition, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM sources
		WHERE enabled = TRUE
		ORDER BY priority ASC, name ASC
	`, sourceColumns)

	return r.querySources(ctx, query)
}

// List returns all source definitions in priority order.
func (r *PostgresSourceRepository) List(ctx context.Context) ([]models.SourceDefinition, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM sources
		ORDER BY priority ASC, name ASC
	`, sourceColumns)

	return r.querySources(ctx, query)
}

// Count returns the number of stored source definitions.
func (r *PostgresSourceRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sources").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sources: %w", err)
	}
	return count, nil
}

// Seed stores the given definitions only when the table is empty, so
// operator edits survive restarts.
func (r *PostgresSourceRepository) Seed(ctx context.Context, sources []models.SourceDefinition) error {
	count, err := r.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, source := range sources {
		if err := r.Upsert(ctx, source); err != nil {
			return fmt.Errorf("failed to seed source %s: %w", source.Name, err)
		}
	}
	return nil
}

func (r *PostgresSourceRepository) querySources(ctx context.Context, query string) ([]models.SourceDefinition, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	var sources []models.SourceDefinition
	for rows.Next() {
		var source models.SourceDefinition
		var contentType string

		err := rows.Scan(
			&source.Name,
			&source.FeedURL,
			&source.Website,
			&contentType,
			&source.Category,
			&source.Enabled,
			&source.Priority,
			&source.Description,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}

		source.ContentType = models.ContentType(contentType)
		sources = append(sources, source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sources: %w", err)
	}
	return sources, nil
}

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vidyagam/vidyagam/internal/models"
)

// PostgresSessionRepository stores scrape session audit records in
// PostgreSQL.
type PostgresSessionRepository struct {
	db *sql.DB
}

// NewPostgresSessionRepository creates a new PostgreSQL session repository.
func NewPostgresSessionRepository(db *sql.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

// Create inserts a new session row in the running state.
func (r *PostgresSessionRepository) Create(ctx context.Context, session models.ScrapeSession) error {
	query := `
		INSERT INTO scrape_sessions (id, session_type, started_at, status)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.SessionType,
		session.StartedAt,
		string(session.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to create scrape session: %w", err)
	}
	return nil
}

// Complete transitions a running session to completed with final counters.
// The WHERE guard makes a second terminal call a no-op at the storage
// layer; it is reported as an error to catch programming mistakes.
func (r *PostgresSessionRepository) Complete(ctx context.Context, id string, found, processed int) error {
	query := `
		UPDATE scrape_sessions
		SET completed_at = NOW(), status = 'completed',
		    articles_found = $2, articles_processed = $3
		WHERE id = $1 AND status = 'running'
	`

	result, err := r.db.ExecContext(ctx, query, id, found, processed)
	if err != nil {
		return fmt.Errorf("failed to complete scrape session: %w", err)
	}

	return requireTransition(result, id)
}

// Fail transitions a running session to failed with the error detail.
func (r *PostgresSessionRepository) Fail(ctx context.Context, id string, detail string) error {
	query := `
		UPDATE scrape_sessions
		SET completed_at = NOW(), status = 'failed',
		    errors_count = errors_count + 1, error_details = $2
		WHERE id = $1 AND status = 'running'
	`

	result, err := r.db.ExecContext(ctx, query, id, detail)
	if err != nil {
		return fmt.Errorf("failed to fail scrape session: %w", err)
	}

	return requireTransition(result, id)
}

// ListRecent returns the most recently started sessions.
func (r *PostgresSessionRepository) ListRecent(ctx context.Context, limit int) ([]models.ScrapeSession, error) {
	query := `
		SELECT id, session_type, started_at, completed_at, status,
		       articles_found, articles_processed, errors_count, error_details
		FROM scrape_sessions
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scrape sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.ScrapeSession
	for rows.Next() {
		var session models.ScrapeSession
		var status string
		var errorDetails sql.NullString

		err := rows.Scan(
			&session.ID,
			&session.SessionType,
			&session.StartedAt,
			&session.CompletedAt,
			&status,
			&session.ArticlesFound,
			&session.ArticlesProcessed,
			&session.ErrorsCount,
			&errorDetails,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scrape session: %w", err)
		}

		session.Status = models.SessionStatus(status)
		session.ErrorDetails = errorDetails.String
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scrape sessions: %w", err)
	}
	return sessions, nil
}

func requireTransition(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check session transition: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("session %s is not running; terminal transitions are single-shot", id)
	}
	return nil
}

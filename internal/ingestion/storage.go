package ingestion

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vidyagam/vidyagam/internal/models"
)

// ArticleRepository defines the persistence contract the scrape runner and
// digest assembler depend on. The upsert-by-fingerprint semantics are the
// sole synchronization point between overlapping runs.
type ArticleRepository interface {
	// Upsert inserts a scored article or replaces the row with the same
	// fingerprint (last write wins).
	Upsert(ctx context.Context, article models.ScoredArticle) error

	// Exists checks if an article with the given fingerprint exists.
	Exists(ctx context.Context, id string) (bool, error)

	// QueryCurrentDay returns current-day articles ordered by
	// significance descending, then published time descending.
	QueryCurrentDay(ctx context.Context, limit int) ([]models.ScoredArticle, error)

	// QueryRecent returns articles scraped within the trailing window,
	// same ordering as QueryCurrentDay.
	QueryRecent(ctx context.Context, hours, limit int) ([]models.ScoredArticle, error)

	// DeleteOlderThan removes articles scraped before the cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// SessionRepository records scrape session lifecycle transitions.
type SessionRepository interface {
	// Create inserts a new running session.
	Create(ctx context.Context, session models.ScrapeSession) error

	// Complete transitions a running session to completed. Calling it on
	// a session that is not running is an error.
	Complete(ctx context.Context, id string, found, processed int) error

	// Fail transitions a running session to failed. Calling it on a
	// session that is not running is an error.
	Fail(ctx context.Context, id string, detail string) error

	// ListRecent returns the most recently started sessions.
	ListRecent(ctx context.Context, limit int) ([]models.ScrapeSession, error)
}

// MemoryArticleRepository implements an in-memory article repository for
// testing and development.
type MemoryArticleRepository struct {
	mu       sync.RWMutex
	articles map[string]models.ScoredArticle
	urlIdx   map[string]string // URL -> fingerprint
}

// NewMemoryArticleRepository creates a new in-memory article repository.
func NewMemoryArticleRepository() *MemoryArticleRepository {
	return &MemoryArticleRepository{
		articles: make(map[string]models.ScoredArticle),
		urlIdx:   make(map[string]string),
	}
}

// Upsert stores an article, replacing any row with the same fingerprint or
// URL.
func (r *MemoryArticleRepository) Upsert(ctx context.Context, article models.ScoredArticle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existingID, ok := r.urlIdx[article.URL]; ok && existingID != article.ID {
		delete(r.articles, existingID)
	}

	r.articles[article.ID] = article
	r.urlIdx[article.URL] = article.ID
	return nil
}

// Exists checks if an article with the fingerprint is stored.
func (r *MemoryArticleRepository) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.articles[id]
	return ok, nil
}

// GetByID retrieves a stored article by fingerprint.
func (r *MemoryArticleRepository) GetByID(ctx context.Context, id string) (*models.ScoredArticle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	article, ok := r.articles[id]
	if !ok {
		return nil, nil
	}
	return &article, nil
}

// QueryCurrentDay returns current-day articles in ranked order.
func (r *MemoryArticleRepository) QueryCurrentDay(ctx context.Context, limit int) ([]models.ScoredArticle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []models.ScoredArticle
	for _, article := range r.articles {
		if article.IsCurrentDay {
			result = append(result, article)
		}
	}

	sortRanked(result)
	return capSlice(result, limit), nil
}

// QueryRecent returns articles scraped within the trailing window in
// ranked order.
func (r *MemoryArticleRepository) QueryRecent(ctx context.Context, hours, limit int) ([]models.ScoredArticle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour)

	var result []models.ScoredArticle
	for _, article := range r.articles {
		if article.ScrapedAt.After(cutoff) {
			result = append(result, article)
		}
	}

	sortRanked(result)
	return capSlice(result, limit), nil
}

// DeleteOlderThan removes articles scraped before the cutoff.
func (r *MemoryArticleRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, article := range r.articles {
		if article.ScrapedAt.Before(cutoff) {
			delete(r.articles, id)
			delete(r.urlIdx, article.URL)
			deleted++
		}
	}
	return deleted, nil
}

// Size returns the number of stored articles.
func (r *MemoryArticleRepository) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.articles)
}

func sortRanked(articles []models.ScoredArticle) {
	sort.SliceStable(articles, func(i, j int) bool {
		if articles[i].SignificanceScore != articles[j].SignificanceScore {
			return articles[i].SignificanceScore > articles[j].SignificanceScore
		}
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}

func capSlice(articles []models.ScoredArticle, limit int) []models.ScoredArticle {
	if limit > 0 && len(articles) > limit {
		return articles[:limit]
	}
	return articles
}

// MemorySessionRepository implements an in-memory session repository for
// testing and development.
type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]models.ScrapeSession
}

// NewMemorySessionRepository creates a new in-memory session repository.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]models.ScrapeSession),
	}
}

// Create stores a new session.
func (r *MemorySessionRepository) Create(ctx context.Context, session models.ScrapeSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.ID]; ok {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	r.sessions[session.ID] = session
	return nil
}

// Complete transitions a running session to completed.
func (r *MemorySessionRepository) Complete(ctx context.Context, id string, found, processed int) error {
	return r.terminate(id, func(session *models.ScrapeSession) {
		session.Status = models.SessionStatusCompleted
		session.ArticlesFound = found
		session.ArticlesProcessed = processed
	})
}

// Fail transitions a running session to failed.
func (r *MemorySessionRepository) Fail(ctx context.Context, id string, detail string) error {
	return r.terminate(id, func(session *models.ScrapeSession) {
		session.Status = models.SessionStatusFailed
		session.ErrorsCount++
		session.ErrorDetails = detail
	})
}

// ListRecent returns sessions ordered by start time descending.
func (r *MemorySessionRepository) ListRecent(ctx context.Context, limit int) ([]models.ScrapeSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessions := make([]models.ScrapeSession, 0, len(r.sessions))
	for _, session := range r.sessions {
		sessions = append(sessions, session)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.After(sessions[j].StartedAt)
	})

	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

// Get returns a stored session by ID.
func (r *MemorySessionRepository) Get(id string) (models.ScrapeSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	return session, ok
}

func (r *MemorySessionRepository) terminate(id string, apply func(*models.ScrapeSession)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return fmt.Errorf("session %s not found", id)
	}
	if session.Terminal() {
		return fmt.Errorf("session %s is not running; terminal transitions are single-shot", id)
	}

	now := time.Now()
	session.CompletedAt = &now
	apply(&session)
	r.sessions[id] = session
	return nil
}

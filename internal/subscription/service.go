// Package subscription persists media subscriptions created by sync plugins.
package subscription

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Kind distinguishes movie and show subscriptions.
type Kind string

const (
	KindMovie Kind = "movie"
	KindShow  Kind = "show"
)

// Subscription is one subscribed media item, keyed upstream by TMDB ID.
type Subscription struct {
	ID        int64     `json:"id"`
	TmdbID    int       `json:"tmdb_id"`
	Title     string    `json:"title"`
	Year      int       `json:"year"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// Service is the sqlite-backed subscription store.
type Service struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewService creates a subscription service over an open database.
func NewService(db *sql.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "subscription").Logger(),
	}
}

// Exists reports whether a subscription already exists for the TMDB ID.
func (s *Service) Exists(ctx context.Context, tmdbID int, kind Kind) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE tmdb_id = ? AND kind = ?`,
		tmdbID, string(kind),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}
	return count > 0, nil
}

// Add creates a subscription. Adding an already subscribed item is a no-op
// and reports false.
func (s *Service) Add(ctx context.Context, sub Subscription) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO subscriptions (tmdb_id, title, year, kind)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(tmdb_id, kind) DO NOTHING`,
		sub.TmdbID, sub.Title, sub.Year, string(sub.Kind),
	)
	if err != nil {
		return false, fmt.Errorf("failed to add subscription: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 0 {
		return false, nil
	}

	s.logger.Info().
		Int("tmdbId", sub.TmdbID).
		Str("title", sub.Title).
		Str("kind", string(sub.Kind)).
		Msg("Added subscription")
	return true, nil
}

// List returns all subscriptions, newest first.
func (s *Service) List(ctx context.Context) ([]Subscription, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tmdb_id, title, year, kind, created_at
		FROM subscriptions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []Subscription
	for rows.Next() {
		var sub Subscription
		var kind string
		if err := rows.Scan(&sub.ID, &sub.TmdbID, &sub.Title, &sub.Year, &kind, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		sub.Kind = Kind(kind)
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// Delete removes a subscription by ID.
func (s *Service) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}

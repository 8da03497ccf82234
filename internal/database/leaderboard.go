package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/pinpoint/internal/models"
)

// TopScores returns the best leaderboard entries, highest first.
func (s *Store) TopScores(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	q := `
	SELECT id, player_name, score, created_at
	FROM leaderboard
	ORDER BY score DESC, created_at ASC
	LIMIT $1
	`
	rows, err := s.Pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []models.LeaderboardEntry{}
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.ID, &e.PlayerName, &e.Score, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// InsertScore records a final score.
func (s *Store) InsertScore(ctx context.Context, e *models.LeaderboardEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	q := `
	INSERT INTO leaderboard (id, player_name, score)
	VALUES ($1, $2, $3)
	RETURNING created_at
	`
	err := pgx.BeginTxFunc(ctx, s.Pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, q, e.ID, e.PlayerName, e.Score).Scan(&e.CreatedAt)
	})
	if err != nil {
		return fmt.Errorf("failed to insert score: %w", err)
	}
	return nil
}

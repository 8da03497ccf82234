package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jason-s-yu/pinpoint/internal/models"
)

// UpsertPlayer returns the player row for name, creating it on first use.
func (s *Store) UpsertPlayer(ctx context.Context, name string) (*models.Player, error) {
	q := `
	INSERT INTO players (id, name)
	VALUES ($1, $2)
	ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
	RETURNING id, name, created_at
	`
	var p models.Player
	if err := s.Pool.QueryRow(ctx, q, uuid.New(), name).Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
		return nil, fmt.Errorf("upsert player: %w", err)
	}
	return &p, nil
}

// internal/models/leaderboard.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// LeaderboardEntry is a single submitted final score.
type LeaderboardEntry struct {
	ID         uuid.UUID `json:"id"`
	PlayerName string    `json:"player_name"`
	Score      int       `json:"score"`
	CreatedAt  time.Time `json:"created_at"`
}

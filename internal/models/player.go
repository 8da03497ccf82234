// internal/models/player.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Player is a row in the players table. Room membership is never stored here;
// see internal/room for the live, in-memory Player.
type Player struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

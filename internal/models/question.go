// internal/models/question.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Question is a location trivia prompt with the coordinates of its answer.
type Question struct {
	ID        uuid.UUID `json:"id"`
	Prompt    string    `json:"prompt"`
	Answer    string    `json:"answer"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidCoordinates reports whether lat/lng fall inside WGS84 bounds.
func (q Question) ValidCoordinates() bool {
	return q.Lat >= -90 && q.Lat <= 90 && q.Lng >= -180 && q.Lng <= 180
}

// internal/models/answer.go
package models

import "encoding/json"

// AnswerRecord is one accepted answer, as published to the answer log and
// persisted by the historian.
type AnswerRecord struct {
	RoomCode   string          `json:"room_code"`
	PlayerID   string          `json:"player_id"`
	PlayerName string          `json:"player_name"`
	Answer     json.RawMessage `json:"answer"`
	Score      int             `json:"score"` // delta applied by this answer
	Total      int             `json:"total"` // cumulative score after the answer
	Timestamp  int64           `json:"timestamp"`
}

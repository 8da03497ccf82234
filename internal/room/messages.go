// internal/room/messages.go
package room

import "encoding/json"

// Client -> server event types.
const (
	EventCreateRoom   = "createRoom"
	EventJoinRoom     = "joinRoom"
	EventStartGame    = "startGame"
	EventPlayerAnswer = "playerAnswer"
)

// Server -> client event types.
const (
	EventConnected      = "connected"
	EventRoomCreated    = "roomCreated"
	EventRoomData       = "roomData"
	EventPlayerJoined   = "playerJoined"
	EventPlayerLeft     = "playerLeft"
	EventGameStarted    = "gameStarted"
	EventPlayerAnswered = "playerAnswered"
	EventError          = "error"
)

// Message is the envelope for every frame in both directions.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Inbound is a decoded client frame whose payload is parsed per event type.
type Inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type CreateRoomRequest struct {
	UserName string `json:"userName"`
}

type JoinRoomRequest struct {
	RoomID   string `json:"roomId"`
	UserName string `json:"userName"`
}

type StartGameRequest struct {
	RoomID string `json:"roomId"`
}

// PlayerAnswerRequest carries an opaque answer and the score delta the client
// computed for it. The delta is applied as-is.
type PlayerAnswerRequest struct {
	RoomID string          `json:"roomId"`
	Answer json.RawMessage `json:"answer"`
	Score  int             `json:"score"`
}

type ConnectedPayload struct {
	PlayerID string `json:"playerId"`
}

type RoomCreatedPayload struct {
	RoomID string `json:"roomId"`
}

type GameStartedPayload struct {
	RoomID string `json:"roomId"`
}

// MemberPayload is shared by playerJoined and playerLeft.
type MemberPayload struct {
	PlayerName string `json:"playerName"`
	PlayerID   string `json:"playerId"`
}

type PlayerAnsweredPayload struct {
	PlayerName string          `json:"playerName"`
	Answer     json.RawMessage `json:"answer"`
	Score      int             `json:"score"`
}

// PlayerView is the public projection of a Player inside roomData.
type PlayerView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
	IsHost bool   `json:"isHost"`
}

// RoomData is the full room state broadcast after every membership or score change.
type RoomData struct {
	Players []PlayerView `json:"players"`
	Status  Status       `json:"status"`
}

// RoomSummary is the listing entry served over HTTP.
type RoomSummary struct {
	RoomID      string `json:"roomId"`
	Status      Status `json:"status"`
	PlayerCount int    `json:"playerCount"`
}

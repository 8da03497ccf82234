package room

import "errors"

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrNameTaken      = errors.New("name already taken in this room")
	ErrNotHost        = errors.New("only the host can start the game")
	ErrPlayerNotFound = errors.New("player not found in room")
	ErrAlreadyInRoom  = errors.New("connection already in room")
	ErrCodeExhausted  = errors.New("no free room code")
)

// Generic failures reported when an operation faults internally.
const (
	MsgCreateFailed = "Failed to create room"
	MsgJoinFailed   = "Failed to join room"
	MsgStartFailed  = "Failed to start game"
)

var errorMessages = map[error]string{
	ErrRoomNotFound:   "Room not found",
	ErrRoomFull:       "Room is full",
	ErrNameTaken:      "Name already taken in this room",
	ErrNotHost:        "Only the host can start the game",
	ErrPlayerNotFound: "Player not found in room",
	ErrAlreadyInRoom:  MsgJoinFailed,
	ErrCodeExhausted:  MsgCreateFailed,
}

// ErrorMessage maps a coordinator error to the text sent to the client.
// Unknown errors fall back to fallback.
func ErrorMessage(err error, fallback string) string {
	for target, msg := range errorMessages {
		if errors.Is(err, target) {
			return msg
		}
	}
	return fallback
}

// internal/room/room.go
package room

// Status is a room's lifecycle state.
type Status string

const (
	StatusWaiting Status = "waiting"
	StatusPlaying Status = "playing"
	// StatusFinished is part of the wire vocabulary but no operation enters it yet.
	StatusFinished Status = "finished"
)

// MaxPlayers is the per-room capacity.
const MaxPlayers = 8

// Player is one connection's membership in a room.
type Player struct {
	ID     string
	Name   string
	Score  int
	IsHost bool

	conn *Connection
}

// Room is an in-memory session. Players are kept in join order.
// All methods assume the coordinator lock is held.
type Room struct {
	Code    string
	Players []*Player
	Status  Status
}

func newRoom(code string, host *Player) *Room {
	host.IsHost = true
	return &Room{
		Code:    code,
		Players: []*Player{host},
		Status:  StatusWaiting,
	}
}

func (r *Room) isFull() bool {
	return len(r.Players) >= MaxPlayers
}

// hasName is an exact, case-sensitive match.
func (r *Room) hasName(name string) bool {
	for _, p := range r.Players {
		if p.Name == name {
			return true
		}
	}
	return false
}

func (r *Room) indexOf(connID string) int {
	for i, p := range r.Players {
		if p.ID == connID {
			return i
		}
	}
	return -1
}

func (r *Room) player(connID string) *Player {
	if i := r.indexOf(connID); i >= 0 {
		return r.Players[i]
	}
	return nil
}

// remove drops the player at index i and, if it held host authority, hands it
// to the earliest remaining joiner.
func (r *Room) remove(i int) *Player {
	p := r.Players[i]
	r.Players = append(r.Players[:i:i], r.Players[i+1:]...)
	if p.IsHost && len(r.Players) > 0 {
		r.Players[0].IsHost = true
	}
	return p
}

func (r *Room) data() RoomData {
	views := make([]PlayerView, 0, len(r.Players))
	for _, p := range r.Players {
		views = append(views, PlayerView{
			ID:     p.ID,
			Name:   p.Name,
			Score:  p.Score,
			IsHost: p.IsHost,
		})
	}
	return RoomData{Players: views, Status: r.Status}
}

func (r *Room) summary() RoomSummary {
	return RoomSummary{RoomID: r.Code, Status: r.Status, PlayerCount: len(r.Players)}
}

func (r *Room) broadcast(msg Message) {
	for _, p := range r.Players {
		p.conn.Write(msg)
	}
}

// broadcastExcept sends msg to every member other than connID.
func (r *Room) broadcastExcept(connID string, msg Message) {
	for _, p := range r.Players {
		if p.ID != connID {
			p.conn.Write(msg)
		}
	}
}

func (r *Room) broadcastData() {
	r.broadcast(Message{Type: EventRoomData, Payload: r.data()})
}

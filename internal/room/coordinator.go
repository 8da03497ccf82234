// internal/room/coordinator.go
package room

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jason-s-yu/pinpoint/internal/models"
	"github.com/sirupsen/logrus"
)

// Coordinator owns every live room and the connection -> room index. Each
// operation runs to completion under mu, so room state is never observed
// mid-mutation. Outbound writes are non-blocking and happen under the lock.
type Coordinator struct {
	mu    sync.Mutex
	rooms map[string]*Room
	// memberships is the reverse index used for teardown: connection ID -> room codes.
	memberships map[string]map[string]struct{}

	logger  logrus.FieldLogger
	newCode func() (string, error)

	// OnAnswer is called after a successful SubmitAnswer, outside the lock.
	OnAnswer func(rec models.AnswerRecord)
	// OnEmpty is called after a room is deleted because its last player left.
	OnEmpty func(code string)
}

// NewCoordinator returns an empty coordinator.
func NewCoordinator(logger logrus.FieldLogger) *Coordinator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Coordinator{
		rooms:       make(map[string]*Room),
		memberships: make(map[string]map[string]struct{}),
		logger:      logger,
		newCode:     GenerateCode,
	}
}

// normalizeCode accepts codes typed in any case or with stray whitespace.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CreateRoom opens a new room with conn as its only player and host. The code
// is sent privately as roomCreated, followed by a roomData broadcast.
func (c *Coordinator) CreateRoom(conn *Connection, userName string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	code, err := c.freeCodeLocked()
	if err != nil {
		return "", err
	}

	r := newRoom(code, &Player{ID: conn.ID, Name: userName, conn: conn})
	c.rooms[code] = r
	c.associateLocked(conn.ID, code)

	c.logger.WithFields(logrus.Fields{
		"room": code,
		"conn": conn.ID,
	}).Infof("room created by %q", userName)

	conn.Write(Message{Type: EventRoomCreated, Payload: RoomCreatedPayload{RoomID: code}})
	r.broadcastData()
	return code, nil
}

// JoinRoom appends conn to an existing room. On any error nothing is mutated.
func (c *Coordinator) JoinRoom(conn *Connection, code, userName string) error {
	code = normalizeCode(code)

	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.rooms[code]
	if !ok {
		return ErrRoomNotFound
	}
	if r.isFull() {
		return ErrRoomFull
	}
	if r.hasName(userName) {
		return ErrNameTaken
	}
	if r.indexOf(conn.ID) >= 0 {
		return ErrAlreadyInRoom
	}

	r.Players = append(r.Players, &Player{ID: conn.ID, Name: userName, conn: conn})
	c.associateLocked(conn.ID, code)

	c.logger.WithFields(logrus.Fields{
		"room": code,
		"conn": conn.ID,
	}).Infof("%q joined (%d/%d)", userName, len(r.Players), MaxPlayers)

	r.broadcastData()
	r.broadcastExcept(conn.ID, Message{
		Type:    EventPlayerJoined,
		Payload: MemberPayload{PlayerName: userName, PlayerID: conn.ID},
	})
	return nil
}

// StartGame moves the room to playing. Only the host may call it; repeated
// calls while playing re-broadcast gameStarted.
func (c *Coordinator) StartGame(conn *Connection, code string) error {
	code = normalizeCode(code)

	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.rooms[code]
	if !ok {
		return ErrRoomNotFound
	}
	p := r.player(conn.ID)
	if p == nil || !p.IsHost {
		return ErrNotHost
	}

	r.Status = StatusPlaying
	c.logger.WithField("room", code).Info("game started")
	r.broadcast(Message{Type: EventGameStarted, Payload: GameStartedPayload{RoomID: code}})
	return nil
}

// SubmitAnswer adds score to the caller's total. The delta is trusted as sent.
func (c *Coordinator) SubmitAnswer(conn *Connection, code string, answer json.RawMessage, score int) error {
	rec, err := c.submitAnswer(conn, normalizeCode(code), answer, score)
	if err != nil {
		return err
	}
	if c.OnAnswer != nil {
		c.OnAnswer(rec)
	}
	return nil
}

func (c *Coordinator) submitAnswer(conn *Connection, code string, answer json.RawMessage, score int) (models.AnswerRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.rooms[code]
	if !ok {
		return models.AnswerRecord{}, ErrRoomNotFound
	}
	p := r.player(conn.ID)
	if p == nil {
		return models.AnswerRecord{}, ErrPlayerNotFound
	}

	p.Score += score

	c.logger.WithFields(logrus.Fields{
		"room": code,
		"conn": conn.ID,
	}).Debugf("%q answered for %d (total %d)", p.Name, score, p.Score)

	r.broadcastData()
	r.broadcastExcept(conn.ID, Message{
		Type: EventPlayerAnswered,
		Payload: PlayerAnsweredPayload{
			PlayerName: p.Name,
			Answer:     answer,
			Score:      score,
		},
	})

	return models.AnswerRecord{
		RoomCode:   code,
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Answer:     answer,
		Score:      score,
		Total:      p.Score,
		Timestamp:  time.Now().UnixMilli(),
	}, nil
}

// Disconnect removes every membership owned by conn. Rooms left empty are
// deleted; otherwise host authority is reassigned if needed and the remaining
// players get roomData followed by playerLeft.
func (c *Coordinator) Disconnect(conn *Connection) {
	emptied := c.disconnect(conn)
	if c.OnEmpty == nil {
		return
	}
	for _, code := range emptied {
		c.OnEmpty(code)
	}
}

func (c *Coordinator) disconnect(conn *Connection) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	codes, ok := c.memberships[conn.ID]
	if !ok {
		return nil
	}
	delete(c.memberships, conn.ID)

	var emptied []string
	for code := range codes {
		r, ok := c.rooms[code]
		if !ok {
			continue
		}
		i := r.indexOf(conn.ID)
		if i < 0 {
			continue
		}
		left := r.remove(i)

		entry := c.logger.WithFields(logrus.Fields{
			"room": code,
			"conn": conn.ID,
		})

		if len(r.Players) == 0 {
			delete(c.rooms, code)
			emptied = append(emptied, code)
			entry.Info("last player left, room deleted")
			continue
		}

		entry.Infof("%q left (%d remaining)", left.Name, len(r.Players))
		r.broadcastData()
		r.broadcast(Message{
			Type:    EventPlayerLeft,
			Payload: MemberPayload{PlayerName: left.Name, PlayerID: left.ID},
		})
	}
	return emptied
}

// Snapshot returns a copy of one room's state.
func (c *Coordinator) Snapshot(code string) (RoomData, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.rooms[normalizeCode(code)]
	if !ok {
		return RoomData{}, false
	}
	return r.data(), true
}

// Rooms lists live rooms ordered by code.
func (c *Coordinator) Rooms() []RoomSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]RoomSummary, 0, len(c.rooms))
	for _, r := range c.rooms {
		out = append(out, r.summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomID < out[j].RoomID })
	return out
}

// Len returns the number of live rooms.
func (c *Coordinator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rooms)
}

func (c *Coordinator) freeCodeLocked() (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := c.newCode()
		if err != nil {
			return "", fmt.Errorf("generate room code: %w", err)
		}
		if _, taken := c.rooms[code]; !taken {
			return code, nil
		}
	}
	return "", ErrCodeExhausted
}

func (c *Coordinator) associateLocked(connID, code string) {
	set, ok := c.memberships[connID]
	if !ok {
		set = make(map[string]struct{})
		c.memberships[connID] = set
	}
	set[code] = struct{}{}
}

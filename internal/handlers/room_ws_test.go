package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/jason-s-yu/pinpoint/internal/room"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func newWSServer(t *testing.T) (*httptest.Server, *room.Coordinator) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	coord := room.NewCoordinator(logger)
	srv := httptest.NewServer(NewRouter(Deps{
		Logger:      logger,
		Coordinator: coord,
		PublicURL:   "http://example.test",
		WS:          WSOptions{PingInterval: time.Minute, WriteTimeout: time.Second, SendBuffer: 32},
	}))
	t.Cleanup(srv.Close)
	return srv, coord
}

func dial(t *testing.T, srv *httptest.Server, subprotocols ...string) *websocket.Conn {
	t.Helper()
	if subprotocols == nil {
		subprotocols = []string{Subprotocol}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	c, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{Subprotocols: subprotocols})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close(websocket.StatusNormalClosure, "") })
	return c
}

func send(t *testing.T, c *websocket.Conn, typ string, payload any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, c, map[string]any{"type": typ, "payload": payload}))
}

func recv(t *testing.T, c *websocket.Conn) frame {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var f frame
	require.NoError(t, wsjson.Read(ctx, c, &f))
	return f
}

func expect(t *testing.T, c *websocket.Conn, typ string, into any) {
	t.Helper()
	f := recv(t, c)
	require.Equal(t, typ, f.Type, "payload: %s", f.Payload)
	if into != nil {
		require.NoError(t, json.Unmarshal(f.Payload, into))
	}
}

func expectError(t *testing.T, c *websocket.Conn, want string) {
	t.Helper()
	var msg string
	expect(t, c, room.EventError, &msg)
	assert.Equal(t, want, msg)
}

func connect(t *testing.T, srv *httptest.Server) (*websocket.Conn, string) {
	t.Helper()
	c := dial(t, srv)
	var hello room.ConnectedPayload
	expect(t, c, room.EventConnected, &hello)
	require.NotEmpty(t, hello.PlayerID)
	return c, hello.PlayerID
}

func TestRoomWSFullScenario(t *testing.T) {
	srv, coord := newWSServer(t)

	alice, aliceID := connect(t, srv)
	bob, bobID := connect(t, srv)

	send(t, alice, room.EventCreateRoom, room.CreateRoomRequest{UserName: "Alice"})
	var created room.RoomCreatedPayload
	expect(t, alice, room.EventRoomCreated, &created)
	code := created.RoomID
	require.Len(t, code, room.CodeLength)

	var rd room.RoomData
	expect(t, alice, room.EventRoomData, &rd)
	require.Len(t, rd.Players, 1)
	assert.Equal(t, room.PlayerView{ID: aliceID, Name: "Alice", IsHost: true}, rd.Players[0])
	assert.Equal(t, room.StatusWaiting, rd.Status)

	send(t, bob, room.EventJoinRoom, room.JoinRoomRequest{RoomID: code, UserName: "Bob"})
	expect(t, bob, room.EventRoomData, &rd)
	require.Len(t, rd.Players, 2)
	assert.Equal(t, "Bob", rd.Players[1].Name)
	assert.False(t, rd.Players[1].IsHost)

	expect(t, alice, room.EventRoomData, &rd)
	require.Len(t, rd.Players, 2)
	var joined room.MemberPayload
	expect(t, alice, room.EventPlayerJoined, &joined)
	assert.Equal(t, room.MemberPayload{PlayerName: "Bob", PlayerID: bobID}, joined)

	// Only the host may start.
	send(t, bob, room.EventStartGame, room.StartGameRequest{RoomID: code})
	expectError(t, bob, "Only the host can start the game")

	send(t, alice, room.EventStartGame, room.StartGameRequest{RoomID: code})
	var started room.GameStartedPayload
	expect(t, alice, room.EventGameStarted, &started)
	assert.Equal(t, code, started.RoomID)
	expect(t, bob, room.EventGameStarted, &started)

	send(t, bob, room.EventPlayerAnswer, map[string]any{
		"roomId": code,
		"answer": map[string]float64{"lat": 48.85, "lng": 2.35},
		"score":  100,
	})
	expect(t, bob, room.EventRoomData, &rd)
	assert.Equal(t, 100, rd.Players[1].Score)
	expect(t, alice, room.EventRoomData, &rd)
	assert.Equal(t, room.StatusPlaying, rd.Status)

	var answered struct {
		PlayerName string             `json:"playerName"`
		Answer     map[string]float64 `json:"answer"`
		Score      int                `json:"score"`
	}
	expect(t, alice, room.EventPlayerAnswered, &answered)
	assert.Equal(t, "Bob", answered.PlayerName)
	assert.Equal(t, 100, answered.Score)
	assert.InDelta(t, 48.85, answered.Answer["lat"], 1e-9)

	alice.Close(websocket.StatusNormalClosure, "bye")

	expect(t, bob, room.EventRoomData, &rd)
	require.Len(t, rd.Players, 1)
	assert.Equal(t, room.PlayerView{ID: bobID, Name: "Bob", Score: 100, IsHost: true}, rd.Players[0])
	var left room.MemberPayload
	expect(t, bob, room.EventPlayerLeft, &left)
	assert.Equal(t, room.MemberPayload{PlayerName: "Alice", PlayerID: aliceID}, left)

	bob.Close(websocket.StatusNormalClosure, "bye")
	assert.Eventually(t, func() bool { return coord.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestRoomWSJoinErrors(t *testing.T) {
	srv, _ := newWSServer(t)

	host, _ := connect(t, srv)
	send(t, host, room.EventCreateRoom, room.CreateRoomRequest{UserName: "Alice"})
	var created room.RoomCreatedPayload
	expect(t, host, room.EventRoomCreated, &created)
	expect(t, host, room.EventRoomData, nil)

	guest, _ := connect(t, srv)
	send(t, guest, room.EventJoinRoom, room.JoinRoomRequest{RoomID: "ZZZZZZ", UserName: "Bob"})
	expectError(t, guest, "Room not found")

	send(t, guest, room.EventJoinRoom, room.JoinRoomRequest{RoomID: created.RoomID, UserName: "Alice"})
	expectError(t, guest, "Name already taken in this room")

	send(t, guest, room.EventPlayerAnswer, room.PlayerAnswerRequest{RoomID: created.RoomID, Score: 5})
	expectError(t, guest, "Player not found in room")

	// Lowercase codes are accepted.
	send(t, guest, room.EventJoinRoom, room.JoinRoomRequest{RoomID: strings.ToLower(created.RoomID), UserName: "Bob"})
	var rd room.RoomData
	expect(t, guest, room.EventRoomData, &rd)
	assert.Len(t, rd.Players, 2)
}

func TestRoomWSMalformedFrames(t *testing.T) {
	srv, _ := newWSServer(t)
	c, _ := connect(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Write(ctx, websocket.MessageText, []byte("{not json")))
	expectError(t, c, "Invalid message format")

	send(t, c, "teleport", map[string]string{})
	expectError(t, c, "Unknown event type: teleport")

	require.NoError(t, c.Write(ctx, websocket.MessageText, []byte(`{"type":"joinRoom","payload":"oops"}`)))
	expectError(t, c, "Invalid message format")

	// The connection survives all of the above.
	send(t, c, room.EventCreateRoom, room.CreateRoomRequest{UserName: "Alice"})
	expect(t, c, room.EventRoomCreated, nil)
}

func TestRoomWSRejectsMissingSubprotocol(t *testing.T) {
	srv, coord := newWSServer(t)
	c := dial(t, srv, []string{}...)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _, err := c.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusCode(BadSubprotocolError), websocket.CloseStatus(err))
	assert.Equal(t, 0, coord.Len())
}

func TestRoomWSFractionalScoreRejected(t *testing.T) {
	srv, coord := newWSServer(t)
	c, _ := connect(t, srv)

	send(t, c, room.EventCreateRoom, room.CreateRoomRequest{UserName: "Alice"})
	var created room.RoomCreatedPayload
	expect(t, c, room.EventRoomCreated, &created)
	expect(t, c, room.EventRoomData, nil)

	send(t, c, room.EventPlayerAnswer, map[string]any{"roomId": created.RoomID, "answer": "x", "score": 450.5})
	expectError(t, c, "Invalid message format")

	rd, ok := coord.Snapshot(created.RoomID)
	require.True(t, ok)
	assert.Zero(t, rd.Players[0].Score)

	send(t, c, room.EventPlayerAnswer, map[string]any{"roomId": created.RoomID, "answer": "x", "score": 450})
	expect(t, c, room.EventRoomData, &rd)
	assert.Equal(t, 450, rd.Players[0].Score)
}

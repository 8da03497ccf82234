// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/pinpoint/internal/middleware"
	"github.com/jason-s-yu/pinpoint/internal/room"
	"github.com/sirupsen/logrus"
)

const msgInvalidFormat = "Invalid message format"

// WSOptions tunes the per-connection pumps.
type WSOptions struct {
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	SendBuffer     int
	OriginPatterns []string
}

func (o WSOptions) withDefaults() WSOptions {
	if o.PingInterval <= 0 {
		o.PingInterval = 30 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 5 * time.Second
	}
	if o.SendBuffer < 1 {
		o.SendBuffer = 16
	}
	if len(o.OriginPatterns) == 0 {
		o.OriginPatterns = []string{"*"}
	}
	return o
}

// RoomWSHandler upgrades the request and binds the socket to coord for its
// lifetime. Closing the socket is the disconnect signal.
func RoomWSHandler(logger logrus.FieldLogger, coord *room.Coordinator, opts WSOptions) http.HandlerFunc {
	opts = opts.withDefaults()
	return func(w http.ResponseWriter, r *http.Request) {
		remoteAddr := r.RemoteAddr

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != Subprotocol {
			c.Close(BadSubprotocolError, "client must speak the pinpoint subprotocol")
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		conn := room.NewConnection(opts.SendBuffer)
		conn.Cancel = cancel
		entry := logger.WithField("conn", conn.ID)
		conn.Logger = entry

		middleware.LogWebSocketConnect(logger, remoteAddr, conn.ID)
		conn.Write(room.Message{Type: room.EventConnected, Payload: room.ConnectedPayload{PlayerID: conn.ID}})

		done := make(chan struct{})
		go func() {
			defer close(done)
			writePump(ctx, c, conn, entry, opts)
		}()

		readErr := readPump(ctx, c, coord, conn, entry)

		coord.Disconnect(conn)
		conn.Close()
		<-done

		middleware.LogWebSocketDisconnect(logger, remoteAddr, conn.ID, readErr)
		c.Close(websocket.StatusNormalClosure, "")
	}
}

// readPump decodes inbound frames and dispatches them until the socket closes.
// The returned error is nil for a normal close.
func readPump(ctx context.Context, c *websocket.Conn, coord *room.Coordinator, conn *room.Connection, logger logrus.FieldLogger) error {
	for {
		typ, msg, err := c.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		if typ != websocket.MessageText {
			logger.Warnf("ignoring non-text frame (type %d)", typ)
			continue
		}

		var in room.Inbound
		if err := json.Unmarshal(msg, &in); err != nil || in.Type == "" {
			logger.Debugf("invalid frame: %v", err)
			conn.WriteError(msgInvalidFormat)
			continue
		}

		dispatch(coord, conn, in, logger)
	}
}

// dispatch routes one decoded message to the coordinator. A panic during the
// operation is logged and answered with that operation's generic failure.
func dispatch(coord *room.Coordinator, conn *room.Connection, in room.Inbound, logger logrus.FieldLogger) {
	entry := logger.WithField("event", in.Type)

	fallback := ""
	switch in.Type {
	case room.EventCreateRoom:
		fallback = room.MsgCreateFailed
	case room.EventJoinRoom:
		fallback = room.MsgJoinFailed
	case room.EventStartGame:
		fallback = room.MsgStartFailed
	}

	defer func() {
		if rec := recover(); rec != nil {
			entry.WithField("panic", rec).Error("recovered from panic while handling message")
			if fallback != "" {
				conn.WriteError(fallback)
			}
		}
	}()

	switch in.Type {
	case room.EventCreateRoom:
		var req room.CreateRoomRequest
		if !decode(in.Payload, &req, conn) {
			return
		}
		if _, err := coord.CreateRoom(conn, req.UserName); err != nil {
			reportError(entry, conn, err, fallback)
		}

	case room.EventJoinRoom:
		var req room.JoinRoomRequest
		if !decode(in.Payload, &req, conn) {
			return
		}
		if err := coord.JoinRoom(conn, req.RoomID, req.UserName); err != nil {
			reportError(entry, conn, err, fallback)
		}

	case room.EventStartGame:
		var req room.StartGameRequest
		if !decode(in.Payload, &req, conn) {
			return
		}
		if err := coord.StartGame(conn, req.RoomID); err != nil {
			reportError(entry, conn, err, fallback)
		}

	case room.EventPlayerAnswer:
		var req room.PlayerAnswerRequest
		if !decode(in.Payload, &req, conn) {
			return
		}
		if err := coord.SubmitAnswer(conn, req.RoomID, req.Answer, req.Score); err != nil {
			if room.ErrorMessage(err, "") == "" {
				entry.Errorf("answer failed: %v", err)
				return
			}
			reportError(entry, conn, err, "")
		}

	default:
		conn.WriteError(fmt.Sprintf("Unknown event type: %s", in.Type))
	}
}

func decode(raw json.RawMessage, v any, conn *room.Connection) bool {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		conn.WriteError(msgInvalidFormat)
		return false
	}
	return true
}

func reportError(logger logrus.FieldLogger, conn *room.Connection, err error, fallback string) {
	msg := room.ErrorMessage(err, fallback)
	if msg == fallback {
		logger.Errorf("operation failed: %v", err)
	} else {
		logger.Debugf("rejected: %v", err)
	}
	conn.WriteError(msg)
}

// writePump drains OutChan onto the socket and pings on an interval. It
// returns when OutChan is closed, the context ends, or a write fails.
func writePump(ctx context.Context, c *websocket.Conn, conn *room.Connection, logger logrus.FieldLogger, opts WSOptions) {
	ticker := time.NewTicker(opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-conn.OutChan:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				logger.Warnf("failed to marshal outgoing %s: %v", msg.Type, err)
				continue
			}

			writeCtx, cancel := context.WithTimeout(ctx, opts.WriteTimeout)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("failed to write to websocket: %v", err)
				conn.Cancel()
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, opts.WriteTimeout)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("ping failed, assuming disconnect: %v", err)
				conn.Cancel()
				return
			}
		}
	}
}

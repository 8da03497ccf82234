// internal/room/connection.go
package room

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Connection is a single client's live channel into the coordinator. The
// coordinator only ever writes to OutChan; the transport drains it.
type Connection struct {
	ID      string
	OutChan chan Message
	Cancel  context.CancelFunc
	// Logger receives dropped-message warnings. The transport replaces the
	// default with its per-connection entry.
	Logger logrus.FieldLogger

	mu     sync.Mutex
	closed bool
}

// NewConnection allocates a connection with a fresh identifier and an outbound
// buffer of the given size.
func NewConnection(buffer int) *Connection {
	if buffer < 1 {
		buffer = 1
	}
	return &Connection{
		ID:      uuid.NewString(),
		OutChan: make(chan Message, buffer),
		Logger:  logrus.StandardLogger(),
	}
}

// Write pushes msg onto OutChan without blocking. A full or closed channel
// drops the message.
func (conn *Connection) Write(msg Message) {
	conn.mu.Lock()
	defer conn.mu.Unlock()
	if conn.closed {
		return
	}
	select {
	case conn.OutChan <- msg:
	default:
		conn.Logger.WithFields(logrus.Fields{
			"conn":  conn.ID,
			"event": msg.Type,
		}).Warn("outbound buffer full, dropping message")
	}
}

// WriteError sends a private error notice.
func (conn *Connection) WriteError(msg string) {
	conn.Write(Message{Type: EventError, Payload: msg})
}

// Close closes OutChan and cancels the connection context. Safe to call twice.
func (conn *Connection) Close() {
	conn.mu.Lock()
	defer conn.mu.Unlock()
	if conn.closed {
		return
	}
	conn.closed = true
	close(conn.OutChan)
	if conn.Cancel != nil {
		conn.Cancel()
	}
}

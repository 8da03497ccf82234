// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the room handler.
const (
	BadSubprotocolError = 3000 // Client connected without the pinpoint subprotocol.
)

// Subprotocol is the WebSocket subprotocol clients must request.
const Subprotocol = "pinpoint"

// internal/handlers/rooms.go
package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jason-s-yu/pinpoint/internal/room"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// HealthHandler reports liveness and the number of live rooms.
func HealthHandler(coord *room.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Live-Rooms", strconv.Itoa(coord.Len()))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

// ListRoomsHandler returns every live room as {roomId, status, playerCount}.
func ListRoomsHandler(coord *room.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, coord.Rooms())
	}
}

// GetRoomHandler returns the roomData view of /rooms/:code.
func GetRoomHandler(coord *room.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := httprouter.ParamsFromContext(r.Context()).ByName("code")
		data, ok := coord.Snapshot(code)
		if !ok {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, data)
	}
}

// RoomQRHandler renders a PNG QR code pointing at the join link for a room.
func RoomQRHandler(logger logrus.FieldLogger, coord *room.Coordinator, publicURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := strings.ToUpper(httprouter.ParamsFromContext(r.Context()).ByName("code"))
		if _, ok := coord.Snapshot(code); !ok {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		png, err := qrcode.Encode(JoinURL(publicURL, code), qrcode.Medium, qrSize)
		if err != nil {
			logger.WithField("room", code).Errorf("qr encode failed: %v", err)
			http.Error(w, "failed to render qr code", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(png)
	}
}

// JoinURL is the link a QR code encodes: <publicURL>/?room=<code>.
func JoinURL(publicURL, code string) string {
	return strings.TrimRight(publicURL, "/") + "/?room=" + url.QueryEscape(code)
}

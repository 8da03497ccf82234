// internal/handlers/router.go
package handlers

import (
	"net/http"

	"github.com/jason-s-yu/pinpoint/internal/middleware"
	"github.com/jason-s-yu/pinpoint/internal/room"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
)

// DataStore is everything the persistence-backed routes need. It is
// satisfied by *database.Store.
type DataStore interface {
	LeaderboardStore
	QuestionStore
	PlayerStore
}

// Deps wires the router. Store may be nil, in which case the leaderboard,
// question and player routes are not mounted.
type Deps struct {
	Logger      logrus.FieldLogger
	Coordinator *room.Coordinator
	Store       DataStore
	PublicURL   string
	WS          WSOptions
}

// NewRouter builds the HTTP surface, wrapped in request logging.
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = logrus.StandardLogger()
	}
	router := httprouter.New()

	router.Handler(http.MethodGet, "/ws", RoomWSHandler(d.Logger, d.Coordinator, d.WS))
	router.Handler(http.MethodGet, "/healthz", HealthHandler(d.Coordinator))
	router.Handler(http.MethodGet, "/rooms", ListRoomsHandler(d.Coordinator))
	router.Handler(http.MethodGet, "/rooms/:code", GetRoomHandler(d.Coordinator))
	router.Handler(http.MethodGet, "/rooms/:code/qr", RoomQRHandler(d.Logger, d.Coordinator, d.PublicURL))

	if d.Store != nil {
		router.Handler(http.MethodGet, "/leaderboard", GetLeaderboardHandler(d.Logger, d.Store))
		router.Handler(http.MethodPost, "/leaderboard", SubmitScoreHandler(d.Logger, d.Store))
		router.Handler(http.MethodGet, "/questions", ListQuestionsHandler(d.Logger, d.Store))
		router.Handler(http.MethodPost, "/questions", CreateQuestionHandler(d.Logger, d.Store))
		router.Handler(http.MethodDelete, "/questions/:id", DeleteQuestionHandler(d.Logger, d.Store))
		router.Handler(http.MethodPost, "/players", UpsertPlayerHandler(d.Logger, d.Store))
	}

	return middleware.LogMiddleware(d.Logger)(router)
}

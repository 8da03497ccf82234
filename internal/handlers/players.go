// internal/handlers/players.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jason-s-yu/pinpoint/internal/models"
	"github.com/sirupsen/logrus"
)

type PlayerStore interface {
	UpsertPlayer(ctx context.Context, name string) (*models.Player, error)
}

type upsertPlayerRequest struct {
	Name string `json:"name"`
}

// UpsertPlayerHandler registers a display name, returning the existing row
// when the name is already known.
func UpsertPlayerHandler(logger logrus.FieldLogger, store PlayerStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req upsertPlayerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}

		p, err := store.UpsertPlayer(r.Context(), name)
		if err != nil {
			logger.Errorf("upsert player: %v", err)
			http.Error(w, "failed to save player", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

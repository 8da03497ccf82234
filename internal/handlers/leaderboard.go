// internal/handlers/leaderboard.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jason-s-yu/pinpoint/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

type LeaderboardStore interface {
	TopScores(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	InsertScore(ctx context.Context, e *models.LeaderboardEntry) error
}

type submitScoreRequest struct {
	PlayerName string `json:"playerName"`
	Score      int    `json:"score"`
}

// GetLeaderboardHandler lists the top scores, highest first.
func GetLeaderboardHandler(logger logrus.FieldLogger, store LeaderboardStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseLimit(r, defaultLeaderboardLimit, maxLeaderboardLimit)
		entries, err := store.TopScores(r.Context(), limit)
		if err != nil {
			logger.Errorf("top scores: %v", err)
			http.Error(w, "failed to load leaderboard", http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []models.LeaderboardEntry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// SubmitScoreHandler records a final score.
func SubmitScoreHandler(logger logrus.FieldLogger, store LeaderboardStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitScoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		req.PlayerName = strings.TrimSpace(req.PlayerName)
		if req.PlayerName == "" {
			http.Error(w, "playerName is required", http.StatusBadRequest)
			return
		}
		if req.Score < 0 {
			http.Error(w, "score must not be negative", http.StatusBadRequest)
			return
		}

		entry := &models.LeaderboardEntry{PlayerName: req.PlayerName, Score: req.Score}
		if err := store.InsertScore(r.Context(), entry); err != nil {
			logger.Errorf("insert score: %v", err)
			http.Error(w, "failed to save score", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, entry)
	}
}

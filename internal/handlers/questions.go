// internal/handlers/questions.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jason-s-yu/pinpoint/internal/database"
	"github.com/jason-s-yu/pinpoint/internal/models"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
)

const (
	defaultQuestionLimit = 10
	maxQuestionLimit     = 50
)

type QuestionStore interface {
	RandomQuestions(ctx context.Context, limit int) ([]models.Question, error)
	InsertQuestion(ctx context.Context, q *models.Question) error
	DeleteQuestion(ctx context.Context, id uuid.UUID) error
}

// ListQuestionsHandler returns a random sample of questions.
func ListQuestionsHandler(logger logrus.FieldLogger, store QuestionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs, err := store.RandomQuestions(r.Context(), parseLimit(r, defaultQuestionLimit, maxQuestionLimit))
		if err != nil {
			logger.Errorf("random questions: %v", err)
			http.Error(w, "failed to load questions", http.StatusInternalServerError)
			return
		}
		if qs == nil {
			qs = []models.Question{}
		}
		writeJSON(w, http.StatusOK, qs)
	}
}

// CreateQuestionHandler inserts a question after checking the prompt and
// coordinates.
func CreateQuestionHandler(logger logrus.FieldLogger, store QuestionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q models.Question
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		q.Prompt = strings.TrimSpace(q.Prompt)
		if q.Prompt == "" {
			http.Error(w, "prompt is required", http.StatusBadRequest)
			return
		}
		if !q.ValidCoordinates() {
			http.Error(w, "lat/lng out of range", http.StatusBadRequest)
			return
		}

		if err := store.InsertQuestion(r.Context(), &q); err != nil {
			logger.Errorf("insert question: %v", err)
			http.Error(w, "failed to save question", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, q)
	}
}

// DeleteQuestionHandler removes /questions/:id.
func DeleteQuestionHandler(logger logrus.FieldLogger, store QuestionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(httprouter.ParamsFromContext(r.Context()).ByName("id"))
		if err != nil {
			http.Error(w, "invalid question id", http.StatusBadRequest)
			return
		}
		err = store.DeleteQuestion(r.Context(), id)
		switch {
		case errors.Is(err, database.ErrNotFound):
			http.Error(w, "question not found", http.StatusNotFound)
		case err != nil:
			logger.Errorf("delete question %s: %v", id, err)
			http.Error(w, "failed to delete question", http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}
}

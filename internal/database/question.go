package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/pinpoint/internal/models"
)

// RandomQuestions returns up to limit questions in random order.
func (s *Store) RandomQuestions(ctx context.Context, limit int) ([]models.Question, error) {
	q := `
	SELECT id, prompt, answer, lat, lng, created_at
	FROM questions
	ORDER BY random()
	LIMIT $1
	`
	rows, err := s.Pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		var qu models.Question
		if err := rows.Scan(&qu.ID, &qu.Prompt, &qu.Answer, &qu.Lat, &qu.Lng, &qu.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, qu)
	}
	return questions, rows.Err()
}

// InsertQuestion stores qu, assigning an ID when it has none.
func (s *Store) InsertQuestion(ctx context.Context, qu *models.Question) error {
	if qu.ID == uuid.Nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return fmt.Errorf("failed to generate question id: %w", err)
		}
		qu.ID = id
	}

	q := `
	INSERT INTO questions (id, prompt, answer, lat, lng)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING created_at
	`
	err := pgx.BeginTxFunc(ctx, s.Pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, q, qu.ID, qu.Prompt, qu.Answer, qu.Lat, qu.Lng).Scan(&qu.CreatedAt)
	})
	if err != nil {
		return fmt.Errorf("failed to insert question: %w", err)
	}
	return nil
}

// DeleteQuestion removes a question by ID, returning ErrNotFound if absent.
func (s *Store) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

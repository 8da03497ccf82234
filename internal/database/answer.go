package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/pinpoint/internal/models"
)

// InsertAnswers writes a batch of answer records in a single transaction.
func (s *Store) InsertAnswers(ctx context.Context, records []models.AnswerRecord) error {
	if len(records) == 0 {
		return nil
	}
	q := `
	INSERT INTO answers (room_code, player_id, player_name, answer, score, total, answered_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	return pgx.BeginTxFunc(ctx, s.Pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, rec := range records {
			var answer any
			if len(rec.Answer) > 0 {
				answer = string(rec.Answer)
			}
			batch.Queue(q,
				rec.RoomCode, rec.PlayerID, rec.PlayerName, answer,
				rec.Score, rec.Total, time.UnixMilli(rec.Timestamp),
			)
		}
		br := tx.SendBatch(ctx, batch)
		for range records {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("insert answer: %w", err)
			}
		}
		return br.Close()
	})
}

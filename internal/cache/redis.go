// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jason-s-yu/pinpoint/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list that accepted answers are pushed onto.
const DefaultQueueName = "pinpoint_answers"

// AnswerLog pushes answer records onto a Redis list for the historian.
type AnswerLog struct {
	Rdb   redis.UniversalClient
	Queue string
}

// ConnectRedis opens a client for addr/db and pings it.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// NewAnswerLog wraps rdb; an empty queue falls back to DefaultQueueName.
func NewAnswerLog(rdb redis.UniversalClient, queue string) *AnswerLog {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &AnswerLog{Rdb: rdb, Queue: queue}
}

// Publish serializes rec to JSON and RPUSHes it to the queue.
func (l *AnswerLog) Publish(ctx context.Context, rec models.AnswerRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal AnswerRecord: %w", err)
	}
	if err := l.Rdb.RPush(ctx, l.Queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", l.Queue, err)
	}
	return nil
}

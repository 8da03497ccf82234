// Package historian drains the Redis answer queue into Postgres in batches.
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jason-s-yu/pinpoint/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// popTimeout bounds each BLPOP so cancellation and the flush interval are
// noticed even when the queue is idle.
const popTimeout = 3 * time.Second

// Popper is the slice of the Redis client the service reads with.
// redis.UniversalClient satisfies it.
type Popper interface {
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// Sink persists a batch of answers. *database.Store satisfies it.
type Sink interface {
	InsertAnswers(ctx context.Context, records []models.AnswerRecord) error
}

// Service pops answer records from a Redis list, accumulates them and writes
// each batch to the Sink in one call.
type Service struct {
	rdb        Popper
	sink       Sink
	queue      string
	batchSize  int
	flushDelay time.Duration
	logger     logrus.FieldLogger

	batchMu   sync.Mutex
	batch     []models.AnswerRecord
	lastFlush time.Time
}

// NewService builds a historian. batchSize < 1 is treated as 1.
func NewService(rdb Popper, sink Sink, queue string, batchSize int, flushDelay time.Duration, logger logrus.FieldLogger) *Service {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Service{
		rdb:        rdb,
		sink:       sink,
		queue:      queue,
		batchSize:  batchSize,
		flushDelay: flushDelay,
		logger:     logger,
		batch:      make([]models.AnswerRecord, 0, batchSize),
		lastFlush:  time.Now(),
	}
}

// Run blocks until ctx is cancelled, then flushes whatever is buffered.
func (hs *Service) Run(ctx context.Context) error {
	hs.logger.WithField("queue", hs.queue).Info("historian started")
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Flush(flushCtx); err != nil {
			hs.logger.WithError(err).Error("final flush failed")
		}
		hs.logger.Info("historian shutting down")
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}

		res, err := hs.rdb.BLPop(ctx, popTimeout, hs.queue).Result()
		switch {
		case err == nil && len(res) == 2:
			// res[0] is the queue name and res[1] the payload.
			hs.handlePayload(ctx, res[1])
		case errors.Is(err, redis.Nil), ctx.Err() != nil:
		case err != nil:
			hs.logger.WithError(err).Warn("BLPOP failed")
			// back off so a dead Redis does not spin the loop
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}

		if hs.due() {
			if err := hs.Flush(ctx); err != nil {
				hs.logger.WithError(err).Error("flush failed")
			}
		}
	}
}

func (hs *Service) handlePayload(ctx context.Context, payload string) {
	var rec models.AnswerRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		hs.logger.WithError(err).Warn("invalid answer record")
		return
	}
	if err := hs.Add(ctx, rec); err != nil {
		hs.logger.WithError(err).Error("flush failed")
	}
}

// Add buffers rec and flushes once the batch is full.
func (hs *Service) Add(ctx context.Context, rec models.AnswerRecord) error {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()

	hs.batch = append(hs.batch, rec)
	if len(hs.batch) >= hs.batchSize {
		return hs.flushLocked(ctx)
	}
	return nil
}

// Flush writes the buffered batch, if any.
func (hs *Service) Flush(ctx context.Context) error {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()
	return hs.flushLocked(ctx)
}

// Pending returns the number of buffered records.
func (hs *Service) Pending() int {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()
	return len(hs.batch)
}

func (hs *Service) due() bool {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()
	return len(hs.batch) > 0 && time.Since(hs.lastFlush) >= hs.flushDelay
}

// flushLocked keeps the batch on failure so the next flush retries it.
func (hs *Service) flushLocked(ctx context.Context) error {
	hs.lastFlush = time.Now()
	if len(hs.batch) == 0 {
		return nil
	}
	batchCopy := make([]models.AnswerRecord, len(hs.batch))
	copy(batchCopy, hs.batch)

	if err := hs.sink.InsertAnswers(ctx, batchCopy); err != nil {
		return fmt.Errorf("insert %d answers: %w", len(batchCopy), err)
	}
	hs.batch = hs.batch[:0]
	hs.logger.Debugf("flushed %d answers", len(batchCopy))
	return nil
}

package cache

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/pinpoint/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAnswerLogDefaultQueue(t *testing.T) {
	l := NewAnswerLog(nil, "")
	assert.Equal(t, DefaultQueueName, l.Queue)
}

// TestPublishRoundTrip needs a reachable Redis at TEST_REDIS_ADDR.
func TestPublishRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb, err := ConnectRedis(ctx, addr, 0)
	require.NoError(t, err)
	defer rdb.Close()

	queue := "test_answers_" + uuid.NewString()
	defer rdb.Del(context.Background(), queue)

	l := NewAnswerLog(rdb, queue)
	rec := models.AnswerRecord{RoomCode: "ABC123", PlayerID: "p1", PlayerName: "alice", Answer: json.RawMessage(`"x"`), Score: 5, Total: 5}
	require.NoError(t, l.Publish(ctx, rec))

	raw, err := rdb.LPop(ctx, queue).Result()
	require.NoError(t, err)
	var got models.AnswerRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	assert.Equal(t, rec, got)
}

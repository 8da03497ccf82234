package database

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

// testStore connects to TEST_DATABASE_URL; these tests need a real Postgres.
func testStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := Connect(ctx, url)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(ctx))
	t.Cleanup(s.Close)
	return s
}

func TestQuestionLifecycle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	qu := &models.Question{Prompt: "Tallest mountain?", Answer: "Everest", Lat: 27.98, Lng: 86.92}
	require.NoError(t, s.InsertQuestion(ctx, qu))
	assert.NotEqual(t, uuid.Nil, qu.ID)

	got, err := s.RandomQuestions(ctx, 1000)
	require.NoError(t, err)
	found := false
	for _, g := range got {
		if g.ID == qu.ID {
			found = true
			assert.Equal(t, "Everest", g.Answer)
		}
	}
	assert.True(t, found)

	require.NoError(t, s.DeleteQuestion(ctx, qu.ID))
	assert.ErrorIs(t, s.DeleteQuestion(ctx, qu.ID), ErrNotFound)
}

func TestLeaderboardOrdering(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	name := "lb-" + uuid.NewString()[:8]
	require.NoError(t, s.InsertScore(ctx, &models.LeaderboardEntry{PlayerName: name, Score: 1_000_000}))

	top, err := s.TopScores(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.GreaterOrEqual(t, top[0].Score, 1_000_000)
}

func TestUpsertPlayerIsIdempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	name := "p-" + uuid.NewString()[:8]
	first, err := s.UpsertPlayer(ctx, name)
	require.NoError(t, err)
	second, err := s.UpsertPlayer(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestInsertAnswers(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	recs := []models.AnswerRecord{
		{RoomCode: "ABC123", PlayerID: "p1", PlayerName: "alice", Answer: json.RawMessage(`{"lat":1}`), Score: 10, Total: 10, Timestamp: time.Now().UnixMilli()},
		{RoomCode: "ABC123", PlayerID: "p2", PlayerName: "bob", Score: 0, Total: 0, Timestamp: time.Now().UnixMilli()},
	}
	require.NoError(t, s.InsertAnswers(ctx, recs))
	require.NoError(t, s.InsertAnswers(ctx, nil))
}

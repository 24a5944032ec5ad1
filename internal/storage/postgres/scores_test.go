package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/farmnav/farm-navigators/internal/game/state"
	"github.com/farmnav/farm-navigators/internal/storage/postgres"
	"github.com/farmnav/farm-navigators/internal/testutil"
)

func TestScoreRepository_Add(t *testing.T) {
	repo := postgres.NewScoreRepository(testutil.NewPool(t))
	ctx := context.Background()

	entry := state.ScoreboardEntry{
		Name:       "Ada",
		NationFlag: "🇬🇧",
		Score:      2450,
		EarthIndex: 1.62,
		Date:       "2025-10-04",
	}
	row, err := repo.Add(ctx, "ada_account", entry)
	require.NoError(t, err)

	assert.Greater(t, row.ID, int64(0))
	assert.Equal(t, "ada_account", row.PlayerName)
	assert.Equal(t, "Ada", row.Name)
	assert.Equal(t, "🇬🇧", row.NationFlag)
	assert.Equal(t, 2450, row.Score)
	assert.InDelta(t, 1.62, row.EarthIndex, 1e-9)
	assert.Equal(t, "2025-10-04", row.PlayedOn)
	assert.False(t, row.CreatedAt.IsZero())
}

func TestScoreRepository_TopNOrdersByScore(t *testing.T) {
	repo := postgres.NewScoreRepository(testutil.NewPool(t))
	ctx := context.Background()

	for _, e := range []struct {
		name  string
		score int
	}{
		{"middling", 1500},
		{"best", 3200},
		{"worst", 400},
		{"runner-up", 3100},
	} {
		_, err := repo.Add(ctx, e.name, state.ScoreboardEntry{
			Name: e.name, Score: e.score, EarthIndex: 1.8, Date: "2025-10-04",
		})
		require.NoError(t, err)
	}

	top, err := repo.TopN(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "best", top[0].Name)
	assert.Equal(t, "runner-up", top[1].Name)
	assert.Equal(t, "middling", top[2].Name)
}

func TestScoreRepository_TopNTiesBreakByInsertion(t *testing.T) {
	repo := postgres.NewScoreRepository(testutil.NewPool(t))
	ctx := context.Background()

	for _, name := range []string{"first", "second"} {
		_, err := repo.Add(ctx, name, state.ScoreboardEntry{
			Name: name, Score: 2000, EarthIndex: 1.75, Date: "2025-10-04",
		})
		require.NoError(t, err)
	}

	top, err := repo.TopN(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "first", top[0].Name, "equal scores keep insertion order")
	assert.Equal(t, "second", top[1].Name)
}

func TestSink_PublishStoresEntry(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewScoreRepository(pool)
	sink := postgres.NewSink(repo, 5*time.Second, zap.NewNop())

	sink.Publish("ada_account", state.ScoreboardEntry{
		Name: "Ada", Score: 1800, EarthIndex: 1.7, Date: "2025-10-04",
	})

	top, err := repo.TopN(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "ada_account", top[0].PlayerName)
	assert.Equal(t, 1800, top[0].Score)
}

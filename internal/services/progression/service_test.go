package progression

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/ranktracker/internal/model"
	"github.com/mcoot/ranktracker/internal/storage/memory"
)

func date(month time.Month, day int) time.Time {
	return time.Date(2024, month, day, 0, 0, 0, 0, time.UTC)
}

func seed(t *testing.T, store *memory.Storage, owner model.UserID, gameID model.GameID, rank int, d time.Time) {
	t.Helper()
	require.NoError(t, store.CreateRankEntry(context.Background(), &model.RankEntry{
		Rank: rank, Date: d, OwnerUserID: owner, GameID: gameID,
	}))
}

func TestProgressionOrdersByDate(t *testing.T) {
	store := memory.New()
	seed(t, store, "u1", 1, 1500, date(time.March, 1))
	seed(t, store, "u1", 1, 1200, date(time.January, 1))

	points, err := New(store).Progression(context.Background(), "u1", 1)
	require.NoError(t, err)

	assert.Equal(t, []model.ProgressionPoint{
		{Date: date(time.January, 1), Rank: 1200},
		{Date: date(time.March, 1), Rank: 1500},
	}, points)
}

func TestProgressionBreaksTiesByID(t *testing.T) {
	store := memory.New()
	same := date(time.February, 2)
	seed(t, store, "u1", 1, 30, same)
	seed(t, store, "u1", 1, 10, date(time.January, 5))
	seed(t, store, "u1", 1, 20, same)

	points, err := New(store).Progression(context.Background(), "u1", 1)
	require.NoError(t, err)

	ranks := make([]int, len(points))
	for i, p := range points {
		ranks[i] = p.Rank
	}
	assert.Equal(t, []int{10, 30, 20}, ranks)
}

func TestProgressionScopesToUserAndGame(t *testing.T) {
	store := memory.New()
	seed(t, store, "u1", 1, 100, date(time.January, 1))
	seed(t, store, "u2", 1, 200, date(time.January, 2))
	seed(t, store, "u1", 2, 300, date(time.January, 3))

	points, err := New(store).Progression(context.Background(), "u1", 1)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 100, points[0].Rank)
}

func TestProgressionEmpty(t *testing.T) {
	points, err := New(memory.New()).Progression(context.Background(), "u1", 1)
	require.NoError(t, err)
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestProgressionIsRepeatable(t *testing.T) {
	store := memory.New()
	seed(t, store, "u1", 1, 5, date(time.May, 1))
	seed(t, store, "u1", 1, 4, date(time.April, 1))
	svc := New(store)

	first, err := svc.Progression(context.Background(), "u1", 1)
	require.NoError(t, err)
	second, err := svc.Progression(context.Background(), "u1", 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestProgressionRequiresParameters(t *testing.T) {
	svc := New(memory.New())

	_, err := svc.Progression(context.Background(), "", 1)
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.Progression(context.Background(), "u1", 0)
	assert.ErrorIs(t, err, model.ErrValidation)
}

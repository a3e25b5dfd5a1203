package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifehex/lifehex/models"
)

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestMemoryCheckinsUpsertKeepsSingleRow(t *testing.T) {
	m := NewMemoryCheckins()
	ctx := context.Background()
	day := mustDay(t, "2025-06-10")

	mood := 3
	first, err := m.Upsert(ctx, &models.Checkin{UserID: 1, CategoryID: 2, Day: day, Mood: &mood})
	require.NoError(t, err)

	mood2 := 5
	second, err := m.Upsert(ctx, &models.Checkin{UserID: 1, CategoryID: 2, Day: day, Mood: &mood2, Notes: "better"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, *second.Mood)

	days, err := m.DaysDesc(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, days, 1)
}

func TestMemoryCheckinsRangeIsPerUser(t *testing.T) {
	m := NewMemoryCheckins()
	ctx := context.Background()

	_, err := m.Upsert(ctx, &models.Checkin{UserID: 1, CategoryID: 1, Day: mustDay(t, "2025-06-10")})
	require.NoError(t, err)
	_, err = m.Upsert(ctx, &models.Checkin{UserID: 2, CategoryID: 1, Day: mustDay(t, "2025-06-10")})
	require.NoError(t, err)

	rows, err := m.Range(ctx, 1, mustDay(t, "2025-06-04"), mustDay(t, "2025-06-10"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, uint(1), rows[0].UserID)
}

func TestMemoryStreaksLongestIsMonotone(t *testing.T) {
	m := NewMemoryStreaks()
	ctx := context.Background()

	require.NoError(t, m.Upsert(ctx, &models.Streak{UserID: 1, CategoryID: 1, CurrentStreak: 5, LongestStreak: 5}))
	// a recompute after removals reports a smaller longest; the stored record must hold
	require.NoError(t, m.Upsert(ctx, &models.Streak{UserID: 1, CategoryID: 1, CurrentStreak: 2, LongestStreak: 2}))

	s, err := m.Get(ctx, 1, 1)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 2, s.CurrentStreak)
	assert.Equal(t, 5, s.LongestStreak)
}

func TestMemoryCheckinsDistinctPairs(t *testing.T) {
	m := NewMemoryCheckins()
	ctx := context.Background()

	for _, d := range []string{"2025-06-09", "2025-06-10"} {
		_, err := m.Upsert(ctx, &models.Checkin{UserID: 1, CategoryID: 1, Day: mustDay(t, d)})
		require.NoError(t, err)
	}
	_, err := m.Upsert(ctx, &models.Checkin{UserID: 2, CategoryID: 3, Day: mustDay(t, "2025-06-10")})
	require.NoError(t, err)

	pairs, err := m.DistinctPairs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Pair{{UserID: 1, CategoryID: 1}, {UserID: 2, CategoryID: 3}}, pairs)
}

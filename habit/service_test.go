package habit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lifehex/lifehex/config"
	"github.com/lifehex/lifehex/store"
	"github.com/lifehex/lifehex/utils"
)

const testUser uint = 7

type fixture struct {
	svc      *Service
	checkins *store.MemoryCheckins
	rollups  *store.MemoryRollups
	today    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	checkins := store.NewMemoryCheckins()
	rollups := store.NewMemoryRollups()
	cats := store.NewMemoryCategories(config.DefaultCategories())
	svc := NewService(cats, checkins, store.NewMemoryStreaks(), rollups, 6, nil)

	today, err := utils.ParseDay("2025-06-11") // a Wednesday
	require.NoError(t, err)
	svc.WithClock(func() time.Time { return today })

	return &fixture{svc: svc, checkins: checkins, rollups: rollups, today: today}
}

func (f *fixture) day(offset int) time.Time {
	return f.today.AddDate(0, 0, offset)
}

func (f *fixture) record(t *testing.T, categoryID uint, offset int) {
	t.Helper()
	d := f.day(offset)
	_, err := f.svc.RecordCheckin(context.Background(), testUser, categoryID, &d, nil, "")
	require.NoError(t, err)
}

func TestRecordCheckinIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mood := 4

	first, err := f.svc.RecordCheckin(ctx, testUser, 1, nil, &mood, "slept well")
	require.NoError(t, err)

	mood2 := 2
	second, err := f.svc.RecordCheckin(ctx, testUser, 1, nil, &mood2, "actually not great")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "same day must update in place, not insert")
	assert.Equal(t, 2, *second.Mood)
	assert.Equal(t, "actually not great", second.Notes)

	days, err := f.checkins.DaysDesc(ctx, testUser, 1)
	require.NoError(t, err)
	assert.Len(t, days, 1)

	s, err := f.svc.GetStreak(ctx, testUser, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, s.CurrentStreak, "re-submitting today must not double-count")
}

func TestRecordCheckinValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bad := 9
	_, err := f.svc.RecordCheckin(ctx, testUser, 1, nil, &bad, "")
	assert.ErrorIs(t, err, ErrInvalidMood)

	_, err = f.svc.RecordCheckin(ctx, testUser, 99, nil, nil, "")
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	future := f.day(1)
	_, err = f.svc.RecordCheckin(ctx, testUser, 1, &future, nil, "")
	assert.ErrorIs(t, err, ErrFutureDay)
}

func TestRecordCheckinSanitizesNotes(t *testing.T) {
	f := newFixture(t)
	ci, err := f.svc.RecordCheckin(context.Background(), testUser, 1, nil, nil, `ran 5k <script>alert(1)</script>`)
	require.NoError(t, err)
	assert.NotContains(t, ci.Notes, "<script>")
	assert.Contains(t, ci.Notes, "ran 5k")
}

func TestStreakGrowsAcrossConsecutiveDays(t *testing.T) {
	f := newFixture(t)
	for offset := -2; offset <= 0; offset++ {
		f.record(t, 1, offset)
	}

	s, err := f.svc.GetStreak(context.Background(), testUser, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, s.CurrentStreak)
	assert.Equal(t, 3, s.LongestStreak)
	require.NotNil(t, s.LastCheckin)
	assert.True(t, s.LastCheckin.Equal(f.today))
}

func TestStreakGapResetsCurrent(t *testing.T) {
	f := newFixture(t)
	f.record(t, 1, -2) // gap on yesterday
	f.record(t, 1, 0)

	s, err := f.svc.GetStreak(context.Background(), testUser, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, s.CurrentStreak)
	assert.Equal(t, 1, s.LongestStreak)
}

func TestBackfillTriggersFullRecompute(t *testing.T) {
	f := newFixture(t)
	f.record(t, 1, -2)
	f.record(t, 1, 0)
	// backfilling the gap merges the runs
	f.record(t, 1, -1)

	s, err := f.svc.GetStreak(context.Background(), testUser, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, s.CurrentStreak)
	assert.Equal(t, 3, s.LongestStreak)
}

func TestLongestStreakSurvivesRemoval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for offset := -4; offset <= 0; offset++ {
		f.record(t, 1, offset)
	}

	s, err := f.svc.GetStreak(ctx, testUser, 1)
	require.NoError(t, err)
	require.Equal(t, 5, s.LongestStreak)

	// breaking the run in the middle must keep the achieved record
	removed, err := f.svc.RemoveCheckin(ctx, testUser, 1, f.day(-2))
	require.NoError(t, err)
	require.True(t, removed)

	s, err = f.svc.GetStreak(ctx, testUser, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, s.CurrentStreak)
	assert.Equal(t, 5, s.LongestStreak, "longest streak must never decrease")
}

func TestRemoveMissingCheckinIsNoop(t *testing.T) {
	f := newFixture(t)
	removed, err := f.svc.RemoveCheckin(context.Background(), testUser, 1, f.day(-3))
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestStreakBreaksAfterAbsence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for offset := -5; offset <= -3; offset++ {
		f.record(t, 1, offset)
	}

	s, err := f.svc.RecomputeStreak(ctx, testUser, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, s.CurrentStreak, "last check-in three days ago is outside the grace window")
	assert.Equal(t, 3, s.LongestStreak)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.record(t, 1, -1)
	f.record(t, 1, 0)

	first, err := f.svc.RecomputeStreak(ctx, testUser, 1)
	require.NoError(t, err)
	second, err := f.svc.RecomputeStreak(ctx, testUser, 1)
	require.NoError(t, err)

	assert.Equal(t, first.CurrentStreak, second.CurrentStreak)
	assert.Equal(t, first.LongestStreak, second.LongestStreak)
}

func TestRecomputeStreakUnknownCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecomputeStreak(ctx, testUser, 99)
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	row, err := f.svc.streaks.Get(ctx, testUser, 99)
	require.NoError(t, err)
	assert.Nil(t, row, "no streak row may be persisted for a nonexistent category")
}

func TestGetStreakDefaultsToZeros(t *testing.T) {
	f := newFixture(t)
	s, err := f.svc.GetStreak(context.Background(), testUser, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, s.CurrentStreak)
	assert.Equal(t, 0, s.LongestStreak)
	assert.Nil(t, s.LastCheckin)
}

func TestDashboardReflectsTodayState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mood := 5
	_, err := f.svc.RecordCheckin(ctx, testUser, 2, nil, &mood, "gym")
	require.NoError(t, err)

	snap, err := f.svc.GetDashboard(ctx, testUser, f.today)
	require.NoError(t, err)
	require.Len(t, snap.Categories, 6)

	for _, state := range snap.Categories {
		if state.Category.ID == 2 {
			assert.True(t, state.CompletedToday)
			require.NotNil(t, state.Mood)
			assert.Equal(t, 5, *state.Mood)
			assert.Equal(t, "gym", state.Notes)
			assert.Equal(t, 1, state.CurrentStreak)
		} else {
			assert.False(t, state.CompletedToday, "category %d", state.Category.ID)
		}
	}
}

func TestDashboardOrderedByPosition(t *testing.T) {
	f := newFixture(t)
	snap, err := f.svc.GetDashboard(context.Background(), testUser, f.today)
	require.NoError(t, err)
	for i := 1; i < len(snap.Categories); i++ {
		assert.Less(t, snap.Categories[i-1].Category.Position, snap.Categories[i].Category.Position)
	}
}

func TestDashboardEmptyForNewUser(t *testing.T) {
	f := newFixture(t)
	snap, err := f.svc.GetDashboard(context.Background(), 999, f.today)
	require.NoError(t, err)
	require.Len(t, snap.Categories, 6)
	for _, state := range snap.Categories {
		assert.False(t, state.CompletedToday)
		assert.Equal(t, 0, state.CurrentStreak)
		assert.Equal(t, 0, state.LongestStreak)
	}
}

func TestDashboardWeeklyRollup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// 3 categories yesterday, 1 today
	f.record(t, 1, -1)
	f.record(t, 2, -1)
	f.record(t, 3, -1)
	f.record(t, 1, 0)

	snap, err := f.svc.GetDashboard(ctx, testUser, f.today)
	require.NoError(t, err)
	require.Len(t, snap.Week, 7)

	assert.Equal(t, utils.FormatDay(f.day(-6)), snap.Week[0].Day)
	assert.Equal(t, utils.FormatDay(f.today), snap.Week[6].Day)

	assert.Equal(t, 3, snap.Week[5].CategoriesCompleted)
	assert.InDelta(t, 0.5, snap.Week[5].CompletionRate, 1e-9)
	assert.Equal(t, 1, snap.Week[6].CategoriesCompleted)
	assert.Equal(t, 0, snap.Week[0].CategoriesCompleted)
}

func TestDashboardDegradesWithoutWeek(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.record(t, 1, 0)

	f.rollups.RangeErr = errors.New("rollup backend down")
	snap, err := f.svc.GetDashboard(ctx, testUser, f.today)
	require.NoError(t, err, "snapshot must render without the weekly trend")
	assert.Nil(t, snap.Week)
	assert.True(t, snap.Categories[0].CompletedToday)
}

func TestListCategoriesStable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first, err := f.svc.ListCategories(ctx)
	require.NoError(t, err)
	second, err := f.svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 6)
}

func TestListCategoriesReportsSizeAnomaly(t *testing.T) {
	seeds := append(config.DefaultCategories(), config.CategorySeed{
		Slug: "finance", DisplayName: map[string]string{"en": "Finance"}, Color: "#2D9CDB", Icon: "wallet",
	})
	core, logs := observer.New(zapcore.ErrorLevel)
	svc := NewService(
		store.NewMemoryCategories(seeds),
		store.NewMemoryCheckins(),
		store.NewMemoryStreaks(),
		store.NewMemoryRollups(),
		6,
		zap.New(core).Sugar(),
	)
	ctx := context.Background()

	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 7, "a deviant set is returned in full, never truncated")

	snap, err := svc.GetDashboard(ctx, testUser, utils.Today())
	require.NoError(t, err)
	assert.Len(t, snap.Categories, 7)

	entries := logs.FilterMessage("category set size anomaly").All()
	require.NotEmpty(t, entries, "the deviation must be reported for operators")
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

func TestGetRollupsRejectsInvertedRange(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetRollups(context.Background(), testUser, f.today, f.day(-3))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestWeeklyScenario(t *testing.T) {
	// Mon: 1,2,3 / Tue: 1,2 / Wed: 1 — evaluated Wednesday.
	f := newFixture(t)
	ctx := context.Background()

	f.record(t, 1, -2)
	f.record(t, 2, -2)
	f.record(t, 3, -2)
	f.record(t, 1, -1)
	f.record(t, 2, -1)
	f.record(t, 1, 0)

	s1, err := f.svc.GetStreak(ctx, testUser, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, s1.CurrentStreak)
	assert.Equal(t, 3, s1.LongestStreak)

	s2, err := f.svc.GetStreak(ctx, testUser, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, s2.CurrentStreak, "Tuesday is still alive within the grace window")

	s3, err := f.svc.GetStreak(ctx, testUser, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, s3.CurrentStreak)
	assert.Equal(t, 1, s3.LongestStreak)
}

func TestConcurrentSameDayCheckins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := f.svc.RecordCheckin(ctx, testUser, 1, nil, nil, "")
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-done, "duplicate inserts must be absorbed, never surfaced")
	}

	days, err := f.checkins.DaysDesc(ctx, testUser, 1)
	require.NoError(t, err)
	assert.Len(t, days, 1)

	s, err := f.svc.RecomputeStreak(ctx, testUser, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, s.CurrentStreak)
}

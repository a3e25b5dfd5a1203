// Package habit implements the check-in and streak engine: recording daily
// check-ins, deriving consecutive-day streaks, and assembling the dashboard
// snapshot. Storage is injected, so the whole engine runs against in-memory
// fakes in tests.
package habit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lifehex/lifehex/models"
	"github.com/lifehex/lifehex/store"
	"github.com/lifehex/lifehex/streak"
	"github.com/lifehex/lifehex/utils"
)

// Validation failures, rejected before any write reaches the store.
var (
	ErrInvalidMood      = errors.New("mood must be between 1 and 5")
	ErrFutureDay        = errors.New("day must not be in the future")
	ErrInvalidRange     = errors.New("invalid date range")
	ErrCategoryNotFound = errors.New("category not found")
)

// CheckinStore is the persistence contract for check-ins. Upsert must be
// atomic insert-or-update on the (user, category, day) key.
type CheckinStore interface {
	Upsert(ctx context.Context, ci *models.Checkin) (*models.Checkin, error)
	Delete(ctx context.Context, userID, categoryID uint, day time.Time) (bool, error)
	DaysDesc(ctx context.Context, userID, categoryID uint) ([]time.Time, error)
	Range(ctx context.Context, userID uint, from, to time.Time) ([]models.Checkin, error)
	CountForDay(ctx context.Context, userID uint, day time.Time) (int, error)
	DistinctPairs(ctx context.Context) ([]store.Pair, error)
}

// StreakStore persists materialized streaks; Upsert must keep the longest
// streak monotone.
type StreakStore interface {
	Get(ctx context.Context, userID, categoryID uint) (*models.Streak, error)
	ByUser(ctx context.Context, userID uint) ([]models.Streak, error)
	Upsert(ctx context.Context, s *models.Streak) error
}

// CategoryStore reads the fixed category set.
type CategoryStore interface {
	ListActive(ctx context.Context) ([]models.Category, error)
	GetActive(ctx context.Context, id uint) (*models.Category, error)
}

// RollupStore persists per-day completion summaries.
type RollupStore interface {
	Upsert(ctx context.Context, ru *models.DailyRollup) error
	Range(ctx context.Context, userID uint, from, to time.Time) ([]models.DailyRollup, error)
}

// Service is the engine facade the HTTP layer talks to.
type Service struct {
	categories CategoryStore
	checkins   CheckinStore
	streaks    StreakStore
	rollups    RollupStore

	categoryCount int
	log           *zap.SugaredLogger
	now           func() time.Time
}

// NewService wires the engine over its stores. categoryCount is the size the
// fixed category set is expected to have; deviations are reported as
// data-integrity anomalies.
func NewService(categories CategoryStore, checkins CheckinStore, streaks StreakStore, rollups RollupStore, categoryCount int, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{
		categories:    categories,
		checkins:      checkins,
		streaks:       streaks,
		rollups:       rollups,
		categoryCount: categoryCount,
		log:           logger,
		now:           utils.Today,
	}
}

// WithClock overrides the evaluation day source. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// RecordCheckin upserts the check-in for (user, category, day) and refreshes
// the streak. Calling it twice for the same day only updates mood/notes; the
// uniqueness invariant is carried entirely by the store's atomic upsert. A
// failed recompute after a successful write is logged and tolerated: the
// streak is derived state, correctable by the reconciliation job.
func (s *Service) RecordCheckin(ctx context.Context, userID, categoryID uint, day *time.Time, mood *int, notes string) (*models.Checkin, error) {
	if mood != nil && (*mood < 1 || *mood > 5) {
		return nil, ErrInvalidMood
	}

	cat, err := s.categories.GetActive(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}
	if cat == nil {
		return nil, ErrCategoryNotFound
	}

	today := s.now()
	d := today
	if day != nil {
		d = utils.DayOf(*day)
	}
	if d.After(today) {
		return nil, ErrFutureDay
	}

	ci := &models.Checkin{
		UserID:     userID,
		CategoryID: categoryID,
		Day:        d,
		Mood:       mood,
		Notes:      utils.Sanitize(notes),
	}
	saved, err := s.checkins.Upsert(ctx, ci)
	if err != nil {
		return nil, fmt.Errorf("record check-in: %w", err)
	}

	if err := s.refreshStreak(ctx, userID, categoryID, d); err != nil {
		s.log.Errorw("streak refresh failed after check-in, leaving stale row for reconciliation",
			"user_id", userID, "category_id", categoryID, "err", err)
	}
	if err := s.refreshRollup(ctx, userID, d); err != nil {
		s.log.Warnw("rollup refresh failed", "user_id", userID, "day", utils.FormatDay(d), "err", err)
	}

	return saved, nil
}

// RemoveCheckin deletes the check-in for the key. Removing a day that was
// never checked in is a no-op success; an actual removal synchronously
// recomputes the streak, since it can shorten or break a run.
func (s *Service) RemoveCheckin(ctx context.Context, userID, categoryID uint, day time.Time) (bool, error) {
	d := utils.DayOf(day)
	removed, err := s.checkins.Delete(ctx, userID, categoryID, d)
	if err != nil {
		return false, fmt.Errorf("remove check-in: %w", err)
	}
	if !removed {
		return false, nil
	}

	if _, err := s.RecomputeStreak(ctx, userID, categoryID); err != nil {
		s.log.Errorw("streak recompute failed after removal, leaving stale row for reconciliation",
			"user_id", userID, "category_id", categoryID, "err", err)
	}
	if err := s.refreshRollup(ctx, userID, d); err != nil {
		s.log.Warnw("rollup refresh failed", "user_id", userID, "day", utils.FormatDay(d), "err", err)
	}

	return true, nil
}

// GetStreak returns the persisted streak for the pair, zeros when absent.
func (s *Service) GetStreak(ctx context.Context, userID, categoryID uint) (*models.Streak, error) {
	row, err := s.streaks.Get(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return &models.Streak{UserID: userID, CategoryID: categoryID}, nil
	}
	return row, nil
}

// RecomputeStreak rebuilds the streak from full check-in history and persists
// it. Pure function of stored state, so concurrent recomputes for the same
// pair converge on the same value and re-running is always safe.
func (s *Service) RecomputeStreak(ctx context.Context, userID, categoryID uint) (*models.Streak, error) {
	cat, err := s.categories.GetActive(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}
	if cat == nil {
		return nil, ErrCategoryNotFound
	}

	days, err := s.checkins.DaysDesc(ctx, userID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("load check-in history: %w", err)
	}
	res := streak.Compute(days, s.now())
	if err := s.persistStreak(ctx, userID, categoryID, res); err != nil {
		return nil, err
	}
	// Re-read: the stored longest streak may exceed the computed one after
	// removals, and the row is the contract.
	return s.GetStreak(ctx, userID, categoryID)
}

// refreshStreak tries the incremental fast path (the new day extends the
// current run by exactly one) and falls back to a full recompute for any
// other shape: backfills, same-day updates, or a missing streak row.
func (s *Service) refreshStreak(ctx context.Context, userID, categoryID uint, day time.Time) error {
	prev, err := s.streaks.Get(ctx, userID, categoryID)
	if err == nil && prev != nil {
		res := streak.Result{
			Current:     prev.CurrentStreak,
			Longest:     prev.LongestStreak,
			LastCheckin: prev.LastCheckin,
		}
		if next, ok := res.Extend(day, s.now()); ok {
			return s.persistStreak(ctx, userID, categoryID, next)
		}
	}
	_, err = s.RecomputeStreak(ctx, userID, categoryID)
	return err
}

func (s *Service) persistStreak(ctx context.Context, userID, categoryID uint, res streak.Result) error {
	row := &models.Streak{
		UserID:        userID,
		CategoryID:    categoryID,
		CurrentStreak: res.Current,
		LongestStreak: res.Longest,
		LastCheckin:   res.LastCheckin,
	}
	if err := s.streaks.Upsert(ctx, row); err != nil {
		return fmt.Errorf("persist streak: %w", err)
	}
	return nil
}

// refreshRollup recounts the day's completions and rewrites the summary row.
func (s *Service) refreshRollup(ctx context.Context, userID uint, day time.Time) error {
	n, err := s.checkins.CountForDay(ctx, userID, day)
	if err != nil {
		return err
	}
	rate := 0.0
	if s.categoryCount > 0 {
		rate = float64(n) / float64(s.categoryCount)
	}
	return s.rollups.Upsert(ctx, &models.DailyRollup{
		UserID:              userID,
		Day:                 day,
		CategoriesCompleted: n,
		CompletionRate:      rate,
	})
}

// ListCategories returns the fixed set in position order. A set whose size
// deviates from the configured count is a data-integrity anomaly: it is
// logged for operators and the full set is still returned, never truncated.
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	cats, err := s.categories.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(cats) != s.categoryCount {
		s.log.Errorw("category set size anomaly",
			"expected", s.categoryCount, "got", len(cats))
	}
	return cats, nil
}

// GetRollups returns per-day completion summaries for [from, to].
func (s *Service) GetRollups(ctx context.Context, userID uint, from, to time.Time) ([]models.DailyRollup, error) {
	f, t := utils.DayOf(from), utils.DayOf(to)
	if t.Before(f) {
		return nil, ErrInvalidRange
	}
	return s.rollups.Range(ctx, userID, f, t)
}

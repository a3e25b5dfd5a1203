package habit

import (
	"context"
	"fmt"
	"time"

	"github.com/lifehex/lifehex/models"
	"github.com/lifehex/lifehex/utils"
)

// CategoryState is one category's slice of the dashboard: today's completion
// plus the persisted streak, zeros when the user has no history yet.
type CategoryState struct {
	Category       models.Category `json:"category"`
	CompletedToday bool            `json:"completed_today"`
	Mood           *int            `json:"mood,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	CurrentStreak  int             `json:"current_streak"`
	LongestStreak  int             `json:"longest_streak"`
	LastCheckin    *string         `json:"last_checkin,omitempty"`
}

// WeekDay is one day of the trailing weekly view.
type WeekDay struct {
	Day                 string  `json:"day"`
	CategoriesCompleted int     `json:"categories_completed"`
	CompletionRate      float64 `json:"completion_rate"`
}

// DashboardSnapshot is the single consistent response the dashboard renders
// from. Week is nil when the weekly sub-computation failed; the rest of the
// snapshot still renders.
type DashboardSnapshot struct {
	AsOf       string          `json:"as_of"`
	Categories []CategoryState `json:"categories"`
	Week       []WeekDay       `json:"week,omitempty"`
}

// GetDashboard assembles the snapshot for one user as of the given day from a
// constant number of batched reads: the category set, the day's check-ins,
// the user's streak rows, and the weekly summaries. Never one query per
// category, and never a write: the aggregator is strictly read-only.
func (s *Service) GetDashboard(ctx context.Context, userID uint, asOf time.Time) (*DashboardSnapshot, error) {
	day := utils.DayOf(asOf)

	cats, err := s.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	todays, err := s.checkins.Range(ctx, userID, day, day)
	if err != nil {
		return nil, fmt.Errorf("load today's check-ins: %w", err)
	}
	byCategory := make(map[uint]models.Checkin, len(todays))
	for _, ci := range todays {
		byCategory[ci.CategoryID] = ci
	}

	streakRows, err := s.streaks.ByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load streaks: %w", err)
	}
	streakByCategory := make(map[uint]models.Streak, len(streakRows))
	for _, row := range streakRows {
		streakByCategory[row.CategoryID] = row
	}

	snapshot := &DashboardSnapshot{
		AsOf:       utils.FormatDay(day),
		Categories: make([]CategoryState, 0, len(cats)),
	}
	for _, cat := range cats {
		state := CategoryState{Category: cat}
		if ci, ok := byCategory[cat.ID]; ok {
			state.CompletedToday = true
			state.Mood = ci.Mood
			state.Notes = ci.Notes
		}
		if row, ok := streakByCategory[cat.ID]; ok {
			state.CurrentStreak = row.CurrentStreak
			state.LongestStreak = row.LongestStreak
			if row.LastCheckin != nil {
				last := utils.FormatDay(*row.LastCheckin)
				state.LastCheckin = &last
			}
		}
		snapshot.Categories = append(snapshot.Categories, state)
	}

	week, err := s.weeklyView(ctx, userID, day)
	if err != nil {
		// Degrade: today's state and streaks still render without the trend.
		s.log.Warnw("weekly rollup unavailable, serving degraded dashboard",
			"user_id", userID, "as_of", snapshot.AsOf, "err", err)
	} else {
		snapshot.Week = week
	}

	return snapshot, nil
}

// weeklyView builds the trailing seven days from the persisted rollups,
// filling zero entries for days without a summary row.
func (s *Service) weeklyView(ctx context.Context, userID uint, asOf time.Time) ([]WeekDay, error) {
	from := asOf.AddDate(0, 0, -6)
	rows, err := s.rollups.Range(ctx, userID, from, asOf)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]models.DailyRollup, len(rows))
	for _, r := range rows {
		byDay[utils.FormatDay(r.Day)] = r
	}

	week := make([]WeekDay, 0, 7)
	for i := 0; i < 7; i++ {
		d := utils.FormatDay(from.AddDate(0, 0, i))
		entry := WeekDay{Day: d}
		if r, ok := byDay[d]; ok {
			entry.CategoriesCompleted = r.CategoriesCompleted
			entry.CompletionRate = r.CompletionRate
		}
		week = append(week, entry)
	}
	return week, nil
}

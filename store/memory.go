package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lifehex/lifehex/config"
	"github.com/lifehex/lifehex/models"
	"github.com/lifehex/lifehex/utils"
)

// In-memory store implementations mirroring the MySQL repositories' contracts,
// including upsert atomicity and the monotone longest streak. They back unit
// tests and make the engine runnable without a database.

// MemoryCheckins is an in-memory CheckinStore.
type MemoryCheckins struct {
	mu     sync.Mutex
	rows   map[string]*models.Checkin
	nextID uint
}

// NewMemoryCheckins creates an empty in-memory check-in store.
func NewMemoryCheckins() *MemoryCheckins {
	return &MemoryCheckins{rows: map[string]*models.Checkin{}}
}

func checkinKey(userID, categoryID uint, day time.Time) string {
	return fmt.Sprintf("%d/%d/%s", userID, categoryID, utils.FormatDay(day))
}

// Upsert inserts or updates under a single lock, matching the SQL upsert's
// atomicity.
func (m *MemoryCheckins) Upsert(_ context.Context, ci *models.Checkin) (*models.Checkin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	day := utils.DayOf(ci.Day)
	key := checkinKey(ci.UserID, ci.CategoryID, day)
	now := time.Now()
	if existing, ok := m.rows[key]; ok {
		existing.Mood = ci.Mood
		existing.Notes = ci.Notes
		existing.UpdatedAt = now
		out := *existing
		return &out, nil
	}

	m.nextID++
	row := &models.Checkin{
		ID:         m.nextID,
		UserID:     ci.UserID,
		CategoryID: ci.CategoryID,
		Day:        day,
		Mood:       ci.Mood,
		Notes:      ci.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	m.rows[key] = row
	out := *row
	return &out, nil
}

// Delete removes the row for the key.
func (m *MemoryCheckins) Delete(_ context.Context, userID, categoryID uint, day time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := checkinKey(userID, categoryID, utils.DayOf(day))
	if _, ok := m.rows[key]; !ok {
		return false, nil
	}
	delete(m.rows, key)
	return true, nil
}

// DaysDesc returns the pair's check-in days, most recent first.
func (m *MemoryCheckins) DaysDesc(_ context.Context, userID, categoryID uint) ([]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var days []time.Time
	for _, row := range m.rows {
		if row.UserID == userID && row.CategoryID == categoryID {
			days = append(days, row.Day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })
	return days, nil
}

// Range returns the user's check-ins within [from, to] in day order.
func (m *MemoryCheckins) Range(_ context.Context, userID uint, from, to time.Time) ([]models.Checkin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, t := utils.DayOf(from), utils.DayOf(to)
	var out []models.Checkin
	for _, row := range m.rows {
		if row.UserID != userID || row.Day.Before(f) || row.Day.After(t) {
			continue
		}
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

// CountForDay counts distinct categories checked in on one day.
func (m *MemoryCheckins) CountForDay(_ context.Context, userID uint, day time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := utils.DayOf(day)
	n := 0
	for _, row := range m.rows {
		if row.UserID == userID && row.Day.Equal(d) {
			n++
		}
	}
	return n, nil
}

// DistinctPairs lists every (user, category) pair with history.
func (m *MemoryCheckins) DistinctPairs(_ context.Context) ([]Pair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := map[Pair]struct{}{}
	for _, row := range m.rows {
		seen[Pair{UserID: row.UserID, CategoryID: row.CategoryID}] = struct{}{}
	}
	pairs := make([]Pair, 0, len(seen))
	for p := range seen {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].UserID != pairs[j].UserID {
			return pairs[i].UserID < pairs[j].UserID
		}
		return pairs[i].CategoryID < pairs[j].CategoryID
	})
	return pairs, nil
}

// MemoryStreaks is an in-memory StreakStore.
type MemoryStreaks struct {
	mu   sync.Mutex
	rows map[Pair]*models.Streak
}

// NewMemoryStreaks creates an empty in-memory streak store.
func NewMemoryStreaks() *MemoryStreaks {
	return &MemoryStreaks{rows: map[Pair]*models.Streak{}}
}

// Get returns the pair's streak, nil when absent.
func (m *MemoryStreaks) Get(_ context.Context, userID, categoryID uint) (*models.Streak, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[Pair{UserID: userID, CategoryID: categoryID}]
	if !ok {
		return nil, nil
	}
	out := *row
	return &out, nil
}

// ByUser returns all streaks for the user.
func (m *MemoryStreaks) ByUser(_ context.Context, userID uint) ([]models.Streak, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Streak
	for p, row := range m.rows {
		if p.UserID == userID {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryID < out[j].CategoryID })
	return out, nil
}

// Upsert overwrites the row, keeping the longest streak monotone exactly like
// the SQL GREATEST clause.
func (m *MemoryStreaks) Upsert(_ context.Context, s *models.Streak) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := Pair{UserID: s.UserID, CategoryID: s.CategoryID}
	longest := s.LongestStreak
	if prev, ok := m.rows[key]; ok && prev.LongestStreak > longest {
		longest = prev.LongestStreak
	}
	row := *s
	row.LongestStreak = longest
	row.UpdatedAt = time.Now()
	m.rows[key] = &row
	return nil
}

// MemoryCategories is an in-memory CategoryStore.
type MemoryCategories struct {
	mu   sync.Mutex
	cats []models.Category
}

// NewMemoryCategories creates a category store holding the given seeds in
// order.
func NewMemoryCategories(seeds []config.CategorySeed) *MemoryCategories {
	m := &MemoryCategories{}
	for i, s := range seeds {
		m.cats = append(m.cats, models.Category{
			ID:          uint(i + 1),
			Slug:        s.Slug,
			DisplayName: s.DisplayName,
			Color:       s.Color,
			Icon:        s.Icon,
			Position:    i + 1,
			Active:      true,
		})
	}
	return m
}

// ListActive returns active categories in position order.
func (m *MemoryCategories) ListActive(_ context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Category
	for _, c := range m.cats {
		if c.Active {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// GetActive returns the category by id, nil when absent or inactive.
func (m *MemoryCategories) GetActive(_ context.Context, id uint) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.cats {
		if c.ID == id && c.Active {
			out := c
			return &out, nil
		}
	}
	return nil, nil
}

// MemoryRollups is an in-memory RollupStore. RangeErr, when set, makes Range
// fail so tests can exercise the degraded dashboard path.
type MemoryRollups struct {
	mu       sync.Mutex
	rows     map[string]*models.DailyRollup
	RangeErr error
}

// NewMemoryRollups creates an empty in-memory rollup store.
func NewMemoryRollups() *MemoryRollups {
	return &MemoryRollups{rows: map[string]*models.DailyRollup{}}
}

func rollupKey(userID uint, day time.Time) string {
	return fmt.Sprintf("%d/%s", userID, utils.FormatDay(day))
}

// Upsert writes the (user, day) summary.
func (m *MemoryRollups) Upsert(_ context.Context, ru *models.DailyRollup) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	row := *ru
	row.Day = utils.DayOf(ru.Day)
	row.UpdatedAt = time.Now()
	m.rows[rollupKey(ru.UserID, row.Day)] = &row
	return nil
}

// Range returns the user's summaries within [from, to] in day order.
func (m *MemoryRollups) Range(_ context.Context, userID uint, from, to time.Time) ([]models.DailyRollup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.RangeErr != nil {
		return nil, m.RangeErr
	}
	f, t := utils.DayOf(from), utils.DayOf(to)
	var out []models.DailyRollup
	for _, row := range m.rows {
		if row.UserID != userID || row.Day.Before(f) || row.Day.After(t) {
			continue
		}
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

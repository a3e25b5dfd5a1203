package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lifehex/lifehex/models"
	"github.com/lifehex/lifehex/utils"
)

// StreakRepo persists the materialized streak rows, one per (user, category).
type StreakRepo struct {
	db *gorm.DB
}

// NewStreakRepo creates a StreakRepo over the given connection.
func NewStreakRepo(db *gorm.DB) *StreakRepo {
	return &StreakRepo{db: db}
}

// Get returns the streak row for the pair, or nil when none exists yet.
func (r *StreakRepo) Get(ctx context.Context, userID, categoryID uint) (*models.Streak, error) {
	var s models.Streak
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND category_id = ?", userID, categoryID).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	normalizeStreak(&s)
	return &s, nil
}

// ByUser returns all streak rows for the user in one query.
func (r *StreakRepo) ByUser(ctx context.Context, userID uint) ([]models.Streak, error) {
	var rows []models.Streak
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		normalizeStreak(&rows[i])
	}
	return rows, nil
}

// Upsert overwrites the streak row for the pair. The longest streak only ever
// ratchets upward: removing old check-ins must not erase a record already
// achieved, so the conflict update takes GREATEST of stored and new.
func (r *StreakRepo) Upsert(ctx context.Context, s *models.Streak) error {
	var last interface{}
	if s.LastCheckin != nil {
		d := utils.DayOf(*s.LastCheckin)
		s.LastCheckin = &d
		last = d
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "category_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"current_streak": s.CurrentStreak,
			"longest_streak": gorm.Expr("GREATEST(longest_streak, ?)", s.LongestStreak),
			"last_checkin":   last,
			"updated_at":     time.Now(),
		}),
	}).Create(s).Error
}

func normalizeStreak(s *models.Streak) {
	if s.LastCheckin != nil {
		d := utils.DayOf(*s.LastCheckin)
		s.LastCheckin = &d
	}
}

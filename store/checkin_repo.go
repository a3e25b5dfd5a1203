package store

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lifehex/lifehex/models"
	"github.com/lifehex/lifehex/utils"
)

// CheckinRepo persists check-ins in MySQL. All writes for one
// (user, category, day) key funnel through an atomic upsert, so the unique
// index is never violated and concurrent duplicate inserts converge on a
// single row.
type CheckinRepo struct {
	db *gorm.DB
}

// NewCheckinRepo creates a CheckinRepo over the given connection.
func NewCheckinRepo(db *gorm.DB) *CheckinRepo {
	return &CheckinRepo{db: db}
}

// Upsert inserts the check-in or, when the (user, category, day) row already
// exists, updates mood/notes in place. Never read-then-write: the conflict
// clause is the sole uniqueness mechanism.
func (r *CheckinRepo) Upsert(ctx context.Context, ci *models.Checkin) (*models.Checkin, error) {
	ci.Day = utils.DayOf(ci.Day)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "category_id"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"mood":       ci.Mood,
			"notes":      ci.Notes,
			"updated_at": time.Now(),
		}),
	}).Create(ci).Error
	if err != nil {
		return nil, err
	}

	// On the update path Create leaves the struct with the insert attempt's
	// zero ID; fetch the canonical row either way.
	var out models.Checkin
	err = r.db.WithContext(ctx).
		Where("user_id = ? AND category_id = ? AND day = ?", ci.UserID, ci.CategoryID, ci.Day).
		First(&out).Error
	if err != nil {
		return nil, err
	}
	out.Day = utils.DayOf(out.Day)
	return &out, nil
}

// Delete removes the check-in for the key and reports whether a row existed.
func (r *CheckinRepo) Delete(ctx context.Context, userID, categoryID uint, day time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND category_id = ? AND day = ?", userID, categoryID, utils.DayOf(day)).
		Delete(&models.Checkin{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DaysDesc returns every check-in day for the pair, most recent first. This
// is the streak calculator's input.
func (r *CheckinRepo) DaysDesc(ctx context.Context, userID, categoryID uint) ([]time.Time, error) {
	var raw []time.Time
	err := r.db.WithContext(ctx).Model(&models.Checkin{}).
		Where("user_id = ? AND category_id = ?", userID, categoryID).
		Order("day DESC").
		Pluck("day", &raw).Error
	if err != nil {
		return nil, err
	}
	days := make([]time.Time, len(raw))
	for i, d := range raw {
		days[i] = utils.DayOf(d)
	}
	return days, nil
}

// Range returns all check-ins for the user within [from, to], one query for
// the whole window so the dashboard never fans out per category.
func (r *CheckinRepo) Range(ctx context.Context, userID uint, from, to time.Time) ([]models.Checkin, error) {
	var rows []models.Checkin
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND day >= ? AND day <= ?", userID, utils.DayOf(from), utils.DayOf(to)).
		Order("day ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Day = utils.DayOf(rows[i].Day)
	}
	return rows, nil
}

// CountForDay counts distinct categories checked in on one day.
func (r *CheckinRepo) CountForDay(ctx context.Context, userID uint, day time.Time) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Checkin{}).
		Where("user_id = ? AND day = ?", userID, utils.DayOf(day)).
		Distinct("category_id").
		Count(&n).Error
	return int(n), err
}

// Pair identifies one (user, category) streak to reconcile.
type Pair struct {
	UserID     uint
	CategoryID uint
}

// DistinctPairs lists every (user, category) pair that has any check-in
// history. The reconciliation job walks this set.
func (r *CheckinRepo) DistinctPairs(ctx context.Context) ([]Pair, error) {
	var pairs []Pair
	err := r.db.WithContext(ctx).Model(&models.Checkin{}).
		Distinct("user_id", "category_id").
		Find(&pairs).Error
	return pairs, err
}

package store

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lifehex/lifehex/models"
	"github.com/lifehex/lifehex/utils"
)

// RollupRepo maintains the per-day completion summaries. They are a derived
// cache over check-ins and may lag briefly; the reconciliation job and every
// write path refresh them.
type RollupRepo struct {
	db *gorm.DB
}

// NewRollupRepo creates a RollupRepo over the given connection.
func NewRollupRepo(db *gorm.DB) *RollupRepo {
	return &RollupRepo{db: db}
}

// Upsert writes the rollup for (user, day), replacing any previous summary.
func (r *RollupRepo) Upsert(ctx context.Context, ru *models.DailyRollup) error {
	ru.Day = utils.DayOf(ru.Day)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"categories_completed": ru.CategoriesCompleted,
			"completion_rate":      ru.CompletionRate,
			"updated_at":           time.Now(),
		}),
	}).Create(ru).Error
}

// Range returns rollups for the user within [from, to] in day order.
func (r *RollupRepo) Range(ctx context.Context, userID uint, from, to time.Time) ([]models.DailyRollup, error) {
	var rows []models.DailyRollup
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

package models

import "time"

// DailyRollup stores the aggregated completion summary per user and day:
// how many distinct categories were checked in and the resulting completion
// rate against the configured category count. It is an eventually-consistent
// cache over Checkin, refreshed on writes and by the reconciliation job.
type DailyRollup struct {
	ID                  uint      `gorm:"primaryKey" json:"-"`
	UserID              uint      `gorm:"index:idx_rollup_user_day,unique;not null" json:"user_id"`
	Day                 time.Time `gorm:"index:idx_rollup_user_day,unique;type:date;not null" json:"day"`
	CategoriesCompleted int       `gorm:"not null;default:0" json:"categories_completed"`
	CompletionRate      float64   `gorm:"not null;default:0" json:"completion_rate"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

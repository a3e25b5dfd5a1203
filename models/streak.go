package models

import "time"

// Streak is derived state: a materialization of consecutive-day runs over a
// user's check-in history for one category, kept for read performance. It is
// always reconstructable from Checkin rows. LongestStreak never decreases
// across recomputations; the store enforces GREATEST semantics on write.
type Streak struct {
	ID            uint       `gorm:"primaryKey" json:"-"`
	UserID        uint       `gorm:"index:idx_streak_user_cat,unique;not null" json:"user_id"`
	CategoryID    uint       `gorm:"index:idx_streak_user_cat,unique;not null" json:"category_id"`
	CurrentStreak int        `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak int        `gorm:"not null;default:0" json:"longest_streak"`
	LastCheckin   *time.Time `gorm:"type:date" json:"last_checkin"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

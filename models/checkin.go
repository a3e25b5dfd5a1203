package models

import "time"

// Checkin records one user's engagement with a category on one calendar day.
// The composite unique index is the central correctness constraint: writes go
// through an atomic upsert, so at most one row per (user, category, day) can
// ever exist, regardless of concurrent requests.
type Checkin struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index:idx_checkin_user_cat_day,unique;not null" json:"user_id"`
	CategoryID uint      `gorm:"index:idx_checkin_user_cat_day,unique;not null" json:"category_id"`
	Day        time.Time `gorm:"index:idx_checkin_user_cat_day,unique;type:date;not null" json:"day"`
	Mood       *int      `json:"mood,omitempty"`
	Notes      string    `gorm:"size:1024" json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

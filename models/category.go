package models

import "time"

// Category is one dimension of the life hexagon. The set is fixed and seeded
// at boot; rows are shared across users and read-only at runtime. Ordering by
// Position is significant for the hexagonal dashboard layout.
type Category struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Slug        string            `gorm:"size:64;uniqueIndex;not null" json:"slug"`
	DisplayName map[string]string `gorm:"serializer:json;type:text" json:"display_name"`
	Color       string            `gorm:"size:16" json:"color"`
	Icon        string            `gorm:"size:64" json:"icon"`
	Position    int               `gorm:"not null;default:0" json:"position"`
	Active      bool              `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Name returns the display name for lang, falling back to English and then to
// the slug when no localization exists.
func (c Category) Name(lang string) string {
	if v, ok := c.DisplayName[lang]; ok && v != "" {
		return v
	}
	if v, ok := c.DisplayName["en"]; ok && v != "" {
		return v
	}
	return c.Slug
}

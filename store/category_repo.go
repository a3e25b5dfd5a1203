package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/lifehex/lifehex/config"
	"github.com/lifehex/lifehex/models"
)

// CategoryRepo reads the fixed category set. Rows are shared across users and
// never mutated at runtime; the only write path is boot-time seeding.
type CategoryRepo struct {
	db *gorm.DB
}

// NewCategoryRepo creates a CategoryRepo over the given connection.
func NewCategoryRepo(db *gorm.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// ListActive returns active categories in position order.
func (r *CategoryRepo) ListActive(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("position ASC").
		Find(&cats).Error
	return cats, err
}

// GetActive returns the category by id, or nil when it does not exist or is
// inactive.
func (r *CategoryRepo) GetActive(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	err := r.db.WithContext(ctx).
		Where("id = ? AND active = ?", id, true).
		First(&c).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Seed populates the category table from the configured set when it is
// empty. Position follows seed order.
func (r *CategoryRepo) Seed(ctx context.Context, seeds []config.CategorySeed) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Category{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	cats := make([]models.Category, 0, len(seeds))
	for i, s := range seeds {
		cats = append(cats, models.Category{
			Slug:        s.Slug,
			DisplayName: s.DisplayName,
			Color:       s.Color,
			Icon:        s.Icon,
			Position:    i + 1,
			Active:      true,
		})
	}
	return r.db.WithContext(ctx).Create(&cats).Error
}

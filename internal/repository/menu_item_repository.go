package repository

import (
	"hospitality_pos/internal/billing"
	"hospitality_pos/internal/models"

	"gorm.io/gorm"
)

type MenuItemRepository interface {
	Create(item *models.MenuItem) error
	GetByID(id uint) (*models.MenuItem, error)
	Update(item *models.MenuItem) error
	List(unit billing.BusinessUnit, availableOnly bool) ([]models.MenuItem, error)
}

type menuItemRepository struct {
	db *gorm.DB
}

func NewMenuItemRepository(db *gorm.DB) MenuItemRepository {
	return &menuItemRepository{db: db}
}

func (r *menuItemRepository) Create(item *models.MenuItem) error {
	return r.db.Create(item).Error
}

func (r *menuItemRepository) GetByID(id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.db.First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *menuItemRepository) Update(item *models.MenuItem) error {
	return r.db.Save(item).Error
}

// List returns the menu ordered by category then name. An empty unit lists
// every unit.
func (r *menuItemRepository) List(unit billing.BusinessUnit, availableOnly bool) ([]models.MenuItem, error) {
	var items []models.MenuItem
	q := r.db.Order("category, name")
	if unit != "" {
		q = q.Where("business_unit = ?", unit)
	}
	if availableOnly {
		q = q.Where("available = ?", true)
	}
	err := q.Find(&items).Error
	return items, err
}

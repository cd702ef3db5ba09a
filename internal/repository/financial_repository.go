package repository

import (
	"time"

	"hospitality_pos/internal/models"

	"gorm.io/gorm"
)

type FinancialRepository interface {
	GetSettings() (*models.BusinessSettings, error)
	SaveSettings(settings *models.BusinessSettings) error
	ListSettlements(from, to time.Time) ([]models.Settlement, error)
}

type financialRepository struct {
	db *gorm.DB
}

func NewFinancialRepository(db *gorm.DB) FinancialRepository {
	return &financialRepository{db: db}
}

// GetSettings returns the single settings row, the oldest if several exist.
func (r *financialRepository) GetSettings() (*models.BusinessSettings, error) {
	var settings models.BusinessSettings
	err := r.db.Order("id").First(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *financialRepository) SaveSettings(settings *models.BusinessSettings) error {
	return r.db.Save(settings).Error
}

func (r *financialRepository) ListSettlements(from, to time.Time) ([]models.Settlement, error) {
	var settlements []models.Settlement
	err := r.db.Where("settled_at BETWEEN ? AND ?", from, to).
		Order("settled_at").
		Find(&settlements).Error
	return settlements, err
}

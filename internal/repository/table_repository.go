package repository

import (
	"hospitality_pos/internal/models"

	"gorm.io/gorm"
)

type TableRepository interface {
	Create(table *models.Table) error
	GetByID(id uint) (*models.Table, error)
	GetAll() ([]models.Table, error)
	MarkOccupied(id, orderID uint) error
	MarkAvailable(id uint) error
}

type tableRepository struct {
	db *gorm.DB
}

func NewTableRepository(db *gorm.DB) TableRepository {
	return &tableRepository{db: db}
}

func (r *tableRepository) Create(table *models.Table) error {
	return r.db.Create(table).Error
}

func (r *tableRepository) GetByID(id uint) (*models.Table, error) {
	var table models.Table
	err := r.db.First(&table, id).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *tableRepository) GetAll() ([]models.Table, error) {
	var tables []models.Table
	err := r.db.Order("business_unit, number").Find(&tables).Error
	return tables, err
}

func (r *tableRepository) MarkOccupied(id, orderID uint) error {
	return r.setStatus(id, map[string]interface{}{
		"status":           models.TableOccupied,
		"current_order_id": orderID,
	})
}

func (r *tableRepository) MarkAvailable(id uint) error {
	return r.setStatus(id, map[string]interface{}{
		"status":           models.TableAvailable,
		"current_order_id": nil,
	})
}

func (r *tableRepository) setStatus(id uint, values map[string]interface{}) error {
	res := r.db.Model(&models.Table{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

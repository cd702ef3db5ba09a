package repository

import (
	"hospitality_pos/internal/lifecycle"
	"hospitality_pos/internal/models"

	"gorm.io/gorm"
)

type OrderItemRepository interface {
	GetByID(orderID, itemID uint) (*models.OrderItem, error)
	GetByOrderID(orderID uint) ([]models.OrderItem, error)
	// UpdateStatus reports false when the item was not in from.
	UpdateStatus(orderID, itemID uint, from, to lifecycle.ItemStatus) (bool, error)
	ResetByOrderID(orderID uint) error
}

type orderItemRepository struct {
	db *gorm.DB
}

func NewOrderItemRepository(db *gorm.DB) OrderItemRepository {
	return &orderItemRepository{db: db}
}

func (r *orderItemRepository) GetByID(orderID, itemID uint) (*models.OrderItem, error) {
	var item models.OrderItem
	err := r.db.Where("id = ? AND order_id = ?", itemID, orderID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *orderItemRepository) GetByOrderID(orderID uint) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.Where("order_id = ?", orderID).Order("id").Find(&items).Error
	return items, err
}

func (r *orderItemRepository) UpdateStatus(orderID, itemID uint, from, to lifecycle.ItemStatus) (bool, error) {
	res := r.db.Model(&models.OrderItem{}).
		Where("id = ? AND order_id = ? AND status = ?", itemID, orderID, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ResetByOrderID puts every item of the order back to pending.
func (r *orderItemRepository) ResetByOrderID(orderID uint) error {
	return r.db.Model(&models.OrderItem{}).
		Where("order_id = ?", orderID).
		Update("status", lifecycle.ItemPending).Error
}

package repository

import (
	"errors"

	"hospitality_pos/internal/models"

	"gorm.io/gorm"
)

type RunningOrderRepository interface {
	GetByTableID(tableID uint) (*models.RunningOrder, error)
	// Save writes ro if the stored version still equals expected (0 means no
	// row yet). It reports false when another writer got there first; on
	// success ro.Version holds the new version. A row that was deleted since
	// the writer last saw it is created again at version 1.
	Save(ro *models.RunningOrder, expected int64) (bool, error)
	DeleteByTableID(tableID uint) error
}

type runningOrderRepository struct {
	db *gorm.DB
}

func NewRunningOrderRepository(db *gorm.DB) RunningOrderRepository {
	return &runningOrderRepository{db: db}
}

func (r *runningOrderRepository) GetByTableID(tableID uint) (*models.RunningOrder, error) {
	var ro models.RunningOrder
	err := r.db.Where("table_id = ?", tableID).First(&ro).Error
	if err != nil {
		return nil, err
	}
	return &ro, nil
}

func (r *runningOrderRepository) Save(ro *models.RunningOrder, expected int64) (bool, error) {
	if expected == 0 {
		return r.create(ro)
	}

	res := r.db.Model(&models.RunningOrder{}).
		Where("table_id = ? AND version = ?", ro.TableID, expected).
		Updates(map[string]interface{}{
			"items":            ro.Items,
			"customer_name":    ro.CustomerName,
			"customer_mobile":  ro.CustomerMobile,
			"discount_percent": ro.DiscountPercent,
			"version":          expected + 1,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		_, err := r.GetByTableID(ro.TableID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.create(ro)
		}
		return false, err
	}
	ro.Version = expected + 1
	return true, nil
}

func (r *runningOrderRepository) create(ro *models.RunningOrder) (bool, error) {
	ro.ID = 0
	ro.Version = 1
	err := r.db.Create(ro).Error
	if err == nil {
		return true, nil
	}
	// Lost a race for the table's row.
	if _, lookupErr := r.GetByTableID(ro.TableID); lookupErr == nil {
		ro.Version = 0
		return false, nil
	} else if !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
		return false, lookupErr
	}
	return false, err
}

func (r *runningOrderRepository) DeleteByTableID(tableID uint) error {
	return r.db.Where("table_id = ?", tableID).Delete(&models.RunningOrder{}).Error
}

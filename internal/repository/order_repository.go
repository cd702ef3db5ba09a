package repository

import (
	"fmt"
	"time"

	"hospitality_pos/internal/billing"
	"hospitality_pos/internal/lifecycle"
	"hospitality_pos/internal/models"

	"gorm.io/gorm"
)

type OrderFilter struct {
	Status       lifecycle.OrderStatus
	BusinessUnit billing.BusinessUnit
	TableID      uint
	Since        *time.Time
}

type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	List(filter OrderFilter) ([]models.Order, error)
	ActiveByTable(tableID uint) (*models.Order, error)
	// UpdateStatus moves the order from one status to another and stamps the
	// matching timestamp column. It reports false when the order was not in
	// from.
	UpdateStatus(id uint, from, to lifecycle.OrderStatus, at time.Time) (bool, error)
	// ReplaceItems stores order's header fields and makes order.Items its
	// complete item list: rows not listed are removed, listed rows with an ID
	// are updated and the rest inserted.
	ReplaceItems(order *models.Order) error
	SaveTotals(id uint, t billing.Totals) error
	Delete(id uint) error
	NextOrderNumber(prefix string, day time.Time) (string, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts the order and its items in one transaction.
func (r *orderRepository) Create(order *models.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		items := order.Items
		order.Items = nil
		if err := tx.Create(order).Error; err != nil {
			order.Items = items
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		order.Items = items
		return nil
	})
}

func (r *orderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items", itemsInOrder).First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(filter OrderFilter) ([]models.Order, error) {
	var orders []models.Order
	q := r.db.Preload("Items", itemsInOrder).Order("created_at desc")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.BusinessUnit != "" {
		q = q.Where("business_unit = ?", filter.BusinessUnit)
	}
	if filter.TableID != 0 {
		q = q.Where("table_id = ?", filter.TableID)
	}
	if filter.Since != nil {
		q = q.Where("created_at >= ?", *filter.Since)
	}
	err := q.Find(&orders).Error
	return orders, err
}

// ActiveByTable returns the newest order on the table that is neither
// completed nor cancelled.
func (r *orderRepository) ActiveByTable(tableID uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items", itemsInOrder).
		Where("table_id = ? AND status NOT IN ?", tableID,
			[]lifecycle.OrderStatus{lifecycle.OrderCompleted, lifecycle.OrderCancelled}).
		Order("id desc").
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) UpdateStatus(id uint, from, to lifecycle.OrderStatus, at time.Time) (bool, error) {
	values := map[string]interface{}{"status": to}
	if col := models.StatusTimestampColumn(to); col != "" {
		values[col] = at
	}
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *orderRepository) ReplaceItems(order *models.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
			"subtotal":         order.Subtotal,
			"customer_name":    order.CustomerName,
			"customer_mobile":  order.CustomerMobile,
			"discount_percent": order.DiscountPercent,
			"guest_count":      order.GuestCount,
		}).Error
		if err != nil {
			return err
		}

		keep := make([]uint, 0, len(order.Items))
		for i := range order.Items {
			order.Items[i].OrderID = order.ID
			if order.Items[i].ID != 0 {
				keep = append(keep, order.Items[i].ID)
			}
		}
		stale := tx.Where("order_id = ?", order.ID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := stale.Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}

		for i := range order.Items {
			if err := tx.Save(&order.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *orderRepository) SaveTotals(id uint, t billing.Totals) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"subtotal":         t.Subtotal,
		"discount_percent": t.DiscountPercentage,
		"discount_amount":  t.DiscountAmount,
		"gst_percent":      t.GSTPercentage,
		"gst_amount":       t.GSTAmount,
		"total":            t.Total,
	}).Error
}

func (r *orderRepository) Delete(id uint) error {
	res := r.db.Delete(&models.Order{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// NextOrderNumber returns PREFIX-YYYYMMDD-NNNN, counting soft-deleted orders
// so numbers are never reused within a day.
func (r *orderRepository) NextOrderNumber(prefix string, day time.Time) (string, error) {
	return nextNumber(r.db, &models.Order{}, "order_number", prefix, day, "%s-%s-%04d")
}

func itemsInOrder(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

func nextNumber(db *gorm.DB, model interface{}, column, prefix string, day time.Time, format string) (string, error) {
	dateStr := day.Format("20060102")
	var count int64
	err := db.Unscoped().Model(model).
		Where(column+" LIKE ?", fmt.Sprintf("%s-%s-%%", prefix, dateStr)).
		Count(&count).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(format, prefix, dateStr, count+1), nil
}

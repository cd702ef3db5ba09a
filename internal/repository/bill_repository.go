package repository

import (
	"time"

	"hospitality_pos/internal/billing"
	"hospitality_pos/internal/models"

	"gorm.io/gorm"
)

type BillFilter struct {
	BusinessUnit  billing.BusinessUnit
	PaymentStatus models.PaymentStatus
	Since         *time.Time
}

type BillRepository interface {
	Create(bill *models.Bill) error
	GetByID(id uint) (*models.Bill, error)
	GetByOrderID(orderID uint) (*models.Bill, error)
	List(filter BillFilter) ([]models.Bill, error)
	UpdatePaymentMethod(id uint, method models.PaymentMethod) error
	// MarkPaid flips a pending bill to paid and records the settlement in the
	// same transaction. It reports false when the bill was already paid.
	MarkPaid(id uint, method models.PaymentMethod, settlement *models.Settlement) (bool, error)
	Delete(id uint) error
	NextBillNumber(prefix string, day time.Time) (string, error)
}

type billRepository struct {
	db *gorm.DB
}

func NewBillRepository(db *gorm.DB) BillRepository {
	return &billRepository{db: db}
}

func (r *billRepository) Create(bill *models.Bill) error {
	return r.db.Create(bill).Error
}

func (r *billRepository) GetByID(id uint) (*models.Bill, error) {
	var bill models.Bill
	err := r.db.First(&bill, id).Error
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *billRepository) GetByOrderID(orderID uint) (*models.Bill, error) {
	var bill models.Bill
	err := r.db.Where("order_id = ?", orderID).First(&bill).Error
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *billRepository) List(filter BillFilter) ([]models.Bill, error) {
	var bills []models.Bill
	q := r.db.Order("created_at desc")
	if filter.BusinessUnit != "" {
		q = q.Where("business_unit = ?", filter.BusinessUnit)
	}
	if filter.PaymentStatus != "" {
		q = q.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.Since != nil {
		q = q.Where("created_at >= ?", *filter.Since)
	}
	err := q.Find(&bills).Error
	return bills, err
}

func (r *billRepository) UpdatePaymentMethod(id uint, method models.PaymentMethod) error {
	res := r.db.Model(&models.Bill{}).Where("id = ?", id).Update("payment_method", method)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *billRepository) MarkPaid(id uint, method models.PaymentMethod, settlement *models.Settlement) (bool, error) {
	paid := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Bill{}).
			Where("id = ? AND payment_status = ?", id, models.PaymentPending).
			Updates(map[string]interface{}{
				"payment_method": method,
				"payment_status": models.PaymentPaid,
				"paid_at":        settlement.SettledAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		settlement.BillID = id
		if err := tx.Create(settlement).Error; err != nil {
			return err
		}
		paid = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return paid, nil
}

func (r *billRepository) Delete(id uint) error {
	res := r.db.Delete(&models.Bill{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// NextBillNumber returns PREFIX-YYYYMMDD-NNNNN.
func (r *billRepository) NextBillNumber(prefix string, day time.Time) (string, error) {
	return nextNumber(r.db, &models.Bill{}, "bill_number", prefix, day, "%s-%s-%05d")
}

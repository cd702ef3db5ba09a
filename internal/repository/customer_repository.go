package repository

import (
	"hospitality_pos/internal/models"

	"gorm.io/gorm"
)

type CustomerRepository interface {
	GetByMobile(mobile string) (*models.Customer, error)
	Search(query string, limit int) ([]models.Customer, error)
	Save(customer *models.Customer) error
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) GetByMobile(mobile string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.Where("mobile = ?", mobile).First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// Search matches a mobile prefix or a name substring.
func (r *customerRepository) Search(query string, limit int) ([]models.Customer, error) {
	var customers []models.Customer
	q := r.db.Order("visit_count desc, name").Limit(limit)
	if query != "" {
		q = q.Where("mobile LIKE ? OR LOWER(name) LIKE LOWER(?)", query+"%", "%"+query+"%")
	}
	err := q.Find(&customers).Error
	return customers, err
}

func (r *customerRepository) Save(customer *models.Customer) error {
	return r.db.Save(customer).Error
}

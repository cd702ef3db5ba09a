package services

import (
	"context"
	"errors"
	"strings"

	"hospitality_pos/internal/billing"
	"hospitality_pos/internal/models"
	"hospitality_pos/internal/realtime"
	"hospitality_pos/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const customerSearchLimit = 20

// CustomerDiscount is the discount a customer is entitled to. Customer is nil
// for a walk-in.
type CustomerDiscount struct {
	Customer        *models.Customer `json:"customer"`
	Tier            billing.Tier     `json:"tier"`
	DiscountPercent float64          `json:"discount_percent"`
}

type CustomerService interface {
	SearchCustomers(query string) ([]models.Customer, error)
	GetCustomer(mobile string) (*models.Customer, error)
	ResolveDiscount(mobile string) (CustomerDiscount, error)
	// RecordVisit tallies a paid bill against the customer, creating the
	// record on first visit.
	RecordVisit(ctx context.Context, name, mobile string, total billing.Money) (*models.Customer, error)
}

type customerService struct {
	repo repository.CustomerRepository
	notifier
}

func NewCustomerService(repo repository.CustomerRepository, pub ChangePublisher, logger *zap.Logger) CustomerService {
	return &customerService{repo: repo, notifier: notifier{pub: pub, logger: logger}}
}

func (s *customerService) SearchCustomers(query string) ([]models.Customer, error) {
	return s.repo.Search(strings.TrimSpace(query), customerSearchLimit)
}

func (s *customerService) GetCustomer(mobile string) (*models.Customer, error) {
	customer, err := s.repo.GetByMobile(mobile)
	if err != nil {
		return nil, notFound(err, "customer", mobile)
	}
	return customer, nil
}

func (s *customerService) ResolveDiscount(mobile string) (CustomerDiscount, error) {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		tier, pct := billing.ResolveDiscount(nil)
		return CustomerDiscount{Tier: tier, DiscountPercent: pct}, nil
	}

	customer, err := s.repo.GetByMobile(mobile)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		customer = nil
	} else if err != nil {
		return CustomerDiscount{}, err
	}
	tier, pct := billing.ResolveDiscount(customer.Loyalty())
	return CustomerDiscount{Customer: customer, Tier: tier, DiscountPercent: pct}, nil
}

func (s *customerService) RecordVisit(ctx context.Context, name, mobile string, total billing.Money) (*models.Customer, error) {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return nil, invalid("customer mobile is required")
	}

	event := realtime.EventUpdate
	customer, err := s.repo.GetByMobile(mobile)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		customer = &models.Customer{Mobile: mobile, Tier: billing.TierRegular}
		event = realtime.EventInsert
	} else if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name != "" {
		customer.Name = name
	}
	customer.RecordVisit(total)

	if err := s.repo.Save(customer); err != nil {
		return nil, err
	}
	s.notify(ctx, realtime.CollectionCustomers, event, customer.ID, nil)
	return customer, nil
}

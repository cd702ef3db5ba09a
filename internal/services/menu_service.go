package services

import (
	"context"
	"strings"

	"hospitality_pos/internal/billing"
	"hospitality_pos/internal/cart"
	"hospitality_pos/internal/models"
	"hospitality_pos/internal/realtime"
	"hospitality_pos/internal/repository"

	"go.uber.org/zap"
)

type MenuService interface {
	ListMenuItems(unit billing.BusinessUnit, availableOnly bool) ([]models.MenuItem, error)
	GetMenuItem(id uint) (*models.MenuItem, error)
	CreateMenuItem(ctx context.Context, item *models.MenuItem) error
	UpdateMenuItem(ctx context.Context, item *models.MenuItem) error
}

type menuService struct {
	repo repository.MenuItemRepository
	notifier
}

func NewMenuService(repo repository.MenuItemRepository, pub ChangePublisher, logger *zap.Logger) MenuService {
	return &menuService{repo: repo, notifier: notifier{pub: pub, logger: logger}}
}

func (s *menuService) ListMenuItems(unit billing.BusinessUnit, availableOnly bool) ([]models.MenuItem, error) {
	if unit != "" && !unit.Valid() {
		return nil, invalid("unknown business unit %q", unit)
	}
	return s.repo.List(unit, availableOnly)
}

func (s *menuService) GetMenuItem(id uint) (*models.MenuItem, error) {
	item, err := s.repo.GetByID(id)
	if err != nil {
		return nil, notFound(err, "menu item", id)
	}
	return item, nil
}

func (s *menuService) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	if err := validateMenuItem(item); err != nil {
		return err
	}
	if err := s.repo.Create(item); err != nil {
		return err
	}
	s.notify(ctx, realtime.CollectionMenuItems, realtime.EventInsert, item.ID, nil)
	return nil
}

func (s *menuService) UpdateMenuItem(ctx context.Context, item *models.MenuItem) error {
	if _, err := s.GetMenuItem(item.ID); err != nil {
		return err
	}
	if err := validateMenuItem(item); err != nil {
		return err
	}
	if err := s.repo.Update(item); err != nil {
		return err
	}
	s.notify(ctx, realtime.CollectionMenuItems, realtime.EventUpdate, item.ID, nil)
	return nil
}

func validateMenuItem(item *models.MenuItem) error {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return invalid("name is required")
	}
	if item.Price <= 0 {
		return invalid("price must be positive")
	}
	if !item.BusinessUnit.Valid() {
		return invalid("unknown business unit %q", item.BusinessUnit)
	}
	for _, m := range []string{item.Measurement, item.BaseMeasurement} {
		if m == "" {
			continue
		}
		if _, err := cart.ParseMeasurement(m); err != nil {
			return invalid("%v", err)
		}
	}
	return nil
}

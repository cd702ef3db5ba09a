package services

import (
	"context"
	"errors"
	"strings"

	"hospitality_pos/internal/lifecycle"
	"hospitality_pos/internal/models"
	"hospitality_pos/internal/realtime"
	"hospitality_pos/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SessionCloser ends an open cart session; cart.Manager satisfies it.
type SessionCloser interface {
	Close(tableID uint, discard bool) bool
}

type TableService interface {
	ListTables() ([]models.Table, error)
	GetTable(id uint) (*models.Table, error)
	CreateTable(ctx context.Context, table *models.Table) error
	// ClearTable is the password-gated admin reset: it drops any open
	// session and draft, cancels the live order and frees the table.
	ClearTable(ctx context.Context, id uint, password string) error
}

type tableService struct {
	repo      repository.TableRepository
	orderRepo repository.OrderRepository
	draftRepo repository.RunningOrderRepository
	orders    OrderService
	settings  SettingsService
	sessions  SessionCloser
	notifier
}

func NewTableService(repo repository.TableRepository, orderRepo repository.OrderRepository, draftRepo repository.RunningOrderRepository, orders OrderService, settings SettingsService, sessions SessionCloser, pub ChangePublisher, logger *zap.Logger) TableService {
	return &tableService{
		repo:      repo,
		orderRepo: orderRepo,
		draftRepo: draftRepo,
		orders:    orders,
		settings:  settings,
		sessions:  sessions,
		notifier:  notifier{pub: pub, logger: logger},
	}
}

func (s *tableService) ListTables() ([]models.Table, error) {
	return s.repo.GetAll()
}

func (s *tableService) GetTable(id uint) (*models.Table, error) {
	table, err := s.repo.GetByID(id)
	if err != nil {
		return nil, notFound(err, "table", id)
	}
	return table, nil
}

func (s *tableService) CreateTable(ctx context.Context, table *models.Table) error {
	table.Number = strings.TrimSpace(table.Number)
	if table.Number == "" {
		return invalid("table number is required")
	}
	if !table.BusinessUnit.Valid() {
		return invalid("unknown business unit %q", table.BusinessUnit)
	}
	if table.Capacity < 0 {
		return invalid("capacity cannot be negative")
	}
	table.Status = models.TableAvailable
	table.CurrentOrderID = nil
	if err := s.repo.Create(table); err != nil {
		return err
	}
	s.notify(ctx, realtime.CollectionTables, realtime.EventInsert, table.ID, uintPtr(table.ID))
	return nil
}

func (s *tableService) ClearTable(ctx context.Context, id uint, password string) error {
	if err := s.settings.VerifyDeletePassword(password); err != nil {
		return err
	}
	table, err := s.GetTable(id)
	if err != nil {
		return err
	}

	s.sessions.Close(table.ID, true)
	if err := s.draftRepo.DeleteByTableID(table.ID); err != nil {
		return err
	}
	s.notify(ctx, realtime.CollectionRunningOrders, realtime.EventDelete, 0, uintPtr(table.ID))

	live, err := s.orderRepo.ActiveByTable(table.ID)
	switch {
	case err == nil:
		if _, err := s.orders.AdvanceOrder(ctx, live.ID, lifecycle.EventCancel); err != nil {
			return err
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	if err := s.repo.MarkAvailable(table.ID); err != nil {
		return notFound(err, "table", id)
	}
	s.notify(ctx, realtime.CollectionTables, realtime.EventUpdate, table.ID, uintPtr(table.ID))
	return nil
}

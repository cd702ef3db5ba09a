package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hospitality_pos/internal/billing"
	"hospitality_pos/internal/cart"
	"hospitality_pos/internal/lifecycle"
	"hospitality_pos/internal/models"
	"hospitality_pos/internal/realtime"
	"hospitality_pos/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const numberAttempts = 3

type SubmitRequest struct {
	Draft      cart.Draft
	OrderType  models.OrderType
	RoomNumber string
	GuestCount int
}

type OrderService interface {
	// SubmitDraft sends a table's cart to the kitchen. A table without a live
	// order gets a new one; otherwise the live order's items are reconciled
	// with the cart, keeping the status of lines that are still present.
	SubmitDraft(ctx context.Context, req SubmitRequest) (*models.Order, error)
	GetOrder(id uint) (*models.Order, error)
	ListOrders(filter repository.OrderFilter) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id uint, status lifecycle.OrderStatus) (*models.Order, error)
	AdvanceOrder(ctx context.Context, id uint, event lifecycle.Event) (*models.Order, error)
	UpdateItemStatus(ctx context.Context, orderID, itemID uint, status lifecycle.ItemStatus) (*models.OrderItem, error)
	// ResetOrder is the admin path back to pending; every item returns to
	// pending too.
	ResetOrder(ctx context.Context, id uint, password string) (*models.Order, error)
	DeleteOrder(ctx context.Context, id uint, password string) error
}

type orderService struct {
	orderRepo     repository.OrderRepository
	orderItemRepo repository.OrderItemRepository
	tableRepo     repository.TableRepository
	draftRepo     repository.RunningOrderRepository
	settings      SettingsService
	prefix        string
	now           func() time.Time
	notifier
}

func NewOrderService(orderRepo repository.OrderRepository, orderItemRepo repository.OrderItemRepository, tableRepo repository.TableRepository, draftRepo repository.RunningOrderRepository, settings SettingsService, prefix string, pub ChangePublisher, logger *zap.Logger) OrderService {
	return &orderService{
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		tableRepo:     tableRepo,
		draftRepo:     draftRepo,
		settings:      settings,
		prefix:        prefix,
		now:           time.Now,
		notifier:      notifier{pub: pub, logger: logger},
	}
}

func (s *orderService) SubmitDraft(ctx context.Context, req SubmitRequest) (*models.Order, error) {
	d := req.Draft
	if len(d.Lines) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrValidation, cart.ErrEmptyCart)
	}
	if err := validateDraft(d); err != nil {
		return nil, err
	}
	if req.OrderType == "" {
		req.OrderType = models.DineIn
	}
	if !req.OrderType.Valid() {
		return nil, invalid("unknown order type %q", req.OrderType)
	}
	if req.GuestCount < 0 {
		return nil, invalid("guest count cannot be negative")
	}

	table, err := s.tableRepo.GetByID(d.TableID)
	if err != nil {
		return nil, notFound(err, "table", d.TableID)
	}

	live, err := s.orderRepo.ActiveByTable(table.ID)
	var order *models.Order
	switch {
	case err == nil:
		order, err = s.reconcile(ctx, live, req)
	case errors.Is(err, gorm.ErrRecordNotFound):
		order, err = s.create(ctx, table, req)
	}
	if err != nil {
		return nil, err
	}

	if err := s.draftRepo.DeleteByTableID(table.ID); err != nil {
		s.logger.Warn("running order cleanup after submit failed",
			zap.Uint("table_id", table.ID), zap.Uint("order_id", order.ID), zap.Error(err))
	} else {
		s.notify(ctx, realtime.CollectionRunningOrders, realtime.EventDelete, 0, uintPtr(table.ID))
	}
	return order, nil
}

func (s *orderService) create(ctx context.Context, table *models.Table, req SubmitRequest) (*models.Order, error) {
	d := req.Draft
	items := make([]models.OrderItem, 0, len(d.Lines))
	for _, l := range d.Lines {
		items = append(items, orderItemFromLine(l))
	}

	var lastErr error
	for attempt := 0; attempt < numberAttempts; attempt++ {
		number, err := s.orderRepo.NextOrderNumber(s.prefix, s.now())
		if err != nil {
			return nil, err
		}
		order := &models.Order{
			OrderNumber:     number,
			BusinessUnit:    table.BusinessUnit,
			OrderType:       req.OrderType,
			TableID:         uintPtr(table.ID),
			RoomNumber:      req.RoomNumber,
			Status:          lifecycle.OrderPending,
			Subtotal:        subtotalOf(items),
			DiscountPercent: d.Customer.DiscountPercent,
			GuestCount:      req.GuestCount,
			CustomerName:    d.Customer.Name,
			CustomerMobile:  d.Customer.Mobile,
			Items:           items,
		}
		if lastErr = s.orderRepo.Create(order); lastErr != nil {
			s.logger.Debug("order create failed, retrying with a new number", zap.String("order_number", number), zap.Error(lastErr))
			continue
		}

		if err := s.tableRepo.MarkOccupied(table.ID, order.ID); err != nil {
			return nil, fmt.Errorf("order %s created but table %d not marked occupied: %w", order.OrderNumber, table.ID, err)
		}
		s.notify(ctx, realtime.CollectionOrders, realtime.EventInsert, order.ID, order.TableID)
		s.notify(ctx, realtime.CollectionTables, realtime.EventUpdate, table.ID, order.TableID)
		return order, nil
	}
	return nil, lastErr
}

func (s *orderService) reconcile(ctx context.Context, order *models.Order, req SubmitRequest) (*models.Order, error) {
	d := req.Draft
	existing := make(map[string]models.OrderItem, len(order.Items))
	for _, item := range order.Items {
		key := item.LineKey
		if key == "" {
			key = cart.ItemKey(item.MenuItemID)
		}
		existing[key] = item
	}

	items := make([]models.OrderItem, 0, len(d.Lines))
	for _, l := range d.Lines {
		item := orderItemFromLine(l)
		if prev, ok := existing[l.Key]; ok {
			item.ID = prev.ID
			item.Status = prev.Status
			item.CreatedAt = prev.CreatedAt
		}
		items = append(items, item)
	}

	order.Items = items
	order.Subtotal = subtotalOf(items)
	order.CustomerName = d.Customer.Name
	order.CustomerMobile = d.Customer.Mobile
	order.DiscountPercent = d.Customer.DiscountPercent
	if req.GuestCount > 0 {
		order.GuestCount = req.GuestCount
	}
	if err := s.orderRepo.ReplaceItems(order); err != nil {
		return nil, err
	}
	s.notify(ctx, realtime.CollectionOrders, realtime.EventUpdate, order.ID, order.TableID)
	return s.orderRepo.GetByID(order.ID)
}

func orderItemFromLine(l cart.Line) models.OrderItem {
	return models.OrderItem{
		MenuItemID:  l.MenuItemID,
		LineKey:     l.Key,
		Name:        l.Name,
		Price:       l.Price,
		Quantity:    l.Quantity,
		Measurement: l.Measurement,
		Status:      lifecycle.ItemPending,
	}
}

func subtotalOf(items []models.OrderItem) billing.Money {
	var total billing.Money
	for _, item := range items {
		total += item.Amount()
	}
	return total
}

func (s *orderService) GetOrder(id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, notFound(err, "order", id)
	}
	return order, nil
}

func (s *orderService) ListOrders(filter repository.OrderFilter) ([]models.Order, error) {
	if filter.Status != "" {
		if _, err := lifecycle.ParseOrderStatus(string(filter.Status)); err != nil {
			return nil, invalid("%v", err)
		}
	}
	return s.orderRepo.List(filter)
}

// UpdateOrderStatus moves the order to status when the lifecycle has an
// event leading there from the current status.
func (s *orderService) UpdateOrderStatus(ctx context.Context, id uint, status lifecycle.OrderStatus) (*models.Order, error) {
	order, err := s.GetOrder(id)
	if err != nil {
		return nil, err
	}
	event, err := lifecycle.EventFor(order.Status, status)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, order, event)
}

func (s *orderService) AdvanceOrder(ctx context.Context, id uint, event lifecycle.Event) (*models.Order, error) {
	order, err := s.GetOrder(id)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, order, event)
}

func (s *orderService) apply(ctx context.Context, order *models.Order, event lifecycle.Event) (*models.Order, error) {
	next, err := lifecycle.Transition(order.Status, event)
	if err != nil {
		return nil, err
	}
	ok, err := s.orderRepo.UpdateStatus(order.ID, order.Status, next, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("order %d is no longer %s: %w", order.ID, order.Status, ErrStatusConflict)
	}
	if event == lifecycle.EventReset {
		if err := s.orderItemRepo.ResetByOrderID(order.ID); err != nil {
			return nil, err
		}
	}
	if next.Terminal() {
		s.releaseTable(ctx, order)
	}

	s.notify(ctx, realtime.CollectionOrders, realtime.EventUpdate, order.ID, order.TableID)
	return s.GetOrder(order.ID)
}

// releaseTable frees the order's table if the table still points at it.
func (s *orderService) releaseTable(ctx context.Context, order *models.Order) {
	if order.TableID == nil {
		return
	}
	table, err := s.tableRepo.GetByID(*order.TableID)
	if err != nil {
		s.logger.Warn("table lookup on release failed", zap.Uint("order_id", order.ID), zap.Error(err))
		return
	}
	if table.CurrentOrderID == nil || *table.CurrentOrderID != order.ID {
		return
	}
	if err := s.tableRepo.MarkAvailable(table.ID); err != nil {
		s.logger.Warn("table release failed", zap.Uint("table_id", table.ID), zap.Error(err))
		return
	}
	s.notify(ctx, realtime.CollectionTables, realtime.EventUpdate, table.ID, order.TableID)
}

func (s *orderService) UpdateItemStatus(ctx context.Context, orderID, itemID uint, status lifecycle.ItemStatus) (*models.OrderItem, error) {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.Terminal() {
		return nil, fmt.Errorf("order %d is %s: %w", orderID, order.Status, lifecycle.ErrInvalidTransition)
	}
	item, err := s.orderItemRepo.GetByID(orderID, itemID)
	if err != nil {
		return nil, notFound(err, "order item", itemID)
	}
	event, err := lifecycle.ItemEventFor(item.Status, status)
	if err != nil {
		return nil, err
	}
	next, err := lifecycle.TransitionItem(item.Status, event)
	if err != nil {
		return nil, err
	}

	ok, err := s.orderItemRepo.UpdateStatus(orderID, itemID, item.Status, next)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("order item %d is no longer %s: %w", itemID, item.Status, ErrStatusConflict)
	}
	item.Status = next
	s.notify(ctx, realtime.CollectionOrders, realtime.EventUpdate, orderID, order.TableID)
	return item, nil
}

func (s *orderService) ResetOrder(ctx context.Context, id uint, password string) (*models.Order, error) {
	if err := s.settings.VerifyDeletePassword(password); err != nil {
		return nil, err
	}
	return s.AdvanceOrder(ctx, id, lifecycle.EventReset)
}

func (s *orderService) DeleteOrder(ctx context.Context, id uint, password string) error {
	if err := s.settings.VerifyDeletePassword(password); err != nil {
		return err
	}
	order, err := s.GetOrder(id)
	if err != nil {
		return err
	}
	if err := s.orderRepo.Delete(id); err != nil {
		return notFound(err, "order", id)
	}
	s.releaseTable(ctx, order)
	s.notify(ctx, realtime.CollectionOrders, realtime.EventDelete, id, order.TableID)
	return nil
}

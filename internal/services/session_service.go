package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hospitality_pos/internal/billing"
	"hospitality_pos/internal/cart"
	"hospitality_pos/internal/models"
	"hospitality_pos/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SessionView is what the API returns for an open session.
type SessionView struct {
	SessionID string            `json:"session_id"`
	TableID   uint              `json:"table_id"`
	Source    cart.ResumeSource `json:"source"`
	Version   int64             `json:"version"`
	Lines     []cart.Line       `json:"lines"`
	Customer  cart.Customer     `json:"customer"`
	Subtotal  billing.Money     `json:"subtotal"`
}

func viewOf(s *cart.Session) SessionView {
	d := s.Snapshot()
	return SessionView{
		SessionID: s.ID,
		TableID:   s.TableID,
		Source:    s.Source(),
		Version:   d.Version,
		Lines:     d.Lines,
		Customer:  d.Customer,
		Subtotal:  s.Subtotal(),
	}
}

type CustomerInput struct {
	Name            string
	Mobile          string
	DiscountPercent *float64
}

type SessionService interface {
	OpenSession(tableID uint) (SessionView, bool, error)
	GetSession(tableID uint) (SessionView, error)
	AddItem(tableID, menuItemID uint, measurement string) (SessionView, error)
	IncrementItem(tableID uint, key string) (SessionView, error)
	DecrementItem(tableID uint, key string) (SessionView, error)
	RemoveItem(tableID uint, key string) (SessionView, error)
	// SetCustomer attaches a customer. Without an explicit percent the
	// customer's tier discount applies.
	SetCustomer(tableID uint, in CustomerInput) (SessionView, error)
	Submit(ctx context.Context, tableID uint, req SubmitRequest) (*models.Order, error)
	// Settle submits any open cart, then bills and optionally settles the
	// table's live order.
	Settle(ctx context.Context, tableID uint, opts SettleOptions) (*models.Bill, bool, error)
	CloseSession(ctx context.Context, tableID uint, discard bool) error
}

type sessionService struct {
	manager   *cart.Manager
	menu      MenuService
	drafts    RunningOrderService
	orders    OrderService
	bills     BillingService
	customers CustomerService
	orderRepo repository.OrderRepository
	logger    *zap.Logger
}

func NewSessionService(manager *cart.Manager, menu MenuService, drafts RunningOrderService, orders OrderService, bills BillingService, customers CustomerService, orderRepo repository.OrderRepository, logger *zap.Logger) SessionService {
	return &sessionService{
		manager:   manager,
		menu:      menu,
		drafts:    drafts,
		orders:    orders,
		bills:     bills,
		customers: customers,
		orderRepo: orderRepo,
		logger:    logger,
	}
}

func (s *sessionService) OpenSession(tableID uint) (SessionView, bool, error) {
	sess, created, err := s.manager.Open(tableID, func() (cart.Draft, cart.ResumeSource, error) {
		return s.drafts.Resume(tableID)
	})
	if err != nil {
		return SessionView{}, false, err
	}
	if created {
		s.logger.Info("session opened",
			zap.Uint("table_id", tableID),
			zap.String("session_id", sess.ID),
			zap.String("source", string(sess.Source())))
	}
	return viewOf(sess), created, nil
}

func (s *sessionService) session(tableID uint) (*cart.Session, error) {
	sess, ok := s.manager.Get(tableID)
	if !ok {
		return nil, fmt.Errorf("session for table %d: %w", tableID, ErrNotFound)
	}
	return sess, nil
}

func (s *sessionService) GetSession(tableID uint) (SessionView, error) {
	sess, err := s.session(tableID)
	if err != nil {
		return SessionView{}, err
	}
	return viewOf(sess), nil
}

func (s *sessionService) AddItem(tableID, menuItemID uint, measurement string) (SessionView, error) {
	sess, err := s.session(tableID)
	if err != nil {
		return SessionView{}, err
	}
	item, err := s.menu.GetMenuItem(menuItemID)
	if err != nil {
		return SessionView{}, err
	}
	if !item.Available {
		return SessionView{}, invalid("%s is not available", item.Name)
	}

	// A measured item added without a measurement is refused so the caller
	// can ask which one.
	if measurement == "" {
		_, err = sess.AddItem(item.CartItem())
	} else {
		_, err = sess.AddVariant(item.CartItem(), measurement)
	}
	if err != nil {
		return SessionView{}, cartError(err)
	}
	return viewOf(sess), nil
}

func (s *sessionService) edit(tableID uint, fn func(*cart.Session) error) (SessionView, error) {
	sess, err := s.session(tableID)
	if err != nil {
		return SessionView{}, err
	}
	if err := fn(sess); err != nil {
		return SessionView{}, cartError(err)
	}
	return viewOf(sess), nil
}

func (s *sessionService) IncrementItem(tableID uint, key string) (SessionView, error) {
	return s.edit(tableID, func(sess *cart.Session) error { return sess.Increment(key) })
}

func (s *sessionService) DecrementItem(tableID uint, key string) (SessionView, error) {
	return s.edit(tableID, func(sess *cart.Session) error { return sess.Decrement(key) })
}

func (s *sessionService) RemoveItem(tableID uint, key string) (SessionView, error) {
	return s.edit(tableID, func(sess *cart.Session) error { return sess.Remove(key) })
}

func (s *sessionService) SetCustomer(tableID uint, in CustomerInput) (SessionView, error) {
	sess, err := s.session(tableID)
	if err != nil {
		return SessionView{}, err
	}
	in.Mobile = strings.TrimSpace(in.Mobile)
	if in.DiscountPercent != nil && (*in.DiscountPercent < 0 || *in.DiscountPercent > 100) {
		return SessionView{}, invalid("discount percentage must be between 0 and 100")
	}

	cust := cart.Customer{Name: strings.TrimSpace(in.Name), Mobile: in.Mobile}
	if in.DiscountPercent != nil {
		cust.DiscountPercent = *in.DiscountPercent
	} else {
		discount, err := s.customers.ResolveDiscount(in.Mobile)
		if err != nil {
			return SessionView{}, err
		}
		cust.DiscountPercent = discount.DiscountPercent
		if cust.Name == "" && discount.Customer != nil {
			cust.Name = discount.Customer.Name
		}
	}
	sess.SetCustomer(cust)
	return viewOf(sess), nil
}

func (s *sessionService) Submit(ctx context.Context, tableID uint, req SubmitRequest) (*models.Order, error) {
	sess, err := s.session(tableID)
	if err != nil {
		return nil, err
	}
	if sess.IsEmpty() {
		return nil, fmt.Errorf("%w: %w", ErrValidation, cart.ErrEmptyCart)
	}

	req.Draft = sess.Snapshot()
	order, err := s.orders.SubmitDraft(ctx, req)
	if err != nil {
		return nil, err
	}
	sess.Clear()
	s.manager.Close(tableID, true)
	return order, nil
}

func (s *sessionService) Settle(ctx context.Context, tableID uint, opts SettleOptions) (*models.Bill, bool, error) {
	if sess, ok := s.manager.Get(tableID); ok && !sess.IsEmpty() {
		if _, err := s.Submit(ctx, tableID, SubmitRequest{}); err != nil {
			return nil, false, err
		}
	} else if ok {
		s.manager.Close(tableID, true)
	}

	order, err := s.orderRepo.ActiveByTable(tableID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("%w: %w", ErrValidation, cart.ErrEmptyCart)
	} else if err != nil {
		return nil, false, err
	}
	return s.bills.SettleOrder(ctx, order.ID, opts)
}

func (s *sessionService) CloseSession(ctx context.Context, tableID uint, discard bool) error {
	if !s.manager.Close(tableID, discard) && !discard {
		return fmt.Errorf("session for table %d: %w", tableID, ErrNotFound)
	}
	if discard {
		return s.drafts.DiscardRunningOrder(ctx, tableID)
	}
	return nil
}

// cartError marks cart rejections as validation failures.
func cartError(err error) error {
	switch {
	case errors.Is(err, cart.ErrLineNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, cart.ErrMeasurementRequired), errors.Is(err, cart.ErrBadMeasurement), errors.Is(err, cart.ErrEmptyCart):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return err
}

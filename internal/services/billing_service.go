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

const receiptTimeout = 10 * time.Second

// BillOptions adjusts how an order is billed. DiscountPercent, when set,
// replaces the percent carried on the order.
type BillOptions struct {
	DiscountType    billing.DiscountType
	DiscountPercent *float64
	DiscountAmount  billing.Money
	NightlyRate     billing.Money
	Complimentary   bool
	PaymentMethod   models.PaymentMethod
}

type SettleOptions struct {
	BillOptions
	MarkPaid bool
}

type PreviewRequest struct {
	BusinessUnit   billing.BusinessUnit
	Subtotal       billing.Money
	CustomerMobile string
	BillOptions
}

type Preview struct {
	billing.Totals
	Tier billing.Tier `json:"tier"`
}

type BillingService interface {
	// EnsureBillForOrder returns the order's bill, creating it when there is
	// none. The bool reports whether this call created it.
	EnsureBillForOrder(ctx context.Context, orderID uint, opts BillOptions) (*models.Bill, bool, error)
	// SettleOrder bills the order, optionally takes payment, and removes the
	// table's running order. Draft cleanup failures are logged only.
	SettleOrder(ctx context.Context, orderID uint, opts SettleOptions) (*models.Bill, bool, error)
	GetBill(id uint) (*models.Bill, error)
	ListBills(filter repository.BillFilter) ([]models.Bill, error)
	UpdatePayment(ctx context.Context, id uint, method models.PaymentMethod, status models.PaymentStatus) (*models.Bill, error)
	DeleteBill(ctx context.Context, id uint, password string) error
	Preview(ctx context.Context, req PreviewRequest) (Preview, error)
}

type billingService struct {
	billRepo  repository.BillRepository
	orderRepo repository.OrderRepository
	draftRepo repository.RunningOrderRepository
	orders    OrderService
	customers CustomerService
	settings  SettingsService
	receipts  ReceiptSender
	prefix    string
	now       func() time.Time
	notifier
}

func NewBillingService(billRepo repository.BillRepository, orderRepo repository.OrderRepository, draftRepo repository.RunningOrderRepository, orders OrderService, customers CustomerService, settings SettingsService, receipts ReceiptSender, prefix string, pub ChangePublisher, logger *zap.Logger) BillingService {
	return &billingService{
		billRepo:  billRepo,
		orderRepo: orderRepo,
		draftRepo: draftRepo,
		orders:    orders,
		customers: customers,
		settings:  settings,
		receipts:  receipts,
		prefix:    prefix,
		now:       time.Now,
		notifier:  notifier{pub: pub, logger: logger},
	}
}

func validateBillOptions(opts *BillOptions) error {
	switch opts.DiscountType {
	case "":
		opts.DiscountType = billing.DiscountPercentage
	case billing.DiscountPercentage, billing.DiscountFixed:
	default:
		return invalid("unknown discount type %q", opts.DiscountType)
	}
	if opts.DiscountPercent != nil && (*opts.DiscountPercent < 0 || *opts.DiscountPercent > 100) {
		return invalid("discount percentage must be between 0 and 100")
	}
	if opts.DiscountAmount < 0 {
		return invalid("discount amount cannot be negative")
	}
	if opts.NightlyRate < 0 {
		return invalid("nightly rate cannot be negative")
	}
	if opts.PaymentMethod == "" {
		opts.PaymentMethod = models.PayCash
	}
	if !opts.PaymentMethod.Valid() {
		return invalid("unknown payment method %q", opts.PaymentMethod)
	}
	return nil
}

// totals computes a bill for subtotal in unit. GST comes from the policy
// snapshot; a hotel bill with a nightly rate uses the room tariff slab.
func (s *billingService) totals(ctx context.Context, unit billing.BusinessUnit, subtotal billing.Money, discountPct float64, opts BillOptions) (billing.Totals, error) {
	policy, err := s.settings.GSTPolicy(ctx)
	if err != nil {
		return billing.Totals{}, err
	}
	enabled, gstPct := policy.Resolve(unit)
	if enabled && unit == billing.UnitHotel && opts.NightlyRate > 0 {
		gstPct = billing.HotelRoomGSTPercent(opts.NightlyRate)
	}
	if opts.DiscountPercent != nil {
		discountPct = *opts.DiscountPercent
	}
	return billing.Calculate(billing.Input{
		Subtotal:        subtotal,
		DiscountType:    opts.DiscountType,
		DiscountPercent: discountPct,
		DiscountAmount:  opts.DiscountAmount,
		GSTPercent:      gstPct,
		Complimentary:   opts.Complimentary,
	}), nil
}

func (s *billingService) EnsureBillForOrder(ctx context.Context, orderID uint, opts BillOptions) (*models.Bill, bool, error) {
	if err := validateBillOptions(&opts); err != nil {
		return nil, false, err
	}

	existing, err := s.billRepo.GetByOrderID(orderID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, false, notFound(err, "order", orderID)
	}
	if order.Status == lifecycle.OrderCancelled {
		return nil, false, invalid("order %s is cancelled", order.OrderNumber)
	}
	if len(order.Items) == 0 {
		return nil, false, fmt.Errorf("%w: %w", ErrValidation, cart.ErrEmptyCart)
	}

	totals, err := s.totals(ctx, order.BusinessUnit, subtotalOf(order.Items), order.DiscountPercent, opts)
	if err != nil {
		return nil, false, err
	}

	var lastErr error
	for attempt := 0; attempt < numberAttempts; attempt++ {
		number, err := s.billRepo.NextBillNumber(s.prefix, s.now())
		if err != nil {
			return nil, false, err
		}
		bill := &models.Bill{
			BillNumber:     number,
			OrderID:        order.ID,
			BusinessUnit:   order.BusinessUnit,
			Source:         order.OrderType,
			TableID:        order.TableID,
			CustomerName:   order.CustomerName,
			CustomerMobile: order.CustomerMobile,
			PaymentMethod:  opts.PaymentMethod,
			PaymentStatus:  models.PaymentPending,
		}
		bill.ApplyTotals(totals)

		lastErr = s.billRepo.Create(bill)
		if lastErr == nil {
			s.afterBilled(ctx, order, bill, totals)
			return bill, true, nil
		}
		// Another settlement may have billed the order first.
		if existing, err := s.billRepo.GetByOrderID(orderID); err == nil {
			return existing, false, nil
		}
		s.logger.Debug("bill create failed, retrying with a new number", zap.String("bill_number", number), zap.Error(lastErr))
	}
	return nil, false, lastErr
}

func (s *billingService) afterBilled(ctx context.Context, order *models.Order, bill *models.Bill, totals billing.Totals) {
	if err := s.orderRepo.SaveTotals(order.ID, totals); err != nil {
		s.logger.Warn("storing order totals failed", zap.Uint("order_id", order.ID), zap.Error(err))
	}
	if order.Status != lifecycle.OrderBillRequested && order.Status != lifecycle.OrderCompleted {
		if _, err := s.orders.AdvanceOrder(ctx, order.ID, lifecycle.EventRequestBill); err != nil {
			s.logger.Warn("moving order to bill requested failed", zap.Uint("order_id", order.ID), zap.Error(err))
		}
	}
	s.notify(ctx, realtime.CollectionBills, realtime.EventInsert, bill.ID, bill.TableID)
}

func (s *billingService) SettleOrder(ctx context.Context, orderID uint, opts SettleOptions) (*models.Bill, bool, error) {
	bill, created, err := s.EnsureBillForOrder(ctx, orderID, opts.BillOptions)
	if err != nil {
		return nil, false, err
	}

	if opts.MarkPaid && bill.PaymentStatus != models.PaymentPaid {
		bill, err = s.markPaid(ctx, bill, opts.PaymentMethod)
		if err != nil {
			return nil, created, err
		}
	}

	if bill.TableID != nil {
		if err := s.draftRepo.DeleteByTableID(*bill.TableID); err != nil {
			s.logger.Warn("running order cleanup after settlement failed",
				zap.Uint("table_id", *bill.TableID), zap.Uint("bill_id", bill.ID), zap.Error(err))
		} else {
			s.notify(ctx, realtime.CollectionRunningOrders, realtime.EventDelete, 0, bill.TableID)
		}
	}
	return bill, created, nil
}

// markPaid flips the bill to paid once and runs the follow-ups: settlement
// record, customer tally, order completion and receipt. Follow-up failures
// are logged; the paid bill stands.
func (s *billingService) markPaid(ctx context.Context, bill *models.Bill, method models.PaymentMethod) (*models.Bill, error) {
	if method == "" {
		method = bill.PaymentMethod
	}
	settlement := &models.Settlement{
		OrderID:       bill.OrderID,
		TableID:       bill.TableID,
		Amount:        bill.Total,
		PaymentMethod: method,
		SettledAt:     s.now(),
	}
	ok, err := s.billRepo.MarkPaid(bill.ID, method, settlement)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.GetBill(bill.ID)
	}

	paid, err := s.GetBill(bill.ID)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, realtime.CollectionBills, realtime.EventUpdate, paid.ID, paid.TableID)
	s.notify(ctx, realtime.CollectionSettlements, realtime.EventInsert, settlement.ID, paid.TableID)

	if paid.CustomerMobile != "" {
		if _, err := s.customers.RecordVisit(ctx, paid.CustomerName, paid.CustomerMobile, paid.Total); err != nil {
			s.logger.Warn("customer tally failed", zap.String("mobile", paid.CustomerMobile), zap.Error(err))
		}
	}
	s.completeOrder(ctx, paid.OrderID)
	s.sendReceipt(ctx, paid)
	return paid, nil
}

// completeOrder walks the order to completed, through bill requested when it
// cannot complete directly.
func (s *billingService) completeOrder(ctx context.Context, orderID uint) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		s.logger.Warn("order lookup on completion failed", zap.Uint("order_id", orderID), zap.Error(err))
		return
	}
	if order.Status.Terminal() {
		return
	}
	if _, err := lifecycle.Transition(order.Status, lifecycle.EventComplete); err != nil {
		if _, err := s.orders.AdvanceOrder(ctx, orderID, lifecycle.EventRequestBill); err != nil {
			s.logger.Warn("moving order to bill requested failed", zap.Uint("order_id", orderID), zap.Error(err))
			return
		}
	}
	if _, err := s.orders.AdvanceOrder(ctx, orderID, lifecycle.EventComplete); err != nil {
		s.logger.Warn("completing order failed", zap.Uint("order_id", orderID), zap.Error(err))
	}
}

func (s *billingService) sendReceipt(ctx context.Context, bill *models.Bill) {
	if s.receipts == nil || bill.CustomerMobile == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, receiptTimeout)
	defer cancel()
	if err := s.receipts.SendBillReceipt(ctx, bill); err != nil {
		s.logger.Warn("bill receipt not delivered", zap.String("bill_number", bill.BillNumber), zap.Error(err))
	}
}

func (s *billingService) GetBill(id uint) (*models.Bill, error) {
	bill, err := s.billRepo.GetByID(id)
	if err != nil {
		return nil, notFound(err, "bill", id)
	}
	return bill, nil
}

func (s *billingService) ListBills(filter repository.BillFilter) ([]models.Bill, error) {
	if filter.BusinessUnit != "" && !filter.BusinessUnit.Valid() {
		return nil, invalid("unknown business unit %q", filter.BusinessUnit)
	}
	if filter.PaymentStatus != "" && !filter.PaymentStatus.Valid() {
		return nil, invalid("unknown payment status %q", filter.PaymentStatus)
	}
	return s.billRepo.List(filter)
}

func (s *billingService) UpdatePayment(ctx context.Context, id uint, method models.PaymentMethod, status models.PaymentStatus) (*models.Bill, error) {
	if method != "" && !method.Valid() {
		return nil, invalid("unknown payment method %q", method)
	}
	if status != "" && !status.Valid() {
		return nil, invalid("unknown payment status %q", status)
	}

	bill, err := s.GetBill(id)
	if err != nil {
		return nil, err
	}

	switch {
	case status == models.PaymentPaid && bill.PaymentStatus == models.PaymentPending:
		return s.markPaid(ctx, bill, method)
	case status == models.PaymentPending && bill.PaymentStatus == models.PaymentPaid:
		return nil, invalid("bill %s is already paid", bill.BillNumber)
	case method != "" && method != bill.PaymentMethod:
		if err := s.billRepo.UpdatePaymentMethod(id, method); err != nil {
			return nil, notFound(err, "bill", id)
		}
		s.notify(ctx, realtime.CollectionBills, realtime.EventUpdate, id, bill.TableID)
		return s.GetBill(id)
	}
	return bill, nil
}

func (s *billingService) DeleteBill(ctx context.Context, id uint, password string) error {
	if err := s.settings.VerifyDeletePassword(password); err != nil {
		return err
	}
	bill, err := s.GetBill(id)
	if err != nil {
		return err
	}
	if err := s.billRepo.Delete(id); err != nil {
		return notFound(err, "bill", id)
	}
	s.notify(ctx, realtime.CollectionBills, realtime.EventDelete, id, bill.TableID)
	return nil
}

func (s *billingService) Preview(ctx context.Context, req PreviewRequest) (Preview, error) {
	if !req.BusinessUnit.Valid() {
		return Preview{}, invalid("unknown business unit %q", req.BusinessUnit)
	}
	if req.Subtotal < 0 {
		return Preview{}, invalid("subtotal cannot be negative")
	}
	if err := validateBillOptions(&req.BillOptions); err != nil {
		return Preview{}, err
	}

	discount, err := s.customers.ResolveDiscount(req.CustomerMobile)
	if err != nil {
		return Preview{}, err
	}
	totals, err := s.totals(ctx, req.BusinessUnit, req.Subtotal, discount.DiscountPercent, req.BillOptions)
	if err != nil {
		return Preview{}, err
	}
	return Preview{Totals: totals, Tier: discount.Tier}, nil
}

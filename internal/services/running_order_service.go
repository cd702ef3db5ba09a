package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hospitality_pos/internal/cart"
	"hospitality_pos/internal/models"
	"hospitality_pos/internal/realtime"
	"hospitality_pos/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RunningOrderService stores per-table drafts. It is the cart.DraftSaver
// behind session autosave.
type RunningOrderService interface {
	SaveDraft(ctx context.Context, d cart.Draft) (int64, error)
	GetRunningOrder(tableID uint) (*models.RunningOrder, error)
	DiscardRunningOrder(ctx context.Context, tableID uint) error
	// Resume picks what a newly opened session on the table starts with: a
	// running order that has items, else the items of the table's live order
	// when the table is occupied, else an empty cart.
	Resume(tableID uint) (cart.Draft, cart.ResumeSource, error)
}

type runningOrderService struct {
	repo      repository.RunningOrderRepository
	orderRepo repository.OrderRepository
	tableRepo repository.TableRepository
	menuRepo  repository.MenuItemRepository
	notifier
}

func NewRunningOrderService(repo repository.RunningOrderRepository, orderRepo repository.OrderRepository, tableRepo repository.TableRepository, menuRepo repository.MenuItemRepository, pub ChangePublisher, logger *zap.Logger) RunningOrderService {
	return &runningOrderService{
		repo:      repo,
		orderRepo: orderRepo,
		tableRepo: tableRepo,
		menuRepo:  menuRepo,
		notifier:  notifier{pub: pub, logger: logger},
	}
}

// SaveDraft validates d, re-prices its lines from the menu and stores it.
func (s *runningOrderService) SaveDraft(ctx context.Context, d cart.Draft) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	d, err := s.normalizeDraft(d)
	if err != nil {
		return 0, err
	}

	row, err := models.RunningOrderFromDraft(d)
	if err != nil {
		return 0, fmt.Errorf("failed to encode draft: %w", err)
	}
	ok, err := s.repo.Save(&row, d.Version)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("table %d at version %d: %w", d.TableID, d.Version, ErrStaleDraft)
	}

	event := realtime.EventUpdate
	if row.Version == 1 {
		event = realtime.EventInsert
	}
	s.notify(ctx, realtime.CollectionRunningOrders, event, row.ID, uintPtr(d.TableID))
	return row.Version, nil
}

// normalizeDraft rejects malformed drafts and rebuilds every line from its
// menu item, so names, prices and keys never come from the client. Lines that
// end up on the same key are merged.
func (s *runningOrderService) normalizeDraft(d cart.Draft) (cart.Draft, error) {
	if err := validateDraft(d); err != nil {
		return cart.Draft{}, err
	}
	if _, err := s.tableRepo.GetByID(d.TableID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return cart.Draft{}, invalid("unknown table %d", d.TableID)
		}
		return cart.Draft{}, err
	}

	lines := make([]cart.Line, 0, len(d.Lines))
	index := make(map[string]int, len(d.Lines))
	for _, l := range d.Lines {
		item, err := s.menuRepo.GetByID(l.MenuItemID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return cart.Draft{}, invalid("unknown menu item %d", l.MenuItemID)
		} else if err != nil {
			return cart.Draft{}, err
		}

		var line cart.Line
		if l.Measurement == "" {
			line, err = cart.New().AddItem(item.CartItem())
		} else {
			line, err = cart.New().AddVariant(item.CartItem(), l.Measurement)
		}
		if err != nil {
			return cart.Draft{}, cartError(err)
		}
		line.Quantity = l.Quantity

		if i, ok := index[line.Key]; ok {
			lines[i].Quantity += line.Quantity
			continue
		}
		index[line.Key] = len(lines)
		lines = append(lines, line)
	}

	d.Lines = lines
	d.Customer.Name = strings.TrimSpace(d.Customer.Name)
	d.Customer.Mobile = strings.TrimSpace(d.Customer.Mobile)
	return d, nil
}

// validateDraft checks the fields of d that do not need the store.
func validateDraft(d cart.Draft) error {
	if d.TableID == 0 {
		return invalid("table is required")
	}
	if d.Version < 0 {
		return invalid("version cannot be negative")
	}
	if p := d.Customer.DiscountPercent; p < 0 || p > 100 {
		return invalid("discount percentage must be between 0 and 100")
	}
	for _, l := range d.Lines {
		if l.MenuItemID == 0 {
			return invalid("line %q has no menu item", l.Key)
		}
		if l.Quantity < 1 {
			return invalid("quantity of line %q must be at least 1", l.Key)
		}
		if l.Price < 0 {
			return invalid("price of line %q cannot be negative", l.Key)
		}
	}
	return nil
}

func (s *runningOrderService) GetRunningOrder(tableID uint) (*models.RunningOrder, error) {
	ro, err := s.repo.GetByTableID(tableID)
	if err != nil {
		return nil, notFound(err, "running order for table", tableID)
	}
	return ro, nil
}

func (s *runningOrderService) DiscardRunningOrder(ctx context.Context, tableID uint) error {
	if err := s.repo.DeleteByTableID(tableID); err != nil {
		return err
	}
	s.notify(ctx, realtime.CollectionRunningOrders, realtime.EventDelete, 0, uintPtr(tableID))
	return nil
}

func (s *runningOrderService) Resume(tableID uint) (cart.Draft, cart.ResumeSource, error) {
	empty := cart.Draft{TableID: tableID}

	ro, err := s.repo.GetByTableID(tableID)
	switch {
	case err == nil:
		d, err := ro.Draft()
		if err != nil {
			return cart.Draft{}, "", fmt.Errorf("failed to decode running order for table %d: %w", tableID, err)
		}
		if len(d.Lines) > 0 {
			return d, cart.FromRunningOrder, nil
		}
		// An emptied draft still holds the version the next save must match.
		empty.Version = ro.Version
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return cart.Draft{}, "", err
	}

	table, err := s.tableRepo.GetByID(tableID)
	if err != nil {
		return cart.Draft{}, "", notFound(err, "table", tableID)
	}
	if table.Status != models.TableOccupied {
		return empty, cart.FromEmpty, nil
	}

	order, err := s.orderRepo.ActiveByTable(tableID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return empty, cart.FromEmpty, nil
	} else if err != nil {
		return cart.Draft{}, "", err
	}
	if len(order.Items) == 0 {
		return empty, cart.FromEmpty, nil
	}

	d := empty
	d.Lines = linesFromOrder(order)
	d.Customer = cart.Customer{
		Name:            order.CustomerName,
		Mobile:          order.CustomerMobile,
		DiscountPercent: order.DiscountPercent,
	}
	return d, cart.FromOrder, nil
}

func linesFromOrder(order *models.Order) []cart.Line {
	lines := make([]cart.Line, 0, len(order.Items))
	for _, item := range order.Items {
		key := item.LineKey
		if key == "" {
			key = cart.ItemKey(item.MenuItemID)
		}
		lines = append(lines, cart.Line{
			Key:         key,
			MenuItemID:  item.MenuItemID,
			Name:        item.Name,
			Price:       item.Price,
			Quantity:    item.Quantity,
			Measurement: item.Measurement,
		})
	}
	return lines
}

package services

import (
	"context"
	"errors"
	"testing"

	"hospitality_pos/internal/billing"
	"hospitality_pos/internal/cart"
	"hospitality_pos/internal/models"
)

func TestSession_EditFlow(t *testing.T) {
	e := newTestEnv(t)
	table := e.table(t, "B1", billing.UnitBar)
	beer := e.menuItem(t, "Draught", 40000, billing.UnitBar, "", "")
	whisky := e.menuItem(t, "Single Malt", 90000, billing.UnitBar, "30ml", "60ml")

	view, created, err := e.sessions.OpenSession(table.ID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !created || view.Source != cart.FromEmpty || view.SessionID == "" {
		t.Fatalf("expected a fresh empty session, got created=%v %+v", created, view)
	}
	if _, created, _ := e.sessions.OpenSession(table.ID); created {
		t.Error("expected the open session reused")
	}

	if _, err := e.sessions.AddItem(table.ID, whisky.ID, ""); !errors.Is(err, ErrValidation) || !errors.Is(err, cart.ErrMeasurementRequired) {
		t.Errorf("expected measurement required, got %v", err)
	}
	if _, err := e.sessions.AddItem(table.ID, whisky.ID, "a dash"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected bad measurement rejected, got %v", err)
	}

	e.sessions.AddItem(table.ID, whisky.ID, "30ml")
	e.sessions.AddItem(table.ID, beer.ID, "")
	view, err = e.sessions.IncrementItem(table.ID, cart.ItemKey(beer.ID))
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if len(view.Lines) != 2 || view.Subtotal != 45000+80000 {
		t.Errorf("expected two lines totalling 1250.00, got %+v %s", view.Lines, view.Subtotal)
	}

	view, err = e.sessions.DecrementItem(table.ID, cart.ItemKey(beer.ID))
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if view.Subtotal != 85000 {
		t.Errorf("expected 850.00, got %s", view.Subtotal)
	}
	view, err = e.sessions.RemoveItem(table.ID, cart.VariantKey(whisky.ID, "30ml"))
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(view.Lines) != 1 {
		t.Errorf("expected one line left, got %+v", view.Lines)
	}
	if _, err := e.sessions.RemoveItem(table.ID, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown line, got %v", err)
	}
}

func TestSession_UnavailableItemRejected(t *testing.T) {
	e := newTestEnv(t)
	table := e.table(t, "C1", billing.UnitCafe)
	item := e.menuItem(t, "Seasonal Tart", 22000, billing.UnitCafe, "", "")
	item.Available = false
	if err := e.menu.UpdateMenuItem(context.Background(), item); err != nil {
		t.Fatalf("update: %v", err)
	}

	e.sessions.OpenSession(table.ID)
	if _, err := e.sessions.AddItem(table.ID, item.ID, ""); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if _, err := e.sessions.AddItem(table.ID, 999, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown item, got %v", err)
	}
}

func TestSession_NotOpen(t *testing.T) {
	e := newTestEnv(t)
	if _, err := e.sessions.GetSession(7); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := e.sessions.AddItem(7, 1, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := e.sessions.CloseSession(context.Background(), 7, false); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSession_SetCustomerResolvesTier(t *testing.T) {
	e := newTestEnv(t)
	table := e.table(t, "C1", billing.UnitCafe)
	gold := &models.Customer{Name: "Meera", Mobile: "9800000003", VisitCount: 30, Tier: billing.TierGold}
	if err := e.custRepo.Save(gold); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	e.sessions.OpenSession(table.ID)

	view, err := e.sessions.SetCustomer(table.ID, CustomerInput{Mobile: " 9800000003 "})
	if err != nil {
		t.Fatalf("set customer: %v", err)
	}
	if view.Customer.DiscountPercent != 10 || view.Customer.Name != "Meera" {
		t.Errorf("expected gold discount and stored name, got %+v", view.Customer)
	}

	view, err = e.sessions.SetCustomer(table.ID, CustomerInput{Name: "Walk-in", Mobile: "9800000009"})
	if err != nil {
		t.Fatalf("set walk-in: %v", err)
	}
	if view.Customer.DiscountPercent != 0 {
		t.Errorf("expected no discount for a new customer, got %v", view.Customer.DiscountPercent)
	}

	view, _ = e.sessions.SetCustomer(table.ID, CustomerInput{Mobile: "9800000003", DiscountPercent: pct(20)})
	if view.Customer.DiscountPercent != 20 {
		t.Errorf("expected explicit percent to win, got %v", view.Customer.DiscountPercent)
	}
	if _, err := e.sessions.SetCustomer(table.ID, CustomerInput{DiscountPercent: pct(150)}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestSession_SubmitEmptyCart(t *testing.T) {
	e := newTestEnv(t)
	table := e.table(t, "C1", billing.UnitCafe)
	e.sessions.OpenSession(table.ID)

	_, err := e.sessions.Submit(context.Background(), table.ID, SubmitRequest{})
	if !errors.Is(err, ErrValidation) || !errors.Is(err, cart.ErrEmptyCart) {
		t.Fatalf("expected empty cart rejected, got %v", err)
	}
	if _, err := e.sessions.GetSession(table.ID); err != nil {
		t.Errorf("expected session left open after a rejected submit, got %v", err)
	}
}

func TestSession_CloseKeepsDraft(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	table := e.table(t, "C1", billing.UnitCafe)
	coffee := e.menuItem(t, "Cappuccino", 18000, billing.UnitCafe, "", "")

	e.sessions.OpenSession(table.ID)
	e.sessions.AddItem(table.ID, coffee.ID, "")
	if err := e.sessions.CloseSession(ctx, table.ID, false); err != nil {
		t.Fatalf("close: %v", err)
	}

	view, _, err := e.sessions.OpenSession(table.ID)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if view.Source != cart.FromRunningOrder || len(view.Lines) != 1 || view.Version != 1 {
		t.Errorf("expected the flushed draft resumed at v1, got %+v", view)
	}

	if err := e.sessions.CloseSession(ctx, table.ID, true); err != nil {
		t.Fatalf("discard: %v", err)
	}
	view, _, _ = e.sessions.OpenSession(table.ID)
	if view.Source != cart.FromEmpty {
		t.Errorf("expected empty after discard, got %s", view.Source)
	}
}

func TestSession_KeepsSavingAfterDraftDiscarded(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	table := e.table(t, "C1", billing.UnitCafe)
	coffee := e.menuItem(t, "Cappuccino", 18000, billing.UnitCafe, "", "")

	e.sessions.OpenSession(table.ID)
	e.sessions.AddItem(table.ID, coffee.ID, "")
	sess, ok := e.manager.Get(table.ID)
	if !ok {
		t.Fatal("expected an open session")
	}
	sess.Flush()
	if sess.Version() != 1 {
		t.Fatalf("expected version 1 after the first save, got %d", sess.Version())
	}

	if err := e.drafts.DiscardRunningOrder(ctx, table.ID); err != nil {
		t.Fatalf("discard: %v", err)
	}
	e.sessions.AddItem(table.ID, coffee.ID, "")
	sess.Flush()

	ro, err := e.drafts.GetRunningOrder(table.ID)
	if err != nil {
		t.Fatalf("expected the open session to write the draft again, got %v", err)
	}
	lines, _ := ro.Lines()
	if len(lines) != 1 || lines[0].Quantity != 2 {
		t.Errorf("expected 2 coffees stored, got %+v", lines)
	}
	if sess.Version() != ro.Version {
		t.Errorf("expected session at the stored version %d, got %d", ro.Version, sess.Version())
	}

	// Later edits keep persisting.
	e.sessions.AddItem(table.ID, coffee.ID, "")
	sess.Flush()
	ro, _ = e.drafts.GetRunningOrder(table.ID)
	if lines, _ := ro.Lines(); len(lines) != 1 || lines[0].Quantity != 3 {
		t.Errorf("expected 3 coffees stored, got %+v", lines)
	}
}

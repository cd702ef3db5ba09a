package repository

import (
	"errors"
	"testing"

	"hospitality_pos/internal/cart"
	"hospitality_pos/internal/models"

	"gorm.io/gorm"
)

func draftRow(t *testing.T, tableID uint, qty int) *models.RunningOrder {
	t.Helper()
	ro, err := models.RunningOrderFromDraft(cart.Draft{
		TableID:  tableID,
		Lines:    []cart.Line{{Key: "1", MenuItemID: 1, Name: "Cappuccino", Price: 18000, Quantity: qty}},
		Customer: cart.Customer{Name: "Asha", Mobile: "9800000001"},
	})
	if err != nil {
		t.Fatalf("draft row: %v", err)
	}
	return &ro
}

func TestRunningOrderSave_VersionedWrites(t *testing.T) {
	repo := NewRunningOrderRepository(newTestDB(t))

	first := draftRow(t, 3, 1)
	ok, err := repo.Save(first, 0)
	if err != nil || !ok {
		t.Fatalf("expected first save to succeed, got ok=%v err=%v", ok, err)
	}
	if first.Version != 1 {
		t.Errorf("expected version 1, got %d", first.Version)
	}

	second := draftRow(t, 3, 2)
	ok, err = repo.Save(second, 1)
	if err != nil || !ok {
		t.Fatalf("expected versioned save to succeed, got ok=%v err=%v", ok, err)
	}
	if second.Version != 2 {
		t.Errorf("expected version 2, got %d", second.Version)
	}

	stale := draftRow(t, 3, 9)
	ok, err = repo.Save(stale, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected stale write to be rejected")
	}

	stored, err := repo.GetByTableID(3)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	lines, err := stored.Lines()
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if stored.Version != 2 || len(lines) != 1 || lines[0].Quantity != 2 {
		t.Errorf("expected v2 with quantity 2, got v%d %+v", stored.Version, lines)
	}
}

func TestRunningOrderSave_CreateWhenRowExists(t *testing.T) {
	repo := NewRunningOrderRepository(newTestDB(t))
	if ok, err := repo.Save(draftRow(t, 5, 1), 0); err != nil || !ok {
		t.Fatalf("seed: ok=%v err=%v", ok, err)
	}

	ok, err := repo.Save(draftRow(t, 5, 4), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected a second fresh session to lose against the stored draft")
	}
}

func TestRunningOrderDelete(t *testing.T) {
	repo := NewRunningOrderRepository(newTestDB(t))
	repo.Save(draftRow(t, 8, 1), 0)

	if err := repo.DeleteByTableID(8); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByTableID(8); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestRunningOrderSave_RecreatesDeletedDraft(t *testing.T) {
	repo := NewRunningOrderRepository(newTestDB(t))
	first := draftRow(t, 8, 1)
	repo.Save(first, 0)
	repo.Save(draftRow(t, 8, 2), first.Version)
	if err := repo.DeleteByTableID(8); err != nil {
		t.Fatalf("delete: %v", err)
	}

	again := draftRow(t, 8, 3)
	ok, err := repo.Save(again, 2)
	if err != nil || !ok {
		t.Fatalf("expected the holder of a deleted draft to recreate it, got ok=%v err=%v", ok, err)
	}
	if again.Version != 1 {
		t.Errorf("expected version 1, got %d", again.Version)
	}

	// Once recreated, the old version is stale again.
	ok, err = repo.Save(draftRow(t, 8, 4), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected a write at the pre-delete version to be rejected after recreation")
	}
}

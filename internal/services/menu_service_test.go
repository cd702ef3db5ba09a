package services

import (
	"context"
	"errors"
	"testing"

	"hospitality_pos/internal/billing"
	"hospitality_pos/internal/models"
)

func TestCreateMenuItem_Validation(t *testing.T) {
	e := newTestEnv(t)
	tests := []models.MenuItem{
		{Name: "", Price: 100, BusinessUnit: billing.UnitCafe},
		{Name: "Tea", Price: 0, BusinessUnit: billing.UnitCafe},
		{Name: "Tea", Price: 100, BusinessUnit: "spa"},
		{Name: "Rum", Price: 100, BusinessUnit: billing.UnitBar, Measurement: "a shot"},
	}
	for _, tt := range tests {
		item := tt
		if err := e.menu.CreateMenuItem(context.Background(), &item); !errors.Is(err, ErrValidation) {
			t.Errorf("%+v: expected ErrValidation, got %v", tt, err)
		}
	}
}

func TestListMenuItems(t *testing.T) {
	e := newTestEnv(t)
	e.menuItem(t, "Cappuccino", 18000, billing.UnitCafe, "", "")
	tart := e.menuItem(t, "Seasonal Tart", 22000, billing.UnitCafe, "", "")
	e.menuItem(t, "Draught", 40000, billing.UnitBar, "", "")

	tart.Available = false
	if err := e.menu.UpdateMenuItem(context.Background(), tart); err != nil {
		t.Fatalf("update: %v", err)
	}

	all, err := e.menu.ListMenuItems(billing.UnitCafe, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 cafe items, got %d", len(all))
	}
	available, _ := e.menu.ListMenuItems(billing.UnitCafe, true)
	if len(available) != 1 || available[0].Name != "Cappuccino" {
		t.Errorf("expected only Cappuccino available, got %+v", available)
	}
	if _, err := e.menu.ListMenuItems("spa", false); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for unknown unit, got %v", err)
	}

	missing := &models.MenuItem{ID: 999, Name: "Ghost", Price: 100, BusinessUnit: billing.UnitCafe}
	if err := e.menu.UpdateMenuItem(context.Background(), missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

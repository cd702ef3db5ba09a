package services

import (
	"context"
	"errors"
	"testing"

	"hospitality_pos/internal/billing"
	"hospitality_pos/internal/models"
	"hospitality_pos/internal/realtime"
)

func TestResolveDiscount(t *testing.T) {
	e := newTestEnv(t)
	custom := 12.5
	seed := []*models.Customer{
		{Name: "Silver", Mobile: "9800000010", VisitCount: 10},
		{Name: "Override", Mobile: "9800000011", VisitCount: 60, CustomDiscountPercent: &custom},
	}
	for _, c := range seed {
		if err := e.custRepo.Save(c); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	tests := []struct {
		mobile string
		tier   billing.Tier
		pct    float64
	}{
		{"", billing.TierRegular, 0},
		{"9899999999", billing.TierRegular, 0},
		{"9800000010", billing.TierSilver, 5},
		{"9800000011", billing.TierPlatinum, 12.5},
	}
	for _, tt := range tests {
		got, err := e.customers.ResolveDiscount(tt.mobile)
		if err != nil {
			t.Fatalf("%q: %v", tt.mobile, err)
		}
		if got.Tier != tt.tier || got.DiscountPercent != tt.pct {
			t.Errorf("%q: expected %s %v, got %s %v", tt.mobile, tt.tier, tt.pct, got.Tier, got.DiscountPercent)
		}
	}
}

func TestRecordVisit(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	c, err := e.customers.RecordVisit(ctx, "Asha", "9800000001", 1200000)
	if err != nil {
		t.Fatalf("first visit: %v", err)
	}
	if c.VisitCount != 1 || c.Tier != billing.TierSilver {
		t.Errorf("expected silver on a 12000 spend, got %d %s", c.VisitCount, c.Tier)
	}

	c, err = e.customers.RecordVisit(ctx, "", "9800000001", 1400000)
	if err != nil {
		t.Fatalf("second visit: %v", err)
	}
	if c.Name != "Asha" || c.VisitCount != 2 || c.TotalSpent != 2600000 || c.Tier != billing.TierGold {
		t.Errorf("expected gold with name kept, got %+v", c)
	}
	if e.pub.count(realtime.CollectionCustomers, realtime.EventInsert) != 1 || e.pub.count(realtime.CollectionCustomers, realtime.EventUpdate) != 1 {
		t.Errorf("expected one insert and one update notification, got %+v", e.pub.changes)
	}

	if _, err := e.customers.RecordVisit(ctx, "Nobody", " ", 100); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation without a mobile, got %v", err)
	}
}

func TestSearchCustomers(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.customers.RecordVisit(ctx, "Asha Rao", "9800000001", 100)
	e.customers.RecordVisit(ctx, "Ravi", "9700000002", 100)

	got, err := e.customers.SearchCustomers(" asha ")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].Mobile != "9800000001" {
		t.Errorf("expected Asha, got %+v", got)
	}
	if _, err := e.customers.GetCustomer("0000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

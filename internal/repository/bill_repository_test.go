package repository

import (
	"testing"
	"time"

	"hospitality_pos/internal/billing"
	"hospitality_pos/internal/models"
)

func newBill(number string, orderID uint) *models.Bill {
	return &models.Bill{
		BillNumber:    number,
		OrderID:       orderID,
		BusinessUnit:  billing.UnitCafe,
		Source:        models.DineIn,
		Subtotal:      100000,
		Total:         94500,
		PaymentMethod: models.PayCash,
		PaymentStatus: models.PaymentPending,
	}
}

func TestBillCreate_OnePerOrder(t *testing.T) {
	repo := NewBillRepository(newTestDB(t))

	first := newBill("BILL-20260101-00001", 7)
	if err := repo.Create(first); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(newBill("BILL-20260101-00002", 7)); err == nil {
		t.Fatal("expected a second live bill for the same order to be rejected")
	}

	if err := repo.Delete(first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Create(newBill("BILL-20260101-00003", 7)); err != nil {
		t.Errorf("expected re-billing after soft delete, got %v", err)
	}

	got, err := repo.GetByOrderID(7)
	if err != nil {
		t.Fatalf("get by order: %v", err)
	}
	if got.BillNumber != "BILL-20260101-00003" {
		t.Errorf("expected the live bill, got %s", got.BillNumber)
	}
}

func TestBillMarkPaid_Once(t *testing.T) {
	db := newTestDB(t)
	repo := NewBillRepository(db)
	bill := newBill("BILL-20260101-00001", 3)
	repo.Create(bill)

	at := time.Now()
	ok, err := repo.MarkPaid(bill.ID, models.PayUPI, &models.Settlement{OrderID: 3, Amount: bill.Total, PaymentMethod: models.PayUPI, SettledAt: at})
	if err != nil || !ok {
		t.Fatalf("expected first payment to apply, got ok=%v err=%v", ok, err)
	}
	ok, err = repo.MarkPaid(bill.ID, models.PayCash, &models.Settlement{OrderID: 3, Amount: bill.Total, PaymentMethod: models.PayCash, SettledAt: at})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected a paid bill not to be paid twice")
	}

	got, _ := repo.GetByID(bill.ID)
	if got.PaymentStatus != models.PaymentPaid || got.PaymentMethod != models.PayUPI {
		t.Errorf("expected paid by upi, got %s by %s", got.PaymentStatus, got.PaymentMethod)
	}

	var count int64
	db.Model(&models.Settlement{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 settlement, got %d", count)
	}
}

func TestNextBillNumber(t *testing.T) {
	repo := NewBillRepository(newTestDB(t))
	day := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	repo.Create(newBill("BILL-20261015-00001", 1))

	got, err := repo.NextBillNumber("BILL", day)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if got != "BILL-20261015-00002" {
		t.Errorf("expected BILL-20261015-00002, got %s", got)
	}
}

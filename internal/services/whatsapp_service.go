package services

import (
	"context"
	"fmt"
	"strings"

	"hospitality_pos/internal/models"
	"hospitality_pos/pkg/whatsapp"
)

type MessageSender interface {
	SendTextMessage(ctx context.Context, phone, message string) error
}

// ReceiptSender delivers a bill receipt to the customer.
type ReceiptSender interface {
	SendBillReceipt(ctx context.Context, bill *models.Bill) error
}

type whatsappService struct {
	client    MessageSender
	venueName string
}

func NewWhatsAppService(client *whatsapp.Client, venueName string) ReceiptSender {
	return newReceiptSender(client, venueName)
}

func newReceiptSender(client MessageSender, venueName string) *whatsappService {
	return &whatsappService{client: client, venueName: venueName}
}

func (s *whatsappService) SendBillReceipt(ctx context.Context, bill *models.Bill) error {
	if strings.TrimSpace(bill.CustomerMobile) == "" {
		return nil
	}
	return s.client.SendTextMessage(ctx, bill.CustomerMobile, FormatReceipt(s.venueName, bill))
}

// FormatReceipt renders the plain-text receipt sent after payment.
func FormatReceipt(venue string, bill *models.Bill) string {
	var b strings.Builder
	if venue != "" {
		fmt.Fprintf(&b, "*%s*\n", venue)
	}
	fmt.Fprintf(&b, "Bill %s\n", bill.BillNumber)
	if bill.CustomerName != "" {
		fmt.Fprintf(&b, "Guest: %s\n", bill.CustomerName)
	}
	fmt.Fprintf(&b, "Subtotal: Rs %s\n", bill.Subtotal)
	if bill.DiscountAmount > 0 {
		fmt.Fprintf(&b, "Discount (%g%%): -Rs %s\n", bill.DiscountPercent, bill.DiscountAmount)
	}
	if bill.GSTAmount > 0 {
		fmt.Fprintf(&b, "GST (%g%%): Rs %s\n", bill.GSTPercent, bill.GSTAmount)
	}
	if bill.Complimentary {
		b.WriteString("Complimentary\n")
	}
	fmt.Fprintf(&b, "Total: Rs %s\n", bill.Total)
	fmt.Fprintf(&b, "Paid by %s. Thank you for visiting!", bill.PaymentMethod)
	return b.String()
}

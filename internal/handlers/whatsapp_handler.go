package handlers

import (
	"context"
	"net/http"
	"time"

	"hospitality_pos/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const receiptSendTimeout = 10 * time.Second

// WhatsAppHandler serves manual receipt delivery. Receipts for paid bills go
// out automatically; this resends one on request.
type WhatsAppHandler struct {
	receipts       services.ReceiptSender
	billingService services.BillingService
	logger         *zap.Logger
}

func NewWhatsAppHandler(receipts services.ReceiptSender, billingService services.BillingService, logger *zap.Logger) *WhatsAppHandler {
	return &WhatsAppHandler{
		receipts:       receipts,
		billingService: billingService,
		logger:         logger,
	}
}

func (h *WhatsAppHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/bills/:id/receipt", h.SendReceipt)
}

func (h *WhatsAppHandler) SendReceipt(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if h.receipts == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "WhatsApp receipts are disabled"})
		return
	}

	bill, err := h.billingService.GetBill(id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if bill.CustomerMobile == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bill has no customer mobile"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), receiptSendTimeout)
	defer cancel()
	if err := h.receipts.SendBillReceipt(ctx, bill); err != nil {
		h.logger.Warn("receipt resend failed", zap.String("bill_number", bill.BillNumber), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send message"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "bill_number": bill.BillNumber})
}

package handlers

import (
	"net/http"

	"hospitality_pos/internal/billing"
	"hospitality_pos/internal/models"
	"hospitality_pos/internal/repository"
	"hospitality_pos/internal/services"

	"github.com/gin-gonic/gin"
)

// EnsureBill bills an order. Asking again returns the existing bill with
// created=false.
func (h *APIHandler) EnsureBill(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		billOptionsRequest
		MarkPaid bool `json:"mark_paid"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c)
			return
		}
	}

	bill, created, err := h.billingService.SettleOrder(c.Request.Context(), id, services.SettleOptions{
		BillOptions: req.options(),
		MarkPaid:    req.MarkPaid,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"bill": bill, "created": created})
}

func (h *APIHandler) ListBills(c *gin.Context) {
	since, ok := sinceQuery(c)
	if !ok {
		return
	}
	bills, err := h.billingService.ListBills(repository.BillFilter{
		BusinessUnit:  billing.BusinessUnit(c.Query("unit")),
		PaymentStatus: models.PaymentStatus(c.Query("payment_status")),
		Since:         since,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bills": bills})
}

func (h *APIHandler) GetBill(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	bill, err := h.billingService.GetBill(id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

func (h *APIHandler) UpdateBillPayment(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		PaymentMethod models.PaymentMethod `json:"payment_method"`
		PaymentStatus models.PaymentStatus `json:"payment_status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	bill, err := h.billingService.UpdatePayment(c.Request.Context(), id, req.PaymentMethod, req.PaymentStatus)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

func (h *APIHandler) DeleteBill(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	if err := h.billingService.DeleteBill(c.Request.Context(), id, req.Password); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": "deleted"})
}

func (h *APIHandler) PreviewBill(c *gin.Context) {
	var req struct {
		billOptionsRequest
		BusinessUnit   billing.BusinessUnit `json:"business_unit" binding:"required"`
		Subtotal       billing.Money        `json:"subtotal"`
		CustomerMobile string               `json:"customer_mobile"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	preview, err := h.billingService.Preview(c.Request.Context(), services.PreviewRequest{
		BusinessUnit:   req.BusinessUnit,
		Subtotal:       req.Subtotal,
		CustomerMobile: req.CustomerMobile,
		BillOptions:    req.options(),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

package handlers

import (
	"net/http"

	"hospitality_pos/internal/billing"
	"hospitality_pos/internal/cart"
	"hospitality_pos/internal/models"
	"hospitality_pos/internal/services"

	"github.com/gin-gonic/gin"
)

type billOptionsRequest struct {
	DiscountType    billing.DiscountType `json:"discount_type"`
	DiscountPercent *float64             `json:"discount_percentage"`
	DiscountAmount  billing.Money        `json:"discount_amount"`
	NightlyRate     billing.Money        `json:"nightly_rate"`
	Complimentary   bool                 `json:"complimentary"`
	PaymentMethod   models.PaymentMethod `json:"payment_method"`
}

func (r billOptionsRequest) options() services.BillOptions {
	return services.BillOptions{
		DiscountType:    r.DiscountType,
		DiscountPercent: r.DiscountPercent,
		DiscountAmount:  r.DiscountAmount,
		NightlyRate:     r.NightlyRate,
		Complimentary:   r.Complimentary,
		PaymentMethod:   r.PaymentMethod,
	}
}

func (h *APIHandler) OpenSession(c *gin.Context) {
	tableID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	view, created, err := h.sessionService.OpenSession(tableID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, view)
}

func (h *APIHandler) GetSession(c *gin.Context) {
	tableID, ok := uintParam(c, "table_id")
	if !ok {
		return
	}
	view, err := h.sessionService.GetSession(tableID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *APIHandler) AddSessionItem(c *gin.Context) {
	tableID, ok := uintParam(c, "table_id")
	if !ok {
		return
	}
	var req struct {
		MenuItemID  uint   `json:"menu_item_id" binding:"required"`
		Measurement string `json:"measurement"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	view, err := h.sessionService.AddItem(tableID, req.MenuItemID, req.Measurement)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *APIHandler) IncrementSessionItem(c *gin.Context) {
	h.editSessionLine(c, h.sessionService.IncrementItem)
}

func (h *APIHandler) DecrementSessionItem(c *gin.Context) {
	h.editSessionLine(c, h.sessionService.DecrementItem)
}

func (h *APIHandler) RemoveSessionItem(c *gin.Context) {
	h.editSessionLine(c, h.sessionService.RemoveItem)
}

func (h *APIHandler) editSessionLine(c *gin.Context, edit func(tableID uint, key string) (services.SessionView, error)) {
	tableID, ok := uintParam(c, "table_id")
	if !ok {
		return
	}
	view, err := edit(tableID, c.Param("key"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *APIHandler) SetSessionCustomer(c *gin.Context) {
	tableID, ok := uintParam(c, "table_id")
	if !ok {
		return
	}
	var req struct {
		Name            string   `json:"customer_name"`
		Mobile          string   `json:"customer_mobile"`
		DiscountPercent *float64 `json:"discount_percent"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	view, err := h.sessionService.SetCustomer(tableID, services.CustomerInput{
		Name:            req.Name,
		Mobile:          req.Mobile,
		DiscountPercent: req.DiscountPercent,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *APIHandler) SubmitSession(c *gin.Context) {
	tableID, ok := uintParam(c, "table_id")
	if !ok {
		return
	}
	var req struct {
		OrderType  models.OrderType `json:"order_type"`
		RoomNumber string           `json:"room_number"`
		GuestCount int              `json:"guest_count"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c)
			return
		}
	}

	order, err := h.sessionService.Submit(c.Request.Context(), tableID, services.SubmitRequest{
		OrderType:  req.OrderType,
		RoomNumber: req.RoomNumber,
		GuestCount: req.GuestCount,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *APIHandler) SettleSession(c *gin.Context) {
	tableID, ok := uintParam(c, "table_id")
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

	bill, created, err := h.sessionService.Settle(c.Request.Context(), tableID, services.SettleOptions{
		BillOptions: req.options(),
		MarkPaid:    req.MarkPaid,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bill": bill, "created": created})
}

func (h *APIHandler) CloseSession(c *gin.Context) {
	tableID, ok := uintParam(c, "table_id")
	if !ok {
		return
	}
	discard := c.Query("discard") == "true"
	if err := h.sessionService.CloseSession(c.Request.Context(), tableID, discard); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"table_id": tableID, "status": "closed", "discarded": discard})
}

func (h *APIHandler) GetRunningOrder(c *gin.Context) {
	tableID, ok := uintParam(c, "table_id")
	if !ok {
		return
	}
	ro, err := h.runningOrderService.GetRunningOrder(tableID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ro)
}

// SaveRunningOrder writes a draft from a client that keeps its own cart. The
// version is the one the client last read; 0 creates the draft.
func (h *APIHandler) SaveRunningOrder(c *gin.Context) {
	tableID, ok := uintParam(c, "table_id")
	if !ok {
		return
	}
	var req struct {
		Items    []cart.Line   `json:"items"`
		Customer cart.Customer `json:"customer"`
		Version  int64         `json:"version"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	version, err := h.runningOrderService.SaveDraft(c.Request.Context(), cart.Draft{
		TableID:  tableID,
		Lines:    req.Items,
		Customer: req.Customer,
		Version:  req.Version,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"table_id": tableID, "version": version})
}

func (h *APIHandler) DiscardRunningOrder(c *gin.Context) {
	tableID, ok := uintParam(c, "table_id")
	if !ok {
		return
	}
	// Discarding also ends the table's open session so it cannot write the
	// draft back.
	if err := h.sessionService.CloseSession(c.Request.Context(), tableID, true); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"table_id": tableID, "status": "deleted"})
}

package handlers

import (
	"net/http"
	"strconv"
	"time"

	"hospitality_pos/internal/billing"
	"hospitality_pos/internal/lifecycle"
	"hospitality_pos/internal/repository"

	"github.com/gin-gonic/gin"
)

// sinceQuery reads an optional RFC 3339 or YYYY-MM-DD "since" parameter.
func sinceQuery(c *gin.Context) (*time.Time, bool) {
	raw := c.Query("since")
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return &t, true
		}
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid since"})
	return nil, false
}

func (h *APIHandler) ListOrders(c *gin.Context) {
	since, ok := sinceQuery(c)
	if !ok {
		return
	}
	filter := repository.OrderFilter{
		Status:       lifecycle.OrderStatus(c.Query("status")),
		BusinessUnit: billing.BusinessUnit(c.Query("unit")),
		Since:        since,
	}
	if raw := c.Query("table_id"); raw != "" {
		tableID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid table_id"})
			return
		}
		filter.TableID = uint(tableID)
	}

	orders, err := h.orderService.ListOrders(filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *APIHandler) GetOrder(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.GetOrder(id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *APIHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	status, err := lifecycle.ParseOrderStatus(req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), id, status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *APIHandler) UpdateOrderItemStatus(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := uintParam(c, "item_id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	status, err := lifecycle.ParseItemStatus(req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}

	item, err := h.orderService.UpdateItemStatus(c.Request.Context(), id, itemID, status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *APIHandler) ResetOrder(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	order, err := h.orderService.ResetOrder(c.Request.Context(), id, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *APIHandler) DeleteOrder(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	if err := h.orderService.DeleteOrder(c.Request.Context(), id, req.Password); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": "deleted"})
}

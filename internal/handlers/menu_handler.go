package handlers

import (
	"net/http"

	"hospitality_pos/internal/billing"
	"hospitality_pos/internal/models"

	"github.com/gin-gonic/gin"
)

type menuItemRequest struct {
	Name            string               `json:"name" binding:"required"`
	Category        string               `json:"category"`
	Price           billing.Money        `json:"price"`
	BusinessUnit    billing.BusinessUnit `json:"business_unit" binding:"required"`
	Available       *bool                `json:"available"`
	Measurement     string               `json:"measurement"`
	BaseMeasurement string               `json:"base_measurement"`
}

func (r menuItemRequest) apply(item *models.MenuItem) {
	item.Name = r.Name
	item.Category = r.Category
	item.Price = r.Price
	item.BusinessUnit = r.BusinessUnit
	item.Measurement = r.Measurement
	item.BaseMeasurement = r.BaseMeasurement
	if r.Available != nil {
		item.Available = *r.Available
	}
}

func (h *APIHandler) ListMenuItems(c *gin.Context) {
	unit := billing.BusinessUnit(c.Query("unit"))
	availableOnly := c.Query("available") == "true"

	items, err := h.menuService.ListMenuItems(unit, availableOnly)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"menu_items": items})
}

func (h *APIHandler) CreateMenuItem(c *gin.Context) {
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	item := &models.MenuItem{Available: true}
	req.apply(item)
	if err := h.menuService.CreateMenuItem(c.Request.Context(), item); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *APIHandler) UpdateMenuItem(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	item, err := h.menuService.GetMenuItem(id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	req.apply(item)
	if err := h.menuService.UpdateMenuItem(c.Request.Context(), item); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

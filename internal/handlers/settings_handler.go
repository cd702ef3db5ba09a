package handlers

import (
	"net/http"

	"hospitality_pos/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *APIHandler) SearchCustomers(c *gin.Context) {
	customers, err := h.customerService.SearchCustomers(c.Query("q"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

func (h *APIHandler) GetCustomerDiscount(c *gin.Context) {
	discount, err := h.customerService.ResolveDiscount(c.Param("mobile"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, discount)
}

func (h *APIHandler) GetGSTSettings(c *gin.Context) {
	settings, err := h.settingsService.GetGSTSettings(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *APIHandler) UpdateGSTSettings(c *gin.Context) {
	var req services.GSTUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	settings, err := h.settingsService.UpdateGSTSettings(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

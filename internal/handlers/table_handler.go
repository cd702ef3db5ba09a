package handlers

import (
	"net/http"

	"hospitality_pos/internal/billing"
	"hospitality_pos/internal/models"

	"github.com/gin-gonic/gin"
)

type passwordRequest struct {
	Password string `json:"password"`
}

func (h *APIHandler) ListTables(c *gin.Context) {
	tables, err := h.tableService.ListTables()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tables": tables})
}

func (h *APIHandler) CreateTable(c *gin.Context) {
	var req struct {
		Number       string               `json:"number" binding:"required"`
		BusinessUnit billing.BusinessUnit `json:"business_unit" binding:"required"`
		Capacity     int                  `json:"capacity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	table := &models.Table{Number: req.Number, BusinessUnit: req.BusinessUnit, Capacity: req.Capacity}
	if err := h.tableService.CreateTable(c.Request.Context(), table); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, table)
}

func (h *APIHandler) ClearTable(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	if err := h.tableService.ClearTable(c.Request.Context(), id, req.Password); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"table_id": id, "status": models.TableAvailable})
}

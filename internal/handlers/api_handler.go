package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"hospitality_pos/internal/cart"
	"hospitality_pos/internal/lifecycle"
	"hospitality_pos/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type APIHandler struct {
	menuService         services.MenuService
	tableService        services.TableService
	sessionService      services.SessionService
	runningOrderService services.RunningOrderService
	orderService        services.OrderService
	billingService      services.BillingService
	customerService     services.CustomerService
	settingsService     services.SettingsService
	logger              *zap.Logger
}

func NewAPIHandler(
	menuService services.MenuService,
	tableService services.TableService,
	sessionService services.SessionService,
	runningOrderService services.RunningOrderService,
	orderService services.OrderService,
	billingService services.BillingService,
	customerService services.CustomerService,
	settingsService services.SettingsService,
	logger *zap.Logger,
) *APIHandler {
	return &APIHandler{
		menuService:         menuService,
		tableService:        tableService,
		sessionService:      sessionService,
		runningOrderService: runningOrderService,
		orderService:        orderService,
		billingService:      billingService,
		customerService:     customerService,
		settingsService:     settingsService,
		logger:              logger,
	}
}

// RegisterRoutes mounts the POS API under api.
func (h *APIHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/menu-items", h.ListMenuItems)
	api.POST("/menu-items", h.CreateMenuItem)
	api.PUT("/menu-items/:id", h.UpdateMenuItem)

	api.GET("/tables", h.ListTables)
	api.POST("/tables", h.CreateTable)
	api.POST("/tables/:id/clear", h.ClearTable)
	api.POST("/tables/:id/session", h.OpenSession)

	sessions := api.Group("/sessions/:table_id")
	{
		sessions.GET("", h.GetSession)
		sessions.DELETE("", h.CloseSession)
		sessions.POST("/items", h.AddSessionItem)
		sessions.POST("/items/:key/increment", h.IncrementSessionItem)
		sessions.POST("/items/:key/decrement", h.DecrementSessionItem)
		sessions.DELETE("/items/:key", h.RemoveSessionItem)
		sessions.PUT("/customer", h.SetSessionCustomer)
		sessions.POST("/submit", h.SubmitSession)
		sessions.POST("/settle", h.SettleSession)
	}

	api.GET("/running-orders/:table_id", h.GetRunningOrder)
	api.PUT("/running-orders/:table_id", h.SaveRunningOrder)
	api.DELETE("/running-orders/:table_id", h.DiscardRunningOrder)

	api.GET("/orders", h.ListOrders)
	api.GET("/orders/:id", h.GetOrder)
	api.PUT("/orders/:id/status", h.UpdateOrderStatus)
	api.PUT("/orders/:id/items/:item_id/status", h.UpdateOrderItemStatus)
	api.POST("/orders/:id/reset", h.ResetOrder)
	api.DELETE("/orders/:id", h.DeleteOrder)
	api.POST("/orders/:id/bill", h.EnsureBill)

	api.GET("/bills", h.ListBills)
	api.GET("/bills/:id", h.GetBill)
	api.PUT("/bills/:id/payment", h.UpdateBillPayment)
	api.DELETE("/bills/:id", h.DeleteBill)

	api.GET("/customers", h.SearchCustomers)
	api.GET("/customers/:mobile/discount", h.GetCustomerDiscount)

	api.GET("/settings/gst", h.GetGSTSettings)
	api.PUT("/settings/gst", h.UpdateGSTSettings)
	api.POST("/billing/preview", h.PreviewBill)
}

func (h *APIHandler) respondError(c *gin.Context, err error) {
	writeError(c, h.logger, err)
}

// writeError maps service errors onto status codes.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, cart.ErrEmptyCart),
		errors.Is(err, cart.ErrMeasurementRequired),
		errors.Is(err, cart.ErrBadMeasurement),
		errors.Is(err, lifecycle.ErrUnknownStatus):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrWrongPassword):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrStaleDraft),
		errors.Is(err, services.ErrStatusConflict),
		errors.Is(err, lifecycle.ErrInvalidTransition):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
}

package handlers

import (
	"errors"
	"net/http"

	"mcfbridge/internal/fulfillment"
	"mcfbridge/internal/repository"
	"mcfbridge/internal/services/amazon"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OrderHandler struct {
	manager *fulfillment.Manager
	orders  repository.OrderRepository
	logger  *zap.Logger
}

func NewOrderHandler(manager *fulfillment.Manager, orders repository.OrderRepository, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		manager: manager,
		orders:  orders,
		logger:  logger,
	}
}

// Get returns an order with its MCF fulfillment metadata.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orders.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}

// Submit sends the order to MCF, or retries after a stored failure.
func (h *OrderHandler) Submit(c *gin.Context) {
	result, err := h.manager.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, fulfillment.ErrAlreadySubmitted):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// Refresh polls MCF for the current fulfillment status.
func (h *OrderHandler) Refresh(c *gin.Context) {
	result, err := h.manager.RefreshStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, fulfillment.ErrNotLinked):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// Cancel asks Amazon to cancel the fulfillment.
func (h *OrderHandler) Cancel(c *gin.Context) {
	err := h.manager.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, fulfillment.ErrNotLinked):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Fulfillment cancelled"})
}

type previewRequest struct {
	Address amazon.Address       `json:"address" binding:"required"`
	Items   []amazon.PreviewItem `json:"items" binding:"required,min=1"`
}

// Preview returns delivery estimates without creating an order.
func (h *OrderHandler) Preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	previews, err := h.manager.Preview(c.Request.Context(), req.Address, req.Items)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": previews})
}

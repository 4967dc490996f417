package handlers

import (
	"errors"
	"net/http"

	"mcfbridge/internal/services/amazon"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ConnectionHandler struct {
	client *amazon.Client
	logger *zap.Logger
}

func NewConnectionHandler(client *amazon.Client, logger *zap.Logger) *ConnectionHandler {
	return &ConnectionHandler{client: client, logger: logger}
}

// Test verifies the configured credentials against SP-API.
func (h *ConnectionHandler) Test(c *gin.Context) {
	marketplaces, err := h.client.TestConnection(c.Request.Context())
	if err != nil {
		var authErr *amazon.AuthError
		if errors.As(err, &authErr) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Connected successfully",
		"marketplaces": marketplaces,
	})
}

// Inventory returns the active FBA inventory view.
func (h *ConnectionHandler) Inventory(c *gin.Context) {
	items, err := h.client.InventorySummaries(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": amazon.ActiveInventory(items)})
}

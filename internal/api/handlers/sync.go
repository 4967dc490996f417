package handlers

import (
	"errors"
	"net/http"

	"mcfbridge/internal/repository"
	syncpkg "mcfbridge/internal/sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SyncHandler struct {
	reconciler *syncpkg.Reconciler
	reports    repository.SyncReportRepository
	logger     *zap.Logger
}

func NewSyncHandler(reconciler *syncpkg.Reconciler, reports repository.SyncReportRepository, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{
		reconciler: reconciler,
		reports:    reports,
		logger:     logger,
	}
}

// Run triggers a manual reconciliation pass.
func (h *SyncHandler) Run(c *gin.Context) {
	report, err := h.reconciler.Run(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

// Report returns the latest sync snapshot.
func (h *SyncHandler) Report(c *gin.Context) {
	report, err := h.reports.Latest(c.Request.Context())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No sync has been performed yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sync report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

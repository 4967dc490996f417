package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"mcfbridge/internal/importer"
	"mcfbridge/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProductHandler struct {
	products repository.ProductRepository
	importer *importer.Importer
	logger   *zap.Logger
}

func NewProductHandler(products repository.ProductRepository, imp *importer.Importer, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		importer: imp,
		logger:   logger,
	}
}

func (h *ProductHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	products, total, err := h.products.FindAll(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": products, "total": total})
}

func (h *ProductHandler) Get(c *gin.Context) {
	id := c.Param("id")

	product, err := h.products.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

// ListImportable returns the active FBA inventory annotated with which SKUs
// already exist as store products.
func (h *ProductHandler) ListImportable(c *gin.Context) {
	items, err := h.importer.ListImportable(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

type importRequest struct {
	Items []struct {
		SKU  string `json:"sku" binding:"required"`
		ASIN string `json:"asin" binding:"required"`
	} `json:"items" binding:"required,min=1"`
}

// Import materializes store products from catalog items. Partial failures
// are reported per item, never dropped.
func (h *ProductHandler) Import(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pairs := make(map[string]string, len(req.Items))
	for _, item := range req.Items {
		pairs[item.SKU] = item.ASIN
	}

	results := h.importer.ImportBatch(c.Request.Context(), pairs)

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}

	status := http.StatusOK
	if failed == len(results) {
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"data": results, "failed": failed})
}

package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mcfbridge/internal/models"
	"mcfbridge/internal/repository"
	"mcfbridge/internal/services/amazon"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrProductExists means a store product already carries the SKU.
var ErrProductExists = errors.New("product already exists")

// ValidationError reports malformed import input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Catalog is the slice of the SP-API client the importer needs.
type Catalog interface {
	InventorySummaries(ctx context.Context) ([]amazon.InventoryItem, error)
	CatalogItem(ctx context.Context, asin string) (*amazon.CatalogItem, error)
}

// ImportableItem is an FBA inventory entry annotated with whether a store
// product already exists for its SKU.
type ImportableItem struct {
	amazon.InventoryItem
	Exists    bool   `json:"exists"`
	ProductID string `json:"product_id,omitempty"`
}

// ImportResult is the per-SKU outcome of a batch import.
type ImportResult struct {
	SKU       string `json:"sku"`
	ASIN      string `json:"asin"`
	ProductID string `json:"product_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Importer materializes store products from Amazon catalog items.
type Importer struct {
	catalog  Catalog
	products repository.ProductRepository
	logger   *zap.Logger
}

func New(catalog Catalog, products repository.ProductRepository, logger *zap.Logger) *Importer {
	return &Importer{
		catalog:  catalog,
		products: products,
		logger:   logger,
	}
}

// ListImportable returns the active FBA inventory view annotated against
// the store catalog.
func (i *Importer) ListImportable(ctx context.Context) ([]ImportableItem, error) {
	inventory, err := i.catalog.InventorySummaries(ctx)
	if err != nil {
		return nil, err
	}

	active := amazon.ActiveInventory(inventory)
	items := make([]ImportableItem, 0, len(active))
	for _, item := range active {
		annotated := ImportableItem{InventoryItem: item}
		if existing, err := i.products.FindBySKU(ctx, item.SKU); err == nil {
			annotated.Exists = true
			annotated.ProductID = existing.ID
		}
		items = append(items, annotated)
	}

	return items, nil
}

// Import creates one store product from a catalog item. The product starts
// as a draft for review; stock comes from the current FBA quantity.
func (i *Importer) Import(ctx context.Context, sku, asin string) (*models.Product, error) {
	if sku == "" || asin == "" {
		return nil, &ValidationError{Message: "missing SKU or ASIN"}
	}

	if _, err := i.products.FindBySKU(ctx, sku); err == nil {
		return nil, ErrProductExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing product: %w", err)
	}

	catalog, err := i.catalog.CatalogItem(ctx, asin)
	if err != nil {
		return nil, err
	}

	stockQty := 0
	if inventory, err := i.catalog.InventorySummaries(ctx); err == nil {
		for _, item := range amazon.ActiveInventory(inventory) {
			if item.SKU == sku {
				stockQty = item.Quantity
				break
			}
		}
	}

	product := buildProduct(sku, catalog, stockQty)
	if err := i.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	i.logger.Info("product imported",
		zap.String("sku", sku),
		zap.String("asin", asin),
		zap.String("product_id", product.ID),
	)

	return product, nil
}

// ImportBatch imports a set of SKU/ASIN pairs, reporting each outcome
// individually. Failed items never abort the batch.
func (i *Importer) ImportBatch(ctx context.Context, pairs map[string]string) []ImportResult {
	results := make([]ImportResult, 0, len(pairs))
	for sku, asin := range pairs {
		result := ImportResult{SKU: sku, ASIN: asin}
		product, err := i.Import(ctx, sku, asin)
		if err != nil {
			result.Error = err.Error()
		} else {
			result.ProductID = product.ID
		}
		results = append(results, result)
	}
	return results
}

func buildProduct(sku string, catalog *amazon.CatalogItem, stockQty int) *models.Product {
	description := catalog.Description
	if len(catalog.Bullets) > 0 {
		description += "\n\n- " + strings.Join(catalog.Bullets, "\n- ")
	}

	stockStatus := models.StockStatusOutOfStock
	if stockQty > 0 {
		stockStatus = models.StockStatusInStock
	}

	product := &models.Product{
		SKU:           sku,
		Title:         catalog.Title,
		Status:        models.ProductStatusDraft,
		StockQuantity: stockQty,
		StockStatus:   stockStatus,
		AmazonSKU:     &sku,
	}

	if catalog.ASIN != "" {
		asin := catalog.ASIN
		product.AmazonASIN = &asin
	}
	if description != "" {
		product.Description = &description
	}
	if len(catalog.Bullets) > 0 {
		short := catalog.Bullets[0]
		product.ShortDescription = &short
	}
	if catalog.Brand != "" {
		brand := catalog.Brand
		product.Brand = &brand
	}
	if catalog.Price != "" {
		price := catalog.Price
		product.Price = &price
	}
	if catalog.UPC != "" {
		upc := catalog.UPC
		product.UPC = &upc
	}
	if catalog.EAN != "" {
		ean := catalog.EAN
		product.EAN = &ean
	}
	if catalog.Weight != nil {
		// Catalog weights arrive in grams.
		kg := catalog.Weight.Value / 1000
		product.WeightKg = &kg
	}
	if catalog.Dimensions != nil {
		if catalog.Dimensions.Length != nil {
			v := catalog.Dimensions.Length.Value
			product.Length = &v
		}
		if catalog.Dimensions.Width != nil {
			v := catalog.Dimensions.Width.Value
			product.Width = &v
		}
		if catalog.Dimensions.Height != nil {
			v := catalog.Dimensions.Height.Value
			product.Height = &v
		}
	}

	// The mapper sorts the primary variant first, so the featured image
	// leads the gallery.
	for _, img := range catalog.Images {
		product.Images = append(product.Images, img.URL)
	}

	return product
}

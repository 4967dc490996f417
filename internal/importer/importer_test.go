package importer_test

import (
	"context"
	"errors"
	"testing"

	"mcfbridge/internal/importer"
	"mcfbridge/internal/models"
	"mcfbridge/internal/services/amazon"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ---- mock catalog ----

type mockCatalog struct {
	inventory    []amazon.InventoryItem
	inventoryErr error
	item         *amazon.CatalogItem
	itemErr      error
}

func (m *mockCatalog) InventorySummaries(_ context.Context) ([]amazon.InventoryItem, error) {
	return m.inventory, m.inventoryErr
}
func (m *mockCatalog) CatalogItem(_ context.Context, _ string) (*amazon.CatalogItem, error) {
	return m.item, m.itemErr
}

// ---- mock product repository ----

type mockProductRepo struct {
	existing  map[string]*models.Product
	created   *models.Product
	createErr error
}

func (m *mockProductRepo) Create(_ context.Context, product *models.Product) error {
	if m.createErr != nil {
		return m.createErr
	}
	product.ID = "created-1"
	m.created = product
	return nil
}
func (m *mockProductRepo) FindByID(_ context.Context, _ string) (*models.Product, error) {
	return nil, gorm.ErrRecordNotFound
}
func (m *mockProductRepo) FindBySKU(_ context.Context, sku string) (*models.Product, error) {
	if p, ok := m.existing[sku]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (m *mockProductRepo) FindAll(_ context.Context, _, _ int) ([]models.Product, int64, error) {
	return nil, 0, nil
}
func (m *mockProductRepo) FindLinked(_ context.Context) ([]models.Product, error) {
	return nil, nil
}
func (m *mockProductRepo) UpdateStock(_ context.Context, _ string, _ int, _ string) error {
	return nil
}

func newTestImporter(catalog *mockCatalog, products *mockProductRepo) *importer.Importer {
	return importer.New(catalog, products, zap.NewNop())
}

func testCatalogItem() *amazon.CatalogItem {
	return &amazon.CatalogItem{
		ASIN:        "B0TEST01",
		Title:       "Stainless Water Bottle",
		Brand:       "HydraCo",
		Description: "Double-walled bottle.",
		Bullets:     []string{"Keeps drinks cold", "BPA free"},
		Price:       "19.99",
		Images: []amazon.Image{
			{Variant: "MAIN", URL: "https://img/main"},
			{Variant: "PT01", URL: "https://img/pt01"},
		},
		Weight: &amazon.Measurement{Value: 500, Unit: "grams"},
	}
}

// ---- tests ----

func TestImportCreatesDraftProduct(t *testing.T) {
	catalog := &mockCatalog{
		item: testCatalogItem(),
		inventory: []amazon.InventoryItem{
			{SKU: "SKU-A", ASIN: "B0TEST01", Quantity: 12},
		},
	}
	products := &mockProductRepo{}

	product, err := newTestImporter(catalog, products).Import(context.Background(), "SKU-A", "B0TEST01")
	assert.NoError(t, err)
	assert.NotNil(t, products.created)

	assert.Equal(t, "SKU-A", product.SKU)
	assert.Equal(t, models.ProductStatusDraft, product.Status)
	assert.Equal(t, "Stainless Water Bottle", product.Title)
	assert.Equal(t, 12, product.StockQuantity)
	assert.Equal(t, models.StockStatusInStock, product.StockStatus)

	assert.NotNil(t, product.AmazonSKU)
	assert.Equal(t, "SKU-A", *product.AmazonSKU)
	assert.NotNil(t, product.AmazonASIN)
	assert.Equal(t, "B0TEST01", *product.AmazonASIN)

	// grams to kilograms
	assert.NotNil(t, product.WeightKg)
	assert.Equal(t, 0.5, *product.WeightKg)

	assert.NotNil(t, product.ShortDescription)
	assert.Equal(t, "Keeps drinks cold", *product.ShortDescription)
	assert.Contains(t, *product.Description, "- BPA free")

	// primary image leads the gallery
	assert.Equal(t, []string{"https://img/main", "https://img/pt01"}, product.Images)
}

func TestImportOutOfStockWhenSKUNotActive(t *testing.T) {
	catalog := &mockCatalog{
		item:      testCatalogItem(),
		inventory: []amazon.InventoryItem{{SKU: "SKU-OTHER", Quantity: 3}},
	}
	products := &mockProductRepo{}

	product, err := newTestImporter(catalog, products).Import(context.Background(), "SKU-A", "B0TEST01")
	assert.NoError(t, err)
	assert.Equal(t, 0, product.StockQuantity)
	assert.Equal(t, models.StockStatusOutOfStock, product.StockStatus)
}

func TestImportRejectsDuplicateSKU(t *testing.T) {
	catalog := &mockCatalog{item: testCatalogItem()}
	products := &mockProductRepo{existing: map[string]*models.Product{
		"SKU-A": {ID: "p-1", SKU: "SKU-A"},
	}}

	_, err := newTestImporter(catalog, products).Import(context.Background(), "SKU-A", "B0TEST01")
	assert.ErrorIs(t, err, importer.ErrProductExists)
	assert.Nil(t, products.created)
}

func TestImportRejectsMissingInput(t *testing.T) {
	imp := newTestImporter(&mockCatalog{}, &mockProductRepo{})

	_, err := imp.Import(context.Background(), "", "B0TEST01")
	var validationErr *importer.ValidationError
	assert.True(t, errors.As(err, &validationErr))

	_, err = imp.Import(context.Background(), "SKU-A", "")
	assert.True(t, errors.As(err, &validationErr))
}

func TestListImportableAnnotatesExisting(t *testing.T) {
	catalog := &mockCatalog{inventory: []amazon.InventoryItem{
		{SKU: "SKU-A", Quantity: 5},
		{SKU: "SKU-B", Quantity: 2},
		{SKU: "SKU-C", Quantity: 0},
	}}
	products := &mockProductRepo{existing: map[string]*models.Product{
		"SKU-B": {ID: "p-b", SKU: "SKU-B"},
	}}

	items, err := newTestImporter(catalog, products).ListImportable(context.Background())
	assert.NoError(t, err)

	// zero-quantity entries are not importable
	assert.Len(t, items, 2)
	assert.False(t, items[0].Exists)
	assert.True(t, items[1].Exists)
	assert.Equal(t, "p-b", items[1].ProductID)
}

func TestImportBatchReportsPerItemOutcomes(t *testing.T) {
	catalog := &mockCatalog{item: testCatalogItem()}
	products := &mockProductRepo{existing: map[string]*models.Product{
		"SKU-DUP": {ID: "p-dup", SKU: "SKU-DUP"},
	}}

	results := newTestImporter(catalog, products).ImportBatch(context.Background(), map[string]string{
		"SKU-NEW": "B0TEST01",
		"SKU-DUP": "B0TEST02",
	})

	assert.Len(t, results, 2)

	outcomes := make(map[string]importer.ImportResult, len(results))
	for _, r := range results {
		outcomes[r.SKU] = r
	}
	assert.Empty(t, outcomes["SKU-NEW"].Error)
	assert.Equal(t, "created-1", outcomes["SKU-NEW"].ProductID)
	assert.Contains(t, outcomes["SKU-DUP"].Error, "already exists")
}

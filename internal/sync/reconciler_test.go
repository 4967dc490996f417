package sync_test

import (
	"context"
	"errors"
	"testing"

	"mcfbridge/internal/events"
	"mcfbridge/internal/metrics"
	"mcfbridge/internal/models"
	"mcfbridge/internal/services/amazon"
	syncpkg "mcfbridge/internal/sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// ---- mock inventory ----

type mockInventory struct {
	items []amazon.InventoryItem
	err   error
}

func (m *mockInventory) InventorySummaries(_ context.Context) ([]amazon.InventoryItem, error) {
	return m.items, m.err
}

// ---- mock product repository ----

type stockUpdate struct {
	id       string
	quantity int
	status   string
}

type mockProductRepo struct {
	linked    []models.Product
	linkedErr error
	updateErr error
	updates   []stockUpdate
}

func (m *mockProductRepo) Create(_ context.Context, _ *models.Product) error { return nil }
func (m *mockProductRepo) FindByID(_ context.Context, _ string) (*models.Product, error) {
	return nil, nil
}
func (m *mockProductRepo) FindBySKU(_ context.Context, _ string) (*models.Product, error) {
	return nil, nil
}
func (m *mockProductRepo) FindAll(_ context.Context, _, _ int) ([]models.Product, int64, error) {
	return nil, 0, nil
}
func (m *mockProductRepo) FindLinked(_ context.Context) ([]models.Product, error) {
	return m.linked, m.linkedErr
}
func (m *mockProductRepo) UpdateStock(_ context.Context, id string, quantity int, status string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates = append(m.updates, stockUpdate{id: id, quantity: quantity, status: status})
	return nil
}

// ---- mock report repository ----

type mockReportRepo struct {
	saved   *models.SyncReport
	saveErr error
}

func (m *mockReportRepo) Save(_ context.Context, report *models.SyncReport) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = report
	return nil
}
func (m *mockReportRepo) Latest(_ context.Context) (*models.SyncReport, error) {
	return m.saved, nil
}

// ---- helper ----

func newTestReconciler(inventory *mockInventory, products *mockProductRepo, reports *mockReportRepo) *syncpkg.Reconciler {
	return syncpkg.NewReconciler(
		inventory, products, reports,
		events.NopPublisher{},
		metrics.New(prometheus.NewRegistry()),
		zap.NewNop(),
	)
}

func sptr(s string) *string { return &s }

// ---- tests ----

func TestRunClassifiesOutcomes(t *testing.T) {
	inventory := &mockInventory{items: []amazon.InventoryItem{
		{SKU: "SKU-A", Quantity: 3},
		{SKU: "SKU-B", Quantity: 0},
		{SKU: "SKU-D", Quantity: 0},
	}}
	products := &mockProductRepo{linked: []models.Product{
		{ID: "p-a", SKU: "SKU-A", StockQuantity: 5},
		{ID: "p-b", SKU: "SKU-B", StockQuantity: 0},
		{ID: "p-c", SKU: "SKU-C", StockQuantity: 7},
		{ID: "p-d", SKU: "SKU-D", StockQuantity: 2},
	}}
	reports := &mockReportRepo{}

	report, err := newTestReconciler(inventory, products, reports).Run(context.Background())
	assert.NoError(t, err)

	assert.Equal(t, 2, report.Updated)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.NotFound)
	assert.Equal(t, 0, report.Errors)

	assert.Len(t, products.updates, 2)
	assert.Equal(t, stockUpdate{id: "p-a", quantity: 3, status: models.StockStatusInStock}, products.updates[0])
	assert.Equal(t, stockUpdate{id: "p-d", quantity: 0, status: models.StockStatusOutOfStock}, products.updates[1])
}

func TestRunHonorsAmazonSKUTag(t *testing.T) {
	inventory := &mockInventory{items: []amazon.InventoryItem{
		{SKU: "AMZ-1", Quantity: 9},
	}}
	products := &mockProductRepo{linked: []models.Product{
		{ID: "p-1", SKU: "STORE-1", AmazonSKU: sptr("AMZ-1"), StockQuantity: 1},
	}}
	reports := &mockReportRepo{}

	report, err := newTestReconciler(inventory, products, reports).Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 9, products.updates[0].quantity)
}

func TestRunNoChangesStillSavesReport(t *testing.T) {
	inventory := &mockInventory{items: []amazon.InventoryItem{
		{SKU: "SKU-A", Quantity: 5},
	}}
	products := &mockProductRepo{linked: []models.Product{
		{ID: "p-a", SKU: "SKU-A", StockQuantity: 5},
	}}
	reports := &mockReportRepo{}

	report, err := newTestReconciler(inventory, products, reports).Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, report.Updated)
	assert.Equal(t, 1, report.Skipped)
	assert.Empty(t, products.updates)
	assert.NotNil(t, reports.saved)
}

func TestRunToleratesUpdateErrors(t *testing.T) {
	inventory := &mockInventory{items: []amazon.InventoryItem{
		{SKU: "SKU-A", Quantity: 3},
		{SKU: "SKU-B", Quantity: 4},
	}}
	products := &mockProductRepo{
		linked: []models.Product{
			{ID: "p-a", SKU: "SKU-A", StockQuantity: 1},
			{ID: "p-b", SKU: "SKU-B", StockQuantity: 1},
		},
		updateErr: errors.New("connection reset"),
	}
	reports := &mockReportRepo{}

	report, err := newTestReconciler(inventory, products, reports).Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, report.Errors)
	assert.Equal(t, 0, report.Updated)
	assert.NotNil(t, reports.saved)
}

func TestRunReportSaveFailureKeepsCounts(t *testing.T) {
	inventory := &mockInventory{items: []amazon.InventoryItem{
		{SKU: "SKU-A", Quantity: 3},
	}}
	products := &mockProductRepo{linked: []models.Product{
		{ID: "p-a", SKU: "SKU-A", StockQuantity: 1},
	}}
	reports := &mockReportRepo{saveErr: errors.New("disk full")}

	report, err := newTestReconciler(inventory, products, reports).Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 0, report.Errors)
}

func TestRunFetchFailureAborts(t *testing.T) {
	inventory := &mockInventory{err: errors.New("503 from SP-API")}
	products := &mockProductRepo{}
	reports := &mockReportRepo{}

	_, err := newTestReconciler(inventory, products, reports).Run(context.Background())
	assert.Error(t, err)
	assert.Nil(t, reports.saved)
}

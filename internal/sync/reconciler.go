package sync

import (
	"context"
	"fmt"
	"time"

	"mcfbridge/internal/events"
	"mcfbridge/internal/metrics"
	"mcfbridge/internal/models"
	"mcfbridge/internal/repository"
	"mcfbridge/internal/services/amazon"

	"go.uber.org/zap"
)

// InventoryFetcher is the slice of the SP-API client the reconciler needs.
type InventoryFetcher interface {
	InventorySummaries(ctx context.Context) ([]amazon.InventoryItem, error)
}

// Reconciler applies the diff between FBA stock and store stock. Runs are
// not mutually excluded; overlapping manual and scheduled runs can race on
// the same product's read-modify-write, which callers accept.
type Reconciler struct {
	inventory InventoryFetcher
	products  repository.ProductRepository
	reports   repository.SyncReportRepository
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewReconciler(
	inventory InventoryFetcher,
	products repository.ProductRepository,
	reports repository.SyncReportRepository,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Reconciler {
	return &Reconciler{
		inventory: inventory,
		products:  products,
		reports:   reports,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// Run executes one reconciliation pass. Per-product failures are counted
// and skipped; the loop never aborts. The report snapshot is persisted even
// when the run made no changes.
func (r *Reconciler) Run(ctx context.Context) (*models.SyncReport, error) {
	r.metrics.SyncRuns.Inc()

	items, err := r.inventory.InventorySummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch FBA inventory: %w", err)
	}

	quantities := make(map[string]int, len(items))
	for _, item := range items {
		quantities[item.SKU] = item.Quantity
	}

	linked, err := r.products.FindLinked(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load linked products: %w", err)
	}

	report := &models.SyncReport{Timestamp: time.Now()}

	for i := range linked {
		product := &linked[i]
		sku := product.LinkedSKU()

		fbaQty, found := quantities[sku]
		if !found {
			report.NotFound++
			r.metrics.SyncOutcomes.WithLabelValues("not_found").Inc()
			report.Details = append(report.Details, models.SyncDetail{
				SKU:       sku,
				ProductID: product.ID,
				Status:    models.SyncDetailNotFound,
				Message:   "SKU not found in Amazon FBA inventory",
			})
			continue
		}

		if fbaQty == product.StockQuantity {
			report.Skipped++
			r.metrics.SyncOutcomes.WithLabelValues("skipped").Inc()
			continue
		}

		status := models.StockStatusOutOfStock
		if fbaQty > 0 {
			status = models.StockStatusInStock
		}

		if err := r.products.UpdateStock(ctx, product.ID, fbaQty, status); err != nil {
			report.Errors++
			r.metrics.SyncOutcomes.WithLabelValues("error").Inc()
			r.logger.Error("failed to update product stock",
				zap.String("sku", sku),
				zap.String("product_id", product.ID),
				zap.Error(err),
			)
			continue
		}

		report.Updated++
		r.metrics.SyncOutcomes.WithLabelValues("updated").Inc()
		report.Details = append(report.Details, models.SyncDetail{
			SKU:       sku,
			ProductID: product.ID,
			Status:    models.SyncDetailUpdated,
			OldQty:    product.StockQuantity,
			NewQty:    fbaQty,
		})
	}

	r.logger.Info("inventory sync finished",
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("not_found", report.NotFound),
		zap.Int("errors", report.Errors),
	)

	// The counts are already final; a failed snapshot write is only logged.
	if err := r.reports.Save(ctx, report); err != nil {
		r.logger.Error("failed to persist sync report", zap.Error(err))
	}

	r.publisher.Publish(ctx, events.Event{
		Type: events.TypeSyncCompleted,
		Data: map[string]interface{}{
			"updated":   report.Updated,
			"skipped":   report.Skipped,
			"not_found": report.NotFound,
			"errors":    report.Errors,
		},
	})

	return report, nil
}

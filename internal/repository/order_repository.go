package repository

import (
	"context"
	"time"

	"mcfbridge/internal/models"

	"gorm.io/gorm"
)

// OrderRepository persists store orders and their MCF metadata.
type OrderRepository interface {
	FindByID(ctx context.Context, id string) (*models.Order, error)
	// FindOpenSubmitted returns orders submitted to MCF whose fulfillment
	// status is not yet terminal, for the periodic refresh sweep.
	FindOpenSubmitted(ctx context.Context) ([]models.Order, error)
	// ClaimForSubmission atomically records the MCF order ID on an order that
	// has none yet. Returns false when another caller already claimed it.
	ClaimForSubmission(ctx context.Context, orderID, mcfOrderID string, submittedAt time.Time) (bool, error)
	SetMcfStatus(ctx context.Context, orderID, status string) error
	SetTracking(ctx context.Context, orderID, trackingNumber, carrier string) error
	SetLastError(ctx context.Context, orderID, message string) error
	ClearSubmission(ctx context.Context, orderID string) error
	UpdateStoreStatus(ctx context.Context, orderID, status string) error
}

type gormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &gormOrderRepository{db: db}
}

func (r *gormOrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepository) FindOpenSubmitted(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("mcf_order_id != '' AND mcf_status NOT IN ?", []string{
			models.McfStatusComplete,
			models.McfStatusCompletePartialled,
			models.McfStatusCancelled,
			models.McfStatusUnfulfillable,
		}).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *gormOrderRepository) ClaimForSubmission(ctx context.Context, orderID, mcfOrderID string, submittedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND (mcf_order_id = '' OR mcf_order_id IS NULL)", orderID).
		Updates(map[string]interface{}{
			"mcf_order_id": mcfOrderID,
			"mcf_status":   models.McfStatusReceived,
			"submitted_at": submittedAt,
			"last_error":   "",
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *gormOrderRepository) SetMcfStatus(ctx context.Context, orderID, status string) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("mcf_status", status).Error
}

func (r *gormOrderRepository) SetTracking(ctx context.Context, orderID, trackingNumber, carrier string) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"tracking_number": trackingNumber,
			"carrier":         carrier,
		}).Error
}

func (r *gormOrderRepository) SetLastError(ctx context.Context, orderID, message string) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("last_error", message).Error
}

func (r *gormOrderRepository) ClearSubmission(ctx context.Context, orderID string) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"mcf_order_id": "",
			"mcf_status":   models.McfStatusUnsubmitted,
			"submitted_at": nil,
		}).Error
}

func (r *gormOrderRepository) UpdateStoreStatus(ctx context.Context, orderID, status string) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status).Error
}

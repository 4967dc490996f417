package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mcfbridge/internal/events"
	"mcfbridge/internal/metrics"
	"mcfbridge/internal/models"
	"mcfbridge/internal/repository"
	"mcfbridge/internal/services/amazon"

	"go.uber.org/zap"
)

var (
	// ErrAlreadySubmitted guards the idempotent-submit invariant.
	ErrAlreadySubmitted = errors.New("order already submitted to MCF")

	// ErrNotLinked means the order has no MCF order ID yet.
	ErrNotLinked = errors.New("order has no MCF order ID")
)

// Gateway is the slice of the SP-API client the manager needs.
type Gateway interface {
	MarketplaceID() string
	CreateFulfillmentOrder(ctx context.Context, order *amazon.CreateFulfillmentOrderRequest) error
	GetFulfillmentOrder(ctx context.Context, mcfOrderID string) (*amazon.FulfillmentOrderDetail, error)
	CancelFulfillmentOrder(ctx context.Context, mcfOrderID string) error
	FulfillmentPreview(ctx context.Context, address amazon.Address, items []amazon.PreviewItem) ([]amazon.FulfillmentPreview, error)
}

// SubmitResult reports the outcome of a submit call.
type SubmitResult struct {
	Submitted  bool   `json:"submitted"`
	Skipped    bool   `json:"skipped"`
	Reason     string `json:"reason,omitempty"`
	McfOrderID string `json:"mcf_order_id,omitempty"`
}

// RefreshResult reports the outcome of a status refresh.
type RefreshResult struct {
	McfStatus      string `json:"mcf_status"`
	StoreStatus    string `json:"store_status,omitempty"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	Carrier        string `json:"carrier,omitempty"`
}

// Manager drives each order through the MCF fulfillment lifecycle:
// UNSUBMITTED -> RECEIVED/PLANNING -> PROCESSING -> terminal.
type Manager struct {
	gateway   Gateway
	orders    repository.OrderRepository
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger

	now func() time.Time
}

func NewManager(
	gateway Gateway,
	orders repository.OrderRepository,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		gateway:   gateway,
		orders:    orders,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// Submit sends an order to MCF. It refuses resubmission while an MCF order
// ID exists; after a failure the error is stored on the order and the call
// may be retried. The claim is a conditional update so a duplicate
// payment-confirmed event can never create two fulfillment orders.
func (m *Manager) Submit(ctx context.Context, orderID string) (*SubmitResult, error) {
	order, err := m.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order %s: %w", orderID, err)
	}

	if order.McfOrderID != "" {
		return nil, ErrAlreadySubmitted
	}

	items := buildItems(order)
	if len(items) == 0 {
		m.logger.Info("no items with usable SKUs, skipping MCF submission",
			zap.String("order", order.Number))
		return &SubmitResult{
			Skipped: true,
			Reason:  "no items with Amazon SKUs found",
		}, nil
	}

	mcfOrderID := fmt.Sprintf("%s-%d", order.Number, m.now().Unix())

	claimed, err := m.orders.ClaimForSubmission(ctx, order.ID, mcfOrderID, m.now())
	if err != nil {
		return nil, fmt.Errorf("failed to claim order for submission: %w", err)
	}
	if !claimed {
		return nil, ErrAlreadySubmitted
	}

	request := m.buildRequest(order, mcfOrderID, items)

	if err := m.gateway.CreateFulfillmentOrder(ctx, request); err != nil {
		m.metrics.Submissions.WithLabelValues("error").Inc()

		// Roll the claim back and keep the error so the order stays in the
		// retryable UNSUBMITTED-with-error sub-state.
		if clearErr := m.orders.ClearSubmission(ctx, order.ID); clearErr != nil {
			m.logger.Error("failed to clear submission claim",
				zap.String("order", order.Number), zap.Error(clearErr))
		}
		if saveErr := m.orders.SetLastError(ctx, order.ID, err.Error()); saveErr != nil {
			m.logger.Error("failed to record submission error",
				zap.String("order", order.Number), zap.Error(saveErr))
		}

		m.logger.Error("MCF submission failed",
			zap.String("order", order.Number),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to submit order to MCF: %w", err)
	}

	m.metrics.Submissions.WithLabelValues("success").Inc()
	m.logger.Info("order submitted to MCF",
		zap.String("order", order.Number),
		zap.String("mcf_order_id", mcfOrderID),
	)

	m.publisher.Publish(ctx, events.Event{
		Type:    events.TypeFulfillmentSubmitted,
		OrderID: order.ID,
		Data:    map[string]interface{}{"mcf_order_id": mcfOrderID},
	})

	return &SubmitResult{
		Submitted:  true,
		McfOrderID: mcfOrderID,
	}, nil
}

// RefreshStatus polls MCF and maps the provider status onto the order. A
// completion variant transitions the store order to completed, a
// cancellation/unfulfillable variant to cancelled; anything else persists
// metadata only.
func (m *Manager) RefreshStatus(ctx context.Context, orderID string) (*RefreshResult, error) {
	order, err := m.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order %s: %w", orderID, err)
	}

	if order.McfOrderID == "" {
		return nil, ErrNotLinked
	}

	detail, err := m.gateway.GetFulfillmentOrder(ctx, order.McfOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fulfillment order: %w", err)
	}

	newStatus := models.NormalizeMcfStatus(detail.FulfillmentOrder.FulfillmentOrderStatus)
	result := &RefreshResult{McfStatus: newStatus}

	if tracking, carrier, ok := firstTracking(detail); ok {
		result.TrackingNumber = tracking
		result.Carrier = carrier
		if err := m.orders.SetTracking(ctx, order.ID, tracking, carrier); err != nil {
			m.logger.Error("failed to persist tracking",
				zap.String("order", order.Number), zap.Error(err))
		}
	}

	if err := m.orders.SetMcfStatus(ctx, order.ID, newStatus); err != nil {
		return nil, fmt.Errorf("failed to persist MCF status: %w", err)
	}

	switch newStatus {
	case models.McfStatusComplete, models.McfStatusCompletePartialled:
		result.StoreStatus = models.OrderStatusCompleted
		if err := m.orders.UpdateStoreStatus(ctx, order.ID, models.OrderStatusCompleted); err != nil {
			return nil, fmt.Errorf("failed to complete store order: %w", err)
		}
	case models.McfStatusCancelled, models.McfStatusUnfulfillable:
		result.StoreStatus = models.OrderStatusCancelled
		if err := m.orders.UpdateStoreStatus(ctx, order.ID, models.OrderStatusCancelled); err != nil {
			return nil, fmt.Errorf("failed to cancel store order: %w", err)
		}
	}

	if newStatus != order.McfStatus {
		m.publisher.Publish(ctx, events.Event{
			Type:    events.TypeFulfillmentStatusChanged,
			OrderID: order.ID,
			Data: map[string]interface{}{
				"previous": order.McfStatus,
				"current":  newStatus,
			},
		})
	}

	return result, nil
}

// Cancel asks Amazon to cancel the fulfillment and marks the order
// CANCELLED locally without waiting for confirmation.
func (m *Manager) Cancel(ctx context.Context, orderID string) error {
	order, err := m.orders.FindByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to load order %s: %w", orderID, err)
	}

	if order.McfOrderID == "" {
		return ErrNotLinked
	}

	if err := m.gateway.CancelFulfillmentOrder(ctx, order.McfOrderID); err != nil {
		return fmt.Errorf("failed to cancel fulfillment: %w", err)
	}

	if err := m.orders.SetMcfStatus(ctx, order.ID, models.McfStatusCancelled); err != nil {
		return fmt.Errorf("failed to persist cancelled status: %w", err)
	}

	m.logger.Info("MCF fulfillment cancelled",
		zap.String("order", order.Number),
		zap.String("mcf_order_id", order.McfOrderID),
	)

	m.publisher.Publish(ctx, events.Event{
		Type:    events.TypeFulfillmentStatusChanged,
		OrderID: order.ID,
		Data: map[string]interface{}{
			"previous": order.McfStatus,
			"current":  models.McfStatusCancelled,
		},
	})

	return nil
}

// Preview returns delivery estimates for an arbitrary address and item set.
func (m *Manager) Preview(ctx context.Context, address amazon.Address, items []amazon.PreviewItem) ([]amazon.FulfillmentPreview, error) {
	return m.gateway.FulfillmentPreview(ctx, address, items)
}

// RefreshOpen sweeps all submitted, non-terminal orders. Per-order failures
// are logged and skipped.
func (m *Manager) RefreshOpen(ctx context.Context) {
	orders, err := m.orders.FindOpenSubmitted(ctx)
	if err != nil {
		m.logger.Error("failed to list open fulfillments", zap.Error(err))
		return
	}

	for _, order := range orders {
		if _, err := m.RefreshStatus(ctx, order.ID); err != nil {
			m.logger.Warn("status refresh failed",
				zap.String("order", order.Number),
				zap.Error(err),
			)
		}
	}
}

// buildItems selects order lines with a usable SKU: the Amazon SKU tag when
// present, the store SKU otherwise. Lines without either are excluded.
func buildItems(order *models.Order) []amazon.FulfillmentOrderItem {
	var items []amazon.FulfillmentOrderItem
	index := 1

	for _, line := range order.Items {
		if line.Product == nil {
			continue
		}

		sku := line.Product.SKU
		if line.Product.AmazonSKU != nil && *line.Product.AmazonSKU != "" {
			sku = *line.Product.AmazonSKU
		}
		if sku == "" {
			continue
		}

		items = append(items, amazon.FulfillmentOrderItem{
			SellerSKU:                    sku,
			SellerFulfillmentOrderItemID: fmt.Sprintf("%s-%d", order.ID, index),
			Quantity:                     line.Quantity,
		})
		index++
	}

	return items
}

func (m *Manager) buildRequest(order *models.Order, mcfOrderID string, items []amazon.FulfillmentOrderItem) *amazon.CreateFulfillmentOrderRequest {
	return &amazon.CreateFulfillmentOrderRequest{
		SellerFulfillmentOrderID: mcfOrderID,
		DisplayableOrderID:       order.Number,
		DisplayableOrderDate:     order.CreatedAt.Format(time.RFC3339),
		DisplayableOrderComment:  fmt.Sprintf("Store Order #%s", order.Number),
		ShippingSpeedCategory:    "Standard",
		FulfillmentAction:        "Ship",
		// Fail if any item is unavailable.
		FulfillmentPolicy: "FillOrKill",
		DestinationAddress: amazon.Address{
			Name:          order.ShippingName,
			AddressLine1:  order.ShippingAddress1,
			AddressLine2:  order.ShippingAddress2,
			City:          order.ShippingCity,
			StateOrRegion: order.ShippingState,
			PostalCode:    order.ShippingPostcode,
			CountryCode:   order.ShippingCountry,
			Phone:         order.BillingPhone,
		},
		MarketplaceID:      m.gateway.MarketplaceID(),
		Items:              items,
		NotificationEmails: []string{order.BillingEmail},
	}
}

// firstTracking returns the first tracking number found among shipment
// packages; the search stops at the first match.
func firstTracking(detail *amazon.FulfillmentOrderDetail) (string, string, bool) {
	for _, shipment := range detail.FulfillmentShipments {
		for _, pkg := range shipment.FulfillmentShipmentPackage {
			if pkg.TrackingNumber != "" {
				return pkg.TrackingNumber, pkg.CarrierCode, true
			}
		}
	}
	return "", "", false
}

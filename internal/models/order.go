package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order is a store order plus its MCF fulfillment metadata. The fulfillment
// fields mirror what the lifecycle manager persists per order.
type Order struct {
	ID     string `json:"id" gorm:"type:uuid;primary_key"`
	Number string `json:"number" gorm:"unique;not null"`
	Status string `json:"status" gorm:"default:pending"`

	// Destination
	ShippingName     string `json:"shipping_name"`
	ShippingAddress1 string `json:"shipping_address1"`
	ShippingAddress2 string `json:"shipping_address2"`
	ShippingCity     string `json:"shipping_city"`
	ShippingState    string `json:"shipping_state"`
	ShippingPostcode string `json:"shipping_postcode"`
	ShippingCountry  string `json:"shipping_country"`
	BillingPhone     string `json:"billing_phone"`
	BillingEmail     string `json:"billing_email"`

	Items []OrderItem `json:"items" gorm:"foreignKey:OrderID"`

	// MCF fulfillment metadata
	McfOrderID     string     `json:"mcf_order_id" gorm:"column:mcf_order_id"`
	McfStatus      string     `json:"mcf_status" gorm:"column:mcf_status"`
	SubmittedAt    *time.Time `json:"submitted_at"`
	TrackingNumber string     `json:"tracking_number"`
	Carrier        string     `json:"carrier"`
	LastError      string     `json:"last_error"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderItem is one order line. ProductID may be empty for lines that never
// matched a store product.
type OrderItem struct {
	ID        string `json:"id" gorm:"type:uuid;primary_key"`
	OrderID   string `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID string `json:"product_id" gorm:"type:uuid"`
	Quantity  int    `json:"quantity" gorm:"not null"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// Store order statuses the bridge transitions.
const (
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// MCF fulfillment order statuses. UNSUBMITTED with a non-empty LastError is
// the retryable sub-state.
const (
	McfStatusUnsubmitted        = ""
	McfStatusReceived           = "RECEIVED"
	McfStatusPlanning           = "PLANNING"
	McfStatusProcessing         = "PROCESSING"
	McfStatusComplete           = "COMPLETE"
	McfStatusCompletePartialled = "COMPLETE_PARTIALLED"
	McfStatusCancelled          = "CANCELLED"
	McfStatusUnfulfillable      = "UNFULFILLABLE"
)

// NormalizeMcfStatus upper-cases the PascalCase status strings SP-API
// returns ("Complete", "CompletePartialled") into the constants above.
func NormalizeMcfStatus(status string) string {
	s := strings.ToUpper(status)
	if s == "COMPLETEPARTIALLED" {
		return McfStatusCompletePartialled
	}
	return s
}

// IsTerminalMcfStatus reports whether no further transitions are expected.
func IsTerminalMcfStatus(status string) bool {
	switch status {
	case McfStatusComplete, McfStatusCompletePartialled, McfStatusCancelled, McfStatusUnfulfillable:
		return true
	}
	return false
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

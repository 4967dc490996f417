package models

import "time"

// SyncReportID is the single snapshot slot; each run overwrites it.
const SyncReportID = 1

// SyncReport is the outcome of one reconciliation run.
type SyncReport struct {
	ID        int          `json:"-" gorm:"primary_key"`
	Updated   int          `json:"updated"`
	Skipped   int          `json:"skipped"`
	NotFound  int          `json:"not_found"`
	Errors    int          `json:"errors"`
	Details   []SyncDetail `json:"details" gorm:"serializer:json"`
	Timestamp time.Time    `json:"timestamp"`
}

// SyncDetail records one per-product outcome worth surfacing.
type SyncDetail struct {
	SKU       string `json:"sku"`
	ProductID string `json:"product_id"`
	Status    string `json:"status"`
	OldQty    int    `json:"old_qty,omitempty"`
	NewQty    int    `json:"new_qty,omitempty"`
	Message   string `json:"message,omitempty"`
}

const (
	SyncDetailUpdated  = "updated"
	SyncDetailNotFound = "not_found"
)

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a store product. SKU is the join key between store catalog and
// FBA inventory; at most one product per SKU.
type Product struct {
	ID               string   `json:"id" gorm:"type:uuid;primary_key"`
	SKU              string   `json:"sku" gorm:"unique;not null"`
	Title            string   `json:"title" gorm:"not null"`
	Description      *string  `json:"description"`
	ShortDescription *string  `json:"short_description"`
	Brand            *string  `json:"brand"`
	UPC              *string  `json:"upc"`
	EAN              *string  `json:"ean"`
	Price            *string  `json:"price"`
	Currency         string   `json:"currency" gorm:"default:USD"`
	WeightKg         *float64 `json:"weight_kg"`
	Length           *float64 `json:"length"`
	Width            *float64 `json:"width"`
	Height           *float64 `json:"height"`
	Images           []string `json:"images" gorm:"serializer:json"`

	// Stock
	StockQuantity int    `json:"stock_quantity"`
	StockStatus   string `json:"stock_status" gorm:"default:outofstock"`

	// Amazon identity tags
	AmazonSKU  *string `json:"amazon_sku" gorm:"column:amazon_sku"`
	AmazonASIN *string `json:"amazon_asin" gorm:"column:amazon_asin"`

	Status    string    `json:"status" gorm:"default:draft"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	StockStatusInStock    = "instock"
	StockStatusOutOfStock = "outofstock"

	ProductStatusDraft     = "draft"
	ProductStatusPublished = "publish"
)

// LinkedSKU is the SKU used to match this product against FBA inventory:
// the Amazon SKU tag when present, else the store SKU.
func (p *Product) LinkedSKU() string {
	if p.AmazonSKU != nil && *p.AmazonSKU != "" {
		return *p.AmazonSKU
	}
	return p.SKU
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

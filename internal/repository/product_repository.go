package repository

import (
	"context"

	"mcfbridge/internal/models"

	"gorm.io/gorm"
)

// ProductRepository persists store products.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id string) (*models.Product, error)
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
	FindAll(ctx context.Context, limit, offset int) ([]models.Product, int64, error)
	// FindLinked returns products carrying an Amazon-linked SKU: an Amazon
	// SKU tag or, failing that, a non-empty store SKU.
	FindLinked(ctx context.Context) ([]models.Product, error)
	UpdateStock(ctx context.Context, id string, quantity int, status string) error
}

type gormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) ProductRepository {
	return &gormProductRepository{db: db}
}

func (r *gormProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *gormProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *gormProductRepository) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *gormProductRepository) FindAll(ctx context.Context, limit, offset int) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := r.db.WithContext(ctx).Limit(limit).Offset(offset).Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *gormProductRepository) FindLinked(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("(amazon_sku IS NOT NULL AND amazon_sku != '') OR (sku IS NOT NULL AND sku != '')").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *gormProductRepository) UpdateStock(ctx context.Context, id string, quantity int, status string) error {
	return r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock_quantity": quantity,
			"stock_status":   status,
		}).Error
}

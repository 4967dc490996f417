package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB *gorm.DB
}

func New(databaseURL string) (*Database, error) {
	var db *gorm.DB
	var err error

	if strings.HasPrefix(databaseURL, "sqlite://") {
		// SQLite for development
		dbPath := strings.TrimPrefix(databaseURL, "sqlite://")
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	} else {
		// PostgreSQL for production
		db, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	createTablesSQL := `
	CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY,
		sku TEXT UNIQUE NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		short_description TEXT,
		brand TEXT,
		upc TEXT,
		ean TEXT,
		price TEXT,
		currency TEXT DEFAULT 'USD',
		weight_kg DECIMAL,
		length DECIMAL,
		width DECIMAL,
		height DECIMAL,
		images TEXT,
		stock_quantity INTEGER DEFAULT 0,
		stock_status TEXT DEFAULT 'outofstock',
		amazon_sku TEXT,
		amazon_asin TEXT,
		status TEXT DEFAULT 'draft',
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS orders (
		id UUID PRIMARY KEY,
		number TEXT UNIQUE NOT NULL,
		status TEXT DEFAULT 'pending',
		shipping_name TEXT,
		shipping_address1 TEXT,
		shipping_address2 TEXT,
		shipping_city TEXT,
		shipping_state TEXT,
		shipping_postcode TEXT,
		shipping_country TEXT,
		billing_phone TEXT,
		billing_email TEXT,
		mcf_order_id TEXT DEFAULT '',
		mcf_status TEXT DEFAULT '',
		submitted_at TIMESTAMPTZ,
		tracking_number TEXT DEFAULT '',
		carrier TEXT DEFAULT '',
		last_error TEXT DEFAULT '',
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS order_items (
		id UUID PRIMARY KEY,
		order_id UUID NOT NULL,
		product_id UUID,
		quantity INTEGER NOT NULL,
		created_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS sync_reports (
		id INTEGER PRIMARY KEY,
		updated INTEGER DEFAULT 0,
		skipped INTEGER DEFAULT 0,
		not_found INTEGER DEFAULT 0,
		errors INTEGER DEFAULT 0,
		details TEXT,
		timestamp TIMESTAMPTZ
	);
	`

	err = db.Exec(createTablesSQL).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

package main

import (
	"log"
	"strings"

	"mcfbridge/internal/api"
	"mcfbridge/internal/config"
	"mcfbridge/internal/database"
	"mcfbridge/internal/events"
	"mcfbridge/internal/fulfillment"
	"mcfbridge/internal/importer"
	"mcfbridge/internal/logger"
	"mcfbridge/internal/metrics"
	"mcfbridge/internal/repository"
	"mcfbridge/internal/services/amazon"
	syncpkg "mcfbridge/internal/sync"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	if err := cfg.ValidateCredentials(); err != nil {
		log.Fatal("Invalid SP-API credentials:", err)
	}

	zlog := logger.New(cfg.Env, cfg.LogLevel)
	defer zlog.Sync()

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	products := repository.NewGormProductRepository(db.DB)
	orders := repository.NewGormOrderRepository(db.DB)
	reports := repository.NewGormSyncReportRepository(db.DB)

	m := metrics.NewDefault()

	client := amazon.NewClient(amazon.Credentials{
		ClientID:      cfg.LWAClientID,
		ClientSecret:  cfg.LWAClientSecret,
		RefreshToken:  cfg.RefreshToken,
		MarketplaceID: cfg.MarketplaceID,
	}, amazon.NewMemoryTokenCache(), zlog, amazon.WithRequestCounter(m.APIRequests))

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.KafkaBrokers != "" {
		publisher = events.NewKafkaPublisher(
			strings.Split(cfg.KafkaBrokers, ","), cfg.BridgeEventTopic, zlog)
	}
	defer publisher.Close()

	reconciler := syncpkg.NewReconciler(client, products, reports, publisher, m, zlog)
	manager := fulfillment.NewManager(client, orders, publisher, m, zlog)
	imp := importer.New(client, products, zlog)

	server := api.New(cfg, zlog, api.Deps{
		Client:     client,
		Products:   products,
		Orders:     orders,
		Reports:    reports,
		Reconciler: reconciler,
		Manager:    manager,
		Importer:   imp,
	})

	if err := server.Start(); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

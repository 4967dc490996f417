package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"mcfbridge/internal/config"
	"mcfbridge/internal/database"
	"mcfbridge/internal/events"
	"mcfbridge/internal/fulfillment"
	"mcfbridge/internal/logger"
	"mcfbridge/internal/metrics"
	"mcfbridge/internal/repository"
	"mcfbridge/internal/services/amazon"
	syncpkg "mcfbridge/internal/sync"
	"mcfbridge/internal/worker"
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

	publisher := events.NewKafkaPublisher(
		strings.Split(cfg.KafkaBrokers, ","), cfg.BridgeEventTopic, zlog)
	defer publisher.Close()

	reconciler := syncpkg.NewReconciler(client, products, reports, publisher, m, zlog)
	manager := fulfillment.NewManager(client, orders, publisher, m, zlog)

	w := worker.New(cfg, zlog, manager, reconciler)

	zlog.Info("starting worker")
	go w.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	w.Stop()
}

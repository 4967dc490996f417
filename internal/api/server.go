package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"mcfbridge/internal/api/handlers"
	"mcfbridge/internal/api/middleware"
	"mcfbridge/internal/config"
	"mcfbridge/internal/fulfillment"
	"mcfbridge/internal/importer"
	"mcfbridge/internal/repository"
	"mcfbridge/internal/services/amazon"
	syncpkg "mcfbridge/internal/sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Server struct {
	config *config.Config
	logger *zap.Logger
	router *gin.Engine
	server *http.Server
}

type Deps struct {
	Client     *amazon.Client
	Products   repository.ProductRepository
	Orders     repository.OrderRepository
	Reports    repository.SyncReportRepository
	Reconciler *syncpkg.Reconciler
	Manager    *fulfillment.Manager
	Importer   *importer.Importer
}

func New(cfg *config.Config, logger *zap.Logger, deps Deps) *Server {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	connectionHandler := handlers.NewConnectionHandler(deps.Client, logger)
	productHandler := handlers.NewProductHandler(deps.Products, deps.Importer, logger)
	syncHandler := handlers.NewSyncHandler(deps.Reconciler, deps.Reports, logger)
	orderHandler := handlers.NewOrderHandler(deps.Manager, deps.Orders, logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		connection := v1.Group("/connection")
		{
			connection.POST("/test", connectionHandler.Test)
			connection.GET("/inventory", connectionHandler.Inventory)
		}

		products := v1.Group("/products")
		{
			products.GET("", productHandler.List)
			products.GET("/:id", productHandler.Get)
			products.GET("/importable", productHandler.ListImportable)
			products.POST("/import", productHandler.Import)
		}

		sync := v1.Group("/sync")
		{
			sync.POST("/run", syncHandler.Run)
			sync.GET("/report", syncHandler.Report)
		}

		orders := v1.Group("/orders")
		{
			orders.GET("/:id", orderHandler.Get)
			orders.POST("/:id/submit", orderHandler.Submit)
			orders.POST("/:id/refresh", orderHandler.Refresh)
			orders.POST("/:id/cancel", orderHandler.Cancel)
		}

		v1.POST("/fulfillment/preview", orderHandler.Preview)
	}

	return &Server{
		config: cfg,
		logger: logger,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("shutting down server")
	return s.server.Shutdown(ctx)
}

// Router exposes the Gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

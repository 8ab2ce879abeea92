package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nolalabs/analytics/internal/analytics"
	"github.com/nolalabs/analytics/internal/cache"
	"github.com/nolalabs/analytics/internal/catalog"
	"github.com/nolalabs/analytics/internal/common/config"
	"github.com/nolalabs/analytics/internal/common/db"
	"github.com/nolalabs/analytics/internal/common/kafka"
	"github.com/nolalabs/analytics/internal/common/logger"
	"github.com/nolalabs/analytics/internal/common/middleware"
	"github.com/nolalabs/analytics/internal/common/redis"
)

const salesImportedTopic = "sales.imported"

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	cfg, err := config.Load("analytics")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("analytics-service")

	// Connect to database
	database, err := db.Connect(cfg.Database, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Connect to Redis
	redisClient, err := redis.Connect(cfg.Redis, log)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize Kafka consumer for cache invalidation
	consumer := kafka.NewConsumer(cfg.Kafka, salesImportedTopic, log)
	defer consumer.Close()

	// Initialize cache
	queryCache := cache.New(redisClient, log)

	// Initialize repositories
	analyticsRepo := analytics.NewRepository(database.DB)
	catalogRepo := catalog.NewRepository(database.DB)

	// Initialize services
	analyticsService := analytics.NewService(analyticsRepo, queryCache, log)
	catalogService := catalog.NewService(catalogRepo, queryCache, log)

	// Initialize handlers
	analyticsHandler := analytics.NewHandler(analyticsService)
	catalogHandler := catalog.NewHandler(catalogService)

	mux := http.NewServeMux()

	// Apply middleware
	var handler http.Handler = mux
	handler = middleware.CORS(handler)
	handler = middleware.Logging(log)(handler)
	handler = middleware.Recovery(log)(handler)

	// Register routes with JWT protection
	analytics.SetupRoutes(mux, analyticsHandler, cfg.JWT.Secret)
	catalog.SetupRoutes(mux, catalogHandler, cfg.JWT.Secret)

	port := cfg.Service.Port
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Infof("🌐 Analytics API starting on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Start Kafka consumer worker
	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()

	go func() {
		log.Infof("Kafka consumer started for analytics-service on topic: %s", salesImportedTopic)

		for {
			select {
			case <-consumerCtx.Done():
				log.Info("Kafka consumer stopped")
				return
			default:
				err := consumer.Consume(consumerCtx, func(ctx context.Context, key, value []byte) error {
					return analyticsService.ProcessSalesEvent(ctx, value)
				})
				if err != nil {
					log.Errorf("Error consuming Kafka message: %v", err)
					time.Sleep(5 * time.Second)
				}
			}
		}
	}()

	// =============================================================
	// GRACEFUL SHUTDOWN
	// =============================================================
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("🛑 Shutting down server...")

	// Stop background workers
	cancelConsumer()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("✅ Server exited gracefully")
}

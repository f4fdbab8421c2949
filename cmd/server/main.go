package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shibam-max/payment-processing-platform/internal/api"
	"github.com/shibam-max/payment-processing-platform/internal/cache"
	"github.com/shibam-max/payment-processing-platform/internal/config"
	"github.com/shibam-max/payment-processing-platform/internal/events"
	"github.com/shibam-max/payment-processing-platform/internal/fraud"
	"github.com/shibam-max/payment-processing-platform/internal/gateway"
	"github.com/shibam-max/payment-processing-platform/internal/orchestrator"
	"github.com/shibam-max/payment-processing-platform/internal/repository"
	"github.com/shibam-max/payment-processing-platform/internal/telemetry"
)

func main() {
	// Initialize telemetry
	if err := telemetry.InitTelemetry("payment-engine"); err != nil {
		panic(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	}
	defer telemetry.Shutdown(context.Background())

	telemetry.Logger.Info("Starting Payment Engine")

	cfg := config.Load()

	// Connect to PostgreSQL
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		telemetry.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	paymentRepo := repository.NewPaymentRepository(db)
	merchantRepo := repository.NewMerchantRepository(db)

	if err := paymentRepo.InitDB(); err != nil {
		telemetry.Logger.Fatal("Failed to initialize payments schema", zap.Error(err))
	}
	if err := merchantRepo.InitDB(); err != nil {
		telemetry.Logger.Fatal("Failed to initialize merchants schema", zap.Error(err))
	}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})
	paymentCache := cache.NewRedisCache(redisClient)

	// Connect to Kafka
	publisher := events.NewKafkaPublisher(cfg.KafkaBrokers)
	defer publisher.Close()

	// Connect to NATS
	nc, err := nats.Connect(cfg.NatsURL)
	if err != nil {
		telemetry.Logger.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer nc.Close()
	alerter := events.NewNatsAlerter(nc)

	scorer := fraud.NewScorer(cfg.Risk)

	var gw gateway.Gateway
	if cfg.Gateway.Mode == "http" {
		gw = gateway.NewHTTPAdapter(nil, cfg.Gateway.BaseURL)
		telemetry.Logger.Info("Using HTTP gateway adapter", zap.String("url", cfg.Gateway.BaseURL))
	} else {
		gw = gateway.NewSimulator(cfg.Gateway)
		telemetry.Logger.Info("Using simulated gateway")
	}

	svc := orchestrator.New(cfg, paymentRepo, merchantRepo, paymentCache, scorer, gw, publisher, publisher, alerter)

	r := api.NewRouter(svc, merchantRepo, paymentRepo, paymentCache)

	// Setup HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Start server in goroutine
	go func() {
		telemetry.Logger.Info("Payment Engine starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			telemetry.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	telemetry.Logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		telemetry.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	telemetry.Logger.Info("Server exited")
}

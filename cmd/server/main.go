package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Abuxar/alif-luxury/internal/catalog"
	"github.com/Abuxar/alif-luxury/internal/checkout"
	"github.com/Abuxar/alif-luxury/internal/config"
	"github.com/Abuxar/alif-luxury/internal/fulfillment"
	"github.com/Abuxar/alif-luxury/internal/gateway"
	"github.com/Abuxar/alif-luxury/internal/httpapi"
	"github.com/Abuxar/alif-luxury/internal/metrics"
	"github.com/Abuxar/alif-luxury/internal/orders"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using process environment")
	}
	cfg := config.Load()

	if cfg.WebhookSecret == "" {
		// The webhook path answers 500 until this is fixed; the gateway
		// keeps retrying, nothing is lost, but it needs fixing.
		log.Warn("PAYMENT_WEBHOOK_SECRET is not set, all webhook deliveries will be rejected")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	db, err := catalog.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDB)
	cancel()
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Client().Disconnect(ctx); err != nil {
			log.WithError(err).Error("error disconnecting from MongoDB")
		}
	}()

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	err = orders.EnsureIndexes(ctx, db)
	cancel()
	if err != nil {
		log.WithError(err).Fatal("failed to create order indexes")
	}

	catalogRepo := catalog.NewMongoRepository(db)
	orderRepo := orders.NewMongoRepository(db)

	var seenCache fulfillment.SeenCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		seenCache = fulfillment.NewRedisSeenCache(redisClient)
	}

	var notifier fulfillment.Notifier = fulfillment.NopNotifier{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaNotifier := fulfillment.NewKafkaNotifier(cfg.KafkaBrokers, log)
		defer kafkaNotifier.Close()
		notifier = kafkaNotifier
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	paymentGateway := gateway.NewHostedGateway(cfg.PaymentAPIURL, cfg.PaymentAPIKey, cfg.GatewayTimeout, log)
	verifier := gateway.NewVerifier(cfg.WebhookSecret, gateway.DefaultTolerance)

	checkoutService := checkout.NewCheckoutService(paymentGateway, orderRepo, cfg.ClientURL, cfg.Currency, log)
	fulfillmentService := fulfillment.NewService(catalogRepo, orderRepo, seenCache, notifier, m, log)

	checkoutHandler := httpapi.NewCheckoutHandler(checkoutService, m, cfg.RequestTimeout, log)
	webhookHandler := httpapi.NewWebhookHandler(verifier, fulfillmentService, m, cfg.RequestTimeout, log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      httpapi.NewRouter(checkoutHandler, webhookHandler, m, log),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("storefront server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server exited")
}

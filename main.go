package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"vitamart/internal/config"
	"vitamart/internal/database"
	"vitamart/internal/logger"
	"vitamart/internal/services"
	"vitamart/pkg/momo"
	"vitamart/pkg/rabbitmq"

	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// --- Configuration ---
	cfg, err := config.Load(viper.New())
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck
	log.Infow("starting vitamart", cfg.LogFields()...)

	// --- Database ---
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}

	// --- RabbitMQ (optional) ---
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			return err
		}
		defer mqClient.Close()
		publisher = mqClient

		if err := mqClient.ConsumeOrderEvents(orderEventLogger(log)); err != nil {
			log.Warnw("failed to start order event consumer", "error", err)
		}
	} else {
		log.Infow("RABBITMQ_URL not set, order events disabled")
	}

	// --- HTTP ---
	app, err := NewApp(cfg, Dependencies{
		DB:        db,
		Gateway:   momo.NewClient(momo.Config{Endpoint: cfg.MoMo.Endpoint, Timeout: cfg.MoMo.Timeout}),
		Publisher: publisher,
		Log:       log,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("listening", "port", cfg.AppPort)
		errCh <- app.Listen(cfg.AppPort)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		log.Infow("shutting down", "signal", sig.String())
	}

	if err := app.Shutdown(); err != nil {
		log.Errorw("error during shutdown", "error", err)
	}
	log.Infow("server stopped")
	return nil
}

// orderEventLogger records order events consumed from the broker.
func orderEventLogger(log *zap.SugaredLogger) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var event services.OrderEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			return fmt.Errorf("malformed order event: %w", err)
		}
		log.Infow("order event", "routingKey", msg.RoutingKey, "orderId", event.OrderID, "status", event.Status, "total", event.Total)
		return nil
	}
}

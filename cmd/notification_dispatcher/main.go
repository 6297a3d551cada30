package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dental-clinic-backend/internal/config"
	"github.com/dental-clinic-backend/internal/data/mongo"
	"github.com/dental-clinic-backend/internal/logger"
	"github.com/dental-clinic-backend/internal/notification_dispatcher"
	"github.com/dental-clinic-backend/internal/platform/messaging/consumers"
	"github.com/dental-clinic-backend/internal/platform/messaging/producers"
	"github.com/dental-clinic-backend/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("notification_dispatcher")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize MongoDB; delivered notifications are recorded there
	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka consumer and DLQ producer
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ producer", "error", err)
		os.Exit(1)
	}

	// Initialize repository and event handler
	notificationRepo := mongo.NewNotificationRepository(log, mongoDB.Database())
	eventHandler := notification_dispatcher.NewNotificationEventHandler(log, notificationRepo, dlqProducer)

	// Start consuming notification events
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting notification event consumer",
			"topic", cfg.Kafka.NotificationTopic,
			"group_id", cfg.Kafka.ConsumerGroup)
		if err := kafkaConsumer.Subscribe(appCtx, cfg.Kafka.NotificationTopic, cfg.Kafka.ConsumerGroup, eventHandler.HandleMessage); err != nil {
			log.Error("Consumer stopped with error", "error", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	<-quit
	log.Info("Shutdown signal received")

	// Cancel the application context; this stops the consumer loop
	cancelAppCtx()
	wg.Wait()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	if err = dlqProducer.Close(); err != nil {
		log.Error("Error closing DLQ producer", "error", err)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	log.Info("Notification dispatcher shutdown completed")
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dental-clinic-backend/internal/api"
	"github.com/dental-clinic-backend/internal/api/service"
	"github.com/dental-clinic-backend/internal/config"
	"github.com/dental-clinic-backend/internal/data/mongo"
	"github.com/dental-clinic-backend/internal/data/postgres"
	"github.com/dental-clinic-backend/internal/logger"
	"github.com/dental-clinic-backend/internal/outbox_poller"
	"github.com/dental-clinic-backend/internal/platform/messaging/producers"
	"github.com/dental-clinic-backend/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer for the notification topic
	notificationProducer, err := producers.NewNotificationEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize notification Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	patientRepo := postgres.NewPatientRepository(log, postgresDB)
	appointmentRepo := postgres.NewAppointmentRepository(log, postgresDB)
	paymentRepo := postgres.NewPaymentRepository(log, postgresDB)
	treatmentRepo := postgres.NewTreatmentRepository(log, postgresDB)
	priceListRepo := postgres.NewPriceListRepository(log, postgresDB)
	auditRepo := postgres.NewAuditRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	reconciler := postgres.NewReconciler(log, postgresDB)
	notificationRepo := mongo.NewNotificationRepository(log, mongoDB.Database())

	// Initialize services
	paymentService := service.NewPaymentService(log, postgresDB, paymentRepo, patientRepo, appointmentRepo, treatmentRepo, auditRepo, outboxRepo, reconciler)
	adminService, err := service.NewAdminService(log, patientRepo, paymentService, cfg.WorkerPool.Size)
	if err != nil {
		log.Error("Failed to initialize admin service", "error", err)
		os.Exit(1)
	}

	services := api.Services{
		Patients:      service.NewPatientService(log, patientRepo),
		Appointments:  service.NewAppointmentService(log, postgresDB, appointmentRepo, patientRepo, outboxRepo),
		Payments:      paymentService,
		Treatments:    service.NewTreatmentService(log, postgresDB, treatmentRepo, priceListRepo, patientRepo),
		PriceList:     service.NewPriceListService(log, priceListRepo),
		Reports:       service.NewReportService(log, paymentRepo, patientRepo, appointmentRepo),
		Admin:         adminService,
		Notifications: service.NewNotificationService(log, notificationRepo),
	}

	// Initialize REST server
	server := api.NewServer(log, cfg, services)
	log.Info("REST server initialized")

	// Initialize outbox poller; it runs alongside the HTTP server so queued
	// notification events reach Kafka without a separate binary
	publisher := outbox_poller.NewNotificationPublisher(outboxRepo, notificationProducer, log)
	poller := outbox_poller.NewPoller(&cfg.Outbox, outboxRepo, publisher, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Start(appCtx)
	}()

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context; this also stops the poller
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	wg.Wait()

	adminService.Shutdown()

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if err = notificationProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}

package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dental-clinic-backend/internal/api/handler"
	"github.com/dental-clinic-backend/internal/api/service"
	"github.com/dental-clinic-backend/internal/config"
)

// Services bundles everything the HTTP layer exposes
type Services struct {
	Patients      service.PatientService
	Appointments  service.AppointmentService
	Payments      service.PaymentService
	Treatments    service.TreatmentService
	PriceList     service.PriceListService
	Reports       service.ReportService
	Admin         service.AdminService
	Notifications service.NotificationService
}

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	httpRouter *gin.Engine
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(log *slog.Logger, cfg *config.Config, svcs Services) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	setupRouter(log, httpRouter, cfg,
		handler.NewPatientHandler(log, svcs.Patients),
		handler.NewAppointmentHandler(log, svcs.Appointments),
		handler.NewPaymentHandler(log, svcs.Payments),
		handler.NewTreatmentHandler(log, svcs.Treatments),
		handler.NewPriceListHandler(log, svcs.PriceList),
		handler.NewReportHandler(log, svcs.Reports),
		handler.NewAdminHandler(log, svcs.Admin),
		handler.NewNotificationHandler(log, svcs.Notifications),
	)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server with a timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.httpServer.WriteTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}

	return nil
}

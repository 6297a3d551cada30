package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dental-clinic-backend/internal/api/handler"
	"github.com/dental-clinic-backend/internal/api/middleware"
	"github.com/dental-clinic-backend/internal/config"
)

// setupRouter configures API routes and middleware for the application.
// All clinic endpoints require authentication; write access to the ledger is
// limited by role.
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	cfg *config.Config,
	patientHandler *handler.PatientHandler,
	appointmentHandler *handler.AppointmentHandler,
	paymentHandler *handler.PaymentHandler,
	treatmentHandler *handler.TreatmentHandler,
	priceListHandler *handler.PriceListHandler,
	reportHandler *handler.ReportHandler,
	adminHandler *handler.AdminHandler,
	notificationHandler *handler.NotificationHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))

	anyStaff := middleware.RequireRoles(middleware.RoleReceptionist, middleware.RoleDoctor, middleware.RoleSystemAdmin)
	reporting := middleware.RequireRoles(middleware.RoleDoctor, middleware.RoleSystemAdmin)
	adminOnly := middleware.RequireRoles(middleware.RoleSystemAdmin)

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	v1.Use(middleware.Authenticate(logger, cfg.Auth.JWTSecret, cfg.Auth.Issuer))
	{
		// Patient registry
		patients := v1.Group("/patients", anyStaff)
		{
			patients.POST("", patientHandler.Create)
			patients.GET("", patientHandler.List)
			patients.GET("/search", patientHandler.Search)
			patients.GET("/outstanding", paymentHandler.GetOutstanding)
			patients.GET("/:id", patientHandler.GetByID)
			patients.PUT("/:id", patientHandler.Update)
			patients.DELETE("/:id", patientHandler.Deactivate)

			patients.GET("/:id/appointments", appointmentHandler.ListByPatient)
			patients.GET("/:id/payments", paymentHandler.GetPatientPayments)
			patients.GET("/:id/payment-summary", paymentHandler.GetPatientSummary)
			patients.POST("/:id/recalculate-payments", paymentHandler.Recalculate)
			patients.GET("/:id/treatment-plans", treatmentHandler.ListByPatient)
			patients.GET("/:id/notifications", notificationHandler.ListByPatient)
		}

		// Scheduling
		appointments := v1.Group("/appointments", anyStaff)
		{
			appointments.POST("", appointmentHandler.Create)
			appointments.GET("", appointmentHandler.List)
			appointments.GET("/:id", appointmentHandler.GetByID)
			appointments.PUT("/:id", appointmentHandler.Reschedule)
			appointments.PATCH("/:id/status", appointmentHandler.UpdateStatus)
			appointments.POST("/:id/call", appointmentHandler.Call)
			appointments.DELETE("/:id", appointmentHandler.Cancel)
		}

		// Payment ledger. Reversals are privileged.
		payments := v1.Group("/payments")
		{
			payments.POST("", anyStaff, paymentHandler.Create)
			payments.GET("", anyStaff, paymentHandler.List)
			payments.GET("/:id", anyStaff, paymentHandler.GetByID)
			payments.DELETE("/:id", adminOnly, paymentHandler.Delete)
		}

		// Treatment planning
		treatments := v1.Group("/treatment-plans", anyStaff)
		{
			treatments.POST("", treatmentHandler.Create)
			treatments.GET("/:id", treatmentHandler.GetByID)
			treatments.DELETE("/:id", treatmentHandler.Delete)
		}

		// Price list
		pricelist := v1.Group("/price-list")
		{
			pricelist.GET("", anyStaff, priceListHandler.List)
			pricelist.GET("/:id", anyStaff, priceListHandler.GetByID)
			pricelist.POST("", adminOnly, priceListHandler.Create)
			pricelist.PUT("/:id", adminOnly, priceListHandler.Update)
			pricelist.DELETE("/:id", adminOnly, priceListHandler.Delete)
		}

		// Reporting
		reports := v1.Group("/reports", reporting)
		{
			reports.GET("/revenue", reportHandler.GetRevenue)
			reports.GET("/revenue/monthly", reportHandler.GetRevenueByMonth)
			reports.GET("/appointments/monthly", reportHandler.GetAppointmentsByMonth)
			reports.GET("/dashboard", reportHandler.GetDashboard)
		}

		// Notification history
		notifications := v1.Group("/notifications", anyStaff)
		{
			notifications.GET("/recent", notificationHandler.ListRecent)
		}

		// Maintenance
		admin := v1.Group("/admin", adminOnly)
		{
			admin.POST("/recalculate-payments", adminHandler.RecalculateAll)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}

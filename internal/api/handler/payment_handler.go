package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dental-clinic-backend/internal/api/middleware"
	"github.com/dental-clinic-backend/internal/api/service"
	"github.com/dental-clinic-backend/internal/domain/appointment"
	"github.com/dental-clinic-backend/internal/domain/patient"
	"github.com/dental-clinic-backend/internal/domain/payment"
)

// PaymentHandler handles HTTP requests for the payment ledger
type PaymentHandler struct {
	paymentService service.PaymentService
	logger         *slog.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(logger *slog.Logger, paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// Create records a payment against a patient, optionally linked to an
// appointment. The ledger write, reconciliation, and audit trail commit
// together or not at all.
func (h *PaymentHandler) Create(c *gin.Context) {
	var req AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		RespondBadRequest(c, "Invalid patient ID")
		return
	}

	var appointmentID *uuid.UUID
	if req.AppointmentID != "" {
		id, err := uuid.Parse(req.AppointmentID)
		if err != nil {
			RespondBadRequest(c, "Invalid appointment ID")
			return
		}
		appointmentID = &id
	}

	paymentDate, err := time.Parse(time.RFC3339, req.PaymentDate)
	if err != nil {
		// Accept a bare date as well; the front desk rarely cares about time
		paymentDate, err = time.Parse("2006-01-02", req.PaymentDate)
		if err != nil {
			RespondBadRequest(c, "Invalid payment date, expected RFC3339 or YYYY-MM-DD")
			return
		}
	}

	record, err := h.paymentService.AddPayment(c.Request.Context(), &service.AddPaymentRequest{
		PatientID:     patientID,
		AppointmentID: appointmentID,
		Amount:        req.Amount,
		PaymentDate:   paymentDate,
		Notes:         req.Notes,
		ActorID:       middleware.GetUserID(c),
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		var patientNotFound patient.ErrPatientNotFound
		var apptNotFound appointment.ErrAppointmentNotFound
		switch {
		case errors.As(err, &patientNotFound):
			RespondNotFound(c, "Patient not found")
		case errors.As(err, &apptNotFound):
			RespondNotFound(c, "Appointment not found")
		case isValidationError(err):
			RespondBadRequest(c, err.Error())
		default:
			h.logger.Error("Failed to record payment", "patient_id", req.PatientID, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, mapPaymentToResponse(&record.Transaction, record.PatientName))
}

// Delete reverses a payment. The ledger row is removed and the patient's
// cached totals are rebuilt in the same transaction.
func (h *PaymentHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "Invalid payment ID")
	if !ok {
		return
	}

	err := h.paymentService.DeletePayment(c.Request.Context(), id, middleware.GetUserID(c), middleware.GetCorrelationID(c))
	if err != nil {
		var notFound payment.ErrPaymentNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Payment not found")
			return
		}
		h.logger.Error("Failed to delete payment", "payment_id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondNoContent(c)
}

// GetByID returns one ledger entry
func (h *PaymentHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "Invalid payment ID")
	if !ok {
		return
	}

	record, err := h.paymentService.GetPaymentByID(c.Request.Context(), id)
	if err != nil {
		var notFound payment.ErrPaymentNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Payment not found")
			return
		}
		h.logger.Error("Failed to get payment", "payment_id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapPaymentToResponse(&record.Transaction, record.PatientName))
}

// GetPatientSummary returns a patient's financial position with full history
func (h *PaymentHandler) GetPatientSummary(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "Invalid patient ID")
	if !ok {
		return
	}

	summary, err := h.paymentService.GetPatientPaymentSummary(c.Request.Context(), id)
	if err != nil {
		var notFound patient.ErrPatientNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Patient not found")
			return
		}
		h.logger.Error("Failed to get payment summary", "patient_id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapSummaryToResponse(summary, true))
}

// GetPatientPayments returns a patient's ledger entries, newest first
func (h *PaymentHandler) GetPatientPayments(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "Invalid patient ID")
	if !ok {
		return
	}

	records, err := h.paymentService.GetPatientPayments(c.Request.Context(), id)
	if err != nil {
		var notFound patient.ErrPatientNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Patient not found")
			return
		}
		h.logger.Error("Failed to get patient payments", "patient_id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapRecordsToResponses(records))
}

// List returns ledger entries across patients; optional ?start= and ?end=
// bound the payment date (RFC3339 or YYYY-MM-DD).
func (h *PaymentHandler) List(c *gin.Context) {
	start, ok := parseTimeQuery(c, "start")
	if !ok {
		return
	}
	end, ok := parseTimeQuery(c, "end")
	if !ok {
		return
	}

	records, err := h.paymentService.GetAllPayments(c.Request.Context(), start, end)
	if err != nil {
		h.logger.Error("Failed to list payments", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapRecordsToResponses(records))
}

// GetOutstanding returns active patients who still owe money, largest debt first
func (h *PaymentHandler) GetOutstanding(c *gin.Context) {
	summaries, err := h.paymentService.GetPatientsWithOutstandingBalance(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get outstanding balances", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]PaymentSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		responses = append(responses, mapSummaryToResponse(s, false))
	}
	RespondOK(c, responses)
}

// Recalculate rebuilds one patient's cached totals from the ledger
func (h *PaymentHandler) Recalculate(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "Invalid patient ID")
	if !ok {
		return
	}

	if err := h.paymentService.RecalculatePaymentTotals(c.Request.Context(), id); err != nil {
		var notFound patient.ErrPatientNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Patient not found")
			return
		}
		h.logger.Error("Failed to recalculate payment totals", "patient_id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondNoContent(c)
}

// parseTimeQuery reads an optional time bound from the query string
func parseTimeQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		t, err = time.Parse("2006-01-02", raw)
		if err != nil {
			RespondBadRequest(c, "Invalid '"+name+"' parameter, expected RFC3339 or YYYY-MM-DD")
			return nil, false
		}
	}
	return &t, true
}

// mapPaymentToResponse maps a ledger entry to a response DTO
func mapPaymentToResponse(entry *payment.Transaction, patientName string) PaymentResponse {
	resp := PaymentResponse{
		ID:          entry.ID.String(),
		PatientID:   entry.PatientID.String(),
		PatientName: patientName,
		Amount:      entry.Amount,
		PaymentDate: entry.PaymentDate.Format(time.RFC3339),
		Notes:       entry.Notes,
		CreatedBy:   entry.CreatedBy,
		CreatedAt:   entry.CreatedAt.Format(time.RFC3339),
	}
	if entry.AppointmentID != nil {
		resp.AppointmentID = entry.AppointmentID.String()
	}
	return resp
}

func mapRecordsToResponses(records []*payment.Record) []PaymentResponse {
	responses := make([]PaymentResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, mapPaymentToResponse(&r.Transaction, r.PatientName))
	}
	return responses
}

// mapSummaryToResponse maps a patient summary; includePayments controls
// whether the full history rides along.
func mapSummaryToResponse(s *payment.PatientSummary, includePayments bool) PaymentSummaryResponse {
	resp := PaymentSummaryResponse{
		PatientID:        s.PatientID.String(),
		PatientName:      s.PatientName,
		TotalCost:        s.TotalCost,
		TotalPaid:        s.TotalPaid,
		RemainingBalance: s.RemainingBalance,
	}
	if includePayments {
		resp.Payments = mapRecordsToResponses(s.Payments)
	}
	return resp
}

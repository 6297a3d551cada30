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
)

// AppointmentHandler handles HTTP requests for scheduling operations
type AppointmentHandler struct {
	appointmentService service.AppointmentService
	logger             *slog.Logger
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(logger *slog.Logger, appointmentService service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentService: appointmentService,
		logger:             logger,
	}
}

// Create books a new appointment
func (h *AppointmentHandler) Create(c *gin.Context) {
	var req ScheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	svcReq, err := mapScheduleRequest(&req)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	appt, err := h.appointmentService.ScheduleAppointment(c.Request.Context(), svcReq)
	if err != nil {
		var notFound patient.ErrPatientNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Patient not found")
			return
		}
		if isValidationError(err) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to schedule appointment", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapAppointmentToResponse(appt))
}

// GetByID retrieves one appointment
func (h *AppointmentHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "Invalid appointment ID")
	if !ok {
		return
	}

	appt, err := h.appointmentService.GetAppointment(c.Request.Context(), id)
	if err != nil {
		var notFound appointment.ErrAppointmentNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Appointment not found")
			return
		}
		h.logger.Error("Failed to get appointment", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapAppointmentToResponse(appt))
}

// Reschedule moves an appointment to a new slot and notifies the patient
func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "Invalid appointment ID")
	if !ok {
		return
	}

	var req ScheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	svcReq, err := mapScheduleRequest(&req)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	appt, err := h.appointmentService.RescheduleAppointment(c.Request.Context(), id, svcReq, middleware.GetCorrelationID(c))
	if err != nil {
		var notFound appointment.ErrAppointmentNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Appointment not found")
			return
		}
		if isValidationError(err) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to reschedule appointment", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapAppointmentToResponse(appt))
}

// UpdateStatus moves an appointment through its lifecycle
func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "Invalid appointment ID")
	if !ok {
		return
	}

	var req UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	err := h.appointmentService.UpdateAppointmentStatus(c.Request.Context(), id, appointment.Status(req.Status))
	if err != nil {
		var notFound appointment.ErrAppointmentNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Appointment not found")
			return
		}
		if isValidationError(err) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to update appointment status", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondNoContent(c)
}

// Cancel marks an appointment Cancelled. The record stays for history.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "Invalid appointment ID")
	if !ok {
		return
	}

	if err := h.appointmentService.CancelAppointment(c.Request.Context(), id); err != nil {
		var notFound appointment.ErrAppointmentNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Appointment not found")
			return
		}
		h.logger.Error("Failed to cancel appointment", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondNoContent(c)
}

// Call marks the appointment Notified and queues a patient notification
func (h *AppointmentHandler) Call(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "Invalid appointment ID")
	if !ok {
		return
	}

	if err := h.appointmentService.CallPatient(c.Request.Context(), id, middleware.GetCorrelationID(c)); err != nil {
		var notFound appointment.ErrAppointmentNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Appointment not found")
			return
		}
		h.logger.Error("Failed to call patient", "appointment_id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondNoContent(c)
}

// ListByPatient returns a patient's appointments, newest first
func (h *AppointmentHandler) ListByPatient(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "Invalid patient ID")
	if !ok {
		return
	}

	appts, err := h.appointmentService.ListAppointmentsByPatient(c.Request.Context(), id)
	if err != nil {
		var notFound patient.ErrPatientNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Patient not found")
			return
		}
		h.logger.Error("Failed to list appointments", "patient_id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapAppointmentsToResponses(appts))
}

// List returns appointments filtered by query parameters. ?status= filters by
// lifecycle state, ?start=&end= (YYYY-MM-DD) selects a range, ?date= a single
// day. With no parameters it returns today's schedule.
func (h *AppointmentHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	if status := c.Query("status"); status != "" {
		appts, err := h.appointmentService.ListAppointmentsByStatus(ctx, appointment.Status(status))
		if err != nil {
			if isValidationError(err) {
				RespondBadRequest(c, err.Error())
				return
			}
			h.logger.Error("Failed to list appointments by status", "status", status, "error", err)
			RespondInternalError(c)
			return
		}
		RespondOK(c, mapAppointmentsToResponses(appts))
		return
	}

	if c.Query("start") != "" || c.Query("end") != "" {
		start, err := time.Parse("2006-01-02", c.Query("start"))
		if err != nil {
			RespondBadRequest(c, "Invalid 'start' parameter, expected YYYY-MM-DD")
			return
		}
		end, err := time.Parse("2006-01-02", c.Query("end"))
		if err != nil {
			RespondBadRequest(c, "Invalid 'end' parameter, expected YYYY-MM-DD")
			return
		}
		appts, err := h.appointmentService.ListAppointmentsByDateRange(ctx, start, end)
		if err != nil {
			if isValidationError(err) {
				RespondBadRequest(c, err.Error())
				return
			}
			h.logger.Error("Failed to list appointments by range", "error", err)
			RespondInternalError(c)
			return
		}
		RespondOK(c, mapAppointmentsToResponses(appts))
		return
	}

	date := time.Now()
	if dateParam := c.Query("date"); dateParam != "" {
		parsed, err := time.Parse("2006-01-02", dateParam)
		if err != nil {
			RespondBadRequest(c, "Invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	appts, err := h.appointmentService.ListAppointmentsByDate(ctx, date)
	if err != nil {
		h.logger.Error("Failed to list appointments by date", "date", date.Format("2006-01-02"), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapAppointmentsToResponses(appts))
}

// mapScheduleRequest converts the HTTP DTO into the service request
func mapScheduleRequest(req *ScheduleAppointmentRequest) (*service.ScheduleAppointmentRequest, error) {
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, errors.New("invalid patient ID")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, errors.New("invalid date, expected YYYY-MM-DD")
	}
	return &service.ScheduleAppointmentRequest{
		PatientID: patientID,
		Date:      date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Notes:     req.Notes,
	}, nil
}

// mapAppointmentToResponse maps an appointment entity to a response DTO
func mapAppointmentToResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:         a.ID.String(),
		PatientID:  a.PatientID.String(),
		Date:       a.Date.Format("2006-01-02"),
		StartTime:  a.StartTime,
		EndTime:    a.EndTime,
		Status:     string(a.Status),
		Notes:      a.Notes,
		PaidAmount: a.PaidAmount,
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  a.UpdatedAt.Format(time.RFC3339),
	}
}

func mapAppointmentsToResponses(appts []*appointment.Appointment) []AppointmentResponse {
	responses := make([]AppointmentResponse, 0, len(appts))
	for _, a := range appts {
		responses = append(responses, mapAppointmentToResponse(a))
	}
	return responses
}

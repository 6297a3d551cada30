package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dental-clinic-backend/internal/api/service"
	"github.com/dental-clinic-backend/internal/domain/patient"
)

// PatientHandler handles HTTP requests for the patient registry
type PatientHandler struct {
	patientService service.PatientService
	logger         *slog.Logger
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(logger *slog.Logger, patientService service.PatientService) *PatientHandler {
	return &PatientHandler{
		patientService: patientService,
		logger:         logger,
	}
}

// Create registers a new patient
func (h *PatientHandler) Create(c *gin.Context) {
	var req RegisterPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	p, err := h.patientService.RegisterPatient(c.Request.Context(), req.FullName, req.Age, req.Gender, req.Phone, req.Address, req.MedicalHistory)
	if err != nil {
		if isValidationError(err) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to register patient", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapPatientToResponse(p))
}

// GetByID retrieves a patient by ID, returning 404 if not found
func (h *PatientHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "Invalid patient ID")
	if !ok {
		return
	}

	p, err := h.patientService.GetPatient(c.Request.Context(), id)
	if err != nil {
		var notFound patient.ErrPatientNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Patient not found")
			return
		}
		h.logger.Error("Failed to get patient", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapPatientToResponse(p))
}

// Update rewrites a patient's registry record
func (h *PatientHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "Invalid patient ID")
	if !ok {
		return
	}

	var req UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	p, err := h.patientService.UpdatePatient(c.Request.Context(), id, req.FullName, req.Age, req.Gender, req.Phone, req.Address, req.MedicalHistory)
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
		h.logger.Error("Failed to update patient", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapPatientToResponse(p))
}

// Deactivate marks a patient inactive without deleting history
func (h *PatientHandler) Deactivate(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "Invalid patient ID")
	if !ok {
		return
	}

	if err := h.patientService.DeactivatePatient(c.Request.Context(), id); err != nil {
		var notFound patient.ErrPatientNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Patient not found")
			return
		}
		h.logger.Error("Failed to deactivate patient", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondNoContent(c)
}

// List returns patients; ?active_only=true restricts to active records
func (h *PatientHandler) List(c *gin.Context) {
	activeOnly := c.Query("active_only") == "true"

	patients, err := h.patientService.ListPatients(c.Request.Context(), activeOnly)
	if err != nil {
		h.logger.Error("Failed to list patients", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]PatientResponse, 0, len(patients))
	for _, p := range patients {
		responses = append(responses, mapPatientToResponse(p))
	}
	RespondOK(c, responses)
}

// Search finds patients matching a name or phone fragment
func (h *PatientHandler) Search(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		RespondBadRequest(c, "Query parameter 'q' is required")
		return
	}

	patients, err := h.patientService.SearchPatients(c.Request.Context(), term)
	if err != nil {
		h.logger.Error("Failed to search patients", "term", term, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]PatientResponse, 0, len(patients))
	for _, p := range patients {
		responses = append(responses, mapPatientToResponse(p))
	}
	RespondOK(c, responses)
}

// parseUUIDParam reads the :id path parameter, responding 400 on garbage input
func parseUUIDParam(c *gin.Context, logger *slog.Logger, message string) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		logger.Error("Invalid ID parameter", "id", idParam, "error", err)
		RespondBadRequest(c, message)
		return uuid.Nil, false
	}
	return id, true
}

// mapPatientToResponse maps a patient entity to a response DTO
func mapPatientToResponse(p *patient.Patient) PatientResponse {
	return PatientResponse{
		ID:             p.ID.String(),
		FullName:       p.FullName,
		Age:            p.Age,
		Gender:         p.Gender,
		Phone:          p.Phone,
		Address:        p.Address,
		MedicalHistory: p.MedicalHistory,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      p.UpdatedAt.Format(time.RFC3339),
	}
}

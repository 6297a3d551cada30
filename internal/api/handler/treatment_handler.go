package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dental-clinic-backend/internal/api/service"
	"github.com/dental-clinic-backend/internal/domain/patient"
	"github.com/dental-clinic-backend/internal/domain/pricelist"
	"github.com/dental-clinic-backend/internal/domain/treatment"
)

// TreatmentHandler handles HTTP requests for treatment planning
type TreatmentHandler struct {
	treatmentService service.TreatmentService
	logger           *slog.Logger
}

// NewTreatmentHandler creates a new treatment handler
func NewTreatmentHandler(logger *slog.Logger, treatmentService service.TreatmentService) *TreatmentHandler {
	return &TreatmentHandler{
		treatmentService: treatmentService,
		logger:           logger,
	}
}

// Create builds a treatment plan from current price list values. An optional
// percentage or fixed discount rewrites the snapshotted prices.
func (h *TreatmentHandler) Create(c *gin.Context) {
	var req CreateTreatmentPlanRequest
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

	items := make([]*service.TreatmentItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		itemID, err := uuid.Parse(item.PriceListItemID)
		if err != nil {
			RespondBadRequest(c, "Invalid price list item ID")
			return
		}
		items = append(items, &service.TreatmentItemRequest{
			PriceListItemID: itemID,
			Quantity:        item.Quantity,
		})
	}

	var discount treatment.Discount
	switch {
	case req.DiscountPercentage != nil:
		discount, err = treatment.NewPercentageDiscount(*req.DiscountPercentage)
		if err != nil {
			RespondBadRequest(c, err.Error())
			return
		}
	case req.DiscountAmount != nil:
		discount = treatment.NewFixedDiscount(*req.DiscountAmount)
	}

	plan, err := h.treatmentService.CreatePlan(c.Request.Context(), patientID, req.Title, items, discount)
	if err != nil {
		var patientNotFound patient.ErrPatientNotFound
		var itemNotFound pricelist.ErrItemNotFound
		switch {
		case errors.As(err, &patientNotFound):
			RespondNotFound(c, "Patient not found")
		case errors.As(err, &itemNotFound):
			RespondBadRequest(c, "Unknown price list item: "+itemNotFound.ItemID.String())
		case isValidationError(err):
			RespondBadRequest(c, err.Error())
		default:
			h.logger.Error("Failed to create treatment plan", "patient_id", req.PatientID, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, mapPlanToResponse(plan))
}

// GetByID retrieves a plan with its items
func (h *TreatmentHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "Invalid treatment plan ID")
	if !ok {
		return
	}

	plan, err := h.treatmentService.GetPlan(c.Request.Context(), id)
	if err != nil {
		var notFound treatment.ErrPlanNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Treatment plan not found")
			return
		}
		h.logger.Error("Failed to get treatment plan", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapPlanToResponse(plan))
}

// ListByPatient returns a patient's treatment plans, newest first
func (h *TreatmentHandler) ListByPatient(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "Invalid patient ID")
	if !ok {
		return
	}

	plans, err := h.treatmentService.ListPlansByPatient(c.Request.Context(), id)
	if err != nil {
		var notFound patient.ErrPatientNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Patient not found")
			return
		}
		h.logger.Error("Failed to list treatment plans", "patient_id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]TreatmentPlanResponse, 0, len(plans))
	for _, plan := range plans {
		responses = append(responses, mapPlanToResponse(plan))
	}
	RespondOK(c, responses)
}

// Delete removes a plan and its items
func (h *TreatmentHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "Invalid treatment plan ID")
	if !ok {
		return
	}

	if err := h.treatmentService.DeletePlan(c.Request.Context(), id); err != nil {
		var notFound treatment.ErrPlanNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Treatment plan not found")
			return
		}
		h.logger.Error("Failed to delete treatment plan", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondNoContent(c)
}

// mapPlanToResponse maps a plan entity to a response DTO
func mapPlanToResponse(plan *treatment.Plan) TreatmentPlanResponse {
	items := make([]TreatmentItemResponse, 0, len(plan.Items))
	for _, item := range plan.Items {
		items = append(items, TreatmentItemResponse{
			ID:              item.ID.String(),
			PriceListItemID: item.PriceListItemID.String(),
			Name:            item.NameSnapshot,
			Price:           item.PriceSnapshot,
			Quantity:        item.Quantity,
			LineTotal:       item.LineTotal(),
		})
	}
	return TreatmentPlanResponse{
		ID:        plan.ID.String(),
		PatientID: plan.PatientID.String(),
		Title:     plan.Title,
		Items:     items,
		TotalCost: plan.TotalCost(),
		CreatedAt: plan.CreatedAt.Format(time.RFC3339),
	}
}

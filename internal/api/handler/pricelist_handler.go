package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dental-clinic-backend/internal/api/service"
	"github.com/dental-clinic-backend/internal/domain/pricelist"
)

// PriceListHandler handles HTTP requests for the procedure price list
type PriceListHandler struct {
	priceListService service.PriceListService
	logger           *slog.Logger
}

// NewPriceListHandler creates a new price list handler
func NewPriceListHandler(logger *slog.Logger, priceListService service.PriceListService) *PriceListHandler {
	return &PriceListHandler{
		priceListService: priceListService,
		logger:           logger,
	}
}

// Create adds a procedure to the price list
func (h *PriceListHandler) Create(c *gin.Context) {
	var req PriceListItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.priceListService.CreateItem(c.Request.Context(), req.Name, req.Category, req.DefaultPrice)
	if err != nil {
		if isValidationError(err) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to create price list item", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapPriceListItemToResponse(item))
}

// GetByID retrieves one price list item
func (h *PriceListHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "Invalid price list item ID")
	if !ok {
		return
	}

	item, err := h.priceListService.GetItem(c.Request.Context(), id)
	if err != nil {
		var notFound pricelist.ErrItemNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Price list item not found")
			return
		}
		h.logger.Error("Failed to get price list item", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapPriceListItemToResponse(item))
}

// Update rewrites a price list item. Existing treatment plans keep their
// snapshotted values.
func (h *PriceListHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "Invalid price list item ID")
	if !ok {
		return
	}

	var req PriceListItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	item, err := h.priceListService.UpdateItem(c.Request.Context(), id, req.Name, req.Category, req.DefaultPrice, isActive)
	if err != nil {
		var notFound pricelist.ErrItemNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Price list item not found")
			return
		}
		if isValidationError(err) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to update price list item", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapPriceListItemToResponse(item))
}

// Delete removes a price list item
func (h *PriceListHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "Invalid price list item ID")
	if !ok {
		return
	}

	if err := h.priceListService.DeleteItem(c.Request.Context(), id); err != nil {
		var notFound pricelist.ErrItemNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Price list item not found")
			return
		}
		h.logger.Error("Failed to delete price list item", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondNoContent(c)
}

// List returns price list items; ?active_only=true hides retired procedures
func (h *PriceListHandler) List(c *gin.Context) {
	activeOnly := c.Query("active_only") == "true"

	items, err := h.priceListService.ListItems(c.Request.Context(), activeOnly)
	if err != nil {
		h.logger.Error("Failed to list price list items", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]PriceListItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, mapPriceListItemToResponse(item))
	}
	RespondOK(c, responses)
}

// mapPriceListItemToResponse maps a price list item to a response DTO
func mapPriceListItemToResponse(item *pricelist.Item) PriceListItemResponse {
	return PriceListItemResponse{
		ID:           item.ID.String(),
		Name:         item.Name,
		Category:     item.Category,
		DefaultPrice: item.DefaultPrice,
		IsActive:     item.IsActive,
		CreatedAt:    item.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    item.UpdatedAt.Format(time.RFC3339),
	}
}

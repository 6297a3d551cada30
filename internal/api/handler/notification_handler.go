package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dental-clinic-backend/internal/api/service"
	"github.com/dental-clinic-backend/internal/domain/notification"
)

// NotificationHandler exposes the dispatched notification history
type NotificationHandler struct {
	notificationService service.NotificationService
	logger              *slog.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(logger *slog.Logger, notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

// ListByPatient returns a paginated dispatch history for one patient
func (h *NotificationHandler) ListByPatient(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "Invalid patient ID")
	if !ok {
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	logs, total, err := h.notificationService.GetPatientNotifications(c.Request.Context(), id, params.Page, params.PerPage)
	if err != nil {
		var notFound notification.ErrLogNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "No notifications found")
			return
		}
		h.logger.Error("Failed to list notifications", "patient_id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondWithPaginatedData(c, http.StatusOK, mapLogsToResponses(logs), params.Page, params.PerPage, int(total))
}

// ListRecent returns dispatches since ?since= (RFC3339, default last 24 hours)
func (h *NotificationHandler) ListRecent(c *gin.Context) {
	since := time.Now().Add(-24 * time.Hour)
	if sinceParam := c.Query("since"); sinceParam != "" {
		parsed, err := time.Parse(time.RFC3339, sinceParam)
		if err != nil {
			RespondBadRequest(c, "Invalid 'since' parameter, expected RFC3339")
			return
		}
		since = parsed
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	logs, err := h.notificationService.GetRecentNotifications(c.Request.Context(), since, params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to list recent notifications", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapLogsToResponses(logs))
}

// mapLogsToResponses maps notification logs to response DTOs
func mapLogsToResponses(logs []*notification.Log) []NotificationLogResponse {
	responses := make([]NotificationLogResponse, 0, len(logs))
	for _, l := range logs {
		responses = append(responses, NotificationLogResponse{
			EventID:       l.EventID.String(),
			Type:          string(l.Type),
			PatientID:     l.PatientID.String(),
			PatientName:   l.PatientName,
			Message:       l.Message,
			Status:        string(l.Status),
			CorrelationID: l.CorrelationID,
			CreatedAt:     l.CreatedAt.Format(time.RFC3339),
		})
	}
	return responses
}

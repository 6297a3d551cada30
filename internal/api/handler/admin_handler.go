package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/dental-clinic-backend/internal/api/service"
)

// AdminHandler handles privileged maintenance endpoints
type AdminHandler struct {
	adminService service.AdminService
	logger       *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(logger *slog.Logger, adminService service.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		logger:       logger,
	}
}

// RecalculateAll sweeps every patient and rebuilds cached appointment totals
// from the ledger. Individual failures are skipped; the response reports how
// many patients were actually processed.
func (h *AdminHandler) RecalculateAll(c *gin.Context) {
	processed, err := h.adminService.RecalculateAllPayments(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to run full reconciliation sweep", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, RecalculateAllResponse{PatientsProcessed: processed})
}

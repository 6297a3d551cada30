package handler

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dental-clinic-backend/internal/api/service"
)

// ReportHandler handles HTTP requests for revenue and dashboard reporting
type ReportHandler struct {
	reportService service.ReportService
	logger        *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(logger *slog.Logger, reportService service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// GetRevenue returns total revenue, optionally bounded by ?start= and ?end=
func (h *ReportHandler) GetRevenue(c *gin.Context) {
	start, ok := parseTimeQuery(c, "start")
	if !ok {
		return
	}
	end, ok := parseTimeQuery(c, "end")
	if !ok {
		return
	}

	total, err := h.reportService.GetTotalRevenue(c.Request.Context(), start, end)
	if err != nil {
		h.logger.Error("Failed to get total revenue", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, RevenueResponse{TotalRevenue: total})
}

// GetRevenueByMonth returns a year's revenue with all twelve months present;
// ?year= defaults to the current year.
func (h *ReportHandler) GetRevenueByMonth(c *gin.Context) {
	year := time.Now().Year()
	if yearParam := c.Query("year"); yearParam != "" {
		parsed, err := strconv.Atoi(yearParam)
		if err != nil || parsed < 2000 || parsed > 2200 {
			RespondBadRequest(c, "Invalid year")
			return
		}
		year = parsed
	}

	totals, err := h.reportService.GetRevenueByMonth(c.Request.Context(), year)
	if err != nil {
		h.logger.Error("Failed to get revenue by month", "year", year, "error", err)
		RespondInternalError(c)
		return
	}

	months := make([]MonthRevenueResponse, 0, 12)
	for m := time.January; m <= time.December; m++ {
		months = append(months, MonthRevenueResponse{
			Month:     int(m),
			MonthName: m.String(),
			Revenue:   totals[m],
		})
	}
	RespondOK(c, months)
}

// GetAppointmentsByMonth returns a year's appointment counts, twelve months,
// zero-filled; ?year= defaults to the current year.
func (h *ReportHandler) GetAppointmentsByMonth(c *gin.Context) {
	year := time.Now().Year()
	if yearParam := c.Query("year"); yearParam != "" {
		parsed, err := strconv.Atoi(yearParam)
		if err != nil || parsed < 2000 || parsed > 2200 {
			RespondBadRequest(c, "Invalid year")
			return
		}
		year = parsed
	}

	counts, err := h.reportService.GetAppointmentsByMonth(c.Request.Context(), year)
	if err != nil {
		h.logger.Error("Failed to get appointments by month", "year", year, "error", err)
		RespondInternalError(c)
		return
	}

	months := make([]MonthCountResponse, 0, 12)
	for m := time.January; m <= time.December; m++ {
		months = append(months, MonthCountResponse{
			Month:     int(m),
			MonthName: m.String(),
			Count:     counts[m],
		})
	}
	RespondOK(c, months)
}

// GetDashboard returns the clinic's headline figures
func (h *ReportHandler) GetDashboard(c *gin.Context) {
	stats, err := h.reportService.GetDashboardStats(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get dashboard stats", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, stats)
}

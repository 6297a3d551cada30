package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dental-clinic-backend/internal/domain/appointment"
	"github.com/dental-clinic-backend/internal/domain/patient"
	"github.com/dental-clinic-backend/internal/domain/payment"
)

// ReportServiceImpl implements the ReportService interface
type ReportServiceImpl struct {
	paymentRepo     payment.Repository
	patientRepo     patient.Repository
	appointmentRepo appointment.Repository
	logger          *slog.Logger
}

// NewReportService creates a new reporting service
func NewReportService(
	logger *slog.Logger,
	paymentRepo payment.Repository,
	patientRepo patient.Repository,
	appointmentRepo appointment.Repository,
) ReportService {
	return &ReportServiceImpl{
		paymentRepo:     paymentRepo,
		patientRepo:     patientRepo,
		appointmentRepo: appointmentRepo,
		logger:          logger,
	}
}

// GetTotalRevenue sums every ledger entry in the optional date range
func (s *ReportServiceImpl) GetTotalRevenue(ctx context.Context, start, end *time.Time) (decimal.Decimal, error) {
	return s.paymentRepo.TotalRevenue(ctx, start, end)
}

// GetRevenueByMonth returns the year's revenue with all twelve calendar months
// present. Months without payments report zero, so chart consumers never have
// to special-case gaps.
func (s *ReportServiceImpl) GetRevenueByMonth(ctx context.Context, year int) (map[time.Month]decimal.Decimal, error) {
	totals, err := s.paymentRepo.RevenueByMonth(ctx, year)
	if err != nil {
		return nil, err
	}

	filled := make(map[time.Month]decimal.Decimal, 12)
	for m := time.January; m <= time.December; m++ {
		if total, ok := totals[m]; ok {
			filled[m] = total
		} else {
			filled[m] = decimal.Zero
		}
	}

	return filled, nil
}

// GetAppointmentsByMonth returns the year's appointment counts with all twelve
// calendar months present, zero-filled like the revenue breakdown.
func (s *ReportServiceImpl) GetAppointmentsByMonth(ctx context.Context, year int) (map[time.Month]int, error) {
	counts, err := s.appointmentRepo.CountByMonth(ctx, year)
	if err != nil {
		return nil, err
	}

	filled := make(map[time.Month]int, 12)
	for m := time.January; m <= time.December; m++ {
		filled[m] = counts[m]
	}

	return filled, nil
}

// GetDashboardStats aggregates the landing-screen figures
func (s *ReportServiceImpl) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	active, err := s.patientRepo.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	newThisWeek, err := s.patientRepo.CountCreatedSince(ctx, weekAgo)
	if err != nil {
		return nil, err
	}

	byGender, err := s.patientRepo.CountByGender(ctx)
	if err != nil {
		return nil, err
	}

	byAgeGroup, err := s.patientRepo.CountByAgeGroup(ctx)
	if err != nil {
		return nil, err
	}

	byStatus, err := s.appointmentRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	revenue, err := s.paymentRepo.TotalRevenue(ctx, nil, nil)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		ActivePatients:      len(active),
		NewPatientsThisWeek: newThisWeek,
		PatientsByGender:    byGender,
		PatientsByAgeGroup:  byAgeGroup,
		AppointmentsByState: byStatus,
		TotalRevenue:        revenue,
	}, nil
}

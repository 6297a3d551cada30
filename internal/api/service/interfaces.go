package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dental-clinic-backend/internal/domain/appointment"
	"github.com/dental-clinic-backend/internal/domain/notification"
	"github.com/dental-clinic-backend/internal/domain/patient"
	"github.com/dental-clinic-backend/internal/domain/payment"
	"github.com/dental-clinic-backend/internal/domain/pricelist"
	"github.com/dental-clinic-backend/internal/domain/treatment"
)

// AddPaymentRequest carries everything needed to record a payment.
// AppointmentID is optional; nil records a patient-level credit.
type AddPaymentRequest struct {
	PatientID     uuid.UUID
	AppointmentID *uuid.UUID
	Amount        decimal.Decimal
	PaymentDate   time.Time
	Notes         string
	ActorID       string
	CorrelationID string
}

// PaymentService defines the payment ledger operations. Every mutation keeps
// the cached appointment totals consistent with the ledger before returning.
type PaymentService interface {
	// AddPayment validates and records a payment, reconciles the patient's
	// appointment totals, and writes the audit trail, all atomically. The
	// returned record carries the resolved display names.
	AddPayment(ctx context.Context, req *AddPaymentRequest) (*payment.Record, error)

	// DeletePayment removes a ledger entry and reconciles the affected
	// patient atomically. Returns ErrPaymentNotFound if it doesn't exist.
	DeletePayment(ctx context.Context, paymentID uuid.UUID, actorID, correlationID string) error

	// RecalculatePaymentTotals rebuilds every cached appointment total for
	// one patient from the ledger. Safe to run repeatedly.
	RecalculatePaymentTotals(ctx context.Context, patientID uuid.UUID) error

	// GetPatientPaymentSummary returns the patient's financial position with
	// full payment history.
	GetPatientPaymentSummary(ctx context.Context, patientID uuid.UUID) (*payment.PatientSummary, error)

	// GetPatientsWithOutstandingBalance returns active patients who owe
	// money (remaining balance strictly greater than zero), largest debt first.
	GetPatientsWithOutstandingBalance(ctx context.Context) ([]*payment.PatientSummary, error)

	// GetPatientPayments returns a patient's ledger entries, newest first
	GetPatientPayments(ctx context.Context, patientID uuid.UUID) ([]*payment.Record, error)

	// GetPaymentByID returns one ledger entry with display names resolved
	GetPaymentByID(ctx context.Context, paymentID uuid.UUID) (*payment.Record, error)

	// GetAllPayments returns ledger entries across all patients, optionally
	// bounded by payment date, newest first.
	GetAllPayments(ctx context.Context, start, end *time.Time) ([]*payment.Record, error)
}

// ReportService defines the read-only reporting operations
type ReportService interface {
	// GetTotalRevenue sums all ledger entries in the optional date range
	GetTotalRevenue(ctx context.Context, start, end *time.Time) (decimal.Decimal, error)

	// GetRevenueByMonth returns a year's revenue with every calendar month
	// present; months without payments report zero.
	GetRevenueByMonth(ctx context.Context, year int) (map[time.Month]decimal.Decimal, error)

	// GetAppointmentsByMonth returns a year's appointment counts with every
	// calendar month present; empty months report zero.
	GetAppointmentsByMonth(ctx context.Context, year int) (map[time.Month]int, error)

	// GetDashboardStats aggregates headline numbers for the landing screen
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
}

// DashboardStats carries the headline figures for the clinic dashboard
type DashboardStats struct {
	ActivePatients      int                        `json:"active_patients"`
	NewPatientsThisWeek int                        `json:"new_patients_this_week"`
	PatientsByGender    map[string]int             `json:"patients_by_gender"`
	PatientsByAgeGroup  map[string]int             `json:"patients_by_age_group"`
	AppointmentsByState map[appointment.Status]int `json:"appointments_by_state"`
	TotalRevenue        decimal.Decimal            `json:"total_revenue"`
}

// AdminService defines privileged maintenance operations
type AdminService interface {
	// RecalculateAllPayments sweeps every patient and rebuilds cached totals
	// from the ledger. Failures on individual patients are logged and
	// skipped; the count of successfully processed patients is returned.
	RecalculateAllPayments(ctx context.Context) (int, error)
}

// PatientService defines patient registry operations
type PatientService interface {
	RegisterPatient(ctx context.Context, fullName string, age int, gender, phone, address, medicalHistory string) (*patient.Patient, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
	UpdatePatient(ctx context.Context, id uuid.UUID, fullName string, age int, gender, phone, address, medicalHistory string) (*patient.Patient, error)
	DeactivatePatient(ctx context.Context, id uuid.UUID) error
	ListPatients(ctx context.Context, activeOnly bool) ([]*patient.Patient, error)
	SearchPatients(ctx context.Context, term string) ([]*patient.Patient, error)
}

// ScheduleAppointmentRequest carries the fields for booking a visit
type ScheduleAppointmentRequest struct {
	PatientID uuid.UUID
	Date      time.Time
	StartTime string
	EndTime   string
	Notes     string
}

// AppointmentService defines scheduling operations
type AppointmentService interface {
	ScheduleAppointment(ctx context.Context, req *ScheduleAppointmentRequest) (*appointment.Appointment, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	RescheduleAppointment(ctx context.Context, id uuid.UUID, req *ScheduleAppointmentRequest, correlationID string) (*appointment.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status appointment.Status) error
	CancelAppointment(ctx context.Context, id uuid.UUID) error
	ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error)
	ListAppointmentsByDate(ctx context.Context, date time.Time) ([]*appointment.Appointment, error)
	ListAppointmentsByDateRange(ctx context.Context, start, end time.Time) ([]*appointment.Appointment, error)
	ListAppointmentsByStatus(ctx context.Context, status appointment.Status) ([]*appointment.Appointment, error)

	// CallPatient marks the appointment Notified and queues a notification
	// event for the dispatcher, atomically.
	CallPatient(ctx context.Context, id uuid.UUID, correlationID string) error
}

// TreatmentItemRequest is one requested line in a new treatment plan
type TreatmentItemRequest struct {
	PriceListItemID uuid.UUID
	Quantity        int
}

// TreatmentService defines treatment planning operations
type TreatmentService interface {
	// CreatePlan snapshots current price list values into a new plan.
	// An optional discount is applied to every snapshotted line.
	CreatePlan(ctx context.Context, patientID uuid.UUID, title string, items []*TreatmentItemRequest, discount treatment.Discount) (*treatment.Plan, error)
	GetPlan(ctx context.Context, id uuid.UUID) (*treatment.Plan, error)
	ListPlansByPatient(ctx context.Context, patientID uuid.UUID) ([]*treatment.Plan, error)
	DeletePlan(ctx context.Context, id uuid.UUID) error
}

// PriceListService defines price list management operations
type PriceListService interface {
	CreateItem(ctx context.Context, name, category string, defaultPrice decimal.Decimal) (*pricelist.Item, error)
	GetItem(ctx context.Context, id uuid.UUID) (*pricelist.Item, error)
	UpdateItem(ctx context.Context, id uuid.UUID, name, category string, defaultPrice decimal.Decimal, isActive bool) (*pricelist.Item, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	ListItems(ctx context.Context, activeOnly bool) ([]*pricelist.Item, error)
}

// NotificationService exposes the dispatched notification history
type NotificationService interface {
	GetPatientNotifications(ctx context.Context, patientID uuid.UUID, page, perPage int) ([]*notification.Log, int64, error)
	GetRecentNotifications(ctx context.Context, since time.Time, page, perPage int) ([]*notification.Log, error)
}

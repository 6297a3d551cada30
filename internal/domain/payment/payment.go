package payment

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxAmount is the sanity ceiling for a single payment
var MaxAmount = decimal.NewFromInt(1_000_000)

// Validation errors. All are raised before any mutation takes place.
var (
	ErrInvalidAmount  = errors.New("payment amount must be greater than zero")
	ErrAmountTooLarge = errors.New("payment amount seems unusually high")
	ErrFutureDated    = errors.New("payment date cannot be in the future")
	ErrNotesTooLong   = errors.New("notes cannot exceed 500 characters")
	ErrEmptyActor     = errors.New("recording actor is required")

	// ErrAppointmentMismatch is returned when a payment targets an
	// appointment that belongs to a different patient.
	ErrAppointmentMismatch = errors.New("appointment does not belong to the patient")
)

// futureTolerance absorbs clock skew between the client and the server
const futureTolerance = 24 * time.Hour

// Transaction is one immutable ledger entry: money received from a patient,
// optionally attributed to a single appointment. A nil AppointmentID means a
// patient-level credit. Entries are never updated in place; corrections are
// modeled as delete + re-add.
type Transaction struct {
	ID            uuid.UUID       `json:"id"`
	PatientID     uuid.UUID       `json:"patient_id"`
	AppointmentID *uuid.UUID      `json:"appointment_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"payment_date"`
	Notes         string          `json:"notes"`
	CreatedBy     string          `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewTransaction builds a validated ledger entry with a fresh id and a
// server-assigned creation timestamp.
func NewTransaction(patientID uuid.UUID, appointmentID *uuid.UUID, amount decimal.Decimal, paymentDate time.Time, notes, createdBy string) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if amount.GreaterThanOrEqual(MaxAmount) {
		return nil, ErrAmountTooLarge
	}
	if paymentDate.After(time.Now().Add(futureTolerance)) {
		return nil, ErrFutureDated
	}
	if len(notes) > 500 {
		return nil, ErrNotesTooLong
	}
	if createdBy == "" {
		return nil, ErrEmptyActor
	}

	return &Transaction{
		ID:            uuid.New(),
		PatientID:     patientID,
		AppointmentID: appointmentID,
		Amount:        amount.Round(2),
		PaymentDate:   paymentDate,
		Notes:         notes,
		CreatedBy:     createdBy,
		CreatedAt:     time.Now(),
	}, nil
}

// Record is a ledger entry enriched with display fields resolved from
// collaborators after commit.
type Record struct {
	Transaction
	PatientName   string `json:"patient_name"`
	CreatedByName string `json:"created_by_name"`
}

// PatientSummary aggregates a patient's financial position. TotalPaid is
// derived from the ledger, TotalCost from the treatment-planning collaborator.
// RemainingBalance may be negative on overpayment; it is not clamped.
type PatientSummary struct {
	PatientID        uuid.UUID       `json:"patient_id"`
	PatientName      string          `json:"patient_name"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	Payments         []*Record       `json:"payments,omitempty"`
}

package appointment

import (
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status defines the appointment lifecycle states
type Status string

const (
	StatusScheduled  Status = "Scheduled"
	StatusNotified   Status = "Notified"
	StatusInProgress Status = "InProgress"
	StatusCompleted  Status = "Completed"
	StatusCancelled  Status = "Cancelled"
)

// Common errors
var (
	ErrInvalidStatus  = errors.New("invalid appointment status")
	ErrPastDate       = errors.New("appointment date cannot be in the past")
	ErrInvalidTime    = errors.New("time must be in HH:MM format")
	ErrEndBeforeStart = errors.New("end time must be after start time")
	ErrMissingPatient = errors.New("patient is required")
)

var timePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// ValidStatus reports whether s is a recognized appointment status
func ValidStatus(s Status) bool {
	switch s {
	case StatusScheduled, StatusNotified, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Appointment represents a scheduled visit. PaidAmount is a cached projection
// of the payment ledger and is written only by the reconciler.
type Appointment struct {
	ID         uuid.UUID       `json:"id"`
	PatientID  uuid.UUID       `json:"patient_id"`
	Date       time.Time       `json:"date"`
	StartTime  string          `json:"start_time"` // HH:MM, 24-hour
	EndTime    string          `json:"end_time"`   // HH:MM, 24-hour
	Status     Status          `json:"status"`
	Notes      string          `json:"notes"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewAppointment creates a Scheduled appointment after validating the slot.
// Zero-padded HH:MM strings compare correctly with plain string ordering.
func NewAppointment(patientID uuid.UUID, date time.Time, startTime, endTime, notes string) (*Appointment, error) {
	if patientID == uuid.Nil {
		return nil, ErrMissingPatient
	}
	if err := validateSlot(date, startTime, endTime); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Appointment{
		ID:         uuid.New(),
		PatientID:  patientID,
		Date:       date,
		StartTime:  startTime,
		EndTime:    endTime,
		Status:     StatusScheduled,
		Notes:      notes,
		PaidAmount: decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Reschedule replaces the slot and notes after validation
func (a *Appointment) Reschedule(date time.Time, startTime, endTime, notes string) error {
	if err := validateSlot(date, startTime, endTime); err != nil {
		return err
	}
	a.Date = date
	a.StartTime = startTime
	a.EndTime = endTime
	a.Notes = notes
	a.UpdatedAt = time.Now()
	return nil
}

// SetStatus transitions the appointment to the given status
func (a *Appointment) SetStatus(s Status) error {
	if !ValidStatus(s) {
		return ErrInvalidStatus
	}
	a.Status = s
	a.UpdatedAt = time.Now()
	return nil
}

func validateSlot(date time.Time, startTime, endTime string) error {
	today := time.Now().Truncate(24 * time.Hour)
	if date.Before(today) {
		return ErrPastDate
	}
	if !timePattern.MatchString(startTime) || !timePattern.MatchString(endTime) {
		return ErrInvalidTime
	}
	if endTime <= startTime {
		return ErrEndBeforeStart
	}
	return nil
}

package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages appointment persistence. Note there is deliberately no
// method that writes PaidAmount; that column belongs to the reconciler.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByPatientID(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)
	GetByDate(ctx context.Context, date time.Time) ([]*Appointment, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*Appointment, error)
	GetByStatus(ctx context.Context, status Status) ([]*Appointment, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
	CountByMonth(ctx context.Context, year int) (map[time.Month]int, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrAppointmentNotFound indicates a missing appointment record
type ErrAppointmentNotFound struct {
	AppointmentID uuid.UUID
}

func (e ErrAppointmentNotFound) Error() string {
	return "appointment not found: " + e.AppointmentID.String()
}

// Is implements the errors.Is interface for ErrAppointmentNotFound
func (e ErrAppointmentNotFound) Is(target error) bool {
	t, ok := target.(ErrAppointmentNotFound)
	if !ok {
		return false
	}
	if t.AppointmentID == uuid.Nil {
		return true
	}
	return e.AppointmentID == t.AppointmentID
}

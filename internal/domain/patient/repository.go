package patient

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages patient persistence
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	GetAll(ctx context.Context) ([]*Patient, error)
	GetActive(ctx context.Context) ([]*Patient, error)
	Search(ctx context.Context, term string) ([]*Patient, error)
	CountByGender(ctx context.Context) (map[string]int, error)
	CountByAgeGroup(ctx context.Context) (map[string]int, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrPatientNotFound indicates a missing patient record
type ErrPatientNotFound struct {
	PatientID uuid.UUID
}

func (e ErrPatientNotFound) Error() string {
	return "patient not found: " + e.PatientID.String()
}

// Is implements the errors.Is interface for ErrPatientNotFound
func (e ErrPatientNotFound) Is(target error) bool {
	t, ok := target.(ErrPatientNotFound)
	if !ok {
		return false
	}
	// An empty target PatientID matches any ErrPatientNotFound
	if t.PatientID == uuid.Nil {
		return true
	}
	return e.PatientID == t.PatientID
}

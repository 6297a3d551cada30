package treatment

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Repository manages treatment plan persistence
type Repository interface {
	Create(ctx context.Context, p *Plan) error
	GetByID(ctx context.Context, id uuid.UUID) (*Plan, error)
	GetByPatientID(ctx context.Context, patientID uuid.UUID) ([]*Plan, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateItemPrices(ctx context.Context, items []*Item) error
	TotalCostByPatient(ctx context.Context, patientID uuid.UUID) (decimal.Decimal, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrPlanNotFound indicates a missing treatment plan
type ErrPlanNotFound struct {
	PlanID uuid.UUID
}

func (e ErrPlanNotFound) Error() string {
	return "treatment plan not found: " + e.PlanID.String()
}

// Is implements the errors.Is interface for ErrPlanNotFound
func (e ErrPlanNotFound) Is(target error) bool {
	t, ok := target.(ErrPlanNotFound)
	if !ok {
		return false
	}
	if t.PlanID == uuid.Nil {
		return true
	}
	return e.PlanID == t.PlanID
}

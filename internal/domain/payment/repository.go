package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Repository manages ledger persistence. Entries are inserted and deleted,
// never updated; history queries return entries ordered by payment date
// descending with insertion order breaking ties.
type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByPatientID(ctx context.Context, patientID uuid.UUID) ([]*Transaction, error)
	GetAll(ctx context.Context, start, end *time.Time) ([]*Transaction, error)
	TotalPaidByPatient(ctx context.Context, patientID uuid.UUID) (decimal.Decimal, error)
	TotalRevenue(ctx context.Context, start, end *time.Time) (decimal.Decimal, error)
	RevenueByMonth(ctx context.Context, year int) (map[time.Month]decimal.Decimal, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrPaymentNotFound indicates a missing ledger entry
type ErrPaymentNotFound struct {
	PaymentID uuid.UUID
}

func (e ErrPaymentNotFound) Error() string {
	return "payment not found: " + e.PaymentID.String()
}

// Is implements the errors.Is interface for ErrPaymentNotFound
func (e ErrPaymentNotFound) Is(target error) bool {
	t, ok := target.(ErrPaymentNotFound)
	if !ok {
		return false
	}
	if t.PaymentID == uuid.Nil {
		return true
	}
	return e.PaymentID == t.PaymentID
}

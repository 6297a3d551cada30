package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Reconciler rebuilds the cached per-appointment paid totals from the ledger.
// Implementations must be idempotent and must be the only writers of the
// cached totals.
type Reconciler interface {
	ReconcilePatient(ctx context.Context, patientID uuid.UUID) error
	WithTx(tx pgx.Tx) Reconciler
}

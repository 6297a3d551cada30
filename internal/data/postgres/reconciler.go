package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dental-clinic-backend/internal/domain/payment"
	"github.com/dental-clinic-backend/internal/platform/persistence"
)

// Reconciler is the single writer of appointments.paid_amount. It recomputes
// the cached per-appointment totals from the payment ledger so the projection
// can never drift from the source of truth. Every other component treats
// paid_amount as read-only.
type Reconciler struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewReconciler creates a reconciler backed by the connection pool
func NewReconciler(logger *slog.Logger, db *persistence.PostgresDB) payment.Reconciler {
	return &Reconciler{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the reconciler with a transaction so recomputation commits
// atomically with the ledger mutation that triggered it.
func (r *Reconciler) WithTx(tx pgx.Tx) payment.Reconciler {
	return &Reconciler{
		querier: tx,
		logger:  r.logger,
	}
}

// ReconcilePatient recomputes paid_amount for every appointment of the given
// patient from the current ledger contents. The statement is idempotent:
// running it twice in a row leaves the rows unchanged, and rows whose total
// already matches the ledger are not touched at all. Unlinked payments
// (appointment_id IS NULL) contribute to no appointment.
func (r *Reconciler) ReconcilePatient(ctx context.Context, patientID uuid.UUID) error {
	query := `
		UPDATE appointments AS a
		SET paid_amount = ledger.total,
		updated_at = NOW()
		FROM (
			SELECT ap.id, COALESCE(SUM(pt.amount), 0) AS total
			FROM appointments ap
			LEFT JOIN payment_transactions pt ON pt.appointment_id = ap.id
			WHERE ap.patient_id = $1
			GROUP BY ap.id
		) AS ledger
		WHERE a.id = ledger.id
		AND a.paid_amount IS DISTINCT FROM ledger.total
	`

	_, err := r.querier.Exec(ctx, query, patientID)
	if err != nil {
		r.logger.Error("Failed to reconcile patient appointments", "patientID", patientID.String(), "error", err)
		return fmt.Errorf("failed to reconcile patient appointments: %w", err)
	}

	return nil
}

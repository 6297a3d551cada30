package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/dental-clinic-backend/internal/domain/payment"
	"github.com/dental-clinic-backend/internal/platform/persistence"
)

// PaymentRepository implements the payment.Repository interface for PostgreSQL.
// Ledger rows are append-only; the only mutation besides insert is delete.
type PaymentRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewPaymentRepository creates a new PostgreSQL payment repository
func NewPaymentRepository(logger *slog.Logger, db *persistence.PostgresDB) payment.Repository {
	return &PaymentRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *PaymentRepository) WithTx(tx pgx.Tx) payment.Repository {
	return &PaymentRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new ledger entry
func (r *PaymentRepository) Create(ctx context.Context, t *payment.Transaction) error {
	query := `
		INSERT INTO payment_transactions (id, patient_id, appointment_id, amount, payment_date, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.querier.Exec(ctx, query,
		t.ID,
		t.PatientID,
		t.AppointmentID,
		t.Amount,
		t.PaymentDate,
		t.Notes,
		t.CreatedBy,
		t.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create payment", "error", err)
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// GetByID retrieves a ledger entry by its ID
func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*payment.Transaction, error) {
	query := `
		SELECT id, patient_id, appointment_id, amount, payment_date, notes, created_by, created_at
		FROM payment_transactions
		WHERE id = $1
	`

	var t payment.Transaction
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.PatientID,
		&t.AppointmentID,
		&t.Amount,
		&t.PaymentDate,
		&t.Notes,
		&t.CreatedBy,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payment.ErrPaymentNotFound{PaymentID: id}
		}
		r.logger.Error("Failed to get payment", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return &t, nil
}

// Delete removes a ledger entry
func (r *PaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM payment_transactions WHERE id = $1`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete payment", "id", id.String(), "error", err)
		return fmt.Errorf("failed to delete payment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return payment.ErrPaymentNotFound{PaymentID: id}
	}

	return nil
}

// GetByPatientID retrieves a patient's ledger entries ordered by payment date
// descending, with insertion order breaking ties.
func (r *PaymentRepository) GetByPatientID(ctx context.Context, patientID uuid.UUID) ([]*payment.Transaction, error) {
	query := `
		SELECT id, patient_id, appointment_id, amount, payment_date, notes, created_by, created_at
		FROM payment_transactions
		WHERE patient_id = $1
		ORDER BY payment_date DESC, created_at ASC
	`

	rows, err := r.querier.Query(ctx, query, patientID)
	if err != nil {
		r.logger.Error("Failed to list payments by patient", "patientID", patientID.String(), "error", err)
		return nil, fmt.Errorf("failed to list payments by patient: %w", err)
	}
	defer rows.Close()

	return scanPayments(rows)
}

// GetAll retrieves ledger entries across all patients, newest first. Nil
// bounds leave that side of the date range open.
func (r *PaymentRepository) GetAll(ctx context.Context, start, end *time.Time) ([]*payment.Transaction, error) {
	query := `
		SELECT id, patient_id, appointment_id, amount, payment_date, notes, created_by, created_at
		FROM payment_transactions
		WHERE ($1::timestamptz IS NULL OR payment_date >= $1)
		  AND ($2::timestamptz IS NULL OR payment_date <= $2)
		ORDER BY payment_date DESC, created_at ASC
	`

	rows, err := r.querier.Query(ctx, query, start, end)
	if err != nil {
		r.logger.Error("Failed to list payments", "error", err)
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	return scanPayments(rows)
}

// TotalPaidByPatient sums every ledger entry for the patient, linked or not
func (r *PaymentRepository) TotalPaidByPatient(ctx context.Context, patientID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM payment_transactions
		WHERE patient_id = $1
	`

	var total decimal.Decimal
	if err := r.querier.QueryRow(ctx, query, patientID).Scan(&total); err != nil {
		r.logger.Error("Failed to sum payments by patient", "patientID", patientID.String(), "error", err)
		return decimal.Zero, fmt.Errorf("failed to sum payments by patient: %w", err)
	}

	return total, nil
}

// TotalRevenue sums all ledger entries, optionally bounded by payment date
func (r *PaymentRepository) TotalRevenue(ctx context.Context, start, end *time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM payment_transactions
		WHERE ($1::timestamptz IS NULL OR payment_date >= $1)
		  AND ($2::timestamptz IS NULL OR payment_date <= $2)
	`

	var total decimal.Decimal
	if err := r.querier.QueryRow(ctx, query, start, end).Scan(&total); err != nil {
		r.logger.Error("Failed to sum revenue", "error", err)
		return decimal.Zero, fmt.Errorf("failed to sum revenue: %w", err)
	}

	return total, nil
}

// RevenueByMonth sums a year's ledger entries grouped by calendar month.
// Months with no payments are absent from the map; callers zero-fill.
func (r *PaymentRepository) RevenueByMonth(ctx context.Context, year int) (map[time.Month]decimal.Decimal, error) {
	query := `
		SELECT EXTRACT(MONTH FROM payment_date)::int AS month, COALESCE(SUM(amount), 0)
		FROM payment_transactions
		WHERE EXTRACT(YEAR FROM payment_date) = $1
		GROUP BY month
	`

	rows, err := r.querier.Query(ctx, query, year)
	if err != nil {
		r.logger.Error("Failed to sum revenue by month", "year", year, "error", err)
		return nil, fmt.Errorf("failed to sum revenue by month: %w", err)
	}
	defer rows.Close()

	totals := make(map[time.Month]decimal.Decimal)
	for rows.Next() {
		var month int
		var total decimal.Decimal
		if err := rows.Scan(&month, &total); err != nil {
			return nil, fmt.Errorf("failed to scan month revenue: %w", err)
		}
		totals[time.Month(month)] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read month revenue: %w", err)
	}

	return totals, nil
}

func scanPayments(rows pgx.Rows) ([]*payment.Transaction, error) {
	var payments []*payment.Transaction
	for rows.Next() {
		var t payment.Transaction
		err := rows.Scan(
			&t.ID,
			&t.PatientID,
			&t.AppointmentID,
			&t.Amount,
			&t.PaymentDate,
			&t.Notes,
			&t.CreatedBy,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read payments: %w", err)
	}

	return payments, nil
}

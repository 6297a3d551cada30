package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dental-clinic-backend/internal/domain/appointment"
	"github.com/dental-clinic-backend/internal/platform/persistence"
)

// AppointmentRepository implements the appointment.Repository interface for
// PostgreSQL. It never writes the paid_amount column; that is reserved for the
// payment reconciler.
type AppointmentRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewAppointmentRepository creates a new PostgreSQL appointment repository
func NewAppointmentRepository(logger *slog.Logger, db *persistence.PostgresDB) appointment.Repository {
	return &AppointmentRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *AppointmentRepository) WithTx(tx pgx.Tx) appointment.Repository {
	return &AppointmentRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new appointment in the database
func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	query := `
		INSERT INTO appointments (id, patient_id, date, start_time, end_time, status, notes, paid_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.querier.Exec(ctx, query,
		a.ID,
		a.PatientID,
		a.Date,
		a.StartTime,
		a.EndTime,
		a.Status,
		a.Notes,
		a.PaidAmount,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create appointment", "error", err)
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	return nil
}

// GetByID retrieves an appointment by its ID
func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	query := `
		SELECT id, patient_id, date, start_time, end_time, status, notes, paid_amount, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`

	var a appointment.Appointment
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.PatientID,
		&a.Date,
		&a.StartTime,
		&a.EndTime,
		&a.Status,
		&a.Notes,
		&a.PaidAmount,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, appointment.ErrAppointmentNotFound{AppointmentID: id}
		}
		r.logger.Error("Failed to get appointment", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	return &a, nil
}

// Update updates the slot, status and notes of an existing appointment.
// paid_amount is intentionally absent from the SET list.
func (r *AppointmentRepository) Update(ctx context.Context, a *appointment.Appointment) error {
	query := `
		UPDATE appointments
		SET date = $1, start_time = $2, end_time = $3, status = $4, notes = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := r.querier.Exec(ctx, query,
		a.Date,
		a.StartTime,
		a.EndTime,
		a.Status,
		a.Notes,
		a.UpdatedAt,
		a.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update appointment", "id", a.ID.String(), "error", err)
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return appointment.ErrAppointmentNotFound{AppointmentID: a.ID}
	}

	return nil
}

// UpdateStatus transitions a single appointment to the given status
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status appointment.Status) error {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update appointment status", "id", id.String(), "error", err)
		return fmt.Errorf("failed to update appointment status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return appointment.ErrAppointmentNotFound{AppointmentID: id}
	}

	return nil
}

// Delete removes an appointment
func (r *AppointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM appointments WHERE id = $1`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete appointment", "id", id.String(), "error", err)
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return appointment.ErrAppointmentNotFound{AppointmentID: id}
	}

	return nil
}

// GetByPatientID retrieves all appointments for a patient, newest first
func (r *AppointmentRepository) GetByPatientID(ctx context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error) {
	query := `
		SELECT id, patient_id, date, start_time, end_time, status, notes, paid_amount, created_at, updated_at
		FROM appointments
		WHERE patient_id = $1
		ORDER BY date DESC, start_time DESC
	`

	rows, err := r.querier.Query(ctx, query, patientID)
	if err != nil {
		r.logger.Error("Failed to list appointments by patient", "patientID", patientID.String(), "error", err)
		return nil, fmt.Errorf("failed to list appointments by patient: %w", err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// GetByDate retrieves the appointments scheduled on the given calendar day
func (r *AppointmentRepository) GetByDate(ctx context.Context, date time.Time) ([]*appointment.Appointment, error) {
	query := `
		SELECT id, patient_id, date, start_time, end_time, status, notes, paid_amount, created_at, updated_at
		FROM appointments
		WHERE date = $1
		ORDER BY start_time
	`

	rows, err := r.querier.Query(ctx, query, date)
	if err != nil {
		r.logger.Error("Failed to list appointments by date", "error", err)
		return nil, fmt.Errorf("failed to list appointments by date: %w", err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// GetByDateRange retrieves appointments between start and end inclusive
func (r *AppointmentRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*appointment.Appointment, error) {
	query := `
		SELECT id, patient_id, date, start_time, end_time, status, notes, paid_amount, created_at, updated_at
		FROM appointments
		WHERE date >= $1 AND date <= $2
		ORDER BY date, start_time
	`

	rows, err := r.querier.Query(ctx, query, start, end)
	if err != nil {
		r.logger.Error("Failed to list appointments by date range", "error", err)
		return nil, fmt.Errorf("failed to list appointments by date range: %w", err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// GetByStatus retrieves appointments in the given lifecycle state
func (r *AppointmentRepository) GetByStatus(ctx context.Context, status appointment.Status) ([]*appointment.Appointment, error) {
	query := `
		SELECT id, patient_id, date, start_time, end_time, status, notes, paid_amount, created_at, updated_at
		FROM appointments
		WHERE status = $1
		ORDER BY date, start_time
	`

	rows, err := r.querier.Query(ctx, query, status)
	if err != nil {
		r.logger.Error("Failed to list appointments by status", "status", string(status), "error", err)
		return nil, fmt.Errorf("failed to list appointments by status: %w", err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// CountByStatus groups appointments by lifecycle state
func (r *AppointmentRepository) CountByStatus(ctx context.Context) (map[appointment.Status]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM appointments
		GROUP BY status
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to count appointments by status", "error", err)
		return nil, fmt.Errorf("failed to count appointments by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[appointment.Status]int)
	for rows.Next() {
		var status appointment.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read status counts: %w", err)
	}

	return counts, nil
}

// CountByMonth groups a year's appointments by calendar month
func (r *AppointmentRepository) CountByMonth(ctx context.Context, year int) (map[time.Month]int, error) {
	query := `
		SELECT EXTRACT(MONTH FROM date)::int AS month, COUNT(*)
		FROM appointments
		WHERE EXTRACT(YEAR FROM date) = $1
		GROUP BY month
	`

	rows, err := r.querier.Query(ctx, query, year)
	if err != nil {
		r.logger.Error("Failed to count appointments by month", "year", year, "error", err)
		return nil, fmt.Errorf("failed to count appointments by month: %w", err)
	}
	defer rows.Close()

	counts := make(map[time.Month]int)
	for rows.Next() {
		var month, count int
		if err := rows.Scan(&month, &count); err != nil {
			return nil, fmt.Errorf("failed to scan month count: %w", err)
		}
		counts[time.Month(month)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read month counts: %w", err)
	}

	return counts, nil
}

func scanAppointments(rows pgx.Rows) ([]*appointment.Appointment, error) {
	var appointments []*appointment.Appointment
	for rows.Next() {
		var a appointment.Appointment
		err := rows.Scan(
			&a.ID,
			&a.PatientID,
			&a.Date,
			&a.StartTime,
			&a.EndTime,
			&a.Status,
			&a.Notes,
			&a.PaidAmount,
			&a.CreatedAt,
			&a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read appointments: %w", err)
	}

	return appointments, nil
}

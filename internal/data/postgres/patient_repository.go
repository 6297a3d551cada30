// Package postgres provides PostgreSQL implementations of the domain repositories.
// It handles all database operations while maintaining transaction safety and
// proper error handling for the clinic backend.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dental-clinic-backend/internal/domain/patient"
	"github.com/dental-clinic-backend/internal/platform/persistence"
)

// PatientRepository implements the patient.Repository interface for PostgreSQL
type PatientRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewPatientRepository creates a new PostgreSQL patient repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewPatientRepository(logger *slog.Logger, db *persistence.PostgresDB) patient.Repository {
	return &PatientRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic operations
// across multiple repository calls.
func (r *PatientRepository) WithTx(tx pgx.Tx) patient.Repository {
	return &PatientRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new patient in the database
func (r *PatientRepository) Create(ctx context.Context, p *patient.Patient) error {
	query := `
		INSERT INTO patients (id, full_name, age, gender, phone, address, medical_history, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.querier.Exec(ctx, query,
		p.ID,
		p.FullName,
		p.Age,
		p.Gender,
		p.Phone,
		p.Address,
		p.MedicalHistory,
		p.IsActive,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create patient", "error", err)
		return fmt.Errorf("failed to create patient: %w", err)
	}

	return nil
}

// GetByID retrieves a patient by its ID
func (r *PatientRepository) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	query := `
		SELECT id, full_name, age, gender, phone, address, medical_history, is_active, created_at, updated_at
		FROM patients
		WHERE id = $1
	`

	var p patient.Patient
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.FullName,
		&p.Age,
		&p.Gender,
		&p.Phone,
		&p.Address,
		&p.MedicalHistory,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, patient.ErrPatientNotFound{PatientID: id}
		}
		r.logger.Error("Failed to get patient", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	return &p, nil
}

// Update updates an existing patient record
func (r *PatientRepository) Update(ctx context.Context, p *patient.Patient) error {
	query := `
		UPDATE patients
		SET full_name = $1, age = $2, gender = $3, phone = $4, address = $5, medical_history = $6, is_active = $7, updated_at = $8
		WHERE id = $9
	`

	result, err := r.querier.Exec(ctx, query,
		p.FullName,
		p.Age,
		p.Gender,
		p.Phone,
		p.Address,
		p.MedicalHistory,
		p.IsActive,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update patient", "id", p.ID.String(), "error", err)
		return fmt.Errorf("failed to update patient: %w", err)
	}

	if result.RowsAffected() == 0 {
		return patient.ErrPatientNotFound{PatientID: p.ID}
	}

	return nil
}

// GetAll retrieves all patients ordered by name
func (r *PatientRepository) GetAll(ctx context.Context) ([]*patient.Patient, error) {
	query := `
		SELECT id, full_name, age, gender, phone, address, medical_history, is_active, created_at, updated_at
		FROM patients
		ORDER BY full_name
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list patients", "error", err)
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	defer rows.Close()

	return scanPatients(rows)
}

// GetActive retrieves patients that have not been deactivated
func (r *PatientRepository) GetActive(ctx context.Context) ([]*patient.Patient, error) {
	query := `
		SELECT id, full_name, age, gender, phone, address, medical_history, is_active, created_at, updated_at
		FROM patients
		WHERE is_active = TRUE
		ORDER BY full_name
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list active patients", "error", err)
		return nil, fmt.Errorf("failed to list active patients: %w", err)
	}
	defer rows.Close()

	return scanPatients(rows)
}

// Search finds patients whose name or phone matches the term
func (r *PatientRepository) Search(ctx context.Context, term string) ([]*patient.Patient, error) {
	query := `
		SELECT id, full_name, age, gender, phone, address, medical_history, is_active, created_at, updated_at
		FROM patients
		WHERE full_name ILIKE '%' || $1 || '%' OR phone LIKE '%' || $1 || '%'
		ORDER BY full_name
	`

	rows, err := r.querier.Query(ctx, query, term)
	if err != nil {
		r.logger.Error("Failed to search patients", "term", term, "error", err)
		return nil, fmt.Errorf("failed to search patients: %w", err)
	}
	defer rows.Close()

	return scanPatients(rows)
}

// CountByGender groups active patients by gender
func (r *PatientRepository) CountByGender(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT gender, COUNT(*)
		FROM patients
		WHERE is_active = TRUE
		GROUP BY gender
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to count patients by gender", "error", err)
		return nil, fmt.Errorf("failed to count patients by gender: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var gender string
		var count int
		if err := rows.Scan(&gender, &count); err != nil {
			return nil, fmt.Errorf("failed to scan gender count: %w", err)
		}
		counts[gender] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read gender counts: %w", err)
	}

	return counts, nil
}

// CountByAgeGroup groups active patients into decade buckets ("0-9", "10-19", ...)
func (r *PatientRepository) CountByAgeGroup(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT (age / 10) * 10 AS bucket, COUNT(*)
		FROM patients
		WHERE is_active = TRUE
		GROUP BY bucket
		ORDER BY bucket
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to count patients by age group", "error", err)
		return nil, fmt.Errorf("failed to count patients by age group: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var bucket, count int
		if err := rows.Scan(&bucket, &count); err != nil {
			return nil, fmt.Errorf("failed to scan age group count: %w", err)
		}
		counts[fmt.Sprintf("%d-%d", bucket, bucket+9)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read age group counts: %w", err)
	}

	return counts, nil
}

// CountCreatedSince counts patients registered on or after the given time
func (r *PatientRepository) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM patients WHERE created_at >= $1`

	var count int
	if err := r.querier.QueryRow(ctx, query, since).Scan(&count); err != nil {
		r.logger.Error("Failed to count recent patients", "error", err)
		return 0, fmt.Errorf("failed to count recent patients: %w", err)
	}

	return count, nil
}

func scanPatients(rows pgx.Rows) ([]*patient.Patient, error) {
	var patients []*patient.Patient
	for rows.Next() {
		var p patient.Patient
		err := rows.Scan(
			&p.ID,
			&p.FullName,
			&p.Age,
			&p.Gender,
			&p.Phone,
			&p.Address,
			&p.MedicalHistory,
			&p.IsActive,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read patients: %w", err)
	}

	return patients, nil
}

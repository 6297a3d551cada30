package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dental-clinic-backend/internal/domain/patient"
)

func TestPatientRepository_Create(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PatientRepository{querier: mock, logger: logger}

	p := &patient.Patient{
		ID:        uuid.New(),
		FullName:  "Lina Haddad",
		Age:       34,
		Gender:    "Female",
		Phone:     "+961 3 123456",
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	query := `
		INSERT INTO patients \(id, full_name, age, gender, phone, address, medical_history, is_active, created_at, updated_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8, \$9, \$10\)
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(p.ID, p.FullName, p.Age, p.Gender, p.Phone, p.Address, p.MedicalHistory, p.IsActive, p.CreatedAt, p.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, p)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectExec(query).
			WithArgs(p.ID, p.FullName, p.Age, p.Gender, p.Phone, p.Address, p.MedicalHistory, p.IsActive, p.CreatedAt, p.UpdatedAt).
			WillReturnError(expectedErr)

		err := repo.Create(ctx, p)
		assert.Error(t, err)
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPatientRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PatientRepository{querier: mock, logger: logger}
	patientID := uuid.New()
	now := time.Now()

	expected := &patient.Patient{
		ID:        patientID,
		FullName:  "Omar Kassem",
		Age:       52,
		Gender:    "Male",
		Phone:     "+961 70 654321",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `
		SELECT id, full_name, age, gender, phone, address, medical_history, is_active, created_at, updated_at
		FROM patients
		WHERE id = \$1
	`

	t.Run("success", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"id", "full_name", "age", "gender", "phone", "address", "medical_history", "is_active", "created_at", "updated_at"}).
			AddRow(expected.ID, expected.FullName, expected.Age, expected.Gender, expected.Phone, expected.Address, expected.MedicalHistory, expected.IsActive, expected.CreatedAt, expected.UpdatedAt)
		mock.ExpectQuery(query).WithArgs(patientID).WillReturnRows(rows)

		p, err := repo.GetByID(ctx, patientID)
		assert.NoError(t, err)
		assert.Equal(t, expected, p)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(patientID).WillReturnError(pgx.ErrNoRows)

		p, err := repo.GetByID(ctx, patientID)
		assert.Error(t, err)
		assert.Nil(t, p)
		var notFoundErr patient.ErrPatientNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, patientID, notFoundErr.PatientID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPatientRepository_CountByGender(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PatientRepository{querier: mock, logger: logger}

	query := `
		SELECT gender, COUNT\(\*\)
		FROM patients
		WHERE is_active = TRUE
		GROUP BY gender
	`

	t.Run("success", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"gender", "count"}).
			AddRow("Female", 12).
			AddRow("Male", 9)
		mock.ExpectQuery(query).WillReturnRows(rows)

		counts, err := repo.CountByGender(ctx)
		assert.NoError(t, err)
		assert.Equal(t, map[string]int{"Female": 12, "Male": 9}, counts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		mock.ExpectQuery(query).WillReturnError(errors.New("db error"))

		counts, err := repo.CountByGender(ctx)
		assert.Error(t, err)
		assert.Nil(t, counts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

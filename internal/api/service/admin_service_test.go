package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dental-clinic-backend/internal/domain/patient"
)

func TestAdminService_RecalculateAllPayments(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	t.Run("counts only patients that reconciled", func(t *testing.T) {
		patientRepo := &MockPatientRepository{}
		payments := newPaymentServiceFixture()

		p1 := testPatient(uuid.New())
		p2 := testPatient(uuid.New())
		p3 := testPatient(uuid.New())
		patientRepo.On("GetAll", ctx).Return([]*patient.Patient{p1, p2, p3}, nil)

		// p2's lookup fails mid-sweep; the other two still reconcile.
		payments.patientRepo.On("GetByID", ctx, p1.ID).Return(p1, nil)
		payments.patientRepo.On("GetByID", ctx, p2.ID).Return(nil, errors.New("connection reset"))
		payments.patientRepo.On("GetByID", ctx, p3.ID).Return(p3, nil)
		payments.reconciler.On("ReconcilePatient", ctx, p1.ID).Return(nil)
		payments.reconciler.On("ReconcilePatient", ctx, p3.ID).Return(nil)

		svc, err := NewAdminService(logger, patientRepo, payments.svc, 4)
		require.NoError(t, err)
		defer svc.Shutdown()

		processed, err := svc.RecalculateAllPayments(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, processed)
	})

	t.Run("empty patient base processes zero", func(t *testing.T) {
		patientRepo := &MockPatientRepository{}
		payments := newPaymentServiceFixture()
		patientRepo.On("GetAll", ctx).Return([]*patient.Patient{}, nil)

		svc, err := NewAdminService(logger, patientRepo, payments.svc, 4)
		require.NoError(t, err)
		defer svc.Shutdown()

		processed, err := svc.RecalculateAllPayments(ctx)
		require.NoError(t, err)
		assert.Zero(t, processed)
	})

	t.Run("patient listing failure aborts the sweep", func(t *testing.T) {
		patientRepo := &MockPatientRepository{}
		payments := newPaymentServiceFixture()
		listErr := errors.New("listing failed")
		patientRepo.On("GetAll", ctx).Return(nil, listErr)

		svc, err := NewAdminService(logger, patientRepo, payments.svc, 4)
		require.NoError(t, err)
		defer svc.Shutdown()

		processed, err := svc.RecalculateAllPayments(ctx)
		assert.ErrorIs(t, err, listErr)
		assert.Zero(t, processed)
	})
}

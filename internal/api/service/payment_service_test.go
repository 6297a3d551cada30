package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dental-clinic-backend/internal/domain/appointment"
	"github.com/dental-clinic-backend/internal/domain/patient"
	"github.com/dental-clinic-backend/internal/domain/payment"
)

type paymentServiceFixture struct {
	svc             PaymentService
	paymentRepo     *MockPaymentRepository
	patientRepo     *MockPatientRepository
	appointmentRepo *MockAppointmentRepository
	treatmentRepo   *MockTreatmentRepository
	auditRepo       *MockAuditRepository
	outboxRepo      *MockOutboxRepository
	reconciler      *MockReconciler
}

func newPaymentServiceFixture() *paymentServiceFixture {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	f := &paymentServiceFixture{
		paymentRepo:     &MockPaymentRepository{},
		patientRepo:     &MockPatientRepository{},
		appointmentRepo: &MockAppointmentRepository{},
		treatmentRepo:   &MockTreatmentRepository{},
		auditRepo:       &MockAuditRepository{},
		outboxRepo:      &MockOutboxRepository{},
		reconciler:      &MockReconciler{},
	}
	f.svc = NewPaymentService(
		logger,
		fakeTxRunner{},
		f.paymentRepo,
		f.patientRepo,
		f.appointmentRepo,
		f.treatmentRepo,
		f.auditRepo,
		f.outboxRepo,
		f.reconciler,
	)
	return f
}

func testPatient(id uuid.UUID) *patient.Patient {
	return &patient.Patient{
		ID:       id,
		FullName: "Lina Haddad",
		Age:      34,
		Gender:   "Female",
		Phone:    "+961 3 123456",
		IsActive: true,
	}
}

func TestPaymentService_AddPayment(t *testing.T) {
	ctx := context.Background()
	patientID := uuid.New()

	t.Run("successful linked payment", func(t *testing.T) {
		f := newPaymentServiceFixture()
		appointmentID := uuid.New()
		req := &AddPaymentRequest{
			PatientID:     patientID,
			AppointmentID: &appointmentID,
			Amount:        decimal.RequireFromString("150.00"),
			PaymentDate:   time.Now(),
			ActorID:       "user-1",
			CorrelationID: "corr-1",
		}

		f.patientRepo.On("GetByID", ctx, patientID).Return(testPatient(patientID), nil)
		f.appointmentRepo.On("GetByID", ctx, appointmentID).Return(&appointment.Appointment{
			ID:        appointmentID,
			PatientID: patientID,
		}, nil)
		f.paymentRepo.On("Create", ctx, mock.AnythingOfType("*payment.Transaction")).Return(nil)
		f.reconciler.On("ReconcilePatient", ctx, patientID).Return(nil)
		f.auditRepo.On("Create", ctx, mock.AnythingOfType("*audit.Entry")).Return(nil)
		f.outboxRepo.On("Create", ctx, mock.AnythingOfType("*outbox.Message")).Return(nil)

		entry, err := f.svc.AddPayment(ctx, req)
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, patientID, entry.PatientID)
		assert.True(t, entry.Amount.Equal(req.Amount))
		assert.Equal(t, "Lina Haddad", entry.PatientName)
		assert.Equal(t, "user-1", entry.CreatedByName)

		f.paymentRepo.AssertExpectations(t)
		f.reconciler.AssertExpectations(t)
		f.auditRepo.AssertExpectations(t)
		f.outboxRepo.AssertExpectations(t)
	})

	t.Run("successful unlinked payment", func(t *testing.T) {
		f := newPaymentServiceFixture()
		req := &AddPaymentRequest{
			PatientID:   patientID,
			Amount:      decimal.NewFromInt(50),
			PaymentDate: time.Now(),
			ActorID:     "user-1",
		}

		f.patientRepo.On("GetByID", ctx, patientID).Return(testPatient(patientID), nil)
		f.paymentRepo.On("Create", ctx, mock.AnythingOfType("*payment.Transaction")).Return(nil)
		f.reconciler.On("ReconcilePatient", ctx, patientID).Return(nil)
		f.auditRepo.On("Create", ctx, mock.AnythingOfType("*audit.Entry")).Return(nil)
		f.outboxRepo.On("Create", ctx, mock.AnythingOfType("*outbox.Message")).Return(nil)

		entry, err := f.svc.AddPayment(ctx, req)
		require.NoError(t, err)
		assert.Nil(t, entry.AppointmentID)
		f.appointmentRepo.AssertNotCalled(t, "GetByID")
	})

	t.Run("rejects non-positive amount before touching storage", func(t *testing.T) {
		f := newPaymentServiceFixture()
		req := &AddPaymentRequest{
			PatientID:   patientID,
			Amount:      decimal.Zero,
			PaymentDate: time.Now(),
			ActorID:     "user-1",
		}

		entry, err := f.svc.AddPayment(ctx, req)
		assert.ErrorIs(t, err, payment.ErrInvalidAmount)
		assert.Nil(t, entry)
		f.patientRepo.AssertNotCalled(t, "GetByID")
		f.paymentRepo.AssertNotCalled(t, "Create")
	})

	t.Run("rejects unknown patient", func(t *testing.T) {
		f := newPaymentServiceFixture()
		req := &AddPaymentRequest{
			PatientID:   patientID,
			Amount:      decimal.NewFromInt(100),
			PaymentDate: time.Now(),
			ActorID:     "user-1",
		}

		f.patientRepo.On("GetByID", ctx, patientID).Return(nil, patient.ErrPatientNotFound{PatientID: patientID})

		entry, err := f.svc.AddPayment(ctx, req)
		assert.ErrorIs(t, err, patient.ErrPatientNotFound{})
		assert.Nil(t, entry)
		f.paymentRepo.AssertNotCalled(t, "Create")
	})

	t.Run("rejects appointment of another patient", func(t *testing.T) {
		f := newPaymentServiceFixture()
		appointmentID := uuid.New()
		req := &AddPaymentRequest{
			PatientID:     patientID,
			AppointmentID: &appointmentID,
			Amount:        decimal.NewFromInt(100),
			PaymentDate:   time.Now(),
			ActorID:       "user-1",
		}

		f.patientRepo.On("GetByID", ctx, patientID).Return(testPatient(patientID), nil)
		f.appointmentRepo.On("GetByID", ctx, appointmentID).Return(&appointment.Appointment{
			ID:        appointmentID,
			PatientID: uuid.New(), // different patient
		}, nil)

		entry, err := f.svc.AddPayment(ctx, req)
		assert.ErrorIs(t, err, payment.ErrAppointmentMismatch)
		assert.Nil(t, entry)
		f.paymentRepo.AssertNotCalled(t, "Create")
	})

	t.Run("audit failure aborts the whole mutation", func(t *testing.T) {
		f := newPaymentServiceFixture()
		req := &AddPaymentRequest{
			PatientID:   patientID,
			Amount:      decimal.NewFromInt(100),
			PaymentDate: time.Now(),
			ActorID:     "user-1",
		}
		auditErr := errors.New("audit insert failed")

		f.patientRepo.On("GetByID", ctx, patientID).Return(testPatient(patientID), nil)
		f.paymentRepo.On("Create", ctx, mock.AnythingOfType("*payment.Transaction")).Return(nil)
		f.reconciler.On("ReconcilePatient", ctx, patientID).Return(nil)
		f.auditRepo.On("Create", ctx, mock.AnythingOfType("*audit.Entry")).Return(auditErr)

		entry, err := f.svc.AddPayment(ctx, req)
		assert.ErrorIs(t, err, auditErr)
		assert.Nil(t, entry)
		f.outboxRepo.AssertNotCalled(t, "Create")
	})

	t.Run("reconcile failure aborts the whole mutation", func(t *testing.T) {
		f := newPaymentServiceFixture()
		req := &AddPaymentRequest{
			PatientID:   patientID,
			Amount:      decimal.NewFromInt(100),
			PaymentDate: time.Now(),
			ActorID:     "user-1",
		}
		recErr := errors.New("reconcile failed")

		f.patientRepo.On("GetByID", ctx, patientID).Return(testPatient(patientID), nil)
		f.paymentRepo.On("Create", ctx, mock.AnythingOfType("*payment.Transaction")).Return(nil)
		f.reconciler.On("ReconcilePatient", ctx, patientID).Return(recErr)

		entry, err := f.svc.AddPayment(ctx, req)
		assert.ErrorIs(t, err, recErr)
		assert.Nil(t, entry)
		f.auditRepo.AssertNotCalled(t, "Create")
	})
}

func TestPaymentService_DeletePayment(t *testing.T) {
	ctx := context.Background()
	patientID := uuid.New()
	paymentID := uuid.New()

	entry := &payment.Transaction{
		ID:        paymentID,
		PatientID: patientID,
		Amount:    decimal.NewFromInt(80),
		CreatedBy: "user-1",
	}

	t.Run("success", func(t *testing.T) {
		f := newPaymentServiceFixture()
		f.paymentRepo.On("GetByID", ctx, paymentID).Return(entry, nil)
		f.patientRepo.On("GetByID", ctx, patientID).Return(testPatient(patientID), nil)
		f.paymentRepo.On("Delete", ctx, paymentID).Return(nil)
		f.reconciler.On("ReconcilePatient", ctx, patientID).Return(nil)
		f.auditRepo.On("Create", ctx, mock.AnythingOfType("*audit.Entry")).Return(nil)
		f.outboxRepo.On("Create", ctx, mock.AnythingOfType("*outbox.Message")).Return(nil)

		err := f.svc.DeletePayment(ctx, paymentID, "admin-1", "corr-2")
		require.NoError(t, err)
		f.paymentRepo.AssertExpectations(t)
		f.reconciler.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		f := newPaymentServiceFixture()
		f.paymentRepo.On("GetByID", ctx, paymentID).Return(nil, payment.ErrPaymentNotFound{PaymentID: paymentID})

		err := f.svc.DeletePayment(ctx, paymentID, "admin-1", "corr-2")
		assert.ErrorIs(t, err, payment.ErrPaymentNotFound{})
		f.paymentRepo.AssertNotCalled(t, "Delete")
	})
}

func TestPaymentService_RecalculatePaymentTotals(t *testing.T) {
	ctx := context.Background()
	patientID := uuid.New()

	t.Run("success", func(t *testing.T) {
		f := newPaymentServiceFixture()
		f.patientRepo.On("GetByID", ctx, patientID).Return(testPatient(patientID), nil)
		f.reconciler.On("ReconcilePatient", ctx, patientID).Return(nil)

		err := f.svc.RecalculatePaymentTotals(ctx, patientID)
		assert.NoError(t, err)
		f.reconciler.AssertExpectations(t)
	})

	t.Run("unknown patient", func(t *testing.T) {
		f := newPaymentServiceFixture()
		f.patientRepo.On("GetByID", ctx, patientID).Return(nil, patient.ErrPatientNotFound{PatientID: patientID})

		err := f.svc.RecalculatePaymentTotals(ctx, patientID)
		assert.ErrorIs(t, err, patient.ErrPatientNotFound{})
		f.reconciler.AssertNotCalled(t, "ReconcilePatient")
	})
}

func TestPaymentService_GetPatientPaymentSummary(t *testing.T) {
	ctx := context.Background()
	patientID := uuid.New()

	t.Run("remaining balance may go negative on overpayment", func(t *testing.T) {
		f := newPaymentServiceFixture()
		f.patientRepo.On("GetByID", ctx, patientID).Return(testPatient(patientID), nil)
		f.paymentRepo.On("TotalPaidByPatient", ctx, patientID).Return(decimal.NewFromInt(500), nil)
		f.treatmentRepo.On("TotalCostByPatient", ctx, patientID).Return(decimal.NewFromInt(300), nil)
		f.paymentRepo.On("GetByPatientID", ctx, patientID).Return([]*payment.Transaction{}, nil)

		summary, err := f.svc.GetPatientPaymentSummary(ctx, patientID)
		require.NoError(t, err)
		assert.True(t, summary.RemainingBalance.Equal(decimal.NewFromInt(-200)))
		assert.True(t, summary.TotalPaid.Equal(decimal.NewFromInt(500)))
	})
}

func TestPaymentService_GetPatientsWithOutstandingBalance(t *testing.T) {
	ctx := context.Background()

	p1 := testPatient(uuid.New()) // owes 100
	p2 := testPatient(uuid.New()) // fully paid
	p3 := testPatient(uuid.New()) // owes 250
	p4 := testPatient(uuid.New()) // overpaid

	f := newPaymentServiceFixture()
	f.patientRepo.On("GetActive", ctx).Return([]*patient.Patient{p1, p2, p3, p4}, nil)

	f.paymentRepo.On("TotalPaidByPatient", ctx, p1.ID).Return(decimal.NewFromInt(200), nil)
	f.treatmentRepo.On("TotalCostByPatient", ctx, p1.ID).Return(decimal.NewFromInt(300), nil)

	f.paymentRepo.On("TotalPaidByPatient", ctx, p2.ID).Return(decimal.NewFromInt(300), nil)
	f.treatmentRepo.On("TotalCostByPatient", ctx, p2.ID).Return(decimal.NewFromInt(300), nil)

	f.paymentRepo.On("TotalPaidByPatient", ctx, p3.ID).Return(decimal.NewFromInt(50), nil)
	f.treatmentRepo.On("TotalCostByPatient", ctx, p3.ID).Return(decimal.NewFromInt(300), nil)

	f.paymentRepo.On("TotalPaidByPatient", ctx, p4.ID).Return(decimal.NewFromInt(400), nil)
	f.treatmentRepo.On("TotalCostByPatient", ctx, p4.ID).Return(decimal.NewFromInt(300), nil)

	summaries, err := f.svc.GetPatientsWithOutstandingBalance(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// Largest debt first; fully paid and overpaid patients excluded.
	assert.Equal(t, p3.ID, summaries[0].PatientID)
	assert.True(t, summaries[0].RemainingBalance.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, p1.ID, summaries[1].PatientID)
	assert.True(t, summaries[1].RemainingBalance.Equal(decimal.NewFromInt(100)))
}

func TestPaymentService_GetPaymentByID(t *testing.T) {
	ctx := context.Background()

	t.Run("ResolvesPatientName", func(t *testing.T) {
		f := newPaymentServiceFixture()
		patientID := uuid.New()
		entry, err := payment.NewTransaction(patientID, nil, decimal.NewFromInt(75), time.Now().Add(-time.Hour), "", "reception-1")
		require.NoError(t, err)

		f.paymentRepo.On("GetByID", ctx, entry.ID).Return(entry, nil)
		f.patientRepo.On("GetByID", ctx, patientID).Return(testPatient(patientID), nil)

		record, err := f.svc.GetPaymentByID(ctx, entry.ID)

		require.NoError(t, err)
		assert.Equal(t, entry.ID, record.ID)
		assert.Equal(t, "Lina Haddad", record.PatientName)
	})

	t.Run("NotFoundSurfaced", func(t *testing.T) {
		f := newPaymentServiceFixture()
		id := uuid.New()

		f.paymentRepo.On("GetByID", ctx, id).Return(nil, payment.ErrPaymentNotFound{PaymentID: id})

		_, err := f.svc.GetPaymentByID(ctx, id)

		assert.ErrorIs(t, err, payment.ErrPaymentNotFound{})
	})
}

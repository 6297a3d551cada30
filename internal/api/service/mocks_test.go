package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/dental-clinic-backend/internal/domain/appointment"
	"github.com/dental-clinic-backend/internal/domain/audit"
	"github.com/dental-clinic-backend/internal/domain/outbox"
	"github.com/dental-clinic-backend/internal/domain/patient"
	"github.com/dental-clinic-backend/internal/domain/payment"
	"github.com/dental-clinic-backend/internal/domain/pricelist"
	"github.com/dental-clinic-backend/internal/domain/shared"
	"github.com/dental-clinic-backend/internal/domain/treatment"
)

// fakeTxRunner executes the callback directly without a real transaction.
// Repository mocks ignore the tx handle, so nil is fine here.
type fakeTxRunner struct{}

func (fakeTxRunner) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, t *payment.Transaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*payment.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Transaction), args.Error(1)
}

func (m *MockPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByPatientID(ctx context.Context, patientID uuid.UUID) ([]*payment.Transaction, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Transaction), args.Error(1)
}

func (m *MockPaymentRepository) GetAll(ctx context.Context, start, end *time.Time) ([]*payment.Transaction, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Transaction), args.Error(1)
}

func (m *MockPaymentRepository) TotalPaidByPatient(ctx context.Context, patientID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, patientID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) TotalRevenue(ctx context.Context, start, end *time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) RevenueByMonth(ctx context.Context, year int) (map[time.Month]decimal.Decimal, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[time.Month]decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) WithTx(tx pgx.Tx) payment.Repository {
	return m
}

type MockPatientRepository struct {
	mock.Mock
}

func (m *MockPatientRepository) Create(ctx context.Context, p *patient.Patient) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPatientRepository) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*patient.Patient), args.Error(1)
}

func (m *MockPatientRepository) Update(ctx context.Context, p *patient.Patient) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPatientRepository) GetAll(ctx context.Context) ([]*patient.Patient, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*patient.Patient), args.Error(1)
}

func (m *MockPatientRepository) GetActive(ctx context.Context) ([]*patient.Patient, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*patient.Patient), args.Error(1)
}

func (m *MockPatientRepository) Search(ctx context.Context, term string) ([]*patient.Patient, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*patient.Patient), args.Error(1)
}

func (m *MockPatientRepository) CountByGender(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockPatientRepository) CountByAgeGroup(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockPatientRepository) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	args := m.Called(ctx, since)
	return args.Int(0), args.Error(1)
}

func (m *MockPatientRepository) WithTx(tx pgx.Tx) patient.Repository {
	return m
}

type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appointment.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) Update(ctx context.Context, a *appointment.Appointment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAppointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status appointment.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockAppointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAppointmentRepository) GetByPatientID(ctx context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*appointment.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) GetByDate(ctx context.Context, date time.Time) ([]*appointment.Appointment, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*appointment.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*appointment.Appointment, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*appointment.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) GetByStatus(ctx context.Context, status appointment.Status) ([]*appointment.Appointment, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*appointment.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) CountByStatus(ctx context.Context) (map[appointment.Status]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[appointment.Status]int), args.Error(1)
}

func (m *MockAppointmentRepository) CountByMonth(ctx context.Context, year int) (map[time.Month]int, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[time.Month]int), args.Error(1)
}

func (m *MockAppointmentRepository) WithTx(tx pgx.Tx) appointment.Repository {
	return m
}

type MockTreatmentRepository struct {
	mock.Mock
}

func (m *MockTreatmentRepository) Create(ctx context.Context, p *treatment.Plan) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockTreatmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*treatment.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*treatment.Plan), args.Error(1)
}

func (m *MockTreatmentRepository) GetByPatientID(ctx context.Context, patientID uuid.UUID) ([]*treatment.Plan, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*treatment.Plan), args.Error(1)
}

func (m *MockTreatmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTreatmentRepository) UpdateItemPrices(ctx context.Context, items []*treatment.Item) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockTreatmentRepository) TotalCostByPatient(ctx context.Context, patientID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, patientID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTreatmentRepository) WithTx(tx pgx.Tx) treatment.Repository {
	return m
}

type MockPriceListRepository struct {
	mock.Mock
}

func (m *MockPriceListRepository) Create(ctx context.Context, item *pricelist.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockPriceListRepository) GetByID(ctx context.Context, id uuid.UUID) (*pricelist.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricelist.Item), args.Error(1)
}

func (m *MockPriceListRepository) Update(ctx context.Context, item *pricelist.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockPriceListRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPriceListRepository) GetAll(ctx context.Context, activeOnly bool) ([]*pricelist.Item, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pricelist.Item), args.Error(1)
}

func (m *MockPriceListRepository) WithTx(tx pgx.Tx) pricelist.Repository {
	return m
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, e *audit.Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockAuditRepository) WithTx(tx pgx.Tx) audit.Repository {
	return m
}

type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepository) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepository) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) GetByEventID(ctx context.Context, eventID uuid.UUID) (*outbox.Message, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepository) WithTx(tx pgx.Tx) outbox.Repository {
	return m
}

type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) ReconcilePatient(ctx context.Context, patientID uuid.UUID) error {
	args := m.Called(ctx, patientID)
	return args.Error(0)
}

func (m *MockReconciler) WithTx(tx pgx.Tx) payment.Reconciler {
	return m
}

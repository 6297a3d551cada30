package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dental-clinic-backend/internal/domain/appointment"
	"github.com/dental-clinic-backend/internal/domain/audit"
	"github.com/dental-clinic-backend/internal/domain/outbox"
	"github.com/dental-clinic-backend/internal/domain/patient"
	"github.com/dental-clinic-backend/internal/domain/payment"
	"github.com/dental-clinic-backend/internal/domain/shared"
	"github.com/dental-clinic-backend/internal/domain/treatment"
)

// TxRunner abstracts transactional execution. *persistence.PostgresDB
// satisfies it.
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// PaymentServiceImpl implements the PaymentService interface. Every mutation
// runs the ledger write, the reconciliation, the audit entry, and the outbox
// row in one database transaction; a failure at any step rolls back all of it.
type PaymentServiceImpl struct {
	db              TxRunner
	paymentRepo     payment.Repository
	patientRepo     patient.Repository
	appointmentRepo appointment.Repository
	treatmentRepo   treatment.Repository
	auditRepo       audit.Repository
	outboxRepo      outbox.Repository
	reconciler      payment.Reconciler
	logger          *slog.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	logger *slog.Logger,
	db TxRunner,
	paymentRepo payment.Repository,
	patientRepo patient.Repository,
	appointmentRepo appointment.Repository,
	treatmentRepo treatment.Repository,
	auditRepo audit.Repository,
	outboxRepo outbox.Repository,
	reconciler payment.Reconciler,
) PaymentService {
	return &PaymentServiceImpl{
		db:              db,
		paymentRepo:     paymentRepo,
		patientRepo:     patientRepo,
		appointmentRepo: appointmentRepo,
		treatmentRepo:   treatmentRepo,
		auditRepo:       auditRepo,
		outboxRepo:      outboxRepo,
		reconciler:      reconciler,
		logger:          logger,
	}
}

// AddPayment validates the request, then atomically inserts the ledger entry,
// reconciles the patient's cached totals, records the audit entry, and queues
// a notification event. Validation failures leave the database untouched. The
// returned record carries the patient's display name so callers don't have to
// fetch it again.
func (s *PaymentServiceImpl) AddPayment(ctx context.Context, req *AddPaymentRequest) (*payment.Record, error) {
	entry, err := payment.NewTransaction(req.PatientID, req.AppointmentID, req.Amount, req.PaymentDate, req.Notes, req.ActorID)
	if err != nil {
		return nil, err
	}

	p, err := s.patientRepo.GetByID(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}

	if req.AppointmentID != nil {
		appt, err := s.appointmentRepo.GetByID(ctx, *req.AppointmentID)
		if err != nil {
			return nil, err
		}
		if appt.PatientID != req.PatientID {
			return nil, payment.ErrAppointmentMismatch
		}
	}

	err = s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.paymentRepo.WithTx(tx).Create(ctx, entry); err != nil {
			return err
		}

		if err := s.reconciler.WithTx(tx).ReconcilePatient(ctx, entry.PatientID); err != nil {
			return err
		}

		auditEntry, err := audit.NewEntry("PaymentTransaction", entry.ID.String(), audit.ActionPaymentAdded, req.ActorID, entry)
		if err != nil {
			return fmt.Errorf("failed to build audit entry: %w", err)
		}
		if err := s.auditRepo.WithTx(tx).Create(ctx, auditEntry); err != nil {
			return err
		}

		event := &shared.NotificationEvent{
			EventID:       uuid.New(),
			Type:          shared.NotificationPaymentRecorded,
			PatientID:     entry.PatientID,
			PatientName:   p.FullName,
			AppointmentID: entry.AppointmentID,
			Amount:        entry.Amount,
			Message:       fmt.Sprintf("Payment of %s recorded for %s", entry.Amount.StringFixed(2), p.FullName),
			CorrelationID: req.CorrelationID,
			Timestamp:     time.Now(),
		}
		msg, err := outbox.NewMessage(event)
		if err != nil {
			return fmt.Errorf("failed to build outbox message: %w", err)
		}
		return s.outboxRepo.WithTx(tx).Create(ctx, msg)
	})
	if err != nil {
		s.logger.Error("Failed to add payment",
			"patient_id", req.PatientID.String(),
			"amount", req.Amount.String(),
			"error", err,
		)
		return nil, err
	}

	s.logger.Info("Payment recorded",
		"payment_id", entry.ID.String(),
		"patient_id", entry.PatientID.String(),
		"amount", entry.Amount.String(),
	)

	return &payment.Record{
		Transaction:   *entry,
		PatientName:   p.FullName,
		CreatedByName: entry.CreatedBy,
	}, nil
}

// DeletePayment atomically removes the ledger entry, reconciles the patient,
// records the audit trail, and queues a reversal notification.
func (s *PaymentServiceImpl) DeletePayment(ctx context.Context, paymentID uuid.UUID, actorID, correlationID string) error {
	entry, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}

	p, err := s.patientRepo.GetByID(ctx, entry.PatientID)
	if err != nil {
		return err
	}

	err = s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.paymentRepo.WithTx(tx).Delete(ctx, paymentID); err != nil {
			return err
		}

		if err := s.reconciler.WithTx(tx).ReconcilePatient(ctx, entry.PatientID); err != nil {
			return err
		}

		auditEntry, err := audit.NewEntry("PaymentTransaction", entry.ID.String(), audit.ActionPaymentDeleted, actorID, entry)
		if err != nil {
			return fmt.Errorf("failed to build audit entry: %w", err)
		}
		if err := s.auditRepo.WithTx(tx).Create(ctx, auditEntry); err != nil {
			return err
		}

		event := &shared.NotificationEvent{
			EventID:       uuid.New(),
			Type:          shared.NotificationPaymentReversed,
			PatientID:     entry.PatientID,
			PatientName:   p.FullName,
			AppointmentID: entry.AppointmentID,
			Amount:        entry.Amount,
			Message:       fmt.Sprintf("Payment of %s reversed for %s", entry.Amount.StringFixed(2), p.FullName),
			CorrelationID: correlationID,
			Timestamp:     time.Now(),
		}
		msg, err := outbox.NewMessage(event)
		if err != nil {
			return fmt.Errorf("failed to build outbox message: %w", err)
		}
		return s.outboxRepo.WithTx(tx).Create(ctx, msg)
	})
	if err != nil {
		s.logger.Error("Failed to delete payment",
			"payment_id", paymentID.String(),
			"error", err,
		)
		return err
	}

	s.logger.Info("Payment deleted",
		"payment_id", paymentID.String(),
		"patient_id", entry.PatientID.String(),
	)

	return nil
}

// RecalculatePaymentTotals rebuilds the patient's cached appointment totals.
// The statement is idempotent, so concurrent or repeated runs converge on the
// same values.
func (s *PaymentServiceImpl) RecalculatePaymentTotals(ctx context.Context, patientID uuid.UUID) error {
	if _, err := s.patientRepo.GetByID(ctx, patientID); err != nil {
		return err
	}

	return s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		return s.reconciler.WithTx(tx).ReconcilePatient(ctx, patientID)
	})
}

// GetPatientPaymentSummary returns the patient's financial position. TotalPaid
// sums every ledger entry, linked to an appointment or not; unlinked credits
// reduce the remaining balance without attaching to any visit.
func (s *PaymentServiceImpl) GetPatientPaymentSummary(ctx context.Context, patientID uuid.UUID) (*payment.PatientSummary, error) {
	p, err := s.patientRepo.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}

	totalPaid, err := s.paymentRepo.TotalPaidByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	totalCost, err := s.treatmentRepo.TotalCostByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	payments, err := s.GetPatientPayments(ctx, patientID)
	if err != nil {
		return nil, err
	}

	return &payment.PatientSummary{
		PatientID:        p.ID,
		PatientName:      p.FullName,
		TotalCost:        totalCost,
		TotalPaid:        totalPaid,
		RemainingBalance: totalCost.Sub(totalPaid),
		Payments:         payments,
	}, nil
}

// GetPatientsWithOutstandingBalance returns active patients whose remaining
// balance is strictly greater than zero, ordered by remaining balance
// descending. Fully paid and overpaid patients are excluded.
func (s *PaymentServiceImpl) GetPatientsWithOutstandingBalance(ctx context.Context) ([]*payment.PatientSummary, error) {
	patients, err := s.patientRepo.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	var summaries []*payment.PatientSummary
	for _, p := range patients {
		totalPaid, err := s.paymentRepo.TotalPaidByPatient(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		totalCost, err := s.treatmentRepo.TotalCostByPatient(ctx, p.ID)
		if err != nil {
			return nil, err
		}

		remaining := totalCost.Sub(totalPaid)
		if !remaining.IsPositive() {
			continue
		}

		summaries = append(summaries, &payment.PatientSummary{
			PatientID:        p.ID,
			PatientName:      p.FullName,
			TotalCost:        totalCost,
			TotalPaid:        totalPaid,
			RemainingBalance: remaining,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].RemainingBalance.GreaterThan(summaries[j].RemainingBalance)
	})

	return summaries, nil
}

// GetPatientPayments returns a patient's ledger entries with display names,
// newest payment date first.
func (s *PaymentServiceImpl) GetPatientPayments(ctx context.Context, patientID uuid.UUID) ([]*payment.Record, error) {
	p, err := s.patientRepo.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}

	entries, err := s.paymentRepo.GetByPatientID(ctx, patientID)
	if err != nil {
		return nil, err
	}

	records := make([]*payment.Record, 0, len(entries))
	for _, entry := range entries {
		records = append(records, &payment.Record{
			Transaction:   *entry,
			PatientName:   p.FullName,
			CreatedByName: entry.CreatedBy,
		})
	}

	return records, nil
}

// GetPaymentByID returns one ledger entry with display names resolved
func (s *PaymentServiceImpl) GetPaymentByID(ctx context.Context, paymentID uuid.UUID) (*payment.Record, error) {
	entry, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	p, err := s.patientRepo.GetByID(ctx, entry.PatientID)
	if err != nil {
		return nil, err
	}

	return &payment.Record{
		Transaction:   *entry,
		PatientName:   p.FullName,
		CreatedByName: entry.CreatedBy,
	}, nil
}

// GetAllPayments returns ledger entries across patients with display names
// resolved, newest payment date first.
func (s *PaymentServiceImpl) GetAllPayments(ctx context.Context, start, end *time.Time) ([]*payment.Record, error) {
	entries, err := s.paymentRepo.GetAll(ctx, start, end)
	if err != nil {
		return nil, err
	}

	// Resolve each patient's name once
	names := make(map[uuid.UUID]string)
	records := make([]*payment.Record, 0, len(entries))
	for _, entry := range entries {
		name, ok := names[entry.PatientID]
		if !ok {
			p, err := s.patientRepo.GetByID(ctx, entry.PatientID)
			if err != nil {
				return nil, err
			}
			name = p.FullName
			names[entry.PatientID] = name
		}
		records = append(records, &payment.Record{
			Transaction:   *entry,
			PatientName:   name,
			CreatedByName: entry.CreatedBy,
		})
	}

	return records, nil
}

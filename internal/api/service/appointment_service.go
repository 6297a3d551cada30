package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dental-clinic-backend/internal/domain/appointment"
	"github.com/dental-clinic-backend/internal/domain/outbox"
	"github.com/dental-clinic-backend/internal/domain/patient"
	"github.com/dental-clinic-backend/internal/domain/shared"
)

// AppointmentServiceImpl implements the AppointmentService interface
type AppointmentServiceImpl struct {
	db              TxRunner
	appointmentRepo appointment.Repository
	patientRepo     patient.Repository
	outboxRepo      outbox.Repository
	logger          *slog.Logger
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(
	logger *slog.Logger,
	db TxRunner,
	appointmentRepo appointment.Repository,
	patientRepo patient.Repository,
	outboxRepo outbox.Repository,
) AppointmentService {
	return &AppointmentServiceImpl{
		db:              db,
		appointmentRepo: appointmentRepo,
		patientRepo:     patientRepo,
		outboxRepo:      outboxRepo,
		logger:          logger,
	}
}

// ScheduleAppointment validates the slot and books the visit
func (s *AppointmentServiceImpl) ScheduleAppointment(ctx context.Context, req *ScheduleAppointmentRequest) (*appointment.Appointment, error) {
	if _, err := s.patientRepo.GetByID(ctx, req.PatientID); err != nil {
		return nil, err
	}

	appt, err := appointment.NewAppointment(req.PatientID, req.Date, req.StartTime, req.EndTime, req.Notes)
	if err != nil {
		return nil, err
	}

	if err := s.appointmentRepo.Create(ctx, appt); err != nil {
		return nil, err
	}

	s.logger.Info("Appointment scheduled",
		"appointment_id", appt.ID.String(),
		"patient_id", appt.PatientID.String(),
	)
	return appt, nil
}

// GetAppointment retrieves an appointment by ID
func (s *AppointmentServiceImpl) GetAppointment(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return s.appointmentRepo.GetByID(ctx, id)
}

// RescheduleAppointment moves the slot and queues a notification event so the
// patient can be told about the new time.
func (s *AppointmentServiceImpl) RescheduleAppointment(ctx context.Context, id uuid.UUID, req *ScheduleAppointmentRequest, correlationID string) (*appointment.Appointment, error) {
	appt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := appt.Reschedule(req.Date, req.StartTime, req.EndTime, req.Notes); err != nil {
		return nil, err
	}

	p, err := s.patientRepo.GetByID(ctx, appt.PatientID)
	if err != nil {
		return nil, err
	}

	err = s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.appointmentRepo.WithTx(tx).Update(ctx, appt); err != nil {
			return err
		}

		event := &shared.NotificationEvent{
			EventID:       uuid.New(),
			Type:          shared.NotificationAppointmentMoved,
			PatientID:     appt.PatientID,
			PatientName:   p.FullName,
			AppointmentID: &appt.ID,
			Message:       fmt.Sprintf("Appointment for %s moved to %s %s", p.FullName, appt.Date.Format("2006-01-02"), appt.StartTime),
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
		return nil, err
	}

	return appt, nil
}

// UpdateAppointmentStatus transitions an appointment's lifecycle state
func (s *AppointmentServiceImpl) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status appointment.Status) error {
	if !appointment.ValidStatus(status) {
		return appointment.ErrInvalidStatus
	}
	return s.appointmentRepo.UpdateStatus(ctx, id, status)
}

// CancelAppointment marks the appointment Cancelled. Linked payments, if any,
// stay in the ledger.
func (s *AppointmentServiceImpl) CancelAppointment(ctx context.Context, id uuid.UUID) error {
	return s.appointmentRepo.UpdateStatus(ctx, id, appointment.StatusCancelled)
}

// ListAppointmentsByPatient returns a patient's appointments, newest first
func (s *AppointmentServiceImpl) ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error) {
	if _, err := s.patientRepo.GetByID(ctx, patientID); err != nil {
		return nil, err
	}
	return s.appointmentRepo.GetByPatientID(ctx, patientID)
}

// ListAppointmentsByDate returns the day's schedule in start-time order
func (s *AppointmentServiceImpl) ListAppointmentsByDate(ctx context.Context, date time.Time) ([]*appointment.Appointment, error) {
	return s.appointmentRepo.GetByDate(ctx, date)
}

// ListAppointmentsByDateRange returns appointments within the inclusive range
func (s *AppointmentServiceImpl) ListAppointmentsByDateRange(ctx context.Context, start, end time.Time) ([]*appointment.Appointment, error) {
	if end.Before(start) {
		return nil, appointment.ErrEndBeforeStart
	}
	return s.appointmentRepo.GetByDateRange(ctx, start, end)
}

// ListAppointmentsByStatus returns appointments in the given lifecycle state
func (s *AppointmentServiceImpl) ListAppointmentsByStatus(ctx context.Context, status appointment.Status) ([]*appointment.Appointment, error) {
	if !appointment.ValidStatus(status) {
		return nil, appointment.ErrInvalidStatus
	}
	return s.appointmentRepo.GetByStatus(ctx, status)
}

// CallPatient marks the appointment Notified and queues the waiting-room call
// event atomically, so a dispatched call always matches a Notified row.
func (s *AppointmentServiceImpl) CallPatient(ctx context.Context, id uuid.UUID, correlationID string) error {
	appt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	p, err := s.patientRepo.GetByID(ctx, appt.PatientID)
	if err != nil {
		return err
	}

	return s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.appointmentRepo.WithTx(tx).UpdateStatus(ctx, id, appointment.StatusNotified); err != nil {
			return err
		}

		event := &shared.NotificationEvent{
			EventID:       uuid.New(),
			Type:          shared.NotificationPatientCalled,
			PatientID:     appt.PatientID,
			PatientName:   p.FullName,
			AppointmentID: &appt.ID,
			Message:       fmt.Sprintf("%s, please proceed to the treatment room", p.FullName),
			CorrelationID: correlationID,
			Timestamp:     time.Now(),
		}
		msg, err := outbox.NewMessage(event)
		if err != nil {
			return fmt.Errorf("failed to build outbox message: %w", err)
		}
		return s.outboxRepo.WithTx(tx).Create(ctx, msg)
	})
}

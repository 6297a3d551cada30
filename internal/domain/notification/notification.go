package notification

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dental-clinic-backend/internal/domain/shared"
)

// DeliveryStatus tracks what happened to a dispatched notification
type DeliveryStatus string

const (
	StatusDelivered DeliveryStatus = "DELIVERED"
	StatusFailed    DeliveryStatus = "FAILED"
)

// Log is one dispatched notification, recorded for the front desk to review.
// Logs live in MongoDB; they are operational history, not clinical data.
type Log struct {
	ID            uuid.UUID               `json:"id" bson:"id"`
	EventID       uuid.UUID               `json:"event_id" bson:"event_id"`
	Type          shared.NotificationType `json:"type" bson:"type"`
	PatientID     uuid.UUID               `json:"patient_id" bson:"patient_id"`
	PatientName   string                  `json:"patient_name" bson:"patient_name"`
	Message       string                  `json:"message" bson:"message"`
	Status        DeliveryStatus          `json:"status" bson:"status"`
	CorrelationID string                  `json:"correlation_id" bson:"correlation_id"`
	CreatedAt     time.Time               `json:"created_at" bson:"created_at"`
}

// NewLog records the outcome of dispatching the given event
func NewLog(event *shared.NotificationEvent, status DeliveryStatus) *Log {
	return &Log{
		ID:            uuid.New(),
		EventID:       event.EventID,
		Type:          event.Type,
		PatientID:     event.PatientID,
		PatientName:   event.PatientName,
		Message:       event.Message,
		Status:        status,
		CorrelationID: event.CorrelationID,
		CreatedAt:     time.Now(),
	}
}

// Repository manages notification log persistence
type Repository interface {
	Create(ctx context.Context, log *Log) error
	GetByEventID(ctx context.Context, eventID uuid.UUID) (*Log, error)
	GetByPatientID(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Log, error)
	GetByTimeRange(ctx context.Context, startTime, endTime time.Time, limit, offset int) ([]*Log, error)
	CountByPatientID(ctx context.Context, patientID uuid.UUID) (int64, error)
}

// ErrLogNotFound indicates a missing notification log
type ErrLogNotFound struct {
	EventID uuid.UUID
}

func (e ErrLogNotFound) Error() string {
	return "notification log not found: " + e.EventID.String()
}

// Is implements the errors.Is interface for ErrLogNotFound
func (e ErrLogNotFound) Is(target error) bool {
	t, ok := target.(ErrLogNotFound)
	if !ok {
		return false
	}
	if t.EventID == uuid.Nil {
		return true
	}
	return e.EventID == t.EventID
}

// ErrDuplicateLog indicates the event was already logged
type ErrDuplicateLog struct {
	EventID uuid.UUID
}

func (e ErrDuplicateLog) Error() string {
	return "notification already logged: " + e.EventID.String()
}

package shared

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NotificationType defines the clinic events the dispatcher knows about
type NotificationType string

const (
	NotificationPaymentRecorded  NotificationType = "PAYMENT_RECORDED"
	NotificationPaymentReversed  NotificationType = "PAYMENT_REVERSED"
	NotificationAppointmentMoved NotificationType = "APPOINTMENT_RESCHEDULED"
	NotificationPatientCalled    NotificationType = "PATIENT_CALLED"
)

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)

// NotificationEvent defines a Kafka message consumed by the notification dispatcher
type NotificationEvent struct {
	EventID       uuid.UUID        `json:"event_id"`
	Type          NotificationType `json:"type"`
	PatientID     uuid.UUID        `json:"patient_id"`
	PatientName   string           `json:"patient_name,omitempty"`
	AppointmentID *uuid.UUID       `json:"appointment_id,omitempty"`
	Amount        decimal.Decimal  `json:"amount,omitempty"`
	Message       string           `json:"message"`
	CorrelationID string           `json:"correlation_id"`
	Timestamp     time.Time        `json:"timestamp"`
}

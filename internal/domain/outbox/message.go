package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/dental-clinic-backend/internal/domain/shared"
)

// Message stores notification event data for reliable publishing
type Message struct {
	ID            int64               `json:"id"`
	EventID       uuid.UUID           `json:"event_id"`
	PatientID     uuid.UUID           `json:"patient_id"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

func NewMessage(event *shared.NotificationEvent) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	return &Message{
		EventID:   event.EventID,
		PatientID: event.PatientID,
		Payload:   payload,
		Status:    shared.OutboxStatusPending,
		Attempts:  0,
		CreatedAt: time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// GetEvent extracts the notification event from the payload
func (m *Message) GetEvent() (*shared.NotificationEvent, error) {
	var event shared.NotificationEvent
	if err := json.Unmarshal(m.Payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

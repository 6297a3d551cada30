package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Action tags recorded in the audit trail
type Action string

const (
	ActionPaymentAdded   Action = "PAYMENT_ADDED"
	ActionPaymentDeleted Action = "PAYMENT_DELETED"
)

// Entry is one append-only audit record: who changed which entity and when,
// with a serialized snapshot of the change payload.
type Entry struct {
	ID         uuid.UUID       `json:"id"`
	EntityName string          `json:"entity_name"`
	EntityID   string          `json:"entity_id"`
	Action     Action          `json:"action"`
	UserID     string          `json:"user_id"`
	Timestamp  time.Time       `json:"timestamp"`
	Changes    json.RawMessage `json:"changes"`
}

// NewEntry serializes the change payload and stamps the entry
func NewEntry(entityName, entityID string, action Action, userID string, changes interface{}) (*Entry, error) {
	payload, err := json.Marshal(changes)
	if err != nil {
		return nil, err
	}

	return &Entry{
		ID:         uuid.New(),
		EntityName: entityName,
		EntityID:   entityID,
		Action:     action,
		UserID:     userID,
		Timestamp:  time.Now(),
		Changes:    payload,
	}, nil
}

// Repository is a write-only sink; the trail is read by external tooling,
// never by this service.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	WithTx(tx pgx.Tx) Repository
}

package notification_dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dental-clinic-backend/internal/domain/notification"
	"github.com/dental-clinic-backend/internal/domain/shared"
	"github.com/dental-clinic-backend/internal/platform/messaging/producers"
)

// NotificationEventHandler handles incoming notification events from Kafka and
// records the dispatch outcome. Delivery itself (SMS, display board) is out of
// process; this service is the clinic's log of what went out.
type NotificationEventHandler struct {
	notificationRepo notification.Repository
	producer         producers.DeadLetterPublisher
	logger           *slog.Logger
}

// NewNotificationEventHandler creates a new handler
func NewNotificationEventHandler(
	logger *slog.Logger,
	notificationRepo notification.Repository,
	producer producers.DeadLetterPublisher,
) *NotificationEventHandler {
	return &NotificationEventHandler{
		notificationRepo: notificationRepo,
		producer:         producer,
		logger:           logger,
	}
}

// HandleMessage processes one Kafka message. Redeliveries of an already
// recorded event commit cleanly, so the handler is safe under at-least-once
// delivery.
func (h *NotificationEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event shared.NotificationEvent
	if err := json.Unmarshal(value, &event); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal notification event from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		// Send to DLQ if available
		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
			} else {
				h.logger.Info("Successfully published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received notification event",
		"event_id", event.EventID.String(),
		"type", event.Type,
		"patient_id", event.PatientID.String(),
	)

	log := notification.NewLog(&event, notification.StatusDelivered)
	if err := h.notificationRepo.Create(ctx, log); err != nil {
		var duplicate notification.ErrDuplicateLog
		if errors.As(err, &duplicate) {
			logger.Info("Notification event already recorded, committing duplicate delivery",
				"event_id", event.EventID.String(),
			)
			return nil
		}
		logger.Error("Failed to record notification",
			"event_id", event.EventID.String(),
			"error", err,
		)
		return fmt.Errorf("recording notification %s failed: %w", event.EventID.String(), err)
	}

	logger.Info("Notification recorded", "event_id", event.EventID.String())
	return nil
}

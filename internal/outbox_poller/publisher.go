package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dental-clinic-backend/internal/domain/outbox"
	"github.com/dental-clinic-backend/internal/domain/shared"
	"github.com/dental-clinic-backend/internal/platform/messaging/producers"
)

// NotificationPublisher pushes outbox messages onto the notification topic
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, message *outbox.Message) error
}

// NotificationPublisherImpl implements NotificationPublisher
type NotificationPublisherImpl struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewNotificationPublisher creates a new publisher
func NewNotificationPublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) NotificationPublisher {
	return &NotificationPublisherImpl{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishNotification sends one outbox message to Kafka and marks it
// PROCESSED. A payload that no longer parses is poison and goes straight to
// FAILED_TO_PUBLISH instead of burning retries.
func (p *NotificationPublisherImpl) PublishNotification(ctx context.Context, message *outbox.Message) error {
	event, err := message.GetEvent()
	if err != nil {
		p.logger.Error("Failed to unmarshal notification event from outbox payload",
			"outbox_id", message.ID, "event_id", message.EventID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger
	if event.CorrelationID != "" {
		logger = p.logger.With("correlation_id", event.CorrelationID)
	}

	current, err := p.outboxRepo.GetByEventID(ctx, message.EventID)
	if err != nil && !errors.Is(err, outbox.ErrMessageNotFound{}) {
		logger.Error("Failed to check current outbox status before publishing", "event_id", message.EventID, "error", err)
		return fmt.Errorf("failed to check outbox status for event %s: %w", message.EventID, err)
	}
	if current != nil && current.Status != shared.OutboxStatusPending {
		logger.Info("Outbox message no longer PENDING, skipping publish",
			"outbox_id", message.ID, "event_id", message.EventID, "status", string(current.Status),
		)
		return nil
	}

	logger.Info("Publishing outbox message to notification topic", "outbox_id", message.ID, "event_id", message.EventID)

	// Key by event ID so redeliveries land on the same partition and the
	// dispatcher can deduplicate.
	if err := p.producer.Publish(ctx, event.EventID.String(), event); err != nil {
		return fmt.Errorf("failed to publish notification event %s: %w", event.EventID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "event_id", message.EventID, "error", err,
		)
		return fmt.Errorf("publish for %s OK, but failed to mark outbox %d as PROCESSED: %w", message.EventID, message.ID, err)
	}

	logger.Info("Outbox message published and marked as PROCESSED", "outbox_id", message.ID, "event_id", message.EventID)
	return nil
}

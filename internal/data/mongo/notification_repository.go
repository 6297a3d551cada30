package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dental-clinic-backend/internal/domain/notification"
)

const (
	// NotificationCollectionName is the name of the notification log collection in MongoDB
	NotificationCollectionName = "notification_logs"
)

// NotificationRepository implements the notification.Repository interface for MongoDB
type NotificationRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewNotificationRepository creates a new MongoDB notification log repository
func NewNotificationRepository(logger *slog.Logger, db *mongo.Database) notification.Repository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new notification log after checking for duplicates.
// Returns ErrDuplicateLog if a log with the same event ID exists, which keeps
// redelivered Kafka messages from producing duplicate history.
func (r *NotificationRepository) Create(ctx context.Context, log *notification.Log) error {
	collection := r.db.Collection(NotificationCollectionName)

	existing, err := r.GetByEventID(ctx, log.EventID)
	if err != nil && !errors.Is(err, notification.ErrLogNotFound{}) {
		r.logger.Error("Failed to check for existing notification log",
			"event_id", log.EventID.String(),
			"error", err)
		return fmt.Errorf("failed to check for existing notification log: %w", err)
	}

	if existing != nil {
		return notification.ErrDuplicateLog{EventID: log.EventID}
	}

	_, err = collection.InsertOne(ctx, log)
	if err != nil {
		r.logger.Error("Failed to create notification log",
			"event_id", log.EventID.String(),
			"error", err)
		return fmt.Errorf("failed to create notification log: %w", err)
	}

	return nil
}

// GetByEventID retrieves a notification log by its event ID.
// Returns ErrLogNotFound if no log exists for the given event.
func (r *NotificationRepository) GetByEventID(ctx context.Context, eventID uuid.UUID) (*notification.Log, error) {
	collection := r.db.Collection(NotificationCollectionName)

	filter := bson.M{"event_id": eventID}
	var log notification.Log
	err := collection.FindOne(ctx, filter).Decode(&log)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notification.ErrLogNotFound{EventID: eventID}
		}
		r.logger.Error("Failed to get notification log",
			"event_id", eventID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get notification log: %w", err)
	}

	return &log, nil
}

// GetByPatientID retrieves paginated notification logs for a patient.
// Results are sorted by creation time in descending order (newest first).
func (r *NotificationRepository) GetByPatientID(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*notification.Log, error) {
	collection := r.db.Collection(NotificationCollectionName)

	filter := bson.M{"patient_id": patientID}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get notification logs",
			"patient_id", patientID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get notification logs: %w", err)
	}
	defer cursor.Close(ctx)

	var logs []*notification.Log
	if err := cursor.All(ctx, &logs); err != nil {
		r.logger.Error("Failed to decode notification logs",
			"patient_id", patientID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode notification logs: %w", err)
	}

	return logs, nil
}

// GetByTimeRange retrieves paginated notification logs within the specified window.
// Results are sorted by creation time in descending order for recent-first access.
func (r *NotificationRepository) GetByTimeRange(ctx context.Context, startTime, endTime time.Time, limit, offset int) ([]*notification.Log, error) {
	collection := r.db.Collection(NotificationCollectionName)

	filter := bson.M{
		"created_at": bson.M{
			"$gte": startTime,
			"$lte": endTime,
		},
	}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get notification logs by time range",
			"start_time", startTime,
			"end_time", endTime,
			"error", err)
		return nil, fmt.Errorf("failed to get notification logs by time range: %w", err)
	}
	defer cursor.Close(ctx)

	var logs []*notification.Log
	if err := cursor.All(ctx, &logs); err != nil {
		r.logger.Error("Failed to decode notification logs",
			"start_time", startTime,
			"end_time", endTime,
			"error", err)
		return nil, fmt.Errorf("failed to decode notification logs: %w", err)
	}

	return logs, nil
}

// CountByPatientID counts the total number of notification logs for a patient
func (r *NotificationRepository) CountByPatientID(ctx context.Context, patientID uuid.UUID) (int64, error) {
	collection := r.db.Collection(NotificationCollectionName)

	filter := bson.M{"patient_id": patientID}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count notification logs",
			"patient_id", patientID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count notification logs: %w", err)
	}

	return count, nil
}

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dental-clinic-backend/internal/domain/notification"
)

// NotificationServiceImpl implements the NotificationService interface. It
// reads the dispatch history written by the notification dispatcher.
type NotificationServiceImpl struct {
	notificationRepo notification.Repository
	logger           *slog.Logger
}

// NewNotificationService creates a new notification history service
func NewNotificationService(logger *slog.Logger, notificationRepo notification.Repository) NotificationService {
	return &NotificationServiceImpl{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// GetPatientNotifications returns a paginated dispatch history for a patient,
// together with the total count.
func (s *NotificationServiceImpl) GetPatientNotifications(ctx context.Context, patientID uuid.UUID, page, perPage int) ([]*notification.Log, int64, error) {
	offset := (page - 1) * perPage

	logs, err := s.notificationRepo.GetByPatientID(ctx, patientID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.notificationRepo.CountByPatientID(ctx, patientID)
	if err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// GetRecentNotifications returns dispatches since the given time, newest first
func (s *NotificationServiceImpl) GetRecentNotifications(ctx context.Context, since time.Time, page, perPage int) ([]*notification.Log, error) {
	offset := (page - 1) * perPage
	return s.notificationRepo.GetByTimeRange(ctx, since, time.Now(), perPage, offset)
}

package notification_dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dental-clinic-backend/internal/domain/notification"
	"github.com/dental-clinic-backend/internal/domain/shared"
)

// MockNotificationRepo for testing
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, log *notification.Log) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockNotificationRepo) GetByEventID(ctx context.Context, eventID uuid.UUID) (*notification.Log, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.Log), args.Error(1)
}

func (m *MockNotificationRepo) GetByPatientID(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*notification.Log, error) {
	args := m.Called(ctx, patientID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*notification.Log), args.Error(1)
}

func (m *MockNotificationRepo) GetByTimeRange(ctx context.Context, startTime, endTime time.Time, limit, offset int) ([]*notification.Log, error) {
	args := m.Called(ctx, startTime, endTime, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*notification.Log), args.Error(1)
}

func (m *MockNotificationRepo) CountByPatientID(ctx context.Context, patientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, patientID)
	return args.Get(0).(int64), args.Error(1)
}

// MockDLQPublisher for testing
type MockDLQPublisher struct {
	mock.Mock
}

func (m *MockDLQPublisher) PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error {
	args := m.Called(ctx, key, originalMessageValue, reason)
	return args.Error(0)
}

func (m *MockDLQPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func testEvent() *shared.NotificationEvent {
	return &shared.NotificationEvent{
		EventID:       uuid.New(),
		Type:          shared.NotificationPaymentRecorded,
		PatientID:     uuid.New(),
		PatientName:   "Lina Haddad",
		Message:       "Payment of 150.00 recorded for Lina Haddad",
		CorrelationID: "corr-1",
		Timestamp:     time.Now(),
	}
}

func TestNotificationEventHandler_HandleMessage(t *testing.T) {
	logger := slog.Default()

	t.Run("records delivered notification", func(t *testing.T) {
		repo := &MockNotificationRepo{}
		dlq := &MockDLQPublisher{}
		handler := NewNotificationEventHandler(logger, repo, dlq)

		event := testEvent()
		value, err := json.Marshal(event)
		require.NoError(t, err)

		repo.On("Create", mock.Anything, mock.MatchedBy(func(log *notification.Log) bool {
			return log.EventID == event.EventID && log.Status == notification.StatusDelivered
		})).Return(nil).Once()

		err = handler.HandleMessage(context.Background(), []byte(event.EventID.String()), value)

		assert.NoError(t, err)
		repo.AssertExpectations(t)
		dlq.AssertNotCalled(t, "PublishToDLQ")
	})

	t.Run("duplicate delivery commits without error", func(t *testing.T) {
		repo := &MockNotificationRepo{}
		dlq := &MockDLQPublisher{}
		handler := NewNotificationEventHandler(logger, repo, dlq)

		event := testEvent()
		value, err := json.Marshal(event)
		require.NoError(t, err)

		repo.On("Create", mock.Anything, mock.AnythingOfType("*notification.Log")).
			Return(notification.ErrDuplicateLog{EventID: event.EventID}).Once()

		err = handler.HandleMessage(context.Background(), []byte(event.EventID.String()), value)

		assert.NoError(t, err)
	})

	t.Run("poison message goes to DLQ and commits", func(t *testing.T) {
		repo := &MockNotificationRepo{}
		dlq := &MockDLQPublisher{}
		handler := NewNotificationEventHandler(logger, repo, dlq)

		value := []byte(`{not json`)
		dlq.On("PublishToDLQ", mock.Anything, "key-1", value, mock.AnythingOfType("string")).Return(nil).Once()

		err := handler.HandleMessage(context.Background(), []byte("key-1"), value)

		assert.NoError(t, err)
		repo.AssertNotCalled(t, "Create")
		dlq.AssertExpectations(t)
	})

	t.Run("poison message with DLQ failure is retried", func(t *testing.T) {
		repo := &MockNotificationRepo{}
		dlq := &MockDLQPublisher{}
		handler := NewNotificationEventHandler(logger, repo, dlq)

		value := []byte(`{not json`)
		dlq.On("PublishToDLQ", mock.Anything, "key-1", value, mock.AnythingOfType("string")).
			Return(errors.New("dlq unavailable")).Once()

		err := handler.HandleMessage(context.Background(), []byte("key-1"), value)

		assert.Error(t, err)
	})

	t.Run("storage failure is surfaced for redelivery", func(t *testing.T) {
		repo := &MockNotificationRepo{}
		dlq := &MockDLQPublisher{}
		handler := NewNotificationEventHandler(logger, repo, dlq)

		event := testEvent()
		value, err := json.Marshal(event)
		require.NoError(t, err)

		repo.On("Create", mock.Anything, mock.AnythingOfType("*notification.Log")).
			Return(errors.New("mongo down")).Once()

		err = handler.HandleMessage(context.Background(), []byte(event.EventID.String()), value)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "recording notification")
	})
}

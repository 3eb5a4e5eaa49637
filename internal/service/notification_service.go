package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lingua-go-api/internal/models"
	"github.com/noah-isme/lingua-go-api/internal/observability"
	"github.com/noah-isme/lingua-go-api/internal/repository"
)

// NotificationService records pipeline events for students. The database row
// is the durable part; the redis publish is best-effort fan-out for live
// listeners and never fails the caller.
type NotificationService interface {
	Notify(ctx context.Context, studentID uint, notificationType, message string) error
	ListByStudent(ctx context.Context, studentID uint, limit, offset int) ([]models.Notification, error)
}

type notificationService struct {
	notifications repository.NotificationRepository
	publisher     *redis.Client
	logger        zerolog.Logger
}

// NewNotificationService constructs a notification service. The redis client
// is optional; without it, notifications are persisted only.
func NewNotificationService(notifications repository.NotificationRepository, publisher *redis.Client, logger zerolog.Logger) NotificationService {
	return &notificationService{
		notifications: notifications,
		publisher:     publisher,
		logger:        logger.With().Str("component", "notification_service").Logger(),
	}
}

func (s *notificationService) Notify(ctx context.Context, studentID uint, notificationType, message string) error {
	notification := models.Notification{
		StudentID: studentID,
		Type:      notificationType,
		Message:   message,
	}
	if err := s.notifications.Create(ctx, &notification); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}

	observability.Notifications().WithLabelValues(notificationType).Inc()
	s.publish(ctx, notification)
	return nil
}

func (s *notificationService) ListByStudent(ctx context.Context, studentID uint, limit, offset int) ([]models.Notification, error) {
	return s.notifications.ListByStudent(ctx, studentID, limit, offset)
}

func (s *notificationService) publish(ctx context.Context, notification models.Notification) {
	if s.publisher == nil {
		return
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		return
	}

	channel := fmt.Sprintf("notifications:student:%d", notification.StudentID)
	if err := s.publisher.Publish(ctx, channel, payload).Err(); err != nil {
		s.logger.Warn().Err(err).Str("channel", channel).Msg("notification publish failed")
	}
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-tutoring-be/internal/model"
	"ai-tutoring-be/internal/pkg/logger"
	"ai-tutoring-be/internal/repository"
	"ai-tutoring-be/pkg/events"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification model.Notification)
	Broadcast(notification model.Notification)
}

// notificationTemplate maps a governance event type onto the user
// facing notice.
type notificationTemplate struct {
	Title   string
	Message string
}

var notificationTemplates = map[string]notificationTemplate{
	events.TypeSessionCompleted: {
		Title:   "Session completed",
		Message: "Nice work, you finished your tutoring session.",
	},
	events.TypeSessionAbandoned: {
		Title:   "Session closed",
		Message: "Your tutoring session was closed after a period of inactivity.",
	},
	events.TypeQuotaWarning: {
		Title:   "Approaching a limit",
		Message: "You are getting close to one of your usage limits.",
	},
	events.TypeHintIssued: {
		Title:   "Hint available",
		Message: "Your tutor left you a hint.",
	},
}

type NotificationService struct {
	repo     repository.NotificationRepository
	delivery NotificationDelivery
	logger   logger.ILogger
}

func NewNotificationService(repo repository.NotificationRepository, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		repo:     repo,
		delivery: delivery,
		logger:   log,
	}
}

// HandleEvent turns a governance event into a stored notification and a
// real-time push. Events without a template are ignored on purpose; not
// every event is user facing.
func (s *NotificationService) HandleEvent(ctx context.Context, event events.Event) error {
	template, ok := notificationTemplates[event.EventType()]
	if !ok {
		return nil
	}

	payload := event.Payload()
	userIDStr, _ := payload["user_id"].(string)
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		s.logger.Warn("NotificationService", "Event without a valid user_id", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
		return nil
	}

	metadata, _ := json.Marshal(payload)

	notif := model.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		TypeCode:  event.EventType(),
		Title:     template.Title,
		Message:   template.Message,
		Metadata:  datatypes.JSON(metadata),
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	if err := s.repo.CreateNotification(ctx, &notif); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}

	if s.delivery != nil {
		s.delivery.Send(userID, notif)
	}
	return nil
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	return s.repo.GetNotificationsByUserID(ctx, userID, limit, offset)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, notificationID)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

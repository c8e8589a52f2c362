package service

import (
	"context"
	"errors"

	"rehabtrack/rehab-app/internal/domain"
	"rehabtrack/rehab-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrNotificationNotFound = errors.New("notification not found")
)

// DefaultNotificationLimit bounds how many entries a listing returns.
const DefaultNotificationLimit = 50

type NotificationService interface {
	// Notify appends one entry to the recipient's log. Pure append: no dedup,
	// no rate limiting.
	Notify(ctx context.Context, userID primitive.ObjectID, title, message string, typ domain.NotificationType) (primitive.ObjectID, error)
	ListForUser(ctx context.Context, callerID, userID primitive.ObjectID) ([]domain.Notification, error)
	MarkRead(ctx context.Context, callerID, notificationID primitive.ObjectID) error
	MarkAllRead(ctx context.Context, callerID, userID primitive.ObjectID) error
}

// --- Service Implementation ---

type notificationService struct {
	notificationRepo repository.NotificationRepository
}

// NewNotificationService creates a new instance of notificationService.
func NewNotificationService(notificationRepo repository.NotificationRepository) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
	}
}

// Notify appends a notification for the given recipient.
func (s *notificationService) Notify(ctx context.Context, userID primitive.ObjectID, title, message string, typ domain.NotificationType) (primitive.ObjectID, error) {
	if userID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("recipient user ID is required")
	}

	notification := &domain.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    typ,
	}
	return s.notificationRepo.Create(ctx, notification)
}

// ListForUser returns the caller's own notifications, newest first.
func (s *notificationService) ListForUser(ctx context.Context, callerID, userID primitive.ObjectID) ([]domain.Notification, error) {
	if callerID != userID {
		return nil, ErrAccessDenied
	}
	return s.notificationRepo.GetByUserID(ctx, userID, DefaultNotificationLimit)
}

// MarkRead flips the read flag on a notification the caller owns.
// Marking an already-read notification succeeds silently.
func (s *notificationService) MarkRead(ctx context.Context, callerID, notificationID primitive.ObjectID) error {
	// Owner-scoped lookup: absent and not-owned are both "not found".
	notification, err := s.notificationRepo.GetByIDAndUser(ctx, notificationID, callerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	if notification.IsRead {
		return nil // Idempotent
	}
	return s.notificationRepo.MarkRead(ctx, notificationID)
}

// MarkAllRead flips the read flag on every notification of the caller.
func (s *notificationService) MarkAllRead(ctx context.Context, callerID, userID primitive.ObjectID) error {
	if callerID != userID {
		return ErrAccessDenied
	}
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

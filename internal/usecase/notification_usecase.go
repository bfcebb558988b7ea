package usecase

import (
	"context"
	"time"

	"balikin/internal/domain/entity"
	"balikin/internal/domain/repository"
	"balikin/internal/infrastructure/websocket"
	"balikin/pkg/errors"
	"balikin/pkg/logger"
)

// EventPusher is the slice of the delivery layer the use cases need for
// outbound pushes. Satisfied by *websocket.Manager.
type EventPusher interface {
	SendToUser(userID string, event websocket.Event) error
	BroadcastToRoom(roomID string, event websocket.Event, excludeUserID string)
	IsSubscribed(roomID, userID string) bool
}

// NotifyInput describes one notification to fan out.
type NotifyInput struct {
	RecipientID string
	Type        string
	Title       string
	Body        string
	ListingID   string
	RoomID      string
}

// notificationPush is the lightweight payload sent over the recipient's
// private channel. The full record stays in the outbox.
type notificationPush struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type NotificationUseCase struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	pusher           EventPusher
}

func NewNotificationUseCase(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	pusher EventPusher,
) *NotificationUseCase {
	return &NotificationUseCase{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		pusher:           pusher,
	}
}

// Notify persists a notification for the recipient and pushes it over their
// private channel. An unknown recipient yields (nil, nil): this is best-effort
// infrastructure, not a transactional guarantee. Push failure never rolls
// back the persisted record.
func (uc *NotificationUseCase) Notify(ctx context.Context, input NotifyInput) (*entity.Notification, error) {
	if _, err := uc.userRepo.GetByID(ctx, input.RecipientID); err != nil {
		logger.Warn("Skipping notification for unknown recipient %s: %v", input.RecipientID, err)
		return nil, nil
	}

	notification := &entity.Notification{
		RecipientID: input.RecipientID,
		Type:        input.Type,
		Title:       input.Title,
		Body:        input.Body,
		ListingID:   input.ListingID,
		RoomID:      input.RoomID,
	}
	if err := uc.notificationRepo.Create(ctx, notification); err != nil {
		return nil, errors.Internal("Failed to save notification", err)
	}

	uc.pushToRecipient(notification)
	return notification, nil
}

// TryNotify is the fire-and-forget form of Notify. It cannot fail its
// caller: errors are logged and swallowed.
func (uc *NotificationUseCase) TryNotify(ctx context.Context, input NotifyInput) {
	if _, err := uc.Notify(ctx, input); err != nil {
		logger.Error("Notification for %s failed: %v", input.RecipientID, err)
	}
}

// TryNotifyBatch applies TryNotify per entry. Individual failures never stop
// the rest of the batch.
func (uc *NotificationUseCase) TryNotifyBatch(ctx context.Context, inputs []NotifyInput) {
	for _, input := range inputs {
		uc.TryNotify(ctx, input)
	}
}

func (uc *NotificationUseCase) pushToRecipient(n *entity.Notification) {
	event := websocket.NewEvent(websocket.EventNotification, notificationPush{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Body:      n.Body,
		CreatedAt: n.CreatedAt,
	})
	if err := uc.pusher.SendToUser(n.RecipientID, event); err != nil {
		logger.Debug("Notification push to %s skipped: %v", n.RecipientID, err)
	}
}

// ListForUser returns the recipient's notifications, newest first, with the
// total row count for pagination.
func (uc *NotificationUseCase) ListForUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, int64, error) {
	return uc.notificationRepo.ListByRecipient(ctx, userID, limit, offset)
}

// MarkRead flips one notification to read. Only the recipient may do so.
func (uc *NotificationUseCase) MarkRead(ctx context.Context, notificationID, userID string) (*entity.Notification, error) {
	notification, err := uc.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if notification.RecipientID != userID {
		return nil, errors.Forbidden("You can only update your own notifications", nil)
	}

	if notification.Read {
		return notification, nil
	}

	notification.Read = true
	if err := uc.notificationRepo.Update(ctx, notification); err != nil {
		return nil, err
	}
	return notification, nil
}

// MarkAllRead flips every unread notification of the recipient and returns
// how many changed.
func (uc *NotificationUseCase) MarkAllRead(ctx context.Context, userID string) (int, error) {
	return uc.notificationRepo.MarkAllRead(ctx, userID)
}

// Delete removes one notification. Only the recipient may do so.
func (uc *NotificationUseCase) Delete(ctx context.Context, notificationID, userID string) error {
	notification, err := uc.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if notification.RecipientID != userID {
		return errors.Forbidden("You can only delete your own notifications", nil)
	}

	return uc.notificationRepo.Delete(ctx, notificationID)
}

package repository

import (
	"context"

	"balikin/internal/domain/entity"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	GetByID(ctx context.Context, id string) (*entity.Notification, error)
	ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]*entity.Notification, int64, error)
	Update(ctx context.Context, notification *entity.Notification) error
	MarkAllRead(ctx context.Context, recipientID string) (int, error)
	Delete(ctx context.Context, id string) error
}

package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"balikin/internal/domain/entity"
	"balikin/internal/domain/repository"
	"balikin/pkg/errors"
)

type memoryNotificationRepository struct {
	mu             sync.RWMutex
	notifications  map[string]*entity.Notification
	idsByRecipient map[string][]string
}

func NewMemoryNotificationRepository() repository.NotificationRepository {
	return &memoryNotificationRepository{
		notifications:  make(map[string]*entity.Notification),
		idsByRecipient: make(map[string][]string),
	}
}

func cloneNotification(n *entity.Notification) *entity.Notification {
	copied := *n
	return &copied
}

func (r *memoryNotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}

	r.notifications[notification.ID] = cloneNotification(notification)
	r.idsByRecipient[notification.RecipientID] = append(r.idsByRecipient[notification.RecipientID], notification.ID)

	return nil
}

func (r *memoryNotificationRepository) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	notification, ok := r.notifications[id]
	if !ok {
		return nil, errors.NotFound("Notification", nil)
	}
	return cloneNotification(notification), nil
}

func (r *memoryNotificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]*entity.Notification, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.idsByRecipient[recipientID]
	total := int64(len(ids))

	// Newest first: walk the insertion-ordered index backwards.
	var notifications []*entity.Notification
	for i := len(ids) - 1 - offset; i >= 0; i-- {
		if limit > 0 && len(notifications) >= limit {
			break
		}
		if notification, ok := r.notifications[ids[i]]; ok {
			notifications = append(notifications, cloneNotification(notification))
		}
	}

	return notifications, total, nil
}

func (r *memoryNotificationRepository) Update(ctx context.Context, notification *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.notifications[notification.ID]; !ok {
		return errors.NotFound("Notification", nil)
	}
	r.notifications[notification.ID] = cloneNotification(notification)
	return nil
}

func (r *memoryNotificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	updated := 0
	for _, id := range r.idsByRecipient[recipientID] {
		notification, ok := r.notifications[id]
		if !ok || notification.Read {
			continue
		}
		notification.Read = true
		updated++
	}
	return updated, nil
}

func (r *memoryNotificationRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	notification, ok := r.notifications[id]
	if !ok {
		return errors.NotFound("Notification", nil)
	}

	delete(r.notifications, id)
	ids := r.idsByRecipient[notification.RecipientID]
	for i, candidate := range ids {
		if candidate == id {
			r.idsByRecipient[notification.RecipientID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}

	return nil
}

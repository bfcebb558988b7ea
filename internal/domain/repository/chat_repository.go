package repository

import (
	"context"
	"time"

	"balikin/internal/domain/entity"
)

type ChatRepository interface {
	CreateRoom(ctx context.Context, room *entity.ChatRoom) error
	GetRoomByID(ctx context.Context, id string) (*entity.ChatRoom, error)
	GetRoomByPairKey(ctx context.Context, pairKey string) (*entity.ChatRoom, error)
	ListRoomsByUserID(ctx context.Context, userID string) ([]*entity.ChatRoom, error)
	// TouchRoom advances the room's last-activity timestamp.
	TouchRoom(ctx context.Context, roomID string, at time.Time) error
	// DeleteRoom removes the room and all of its messages.
	DeleteRoom(ctx context.Context, roomID string) error
	// ListRoomsIdleSince returns rooms whose last activity is strictly older
	// than cutoff.
	ListRoomsIdleSince(ctx context.Context, cutoff time.Time) ([]*entity.ChatRoom, error)

	// Message methods
	CreateMessage(ctx context.Context, message *entity.Message) error
	ListMessagesByRoom(ctx context.Context, roomID string, limit, offset int) ([]*entity.Message, int64, error)
	LatestMessage(ctx context.Context, roomID string) (*entity.Message, error)
	// MarkMessagesRead flips every unread message in the room that was not
	// sent by readerID, stamping readAt, and returns how many were flipped.
	MarkMessagesRead(ctx context.Context, roomID, readerID string, at time.Time) (int, error)
	// CountUnread counts messages in the room not sent by userID and not read.
	CountUnread(ctx context.Context, roomID, userID string) (int, error)
}

package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"balikin/internal/domain/entity"
	"balikin/internal/domain/repository"
	"balikin/pkg/errors"
	"balikin/pkg/logger"
)

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

func (r *firestoreChatRepository) CreateRoom(ctx context.Context, room *entity.ChatRoom) error {
	if room.ID == "" {
		room.ID = uuid.New().String()
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now()
	}
	if room.LastActivityAt.IsZero() {
		room.LastActivityAt = room.CreatedAt
	}

	_, err := r.client.Collection("rooms").Doc(room.ID).Set(ctx, room)
	if err != nil {
		return errors.Internal("Failed to create room", err)
	}

	return nil
}

func (r *firestoreChatRepository) GetRoomByID(ctx context.Context, id string) (*entity.ChatRoom, error) {
	doc, err := r.client.Collection("rooms").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Room", err)
		}
		return nil, errors.Internal("Failed to get room", err)
	}

	var room entity.ChatRoom
	if err := doc.DataTo(&room); err != nil {
		return nil, errors.Internal("Failed to parse room data", err)
	}

	return &room, nil
}

func (r *firestoreChatRepository) GetRoomByPairKey(ctx context.Context, pairKey string) (*entity.ChatRoom, error) {
	iter := r.client.Collection("rooms").Where("pairKey", "==", pairKey).Limit(1).Documents(ctx)
	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Room", nil)
		}
		return nil, errors.Internal("Failed to query room by pair key", err)
	}

	var room entity.ChatRoom
	if err := doc.DataTo(&room); err != nil {
		return nil, errors.Internal("Failed to parse room data", err)
	}

	return &room, nil
}

func (r *firestoreChatRepository) ListRoomsByUserID(ctx context.Context, userID string) ([]*entity.ChatRoom, error) {
	docs, err := r.client.Collection("rooms").Where("participants", "array-contains", userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to fetch rooms", err)
	}

	var rooms []*entity.ChatRoom
	for _, doc := range docs {
		var room entity.ChatRoom
		if err := doc.DataTo(&room); err != nil {
			logger.Warn("Skipping malformed room document %s: %v", doc.Ref.ID, err)
			continue
		}
		rooms = append(rooms, &room)
	}

	return rooms, nil
}

func (r *firestoreChatRepository) TouchRoom(ctx context.Context, roomID string, at time.Time) error {
	_, err := r.client.Collection("rooms").Doc(roomID).Update(ctx, []firestore.Update{
		{Path: "lastActivityAt", Value: at},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Room", err)
		}
		return errors.Internal("Failed to update room activity", err)
	}
	return nil
}

func (r *firestoreChatRepository) DeleteRoom(ctx context.Context, roomID string) error {
	// Cascade: messages first, then the room document itself.
	messageDocs, err := r.client.Collection("rooms").Doc(roomID).Collection("messages").Documents(ctx).GetAll()
	if err != nil {
		return errors.Internal("Failed to list messages for room delete", err)
	}
	for _, doc := range messageDocs {
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return errors.Internal("Failed to delete room message", err)
		}
	}

	if _, err := r.client.Collection("rooms").Doc(roomID).Delete(ctx); err != nil {
		return errors.Internal("Failed to delete room", err)
	}

	return nil
}

func (r *firestoreChatRepository) ListRoomsIdleSince(ctx context.Context, cutoff time.Time) ([]*entity.ChatRoom, error) {
	docs, err := r.client.Collection("rooms").Where("lastActivityAt", "<", cutoff).Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to query idle rooms", err)
	}

	var rooms []*entity.ChatRoom
	for _, doc := range docs {
		var room entity.ChatRoom
		if err := doc.DataTo(&room); err != nil {
			logger.Warn("Skipping malformed room document %s: %v", doc.Ref.ID, err)
			continue
		}
		rooms = append(rooms, &room)
	}

	return rooms, nil
}

func (r *firestoreChatRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	_, err := r.client.Collection("rooms").Doc(message.RoomID).Collection("messages").Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}

	return nil
}

func (r *firestoreChatRepository) ListMessagesByRoom(ctx context.Context, roomID string, limit, offset int) ([]*entity.Message, int64, error) {
	query := r.client.Collection("rooms").Doc(roomID).Collection("messages").OrderBy("createdAt", firestore.Desc)

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to count messages for room", err)
	}
	total := int64(len(countDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var messages []*entity.Message

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Internal("Failed to iterate messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			return nil, 0, errors.Internal("Failed to parse message data", err)
		}

		messages = append(messages, &message)
	}

	return messages, total, nil
}

func (r *firestoreChatRepository) LatestMessage(ctx context.Context, roomID string) (*entity.Message, error) {
	iter := r.client.Collection("rooms").Doc(roomID).Collection("messages").
		OrderBy("createdAt", firestore.Desc).Limit(1).Documents(ctx)

	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Message", nil)
		}
		return nil, errors.Internal("Failed to get latest message", err)
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}

	return &message, nil
}

func (r *firestoreChatRepository) MarkMessagesRead(ctx context.Context, roomID, readerID string, at time.Time) (int, error) {
	docs, err := r.client.Collection("rooms").Doc(roomID).Collection("messages").
		Where("read", "==", false).Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to query unread messages", err)
	}

	flipped := 0
	for _, doc := range docs {
		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			logger.Warn("Skipping malformed message document %s: %v", doc.Ref.ID, err)
			continue
		}
		if message.SenderID == readerID {
			continue
		}

		_, err := doc.Ref.Update(ctx, []firestore.Update{
			{Path: "read", Value: true},
			{Path: "readAt", Value: at},
		})
		if err != nil {
			return flipped, errors.Internal("Failed to update message read state", err)
		}
		flipped++
	}

	return flipped, nil
}

func (r *firestoreChatRepository) CountUnread(ctx context.Context, roomID, userID string) (int, error) {
	docs, err := r.client.Collection("rooms").Doc(roomID).Collection("messages").
		Where("read", "==", false).Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to count unread messages", err)
	}

	count := 0
	for _, doc := range docs {
		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			continue
		}
		if message.SenderID != userID {
			count++
		}
	}

	return count, nil
}

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

// memoryChatRepository keeps rooms and messages in process memory. The
// primary room map is mirrored by two secondary indexes (pair key and per
// participant) that are kept consistent on every insert and delete.
type memoryChatRepository struct {
	mu             sync.RWMutex
	rooms          map[string]*entity.ChatRoom
	roomsByPairKey map[string]string
	roomIDsByUser  map[string][]string
	messagesByRoom map[string][]*entity.Message
}

func NewMemoryChatRepository() repository.ChatRepository {
	return &memoryChatRepository{
		rooms:          make(map[string]*entity.ChatRoom),
		roomsByPairKey: make(map[string]string),
		roomIDsByUser:  make(map[string][]string),
		messagesByRoom: make(map[string][]*entity.Message),
	}
}

func cloneRoom(room *entity.ChatRoom) *entity.ChatRoom {
	copied := *room
	copied.Participants = append([]string(nil), room.Participants...)
	return &copied
}

func cloneMessage(message *entity.Message) *entity.Message {
	copied := *message
	if message.ReadAt != nil {
		readAt := *message.ReadAt
		copied.ReadAt = &readAt
	}
	return &copied
}

func (r *memoryChatRepository) CreateRoom(ctx context.Context, room *entity.ChatRoom) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if room.ID == "" {
		room.ID = uuid.New().String()
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now()
	}
	if room.LastActivityAt.IsZero() {
		room.LastActivityAt = room.CreatedAt
	}

	if _, exists := r.roomsByPairKey[room.PairKey]; exists {
		return errors.Internal("Room already exists for participant pair", nil)
	}

	r.rooms[room.ID] = cloneRoom(room)
	r.roomsByPairKey[room.PairKey] = room.ID
	for _, participant := range room.Participants {
		r.roomIDsByUser[participant] = append(r.roomIDsByUser[participant], room.ID)
	}

	return nil
}

func (r *memoryChatRepository) GetRoomByID(ctx context.Context, id string) (*entity.ChatRoom, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, errors.NotFound("Room", nil)
	}
	return cloneRoom(room), nil
}

func (r *memoryChatRepository) GetRoomByPairKey(ctx context.Context, pairKey string) (*entity.ChatRoom, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.roomsByPairKey[pairKey]
	if !ok {
		return nil, errors.NotFound("Room", nil)
	}
	return cloneRoom(r.rooms[id]), nil
}

func (r *memoryChatRepository) ListRoomsByUserID(ctx context.Context, userID string) ([]*entity.ChatRoom, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rooms []*entity.ChatRoom
	for _, id := range r.roomIDsByUser[userID] {
		if room, ok := r.rooms[id]; ok {
			rooms = append(rooms, cloneRoom(room))
		}
	}
	return rooms, nil
}

func (r *memoryChatRepository) TouchRoom(ctx context.Context, roomID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return errors.NotFound("Room", nil)
	}
	room.LastActivityAt = at
	return nil
}

func (r *memoryChatRepository) DeleteRoom(ctx context.Context, roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return errors.NotFound("Room", nil)
	}

	delete(r.rooms, roomID)
	delete(r.roomsByPairKey, room.PairKey)
	delete(r.messagesByRoom, roomID)
	for _, participant := range room.Participants {
		ids := r.roomIDsByUser[participant]
		for i, id := range ids {
			if id == roomID {
				r.roomIDsByUser[participant] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
	}

	return nil
}

func (r *memoryChatRepository) ListRoomsIdleSince(ctx context.Context, cutoff time.Time) ([]*entity.ChatRoom, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var idle []*entity.ChatRoom
	for _, room := range r.rooms {
		if room.LastActivityAt.Before(cutoff) {
			idle = append(idle, cloneRoom(room))
		}
	}
	return idle, nil
}

func (r *memoryChatRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[message.RoomID]; !ok {
		return errors.NotFound("Room", nil)
	}

	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	// Append order is the tie-breaker for equal creation times; messages are
	// never reordered after this point.
	r.messagesByRoom[message.RoomID] = append(r.messagesByRoom[message.RoomID], cloneMessage(message))
	return nil
}

func (r *memoryChatRepository) ListMessagesByRoom(ctx context.Context, roomID string, limit, offset int) ([]*entity.Message, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.messagesByRoom[roomID]
	total := int64(len(stored))

	// Newest first for paging.
	var messages []*entity.Message
	for i := len(stored) - 1 - offset; i >= 0; i-- {
		if limit > 0 && len(messages) >= limit {
			break
		}
		messages = append(messages, cloneMessage(stored[i]))
	}

	return messages, total, nil
}

func (r *memoryChatRepository) LatestMessage(ctx context.Context, roomID string) (*entity.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.messagesByRoom[roomID]
	if len(stored) == 0 {
		return nil, errors.NotFound("Message", nil)
	}
	return cloneMessage(stored[len(stored)-1]), nil
}

func (r *memoryChatRepository) MarkMessagesRead(ctx context.Context, roomID, readerID string, at time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	flipped := 0
	for _, message := range r.messagesByRoom[roomID] {
		if message.Read || message.SenderID == readerID {
			continue
		}
		readAt := at
		message.Read = true
		message.ReadAt = &readAt
		flipped++
	}
	return flipped, nil
}

func (r *memoryChatRepository) CountUnread(ctx context.Context, roomID, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, message := range r.messagesByRoom[roomID] {
		if !message.Read && message.SenderID != userID {
			count++
		}
	}
	return count, nil
}

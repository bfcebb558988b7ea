package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"balikin/internal/domain/entity"
	"balikin/internal/domain/repository"
	"balikin/internal/infrastructure/websocket"
	"balikin/pkg/errors"
	"balikin/pkg/logger"
)

// RoomSummary is the per-room view returned to the room list: both
// participants' public profiles, the latest message preview and the caller's
// unread count for that room.
type RoomSummary struct {
	Room         *entity.ChatRoom `json:"room"`
	Participants []*entity.User   `json:"participants"`
	LastMessage  *entity.Message  `json:"lastMessage,omitempty"`
	UnreadCount  int              `json:"unreadCount"`
}

// RoomDetail is a summary plus a page of message history, newest first.
type RoomDetail struct {
	RoomSummary
	Messages      []*entity.Message `json:"messages"`
	TotalMessages int64             `json:"totalMessages"`
}

// ChatUseCase owns room identity, participant authorization, message
// persistence and read-state transitions. Writes are serialized per room;
// operations on different rooms proceed in parallel.
type ChatUseCase struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
	pusher   EventPusher
	notifier *NotificationUseCase
	locks    sync.Map // room or pair key -> *sync.Mutex
}

func NewChatUseCase(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	pusher EventPusher,
	notifier *NotificationUseCase,
) *ChatUseCase {
	return &ChatUseCase{
		chatRepo: chatRepo,
		userRepo: userRepo,
		pusher:   pusher,
		notifier: notifier,
	}
}

func (uc *ChatUseCase) lock(key string) *sync.Mutex {
	mu, _ := uc.locks.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// StartChat returns the room for the unordered pair (userID, otherUserID),
// creating it if absent. The pair key is canonical, so starting a chat from
// either side always lands in the same room.
func (uc *ChatUseCase) StartChat(ctx context.Context, userID, otherUserID string) (*entity.ChatRoom, error) {
	if userID == otherUserID {
		return nil, errors.BadRequest("Cannot start a chat with yourself", nil)
	}
	if _, err := uc.userRepo.GetByID(ctx, otherUserID); err != nil {
		return nil, errors.NotFound("User", err)
	}

	pairKey := entity.PairKey(userID, otherUserID)

	mu := uc.lock("pair:" + pairKey)
	mu.Lock()
	defer mu.Unlock()

	room, err := uc.chatRepo.GetRoomByPairKey(ctx, pairKey)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	low, high := entity.NormalizePair(userID, otherUserID)
	now := time.Now()
	room = &entity.ChatRoom{
		Participants:   []string{low, high},
		PairKey:        pairKey,
		CreatedAt:      now,
		LastActivityAt: now,
	}
	if err := uc.chatRepo.CreateRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// IsParticipant reports whether the user belongs to the room. Unknown rooms
// fail closed.
func (uc *ChatUseCase) IsParticipant(ctx context.Context, roomID, userID string) bool {
	room, err := uc.chatRepo.GetRoomByID(ctx, roomID)
	if err != nil {
		return false
	}
	return room.HasParticipant(userID)
}

// SendMessage persists a message and advances the room's last-activity
// timestamp, then fans the message out: new_message to the room channel,
// unread_count_update to the recipient, and a stored notification when the
// recipient does not have the room open. Fan-out failures never fail the
// send.
func (uc *ChatUseCase) SendMessage(ctx context.Context, roomID, senderID, content string) (*entity.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.BadRequest("Message text cannot be empty", nil)
	}

	room, err := uc.chatRepo.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, errors.Forbidden("You are not a participant of this room", err)
	}
	if !room.HasParticipant(senderID) {
		return nil, errors.Forbidden("You are not a participant of this room", nil)
	}

	mu := uc.lock(roomID)
	mu.Lock()

	message := &entity.Message{
		RoomID:   roomID,
		SenderID: senderID,
		Content:  content,
	}
	if err := uc.chatRepo.CreateMessage(ctx, message); err != nil {
		mu.Unlock()
		return nil, err
	}
	if err := uc.chatRepo.TouchRoom(ctx, roomID, message.CreatedAt); err != nil {
		logger.Error("Failed to bump last activity for room %s: %v", roomID, err)
	}
	mu.Unlock()

	uc.fanOutMessage(ctx, room, message)
	return message, nil
}

func (uc *ChatUseCase) fanOutMessage(ctx context.Context, room *entity.ChatRoom, message *entity.Message) {
	uc.pusher.BroadcastToRoom(room.ID, websocket.NewEvent(websocket.EventNewMessage, message), "")

	recipientID := room.OtherParticipant(message.SenderID)
	if recipientID == "" {
		return
	}

	uc.pushUnreadTotal(ctx, recipientID)

	if uc.notifier != nil && !uc.pusher.IsSubscribed(room.ID, recipientID) {
		sender := message.SenderID
		if user, err := uc.userRepo.GetByID(ctx, sender); err == nil && user.Username != "" {
			sender = user.Username
		}
		uc.notifier.TryNotify(ctx, NotifyInput{
			RecipientID: recipientID,
			Type:        entity.NotificationTypeMessage,
			Title:       "New message from " + sender,
			Body:        preview(message.Content),
			RoomID:      room.ID,
		})
	}
}

func preview(content string) string {
	const max = 80
	if len(content) <= max {
		return content
	}
	return content[:max] + "..."
}

// MarkRoomRead flips every unread message in the room not sent by the reader
// to read. Idempotent: a second call finds nothing to flip and emits no
// events. Returns the number of messages updated.
func (uc *ChatUseCase) MarkRoomRead(ctx context.Context, roomID, readerID string) (int, error) {
	if !uc.IsParticipant(ctx, roomID, readerID) {
		return 0, errors.Forbidden("You are not a participant of this room", nil)
	}

	mu := uc.lock(roomID)
	mu.Lock()
	updated, err := uc.chatRepo.MarkMessagesRead(ctx, roomID, readerID, time.Now())
	mu.Unlock()
	if err != nil {
		return 0, err
	}

	// No change, no events: skipping avoids redundant UI churn.
	if updated > 0 {
		uc.pusher.BroadcastToRoom(roomID, websocket.NewEvent(websocket.EventMessageRead, websocket.ReadReceiptPayload{
			RoomID:   roomID,
			ReaderID: readerID,
		}), readerID)
		uc.pushUnreadTotal(ctx, readerID)
	}
	return updated, nil
}

// GetTotalUnreadCount aggregates unread messages across every room the user
// participates in, computed live from message state. Unknown users and
// lookup failures count as zero: the UI polls this opportunistically.
func (uc *ChatUseCase) GetTotalUnreadCount(ctx context.Context, userID string) int {
	rooms, err := uc.chatRepo.ListRoomsByUserID(ctx, userID)
	if err != nil {
		logger.Debug("Unread aggregate failed for %s: %v", userID, err)
		return 0
	}

	total := 0
	for _, room := range rooms {
		count, err := uc.chatRepo.CountUnread(ctx, room.ID, userID)
		if err != nil {
			logger.Debug("Unread count failed for room %s: %v", room.ID, err)
			continue
		}
		total += count
	}
	return total
}

func (uc *ChatUseCase) pushUnreadTotal(ctx context.Context, userID string) {
	event := websocket.NewEvent(websocket.EventUnreadCountUpdate, websocket.UnreadCountPayload{
		TotalUnread: uc.GetTotalUnreadCount(ctx, userID),
	})
	if err := uc.pusher.SendToUser(userID, event); err != nil {
		logger.Debug("Unread push to %s skipped: %v", userID, err)
	}
}

// ListRoomsForUser returns the user's rooms ordered by last activity,
// newest first.
func (uc *ChatUseCase) ListRoomsForUser(ctx context.Context, userID string) ([]*RoomSummary, error) {
	rooms, err := uc.chatRepo.ListRoomsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].LastActivityAt.After(rooms[j].LastActivityAt)
	})

	summaries := make([]*RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		summary, err := uc.summarize(ctx, room, userID)
		if err != nil {
			logger.Warn("Failed to summarize room %s: %v", room.ID, err)
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// GetRoomDetail returns the room summary plus a page of messages, newest
// first. Participants only.
func (uc *ChatUseCase) GetRoomDetail(ctx context.Context, roomID, userID string, limit, offset int) (*RoomDetail, error) {
	room, err := uc.chatRepo.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(userID) {
		return nil, errors.Forbidden("You are not a participant of this room", nil)
	}

	summary, err := uc.summarize(ctx, room, userID)
	if err != nil {
		return nil, err
	}

	messages, total, err := uc.chatRepo.ListMessagesByRoom(ctx, roomID, limit, offset)
	if err != nil {
		return nil, err
	}

	return &RoomDetail{RoomSummary: *summary, Messages: messages, TotalMessages: total}, nil
}

func (uc *ChatUseCase) summarize(ctx context.Context, room *entity.ChatRoom, viewerID string) (*RoomSummary, error) {
	participants := make([]*entity.User, 0, len(room.Participants))
	for _, participantID := range room.Participants {
		user, err := uc.userRepo.GetByID(ctx, participantID)
		if err != nil {
			user = &entity.User{ID: participantID}
		}
		participants = append(participants, user)
	}

	latest, err := uc.chatRepo.LatestMessage(ctx, room.ID)
	if err != nil && !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	unread, err := uc.chatRepo.CountUnread(ctx, room.ID, viewerID)
	if err != nil {
		return nil, err
	}

	return &RoomSummary{
		Room:         room,
		Participants: participants,
		LastMessage:  latest,
		UnreadCount:  unread,
	}, nil
}

// EvictIdleRooms deletes every room idle since before the cutoff, cascading
// message deletion. Last activity is re-checked under the room's write lock
// so a message that lands mid-sweep keeps its room alive.
func (uc *ChatUseCase) EvictIdleRooms(ctx context.Context, cutoff time.Time) (int, error) {
	rooms, err := uc.chatRepo.ListRoomsIdleSince(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	evicted := 0
	for _, room := range rooms {
		mu := uc.lock(room.ID)
		mu.Lock()

		current, err := uc.chatRepo.GetRoomByID(ctx, room.ID)
		if err != nil || !current.LastActivityAt.Before(cutoff) {
			mu.Unlock()
			continue
		}

		if err := uc.chatRepo.DeleteRoom(ctx, room.ID); err != nil {
			logger.Error("Failed to evict room %s: %v", room.ID, err)
			mu.Unlock()
			continue
		}

		mu.Unlock()
		uc.locks.Delete(room.ID)
		evicted++
	}
	return evicted, nil
}

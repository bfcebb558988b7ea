package websocket

import (
	"context"
	"encoding/json"

	"balikin/pkg/logger"
)

type eventHandler func(ctx context.Context, client *Client, event Event)

// dispatch routes an inbound frame through the handler table. Unknown event
// types get an error frame back on the private channel instead of closing the
// connection.
func (m *Manager) dispatch(client *Client, payload []byte) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		m.sendError(client, "Invalid event format")
		return
	}

	handler, ok := m.handlers[event.Type]
	if !ok {
		m.sendError(client, "Unknown event type: "+event.Type)
		return
	}

	handler(context.Background(), client, event)
}

func (m *Manager) handlePing(_ context.Context, client *Client, _ Event) {
	if err := m.push(client, Event{Type: EventPong}); err != nil {
		logger.Debug("Failed to send pong to %s: %v", client.UserID, err)
	}
}

func (m *Manager) handleJoinRoom(ctx context.Context, client *Client, event Event) {
	roomID, ok := m.roomFrom(client, event)
	if !ok {
		return
	}

	if m.gateway == nil || !m.gateway.IsParticipant(ctx, roomID, client.UserID) {
		m.sendError(client, "Not a participant of this room")
		return
	}

	m.JoinRoom(roomID, client.UserID)
}

func (m *Manager) handleLeaveRoom(_ context.Context, client *Client, event Event) {
	roomID, ok := m.roomFrom(client, event)
	if !ok {
		return
	}

	m.LeaveRoom(roomID, client.UserID)
}

// handleTyping relays typing_start/typing_stop to the other subscribers of
// the room. Only current subscribers may emit them; joining already proved
// participation.
func (m *Manager) handleTyping(_ context.Context, client *Client, event Event) {
	roomID, ok := m.roomFrom(client, event)
	if !ok {
		return
	}

	if !m.IsSubscribed(roomID, client.UserID) {
		m.sendError(client, "Join the room before sending typing events")
		return
	}

	m.BroadcastToRoom(roomID, NewEvent(event.Type, TypingPayload{
		RoomID: roomID,
		UserID: client.UserID,
	}), client.UserID)
}

// handleMessageRead marks the room read on behalf of the client. The chat
// gateway fans out the read receipt and the reader's fresh unread total when
// anything actually changed.
func (m *Manager) handleMessageRead(ctx context.Context, client *Client, event Event) {
	roomID, ok := m.roomFrom(client, event)
	if !ok {
		return
	}

	if m.gateway == nil {
		m.sendError(client, "Chat is unavailable")
		return
	}

	if _, err := m.gateway.MarkRoomRead(ctx, roomID, client.UserID); err != nil {
		logger.Warn("message_read failed for %s in room %s: %v", client.UserID, roomID, err)
		m.sendError(client, "Failed to mark room as read")
	}
}

func (m *Manager) roomFrom(client *Client, event Event) (string, bool) {
	var payload RoomEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil || payload.RoomID == "" {
		m.sendError(client, "Missing roomId")
		return "", false
	}
	return payload.RoomID, true
}

func (m *Manager) sendError(client *Client, message string) {
	if err := m.push(client, NewEvent(EventError, ErrorPayload{Message: message})); err != nil {
		logger.Debug("Failed to send error frame to %s: %v", client.UserID, err)
	}
}

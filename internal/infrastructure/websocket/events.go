package websocket

import "encoding/json"

// Event names carried on the wire. Inbound events come from the client,
// outbound events are pushed by the server.
const (
	// inbound
	EventPing        = "ping"
	EventJoinRoom    = "join_room"
	EventLeaveRoom   = "leave_room"
	EventTypingStart = "typing_start"
	EventTypingStop  = "typing_stop"
	EventMessageRead = "message_read"

	// outbound
	EventPong              = "pong"
	EventError             = "error"
	EventNewMessage        = "new_message"
	EventNotification      = "notification"
	EventUnreadCountUpdate = "unread_count_update"
)

// Event is the wire envelope for every frame in both directions.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEvent marshals the payload into an envelope. Marshal errors surface as
// an empty payload; callers pass known-serializable types.
func NewEvent(eventType string, payload interface{}) Event {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{Type: eventType}
	}
	return Event{Type: eventType, Payload: raw}
}

// RoomEventPayload is the inbound payload for join_room, leave_room,
// typing_start, typing_stop and message_read.
type RoomEventPayload struct {
	RoomID string `json:"roomId"`
}

// TypingPayload is broadcast to a room when a participant starts or stops
// typing.
type TypingPayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

// ReadReceiptPayload is broadcast to a room after a participant marks it
// read.
type ReadReceiptPayload struct {
	RoomID   string `json:"roomId"`
	ReaderID string `json:"readerId"`
}

// UnreadCountPayload carries the live total across all of a user's rooms.
type UnreadCountPayload struct {
	TotalUnread int `json:"totalUnread"`
}

// ErrorPayload is sent back on the private channel when an inbound event is
// rejected.
type ErrorPayload struct {
	Message string `json:"message"`
}

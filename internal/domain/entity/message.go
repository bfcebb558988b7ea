package entity

import "time"

// Message is immutable once written; only the read state may change, and the
// read flag only ever moves false to true.
type Message struct {
	ID        string     `json:"id" firestore:"id"`
	RoomID    string     `json:"room_id" firestore:"roomId"`
	SenderID  string     `json:"sender_id" firestore:"senderId"`
	Content   string     `json:"content" firestore:"content"`
	Read      bool       `json:"read" firestore:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty" firestore:"readAt,omitempty"`
	CreatedAt time.Time  `json:"created_at" firestore:"createdAt"`
}

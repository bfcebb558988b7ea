package entity

import "time"

const (
	NotificationTypeMatch        = "match"
	NotificationTypeStatusUpdate = "status_update"
	NotificationTypeAdmin        = "admin"
	NotificationTypeMessage      = "message"
)

type Notification struct {
	ID          string    `json:"id" firestore:"id"`
	RecipientID string    `json:"recipient_id" firestore:"recipientId"`
	Type        string    `json:"type" firestore:"type"` // "match", "status_update", "admin", "message"
	Title       string    `json:"title" firestore:"title"`
	Body        string    `json:"body" firestore:"body"`
	ListingID   string    `json:"listing_id,omitempty" firestore:"listingId,omitempty"`
	RoomID      string    `json:"room_id,omitempty" firestore:"roomId,omitempty"`
	Read        bool      `json:"read" firestore:"read"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
}

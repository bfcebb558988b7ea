package entity

import "time"

// ChatRoom is a private two-party conversation. Participants are stored in
// canonical order (lexicographically smaller user id first) and PairKey is
// derived from that ordering, so any two users map to at most one room.
type ChatRoom struct {
	ID             string    `json:"id" firestore:"id"`
	Participants   []string  `json:"participants" firestore:"participants"`
	PairKey        string    `json:"-" firestore:"pairKey"`
	CreatedAt      time.Time `json:"created_at" firestore:"createdAt"`
	LastActivityAt time.Time `json:"last_activity_at" firestore:"lastActivityAt"`
}

// NormalizePair returns the canonical ordering of a participant pair.
func NormalizePair(userA, userB string) (string, string) {
	if userB < userA {
		return userB, userA
	}
	return userA, userB
}

// PairKey builds the canonical lookup key for a participant pair.
func PairKey(userA, userB string) string {
	low, high := NormalizePair(userA, userB)
	return low + ":" + high
}

// HasParticipant reports whether userID belongs to the room.
func (r *ChatRoom) HasParticipant(userID string) bool {
	for _, p := range r.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the counterpart of userID, or "" when userID is
// not a participant.
func (r *ChatRoom) OtherParticipant(userID string) string {
	for _, p := range r.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}

package entity

import "time"

const (
	ListingTypeLost  = "lost"
	ListingTypeFound = "found"

	ListingStatusActive   = "active"
	ListingStatusResolved = "resolved"
	ListingStatusClosed   = "closed"
)

type Listing struct {
	ID          string    `json:"id" firestore:"id"`
	Type        string    `json:"type" firestore:"type"` // "lost", "found"
	Category    string    `json:"category" firestore:"category"`
	Name        string    `json:"name" firestore:"name"`
	Description string    `json:"description" firestore:"description"`
	Location    string    `json:"location" firestore:"location"`
	EventDate   time.Time `json:"event_date" firestore:"eventDate"`
	OwnerID     string    `json:"owner_id" firestore:"ownerId"`
	Status      string    `json:"status" firestore:"status"` // "active", "resolved", "closed"
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updated_at" firestore:"updatedAt"`
}

// OppositeListingType maps lost to found and back. A lost listing is only
// ever matched against found inventory, and vice versa.
func OppositeListingType(listingType string) string {
	if listingType == ListingTypeLost {
		return ListingTypeFound
	}
	return ListingTypeLost
}

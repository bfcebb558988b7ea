package usecase

import (
	"context"
	"fmt"
	"time"

	"balikin/internal/domain/entity"
	"balikin/internal/domain/repository"
	"balikin/pkg/errors"
	"balikin/pkg/logger"
)

// CreateListingInput carries the validated fields for a new listing.
type CreateListingInput struct {
	Type        string    `json:"type" validate:"required,oneof=lost found"`
	Category    string    `json:"category" validate:"required"`
	Name        string    `json:"name" validate:"required,min=3,max=100"`
	Description string    `json:"description" validate:"max=1000"`
	Location    string    `json:"location" validate:"required,max=200"`
	EventDate   time.Time `json:"event_date" validate:"required"`
}

type ListingUseCase struct {
	listingRepo repository.ListingRepository
	matching    *MatchingUseCase
	notifier    *NotificationUseCase
}

var statusLabels = map[string]string{
	entity.ListingStatusActive:   "active again",
	entity.ListingStatusResolved: "resolved",
	entity.ListingStatusClosed:   "closed",
}

func NewListingUseCase(
	listingRepo repository.ListingRepository,
	matching *MatchingUseCase,
	notifier *NotificationUseCase,
) *ListingUseCase {
	return &ListingUseCase{
		listingRepo: listingRepo,
		matching:    matching,
		notifier:    notifier,
	}
}

// Create persists a new active listing, then runs matching and fans out
// notifications for the results. Matching and notification failures are
// swallowed with logging: they never fail the creation.
func (uc *ListingUseCase) Create(ctx context.Context, ownerID string, input CreateListingInput) (*entity.Listing, []*entity.MatchCandidate, error) {
	listing := &entity.Listing{
		Type:        input.Type,
		Category:    input.Category,
		Name:        input.Name,
		Description: input.Description,
		Location:    input.Location,
		EventDate:   input.EventDate,
		OwnerID:     ownerID,
		Status:      entity.ListingStatusActive,
	}
	if err := uc.listingRepo.Create(ctx, listing); err != nil {
		return nil, nil, err
	}

	matches := uc.matching.FindMatches(ctx, listing)
	uc.notifyMatches(ctx, listing, matches)
	return listing, matches, nil
}

// notifyMatches tells each candidate's owner about the possible counterpart
// and sends the new listing's owner one summary. A creation with zero matches
// stays silent: the owner gets no empty summary, only the match feed counts.
func (uc *ListingUseCase) notifyMatches(ctx context.Context, listing *entity.Listing, matches []*entity.MatchCandidate) {
	if len(matches) == 0 {
		return
	}

	inputs := make([]NotifyInput, 0, len(matches)+1)
	for _, match := range matches {
		inputs = append(inputs, NotifyInput{
			RecipientID: match.Listing.OwnerID,
			Type:        entity.NotificationTypeMatch,
			Title:       "Possible match for your listing",
			Body:        fmt.Sprintf("%q looks like a match for your %s listing %q.", listing.Name, match.Listing.Type, match.Listing.Name),
			ListingID:   listing.ID,
		})
	}
	inputs = append(inputs, NotifyInput{
		RecipientID: listing.OwnerID,
		Type:        entity.NotificationTypeMatch,
		Title:       "We found possible matches",
		Body:        fmt.Sprintf("%d possible %s listing(s) match %q.", len(matches), entity.OppositeListingType(listing.Type), listing.Name),
		ListingID:   listing.ID,
	})

	uc.notifier.TryNotifyBatch(ctx, inputs)
}

func (uc *ListingUseCase) GetByID(ctx context.Context, listingID string) (*entity.Listing, error) {
	return uc.listingRepo.GetByID(ctx, listingID)
}

// List returns listings matching the filter, newest first, with the total
// row count for pagination.
func (uc *ListingUseCase) List(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]*entity.Listing, int64, error) {
	return uc.listingRepo.List(ctx, filter, limit, offset)
}

// UpdateStatus moves a listing through its lifecycle. Owner only. A status
// change away from active is pushed to the owner's counterpart candidates
// indirectly: resolved and closed listings simply stop appearing as match
// candidates.
func (uc *ListingUseCase) UpdateStatus(ctx context.Context, listingID, ownerID, status string) (*entity.Listing, error) {
	switch status {
	case entity.ListingStatusActive, entity.ListingStatusResolved, entity.ListingStatusClosed:
	default:
		return nil, errors.BadRequest("Invalid status: "+status, nil)
	}

	listing, err := uc.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != ownerID {
		return nil, errors.Forbidden("You can only update your own listings", nil)
	}

	listing.Status = status
	listing.UpdatedAt = time.Now()
	if err := uc.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}

	logger.Info("Listing %s status changed to %s", listingID, status)

	// Counterpart owners lose a candidate when the listing leaves the
	// active pool; tell them, best effort.
	if status != entity.ListingStatusActive {
		uc.notifyStatusChange(ctx, listing, status)
	}
	return listing, nil
}

func (uc *ListingUseCase) notifyStatusChange(ctx context.Context, listing *entity.Listing, status string) {
	matches := uc.matching.FindMatches(ctx, listing)
	if len(matches) == 0 {
		return
	}

	inputs := make([]NotifyInput, 0, len(matches))
	for _, match := range matches {
		inputs = append(inputs, NotifyInput{
			RecipientID: match.Listing.OwnerID,
			Type:        entity.NotificationTypeStatusUpdate,
			Title:       "A matched listing was " + statusLabels[status],
			Body:        fmt.Sprintf("%q (%s) is now %s.", listing.Name, listing.Type, statusLabels[status]),
			ListingID:   listing.ID,
		})
	}
	uc.notifier.TryNotifyBatch(ctx, inputs)
}

// FindMatchesForOwner recomputes the match list for one of the caller's own
// listings, without sending notifications.
func (uc *ListingUseCase) FindMatchesForOwner(ctx context.Context, listingID, ownerID string) ([]*entity.MatchCandidate, error) {
	listing, err := uc.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != ownerID {
		return nil, errors.Forbidden("You can only request matches for your own listings", nil)
	}

	return uc.matching.FindMatches(ctx, listing), nil
}

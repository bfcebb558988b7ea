package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"balikin/internal/adapter/repository"
	"balikin/internal/domain/entity"
	domainrepo "balikin/internal/domain/repository"
)

func newListingFixture(t *testing.T) (*ListingUseCase, domainrepo.NotificationRepository, *stubPusher) {
	t.Helper()

	listingRepo := repository.NewMemoryListingRepository()
	userRepo := repository.NewMemoryUserRepository()
	notificationRepo := repository.NewMemoryNotificationRepository()
	pusher := newStubPusher()

	for _, id := range []string{"owner-a", "owner-b"} {
		require.NoError(t, userRepo.Create(context.Background(), &entity.User{ID: id, Username: id}))
	}

	notifier := NewNotificationUseCase(notificationRepo, userRepo, pusher)
	matching := NewMatchingUseCase(listingRepo, userRepo)
	return NewListingUseCase(listingRepo, matching, notifier), notificationRepo, pusher
}

func TestCreateListingNotifiesCandidateOwnersAndOwnerSummary(t *testing.T) {
	ctx := context.Background()
	uc, notificationRepo, _ := newListingFixture(t)

	date := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)
	_, _, err := uc.Create(ctx, "owner-b", CreateListingInput{
		Type: entity.ListingTypeFound, Category: "wallet",
		Name: "black leather wallet", Location: "Library", EventDate: date,
	})
	require.NoError(t, err)

	listing, matches, err := uc.Create(ctx, "owner-a", CreateListingInput{
		Type: entity.ListingTypeLost, Category: "wallet",
		Name: "black wallet", Location: "Library",
		EventDate: date.AddDate(0, 0, -1),
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, entity.ListingStatusActive, listing.Status)

	// Candidate's owner hears about the counterpart.
	bInbox, _, err := notificationRepo.ListByRecipient(ctx, "owner-b", 10, 0)
	require.NoError(t, err)
	require.Len(t, bInbox, 1)
	assert.Equal(t, entity.NotificationTypeMatch, bInbox[0].Type)
	assert.Equal(t, listing.ID, bInbox[0].ListingID)

	// The new listing's owner gets one summary.
	aInbox, _, err := notificationRepo.ListByRecipient(ctx, "owner-a", 10, 0)
	require.NoError(t, err)
	require.Len(t, aInbox, 1)
}

func TestCreateListingWithoutMatchesSendsNothing(t *testing.T) {
	ctx := context.Background()
	uc, notificationRepo, _ := newListingFixture(t)

	_, matches, err := uc.Create(ctx, "owner-a", CreateListingInput{
		Type: entity.ListingTypeLost, Category: "keys",
		Name: "house keys", Location: "Park",
		EventDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Empty(t, matches)

	inbox, _, err := notificationRepo.ListByRecipient(ctx, "owner-a", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, inbox)
}

func TestUpdateStatusOwnerOnly(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newListingFixture(t)

	listing, _, err := uc.Create(ctx, "owner-a", CreateListingInput{
		Type: entity.ListingTypeLost, Category: "bag",
		Name: "gray backpack", Location: "Station",
		EventDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	_, err = uc.UpdateStatus(ctx, listing.ID, "owner-b", entity.ListingStatusResolved)
	assert.Error(t, err)

	updated, err := uc.UpdateStatus(ctx, listing.ID, "owner-a", entity.ListingStatusResolved)
	require.NoError(t, err)
	assert.Equal(t, entity.ListingStatusResolved, updated.Status)

	_, err = uc.UpdateStatus(ctx, listing.ID, "owner-a", "archived")
	assert.Error(t, err)
}

func TestResolvedListingStopsMatching(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newListingFixture(t)

	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	found, _, err := uc.Create(ctx, "owner-b", CreateListingInput{
		Type: entity.ListingTypeFound, Category: "wallet",
		Name: "red wallet", Location: "Cafe", EventDate: date,
	})
	require.NoError(t, err)

	_, err = uc.UpdateStatus(ctx, found.ID, "owner-b", entity.ListingStatusResolved)
	require.NoError(t, err)

	_, matches, err := uc.Create(ctx, "owner-a", CreateListingInput{
		Type: entity.ListingTypeLost, Category: "wallet",
		Name: "red wallet", Location: "Cafe", EventDate: date,
	})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFindMatchesForOwnerRejectsNonOwner(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newListingFixture(t)

	listing, _, err := uc.Create(ctx, "owner-a", CreateListingInput{
		Type: entity.ListingTypeLost, Category: "phone",
		Name: "pixel 8", Location: "Gym",
		EventDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	_, err = uc.FindMatchesForOwner(ctx, listing.ID, "owner-b")
	assert.Error(t, err)

	matches, err := uc.FindMatchesForOwner(ctx, listing.ID, "owner-a")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

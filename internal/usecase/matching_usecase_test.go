package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"balikin/internal/adapter/repository"
	"balikin/internal/domain/entity"
	domainrepo "balikin/internal/domain/repository"
)

func newMatchingFixture(t *testing.T) (*MatchingUseCase, domainListingRepo) {
	t.Helper()

	listingRepo := repository.NewMemoryListingRepository()
	userRepo := repository.NewMemoryUserRepository()

	require.NoError(t, userRepo.Create(context.Background(), &entity.User{ID: "owner-a", Username: "a"}))
	require.NoError(t, userRepo.Create(context.Background(), &entity.User{ID: "owner-b", Username: "b"}))

	return NewMatchingUseCase(listingRepo, userRepo), listingRepo
}

type domainListingRepo = domainrepo.ListingRepository

func mustCreateListing(t *testing.T, repo domainListingRepo, listing *entity.Listing) *entity.Listing {
	t.Helper()
	if listing.Status == "" {
		listing.Status = entity.ListingStatusActive
	}
	require.NoError(t, repo.Create(context.Background(), listing))
	return listing
}

func TestFindMatchesWalletScenario(t *testing.T) {
	ctx := context.Background()
	uc, listingRepo := newMatchingFixture(t)

	lost := mustCreateListing(t, listingRepo, &entity.Listing{
		Type:      entity.ListingTypeLost,
		Category:  "wallet",
		Name:      "black wallet",
		Location:  "Library",
		EventDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		OwnerID:   "owner-a",
	})
	found := mustCreateListing(t, listingRepo, &entity.Listing{
		Type:      entity.ListingTypeFound,
		Category:  "wallet",
		Name:      "black leather wallet",
		Location:  "Library",
		EventDate: time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
		OwnerID:   "owner-b",
	})

	matches := uc.FindMatches(ctx, lost)
	require.Len(t, matches, 1)
	assert.Equal(t, found.ID, matches[0].Listing.ID)
	assert.GreaterOrEqual(t, matches[0].Score, 8)
	assert.LessOrEqual(t, matches[0].Score, MaxMatchScore)
	assert.Equal(t, "owner-b", matches[0].Owner.ID)
}

func TestFindMatchesExcludesSelfSameTypeAndOtherCategories(t *testing.T) {
	ctx := context.Background()
	uc, listingRepo := newMatchingFixture(t)

	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	lost := mustCreateListing(t, listingRepo, &entity.Listing{
		Type: entity.ListingTypeLost, Category: "phone",
		Name: "iphone 13", Location: "Station", EventDate: date, OwnerID: "owner-a",
	})
	mustCreateListing(t, listingRepo, &entity.Listing{
		Type: entity.ListingTypeLost, Category: "phone",
		Name: "iphone 13", Location: "Station", EventDate: date, OwnerID: "owner-b",
	})
	mustCreateListing(t, listingRepo, &entity.Listing{
		Type: entity.ListingTypeFound, Category: "keys",
		Name: "iphone 13", Location: "Station", EventDate: date, OwnerID: "owner-b",
	})

	matches := uc.FindMatches(ctx, lost)
	for _, match := range matches {
		assert.NotEqual(t, lost.ID, match.Listing.ID)
		assert.Equal(t, entity.ListingTypeFound, match.Listing.Type)
		assert.Equal(t, "phone", match.Listing.Category)
	}
	assert.Empty(t, matches)
}

func TestFindMatchesSkipsInactiveAndOutOfWindow(t *testing.T) {
	ctx := context.Background()
	uc, listingRepo := newMatchingFixture(t)

	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	lost := mustCreateListing(t, listingRepo, &entity.Listing{
		Type: entity.ListingTypeLost, Category: "bag",
		Name: "red backpack", Location: "Park", EventDate: date, OwnerID: "owner-a",
	})
	mustCreateListing(t, listingRepo, &entity.Listing{
		Type: entity.ListingTypeFound, Category: "bag", Status: entity.ListingStatusResolved,
		Name: "red backpack", Location: "Park", EventDate: date, OwnerID: "owner-b",
	})
	mustCreateListing(t, listingRepo, &entity.Listing{
		Type: entity.ListingTypeFound, Category: "bag",
		Name: "red backpack", Location: "Park",
		EventDate: date.AddDate(0, 0, 45), OwnerID: "owner-b",
	})

	assert.Empty(t, uc.FindMatches(ctx, lost))
}

func TestFindMatchesCapsAtTenSortedDescending(t *testing.T) {
	ctx := context.Background()
	uc, listingRepo := newMatchingFixture(t)

	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	lost := mustCreateListing(t, listingRepo, &entity.Listing{
		Type: entity.ListingTypeLost, Category: "wallet",
		Name: "brown wallet with cards", Location: "Main Square",
		EventDate: date, OwnerID: "owner-a",
	})

	for i := 0; i < 15; i++ {
		mustCreateListing(t, listingRepo, &entity.Listing{
			Type: entity.ListingTypeFound, Category: "wallet",
			Name:     fmt.Sprintf("brown wallet %d", i),
			Location: "Main Square",
			// Spread over the window so date bonuses differ.
			EventDate: date.AddDate(0, 0, i),
			OwnerID:   "owner-b",
		})
	}

	matches := uc.FindMatches(ctx, lost)
	require.LessOrEqual(t, len(matches), 10)
	require.NotEmpty(t, matches)

	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
	}
}

func TestLocationBonus(t *testing.T) {
	assert.Equal(t, 5, locationBonus("Library", "library"))
	assert.Equal(t, 3, locationBonus("Central Library", "library"))
	assert.Equal(t, 0, locationBonus("Library", "Station"))
	assert.Equal(t, 0, locationBonus("", "Station"))
}

func TestDateProximityBonus(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 3, dateProximityBonus(base, base.AddDate(0, 0, 7)))
	assert.Equal(t, 2, dateProximityBonus(base, base.AddDate(0, 0, 14)))
	assert.Equal(t, 1, dateProximityBonus(base, base.AddDate(0, 0, 21)))
	assert.Equal(t, 0, dateProximityBonus(base, base.AddDate(0, 0, 22)))
	assert.Equal(t, 3, dateProximityBonus(base.AddDate(0, 0, 5), base))
}

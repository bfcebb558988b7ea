package usecase

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"balikin/internal/domain/entity"
	"balikin/internal/domain/repository"
	"balikin/pkg/logger"
)

const (
	// MaxMatchScore is the theoretical ceiling of a candidate score
	// (10 text + 5 location + 3 date). Surfaced for UI scaling; the
	// computed score is not hard-capped against it.
	MaxMatchScore = 18

	matchDateWindowDays = 30
	matchCandidateFetch = 20
	matchResultLimit    = 10
)

type MatchingUseCase struct {
	listingRepo repository.ListingRepository
	userRepo    repository.UserRepository
}

func NewMatchingUseCase(
	listingRepo repository.ListingRepository,
	userRepo repository.UserRepository,
) *MatchingUseCase {
	return &MatchingUseCase{
		listingRepo: listingRepo,
		userRepo:    userRepo,
	}
}

// FindMatches returns up to 10 active opposite-type listings in the same
// category within ±30 days of the reference listing, scored and sorted
// descending. Data-access failures yield an empty list, never an error:
// matching must not block the caller's primary operation.
func (uc *MatchingUseCase) FindMatches(ctx context.Context, listing *entity.Listing) []*entity.MatchCandidate {
	from := listing.EventDate.AddDate(0, 0, -matchDateWindowDays)
	to := listing.EventDate.AddDate(0, 0, matchDateWindowDays)

	candidates, err := uc.listingRepo.FindActiveByTypeCategoryDateRange(
		ctx,
		entity.OppositeListingType(listing.Type),
		listing.Category,
		from,
		to,
		listing.ID,
		matchCandidateFetch,
	)
	if err != nil {
		logger.Error("Match lookup failed for listing %s: %v", listing.ID, err)
		return []*entity.MatchCandidate{}
	}

	matches := make([]*entity.MatchCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		score := uc.scoreCandidate(listing, candidate)
		if score <= 0 {
			continue
		}

		matches = append(matches, &entity.MatchCandidate{
			Listing: candidate,
			Score:   score,
			Owner:   uc.ownerSummary(ctx, candidate.OwnerID),
		})
	}

	// Stable sort keeps the repository's newest-first order as tie-breaker.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > matchResultLimit {
		matches = matches[:matchResultLimit]
	}
	return matches
}

// scoreCandidate converts blended text similarity to 0-10 points, then adds
// location and date-proximity bonuses.
func (uc *MatchingUseCase) scoreCandidate(a, b *entity.Listing) int {
	textA := a.Name + " " + a.Description
	textB := b.Name + " " + b.Description
	score := int(math.Floor(Similarity(textA, textB) * 10))

	score += locationBonus(a.Location, b.Location)
	score += dateProximityBonus(a.EventDate, b.EventDate)
	return score
}

func locationBonus(a, b string) int {
	locA := strings.ToLower(strings.TrimSpace(a))
	locB := strings.ToLower(strings.TrimSpace(b))

	switch {
	case locA == "" || locB == "":
		return 0
	case locA == locB:
		return 5
	case strings.Contains(locA, locB) || strings.Contains(locB, locA):
		return 3
	default:
		return 0
	}
}

func dateProximityBonus(a, b time.Time) int {
	days := int(math.Abs(a.Sub(b).Hours()) / 24)

	switch {
	case days <= 7:
		return 3
	case days <= 14:
		return 2
	case days <= 21:
		return 1
	default:
		return 0
	}
}

func (uc *MatchingUseCase) ownerSummary(ctx context.Context, ownerID string) *entity.User {
	owner, err := uc.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		logger.Debug("Owner lookup failed for %s: %v", ownerID, err)
		return &entity.User{ID: ownerID}
	}
	return owner
}

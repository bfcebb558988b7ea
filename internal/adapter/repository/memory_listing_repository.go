package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"balikin/internal/domain/entity"
	"balikin/internal/domain/repository"
	"balikin/pkg/errors"
)

// memoryListingRepository indexes listings by id and by type/category so the
// matching query does not scan the whole board.
type memoryListingRepository struct {
	mu           sync.RWMutex
	listings     map[string]*entity.Listing
	idsByTypeCat map[string][]string
}

func NewMemoryListingRepository() repository.ListingRepository {
	return &memoryListingRepository{
		listings:     make(map[string]*entity.Listing),
		idsByTypeCat: make(map[string][]string),
	}
}

func typeCatKey(listingType, category string) string {
	return listingType + "/" + category
}

func cloneListing(listing *entity.Listing) *entity.Listing {
	copied := *listing
	return &copied
}

func (r *memoryListingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}
	now := time.Now()
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = now
	}
	listing.UpdatedAt = now

	key := typeCatKey(listing.Type, listing.Category)
	r.listings[listing.ID] = cloneListing(listing)
	r.idsByTypeCat[key] = append(r.idsByTypeCat[key], listing.ID)

	return nil
}

func (r *memoryListingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listing, ok := r.listings[id]
	if !ok {
		return nil, errors.NotFound("Listing", nil)
	}
	return cloneListing(listing), nil
}

func (r *memoryListingRepository) List(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]*entity.Listing, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*entity.Listing
	for _, listing := range r.listings {
		if !listingMatchesFilter(listing, filter) {
			continue
		}
		matched = append(matched, cloneListing(listing))
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if offset > len(matched) {
		offset = len(matched)
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return matched[offset:end], total, nil
}

func listingMatchesFilter(listing *entity.Listing, filter map[string]interface{}) bool {
	for key, value := range filter {
		switch key {
		case "type":
			if listing.Type != value {
				return false
			}
		case "category":
			if listing.Category != value {
				return false
			}
		case "status":
			if listing.Status != value {
				return false
			}
		case "ownerId":
			if listing.OwnerID != value {
				return false
			}
		}
	}
	return true
}

func (r *memoryListingRepository) Update(ctx context.Context, listing *entity.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.listings[listing.ID]
	if !ok {
		return errors.NotFound("Listing", nil)
	}

	listing.UpdatedAt = time.Now()

	// Type and category are immutable after creation, so the secondary index
	// only needs repair when that assumption is violated.
	if existing.Type != listing.Type || existing.Category != listing.Category {
		r.removeFromIndex(existing)
		key := typeCatKey(listing.Type, listing.Category)
		r.idsByTypeCat[key] = append(r.idsByTypeCat[key], listing.ID)
	}

	r.listings[listing.ID] = cloneListing(listing)
	return nil
}

func (r *memoryListingRepository) removeFromIndex(listing *entity.Listing) {
	key := typeCatKey(listing.Type, listing.Category)
	ids := r.idsByTypeCat[key]
	for i, id := range ids {
		if id == listing.ID {
			r.idsByTypeCat[key] = append(ids[:i], ids[i+1:]...)
			return
		}
	}
}

func (r *memoryListingRepository) FindActiveByTypeCategoryDateRange(ctx context.Context, listingType, category string, from, to time.Time, excludeID string, limit int) ([]*entity.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var candidates []*entity.Listing
	for _, id := range r.idsByTypeCat[typeCatKey(listingType, category)] {
		listing, ok := r.listings[id]
		if !ok || listing.ID == excludeID {
			continue
		}
		if listing.Status != entity.ListingStatusActive {
			continue
		}
		if listing.EventDate.Before(from) || listing.EventDate.After(to) {
			continue
		}
		candidates = append(candidates, cloneListing(listing))
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return candidates, nil
}

package repository

import (
	"context"
	"time"

	"balikin/internal/domain/entity"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *entity.Listing) error
	GetByID(ctx context.Context, id string) (*entity.Listing, error)
	List(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]*entity.Listing, int64, error)
	Update(ctx context.Context, listing *entity.Listing) error

	// FindActiveByTypeCategoryDateRange returns active listings of the given
	// type and category whose event date falls inside [from, to], excluding
	// excludeID, newest first, capped at limit rows.
	FindActiveByTypeCategoryDateRange(ctx context.Context, listingType, category string, from, to time.Time, excludeID string, limit int) ([]*entity.Listing, error)
}

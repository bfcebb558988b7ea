package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"balikin/internal/domain/entity"
	"balikin/internal/domain/repository"
	"balikin/pkg/errors"
	"balikin/pkg/logger"
)

type firestoreListingRepository struct {
	client *firestore.Client
}

func NewFirestoreListingRepository(client *firestore.Client) repository.ListingRepository {
	return &firestoreListingRepository{
		client: client,
	}
}

func (r *firestoreListingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	if listing.ID == "" {
		doc := r.client.Collection("listings").NewDoc()
		listing.ID = doc.ID
	}

	now := time.Now()
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = now
	}
	listing.UpdatedAt = now

	_, err := r.client.Collection("listings").Doc(listing.ID).Set(ctx, listing)
	if err != nil {
		return errors.Internal("Failed to create listing", err)
	}

	return nil
}

func (r *firestoreListingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	doc, err := r.client.Collection("listings").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Listing", err)
		}
		return nil, errors.Internal("Failed to get listing", err)
	}

	var listing entity.Listing
	if err := doc.DataTo(&listing); err != nil {
		return nil, errors.Internal("Failed to parse listing data", err)
	}

	return &listing, nil
}

func (r *firestoreListingRepository) List(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]*entity.Listing, int64, error) {
	query := r.client.Collection("listings").Query

	for key, value := range filter {
		query = query.Where(key, "==", value)
	}
	query = query.OrderBy("createdAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to count listings", err)
	}
	total := int64(len(allDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var listings []*entity.Listing

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Internal("Failed to iterate listings", err)
		}

		var listing entity.Listing
		if err := doc.DataTo(&listing); err != nil {
			logger.Warn("Skipping malformed listing document %s: %v", doc.Ref.ID, err)
			continue
		}

		listings = append(listings, &listing)
	}

	return listings, total, nil
}

func (r *firestoreListingRepository) Update(ctx context.Context, listing *entity.Listing) error {
	listing.UpdatedAt = time.Now()

	_, err := r.client.Collection("listings").Doc(listing.ID).Set(ctx, listing)
	if err != nil {
		return errors.Internal("Failed to update listing", err)
	}

	return nil
}

func (r *firestoreListingRepository) FindActiveByTypeCategoryDateRange(ctx context.Context, listingType, category string, from, to time.Time, excludeID string, limit int) ([]*entity.Listing, error) {
	query := r.client.Collection("listings").
		Where("type", "==", listingType).
		Where("category", "==", category).
		Where("status", "==", entity.ListingStatusActive).
		Where("eventDate", ">=", from).
		Where("eventDate", "<=", to).
		OrderBy("eventDate", firestore.Desc).
		OrderBy("createdAt", firestore.Desc)

	iter := query.Documents(ctx)
	var listings []*entity.Listing

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to query candidate listings", err)
		}

		var listing entity.Listing
		if err := doc.DataTo(&listing); err != nil {
			logger.Warn("Skipping malformed listing document %s: %v", doc.Ref.ID, err)
			continue
		}
		// Firestore cannot express the exclusion in the query itself.
		if listing.ID == excludeID {
			continue
		}

		listings = append(listings, &listing)
		if limit > 0 && len(listings) >= limit {
			break
		}
	}

	return listings, nil
}

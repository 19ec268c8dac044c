package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/estately/api/internal/models"
	"github.com/estately/api/internal/search"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return fmt.Errorf("create listing: %w", err)
	}
	return nil
}

func (r *ListingRepository) ByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.WithContext(ctx).First(&listing, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return &listing, nil
}

func (r *ListingRepository) Update(ctx context.Context, listing *models.Listing) error {
	if err := r.db.WithContext(ctx).Save(listing).Error; err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Listing{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete listing: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ByOwner returns all listings owned by the given user, newest first.
func (r *ListingRepository) ByOwner(ctx context.Context, owner uuid.UUID) ([]models.Listing, error) {
	listings := []models.Listing{}
	err := r.db.WithContext(ctx).
		Where("user_ref = ?", owner).
		Order("created_at DESC").
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("list listings by owner: %w", err)
	}
	return listings, nil
}

// Search applies a normalized descriptor and returns one page of listings
// plus a "more available" flag. It fetches one row beyond the requested
// limit so the flag is derived from the limit itself rather than a
// hardcoded threshold.
func (r *ListingRepository) Search(ctx context.Context, d search.Descriptor) ([]models.Listing, bool, error) {
	listings := []models.Listing{}
	q := d.Apply(r.db.WithContext(ctx).Model(&models.Listing{}))
	if err := q.Limit(d.Limit + 1).Find(&listings).Error; err != nil {
		return nil, false, fmt.Errorf("search listings: %w", err)
	}
	hasMore := len(listings) > d.Limit
	if hasMore {
		listings = listings[:d.Limit]
	}
	return listings, hasMore, nil
}

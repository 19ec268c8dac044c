package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Listing types accepted by the API.
const (
	ListingTypeSell = "sell"
	ListingTypeRent = "rent"
)

// MaxListingImages caps the image gallery per listing.
const MaxListingImages = 10

type Listing struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"index;not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Address     string    `json:"address" gorm:"not null"`
	Price       int64     `json:"price" gorm:"not null"`
	Type        string    `json:"type" gorm:"index;not null"` // sell | rent
	Bedrooms    int       `json:"bedrooms" gorm:"not null"`
	Bathrooms   int       `json:"bathrooms" gorm:"not null"`
	Furnished   bool      `json:"furnished" gorm:"not null;default:false"`
	Parking     bool      `json:"parking" gorm:"not null;default:false"`
	Offer       bool      `json:"offer" gorm:"not null;default:false"`
	ImageURLs   []string  `json:"imageUrls" gorm:"serializer:json;not null"`
	UserRef     uuid.UUID `json:"userRef" gorm:"type:uuid;index;not null"` // owner, always server-derived
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// ValidType reports whether t is one of the accepted listing types.
func ValidType(t string) bool {
	return t == ListingTypeSell || t == ListingTypeRent
}

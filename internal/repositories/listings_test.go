package repositories

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/estately/api/internal/models"
	"github.com/estately/api/internal/search"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func seedListing(t *testing.T, repo *ListingRepository, owner uuid.UUID, name, typ string, price int64, furnished, parking bool, age time.Duration) models.Listing {
	t.Helper()
	listing := models.Listing{
		Name:        name,
		Description: "a place",
		Address:     "1 Main St",
		Price:       price,
		Type:        typ,
		Bedrooms:    2,
		Bathrooms:   1,
		Furnished:   furnished,
		Parking:     parking,
		ImageURLs:   []string{"https://images.example/1.jpg"},
		UserRef:     owner,
		CreatedAt:   time.Now().Add(-age),
	}
	require.NoError(t, repo.Create(context.Background(), &listing))
	return listing
}

func descriptorFor(mutate func(*search.Descriptor)) search.Descriptor {
	d := search.Normalize(nil)
	if mutate != nil {
		mutate(&d)
	}
	return d
}

func TestListingSearch_TypeFilter(t *testing.T) {
	repo := NewListingRepository(newTestDB(t))
	owner := uuid.New()

	rent := seedListing(t, repo, owner, "City flat", models.ListingTypeRent, 1200, false, false, time.Hour)
	sell := seedListing(t, repo, owner, "Suburban house", models.ListingTypeSell, 250000, false, false, 2*time.Hour)

	got, hasMore, err := repo.Search(context.Background(), descriptorFor(func(d *search.Descriptor) {
		d.Types = []string{models.ListingTypeRent}
	}))
	require.NoError(t, err)
	assert.False(t, hasMore)
	require.Len(t, got, 1)
	assert.Equal(t, rent.ID, got[0].ID)

	got, _, err = repo.Search(context.Background(), descriptorFor(func(d *search.Descriptor) {
		d.Types = []string{models.ListingTypeSell}
	}))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, sell.ID, got[0].ID)
}

// A nil furnished filter must match furnished and unfurnished listings
// alike; a true filter narrows to furnished only.
func TestListingSearch_FurnishedTriState(t *testing.T) {
	repo := NewListingRepository(newTestDB(t))
	owner := uuid.New()

	furnished := seedListing(t, repo, owner, "Furnished flat", models.ListingTypeRent, 900, true, false, time.Hour)
	seedListing(t, repo, owner, "Bare flat", models.ListingTypeRent, 700, false, false, 2*time.Hour)

	got, _, err := repo.Search(context.Background(), descriptorFor(nil))
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, _, err = repo.Search(context.Background(), descriptorFor(func(d *search.Descriptor) {
		yes := true
		d.Furnished = &yes
	}))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, furnished.ID, got[0].ID)
}

func TestListingSearch_NameSubstringCaseInsensitive(t *testing.T) {
	repo := NewListingRepository(newTestDB(t))
	owner := uuid.New()

	villa := seedListing(t, repo, owner, "Seaside VILLA with pool", models.ListingTypeSell, 500000, false, true, time.Hour)
	seedListing(t, repo, owner, "Downtown studio", models.ListingTypeRent, 800, false, false, 2*time.Hour)

	got, _, err := repo.Search(context.Background(), descriptorFor(func(d *search.Descriptor) {
		d.SearchTerm = "villa"
	}))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, villa.ID, got[0].ID)
}

func TestListingSearch_SortByPrice(t *testing.T) {
	repo := NewListingRepository(newTestDB(t))
	owner := uuid.New()

	seedListing(t, repo, owner, "Mid", models.ListingTypeRent, 1000, false, false, time.Hour)
	seedListing(t, repo, owner, "Cheap", models.ListingTypeRent, 500, false, false, 2*time.Hour)
	seedListing(t, repo, owner, "Pricey", models.ListingTypeRent, 2000, false, false, 3*time.Hour)

	got, _, err := repo.Search(context.Background(), descriptorFor(func(d *search.Descriptor) {
		d.SortColumn = "price"
		d.Descending = false
	}))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int64{500, 1000, 2000}, []int64{got[0].Price, got[1].Price, got[2].Price})
}

func TestListingSearch_NewestFirstByDefault(t *testing.T) {
	repo := NewListingRepository(newTestDB(t))
	owner := uuid.New()

	seedListing(t, repo, owner, "Old", models.ListingTypeRent, 100, false, false, 48*time.Hour)
	newest := seedListing(t, repo, owner, "New", models.ListingTypeRent, 100, false, false, time.Minute)

	got, _, err := repo.Search(context.Background(), descriptorFor(func(d *search.Descriptor) {
		d.Limit = 1
	}))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, newest.ID, got[0].ID)
}

// With 10 matches and a limit of 9, the first page is full and signals
// more; the second page holds the remainder and signals exhaustion.
func TestListingSearch_Pagination(t *testing.T) {
	repo := NewListingRepository(newTestDB(t))
	owner := uuid.New()

	for i := 0; i < 10; i++ {
		seedListing(t, repo, owner, "Flat", models.ListingTypeRent, 800, false, false, time.Duration(i)*time.Hour)
	}

	page1, hasMore, err := repo.Search(context.Background(), descriptorFor(nil))
	require.NoError(t, err)
	assert.Len(t, page1, 9)
	assert.True(t, hasMore)

	page2, hasMore, err := repo.Search(context.Background(), descriptorFor(func(d *search.Descriptor) {
		d.Offset = len(page1)
	}))
	require.NoError(t, err)
	assert.Len(t, page2, 1)
	assert.False(t, hasMore)
}

// An exactly-full final page must not signal more.
func TestListingSearch_ExactPageBoundary(t *testing.T) {
	repo := NewListingRepository(newTestDB(t))
	owner := uuid.New()

	for i := 0; i < 9; i++ {
		seedListing(t, repo, owner, "Flat", models.ListingTypeRent, 800, false, false, time.Duration(i)*time.Hour)
	}

	page, hasMore, err := repo.Search(context.Background(), descriptorFor(nil))
	require.NoError(t, err)
	assert.Len(t, page, 9)
	assert.False(t, hasMore)
}

func TestListingDelete_Missing(t *testing.T) {
	repo := NewListingRepository(newTestDB(t))

	err := repo.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListingByOwner(t *testing.T) {
	repo := NewListingRepository(newTestDB(t))
	owner, stranger := uuid.New(), uuid.New()

	mine := seedListing(t, repo, owner, "Mine", models.ListingTypeRent, 800, false, false, time.Hour)
	seedListing(t, repo, stranger, "Theirs", models.ListingTypeRent, 900, false, false, 2*time.Hour)

	got, err := repo.ByOwner(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, mine.ID, got[0].ID)
}

// Deleting an account removes its listings in the same transaction.
func TestUserDelete_CascadesListings(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	listings := NewListingRepository(db)

	user := models.User{Username: "alice", Email: "alice@example.com", Password: "hash"}
	require.NoError(t, users.Create(context.Background(), &user))
	owned := seedListing(t, listings, user.ID, "Mine", models.ListingTypeRent, 800, false, false, time.Hour)

	require.NoError(t, users.Delete(context.Background(), user.ID))

	_, err := users.ByID(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = listings.ByID(context.Background(), owned.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserDelete_Missing(t *testing.T) {
	users := NewUserRepository(newTestDB(t))
	assert.ErrorIs(t, users.Delete(context.Background(), uuid.New()), ErrNotFound)
}

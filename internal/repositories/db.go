package repositories

import (
	"errors"
	"fmt"

	"github.com/estately/api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Sentinel errors returned by the repositories. Handlers map these to
// HTTP status codes; anything else is surfaced as a generic failure.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Connect opens the Postgres database and runs migrations. The returned
// handle is injected into the repositories; no package-level state.
func Connect(dsn string) (*gorm.DB, error) {
	// TranslateError maps driver-specific unique violations onto
	// gorm.ErrDuplicatedKey so the repositories can return ErrDuplicate.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the schema for all models. Split out from
// Connect so tests can run it against their own dialect.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Listing{}); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultAvatar = "https://cdn-icons-png.flaticon.com/512/149/149071.png"

type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	Avatar    string    `json:"avatar" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// BeforeCreate assigns the primary key and default avatar in Go rather than
// via a database default, so the model behaves identically on Postgres and
// the SQLite dialect used in tests.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Avatar == "" {
		u.Avatar = defaultAvatar
	}
	return nil
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the coarse account type assigned at sync time.
type Role string

const (
	RoleChild    Role = "child"
	RoleGuardian Role = "guardian"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleChild || r == RoleGuardian
}

// User is an authenticated principal, mapped 1:1 from the external identity
// provider's user id. Created on first sync; never deleted.
type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID string    `gorm:"uniqueIndex;not null;column:external_id" json:"external_id"`
	Email      string    `gorm:"column:email" json:"email"`
	Role       Role      `gorm:"not null;column:role" json:"role"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

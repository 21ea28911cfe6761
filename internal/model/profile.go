package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChildProfile is a child's demographic and health record, upserted keyed by
// the owning user. DateOfBirth is kept as an ISO date string because guardian
// verification matches it by exact equality.
type ChildProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;column:user_id" json:"user_id"`

	FirstName   string `gorm:"not null;column:first_name" json:"first_name"`
	LastName    string `gorm:"not null;column:last_name" json:"last_name"`
	DateOfBirth string `gorm:"type:date;not null;column:date_of_birth" json:"date_of_birth"`
	Gender      string `gorm:"column:gender" json:"gender"`
	Grade       string `gorm:"column:grade" json:"grade"`
	SchoolName  string `gorm:"column:school_name" json:"school_name"`

	PhysicianName  string `gorm:"column:physician_name" json:"physician_name"`
	PhysicianPhone string `gorm:"column:physician_phone" json:"physician_phone"`
	HealthNotes    string `gorm:"type:text;column:health_notes" json:"health_notes"`

	ConsentGiven     bool `gorm:"not null;default:false;column:consent_given" json:"consent_given"`
	ProfileCompleted bool `gorm:"not null;default:false;column:profile_completed" json:"profile_completed"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ChildProfile) TableName() string { return "child_profiles" }

func (p *ChildProfile) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// GuardianProfile is a guardian's contact record, created lazily the first
// time a guardian action occurs.
type GuardianProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;column:user_id" json:"user_id"`

	FirstName           string `gorm:"not null;column:first_name" json:"first_name"`
	LastName            string `gorm:"not null;column:last_name" json:"last_name"`
	RelationshipToChild string `gorm:"column:relationship_to_child" json:"relationship_to_child"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (GuardianProfile) TableName() string { return "guardian_profiles" }

func (p *GuardianProfile) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ChildGuardianRelationship links a child profile to a guardian profile.
// At most one row per (child, guardian) pair; at most one primary guardian
// per child in normal operation.
type ChildGuardianRelationship struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChildProfileID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_child_guardian;column:child_profile_id" json:"child_profile_id"`
	GuardianProfileID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_child_guardian;column:guardian_profile_id" json:"guardian_profile_id"`

	RelationshipType  string `gorm:"not null;column:relationship_type" json:"relationship_type"`
	IsPrimaryGuardian bool   `gorm:"not null;default:false;column:is_primary_guardian" json:"is_primary_guardian"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (ChildGuardianRelationship) TableName() string { return "child_guardian_relationships" }

func (r *ChildGuardianRelationship) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// EmergencyContact belongs to a child profile. Saving contacts replaces the
// whole set for the child.
type EmergencyContact struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChildProfileID uuid.UUID `gorm:"type:uuid;not null;index;column:child_profile_id" json:"child_profile_id"`

	FullName     string `gorm:"not null;column:full_name" json:"full_name"`
	Relationship string `gorm:"column:relationship" json:"relationship"`
	PhoneNumber  string `gorm:"column:phone_number" json:"phone_number"`
	CanPickUp    bool   `gorm:"not null;default:false;column:can_pick_up" json:"can_pick_up"`
	IsPrimary    bool   `gorm:"not null;default:false;column:is_primary" json:"is_primary"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (EmergencyContact) TableName() string { return "emergency_contacts" }

func (e *EmergencyContact) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

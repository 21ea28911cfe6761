// Package profile manages child onboarding records and their emergency
// contact lists.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/umojalearning/umoja-backend/internal/model"
)

// SaveChildProfileRequest carries the onboarding form. DateOfBirth must be
// an ISO date (YYYY-MM-DD); it is stored verbatim so guardian verification
// can match it exactly.
type SaveChildProfileRequest struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DateOfBirth    string `json:"date_of_birth"`
	Gender         string `json:"gender"`
	Grade          string `json:"grade"`
	SchoolName     string `json:"school_name"`
	PhysicianName  string `json:"physician_name"`
	PhysicianPhone string `json:"physician_phone"`
	HealthNotes    string `json:"health_notes"`
	ConsentGiven   bool   `json:"consent_given"`
}

// EmergencyContactInput is one contact in a replace-all save.
type EmergencyContactInput struct {
	FullName     string `json:"full_name"`
	Relationship string `json:"relationship"`
	PhoneNumber  string `json:"phone_number"`
	CanPickUp    bool   `json:"can_pick_up"`
	IsPrimary    bool   `json:"is_primary"`
}

type Service interface {
	// SaveChildProfile upserts the profile for the given user and marks
	// it completed.
	SaveChildProfile(ctx context.Context, userID uuid.UUID, req SaveChildProfileRequest) (*model.ChildProfile, error)
	ChildProfile(ctx context.Context, userID uuid.UUID) (*model.ChildProfile, error)
	// SaveEmergencyContacts replaces the child's whole contact set.
	SaveEmergencyContacts(ctx context.Context, childProfileID uuid.UUID, contacts []EmergencyContactInput) ([]model.EmergencyContact, error)
	EmergencyContacts(ctx context.Context, childProfileID uuid.UUID) ([]model.EmergencyContact, error)
}

type service struct {
	db *gorm.DB
}

func New(db *gorm.DB) Service {
	return &service{db: db}
}

func (s *service) SaveChildProfile(ctx context.Context, userID uuid.UUID, req SaveChildProfileRequest) (*model.ChildProfile, error) {
	dob := strings.TrimSpace(req.DateOfBirth)
	if _, err := time.Parse("2006-01-02", dob); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, req.DateOfBirth)
	}

	var p model.ChildProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("loading child profile: %w", err)
	}

	p.UserID = userID
	p.FirstName = strings.TrimSpace(req.FirstName)
	p.LastName = strings.TrimSpace(req.LastName)
	p.DateOfBirth = dob
	p.Gender = req.Gender
	p.Grade = req.Grade
	p.SchoolName = req.SchoolName
	p.PhysicianName = req.PhysicianName
	p.PhysicianPhone = req.PhysicianPhone
	p.HealthNotes = req.HealthNotes
	p.ConsentGiven = req.ConsentGiven
	p.ProfileCompleted = true

	if err := s.db.WithContext(ctx).Save(&p).Error; err != nil {
		return nil, fmt.Errorf("saving child profile: %w", err)
	}
	return &p, nil
}

func (s *service) ChildProfile(ctx context.Context, userID uuid.UUID) (*model.ChildProfile, error) {
	var p model.ChildProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading child profile: %w", err)
	}
	return &p, nil
}

func (s *service) SaveEmergencyContacts(ctx context.Context, childProfileID uuid.UUID, contacts []EmergencyContactInput) ([]model.EmergencyContact, error) {
	var saved []model.EmergencyContact
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p model.ChildProfile
		if err := tx.Where("id = ?", childProfileID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProfileNotFound
			}
			return fmt.Errorf("loading child profile: %w", err)
		}

		if err := tx.Where("child_profile_id = ?", childProfileID).
			Delete(&model.EmergencyContact{}).Error; err != nil {
			return fmt.Errorf("clearing contacts: %w", err)
		}
		for _, in := range contacts {
			c := model.EmergencyContact{
				ChildProfileID: childProfileID,
				FullName:       strings.TrimSpace(in.FullName),
				Relationship:   in.Relationship,
				PhoneNumber:    in.PhoneNumber,
				CanPickUp:      in.CanPickUp,
				IsPrimary:      in.IsPrimary,
			}
			if err := tx.Create(&c).Error; err != nil {
				return fmt.Errorf("saving contact: %w", err)
			}
			saved = append(saved, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *service) EmergencyContacts(ctx context.Context, childProfileID uuid.UUID) ([]model.EmergencyContact, error) {
	var contacts []model.EmergencyContact
	err := s.db.WithContext(ctx).
		Where("child_profile_id = ?", childProfileID).
		Order("created_at asc").
		Find(&contacts).Error
	if err != nil {
		return nil, fmt.Errorf("loading contacts: %w", err)
	}
	return contacts, nil
}

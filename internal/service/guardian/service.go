// Package guardian resolves guardian-to-child links by exact identity
// match: first name, last name, and date of birth, optionally narrowed by
// school and grade.
package guardian

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/umojalearning/umoja-backend/internal/model"
)

// FindChildCriteria identifies a child for verification. Names are matched
// trimmed and case-sensitive; DateOfBirth is matched verbatim (ISO date).
type FindChildCriteria struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
	SchoolName  string `json:"school_name"`
	Grade       string `json:"grade"`
}

// LinkResult is the outcome of a successful link.
type LinkResult struct {
	Child        model.ChildProfile              `json:"child"`
	Relationship model.ChildGuardianRelationship `json:"relationship"`
}

type Service interface {
	// FindChild returns every profile matching the criteria, without
	// side effects.
	FindChild(ctx context.Context, criteria FindChildCriteria) ([]model.ChildProfile, error)
	// LinkChild matches exactly one child and creates the relationship.
	// The guardian profile is created lazily with placeholder names if
	// the guardian has not onboarded yet.
	LinkChild(ctx context.Context, guardianUserID uuid.UUID, criteria FindChildCriteria, relationshipType string) (*LinkResult, error)
}

type service struct {
	db *gorm.DB
}

func New(db *gorm.DB) Service {
	return &service{db: db}
}

func (s *service) FindChild(ctx context.Context, criteria FindChildCriteria) ([]model.ChildProfile, error) {
	first := strings.TrimSpace(criteria.FirstName)
	last := strings.TrimSpace(criteria.LastName)
	dob := strings.TrimSpace(criteria.DateOfBirth)
	if first == "" || last == "" || dob == "" {
		return nil, ErrMissingCriteria
	}

	q := s.db.WithContext(ctx).
		Where("first_name = ?", first).
		Where("last_name = ?", last).
		Where("date_of_birth = ?", dob)
	if school := strings.TrimSpace(criteria.SchoolName); school != "" {
		q = q.Where("school_name = ?", school)
	}
	if grade := strings.TrimSpace(criteria.Grade); grade != "" {
		q = q.Where("grade = ?", grade)
	}

	var matches []model.ChildProfile
	if err := q.Find(&matches).Error; err != nil {
		return nil, fmt.Errorf("searching children: %w", err)
	}
	return matches, nil
}

func (s *service) LinkChild(ctx context.Context, guardianUserID uuid.UUID, criteria FindChildCriteria, relationshipType string) (*LinkResult, error) {
	if relationshipType == "" {
		relationshipType = "parent"
	}

	matches, err := s.FindChild(ctx, criteria)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ErrChildNotFound
	}
	if len(matches) > 1 {
		return nil, ErrAmbiguousMatch
	}
	child := matches[0]

	var result *LinkResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		gp, err := s.ensureGuardianProfile(ctx, tx, guardianUserID, relationshipType)
		if err != nil {
			return err
		}

		var existing model.ChildGuardianRelationship
		err = tx.Where("child_profile_id = ? AND guardian_profile_id = ?", child.ID, gp.ID).
			First(&existing).Error
		if err == nil {
			return ErrAlreadyLinked
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("checking existing link: %w", err)
		}

		// First guardian to link becomes the primary one.
		var primaries int64
		err = tx.Model(&model.ChildGuardianRelationship{}).
			Where("child_profile_id = ? AND is_primary_guardian = ?", child.ID, true).
			Count(&primaries).Error
		if err != nil {
			return fmt.Errorf("checking primary guardian: %w", err)
		}

		rel := model.ChildGuardianRelationship{
			ChildProfileID:    child.ID,
			GuardianProfileID: gp.ID,
			RelationshipType:  relationshipType,
			IsPrimaryGuardian: primaries == 0,
		}
		if err := tx.Create(&rel).Error; err != nil {
			return fmt.Errorf("creating relationship: %w", err)
		}

		result = &LinkResult{Child: child, Relationship: rel}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ensureGuardianProfile(ctx context.Context, tx *gorm.DB, guardianUserID uuid.UUID, relationshipType string) (*model.GuardianProfile, error) {
	var gp model.GuardianProfile
	err := tx.Where("user_id = ?", guardianUserID).First(&gp).Error
	if err == nil {
		return &gp, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("loading guardian profile: %w", err)
	}

	// Placeholder names until the guardian finishes onboarding.
	gp = model.GuardianProfile{
		UserID:              guardianUserID,
		FirstName:           "Guardian",
		LastName:            "User",
		RelationshipToChild: relationshipType,
	}
	if err := tx.Create(&gp).Error; err != nil {
		return nil, fmt.Errorf("creating guardian profile: %w", err)
	}
	return &gp, nil
}

// Package user keeps the identity-provider mirror of every account and
// assembles the role-shaped dashboard payload.
package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/umojalearning/umoja-backend/internal/model"
)

// LinkedChild is one child attached to a guardian, carried together with
// the relationship row that binds them.
type LinkedChild struct {
	RelationshipID    uuid.UUID          `json:"relationship_id"`
	RelationshipType  string             `json:"relationship_type"`
	IsPrimaryGuardian bool               `json:"is_primary_guardian"`
	Profile           model.ChildProfile `json:"profile"`
}

// Dashboard is the role-shaped landing payload. Exactly one of the
// Guardian/Children pair or the Child field is populated.
type Dashboard struct {
	Role     model.Role             `json:"role"`
	Guardian *model.GuardianProfile `json:"guardian_profile,omitempty"`
	Children []LinkedChild          `json:"children,omitempty"`
	Child    *model.ChildProfile    `json:"child_profile,omitempty"`
}

type Service interface {
	// Sync upserts the local mirror of an identity-provider account.
	// An existing user has its email and role refreshed in place.
	Sync(ctx context.Context, externalID, email string, role model.Role) (*model.User, error)
	ByExternalID(ctx context.Context, externalID string) (*model.User, error)
	Dashboard(ctx context.Context, u *model.User) (*Dashboard, error)
}

type service struct {
	db *gorm.DB
}

func New(db *gorm.DB) Service {
	return &service{db: db}
}

func (s *service) Sync(ctx context.Context, externalID, email string, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	var u model.User
	err := s.db.WithContext(ctx).Where("external_id = ?", externalID).First(&u).Error
	switch {
	case err == nil:
		changed := false
		if email != "" && u.Email != email {
			u.Email = email
			changed = true
		}
		if u.Role != role {
			u.Role = role
			changed = true
		}
		if changed {
			if err := s.db.WithContext(ctx).Save(&u).Error; err != nil {
				return nil, fmt.Errorf("updating user: %w", err)
			}
		}
		return &u, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		u = model.User{ExternalID: externalID, Email: email, Role: role}
		if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
			return nil, fmt.Errorf("creating user: %w", err)
		}
		return &u, nil
	default:
		return nil, fmt.Errorf("looking up user: %w", err)
	}
}

func (s *service) ByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).Where("external_id = ?", externalID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	return &u, nil
}

func (s *service) Dashboard(ctx context.Context, u *model.User) (*Dashboard, error) {
	d := &Dashboard{Role: u.Role}

	switch u.Role {
	case model.RoleGuardian:
		var gp model.GuardianProfile
		err := s.db.WithContext(ctx).Where("user_id = ?", u.ID).First(&gp).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("loading guardian profile: %w", err)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No guardian profile yet means no links either.
			return d, nil
		}
		d.Guardian = &gp

		var rels []model.ChildGuardianRelationship
		if err := s.db.WithContext(ctx).Where("guardian_profile_id = ?", gp.ID).Find(&rels).Error; err != nil {
			return nil, fmt.Errorf("loading relationships: %w", err)
		}
		for _, rel := range rels {
			var cp model.ChildProfile
			err := s.db.WithContext(ctx).Where("id = ?", rel.ChildProfileID).First(&cp).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("loading child profile: %w", err)
			}
			d.Children = append(d.Children, LinkedChild{
				RelationshipID:    rel.ID,
				RelationshipType:  rel.RelationshipType,
				IsPrimaryGuardian: rel.IsPrimaryGuardian,
				Profile:           cp,
			})
		}
	case model.RoleChild:
		var cp model.ChildProfile
		err := s.db.WithContext(ctx).Where("user_id = ?", u.ID).First(&cp).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("loading child profile: %w", err)
		}
		if err == nil {
			d.Child = &cp
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, u.Role)
	}

	return d, nil
}

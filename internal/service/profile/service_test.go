package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/umojalearning/umoja-backend/internal/model"
	"github.com/umojalearning/umoja-backend/internal/service/servicetest"
)

func TestSaveChildProfileUpserts(t *testing.T) {
	db := servicetest.DB(t)
	svc := New(db)
	ctx := context.Background()

	child := servicetest.SeedUser(t, db, "ext-1", "c@example.com", model.RoleChild)

	first, err := svc.SaveChildProfile(ctx, child.ID, SaveChildProfileRequest{
		FirstName:   "Amara",
		LastName:    "Okafor",
		DateOfBirth: "2016-04-02",
		Grade:       "4",
	})
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	if !first.ProfileCompleted {
		t.Fatal("save must mark the profile completed")
	}

	second, err := svc.SaveChildProfile(ctx, child.ID, SaveChildProfileRequest{
		FirstName:   "Amara",
		LastName:    "Okafor",
		DateOfBirth: "2016-04-02",
		Grade:       "5",
	})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("upsert created a second row: %s != %s", second.ID, first.ID)
	}
	if second.Grade != "5" {
		t.Fatalf("expected updated grade, got %q", second.Grade)
	}

	var count int64
	db.Model(&model.ChildProfile{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 profile row, got %d", count)
	}
}

func TestSaveChildProfileRejectsBadDate(t *testing.T) {
	db := servicetest.DB(t)
	svc := New(db)

	child := servicetest.SeedUser(t, db, "ext-1", "c@example.com", model.RoleChild)
	_, err := svc.SaveChildProfile(context.Background(), child.ID, SaveChildProfileRequest{
		FirstName:   "Amara",
		LastName:    "Okafor",
		DateOfBirth: "04/02/2016",
	})
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestChildProfileNotFound(t *testing.T) {
	db := servicetest.DB(t)
	svc := New(db)

	child := servicetest.SeedUser(t, db, "ext-1", "c@example.com", model.RoleChild)
	if _, err := svc.ChildProfile(context.Background(), child.ID); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestSaveEmergencyContactsReplacesSet(t *testing.T) {
	db := servicetest.DB(t)
	svc := New(db)
	ctx := context.Background()

	child := servicetest.SeedUser(t, db, "ext-1", "c@example.com", model.RoleChild)
	p, err := svc.SaveChildProfile(ctx, child.ID, SaveChildProfileRequest{
		FirstName: "Amara", LastName: "Okafor", DateOfBirth: "2016-04-02",
	})
	if err != nil {
		t.Fatalf("seeding profile: %v", err)
	}

	_, err = svc.SaveEmergencyContacts(ctx, p.ID, []EmergencyContactInput{
		{FullName: "Nia Okafor", Relationship: "mother", PhoneNumber: "555-0101", IsPrimary: true},
		{FullName: "Sam Okafor", Relationship: "uncle", PhoneNumber: "555-0102"},
	})
	if err != nil {
		t.Fatalf("first save: %v", err)
	}

	saved, err := svc.SaveEmergencyContacts(ctx, p.ID, []EmergencyContactInput{
		{FullName: "Nia Okafor", Relationship: "mother", PhoneNumber: "555-0199", IsPrimary: true},
	})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("expected 1 saved contact, got %d", len(saved))
	}

	got, err := svc.EmergencyContacts(ctx, p.ID)
	if err != nil {
		t.Fatalf("listing contacts: %v", err)
	}
	if len(got) != 1 || got[0].PhoneNumber != "555-0199" {
		t.Fatalf("replace-all did not replace: %+v", got)
	}
}

func TestSaveEmergencyContactsUnknownProfile(t *testing.T) {
	db := servicetest.DB(t)
	svc := New(db)

	_, err := svc.SaveEmergencyContacts(context.Background(), uuid.New(), nil)
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

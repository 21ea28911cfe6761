package user

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/umojalearning/umoja-backend/internal/model"
	"github.com/umojalearning/umoja-backend/internal/service/servicetest"
)

func TestSyncCreatesThenUpdates(t *testing.T) {
	db := servicetest.DB(t)
	svc := New(db)
	ctx := context.Background()

	created, err := svc.Sync(ctx, "ext-1", "kid@example.com", model.RoleChild)
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}

	again, err := svc.Sync(ctx, "ext-1", "new@example.com", model.RoleGuardian)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if again.ID != created.ID {
		t.Fatalf("sync created a second user: %s != %s", again.ID, created.ID)
	}
	if again.Email != "new@example.com" || again.Role != model.RoleGuardian {
		t.Fatalf("sync did not refresh fields: %+v", again)
	}

	var count int64
	db.Model(&model.User{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 user row, got %d", count)
	}
}

func TestSyncRejectsUnknownRole(t *testing.T) {
	svc := New(servicetest.DB(t))

	_, err := svc.Sync(context.Background(), "ext-1", "a@b.c", model.Role("admin"))
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestByExternalID(t *testing.T) {
	db := servicetest.DB(t)
	svc := New(db)
	ctx := context.Background()

	seeded := servicetest.SeedUser(t, db, "ext-7", "g@example.com", model.RoleGuardian)

	got, err := svc.ByExternalID(ctx, "ext-7")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.ID != seeded.ID {
		t.Fatalf("got wrong user: %s", got.ID)
	}

	if _, err := svc.ByExternalID(ctx, "nope"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDashboardChild(t *testing.T) {
	db := servicetest.DB(t)
	svc := New(db)
	ctx := context.Background()

	child := servicetest.SeedUser(t, db, "ext-c", "c@example.com", model.RoleChild)

	d, err := svc.Dashboard(ctx, child)
	if err != nil {
		t.Fatalf("dashboard without profile: %v", err)
	}
	if d.Child != nil {
		t.Fatal("expected nil child profile before onboarding")
	}

	cp := model.ChildProfile{UserID: child.ID, FirstName: "Amara", LastName: "Okafor", DateOfBirth: "2016-04-02"}
	if err := db.Create(&cp).Error; err != nil {
		t.Fatalf("seeding profile: %v", err)
	}

	d, err = svc.Dashboard(ctx, child)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if d.Child == nil || d.Child.FirstName != "Amara" {
		t.Fatalf("expected child profile on dashboard, got %+v", d.Child)
	}
	if d.Role != model.RoleChild {
		t.Fatalf("wrong role: %s", d.Role)
	}
}

func TestDashboardGuardianListsLinkedChildren(t *testing.T) {
	db := servicetest.DB(t)
	svc := New(db)
	ctx := context.Background()

	guardian := servicetest.SeedUser(t, db, "ext-g", "g@example.com", model.RoleGuardian)
	childA := servicetest.SeedUser(t, db, "ext-a", "a@example.com", model.RoleChild)
	childB := servicetest.SeedUser(t, db, "ext-b", "b@example.com", model.RoleChild)

	gp := model.GuardianProfile{UserID: guardian.ID, FirstName: "Nia", LastName: "Okafor"}
	if err := db.Create(&gp).Error; err != nil {
		t.Fatalf("seeding guardian profile: %v", err)
	}
	for i, c := range []*model.User{childA, childB} {
		cp := model.ChildProfile{UserID: c.ID, FirstName: "Kid", LastName: "Okafor", DateOfBirth: "2015-01-01"}
		if err := db.Create(&cp).Error; err != nil {
			t.Fatalf("seeding child profile: %v", err)
		}
		rel := model.ChildGuardianRelationship{
			ChildProfileID:    cp.ID,
			GuardianProfileID: gp.ID,
			RelationshipType:  "parent",
			IsPrimaryGuardian: i == 0,
		}
		if err := db.Create(&rel).Error; err != nil {
			t.Fatalf("seeding relationship: %v", err)
		}
	}

	d, err := svc.Dashboard(ctx, guardian)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if d.Guardian == nil || d.Guardian.FirstName != "Nia" {
		t.Fatalf("expected guardian profile, got %+v", d.Guardian)
	}
	if len(d.Children) != 2 {
		t.Fatalf("expected 2 linked children, got %d", len(d.Children))
	}
	primaries := 0
	for _, c := range d.Children {
		if c.IsPrimaryGuardian {
			primaries++
		}
	}
	if primaries != 1 {
		t.Fatalf("expected exactly one primary link, got %d", primaries)
	}
}

package model

import "gorm.io/gorm"

// AutoMigrateAll creates or updates every application table.
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Identity
		&User{},

		// Profiles and guardianship
		&ChildProfile{},
		&GuardianProfile{},
		&ChildGuardianRelationship{},
		&EmergencyContact{},

		// Assessment catalog + attempts
		&AssessmentBucket{},
		&AssessmentQuestion{},
		&AssessmentSession{},
		&AssessmentResponse{},

		// Derived analysis cache
		&UserAssessmentResult{},
	)
}

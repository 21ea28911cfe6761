package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserAssessmentResult is the cached LLM-derived profile for a user: at most
// one row per user, written once and read through thereafter. Nothing
// invalidates it when new responses arrive.
type UserAssessmentResult struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;column:user_id" json:"user_id"`

	PersonalitySummary string         `gorm:"type:text;column:personality_summary" json:"personality_summary"`
	LearningStyle      datatypes.JSON `gorm:"column:learning_style" json:"learning_style"`
	TraitScores        datatypes.JSON `gorm:"column:trait_scores" json:"trait_scores"`
	Strengths          datatypes.JSON `gorm:"column:strengths" json:"strengths"`
	AreasForGrowth     datatypes.JSON `gorm:"column:areas_for_growth" json:"areas_for_growth"`
	PodRecommendation  string         `gorm:"type:text;column:pod_recommendation" json:"pod_recommendation"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (UserAssessmentResult) TableName() string { return "user_assessment_results" }

func (r *UserAssessmentResult) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

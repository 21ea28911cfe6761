package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuestionType declares how a question is answered, which in turn fixes
// which response field a valid answer populates.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionLikertScale    QuestionType = "likert_scale"
	QuestionOpenEnded      QuestionType = "open_ended"
	QuestionImageSelection QuestionType = "image_selection"
)

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionMultipleChoice, QuestionLikertScale, QuestionOpenEnded, QuestionImageSelection:
		return true
	}
	return false
}

// SessionStatus is the lifecycle state of an assessment attempt.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionAbandoned  SessionStatus = "abandoned"
)

// AssessmentBucket is a named question category scoped to an age band.
// Static reference data loaded by the seed command.
type AssessmentBucket struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null;column:name" json:"name"`
	Description string    `gorm:"type:text;column:description" json:"description"`
	Purpose     string    `gorm:"type:text;column:purpose" json:"purpose"`
	AgeBand     string    `gorm:"not null;index;column:age_band" json:"age_band"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (AssessmentBucket) TableName() string { return "assessment_buckets" }

func (b *AssessmentBucket) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// AssessmentQuestion is one question within a bucket, ordered by OrderIndex.
type AssessmentQuestion struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BucketID uuid.UUID `gorm:"type:uuid;not null;index;column:bucket_id" json:"bucket_id"`

	QuestionText    string         `gorm:"type:text;not null;column:question_text" json:"question_text"`
	QuestionType    QuestionType   `gorm:"not null;column:question_type" json:"question_type"`
	ResponseOptions datatypes.JSON `gorm:"column:response_options" json:"response_options,omitempty"`
	Section         string         `gorm:"column:section" json:"section,omitempty"`
	OrderIndex      int            `gorm:"not null;column:order_index" json:"order_index"`
	IsRequired      bool           `gorm:"not null;default:true;column:is_required" json:"is_required"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (AssessmentQuestion) TableName() string { return "assessment_questions" }

func (q *AssessmentQuestion) BeforeCreate(*gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// AssessmentSession is one attempt at a bucket by a user. The answered count
// only moves forward and is derived from persisted response rows.
type AssessmentSession struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	BucketID uuid.UUID `gorm:"type:uuid;not null;index;column:bucket_id" json:"bucket_id"`

	Status            SessionStatus `gorm:"not null;default:in_progress;column:status" json:"status"`
	TotalQuestions    int           `gorm:"not null;column:total_questions" json:"total_questions"`
	AnsweredQuestions int           `gorm:"not null;default:0;column:answered_questions" json:"answered_questions"`

	StartedAt   time.Time  `gorm:"not null;column:started_at" json:"started_at"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (AssessmentSession) TableName() string { return "assessment_sessions" }

func (s *AssessmentSession) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}
	return nil
}

// AssessmentResponse is one answered question within a session. Rows are
// append-only; exactly one of the three value columns is set, according to
// the question's declared type.
type AssessmentResponse struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_session_question;column:session_id" json:"session_id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_session_question;column:question_id" json:"question_id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`

	ResponseValue   *string        `gorm:"type:text;column:response_value" json:"response_value,omitempty"`
	ResponseNumeric *int           `gorm:"column:response_numeric" json:"response_numeric,omitempty"`
	ResponseJSON    datatypes.JSON `gorm:"column:response_json" json:"response_json,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (AssessmentResponse) TableName() string { return "assessment_responses" }

func (r *AssessmentResponse) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

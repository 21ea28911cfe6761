// Package assessment records questionnaire sessions and their responses.
// Answered counts are never caller-supplied: they are recomputed from the
// persisted response rows inside the same transaction that writes them.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/umojalearning/umoja-backend/config"
	"github.com/umojalearning/umoja-backend/internal/model"
	"github.com/umojalearning/umoja-backend/internal/service/catalog"
	"github.com/umojalearning/umoja-backend/pkg/ageband"
)

// SessionResponse is a response row joined with its question, as shown on
// review screens.
type SessionResponse struct {
	model.AssessmentResponse
	QuestionText string             `json:"question_text"`
	QuestionType model.QuestionType `json:"question_type"`
	Section      string             `json:"section,omitempty"`
}

// BucketProgress is the per-bucket rollup for one user.
type BucketProgress struct {
	Bucket    model.AssessmentBucket `json:"bucket"`
	Completed bool                   `json:"completed"`
	Percent   float64                `json:"percent"`
}

// CompletionSummary reports how many buckets of a band the user finished.
type CompletionSummary struct {
	Completed          bool        `json:"completed"`
	CompletedBucketIDs []uuid.UUID `json:"completed_bucket_ids"`
	TotalBuckets       int         `json:"total_buckets"`
}

type Service interface {
	StartSession(ctx context.Context, userID, bucketID uuid.UUID, totalQuestions int) (*model.AssessmentSession, error)
	RecordResponse(ctx context.Context, sessionID, questionID, userID uuid.UUID, value ResponseValue) (*model.AssessmentResponse, error)
	// AdvanceProgress recomputes answered_questions from stored rows and
	// returns the new count.
	AdvanceProgress(ctx context.Context, sessionID uuid.UUID) (int, error)
	CompleteSession(ctx context.Context, sessionID uuid.UUID) error
	SessionByID(ctx context.Context, sessionID uuid.UUID) (*model.AssessmentSession, error)
	ListSessions(ctx context.Context, userID uuid.UUID) ([]model.AssessmentSession, error)
	SessionResponses(ctx context.Context, sessionID uuid.UUID) ([]SessionResponse, error)
	Progress(ctx context.Context, userID uuid.UUID, band ageband.Band) ([]BucketProgress, error)
	CompletionStatus(ctx context.Context, userID uuid.UUID, band ageband.Band) (*CompletionSummary, error)
}

type service struct {
	db      *gorm.DB
	catalog catalog.Service
	cfg     config.AssessmentConfig
}

func New(db *gorm.DB, cat catalog.Service, cfg config.AssessmentConfig) Service {
	return &service{db: db, catalog: cat, cfg: cfg}
}

func (s *service) StartSession(ctx context.Context, userID, bucketID uuid.UUID, totalQuestions int) (*model.AssessmentSession, error) {
	if _, err := s.catalog.BucketByID(ctx, bucketID); err != nil {
		if errors.Is(err, catalog.ErrBucketNotFound) {
			return nil, ErrBucketNotFound
		}
		return nil, err
	}

	if s.cfg.SingleActiveSession {
		var existing model.AssessmentSession
		err := s.db.WithContext(ctx).
			Where("user_id = ? AND bucket_id = ? AND status = ?", userID, bucketID, model.SessionInProgress).
			Order("created_at desc").
			First(&existing).Error
		if err == nil {
			return &existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("checking open sessions: %w", err)
		}
	}

	session := model.AssessmentSession{
		UserID:         userID,
		BucketID:       bucketID,
		Status:         model.SessionInProgress,
		TotalQuestions: totalQuestions,
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return &session, nil
}

func (s *service) RecordResponse(ctx context.Context, sessionID, questionID, userID uuid.UUID, value ResponseValue) (*model.AssessmentResponse, error) {
	var response *model.AssessmentResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session model.AssessmentSession
		if err := tx.Where("id = ?", sessionID).First(&session).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("loading session: %w", err)
		}
		if session.UserID != userID {
			return ErrSessionOwnership
		}

		var question model.AssessmentQuestion
		if err := tx.Where("id = ?", questionID).First(&question).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuestionNotFound
			}
			return fmt.Errorf("loading question: %w", err)
		}
		if err := value.validate(question.QuestionType); err != nil {
			return err
		}

		var dup int64
		err := tx.Model(&model.AssessmentResponse{}).
			Where("session_id = ? AND question_id = ?", sessionID, questionID).
			Count(&dup).Error
		if err != nil {
			return fmt.Errorf("checking duplicate: %w", err)
		}
		if dup > 0 {
			return ErrDuplicateResponse
		}

		row := model.AssessmentResponse{
			SessionID:  sessionID,
			QuestionID: questionID,
			UserID:     userID,
		}
		value.apply(&row)
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("saving response: %w", err)
		}

		answered, err := countResponses(tx, sessionID)
		if err != nil {
			return err
		}
		err = tx.Model(&model.AssessmentSession{}).
			Where("id = ?", sessionID).
			Update("answered_questions", answered).Error
		if err != nil {
			return fmt.Errorf("updating answered count: %w", err)
		}

		response = &row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

func (s *service) AdvanceProgress(ctx context.Context, sessionID uuid.UUID) (int, error) {
	var answered int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session model.AssessmentSession
		if err := tx.Where("id = ?", sessionID).First(&session).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("loading session: %w", err)
		}

		n, err := countResponses(tx, sessionID)
		if err != nil {
			return err
		}
		err = tx.Model(&model.AssessmentSession{}).
			Where("id = ?", sessionID).
			Update("answered_questions", n).Error
		if err != nil {
			return fmt.Errorf("updating answered count: %w", err)
		}
		answered = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return answered, nil
}

func (s *service) CompleteSession(ctx context.Context, sessionID uuid.UUID) error {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&model.AssessmentSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]any{
			"status":       model.SessionCompleted,
			"completed_at": &now,
		})
	if res.Error != nil {
		return fmt.Errorf("completing session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *service) SessionByID(ctx context.Context, sessionID uuid.UUID) (*model.AssessmentSession, error) {
	var session model.AssessmentSession
	err := s.db.WithContext(ctx).Where("id = ?", sessionID).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return &session, nil
}

func (s *service) ListSessions(ctx context.Context, userID uuid.UUID) ([]model.AssessmentSession, error) {
	var sessions []model.AssessmentSession
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return sessions, nil
}

func (s *service) SessionResponses(ctx context.Context, sessionID uuid.UUID) ([]SessionResponse, error) {
	if _, err := s.SessionByID(ctx, sessionID); err != nil {
		return nil, err
	}

	var rows []SessionResponse
	err := s.db.WithContext(ctx).
		Model(&model.AssessmentResponse{}).
		Select("assessment_responses.*, assessment_questions.question_text, assessment_questions.question_type, assessment_questions.section").
		Joins("JOIN assessment_questions ON assessment_questions.id = assessment_responses.question_id").
		Where("assessment_responses.session_id = ?", sessionID).
		Order("assessment_responses.created_at asc").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("loading responses: %w", err)
	}
	return rows, nil
}

func (s *service) Progress(ctx context.Context, userID uuid.UUID, band ageband.Band) ([]BucketProgress, error) {
	buckets, err := s.catalog.Buckets(ctx, band)
	if err != nil {
		return nil, err
	}

	var sessions []model.AssessmentSession
	err = s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("loading sessions: %w", err)
	}
	byBucket := make(map[uuid.UUID][]model.AssessmentSession)
	for _, sess := range sessions {
		byBucket[sess.BucketID] = append(byBucket[sess.BucketID], sess)
	}

	progress := make([]BucketProgress, 0, len(buckets))
	for _, b := range buckets {
		p := BucketProgress{Bucket: b}
		for _, sess := range byBucket[b.ID] {
			if sess.Status == model.SessionCompleted {
				p.Completed = true
			}
			if sess.TotalQuestions > 0 {
				pct := float64(sess.AnsweredQuestions) / float64(sess.TotalQuestions) * 100
				if pct > p.Percent {
					p.Percent = pct
				}
			}
		}
		if p.Completed {
			p.Percent = 100
		}
		progress = append(progress, p)
	}
	return progress, nil
}

func (s *service) CompletionStatus(ctx context.Context, userID uuid.UUID, band ageband.Band) (*CompletionSummary, error) {
	progress, err := s.Progress(ctx, userID, band)
	if err != nil {
		return nil, err
	}

	summary := &CompletionSummary{TotalBuckets: len(progress)}
	for _, p := range progress {
		if p.Completed {
			summary.CompletedBucketIDs = append(summary.CompletedBucketIDs, p.Bucket.ID)
		}
	}
	summary.Completed = len(progress) > 0 && len(summary.CompletedBucketIDs) == len(progress)
	return summary, nil
}

func countResponses(tx *gorm.DB, sessionID uuid.UUID) (int, error) {
	var n int64
	err := tx.Model(&model.AssessmentResponse{}).
		Where("session_id = ?", sessionID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("counting responses: %w", err)
	}
	return int(n), nil
}

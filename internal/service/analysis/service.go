// Package analysis turns a user's recorded answers into a structured
// learner profile via an external model, caching the result permanently.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/umojalearning/umoja-backend/config"
	"github.com/umojalearning/umoja-backend/internal/model"
	"github.com/umojalearning/umoja-backend/pkg/llm"
)

// LearningStyle is the VARK portion of a profile.
type LearningStyle struct {
	Primary     string `json:"primary"`
	Secondary   string `json:"secondary"`
	Description string `json:"description"`
}

// TraitScore is one radar-chart axis.
type TraitScore struct {
	Trait    string `json:"trait"`
	Score    int    `json:"score"`
	FullMark int    `json:"fullMark"`
}

// Analysis is the structured profile returned to clients, whether freshly
// generated or read back from the cache.
type Analysis struct {
	PersonalitySummary string        `json:"personality_summary"`
	LearningStyle      LearningStyle `json:"learning_style"`
	TraitScores        []TraitScore  `json:"trait_scores"`
	Strengths          []string      `json:"strengths"`
	AreasForGrowth     []string      `json:"areas_for_growth"`
	PodRecommendation  string        `json:"pod_recommendation"`
}

type Service interface {
	// GetOrCreate returns the cached profile when one exists, otherwise
	// generates, stores, and returns a new one. First-time generation is
	// serialized per user.
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*Analysis, error)
}

type service struct {
	db        *gorm.DB
	completer llm.Completer
	locker    Locker
	lockTTL   time.Duration
	logger    *slog.Logger
}

const defaultLockTTL = 2 * time.Minute

func New(db *gorm.DB, completer llm.Completer, locker Locker, cfg config.AssessmentConfig, logger *slog.Logger) Service {
	ttl := time.Duration(cfg.AnalysisLockTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &service{
		db:        db,
		completer: completer,
		locker:    locker,
		lockTTL:   ttl,
		logger:    logger,
	}
}

func (s *service) GetOrCreate(ctx context.Context, userID uuid.UUID) (*Analysis, error) {
	if cached, err := s.cached(ctx, userID); err != nil {
		return nil, err
	} else if cached != nil {
		return cached, nil
	}

	release, err := s.acquireLock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	// Another request may have finished while we waited for the lock.
	if cached, err := s.cached(ctx, userID); err != nil {
		return nil, err
	} else if cached != nil {
		return cached, nil
	}

	transcript, err := s.transcript(ctx, userID)
	if err != nil {
		return nil, err
	}

	reply, err := s.completer.CompleteJSON(ctx, systemPrompt, fmt.Sprintf(userPromptTemplate, transcript))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(reply), &analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}

	if err := s.store(ctx, userID, &analysis); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "generated assessment analysis", "user_id", userID)
	return &analysis, nil
}

// acquireLock blocks until the per-user lock is held or the context ends.
func (s *service) acquireLock(ctx context.Context, userID uuid.UUID) (func(), error) {
	key := "analysis:lock:" + userID.String()
	for {
		release, ok, err := s.locker.TryLock(ctx, key, s.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquiring analysis lock: %w", err)
		}
		if ok {
			return release, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(250 * time.Millisecond):
		}
	}
}

func (s *service) cached(ctx context.Context, userID uuid.UUID) (*Analysis, error) {
	var row model.UserAssessmentResult
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading cached analysis: %w", err)
	}
	return fromRow(&row)
}

// transcript renders one deterministic line per recorded answer.
func (s *service) transcript(ctx context.Context, userID uuid.UUID) (string, error) {
	type responseRow struct {
		ResponseValue   *string
		ResponseNumeric *int
		ResponseJSON    datatypes.JSON
		QuestionText    string
		BucketName      string
	}

	var rows []responseRow
	err := s.db.WithContext(ctx).
		Model(&model.AssessmentResponse{}).
		Select("assessment_responses.response_value, assessment_responses.response_numeric, assessment_responses.response_json, assessment_questions.question_text, assessment_buckets.name AS bucket_name").
		Joins("JOIN assessment_questions ON assessment_questions.id = assessment_responses.question_id").
		Joins("JOIN assessment_buckets ON assessment_buckets.id = assessment_questions.bucket_id").
		Where("assessment_responses.user_id = ?", userID).
		Order("assessment_responses.created_at asc").
		Scan(&rows).Error
	if err != nil {
		return "", fmt.Errorf("loading responses: %w", err)
	}
	if len(rows) == 0 {
		return "", ErrNoResponses
	}

	lines := make([]string, len(rows))
	for i, r := range rows {
		var answer string
		switch {
		case len(r.ResponseJSON) > 0:
			answer = string(r.ResponseJSON)
		case r.ResponseNumeric != nil:
			answer = fmt.Sprintf("%d", *r.ResponseNumeric)
		case r.ResponseValue != nil:
			answer = *r.ResponseValue
		}
		lines[i] = fmt.Sprintf(`In bucket "%s", to question "%s", the user answered: "%s"`, r.BucketName, r.QuestionText, answer)
	}
	return strings.Join(lines, "\n"), nil
}

func (s *service) store(ctx context.Context, userID uuid.UUID, a *Analysis) error {
	row, err := toRow(userID, a)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"personality_summary", "learning_style", "trait_scores",
			"strengths", "areas_for_growth", "pod_recommendation", "updated_at",
		}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("storing analysis: %w", err)
	}
	return nil
}

func toRow(userID uuid.UUID, a *Analysis) (*model.UserAssessmentResult, error) {
	style, err := json.Marshal(a.LearningStyle)
	if err != nil {
		return nil, fmt.Errorf("encoding learning style: %w", err)
	}
	traits, err := json.Marshal(a.TraitScores)
	if err != nil {
		return nil, fmt.Errorf("encoding trait scores: %w", err)
	}
	strengths, err := json.Marshal(a.Strengths)
	if err != nil {
		return nil, fmt.Errorf("encoding strengths: %w", err)
	}
	growth, err := json.Marshal(a.AreasForGrowth)
	if err != nil {
		return nil, fmt.Errorf("encoding growth areas: %w", err)
	}
	return &model.UserAssessmentResult{
		UserID:             userID,
		PersonalitySummary: a.PersonalitySummary,
		LearningStyle:      datatypes.JSON(style),
		TraitScores:        datatypes.JSON(traits),
		Strengths:          datatypes.JSON(strengths),
		AreasForGrowth:     datatypes.JSON(growth),
		PodRecommendation:  a.PodRecommendation,
	}, nil
}

func fromRow(row *model.UserAssessmentResult) (*Analysis, error) {
	a := &Analysis{
		PersonalitySummary: row.PersonalitySummary,
		PodRecommendation:  row.PodRecommendation,
	}
	for _, f := range []struct {
		raw  datatypes.JSON
		dest any
	}{
		{row.LearningStyle, &a.LearningStyle},
		{row.TraitScores, &a.TraitScores},
		{row.Strengths, &a.Strengths},
		{row.AreasForGrowth, &a.AreasForGrowth},
	} {
		if len(f.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(f.raw, f.dest); err != nil {
			return nil, fmt.Errorf("decoding cached analysis: %w", err)
		}
	}
	return a, nil
}

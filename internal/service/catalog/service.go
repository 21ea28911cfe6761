// Package catalog reads the static questionnaire reference data: buckets
// per age band and the ordered questions under each bucket.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/umojalearning/umoja-backend/internal/model"
	"github.com/umojalearning/umoja-backend/pkg/ageband"
)

// bucketOrder is the fixed display order. Buckets outside this list sort
// alphabetically after it.
var bucketOrder = []string{
	"Relational & Interactional Fit",
	"Interests, Motivation & Growth Potential",
	"Foundational Skills & Readiness",
	"Contextual & Holistic Insights",
}

type Service interface {
	Buckets(ctx context.Context, band ageband.Band) ([]model.AssessmentBucket, error)
	BucketByID(ctx context.Context, bucketID uuid.UUID) (*model.AssessmentBucket, error)
	Questions(ctx context.Context, bucketID uuid.UUID) ([]model.AssessmentQuestion, error)
}

type service struct {
	db *gorm.DB
}

func New(db *gorm.DB) Service {
	return &service{db: db}
}

func (s *service) Buckets(ctx context.Context, band ageband.Band) ([]model.AssessmentBucket, error) {
	if !band.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBand, band)
	}

	var buckets []model.AssessmentBucket
	err := s.db.WithContext(ctx).Where("age_band = ?", band).Find(&buckets).Error
	if err != nil {
		return nil, fmt.Errorf("loading buckets: %w", err)
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return bucketRank(buckets[i].Name) < bucketRank(buckets[j].Name) ||
			(bucketRank(buckets[i].Name) == bucketRank(buckets[j].Name) &&
				buckets[i].Name < buckets[j].Name)
	})
	return buckets, nil
}

func bucketRank(name string) int {
	for i, n := range bucketOrder {
		if n == name {
			return i
		}
	}
	return len(bucketOrder)
}

func (s *service) BucketByID(ctx context.Context, bucketID uuid.UUID) (*model.AssessmentBucket, error) {
	var b model.AssessmentBucket
	err := s.db.WithContext(ctx).Where("id = ?", bucketID).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBucketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading bucket: %w", err)
	}
	return &b, nil
}

func (s *service) Questions(ctx context.Context, bucketID uuid.UUID) ([]model.AssessmentQuestion, error) {
	if _, err := s.BucketByID(ctx, bucketID); err != nil {
		return nil, err
	}

	var questions []model.AssessmentQuestion
	err := s.db.WithContext(ctx).
		Where("bucket_id = ?", bucketID).
		Order("order_index asc").
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("loading questions: %w", err)
	}
	return questions, nil
}

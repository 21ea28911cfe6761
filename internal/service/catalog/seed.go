package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/umojalearning/umoja-backend/internal/model"
	"github.com/umojalearning/umoja-backend/pkg/ageband"
)

type seedQuestion struct {
	text     string
	qtype    model.QuestionType
	options  []string
	section  string
	required bool
}

type seedBucket struct {
	name        string
	description string
	purpose     string
	questions   []seedQuestion
}

var likertOptions = []string{
	"Strongly disagree", "Disagree", "Neutral", "Agree", "Strongly agree",
}

var seedBuckets = []seedBucket{
	{
		name:        "Relational & Interactional Fit",
		description: "How the learner connects with peers, mentors, and groups.",
		purpose:     "Gauge social comfort and collaboration style for pod matching.",
		questions: []seedQuestion{
			{text: "I enjoy working on projects with other kids.", qtype: model.QuestionLikertScale, options: likertOptions, section: "Social", required: true},
			{text: "When a group disagrees, what do you usually do?", qtype: model.QuestionMultipleChoice, options: []string{"Suggest a compromise", "Go along with the group", "Argue for my idea", "Step back and listen"}, section: "Social", required: true},
			{text: "Tell us about a time you helped a friend with something hard.", qtype: model.QuestionOpenEnded, section: "Social"},
			{text: "Which picture looks most like your favorite way to spend recess?", qtype: model.QuestionImageSelection, options: []string{"group-game", "reading-corner", "building-blocks", "art-table"}, section: "Social"},
		},
	},
	{
		name:        "Interests, Motivation & Growth Potential",
		description: "What the learner is curious about and what keeps them going.",
		purpose:     "Surface interests and motivation patterns that shape pod themes.",
		questions: []seedQuestion{
			{text: "I keep trying even when something is difficult.", qtype: model.QuestionLikertScale, options: likertOptions, section: "Motivation", required: true},
			{text: "Which of these would you most like to learn about?", qtype: model.QuestionMultipleChoice, options: []string{"Animals and nature", "Building and machines", "Stories and drawing", "Numbers and puzzles"}, section: "Interests", required: true},
			{text: "What is something you taught yourself because you wanted to?", qtype: model.QuestionOpenEnded, section: "Interests"},
			{text: "Pick the activity you would choose on a free afternoon.", qtype: model.QuestionImageSelection, options: []string{"science-kit", "sports-field", "music-room", "computer-lab"}, section: "Interests"},
		},
	},
	{
		name:        "Foundational Skills & Readiness",
		description: "Core academic and self-management skills.",
		purpose:     "Estimate readiness so pods can meet the learner where they are.",
		questions: []seedQuestion{
			{text: "I can focus on one task until it is finished.", qtype: model.QuestionLikertScale, options: likertOptions, section: "Readiness", required: true},
			{text: "When you learn something new, what helps most?", qtype: model.QuestionMultipleChoice, options: []string{"Watching someone do it", "Hearing it explained", "Reading about it", "Trying it myself"}, section: "Learning", required: true},
			{text: "Describe how you organize your schoolwork or projects.", qtype: model.QuestionOpenEnded, section: "Readiness"},
		},
	},
	{
		name:        "Contextual & Holistic Insights",
		description: "The learner's wider world: home, routines, and wellbeing.",
		purpose:     "Add context that numbers alone miss.",
		questions: []seedQuestion{
			{text: "I feel comfortable asking adults for help when I need it.", qtype: model.QuestionLikertScale, options: likertOptions, section: "Wellbeing", required: true},
			{text: "What does a really good day look like for you?", qtype: model.QuestionOpenEnded, section: "Wellbeing", required: true},
			{text: "Which home base helps you do your best thinking?", qtype: model.QuestionImageSelection, options: []string{"quiet-desk", "kitchen-table", "outdoor-bench", "cozy-couch"}, section: "Context"},
		},
	},
}

// Seed loads the canonical buckets and questions for every age band.
// It is idempotent per (band, bucket name): existing buckets are left alone.
func Seed(ctx context.Context, db *gorm.DB) error {
	for _, band := range []ageband.Band{ageband.BandK2, ageband.Band35, ageband.BandMS, ageband.BandHS} {
		for _, sb := range seedBuckets {
			var existing int64
			err := db.WithContext(ctx).Model(&model.AssessmentBucket{}).
				Where("age_band = ? AND name = ?", string(band), sb.name).
				Count(&existing).Error
			if err != nil {
				return fmt.Errorf("checking bucket %q: %w", sb.name, err)
			}
			if existing > 0 {
				continue
			}

			bucket := model.AssessmentBucket{
				Name:        sb.name,
				Description: sb.description,
				Purpose:     sb.purpose,
				AgeBand:     string(band),
			}
			if err := db.WithContext(ctx).Create(&bucket).Error; err != nil {
				return fmt.Errorf("seeding bucket %q: %w", sb.name, err)
			}

			for i, q := range sb.questions {
				question := model.AssessmentQuestion{
					BucketID:     bucket.ID,
					QuestionText: q.text,
					QuestionType: q.qtype,
					Section:      q.section,
					OrderIndex:   i + 1,
					IsRequired:   q.required,
				}
				if len(q.options) > 0 {
					raw, err := optionsJSON(q.options)
					if err != nil {
						return err
					}
					question.ResponseOptions = raw
				}
				if err := db.WithContext(ctx).Create(&question).Error; err != nil {
					return fmt.Errorf("seeding question %q: %w", q.text, err)
				}
			}
		}
	}
	return nil
}

func optionsJSON(options []string) (datatypes.JSON, error) {
	raw, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("encoding options: %w", err)
	}
	return datatypes.JSON(raw), nil
}

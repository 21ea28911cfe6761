package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/umojalearning/umoja-backend/config"
	"github.com/umojalearning/umoja-backend/internal/model"
	"github.com/umojalearning/umoja-backend/internal/service/catalog"
	"github.com/umojalearning/umoja-backend/internal/service/servicetest"
	"github.com/umojalearning/umoja-backend/pkg/ageband"
)

type fixture struct {
	db        *gorm.DB
	svc       Service
	user      *model.User
	bucket    model.AssessmentBucket
	questions []model.AssessmentQuestion
}

func newFixture(t *testing.T, cfg config.AssessmentConfig) *fixture {
	t.Helper()

	db := servicetest.DB(t)
	ctx := context.Background()
	if err := catalog.Seed(ctx, db); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cat := catalog.New(db)
	buckets, err := cat.Buckets(ctx, ageband.BandMS)
	if err != nil {
		t.Fatalf("buckets: %v", err)
	}
	questions, err := cat.Questions(ctx, buckets[0].ID)
	if err != nil {
		t.Fatalf("questions: %v", err)
	}

	return &fixture{
		db:        db,
		svc:       New(db, cat, cfg),
		user:      servicetest.SeedUser(t, db, "ext-1", "kid@example.com", model.RoleChild),
		bucket:    buckets[0],
		questions: questions,
	}
}

func valueFor(t *testing.T, q model.AssessmentQuestion) ResponseValue {
	t.Helper()

	switch q.QuestionType {
	case model.QuestionLikertScale:
		return NumericValue(4)
	case model.QuestionImageSelection:
		return StructuredValue(json.RawMessage(`{"selected":"group-game"}`))
	default:
		return TextValue("I like building things with friends")
	}
}

func TestStartSessionDefaults(t *testing.T) {
	f := newFixture(t, config.AssessmentConfig{})
	ctx := context.Background()

	sess, err := f.svc.StartSession(ctx, f.user.ID, f.bucket.ID, len(f.questions))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if sess.Status != model.SessionInProgress {
		t.Fatalf("expected in_progress, got %s", sess.Status)
	}
	if sess.AnsweredQuestions != 0 {
		t.Fatalf("expected zero answered, got %d", sess.AnsweredQuestions)
	}
	if sess.StartedAt.IsZero() {
		t.Fatal("expected started_at to be set")
	}

	// Default policy allows parallel sessions on the same bucket.
	second, err := f.svc.StartSession(ctx, f.user.ID, f.bucket.ID, len(f.questions))
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if second.ID == sess.ID {
		t.Fatal("expected a distinct second session")
	}
}

func TestStartSessionSingleActivePolicy(t *testing.T) {
	f := newFixture(t, config.AssessmentConfig{SingleActiveSession: true})
	ctx := context.Background()

	first, err := f.svc.StartSession(ctx, f.user.ID, f.bucket.ID, len(f.questions))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	again, err := f.svc.StartSession(ctx, f.user.ID, f.bucket.ID, len(f.questions))
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if again.ID != first.ID {
		t.Fatal("single-active policy must return the open session")
	}

	if err := f.svc.CompleteSession(ctx, first.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	fresh, err := f.svc.StartSession(ctx, f.user.ID, f.bucket.ID, len(f.questions))
	if err != nil {
		t.Fatalf("start after complete: %v", err)
	}
	if fresh.ID == first.ID {
		t.Fatal("expected a new session after completion")
	}
}

func TestStartSessionUnknownBucket(t *testing.T) {
	f := newFixture(t, config.AssessmentConfig{})
	if _, err := f.svc.StartSession(context.Background(), f.user.ID, uuid.New(), 5); !errors.Is(err, ErrBucketNotFound) {
		t.Fatalf("expected ErrBucketNotFound, got %v", err)
	}
}

func TestRecordResponseCountsFromRows(t *testing.T) {
	f := newFixture(t, config.AssessmentConfig{})
	ctx := context.Background()

	sess, err := f.svc.StartSession(ctx, f.user.ID, f.bucket.ID, len(f.questions))
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	for i, q := range f.questions[:2] {
		if _, err := f.svc.RecordResponse(ctx, sess.ID, q.ID, f.user.ID, valueFor(t, q)); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	got, err := f.svc.SessionByID(ctx, sess.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.AnsweredQuestions != 2 {
		t.Fatalf("answered count must equal stored rows: got %d", got.AnsweredQuestions)
	}
}

func TestRecordResponseDuplicateConflicts(t *testing.T) {
	f := newFixture(t, config.AssessmentConfig{})
	ctx := context.Background()

	sess, _ := f.svc.StartSession(ctx, f.user.ID, f.bucket.ID, len(f.questions))
	q := f.questions[0]

	if _, err := f.svc.RecordResponse(ctx, sess.ID, q.ID, f.user.ID, valueFor(t, q)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := f.svc.RecordResponse(ctx, sess.ID, q.ID, f.user.ID, valueFor(t, q)); !errors.Is(err, ErrDuplicateResponse) {
		t.Fatalf("expected ErrDuplicateResponse, got %v", err)
	}

	got, _ := f.svc.SessionByID(ctx, sess.ID)
	if got.AnsweredQuestions != 1 {
		t.Fatalf("duplicate must not bump the count: got %d", got.AnsweredQuestions)
	}
}

func TestRecordResponseTypeValidation(t *testing.T) {
	f := newFixture(t, config.AssessmentConfig{})
	ctx := context.Background()

	sess, _ := f.svc.StartSession(ctx, f.user.ID, f.bucket.ID, len(f.questions))

	var likert model.AssessmentQuestion
	for _, q := range f.questions {
		if q.QuestionType == model.QuestionLikertScale {
			likert = q
			break
		}
	}
	if likert.ID == uuid.Nil {
		t.Fatal("fixture bucket has no likert question")
	}

	if _, err := f.svc.RecordResponse(ctx, sess.ID, likert.ID, f.user.ID, TextValue("agree")); !errors.Is(err, ErrValueMismatch) {
		t.Fatalf("expected ErrValueMismatch for text on likert, got %v", err)
	}
	if _, err := f.svc.RecordResponse(ctx, sess.ID, likert.ID, f.user.ID, NumericValue(5)); err != nil {
		t.Fatalf("numeric on likert must pass: %v", err)
	}
}

func TestRecordResponseOwnership(t *testing.T) {
	f := newFixture(t, config.AssessmentConfig{})
	ctx := context.Background()

	sess, _ := f.svc.StartSession(ctx, f.user.ID, f.bucket.ID, len(f.questions))
	stranger := servicetest.SeedUser(t, f.db, "ext-2", "other@example.com", model.RoleChild)

	q := f.questions[0]
	if _, err := f.svc.RecordResponse(ctx, sess.ID, q.ID, stranger.ID, valueFor(t, q)); !errors.Is(err, ErrSessionOwnership) {
		t.Fatalf("expected ErrSessionOwnership, got %v", err)
	}
}

func TestCompleteSessionWithoutFullCoverage(t *testing.T) {
	f := newFixture(t, config.AssessmentConfig{})
	ctx := context.Background()

	sess, _ := f.svc.StartSession(ctx, f.user.ID, f.bucket.ID, len(f.questions))
	q := f.questions[0]
	if _, err := f.svc.RecordResponse(ctx, sess.ID, q.ID, f.user.ID, valueFor(t, q)); err != nil {
		t.Fatalf("record: %v", err)
	}

	// Completion does not require every question answered.
	if err := f.svc.CompleteSession(ctx, sess.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	got, _ := f.svc.SessionByID(ctx, sess.ID)
	if got.Status != model.SessionCompleted || got.CompletedAt == nil {
		t.Fatalf("expected completed with timestamp, got %+v", got)
	}
	if got.AnsweredQuestions >= got.TotalQuestions {
		t.Fatal("fixture should have unanswered questions remaining")
	}
}

func TestCompleteSessionUnknown(t *testing.T) {
	f := newFixture(t, config.AssessmentConfig{})
	if err := f.svc.CompleteSession(context.Background(), uuid.New()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestAdvanceProgressRecomputes(t *testing.T) {
	f := newFixture(t, config.AssessmentConfig{})
	ctx := context.Background()

	sess, _ := f.svc.StartSession(ctx, f.user.ID, f.bucket.ID, len(f.questions))
	for _, q := range f.questions[:3] {
		if _, err := f.svc.RecordResponse(ctx, sess.ID, q.ID, f.user.ID, valueFor(t, q)); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	// Drift the stored count on purpose; AdvanceProgress must repair it.
	f.db.Model(&model.AssessmentSession{}).Where("id = ?", sess.ID).Update("answered_questions", 99)

	n, err := f.svc.AdvanceProgress(ctx, sess.ID)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected recomputed count 3, got %d", n)
	}
}

func TestSessionResponsesJoinQuestions(t *testing.T) {
	f := newFixture(t, config.AssessmentConfig{})
	ctx := context.Background()

	sess, _ := f.svc.StartSession(ctx, f.user.ID, f.bucket.ID, len(f.questions))
	q := f.questions[0]
	if _, err := f.svc.RecordResponse(ctx, sess.ID, q.ID, f.user.ID, valueFor(t, q)); err != nil {
		t.Fatalf("record: %v", err)
	}

	rows, err := f.svc.SessionResponses(ctx, sess.ID)
	if err != nil {
		t.Fatalf("responses: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].QuestionText != q.QuestionText || rows[0].QuestionType != q.QuestionType {
		t.Fatalf("join missing question fields: %+v", rows[0])
	}
}

func TestProgressAndCompletionStatus(t *testing.T) {
	f := newFixture(t, config.AssessmentConfig{})
	ctx := context.Background()

	sess, _ := f.svc.StartSession(ctx, f.user.ID, f.bucket.ID, len(f.questions))
	if err := f.svc.CompleteSession(ctx, sess.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	progress, err := f.svc.Progress(ctx, f.user.ID, ageband.BandMS)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	var completed int
	for _, p := range progress {
		if p.Completed {
			completed++
			if p.Percent != 100 {
				t.Fatalf("completed bucket must report 100%%, got %v", p.Percent)
			}
		}
	}
	if completed != 1 {
		t.Fatalf("expected 1 completed bucket, got %d", completed)
	}

	summary, err := f.svc.CompletionStatus(ctx, f.user.ID, ageband.BandMS)
	if err != nil {
		t.Fatalf("completion status: %v", err)
	}
	if summary.Completed {
		t.Fatal("band must not be complete with buckets remaining")
	}
	if len(summary.CompletedBucketIDs) != 1 || summary.TotalBuckets != len(progress) {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

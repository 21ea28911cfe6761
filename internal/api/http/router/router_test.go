package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/umojalearning/umoja-backend/config"
	"github.com/umojalearning/umoja-backend/internal/model"
	"github.com/umojalearning/umoja-backend/internal/service/analysis"
	"github.com/umojalearning/umoja-backend/internal/service/assessment"
	"github.com/umojalearning/umoja-backend/internal/service/catalog"
	"github.com/umojalearning/umoja-backend/internal/service/guardian"
	"github.com/umojalearning/umoja-backend/internal/service/profile"
	"github.com/umojalearning/umoja-backend/internal/service/user"
	"github.com/umojalearning/umoja-backend/pkg/idtoken"
)

const testSecret = "router-test-secret"

type fakeCompleter struct {
	mu    sync.Mutex
	calls int
	reply string
}

func (f *fakeCompleter) CompleteJSON(ctx context.Context, system, userPrompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.reply, nil
}

type noopLocker struct{}

func (noopLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	return func() {}, true, nil
}

type testEnv struct {
	app       *fiber.App
	db        *gorm.DB
	completer *fakeCompleter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := model.AutoMigrateAll(db); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	if err := catalog.Seed(context.Background(), db); err != nil {
		t.Fatalf("seeding catalog: %v", err)
	}

	cfg := &config.Config{}
	cfg.Identity.SecretKey = testSecret
	verifier, err := idtoken.NewVerifier(cfg)
	if err != nil {
		t.Fatalf("building verifier: %v", err)
	}

	completer := &fakeCompleter{reply: `{
		"personality_summary": "Curious and collaborative.",
		"learning_style": {"primary": "Visual", "secondary": "Kinesthetic", "description": "Learns by seeing."},
		"trait_scores": [{"trait": "Leadership", "score": 60, "fullMark": 100}],
		"strengths": ["curiosity", "focus", "kindness"],
		"areas_for_growth": ["patience", "planning"],
		"pod_recommendation": "A maker pod."
	}`}

	cat := catalog.New(db)
	users := user.New(db)
	r := NewRouter(Params{
		Cfg:           cfg,
		Verifier:      verifier,
		UserSvc:       users,
		ProfileSvc:    profile.New(db),
		GuardianSvc:   guardian.New(db),
		CatalogSvc:    cat,
		AssessmentSvc: assessment.New(db, cat, cfg.Assessment),
		AnalysisSvc:   analysis.New(db, completer, noopLocker{}, cfg.Assessment, slog.Default()),
	})

	app := fiber.New()
	r.Register(app)
	return &testEnv{app: app, db: db, completer: completer}
}

func bearerToken(t *testing.T, sub, email string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return "Bearer " + signed
}

func (e *testEnv) request(t *testing.T, method, path, auth string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encoding body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := e.app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	var decoded map[string]any
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func TestRoutesRequireAuth(t *testing.T) {
	e := newTestEnv(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/api/auth/sync-user"},
		{http.MethodGet, "/api/dashboard"},
		{http.MethodPost, "/api/guardian/verify-child"},
		{http.MethodPost, "/api/assessment/analyze"},
	} {
		resp, _ := e.request(t, route.method, route.path, "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s %s without token: got %d, want 401", route.method, route.path, resp.StatusCode)
		}
	}
}

func TestSyncUserAndDashboard(t *testing.T) {
	e := newTestEnv(t)
	auth := bearerToken(t, "ext-child", "kid@example.com")

	// Dashboard before sync is a 404.
	resp, _ := e.request(t, http.MethodGet, "/api/dashboard", auth, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("dashboard before sync: got %d, want 404", resp.StatusCode)
	}

	resp, body := e.request(t, http.MethodPost, "/api/auth/sync-user", auth, map[string]any{"userType": "child"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sync-user: got %d, want 200", resp.StatusCode)
	}
	if body["redirectUrl"] != "/child-dashboard" {
		t.Fatalf("expected child redirect, got %v", body["redirectUrl"])
	}

	resp, body = e.request(t, http.MethodGet, "/api/dashboard", auth, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard after sync: got %d, want 200", resp.StatusCode)
	}
	if body["userRole"] != "child" {
		t.Fatalf("expected child dashboard, got %v", body)
	}

	resp, _ = e.request(t, http.MethodPost, "/api/auth/sync-user", auth, map[string]any{"userType": "wizard"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid user type: got %d, want 400", resp.StatusCode)
	}
}

func TestGuardianVerifyChildFlow(t *testing.T) {
	e := newTestEnv(t)
	childAuth := bearerToken(t, "ext-child", "kid@example.com")
	guardianAuth := bearerToken(t, "ext-guardian", "parent@example.com")

	e.request(t, http.MethodPost, "/api/auth/sync-user", childAuth, map[string]any{"userType": "child"})
	e.request(t, http.MethodPost, "/api/auth/sync-user", guardianAuth, map[string]any{"userType": "guardian"})

	resp, _ := e.request(t, http.MethodPut, "/api/profile/child", childAuth, map[string]any{
		"first_name":    "Amara",
		"last_name":     "Okafor",
		"date_of_birth": "2013-04-02",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("saving child profile: got %d", resp.StatusCode)
	}

	// A miss is a 200 with success=false.
	resp, body := e.request(t, http.MethodPost, "/api/guardian/verify-child", guardianAuth, map[string]any{
		"firstName": "Nobody", "lastName": "Here", "dateOfBirth": "2010-01-01",
	})
	if resp.StatusCode != http.StatusOK || body["success"] != false {
		t.Fatalf("miss must be 200 success=false, got %d %v", resp.StatusCode, body)
	}

	resp, body = e.request(t, http.MethodPost, "/api/guardian/verify-child", guardianAuth, map[string]any{
		"firstName": "Amara", "lastName": "Okafor", "dateOfBirth": "2013-04-02",
	})
	if resp.StatusCode != http.StatusOK || body["success"] != true {
		t.Fatalf("link failed: %d %v", resp.StatusCode, body)
	}
	if body["message"] != "Successfully linked to Amara Okafor" {
		t.Fatalf("unexpected message: %v", body["message"])
	}

	resp, body = e.request(t, http.MethodGet,
		"/api/guardian/verify-child?firstName=Amara&lastName=Okafor&dateOfBirth=2013-04-02",
		guardianAuth, nil)
	if resp.StatusCode != http.StatusOK || body["found"] != true {
		t.Fatalf("search failed: %d %v", resp.StatusCode, body)
	}

	resp, body = e.request(t, http.MethodGet, "/api/dashboard", guardianAuth, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("guardian dashboard: got %d", resp.StatusCode)
	}
	children, isSlice := body["children"].([]any)
	if !isSlice || len(children) != 1 {
		t.Fatalf("expected one linked child on dashboard, got %v", body["children"])
	}
}

func TestAssessmentAndAnalyzeFlow(t *testing.T) {
	e := newTestEnv(t)
	auth := bearerToken(t, "ext-child", "kid@example.com")
	e.request(t, http.MethodPost, "/api/auth/sync-user", auth, map[string]any{"userType": "child"})

	// Analyze before any responses exist is a 404.
	resp, body := e.request(t, http.MethodPost, "/api/assessment/analyze", auth, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("analyze without responses: got %d, want 404", resp.StatusCode)
	}
	if body["error"] != "No assessment responses found for this user." {
		t.Fatalf("unexpected error body: %v", body)
	}

	resp, body = e.request(t, http.MethodGet, "/api/assessment/buckets?band=MS", auth, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("buckets: got %d", resp.StatusCode)
	}
	data := body["data"].(map[string]any)
	buckets := data["buckets"].([]any)
	if len(buckets) == 0 {
		t.Fatal("expected seeded buckets")
	}
	bucket := buckets[0].(map[string]any)
	bucketID := bucket["id"].(string)

	resp, body = e.request(t, http.MethodGet, fmt.Sprintf("/api/assessment/buckets/%s/questions", bucketID), auth, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("questions: got %d", resp.StatusCode)
	}
	questions := body["data"].(map[string]any)["questions"].([]any)
	if len(questions) == 0 {
		t.Fatal("expected seeded questions")
	}

	resp, body = e.request(t, http.MethodPost, "/api/assessment/sessions", auth, map[string]any{
		"bucket_id":       bucketID,
		"total_questions": len(questions),
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start session: got %d", resp.StatusCode)
	}
	session := body["data"].(map[string]any)["session"].(map[string]any)
	sessionID := session["id"].(string)

	// Answer the first open-ended question.
	var questionID string
	for _, raw := range questions {
		q := raw.(map[string]any)
		if q["question_type"] == "open_ended" {
			questionID = q["id"].(string)
			break
		}
	}
	if questionID == "" {
		q := questions[0].(map[string]any)
		questionID = q["id"].(string)
	}

	resp, _ = e.request(t, http.MethodPost, fmt.Sprintf("/api/assessment/sessions/%s/responses", sessionID), auth, map[string]any{
		"question_id": questionID,
		"kind":        "text",
		"text":        "I taught myself to ride a bike",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("record response: got %d", resp.StatusCode)
	}

	resp, body = e.request(t, http.MethodGet, fmt.Sprintf("/api/assessment/sessions/%s/responses", sessionID), auth, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list responses: got %d", resp.StatusCode)
	}
	if rs := body["data"].(map[string]any)["responses"].([]any); len(rs) != 1 {
		t.Fatalf("expected one recorded response, got %d", len(rs))
	}

	resp, _ = e.request(t, http.MethodPost, fmt.Sprintf("/api/assessment/sessions/%s/complete", sessionID), auth, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("complete session: got %d", resp.StatusCode)
	}

	resp, body = e.request(t, http.MethodPost, "/api/assessment/analyze", auth, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("analyze: got %d", resp.StatusCode)
	}
	result := body["analysis"].(map[string]any)
	if result["pod_recommendation"] != "A maker pod." {
		t.Fatalf("unexpected analysis: %v", result)
	}

	// A second analyze serves the cached profile.
	e.request(t, http.MethodPost, "/api/assessment/analyze", auth, nil)
	e.completer.mu.Lock()
	calls := e.completer.calls
	e.completer.mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected a single upstream call, got %d", calls)
	}
}

package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cvforge/internal/config"
	"cvforge/internal/errors"
	"cvforge/internal/extract"
	"cvforge/internal/observability"
	"cvforge/internal/types"
)

func testServer(t *testing.T, mutate func(*ServerConfig)) *Server {
	t.Helper()
	appCfg := &config.Config{}
	appCfg.Scoring.KeywordWeight = 0.6
	appCfg.Scoring.SectionWeight = 0.4
	appCfg.Tailoring.DefaultLevel = "balanced"

	cfg := ServerConfig{
		Host:           "localhost",
		Port:           "0",
		Version:        "test",
		MaxRequestSize: 1 << 20,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewServer(appCfg, cfg, errors.NewLogger(slog.LevelError))
}

func testObservability(t *testing.T) *observability.ObservabilityManager {
	t.Helper()
	om, err := observability.NewObservabilityManager(
		observability.ObservabilityConfig{Enabled: false}, nil)
	if err != nil {
		t.Fatalf("NewObservabilityManager failed: %v", err)
	}
	return om
}

func serverSnapshot() *types.ResumeSnapshot {
	return &types.ResumeSnapshot{
		PersonalInfo: types.PersonalInfo{Name: "Dana Reyes"},
		Summary:      "Backend developer with five years of experience.",
		Skills:       []string{"Ruby", "Python", "PostgreSQL"},
		Experience: []types.Experience{
			{
				Position:         "Backend Developer",
				Company:          "Acme",
				Responsibilities: []string{"Built internal billing services"},
			},
		},
		Education: []types.Education{{Degree: "BSc", Institution: "State University"}},
	}
}

func serverJob() *types.JobRequirements {
	return &types.JobRequirements{
		JobTitle:       "Platform Engineer",
		RequiredSkills: []string{"Python", "Docker"},
		Keywords:       []string{"Python", "Docker", "PostgreSQL"},
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		want   string
	}{
		{"short key fully masked", "secret", "****"},
		{"boundary length fully masked", "12345678", "****"},
		{"long key shows prefix", "abcdefghijklmnop", "abcdefgh****"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := maskAPIKey(tt.apiKey); got != tt.want {
				t.Errorf("maskAPIKey(%q) = %q, want %q", tt.apiKey, got, tt.want)
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	s := testServer(t, func(cfg *ServerConfig) {
		cfg.APIKeys = []string{"valid-key-12345678"}
	})

	handler := s.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		header     string
		value      string
		wantStatus int
	}{
		{"missing key", "", "", http.StatusUnauthorized},
		{"invalid key", "X-API-Key", "wrong", http.StatusUnauthorized},
		{"valid key", "X-API-Key", "valid-key-12345678", http.StatusOK},
		{"valid bearer token", "Authorization", "Bearer valid-key-12345678", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/parse-job", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestAuthMiddlewareNoKeysConfigured(t *testing.T) {
	s := testServer(t, nil)
	handler := s.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/session-status", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when no keys are configured", rec.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	s := testServer(t, func(cfg *ServerConfig) {
		cfg.RateLimit = &config.RateLimitConfig{
			Enabled:        true,
			RequestsPerMin: 60,
			BurstCapacity:  1,
			ByIP:           true,
			Window:         time.Minute,
		}
	})
	defer s.RateLimiter.Close()

	handler := s.createRateLimitMiddleware(testObservability(t))(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/session-status", nil)
	req.RemoteAddr = "10.1.2.3:4567"

	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", rec.Code)
	}
}

func TestGetRateLimitKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:4567"
	req.Header.Set("X-API-Key", "some-key")

	if got := getRateLimitKey(req, true, true); got != "api:some-key" {
		t.Errorf("key = %q, want api key precedence", got)
	}
	if got := getRateLimitKey(req, false, true); got != "ip:10.1.2.3" {
		t.Errorf("key = %q, want ip key", got)
	}
	if got := getRateLimitKey(req, false, false); got != "" {
		t.Errorf("key = %q, want empty when both disabled", got)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		realIP     string
		remoteAddr string
		want       string
	}{
		{"x-forwarded-for wins", "203.0.113.9, 10.0.0.1", "", "10.1.2.3:4567", "203.0.113.9"},
		{"x-real-ip fallback", "", "203.0.113.7", "10.1.2.3:4567", "203.0.113.7"},
		{"remote addr fallback", "", "", "10.1.2.3:4567", "10.1.2.3"},
		{"invalid forwarded ignored", "not-an-ip", "", "10.1.2.3:4567", "10.1.2.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseJSONRequestRequiresJSONContentType(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")

	var v map[string]any
	if err := parseJSONRequest(req, &v); err == nil {
		t.Fatal("non-JSON content type must be rejected")
	}
}

func TestParseJSONRequestMalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")

	var v map[string]any
	if err := parseJSONRequest(req, &v); err == nil {
		t.Fatal("malformed JSON must be rejected")
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", errors.NewValidationError(errors.ErrCodeInvalidRequest, "bad", nil), http.StatusBadRequest},
		{"comparison input", errors.NewInvalidComparisonInputError("bad", nil), http.StatusBadRequest},
		{"extraction", errors.NewExtractionFailedError("bad file", nil), http.StatusUnprocessableEntity},
		{"malformed response", errors.NewMalformedResponseError("bad output", nil), http.StatusUnprocessableEntity},
		{"generation unavailable", errors.NewGenerationUnavailableError("down", nil), http.StatusServiceUnavailable},
		{"timeout", errors.NewAIError(errors.ErrCodeAITimeout, "slow", nil), http.StatusGatewayTimeout},
		{"unknown", errors.NewInternalError(errors.ErrCodeConfiguration, "boom", nil), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusForError(tt.err); got != tt.want {
				t.Errorf("statusForError() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUploadContentType(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		declared string
		want     string
	}{
		{"pdf by extension", "resume.PDF", "application/octet-stream", extract.MIMETypePDF},
		{"docx by extension", "resume.docx", "", extract.MIMETypeDocx},
		{"octet-stream falls back to text", "resume.txt", "application/octet-stream", extract.MIMETypePlain},
		{"declared type kept", "resume.txt", "text/plain; charset=utf-8", "text/plain; charset=utf-8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := uploadContentType(tt.filename, tt.declared); got != tt.want {
				t.Errorf("uploadContentType(%q, %q) = %q, want %q", tt.filename, tt.declared, got, tt.want)
			}
		})
	}
}

func TestSessionStatusHandler(t *testing.T) {
	s := testServer(t, nil)
	sess := s.Sessions.Create()
	sess.SetOriginal(serverSnapshot())
	sess.SetJob(serverJob())

	req := httptest.NewRequest(http.MethodGet, "/api/session-status", nil)
	req.Header.Set("X-Session-ID", sess.ID())
	rec := httptest.NewRecorder()
	s.sessionStatusHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("X-Session-ID"); got != sess.ID() {
		t.Errorf("X-Session-ID header = %q, want %q", got, sess.ID())
	}

	var status types.SessionStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !status.HasResume || !status.HasJob || status.HasTailored {
		t.Errorf("status = %+v, want resume and job set, no tailored", status)
	}
	if status.JobTitle != "Platform Engineer" {
		t.Errorf("job title = %q", status.JobTitle)
	}
}

func TestResetHandler(t *testing.T) {
	s := testServer(t, nil)
	sess := s.Sessions.Create()
	sess.SetOriginal(serverSnapshot())
	sess.SetJob(serverJob())

	req := httptest.NewRequest(http.MethodPost, "/api/reset", nil)
	req.Header.Set("X-Session-ID", sess.ID())
	rec := httptest.NewRecorder()
	s.resetHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if _, ok := sess.Original(); ok {
		t.Error("reset must clear the original snapshot")
	}
	if _, ok := sess.Job(); ok {
		t.Error("reset must clear the job requirements")
	}
}

func TestResetHandlerRejectsGet(t *testing.T) {
	s := testServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/reset", nil)
	rec := httptest.NewRecorder()
	s.resetHandler(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestComparisonHandler(t *testing.T) {
	s := testServer(t, nil)
	om := testObservability(t)

	sess := s.Sessions.Create()
	original := serverSnapshot()
	job := serverJob()
	sess.SetOriginal(original)
	sess.SetJob(job)

	tailored := original.Clone()
	tailored.Skills = append(tailored.Skills, "Docker")
	before := s.Scorer.Score(original, job)
	sess.CommitTailored(tailored, []string{"Added 1 skill(s): Docker"}, before)

	req := httptest.NewRequest(http.MethodGet, "/api/comparison", nil)
	req.Header.Set("X-Session-ID", sess.ID())
	rec := httptest.NewRecorder()
	s.createComparisonHandler(om)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result types.ComparisonResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if result.After.OverallScore <= result.Before.OverallScore {
		t.Errorf("after score %v must beat before score %v", result.After.OverallScore, result.Before.OverallScore)
	}
	if len(result.Changes.SkillsAdded) != 1 || result.Changes.SkillsAdded[0] != "Docker" {
		t.Errorf("skills added = %v, want [Docker]", result.Changes.SkillsAdded)
	}
}

func TestComparisonHandlerWithoutTailored(t *testing.T) {
	s := testServer(t, nil)
	om := testObservability(t)

	sess := s.Sessions.Create()
	sess.SetOriginal(serverSnapshot())
	sess.SetJob(serverJob())

	req := httptest.NewRequest(http.MethodGet, "/api/comparison", nil)
	req.Header.Set("X-Session-ID", sess.ID())
	rec := httptest.NewRecorder()
	s.createComparisonHandler(om)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 without a tailored snapshot", rec.Code)
	}
}

func TestEvaluationHandlerFallsBackToOriginal(t *testing.T) {
	s := testServer(t, nil)
	om := testObservability(t)

	sess := s.Sessions.Create()
	sess.SetOriginal(serverSnapshot())
	sess.SetJob(serverJob())

	req := httptest.NewRequest(http.MethodGet, "/api/evaluation", nil)
	req.Header.Set("X-Session-ID", sess.ID())
	rec := httptest.NewRecorder()
	s.createEvaluationHandler(om)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Metrics  types.EvaluationMetrics `json:"metrics"`
		Analysis types.ATSAnalysis       `json:"analysis"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if payload.Metrics.OverallQuality <= 0 {
		t.Error("overall quality must be positive for a populated resume")
	}
	if payload.Analysis.JobTitle != "Platform Engineer" {
		t.Errorf("analysis job title = %q", payload.Analysis.JobTitle)
	}
}

func TestEvaluationHandlerWithoutJob(t *testing.T) {
	s := testServer(t, nil)
	om := testObservability(t)

	req := httptest.NewRequest(http.MethodGet, "/api/evaluation", nil)
	rec := httptest.NewRecorder()
	s.createEvaluationHandler(om)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 without a job", rec.Code)
	}
}

func TestResolveSessionReusesHeaderID(t *testing.T) {
	s := testServer(t, nil)
	sess := s.Sessions.Create()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Session-ID", sess.ID())
	if got := s.resolveSession(req); got != sess {
		t.Error("resolveSession must return the existing session for a known ID")
	}

	fresh := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := s.resolveSession(fresh); got == sess {
		t.Error("resolveSession must create a new session without a header")
	}
}

func TestRateLimiterStats(t *testing.T) {
	limiter := NewRateLimiter(120, time.Minute, 5, errors.NewLogger(slog.LevelError))
	defer limiter.Close()

	limiter.Allow("ip:10.0.0.1")
	limiter.Allow("ip:10.0.0.2")

	stats := limiter.GetStats()
	if stats["active_limiters"] != 2 {
		t.Errorf("active_limiters = %v, want 2", stats["active_limiters"])
	}
	if stats["rate_per_minute"] != 120.0 {
		t.Errorf("rate_per_minute = %v, want 120", stats["rate_per_minute"])
	}
	if stats["burst_capacity"] != 5 {
		t.Errorf("burst_capacity = %v, want 5", stats["burst_capacity"])
	}
}

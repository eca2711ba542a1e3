package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"cvforge/internal/ai"
	"cvforge/internal/extract"
	"cvforge/internal/keyword"
	"cvforge/internal/observability"
	"cvforge/internal/policy"
	"cvforge/internal/session"
	"cvforge/internal/tailor"
	"cvforge/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// meteredGenerator wraps the AI provider so that token usage from every
// rewrite call in a multi-pass run can be summed for one tracked operation.
type meteredGenerator struct {
	provider ai.AIProvider
	usage    observability.TokenUsage
}

func (m *meteredGenerator) RewriteSection(ctx context.Context, input types.RewriteSectionInput) (types.RewriteSectionOutput, *ai.TokenUsage, error) {
	out, usage, err := m.provider.RewriteSection(ctx, input)
	if usage != nil {
		m.usage.InputTokens += usage.InputTokens
		m.usage.OutputTokens += usage.OutputTokens
		m.usage.TotalTokens += usage.TotalTokens
	}
	return out, usage, err
}

// newTailorOrchestrator builds an orchestrator backed by the rewrite
// operation's AI service, plus the metering wrapper it feeds.
func (s *Server) newTailorOrchestrator() (*tailor.Orchestrator, *meteredGenerator, error) {
	rewriteConfig := s.AppConfig.GetRewriteConfig()
	aiService, err := ai.NewService(&rewriteConfig, "rewrite", s.Logger)
	if err != nil {
		return nil, nil, err
	}
	generator := &meteredGenerator{provider: aiService.Provider}
	return tailor.NewOrchestrator(generator, s.Scorer, s.Logger), generator, nil
}

// createUploadResumeHandler accepts a resume as a multipart file upload or a
// JSON body, extracts its text, and stores the structured snapshot in the
// session as the tailoring baseline.
func (s *Server) createUploadResumeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("cvforge.api")
		ctx, span := tracer.Start(ctx, "api.upload_resume")
		defer span.End()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		resumeText, err := s.readResumeText(r)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "extraction"))
			writeAppError(w, "Failed to extract resume text", err)
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(resumeText)),
			attribute.String("operation", "upload_resume"),
		)

		extractConfig := s.AppConfig.GetExtractConfig()
		aiService, err := ai.NewService(&extractConfig, "extract", s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics := om.GetMetrics()
		var snapshot types.ResumeSnapshot
		err = metrics.TrackAIOperationWithTokens(ctx, "extract", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, aiErr := aiService.Provider.ExtractResume(ctx, types.ExtractResumeInput{ResumeText: resumeText})
			snapshot = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			writeAppError(w, "Failed to extract resume", err)
			return
		}

		sess := s.resolveSession(r)
		sess.SetOriginal(&snapshot)

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("output.skills_count", len(snapshot.Skills)),
			attribute.Int("output.experience_count", len(snapshot.Experience)),
		)

		s.writeSessionJSON(w, sess, map[string]any{
			"session_id": sess.ID(),
			"resume":     snapshot,
		})
	}
}

// readResumeText pulls resume text out of the request: a multipart "resume"
// file when present, otherwise a JSON body with the raw text.
func (s *Server) readResumeText(r *http.Request) (string, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, header, err := r.FormFile("resume")
		if err != nil {
			return "", fmt.Errorf("missing resume file in multipart form: %w", err)
		}
		defer func() {
			if err := file.Close(); err != nil {
				s.Logger.Warn("Failed to close uploaded file", "error", err.Error())
			}
		}()

		data, err := io.ReadAll(file)
		if err != nil {
			return "", fmt.Errorf("failed to read uploaded file: %w", err)
		}
		return extract.FromBytes(data, uploadContentType(header.Filename, header.Header.Get("Content-Type")))
	}

	var req UploadResumeRequest
	if err := parseJSONRequest(r, &req); err != nil {
		return "", err
	}
	if strings.TrimSpace(req.ResumeText) == "" {
		return "", fmt.Errorf("resumeText field is required")
	}
	return extract.CleanText(req.ResumeText), nil
}

// uploadContentType resolves the effective content type of an uploaded file.
// Browsers often send application/octet-stream, so the extension wins then.
func uploadContentType(filename, declared string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extract.MIMETypePDF
	case ".docx":
		return extract.MIMETypeDocx
	}
	if declared == "" || declared == "application/octet-stream" {
		return extract.MIMETypePlain
	}
	return declared
}

// createParseJobHandler parses a job description with the AI collaborator and
// merges the deterministic keyword index into the result before storing it.
func (s *Server) createParseJobHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("cvforge.api")
		ctx, span := tracer.Start(ctx, "api.parse_job")
		defer span.End()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req ParseJobRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.JobDescription) == "" {
			err := fmt.Errorf("missing job description")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing job description", "jobDescription field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.job_length", len(req.JobDescription)),
			attribute.String("operation", "parse_job"),
		)

		parseConfig := s.AppConfig.GetParseJobConfig()
		aiService, err := ai.NewService(&parseConfig, "parse_job", s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics := om.GetMetrics()
		var job types.JobRequirements
		err = metrics.TrackAIOperationWithTokens(ctx, "parse_job", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, aiErr := aiService.Provider.ParseJob(ctx, types.ParseJobInput{JobText: req.JobDescription})
			job = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		// The deterministic index backstops whatever the collaborator missed;
		// a failed parse degrades to the deterministic parser alone.
		merged, usedFallback := keyword.ReconcileParsed(&job, err, req.JobDescription)
		if usedFallback {
			span.RecordError(err)
			span.SetAttributes(attribute.Bool("deterministic_fallback", true))
			s.Logger.Warn("AI job parse failed, using deterministic parser", "error", err)
		}
		job = *merged

		sess := s.resolveSession(r)
		sess.SetJob(&job)

		metrics.RecordBusinessMetric(ctx, "job_parsed", true, om,
			attribute.Int("keywords_count", len(job.Keywords)),
			attribute.Bool("deterministic_fallback", usedFallback))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("output.required_skills_count", len(job.RequiredSkills)),
			attribute.Int("output.keywords_count", len(job.Keywords)),
		)

		s.writeSessionJSON(w, sess, map[string]any{
			"session_id": sess.ID(),
			"job":        job,
		})
	}
}

// createGenerateResumeHandler runs the full tailoring sequence for the
// session at the requested level.
func (s *Server) createGenerateResumeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("cvforge.api")
		ctx, span := tracer.Start(ctx, "api.generate_resume")
		defer span.End()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req GenerateResumeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		levelName := req.Level
		if levelName == "" {
			levelName = s.AppConfig.Tailoring.DefaultLevel
		}
		level, err := policy.ParseLevel(levelName)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid tailoring level", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.String("tailoring.level", string(level)),
			attribute.String("operation", "generate_resume"),
		)

		orchestrator, generator, err := s.newTailorOrchestrator()
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		sess := s.resolveSession(r)
		metrics := om.GetMetrics()
		var result *types.TailorResult
		err = metrics.TrackAIOperationWithTokens(ctx, "tailor", func(ctx context.Context) *observability.AIOperationResult {
			output, runErr := orchestrator.Tailor(ctx, sess, level)
			result = output
			return &observability.AIOperationResult{
				Error:      runErr,
				TokenUsage: &generator.usage,
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			metrics.RecordBusinessMetric(ctx, "resume_tailored", false, om,
				attribute.String("tailoring.level", string(level)))
			writeAppError(w, "Failed to tailor resume", err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "resume_tailored", true, om,
			attribute.String("tailoring.level", string(level)),
			attribute.Float64("ats.score", result.Analysis.OverallScore),
			attribute.Int("customizations_count", len(result.Customizations)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Float64("ats.score", result.Analysis.OverallScore),
			attribute.Int("customizations_count", len(result.Customizations)),
		)

		s.writeSessionJSON(w, sess, result)
	}
}

// createReviseSectionHandler regenerates one prose field of the tailored
// snapshot with user instructions.
func (s *Server) createReviseSectionHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("cvforge.api")
		ctx, span := tracer.Start(ctx, "api.revise_section")
		defer span.End()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req ReviseSectionRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.Section) == "" {
			writeErrorResponse(w, "Missing section", "section field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.String("revision.section", req.Section),
			attribute.String("operation", "revise_section"),
		)

		orchestrator, generator, err := s.newTailorOrchestrator()
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		sess := s.resolveSession(r)
		metrics := om.GetMetrics()
		var result *types.TailorResult
		err = metrics.TrackAIOperationWithTokens(ctx, "revise", func(ctx context.Context) *observability.AIOperationResult {
			output, runErr := orchestrator.ReviseField(ctx, sess, policy.Field(req.Section), req.Index, req.Instructions)
			result = output
			return &observability.AIOperationResult{
				Error:      runErr,
				TokenUsage: &generator.usage,
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			writeAppError(w, "Failed to revise section", err)
			return
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Float64("ats.score", result.Analysis.OverallScore),
		)

		s.writeSessionJSON(w, sess, result)
	}
}

// createRecompareHandler rebuilds the tailored snapshot from user-edited
// resume text and re-runs the comparison, without a full regeneration.
func (s *Server) createRecompareHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("cvforge.api")
		ctx, span := tracer.Start(ctx, "api.recompare")
		defer span.End()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req RecompareRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.ResumeText) == "" {
			writeErrorResponse(w, "Missing resume text", "resumeText field is required", http.StatusBadRequest)
			return
		}

		sess := s.resolveSession(r)
		if _, ok := sess.Original(); !ok {
			writeErrorResponse(w, "No resume uploaded", "Upload a resume before recomparing", http.StatusBadRequest)
			return
		}
		job, ok := sess.Job()
		if !ok {
			writeErrorResponse(w, "No job parsed", "Parse a job description before recomparing", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.String("operation", "recompare"),
		)

		extractConfig := s.AppConfig.GetExtractConfig()
		aiService, err := ai.NewService(&extractConfig, "extract", s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics := om.GetMetrics()
		var snapshot types.ResumeSnapshot
		err = metrics.TrackAIOperationWithTokens(ctx, "extract", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, aiErr := aiService.Provider.ExtractResume(ctx, types.ExtractResumeInput{ResumeText: req.ResumeText})
			snapshot = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			metrics.RecordBusinessMetric(ctx, "comparison_run", false, om)
			writeAppError(w, "Failed to extract edited resume", err)
			return
		}

		before, _ := sess.BeforeAnalysis()
		customizations := append(sess.Customizations(), "Applied manual edits to tailored resume")
		sess.CommitTailored(&snapshot, customizations, before)

		result, err := s.buildComparison(sess, job)
		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "comparison_run", false, om)
			writeAppError(w, "Failed to compare resumes", err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "comparison_run", true, om,
			attribute.Bool("after_edit", true))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Float64("improvement", result.Changes.Improvement.KeywordScoreIncrease),
		)

		s.writeSessionJSON(w, sess, result)
	}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			// If rate limited, record metric
			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true, om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// resolveSession returns the session named by the X-Session-ID header,
// creating it on first use, or a brand-new one when the header is absent.
func (s *Server) resolveSession(r *http.Request) *session.Session {
	if id := r.Header.Get("X-Session-ID"); id != "" {
		return s.Sessions.GetOrCreate(id)
	}
	return s.Sessions.Create()
}

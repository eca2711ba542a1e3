package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"cvforge/internal/ai"
	"cvforge/internal/compare"
	"cvforge/internal/config"
	"cvforge/internal/errors"
	"cvforge/internal/evaluate"
	"cvforge/internal/observability"
	"cvforge/internal/session"
	"cvforge/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// getHealthCheckTimeout returns the configured health check timeout
func (s *Server) getHealthCheckTimeout() time.Duration {
	return s.AppConfig.Observability.HealthCheck.Timeout
}

// healthHandler provides a comprehensive health check endpoint including AI model status
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status":  "healthy",
		"service": "cvforge",
		"version": s.Version,
	}

	// Check AI model availability for all operations
	aiStatus := s.checkAIModelsHealth()
	response["ai_models"] = aiStatus

	// Check circuit breaker status
	response["circuit_breakers"] = s.checkCircuitBreakerHealth()

	// Report prompt watcher status when hot reload is enabled
	if promptStatus := s.checkPromptWatcherHealth(); promptStatus != nil {
		response["prompt_reload"] = promptStatus
	}

	// Determine overall health status
	overallHealthy := true
	for _, modelStatus := range aiStatus {
		if modelInfo, ok := modelStatus.(map[string]any); ok {
			if available, exists := modelInfo["available"]; exists {
				if avail, ok := available.(bool); ok && !avail {
					overallHealthy = false
					break
				}
			}
		}
	}

	if !overallHealthy {
		response["status"] = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode health response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// checkAIModelsHealth checks the health of all AI models used by different operations
func (s *Server) checkAIModelsHealth() map[string]any {
	// Use configurable health check timeout
	timeout := s.getHealthCheckTimeout()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	aiStatus := make(map[string]any)
	for operation, opConfig := range s.operationConfigs() {
		if aiService, err := ai.NewService(&opConfig, operation, s.Logger); err == nil {
			aiStatus[operation] = aiService.GetModelInfo(ctx)
		} else {
			aiStatus[operation] = map[string]any{
				"available": false,
				"error":     fmt.Sprintf("Failed to create %s service: %v", operation, err),
			}
		}
	}

	return aiStatus
}

// checkCircuitBreakerHealth checks the health of circuit breakers for all AI operations
func (s *Server) checkCircuitBreakerHealth() map[string]any {
	circuitBreakerStatus := make(map[string]any)
	for operation, opConfig := range s.operationConfigs() {
		if _, err := ai.NewService(&opConfig, operation, s.Logger); err == nil {
			circuitBreakerStatus[operation] = map[string]any{
				"available": true,
				"message":   fmt.Sprintf("Circuit breaker integrated with %s service", operation),
			}
		} else {
			circuitBreakerStatus[operation] = map[string]any{
				"available": false,
				"error":     fmt.Sprintf("Failed to create %s service: %v", operation, err),
			}
		}
	}

	return circuitBreakerStatus
}

// operationConfigs returns the per-operation AI configurations keyed by
// operation name, matching the names used in metrics and prompts.
func (s *Server) operationConfigs() map[string]config.OperationAIConfig {
	return map[string]config.OperationAIConfig{
		"extract":   s.AppConfig.GetExtractConfig(),
		"parse_job": s.AppConfig.GetParseJobConfig(),
		"rewrite":   s.AppConfig.GetRewriteConfig(),
	}
}

// checkPromptWatcherHealth reports the prompt hot-reload watcher state
func (s *Server) checkPromptWatcherHealth() map[string]any {
	if s.PromptWatcher == nil {
		return nil
	}

	return map[string]any{
		"enabled":       true,
		"running":       s.PromptWatcher.IsRunning(),
		"watched_files": s.PromptWatcher.GetWatchedFiles(),
	}
}

// createStatsHandler provides server statistics including rate limiting and
// session counts.
func (s *Server) createStatsHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		sessionCount := s.Sessions.Len()
		om.GetMetrics().RecordSessionCount(r.Context(), sessionCount, om)

		response := map[string]any{
			"service": "cvforge",
			"version": s.Version,
			"server": map[string]any{
				"max_request_size_bytes": s.MaxRequestSize,
			},
			"sessions": map[string]any{
				"active": sessionCount,
			},
		}

		// Add rate limiting stats if enabled
		if s.RateLimiter != nil {
			response["rate_limiting"] = s.RateLimiter.GetStats()
		} else {
			response["rate_limiting"] = map[string]any{
				"enabled": false,
			}
		}

		// Add configuration info
		if s.RateLimit != nil {
			response["rate_limit_config"] = map[string]any{
				"enabled":          s.RateLimit.Enabled,
				"requests_per_min": s.RateLimit.RequestsPerMin,
				"burst_capacity":   s.RateLimit.BurstCapacity,
				"by_ip":            s.RateLimit.ByIP,
				"by_api_key":       s.RateLimit.ByAPIKey,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Printf("Failed to encode stats response: %v", err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createComparisonHandler diffs the session's original and tailored snapshots
func (s *Server) createComparisonHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		sess := s.resolveSession(r)
		job, ok := sess.Job()
		if !ok {
			writeErrorResponse(w, "No job parsed", "Parse a job description before comparing", http.StatusBadRequest)
			return
		}

		metrics := om.GetMetrics()
		result, err := s.buildComparison(sess, job)
		if err != nil {
			metrics.RecordBusinessMetric(r.Context(), "comparison_run", false, om)
			writeAppError(w, "Failed to compare resumes", err)
			return
		}

		metrics.RecordBusinessMetric(r.Context(), "comparison_run", true, om,
			attribute.Int("new_keywords_matched", len(result.Changes.NewKeywordsMatched)))

		s.writeSessionJSON(w, sess, result)
	}
}

// buildComparison assembles a comparison input from the session state. Both
// snapshots are evaluated so the report carries quality scores alongside the
// ATS numbers.
func (s *Server) buildComparison(sess *session.Session, job *types.JobRequirements) (*types.ComparisonResult, error) {
	original, ok := sess.Original()
	if !ok {
		return nil, errors.NewInvalidComparisonInputError(
			"No resume uploaded for this session", nil)
	}
	tailored, ok := sess.Tailored()
	if !ok {
		return nil, errors.NewInvalidComparisonInputError(
			"No tailored resume for this session", nil)
	}

	beforeAnalysis, ok := sess.BeforeAnalysis()
	if !ok {
		beforeAnalysis = s.Scorer.Score(original, job)
	}
	afterAnalysis := s.Scorer.Score(tailored, job)

	beforeQuality := evaluate.Evaluate(original, job, beforeAnalysis).OverallQuality
	afterQuality := evaluate.Evaluate(tailored, job, afterAnalysis).OverallQuality

	return compare.Compare(compare.Input{
		Before:         original,
		After:          tailored,
		BeforeAnalysis: beforeAnalysis,
		AfterAnalysis:  afterAnalysis,
		BeforeQuality:  beforeQuality,
		AfterQuality:   afterQuality,
		Customizations: sess.Customizations(),
	})
}

// createEvaluationHandler scores and evaluates the tailored snapshot, falling
// back to the original when no tailoring has run yet.
func (s *Server) createEvaluationHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		sess := s.resolveSession(r)
		job, ok := sess.Job()
		if !ok {
			writeErrorResponse(w, "No job parsed", "Parse a job description before evaluating", http.StatusBadRequest)
			return
		}

		snapshot, ok := sess.Tailored()
		if !ok {
			if snapshot, ok = sess.Original(); !ok {
				writeErrorResponse(w, "No resume uploaded", "Upload a resume before evaluating", http.StatusBadRequest)
				return
			}
		}

		analysis := s.Scorer.Score(snapshot, job)
		result := evaluate.Evaluate(snapshot, job, analysis)

		metrics := om.GetMetrics()
		metrics.RecordBusinessMetric(r.Context(), "resume_evaluated", true, om,
			attribute.Float64("overall_quality", result.OverallQuality))

		s.writeSessionJSON(w, sess, map[string]any{
			"metrics":  result,
			"analysis": analysis,
		})
	}
}

// sessionStatusHandler reports which session slots are populated
func (s *Server) sessionStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess := s.resolveSession(r)
	s.writeSessionJSON(w, sess, sess.Status())
}

// resetHandler clears every session slot in one step
func (s *Server) resetHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess := s.resolveSession(r)
	sess.Reset()

	s.Logger.Info("Session reset", "session_id", sess.ID())
	s.writeSessionJSON(w, sess, map[string]any{"status": "reset"})
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	if r.Header.Get("Content-Type") != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// writeSessionJSON writes a JSON response and echoes the session ID in a
// header so clients without one can pick it up.
func (s *Server) writeSessionJSON(w http.ResponseWriter, sess *session.Session, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Session-ID", sess.ID())
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   error,
		Message: message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode error response: %v", err)
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}

// writeAppError maps a domain error to an HTTP status and writes it
func writeAppError(w http.ResponseWriter, heading string, err error) {
	writeErrorResponse(w, heading, err.Error(), statusForError(err))
}

// statusForError maps domain error codes onto HTTP status codes. Unknown
// errors are treated as internal.
func statusForError(err error) int {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		return http.StatusInternalServerError
	}

	switch appErr.Code {
	case errors.ErrCodeInvalidRequest, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidComparison:
		return http.StatusBadRequest
	case errors.ErrCodeExtractionFailed, errors.ErrCodeMalformedResponse:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeGenerationUnavailable:
		return http.StatusServiceUnavailable
	case errors.ErrCodeAITimeout, errors.ErrCodeNetworkTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

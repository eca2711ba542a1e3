package server

import (
	"time"

	"cvforge/internal/ats"
	"cvforge/internal/config"
	cvforgeErrors "cvforge/internal/errors"
	"cvforge/internal/session"
)

// ParseJobRequest is the request body for the parse-job endpoint
type ParseJobRequest struct {
	JobDescription string `json:"jobDescription"`
}

// GenerateResumeRequest is the request body for the generate-resume endpoint.
// Level is optional; the configured default tailoring level applies when empty.
type GenerateResumeRequest struct {
	Level string `json:"level,omitempty"`
}

// ReviseSectionRequest is the request body for the revise-section endpoint.
// Index selects the experience or projects entry; it is ignored for summary.
type ReviseSectionRequest struct {
	Section      string `json:"section"`
	Index        int    `json:"index,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// RecompareRequest is the request body for the recompare endpoint
type RecompareRequest struct {
	ResumeText string `json:"resumeText"`
}

// UploadResumeRequest is the JSON fallback body for the upload-resume
// endpoint when the resume is sent as raw text instead of a multipart file
type UploadResumeRequest struct {
	ResumeText string `json:"resumeText"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration and shared state for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// In-memory session store for the upload -> parse -> generate workflow
	Sessions *session.Store

	// Deterministic ATS scorer shared by all handlers
	Scorer *ats.Scorer

	// Prompt hot-reload watcher, started in Start when enabled
	PromptWatcher *config.PromptWatcher

	// Logger
	Logger *cvforgeErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
// (Refactored to reduce long parameter list in NewServer)
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, logger *cvforgeErrors.Logger) *Server {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.Window,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Sessions:       session.NewStore(),
		Scorer:         ats.NewScorer(ats.Weights{Keyword: appCfg.Scoring.KeywordWeight, Section: appCfg.Scoring.SectionWeight}),
		Logger:         logger,
	}
}

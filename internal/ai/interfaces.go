package ai

import (
	"context"

	"cvforge/internal/types"
)

// AIProvider interface for different AI implementations
// All methods return token usage information - callers can ignore it if not needed
type AIProvider interface {
	ExtractResume(ctx context.Context, input types.ExtractResumeInput) (types.ResumeSnapshot, *TokenUsage, error)
	ParseJob(ctx context.Context, input types.ParseJobInput) (types.JobRequirements, *TokenUsage, error)
	RewriteSection(ctx context.Context, input types.RewriteSectionInput) (types.RewriteSectionOutput, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

package cli

import (
	"context"
	"fmt"

	"cvforge/internal/ai"
	"cvforge/internal/ats"
	"cvforge/internal/common"
	"cvforge/internal/extract"
	"cvforge/internal/policy"
	"cvforge/internal/session"
	"cvforge/internal/tailor"
	"cvforge/internal/types"

	"github.com/spf13/cobra"
)

var tailorCmd = &cobra.Command{
	Use:   "tailor [resume-file] [job-description-file]",
	Short: "Tailor a resume for a specific job description",
	Long: `Tailor a resume to a job description. The resume file may be plain
text, Markdown, PDF, or DOCX; the job description is plain text.

The command extracts the resume into a structured snapshot, parses the job
description into requirements with a keyword index, rewrites the prose fields
permitted by the chosen optimization level, and reports before/after ATS
scores. Factual content such as dates, employers, and degrees is never
changed.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return err
		}
		// Apply default format if not specified
		if tailorConfig.OutputFormat == "" {
			tailorConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(tailorConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runTailor,
}

var (
	tailorConfig common.CommandConfig
	tailorLevel  string
)

func init() {
	tailorCmd.Flags().StringVarP(&tailorConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	tailorCmd.Flags().StringVar(&tailorConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	tailorCmd.Flags().StringVarP(&tailorLevel, "level", "l", "", "Optimization level: minimal, balanced, aggressive (default from config)")

	// Add completion for format flag
	_ = tailorCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return []string{}, cobra.ShellCompDirectiveError
		}
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
	_ = tailorCmd.RegisterFlagCompletionFunc("level", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return policy.LevelNames(), cobra.ShellCompDirectiveNoFileComp
	})
}

// usageTrackingGenerator folds the token usage of every rewrite pass into
// the runner's running total.
type usageTrackingGenerator struct {
	provider ai.AIProvider
	runner   *common.Runner
}

func (g *usageTrackingGenerator) RewriteSection(ctx context.Context, input types.RewriteSectionInput) (types.RewriteSectionOutput, *ai.TokenUsage, error) {
	output, usage, err := g.provider.RewriteSection(ctx, input)
	g.runner.AddUsage(usage)
	return output, usage, err
}

func runTailor(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	levelName := tailorLevel
	if levelName == "" {
		levelName = cfg.Tailoring.DefaultLevel
	}
	level, err := policy.ParseLevel(levelName)
	if err != nil {
		return err
	}

	runner := common.NewRunner(logger)

	// The resume may be a binary document; the job description is plain text.
	resumeText, err := extract.FromFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}
	jobContents, err := runner.ReadInputs(args[1])
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}
	jobText := jobContents[0]

	logger.Info("Starting resume tailoring",
		"resume_chars", len(resumeText),
		"job_chars", len(jobText),
		"level", level,
		"output_format", tailorConfig.OutputFormat)

	ctx := cmd.Context()

	extractAIConfig := cfg.GetExtractConfig()
	extractService, err := ai.NewService(&extractAIConfig, "extract", logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}
	snapshot, err := common.CallAI(ctx, runner, extractService.Provider.ExtractResume,
		types.ExtractResumeInput{ResumeText: resumeText})
	if err != nil {
		return fmt.Errorf("failed to extract resume: %w", err)
	}

	job, err := parseJobRequirements(ctx, cfg, logger, runner, jobText)
	if err != nil {
		return err
	}

	rewriteAIConfig := cfg.GetRewriteConfig()
	rewriteService, err := ai.NewService(&rewriteAIConfig, "rewrite", logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}

	scorer := ats.NewScorer(ats.Weights{
		Keyword: cfg.Scoring.KeywordWeight,
		Section: cfg.Scoring.SectionWeight,
	})
	generator := &usageTrackingGenerator{provider: rewriteService.Provider, runner: runner}
	orchestrator := tailor.NewOrchestrator(generator, scorer, logger)

	sess := session.NewStore().Create()
	sess.SetOriginal(&snapshot)
	sess.SetJob(job)

	result, err := orchestrator.Tailor(ctx, sess, level)
	if err != nil {
		return fmt.Errorf("failed to tailor resume: %w", err)
	}

	if err := runner.WriteResult(result, tailorConfig); err != nil {
		return err
	}
	logger.Info("Resume tailoring completed successfully",
		"ats_score", result.Analysis.OverallScore,
		"customizations", len(result.Customizations))
	return nil
}

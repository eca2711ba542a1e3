package cli

import (
	"fmt"

	"cvforge/internal/ai"
	"cvforge/internal/ats"
	"cvforge/internal/common"
	"cvforge/internal/evaluate"
	"cvforge/internal/extract"
	"cvforge/internal/types"

	"github.com/spf13/cobra"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [resume-file] [job-description-file]",
	Short: "Evaluate how well a resume covers a job description",
	Long: `Evaluate a resume against a job description without changing it.

The resume is scored by the deterministic ATS model (keyword coverage and
section coverage), then rolled into evaluation metrics: readability,
keyword density, quality ceiling, and an overall quality score. Useful for
checking a resume before tailoring, or for verifying a manually edited
one.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return err
		}
		// Apply default format if not specified
		if evaluateConfig.OutputFormat == "" {
			evaluateConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(evaluateConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runEvaluate,
}

var evaluateConfig common.CommandConfig

func init() {
	evaluateCmd.Flags().StringVarP(&evaluateConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	evaluateCmd.Flags().StringVar(&evaluateConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = evaluateCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return []string{}, cobra.ShellCompDirectiveError
		}
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	runner := common.NewRunner(logger)

	resumeText, err := extract.FromFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}
	jobContents, err := runner.ReadInputs(args[1])
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}
	jobText := jobContents[0]

	logger.Info("Starting resume evaluation",
		"resume_chars", len(resumeText),
		"job_chars", len(jobText),
		"output_format", evaluateConfig.OutputFormat)

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

	scorer := ats.NewScorer(ats.Weights{
		Keyword: cfg.Scoring.KeywordWeight,
		Section: cfg.Scoring.SectionWeight,
	})
	analysis := scorer.Score(&snapshot, job)
	metrics := evaluate.Evaluate(&snapshot, job, analysis)

	if err := runner.WriteResult(metrics, evaluateConfig); err != nil {
		return err
	}
	logger.Info("Resume evaluation completed successfully",
		"ats_score", analysis.OverallScore,
		"overall_quality", metrics.OverallQuality)
	return nil
}

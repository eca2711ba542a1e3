package cli

import (
	"context"
	"fmt"

	"cvforge/internal/ai"
	"cvforge/internal/common"
	"cvforge/internal/config"
	"cvforge/internal/errors"
	"cvforge/internal/keyword"
	"cvforge/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [job-description-file]",
	Short: "Parse a job description into structured requirements",
	Long: `Parse a job description into structured requirements: job title,
required and preferred skills, experience expectations, and a keyword index.

The keyword index merges skills named by the AI parser with terms found by
the deterministic frequency-based extractor, so the index is useful even
when the posting buries its requirements in prose. The same index drives
ATS scoring in the tailor and evaluate commands.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return err
		}
		// Apply default format if not specified
		if analyzeConfig.OutputFormat == "" {
			analyzeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(analyzeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runAnalyze,
}

var analyzeConfig common.CommandConfig

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = analyzeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return []string{}, cobra.ShellCompDirectiveError
		}
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

// parseJobRequirements runs the AI job parser and merges its skills with the
// deterministic keyword index. Shared by the tailor, analyze, and evaluate
// commands.
func parseJobRequirements(ctx context.Context, cfg *config.Config, logger *errors.Logger, runner *common.Runner, jobText string) (*types.JobRequirements, error) {
	parseAIConfig := cfg.GetParseJobConfig()
	parseService, err := ai.NewService(&parseAIConfig, "parse_job", logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI service: %w", err)
	}

	job, err := common.CallAI(ctx, runner, parseService.Provider.ParseJob,
		types.ParseJobInput{JobText: jobText})

	// The deterministic index backstops whatever the collaborator missed; a
	// failed parse degrades to the deterministic parser alone.
	merged, usedFallback := keyword.ReconcileParsed(&job, err, jobText)
	if usedFallback {
		logger.Warn("AI job parse failed, using deterministic parser", "error", err)
	}
	return merged, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	runner := common.NewRunner(logger)
	contents, err := runner.ReadInputs(args[0])
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}
	jobText := contents[0]

	logger.Info("Starting job description analysis",
		"job_chars", len(jobText),
		"output_format", analyzeConfig.OutputFormat)

	job, err := parseJobRequirements(cmd.Context(), cfg, logger, runner, jobText)
	if err != nil {
		return err
	}

	if err := runner.WriteResult(job, analyzeConfig); err != nil {
		return err
	}
	logger.Info("Job description analysis completed successfully",
		"job_title", job.JobTitle,
		"keywords", len(job.Keywords))
	return nil
}

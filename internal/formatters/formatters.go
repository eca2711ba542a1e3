package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"cvforge/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "TailorResult", &TailorTextFormatter{})
	registry.RegisterFormatter("markdown", "TailorResult", &TailorMarkdownFormatter{})
	registry.RegisterFormatter("text", "ATSAnalysis", &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", "ATSAnalysis", &AnalysisMarkdownFormatter{})
	registry.RegisterFormatter("text", "EvaluationMetrics", &EvaluationTextFormatter{})
	registry.RegisterFormatter("markdown", "EvaluationMetrics", &EvaluationMarkdownFormatter{})
	registry.RegisterFormatter("text", "ComparisonResult", &ComparisonTextFormatter{})
	registry.RegisterFormatter("markdown", "ComparisonResult", &ComparisonMarkdownFormatter{})
	registry.RegisterFormatter("text", "JobRequirements", &JobTextFormatter{})
	registry.RegisterFormatter("markdown", "JobRequirements", &JobMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.TailorResult, *types.TailorResult:
		return "TailorResult"
	case types.ATSAnalysis, *types.ATSAnalysis:
		return "ATSAnalysis"
	case types.EvaluationMetrics, *types.EvaluationMetrics:
		return "EvaluationMetrics"
	case types.ComparisonResult, *types.ComparisonResult:
		return "ComparisonResult"
	case types.JobRequirements, *types.JobRequirements:
		return "JobRequirements"
	default:
		return "any"
	}
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// writeSnapshotText renders a resume snapshot as plain text
func writeSnapshotText(output *strings.Builder, snapshot *types.ResumeSnapshot) {
	if snapshot == nil {
		return
	}

	if snapshot.PersonalInfo.Name != "" {
		output.WriteString(snapshot.PersonalInfo.Name)
		output.WriteString("\n")
	}
	contact := make([]string, 0, 3)
	for _, part := range []string{snapshot.PersonalInfo.Email, snapshot.PersonalInfo.Phone, snapshot.PersonalInfo.Location} {
		if part != "" {
			contact = append(contact, part)
		}
	}
	if len(contact) > 0 {
		output.WriteString(strings.Join(contact, " | "))
		output.WriteString("\n")
	}
	output.WriteString("\n")

	if snapshot.Summary != "" {
		output.WriteString("Summary:\n")
		output.WriteString(snapshot.Summary)
		output.WriteString("\n\n")
	}

	if len(snapshot.Skills) > 0 {
		output.WriteString("Skills: ")
		output.WriteString(strings.Join(snapshot.Skills, ", "))
		output.WriteString("\n\n")
	}

	for _, exp := range snapshot.Experience {
		output.WriteString(fmt.Sprintf("%s at %s", exp.Position, exp.Company))
		if exp.StartDate != "" {
			output.WriteString(fmt.Sprintf(" (%s - %s)", exp.StartDate, exp.EndDate))
		}
		output.WriteString("\n")
		for _, resp := range exp.Responsibilities {
			output.WriteString(fmt.Sprintf("  - %s\n", resp))
		}
		output.WriteString("\n")
	}

	for _, edu := range snapshot.Education {
		output.WriteString(fmt.Sprintf("%s, %s", edu.Degree, edu.Institution))
		if edu.GraduationDate != "" {
			output.WriteString(fmt.Sprintf(" (%s)", edu.GraduationDate))
		}
		output.WriteString("\n")
	}
	if len(snapshot.Education) > 0 {
		output.WriteString("\n")
	}

	for _, project := range snapshot.Projects {
		output.WriteString(fmt.Sprintf("Project: %s\n", project.Name))
		if project.Description != "" {
			output.WriteString(fmt.Sprintf("  %s\n", project.Description))
		}
		if len(project.Technologies) > 0 {
			output.WriteString(fmt.Sprintf("  Technologies: %s\n", strings.Join(project.Technologies, ", ")))
		}
	}

	for _, cert := range snapshot.Certifications {
		output.WriteString(fmt.Sprintf("Certification: %s", cert.Name))
		if cert.Date != "" {
			output.WriteString(fmt.Sprintf(" (%s)", cert.Date))
		}
		output.WriteString("\n")
	}
}

func writeAnalysisText(output *strings.Builder, analysis *types.ATSAnalysis) {
	if analysis == nil {
		return
	}
	if analysis.JobTitle != "" {
		output.WriteString(fmt.Sprintf("Job Title: %s\n", analysis.JobTitle))
	}
	output.WriteString(fmt.Sprintf("Overall Score: %s\n", percent(analysis.OverallScore)))
	output.WriteString(fmt.Sprintf("Keyword Match: %s (%d matched, %d missing)\n",
		percent(analysis.KeywordMatchScore), len(analysis.MatchedKeywords), len(analysis.MissingKeywords)))
	output.WriteString(fmt.Sprintf("Section Coverage: %s\n", percent(analysis.SectionCoverage)))

	if len(analysis.MatchedKeywords) > 0 {
		output.WriteString(fmt.Sprintf("\nMatched Keywords: %s\n", strings.Join(analysis.MatchedKeywords, ", ")))
	}
	if len(analysis.MissingKeywords) > 0 {
		output.WriteString(fmt.Sprintf("Missing Keywords: %s\n", strings.Join(analysis.MissingKeywords, ", ")))
	}
	if len(analysis.Suggestions) > 0 {
		output.WriteString("\nSuggestions:\n")
		for _, suggestion := range analysis.Suggestions {
			output.WriteString(fmt.Sprintf("- %s\n", suggestion))
		}
	}
}

// TailorTextFormatter handles text formatting for tailor results
type TailorTextFormatter struct{}

func (ttf *TailorTextFormatter) Format(data any) (string, error) {
	result, err := asTailorResult(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("=== TAILORED RESUME ===\n\n")
	writeSnapshotText(&output, result.Tailored)
	output.WriteString("\n")

	if len(result.Customizations) > 0 {
		output.WriteString("=== CUSTOMIZATIONS ===\n")
		for _, customization := range result.Customizations {
			output.WriteString(fmt.Sprintf("- %s\n", customization))
		}
		output.WriteString("\n")
	}

	output.WriteString("=== ATS ANALYSIS ===\n")
	writeAnalysisText(&output, result.Analysis)

	return output.String(), nil
}

func (ttf *TailorTextFormatter) SupportedType() string {
	return "TailorResult"
}

// TailorMarkdownFormatter handles markdown formatting for tailor results
type TailorMarkdownFormatter struct{}

func (tmf *TailorMarkdownFormatter) Format(data any) (string, error) {
	result, err := asTailorResult(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("# Tailored Resume\n\n")
	writeSnapshotMarkdown(&output, result.Tailored)

	if len(result.Customizations) > 0 {
		output.WriteString("## Customizations\n\n")
		for _, customization := range result.Customizations {
			output.WriteString(fmt.Sprintf("- %s\n", customization))
		}
		output.WriteString("\n")
	}

	output.WriteString("## ATS Analysis\n\n")
	writeAnalysisMarkdown(&output, result.Analysis)

	return output.String(), nil
}

func (tmf *TailorMarkdownFormatter) SupportedType() string {
	return "TailorResult"
}

func writeSnapshotMarkdown(output *strings.Builder, snapshot *types.ResumeSnapshot) {
	if snapshot == nil {
		return
	}

	if snapshot.PersonalInfo.Name != "" {
		output.WriteString(fmt.Sprintf("## %s\n\n", snapshot.PersonalInfo.Name))
	}
	if snapshot.Summary != "" {
		output.WriteString(fmt.Sprintf("%s\n\n", snapshot.Summary))
	}
	if len(snapshot.Skills) > 0 {
		output.WriteString(fmt.Sprintf("**Skills:** %s\n\n", strings.Join(snapshot.Skills, ", ")))
	}

	if len(snapshot.Experience) > 0 {
		output.WriteString("### Experience\n\n")
		for _, exp := range snapshot.Experience {
			output.WriteString(fmt.Sprintf("**%s** at %s", exp.Position, exp.Company))
			if exp.StartDate != "" {
				output.WriteString(fmt.Sprintf(" (%s - %s)", exp.StartDate, exp.EndDate))
			}
			output.WriteString("\n\n")
			for _, resp := range exp.Responsibilities {
				output.WriteString(fmt.Sprintf("- %s\n", resp))
			}
			output.WriteString("\n")
		}
	}

	if len(snapshot.Education) > 0 {
		output.WriteString("### Education\n\n")
		for _, edu := range snapshot.Education {
			output.WriteString(fmt.Sprintf("- %s, %s", edu.Degree, edu.Institution))
			if edu.GraduationDate != "" {
				output.WriteString(fmt.Sprintf(" (%s)", edu.GraduationDate))
			}
			output.WriteString("\n")
		}
		output.WriteString("\n")
	}

	if len(snapshot.Projects) > 0 {
		output.WriteString("### Projects\n\n")
		for _, project := range snapshot.Projects {
			output.WriteString(fmt.Sprintf("**%s**", project.Name))
			if project.Description != "" {
				output.WriteString(fmt.Sprintf(": %s", project.Description))
			}
			output.WriteString("\n")
			if len(project.Technologies) > 0 {
				output.WriteString(fmt.Sprintf("  _%s_\n", strings.Join(project.Technologies, ", ")))
			}
		}
		output.WriteString("\n")
	}
}

func writeAnalysisMarkdown(output *strings.Builder, analysis *types.ATSAnalysis) {
	if analysis == nil {
		return
	}
	if analysis.JobTitle != "" {
		output.WriteString(fmt.Sprintf("**Job Title:** %s\n\n", analysis.JobTitle))
	}
	output.WriteString(fmt.Sprintf("**Overall Score:** %s\n\n", percent(analysis.OverallScore)))
	output.WriteString(fmt.Sprintf("**Keyword Match:** %s\n\n", percent(analysis.KeywordMatchScore)))
	output.WriteString(fmt.Sprintf("**Section Coverage:** %s\n\n", percent(analysis.SectionCoverage)))

	if len(analysis.MatchedKeywords) > 0 {
		output.WriteString(fmt.Sprintf("**Matched:** %s\n\n", strings.Join(analysis.MatchedKeywords, ", ")))
	}
	if len(analysis.MissingKeywords) > 0 {
		output.WriteString(fmt.Sprintf("**Missing:** %s\n\n", strings.Join(analysis.MissingKeywords, ", ")))
	}
	if len(analysis.Suggestions) > 0 {
		output.WriteString("### Suggestions\n\n")
		for _, suggestion := range analysis.Suggestions {
			output.WriteString(fmt.Sprintf("- %s\n", suggestion))
		}
		output.WriteString("\n")
	}
}

// AnalysisTextFormatter handles text formatting for standalone ATS analyses
type AnalysisTextFormatter struct{}

func (atf *AnalysisTextFormatter) Format(data any) (string, error) {
	analysis, err := asAnalysis(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	output.WriteString("=== ATS ANALYSIS ===\n")
	writeAnalysisText(&output, analysis)
	return output.String(), nil
}

func (atf *AnalysisTextFormatter) SupportedType() string {
	return "ATSAnalysis"
}

// AnalysisMarkdownFormatter handles markdown formatting for ATS analyses
type AnalysisMarkdownFormatter struct{}

func (amf *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	analysis, err := asAnalysis(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	output.WriteString("# ATS Analysis\n\n")
	writeAnalysisMarkdown(&output, analysis)
	return output.String(), nil
}

func (amf *AnalysisMarkdownFormatter) SupportedType() string {
	return "ATSAnalysis"
}

// EvaluationTextFormatter handles text formatting for evaluation metrics
type EvaluationTextFormatter struct{}

func (etf *EvaluationTextFormatter) Format(data any) (string, error) {
	metrics, err := asMetrics(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("=== RESUME EVALUATION ===\n\n")
	output.WriteString(fmt.Sprintf("Overall Quality: %s\n\n", percent(metrics.OverallQuality)))
	output.WriteString(fmt.Sprintf("Relevance to Job:     %s\n", percent(metrics.RelevanceToJob)))
	output.WriteString(fmt.Sprintf("Experience Coverage:  %s\n", percent(metrics.ExperienceCoverage)))
	output.WriteString(fmt.Sprintf("Achievement Coverage: %s\n", percent(metrics.AchievementCoverage)))
	output.WriteString(fmt.Sprintf("ATS Compliance:       %s\n", percent(metrics.ATSComplianceScore)))
	output.WriteString(fmt.Sprintf("Keyword Density:      %s\n", percent(metrics.KeywordDensity)))

	if len(metrics.Recommendations) > 0 {
		output.WriteString("\n=== RECOMMENDATIONS ===\n")
		for i, recommendation := range metrics.Recommendations {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, recommendation))
		}
	}

	return output.String(), nil
}

func (etf *EvaluationTextFormatter) SupportedType() string {
	return "EvaluationMetrics"
}

// EvaluationMarkdownFormatter handles markdown formatting for evaluation metrics
type EvaluationMarkdownFormatter struct{}

func (emf *EvaluationMarkdownFormatter) Format(data any) (string, error) {
	metrics, err := asMetrics(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("# Resume Evaluation\n\n")
	output.WriteString(fmt.Sprintf("**Overall Quality:** %s\n\n", percent(metrics.OverallQuality)))
	output.WriteString("| Metric | Score |\n|---|---|\n")
	output.WriteString(fmt.Sprintf("| Relevance to Job | %s |\n", percent(metrics.RelevanceToJob)))
	output.WriteString(fmt.Sprintf("| Experience Coverage | %s |\n", percent(metrics.ExperienceCoverage)))
	output.WriteString(fmt.Sprintf("| Achievement Coverage | %s |\n", percent(metrics.AchievementCoverage)))
	output.WriteString(fmt.Sprintf("| ATS Compliance | %s |\n", percent(metrics.ATSComplianceScore)))
	output.WriteString(fmt.Sprintf("| Keyword Density | %s |\n", percent(metrics.KeywordDensity)))
	output.WriteString("\n")

	if len(metrics.Recommendations) > 0 {
		output.WriteString("## Recommendations\n\n")
		for i, recommendation := range metrics.Recommendations {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, recommendation))
		}
	}

	return output.String(), nil
}

func (emf *EvaluationMarkdownFormatter) SupportedType() string {
	return "EvaluationMetrics"
}

// ComparisonTextFormatter handles text formatting for comparison results
type ComparisonTextFormatter struct{}

func (ctf *ComparisonTextFormatter) Format(data any) (string, error) {
	result, err := asComparison(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("=== BEFORE / AFTER COMPARISON ===\n\n")
	writeStatsText(&output, "Before", result.Before)
	output.WriteString("\n")
	writeStatsText(&output, "After", result.After)

	output.WriteString("\n=== CHANGES ===\n")
	output.WriteString(fmt.Sprintf("Summary changed: %t\n", result.Changes.SummaryChanged))
	if len(result.Changes.SkillsAdded) > 0 {
		output.WriteString(fmt.Sprintf("Skills added: %s\n", strings.Join(result.Changes.SkillsAdded, ", ")))
	}
	if len(result.Changes.SkillsRemoved) > 0 {
		output.WriteString(fmt.Sprintf("Skills removed: %s\n", strings.Join(result.Changes.SkillsRemoved, ", ")))
	}
	output.WriteString(fmt.Sprintf("Skills kept: %d\n", result.Changes.SkillsKeptCount))
	if len(result.Changes.NewKeywordsMatched) > 0 {
		output.WriteString(fmt.Sprintf("New keywords matched: %s\n", strings.Join(result.Changes.NewKeywordsMatched, ", ")))
	}

	improvement := result.Changes.Improvement
	output.WriteString(fmt.Sprintf("\nKeyword score change: %+.3f (%+.1f%%)\n",
		improvement.KeywordScoreIncrease, improvement.PercentageImprovement))
	output.WriteString(fmt.Sprintf("Keyword count change: %+d\n", improvement.KeywordCountIncrease))

	if len(result.Customizations) > 0 {
		output.WriteString("\n=== CUSTOMIZATIONS ===\n")
		for _, customization := range result.Customizations {
			output.WriteString(fmt.Sprintf("- %s\n", customization))
		}
	}

	return output.String(), nil
}

func (ctf *ComparisonTextFormatter) SupportedType() string {
	return "ComparisonResult"
}

func writeStatsText(output *strings.Builder, label string, stats types.SnapshotStats) {
	output.WriteString(fmt.Sprintf("%s:\n", label))
	output.WriteString(fmt.Sprintf("  Overall score: %s\n", percent(stats.OverallScore)))
	output.WriteString(fmt.Sprintf("  Keyword match: %s (%d keywords)\n", percent(stats.KeywordMatchScore), stats.KeywordMatches))
	output.WriteString(fmt.Sprintf("  Skills: %d, Experience bullets: %d\n", stats.SkillsCount, stats.ExperienceBullets))
	if stats.Summary != "" {
		output.WriteString(fmt.Sprintf("  Summary: %s\n", stats.Summary))
	}
}

// ComparisonMarkdownFormatter handles markdown formatting for comparison results
type ComparisonMarkdownFormatter struct{}

func (cmf *ComparisonMarkdownFormatter) Format(data any) (string, error) {
	result, err := asComparison(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("# Before / After Comparison\n\n")
	output.WriteString("| Metric | Before | After |\n|---|---|---|\n")
	output.WriteString(fmt.Sprintf("| Overall score | %s | %s |\n",
		percent(result.Before.OverallScore), percent(result.After.OverallScore)))
	output.WriteString(fmt.Sprintf("| Keyword match | %s | %s |\n",
		percent(result.Before.KeywordMatchScore), percent(result.After.KeywordMatchScore)))
	output.WriteString(fmt.Sprintf("| Keywords matched | %d | %d |\n",
		result.Before.KeywordMatches, result.After.KeywordMatches))
	output.WriteString(fmt.Sprintf("| Skills | %d | %d |\n",
		result.Before.SkillsCount, result.After.SkillsCount))
	output.WriteString(fmt.Sprintf("| Experience bullets | %d | %d |\n\n",
		result.Before.ExperienceBullets, result.After.ExperienceBullets))

	output.WriteString("## Changes\n\n")
	output.WriteString(fmt.Sprintf("- Summary changed: %t\n", result.Changes.SummaryChanged))
	if len(result.Changes.SkillsAdded) > 0 {
		output.WriteString(fmt.Sprintf("- Skills added: %s\n", strings.Join(result.Changes.SkillsAdded, ", ")))
	}
	if len(result.Changes.SkillsRemoved) > 0 {
		output.WriteString(fmt.Sprintf("- Skills removed: %s\n", strings.Join(result.Changes.SkillsRemoved, ", ")))
	}
	output.WriteString(fmt.Sprintf("- Skills kept: %d\n", result.Changes.SkillsKeptCount))
	if len(result.Changes.NewKeywordsMatched) > 0 {
		output.WriteString(fmt.Sprintf("- New keywords matched: %s\n", strings.Join(result.Changes.NewKeywordsMatched, ", ")))
	}
	output.WriteString(fmt.Sprintf("- Improvement: %+.1f%%\n\n", result.Changes.Improvement.PercentageImprovement))

	if len(result.Customizations) > 0 {
		output.WriteString("## Customizations\n\n")
		for _, customization := range result.Customizations {
			output.WriteString(fmt.Sprintf("- %s\n", customization))
		}
	}

	return output.String(), nil
}

func (cmf *ComparisonMarkdownFormatter) SupportedType() string {
	return "ComparisonResult"
}

// JobTextFormatter handles text formatting for parsed job requirements
type JobTextFormatter struct{}

func (jtf *JobTextFormatter) Format(data any) (string, error) {
	job, err := asJob(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	if job.JobTitle != "" {
		output.WriteString(fmt.Sprintf("Job Title: %s\n", job.JobTitle))
	}
	if job.ExperienceRequired != "" {
		output.WriteString(fmt.Sprintf("Experience Required: %s\n", job.ExperienceRequired))
	}
	if len(job.RequiredSkills) > 0 {
		output.WriteString(fmt.Sprintf("Required Skills: %s\n", strings.Join(job.RequiredSkills, ", ")))
	}
	if len(job.PreferredSkills) > 0 {
		output.WriteString(fmt.Sprintf("Preferred Skills: %s\n", strings.Join(job.PreferredSkills, ", ")))
	}
	if len(job.Keywords) > 0 {
		output.WriteString(fmt.Sprintf("\nKeyword Index (%d):\n", len(job.Keywords)))
		for _, kw := range job.Keywords {
			output.WriteString(fmt.Sprintf("- %s\n", kw))
		}
	}

	return output.String(), nil
}

func (jtf *JobTextFormatter) SupportedType() string {
	return "JobRequirements"
}

// JobMarkdownFormatter handles markdown formatting for parsed job requirements
type JobMarkdownFormatter struct{}

func (jmf *JobMarkdownFormatter) Format(data any) (string, error) {
	job, err := asJob(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	title := job.JobTitle
	if title == "" {
		title = "Job Requirements"
	}
	output.WriteString(fmt.Sprintf("# %s\n\n", title))

	if job.ExperienceRequired != "" {
		output.WriteString(fmt.Sprintf("**Experience Required:** %s\n\n", job.ExperienceRequired))
	}
	if len(job.RequiredSkills) > 0 {
		output.WriteString(fmt.Sprintf("**Required Skills:** %s\n\n", strings.Join(job.RequiredSkills, ", ")))
	}
	if len(job.PreferredSkills) > 0 {
		output.WriteString(fmt.Sprintf("**Preferred Skills:** %s\n\n", strings.Join(job.PreferredSkills, ", ")))
	}
	if len(job.Keywords) > 0 {
		output.WriteString("## Keyword Index\n\n")
		for _, kw := range job.Keywords {
			output.WriteString(fmt.Sprintf("- %s\n", kw))
		}
	}

	return output.String(), nil
}

func (jmf *JobMarkdownFormatter) SupportedType() string {
	return "JobRequirements"
}

func asTailorResult(data any) (*types.TailorResult, error) {
	switch v := data.(type) {
	case types.TailorResult:
		return &v, nil
	case *types.TailorResult:
		return v, nil
	}
	return nil, fmt.Errorf("expected TailorResult, got %T", data)
}

func asAnalysis(data any) (*types.ATSAnalysis, error) {
	switch v := data.(type) {
	case types.ATSAnalysis:
		return &v, nil
	case *types.ATSAnalysis:
		return v, nil
	}
	return nil, fmt.Errorf("expected ATSAnalysis, got %T", data)
}

func asMetrics(data any) (*types.EvaluationMetrics, error) {
	switch v := data.(type) {
	case types.EvaluationMetrics:
		return &v, nil
	case *types.EvaluationMetrics:
		return v, nil
	}
	return nil, fmt.Errorf("expected EvaluationMetrics, got %T", data)
}

func asComparison(data any) (*types.ComparisonResult, error) {
	switch v := data.(type) {
	case types.ComparisonResult:
		return &v, nil
	case *types.ComparisonResult:
		return v, nil
	}
	return nil, fmt.Errorf("expected ComparisonResult, got %T", data)
}

func asJob(data any) (*types.JobRequirements, error) {
	switch v := data.(type) {
	case types.JobRequirements:
		return &v, nil
	case *types.JobRequirements:
		return v, nil
	}
	return nil, fmt.Errorf("expected JobRequirements, got %T", data)
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()

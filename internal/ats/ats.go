// Package ats scores resume snapshots against job requirements. Scoring is
// a pure function of its inputs: no side effects, no snapshot mutation.
package ats

import (
	"fmt"
	"strings"

	"cvforge/internal/keyword"
	"cvforge/internal/types"
)

// Weights combines the keyword match score and the section coverage into
// the overall score. The defaults are inherited constants, not values
// derived from data; they are configurable but should not be re-derived.
type Weights struct {
	Keyword float64
	Section float64
}

// DefaultWeights is the documented default weighting
var DefaultWeights = Weights{Keyword: 0.6, Section: 0.4}

// requiredSections is the fixed checklist used for section coverage
var requiredSections = []string{"summary", "skills", "experience", "education"}

// Scorer evaluates snapshots with a fixed weight configuration
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer. Zero-valued weights fall back to defaults.
func NewScorer(weights Weights) *Scorer {
	if weights.Keyword == 0 && weights.Section == 0 {
		weights = DefaultWeights
	}
	return &Scorer{weights: weights}
}

// Score computes the ATS analysis of a snapshot against a job. The keyword
// match runs over the concatenation of skills, experience responsibilities,
// project descriptions and the summary.
func (s *Scorer) Score(snapshot *types.ResumeSnapshot, job *types.JobRequirements) *types.ATSAnalysis {
	match := keyword.Match(ResumeText(snapshot), job.Keywords)
	coverage := sectionCoverage(snapshot)

	analysis := &types.ATSAnalysis{
		JobTitle:          job.JobTitle,
		KeywordMatchScore: match.Score,
		SectionCoverage:   coverage,
		OverallScore:      s.weights.Keyword*match.Score + s.weights.Section*coverage,
		MatchedKeywords:   match.Matched,
		MissingKeywords:   match.Missing,
	}
	analysis.Suggestions = buildSuggestions(snapshot, analysis)

	return analysis
}

// ResumeText concatenates the matchable prose of a snapshot: skills,
// responsibility bullets, project descriptions and technologies, and the
// summary. Factual fields like dates and employer names are excluded.
func ResumeText(snapshot *types.ResumeSnapshot) string {
	var b strings.Builder

	b.WriteString(snapshot.Summary)
	for _, skill := range snapshot.Skills {
		b.WriteString(" ")
		b.WriteString(skill)
	}
	for _, exp := range snapshot.Experience {
		b.WriteString(" ")
		b.WriteString(exp.Position)
		for _, resp := range exp.Responsibilities {
			b.WriteString(" ")
			b.WriteString(resp)
		}
	}
	for _, project := range snapshot.Projects {
		b.WriteString(" ")
		b.WriteString(project.Name)
		b.WriteString(" ")
		b.WriteString(project.Description)
		for _, tech := range project.Technologies {
			b.WriteString(" ")
			b.WriteString(tech)
		}
	}

	return b.String()
}

// sectionCoverage returns the fraction of the required-section checklist
// present and non-empty in the snapshot.
func sectionCoverage(snapshot *types.ResumeSnapshot) float64 {
	present := 0
	for _, section := range requiredSections {
		if hasSection(snapshot, section) {
			present++
		}
	}
	return float64(present) / float64(len(requiredSections))
}

func hasSection(snapshot *types.ResumeSnapshot, section string) bool {
	switch section {
	case "summary":
		return strings.TrimSpace(snapshot.Summary) != ""
	case "skills":
		return len(snapshot.Skills) > 0
	case "experience":
		return len(snapshot.Experience) > 0
	case "education":
		return len(snapshot.Education) > 0
	default:
		return false
	}
}

// buildSuggestions produces template-rule suggestions, never free text
func buildSuggestions(snapshot *types.ResumeSnapshot, analysis *types.ATSAnalysis) []string {
	suggestions := []string{}

	if len(analysis.MissingKeywords) > 0 {
		batch := analysis.MissingKeywords
		if len(batch) > 10 {
			batch = batch[:10]
		}
		suggestions = append(suggestions,
			fmt.Sprintf("Add these missing keywords: %s", strings.Join(batch, ", ")))
	}
	if strings.TrimSpace(snapshot.Summary) == "" {
		suggestions = append(suggestions, "Add a professional summary section")
	}
	if len(snapshot.Skills) < 10 {
		suggestions = append(suggestions, "List more relevant skills to improve keyword coverage")
	}
	if analysis.SectionCoverage < 1.0 {
		suggestions = append(suggestions, "Fill in all core resume sections: summary, skills, experience, education")
	}

	return suggestions
}

// Package evaluate derives quality metrics for a tailored resume. All
// metrics are pure functions of (snapshot, job, ATS analysis).
package evaluate

import (
	"strings"

	"cvforge/internal/keyword"
	"cvforge/internal/types"
)

// Metric weights for the overall quality mean. Inherited constants with
// documented defaults, not values derived from data.
const (
	weightRelevance   = 0.25
	weightExperience  = 0.20
	weightAchievement = 0.15
	weightATS         = 0.25
	weightDensity     = 0.15
)

// achievementIndicators are the terms treated as evidence of a quantified
// or outcome-oriented responsibility bullet.
var achievementIndicators = []string{
	"increased", "decreased", "improved", "generated", "saved",
	"reduced", "achieved", "delivered", "%", "million", "thousand",
}

const maxRecommendations = 5

// Evaluate computes the metrics for a snapshot against a job, given the
// snapshot's ATS analysis.
func Evaluate(snapshot *types.ResumeSnapshot, job *types.JobRequirements, analysis *types.ATSAnalysis) *types.EvaluationMetrics {
	metrics := &types.EvaluationMetrics{
		RelevanceToJob:      relevanceToJob(snapshot, job),
		ExperienceCoverage:  experienceCoverage(snapshot, job),
		AchievementCoverage: achievementCoverage(snapshot),
		ATSComplianceScore:  analysis.OverallScore,
		KeywordDensity:      analysis.KeywordMatchScore,
	}

	metrics.OverallQuality = weightRelevance*metrics.RelevanceToJob +
		weightExperience*metrics.ExperienceCoverage +
		weightAchievement*metrics.AchievementCoverage +
		weightATS*metrics.ATSComplianceScore +
		weightDensity*metrics.KeywordDensity

	metrics.Recommendations = buildRecommendations(snapshot, metrics)

	return metrics
}

// relevanceToJob averages the available relevance factors: the share of
// required skills listed in the skills section, and a flat 0.3 credit when
// any held position shares a word with the job title. A factor only enters
// the mean when the job provides the data for it.
func relevanceToJob(snapshot *types.ResumeSnapshot, job *types.JobRequirements) float64 {
	score := 0.0
	factors := 0

	if len(job.RequiredSkills) > 0 {
		listed := make(map[string]bool, len(snapshot.Skills))
		for _, skill := range snapshot.Skills {
			listed[strings.ToLower(skill)] = true
		}
		matched := 0
		for _, required := range job.RequiredSkills {
			if listed[strings.ToLower(required)] {
				matched++
			}
		}
		score += float64(matched) / float64(len(job.RequiredSkills))
		factors++
	}

	if job.JobTitle != "" && len(snapshot.Experience) > 0 {
		titleWords := wordSet(job.JobTitle)
		for _, exp := range snapshot.Experience {
			if sharesWord(titleWords, exp.Position) {
				score += 0.3
				break
			}
		}
		factors++
	}

	if factors == 0 {
		return 0
	}
	return score / float64(factors)
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(s)) {
		set[word] = true
	}
	return set
}

func sharesWord(words map[string]bool, s string) bool {
	for _, word := range strings.Fields(strings.ToLower(s)) {
		if words[word] {
			return true
		}
	}
	return false
}

// experienceCoverage measures how much of the keyword set the experience
// section alone covers.
func experienceCoverage(snapshot *types.ResumeSnapshot, job *types.JobRequirements) float64 {
	var b strings.Builder
	for _, exp := range snapshot.Experience {
		b.WriteString(exp.Position)
		for _, resp := range exp.Responsibilities {
			b.WriteString(" ")
			b.WriteString(resp)
		}
		b.WriteString(" ")
	}
	return keyword.Match(b.String(), job.Keywords).Score
}

// achievementCoverage is the fraction of responsibility bullets carrying
// an achievement indicator. No bullets means no coverage.
func achievementCoverage(snapshot *types.ResumeSnapshot) float64 {
	total := 0
	withIndicator := 0
	for _, exp := range snapshot.Experience {
		for _, resp := range exp.Responsibilities {
			total++
			lower := strings.ToLower(resp)
			for _, indicator := range achievementIndicators {
				if strings.Contains(lower, indicator) {
					withIndicator++
					break
				}
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(withIndicator) / float64(total)
}

func buildRecommendations(snapshot *types.ResumeSnapshot, metrics *types.EvaluationMetrics) []string {
	recommendations := []string{}

	if metrics.RelevanceToJob < 0.7 {
		recommendations = append(recommendations,
			"Work more job-specific keywords into your skills and experience")
	}
	if metrics.ExperienceCoverage < 0.6 {
		recommendations = append(recommendations,
			"Reference the job's key technologies directly in your experience bullets")
	}
	if metrics.AchievementCoverage < 0.5 {
		recommendations = append(recommendations,
			"Quantify more achievements with numbers, percentages or outcomes")
	}
	if metrics.ATSComplianceScore < 0.75 {
		recommendations = append(recommendations,
			"Improve ATS compliance by covering missing keywords and core sections")
	}
	if strings.TrimSpace(snapshot.Summary) == "" {
		recommendations = append(recommendations,
			"Add a professional summary targeted at this role")
	}

	if len(recommendations) > maxRecommendations {
		recommendations = recommendations[:maxRecommendations]
	}
	return recommendations
}

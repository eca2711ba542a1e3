// Package compare diffs an original and a tailored resume snapshot into a
// structured before/after report. Comparison is a pure function: it either
// fully succeeds or fails, never returning a partial diff.
package compare

import (
	"math"
	"strings"

	"cvforge/internal/errors"
	"cvforge/internal/types"
)

const (
	maxReportedKeywords = 20
	maxReportedSkills   = 10
	summaryExcerptLen   = 150
)

// Input bundles everything a comparison needs. BeforeQuality and
// AfterQuality come from the evaluation metrics of each snapshot.
type Input struct {
	Before         *types.ResumeSnapshot
	After          *types.ResumeSnapshot
	BeforeAnalysis *types.ATSAnalysis
	AfterAnalysis  *types.ATSAnalysis
	BeforeQuality  float64
	AfterQuality   float64
	Customizations []string
}

// Compare produces the before/after report. Both analyses must come from
// the same job context; a mismatch is an InvalidComparisonInput error.
func Compare(in Input) (*types.ComparisonResult, error) {
	if in.Before == nil || in.After == nil || in.BeforeAnalysis == nil || in.AfterAnalysis == nil {
		return nil, errors.NewInvalidComparisonInputError(
			"comparison requires both snapshots and both analyses", nil)
	}
	if in.BeforeAnalysis.JobTitle != in.AfterAnalysis.JobTitle {
		return nil, errors.NewInvalidComparisonInputError(
			"before and after analyses reference different jobs", nil).
			WithContext("before_job", in.BeforeAnalysis.JobTitle).
			WithContext("after_job", in.AfterAnalysis.JobTitle)
	}

	added := subtractSkills(in.After.Skills, in.Before.Skills)
	removed := subtractSkills(in.Before.Skills, in.After.Skills)

	customizations := in.Customizations
	if customizations == nil {
		customizations = []string{}
	}

	result := &types.ComparisonResult{
		Before: snapshotStats(in.Before, in.BeforeAnalysis, in.BeforeQuality),
		After:  snapshotStats(in.After, in.AfterAnalysis, in.AfterQuality),
		Changes: types.ComparisonChanges{
			SummaryChanged:     strings.TrimSpace(in.Before.Summary) != strings.TrimSpace(in.After.Summary),
			SkillsAdded:        truncate(added, maxReportedSkills),
			SkillsRemoved:      truncate(removed, maxReportedSkills),
			SkillsKeptCount:    len(in.Before.Skills) - len(removed),
			NewKeywordsMatched: truncate(newKeywords(in.BeforeAnalysis, in.AfterAnalysis), maxReportedSkills),
			Improvement:        improvement(in.BeforeAnalysis, in.AfterAnalysis),
		},
		Customizations: customizations,
	}

	return result, nil
}

func snapshotStats(snapshot *types.ResumeSnapshot, analysis *types.ATSAnalysis, quality float64) types.SnapshotStats {
	bullets := 0
	for _, exp := range snapshot.Experience {
		bullets += len(exp.Responsibilities)
	}

	return types.SnapshotStats{
		Summary:           excerpt(snapshot.Summary),
		SkillsCount:       len(snapshot.Skills),
		ExperienceBullets: bullets,
		KeywordMatches:    len(analysis.MatchedKeywords),
		KeywordMatchScore: analysis.KeywordMatchScore,
		OverallScore:      analysis.OverallScore,
		OverallQuality:    quality,
		MatchedKeywords:   truncate(analysis.MatchedKeywords, maxReportedKeywords),
	}
}

// subtractSkills returns the entries of a that are absent from b,
// case-insensitively, preserving a's casing and relative order.
func subtractSkills(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, s := range b {
		inB[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}

	out := []string{}
	seen := make(map[string]struct{})
	for _, s := range a {
		key := strings.ToLower(strings.TrimSpace(s))
		if _, ok := inB[key]; ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// newKeywords lists the after-matched keywords the before analysis missed,
// in the job keyword-index order the analyses already carry.
func newKeywords(before, after *types.ATSAnalysis) []string {
	wasMatched := make(map[string]struct{}, len(before.MatchedKeywords))
	for _, kw := range before.MatchedKeywords {
		wasMatched[strings.ToLower(kw)] = struct{}{}
	}

	out := []string{}
	for _, kw := range after.MatchedKeywords {
		if _, ok := wasMatched[strings.ToLower(kw)]; !ok {
			out = append(out, kw)
		}
	}
	return out
}

// improvement computes signed deltas. PercentageImprovement is the score
// increase times 100 rounded to one decimal and never clamped, so a
// regression surfaces as a negative number.
func improvement(before, after *types.ATSAnalysis) types.Improvement {
	scoreIncrease := after.KeywordMatchScore - before.KeywordMatchScore
	return types.Improvement{
		KeywordScoreIncrease:  scoreIncrease,
		KeywordCountIncrease:  len(after.MatchedKeywords) - len(before.MatchedKeywords),
		PercentageImprovement: math.Round(scoreIncrease*1000) / 10,
	}
}

// excerpt cuts on a rune boundary so a multi-byte summary never yields an
// invalid UTF-8 fragment.
func excerpt(s string) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= summaryExcerptLen {
		return string(runes)
	}
	return string(runes[:summaryExcerptLen]) + "..."
}

func truncate(list []string, n int) []string {
	if list == nil {
		return []string{}
	}
	if len(list) > n {
		return list[:n]
	}
	return list
}

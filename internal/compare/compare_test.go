package compare

import (
	"math"
	"slices"
	"strings"
	"testing"
	"unicode/utf8"

	"cvforge/internal/ats"
	"cvforge/internal/errors"
	"cvforge/internal/types"
)

func snapshotWithSkills(skills ...string) *types.ResumeSnapshot {
	return &types.ResumeSnapshot{
		Summary:    "Engineer",
		Skills:     skills,
		Experience: []types.Experience{{Position: "Engineer", Responsibilities: []string{"built things"}}},
		Education:  []types.Education{{Degree: "BSc"}},
	}
}

func TestCompareScenario(t *testing.T) {
	// Job keywords {Docker, Kubernetes, AWS}; before matches none, after
	// matches Docker and Kubernetes through added skills.
	job := &types.JobRequirements{JobTitle: "Platform Engineer", Keywords: []string{"Docker", "Kubernetes", "AWS"}}
	before := snapshotWithSkills("Python")
	after := snapshotWithSkills("Python", "Docker", "Kubernetes")

	scorer := ats.NewScorer(ats.DefaultWeights)
	beforeAnalysis := scorer.Score(before, job)
	afterAnalysis := scorer.Score(after, job)

	result, err := Compare(Input{
		Before:         before,
		After:          after,
		BeforeAnalysis: beforeAnalysis,
		AfterAnalysis:  afterAnalysis,
		Customizations: []string{"Reordered skills to front-load job matches"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Before.KeywordMatchScore != 0.0 {
		t.Errorf("before score = %v, want 0.0", result.Before.KeywordMatchScore)
	}
	if math.Abs(result.After.KeywordMatchScore-2.0/3.0) > 1e-9 {
		t.Errorf("after score = %v, want 0.667", result.After.KeywordMatchScore)
	}
	if !slices.Equal(result.Changes.SkillsAdded, []string{"Docker", "Kubernetes"}) {
		t.Errorf("SkillsAdded = %v", result.Changes.SkillsAdded)
	}
	if !slices.Equal(result.Changes.NewKeywordsMatched, []string{"Docker", "Kubernetes"}) {
		t.Errorf("NewKeywordsMatched = %v", result.Changes.NewKeywordsMatched)
	}
	if result.Changes.Improvement.PercentageImprovement != 66.7 {
		t.Errorf("PercentageImprovement = %v, want 66.7", result.Changes.Improvement.PercentageImprovement)
	}
	if result.Changes.Improvement.KeywordCountIncrease != 2 {
		t.Errorf("KeywordCountIncrease = %v, want 2", result.Changes.Improvement.KeywordCountIncrease)
	}
	if len(result.Changes.SkillsRemoved) != 0 {
		t.Errorf("SkillsRemoved = %v, want empty", result.Changes.SkillsRemoved)
	}
	if result.Changes.SkillsKeptCount != 1 {
		t.Errorf("SkillsKeptCount = %v, want 1", result.Changes.SkillsKeptCount)
	}
}

// Comparing a snapshot against itself must yield zero deltas
func TestCompareIdempotence(t *testing.T) {
	job := &types.JobRequirements{JobTitle: "Engineer", Keywords: []string{"Docker", "AWS"}}
	snapshot := snapshotWithSkills("Docker")
	analysis := ats.NewScorer(ats.DefaultWeights).Score(snapshot, job)

	result, err := Compare(Input{
		Before:         snapshot,
		After:          snapshot,
		BeforeAnalysis: analysis,
		AfterAnalysis:  analysis,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Changes.SkillsAdded) != 0 || len(result.Changes.SkillsRemoved) != 0 {
		t.Errorf("self-comparison produced diffs: +%v -%v",
			result.Changes.SkillsAdded, result.Changes.SkillsRemoved)
	}
	if len(result.Changes.NewKeywordsMatched) != 0 {
		t.Errorf("NewKeywordsMatched = %v, want empty", result.Changes.NewKeywordsMatched)
	}
	if result.Changes.Improvement != (types.Improvement{}) {
		t.Errorf("Improvement = %+v, want zero", result.Changes.Improvement)
	}
	if result.Changes.SummaryChanged {
		t.Error("SummaryChanged = true for identical snapshots")
	}
	if len(result.Customizations) != 0 {
		t.Errorf("Customizations = %v, want empty", result.Customizations)
	}
}

// A regression must surface as a negative percentage, never be clamped
func TestCompareRegressionNotClamped(t *testing.T) {
	job := &types.JobRequirements{JobTitle: "Engineer", Keywords: []string{"Docker", "AWS"}}
	before := snapshotWithSkills("Docker", "AWS")
	after := snapshotWithSkills("Docker")

	scorer := ats.NewScorer(ats.DefaultWeights)
	result, err := Compare(Input{
		Before:         before,
		After:          after,
		BeforeAnalysis: scorer.Score(before, job),
		AfterAnalysis:  scorer.Score(after, job),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Changes.Improvement.PercentageImprovement != -50.0 {
		t.Errorf("PercentageImprovement = %v, want -50.0", result.Changes.Improvement.PercentageImprovement)
	}
	if !slices.Equal(result.Changes.SkillsRemoved, []string{"AWS"}) {
		t.Errorf("SkillsRemoved = %v", result.Changes.SkillsRemoved)
	}
}

func TestCompareMismatchedJobContext(t *testing.T) {
	snapshot := snapshotWithSkills("Docker")
	_, err := Compare(Input{
		Before:         snapshot,
		After:          snapshot,
		BeforeAnalysis: &types.ATSAnalysis{JobTitle: "Platform Engineer"},
		AfterAnalysis:  &types.ATSAnalysis{JobTitle: "Data Engineer"},
	})

	if err == nil {
		t.Fatal("expected error for mismatched job context")
	}
	if !errors.HasCode(err, errors.ErrCodeInvalidComparison) {
		t.Errorf("expected invalid comparison error, got %v", err)
	}
}

func TestCompareMissingInputs(t *testing.T) {
	tests := []struct {
		name  string
		input Input
	}{
		{name: "nil before snapshot", input: Input{After: snapshotWithSkills(), BeforeAnalysis: &types.ATSAnalysis{}, AfterAnalysis: &types.ATSAnalysis{}}},
		{name: "nil after analysis", input: Input{Before: snapshotWithSkills(), After: snapshotWithSkills(), BeforeAnalysis: &types.ATSAnalysis{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compare(tt.input); !errors.HasCode(err, errors.ErrCodeInvalidComparison) {
				t.Errorf("expected invalid comparison error, got %v", err)
			}
		})
	}
}

func TestSubtractSkills(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []string
		expected []string
	}{
		{
			name:     "case insensitive difference keeps casing",
			a:        []string{"Docker", "AWS", "Python"},
			b:        []string{"docker", "python"},
			expected: []string{"AWS"},
		},
		{
			name:     "duplicates collapse",
			a:        []string{"Go", "go", "Rust"},
			b:        []string{},
			expected: []string{"Go", "Rust"},
		},
		{
			name:     "empty minuend",
			a:        nil,
			b:        []string{"Docker"},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := subtractSkills(tt.a, tt.b); !slices.Equal(got, tt.expected) {
				t.Errorf("subtractSkills(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestExcerptCutsOnRuneBoundary(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "accented latin", input: strings.Repeat("é", summaryExcerptLen+40)},
		{name: "cjk", input: strings.Repeat("工程師", summaryExcerptLen)},
		{name: "mixed with trailing multibyte at the cut", input: strings.Repeat("a", summaryExcerptLen-1) + "日本語テキスト"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := excerpt(tt.input)
			if !utf8.ValidString(got) {
				t.Errorf("excerpt produced invalid UTF-8: %q", got)
			}
			if want := string([]rune(tt.input)[:summaryExcerptLen]) + "..."; got != want {
				t.Errorf("excerpt = %q, want %q", got, want)
			}
		})
	}

	if got := excerpt("  短い  "); got != "短い" {
		t.Errorf("short summary should be returned trimmed, got %q", got)
	}
}

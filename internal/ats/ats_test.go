package ats

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"cvforge/internal/types"
)

func fullSnapshot() *types.ResumeSnapshot {
	return &types.ResumeSnapshot{
		PersonalInfo: types.PersonalInfo{Name: "Jordan Reyes"},
		Summary:      "Backend engineer focused on containerized workloads",
		Skills:       []string{"Python", "Docker"},
		Experience: []types.Experience{
			{
				Position:         "Software Engineer",
				Company:          "Acme",
				Responsibilities: []string{"Deployed services to Kubernetes"},
			},
		},
		Education: []types.Education{
			{Degree: "BSc Computer Science", Institution: "State University"},
		},
		Projects: []types.Project{
			{Name: "Pipeline", Description: "ETL pipeline on AWS", Technologies: []string{"PostgreSQL"}},
		},
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name                 string
		snapshot             *types.ResumeSnapshot
		job                  *types.JobRequirements
		expectedKeywordScore float64
		expectedCoverage     float64
	}{
		{
			name:                 "full snapshot matches all keywords",
			snapshot:             fullSnapshot(),
			job:                  &types.JobRequirements{Keywords: []string{"Docker", "Kubernetes", "AWS"}},
			expectedKeywordScore: 1.0,
			expectedCoverage:     1.0,
		},
		{
			name:                 "no keywords matched",
			snapshot:             fullSnapshot(),
			job:                  &types.JobRequirements{Keywords: []string{"Scala", "Erlang"}},
			expectedKeywordScore: 0.0,
			expectedCoverage:     1.0,
		},
		{
			name: "missing sections lower coverage",
			snapshot: &types.ResumeSnapshot{
				Skills: []string{"Docker"},
				Experience: []types.Experience{
					{Position: "Engineer", Responsibilities: []string{"Ran Docker builds"}},
				},
			},
			job:                  &types.JobRequirements{Keywords: []string{"Docker"}},
			expectedKeywordScore: 1.0,
			expectedCoverage:     0.5,
		},
		{
			name:                 "empty keyword set scores perfect by convention",
			snapshot:             fullSnapshot(),
			job:                  &types.JobRequirements{Keywords: []string{}},
			expectedKeywordScore: 1.0,
			expectedCoverage:     1.0,
		},
	}

	scorer := NewScorer(DefaultWeights)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := scorer.Score(tt.snapshot, tt.job)

			if math.Abs(analysis.KeywordMatchScore-tt.expectedKeywordScore) > 1e-9 {
				t.Errorf("KeywordMatchScore = %v, want %v", analysis.KeywordMatchScore, tt.expectedKeywordScore)
			}
			if math.Abs(analysis.SectionCoverage-tt.expectedCoverage) > 1e-9 {
				t.Errorf("SectionCoverage = %v, want %v", analysis.SectionCoverage, tt.expectedCoverage)
			}

			expectedOverall := 0.6*tt.expectedKeywordScore + 0.4*tt.expectedCoverage
			if math.Abs(analysis.OverallScore-expectedOverall) > 1e-9 {
				t.Errorf("OverallScore = %v, want %v", analysis.OverallScore, expectedOverall)
			}
		})
	}
}

// The overall score must equal the weighted combination exactly, for
// randomized snapshots.
func TestScoreOverallIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pool := []string{"Python", "Go", "Docker", "Kubernetes", "AWS", "SQL", "Redis", "React"}
	scorer := NewScorer(DefaultWeights)

	for range 50 {
		snapshot := &types.ResumeSnapshot{}
		if rng.Intn(2) == 0 {
			snapshot.Summary = "Engineer working with " + pool[rng.Intn(len(pool))]
		}
		for range rng.Intn(5) {
			snapshot.Skills = append(snapshot.Skills, pool[rng.Intn(len(pool))])
		}
		if rng.Intn(2) == 0 {
			snapshot.Experience = []types.Experience{
				{Position: "Engineer", Responsibilities: []string{"Used " + pool[rng.Intn(len(pool))]}},
			}
		}
		if rng.Intn(2) == 0 {
			snapshot.Education = []types.Education{{Degree: "BSc"}}
		}

		job := &types.JobRequirements{}
		for range rng.Intn(6) {
			job.Keywords = append(job.Keywords, pool[rng.Intn(len(pool))])
		}

		analysis := scorer.Score(snapshot, job)
		expected := 0.6*analysis.KeywordMatchScore + 0.4*analysis.SectionCoverage
		if math.Abs(analysis.OverallScore-expected) > 1e-12 {
			t.Fatalf("OverallScore = %v, want %v (keyword=%v coverage=%v)",
				analysis.OverallScore, expected, analysis.KeywordMatchScore, analysis.SectionCoverage)
		}
	}
}

// Scoring must never mutate its input snapshot
func TestScoreDoesNotMutateSnapshot(t *testing.T) {
	snapshot := fullSnapshot()
	skillsBefore := append([]string(nil), snapshot.Skills...)

	NewScorer(DefaultWeights).Score(snapshot, &types.JobRequirements{Keywords: []string{"Rust"}})

	if len(snapshot.Skills) != len(skillsBefore) {
		t.Fatalf("Score mutated skills: %v", snapshot.Skills)
	}
	for i, s := range skillsBefore {
		if snapshot.Skills[i] != s {
			t.Errorf("Score mutated skills[%d]: %q -> %q", i, s, snapshot.Skills[i])
		}
	}
}

func TestSuggestions(t *testing.T) {
	scorer := NewScorer(DefaultWeights)

	t.Run("missing keywords produce a batch suggestion", func(t *testing.T) {
		analysis := scorer.Score(fullSnapshot(), &types.JobRequirements{
			Keywords: []string{"Terraform", "Ansible"},
		})
		found := false
		for _, s := range analysis.Suggestions {
			if strings.Contains(s, "Terraform") && strings.Contains(s, "Ansible") {
				found = true
			}
		}
		if !found {
			t.Errorf("expected missing-keyword suggestion, got %v", analysis.Suggestions)
		}
	})

	t.Run("missing summary suggestion", func(t *testing.T) {
		snapshot := fullSnapshot()
		snapshot.Summary = ""
		analysis := scorer.Score(snapshot, &types.JobRequirements{})
		found := false
		for _, s := range analysis.Suggestions {
			if strings.Contains(s, "summary") {
				found = true
			}
		}
		if !found {
			t.Errorf("expected summary suggestion, got %v", analysis.Suggestions)
		}
	})

	t.Run("fully covered resume with matched keywords gets only the skills hint", func(t *testing.T) {
		analysis := scorer.Score(fullSnapshot(), &types.JobRequirements{Keywords: []string{"Docker"}})
		for _, s := range analysis.Suggestions {
			if strings.Contains(s, "missing keywords") {
				t.Errorf("unexpected missing-keyword suggestion: %q", s)
			}
		}
	})
}

func TestNewScorerDefaults(t *testing.T) {
	scorer := NewScorer(Weights{})
	if scorer.weights != DefaultWeights {
		t.Errorf("zero weights should fall back to defaults, got %+v", scorer.weights)
	}
}

func BenchmarkScore(b *testing.B) {
	snapshot := fullSnapshot()
	job := &types.JobRequirements{
		Keywords: []string{"Python", "Docker", "Kubernetes", "AWS", "Terraform", "SQL"},
	}
	scorer := NewScorer(DefaultWeights)

	for b.Loop() {
		scorer.Score(snapshot, job)
	}
}

package keyword

import (
	"errors"
	"math"
	"slices"
	"strings"
	"testing"

	"cvforge/internal/types"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercases and trims",
			input:    "  Senior Engineer  ",
			expected: "senior engineer",
		},
		{
			name:     "strips punctuation",
			input:    "Node.js, React & Vue!",
			expected: "node js react vue",
		},
		{
			name:     "collapses whitespace",
			input:    "machine\t\tlearning\n\nengineer",
			expected: "machine learning engineer",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "punctuation only",
			input:    "---***---",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name            string
		text            string
		keywords        []string
		expectedMatched []string
		expectedMissing []string
		expectedScore   float64
	}{
		{
			name:            "all keywords present",
			text:            "Experienced with Docker, Kubernetes and AWS deployments",
			keywords:        []string{"Docker", "Kubernetes", "AWS"},
			expectedMatched: []string{"Docker", "Kubernetes", "AWS"},
			expectedMissing: []string{},
			expectedScore:   1.0,
		},
		{
			name:            "no keywords present",
			text:            "Python developer with Django background",
			keywords:        []string{"Docker", "Kubernetes", "AWS"},
			expectedMatched: []string{},
			expectedMissing: []string{"Docker", "Kubernetes", "AWS"},
			expectedScore:   0.0,
		},
		{
			name:            "partial match keeps keyword order",
			text:            "Shipped AWS workloads and Docker images",
			keywords:        []string{"Docker", "Kubernetes", "AWS"},
			expectedMatched: []string{"Docker", "AWS"},
			expectedMissing: []string{"Kubernetes"},
			expectedScore:   2.0 / 3.0,
		},
		{
			name:            "empty keyword set is vacuously matched",
			text:            "anything at all",
			keywords:        []string{},
			expectedMatched: []string{},
			expectedMissing: []string{},
			expectedScore:   1.0,
		},
		{
			name:            "case insensitive matching",
			text:            "worked with KUBERNETES clusters",
			keywords:        []string{"Kubernetes"},
			expectedMatched: []string{"Kubernetes"},
			expectedMissing: []string{},
			expectedScore:   1.0,
		},
		{
			name:            "multi-word keyword",
			text:            "applied machine learning to fraud detection",
			keywords:        []string{"Machine Learning", "Deep Learning"},
			expectedMatched: []string{"Machine Learning"},
			expectedMissing: []string{"Deep Learning"},
			expectedScore:   0.5,
		},
		{
			name:            "substring false positive is accepted behavior",
			text:            "maintain legacy services",
			keywords:        []string{"AI"},
			expectedMatched: []string{"AI"},
			expectedMissing: []string{},
			expectedScore:   1.0,
		},
		{
			name:            "punctuated keyword matches punctuated text",
			text:            "built pipelines with CI/CD and Node.js",
			keywords:        []string{"CI/CD", "Node.js"},
			expectedMatched: []string{"CI/CD", "Node.js"},
			expectedMissing: []string{},
			expectedScore:   1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Match(tt.text, tt.keywords)

			if !slices.Equal(result.Matched, tt.expectedMatched) {
				t.Errorf("Matched = %v, want %v", result.Matched, tt.expectedMatched)
			}
			if !slices.Equal(result.Missing, tt.expectedMissing) {
				t.Errorf("Missing = %v, want %v", result.Missing, tt.expectedMissing)
			}
			if math.Abs(result.Score-tt.expectedScore) > 1e-9 {
				t.Errorf("Score = %v, want %v", result.Score, tt.expectedScore)
			}
		})
	}
}

// Matched and missing must partition the keyword set, and the score must
// stay inside [0,1], for arbitrary inputs.
func TestMatchPartitionsKeywordSet(t *testing.T) {
	texts := []string{
		"",
		"Python developer",
		"Docker Kubernetes AWS Python SQL",
		strings.Repeat("filler text ", 100),
	}
	keywordSets := [][]string{
		{},
		{"Python"},
		{"Docker", "Kubernetes", "AWS"},
		{"Go", "Rust", "C++", "GraphQL", "Terraform", "Ansible"},
	}

	for _, text := range texts {
		for _, keywords := range keywordSets {
			result := Match(text, keywords)

			if result.Score < 0 || result.Score > 1 {
				t.Errorf("Score %v out of [0,1] for keywords %v", result.Score, keywords)
			}
			if len(result.Matched)+len(result.Missing) != len(keywords) {
				t.Errorf("matched ∪ missing has %d entries, keyword set has %d",
					len(result.Matched)+len(result.Missing), len(keywords))
			}
			for _, kw := range result.Matched {
				if slices.Contains(result.Missing, kw) {
					t.Errorf("keyword %q appears in both matched and missing", kw)
				}
			}
		}
	}
}

// Adding a missing keyword to the text must never decrease the score.
func TestMatchMonotonicity(t *testing.T) {
	keywords := []string{"Docker", "Kubernetes", "AWS", "Terraform"}
	text := "Python developer with SQL background"

	before := Match(text, keywords)
	for _, missing := range before.Missing {
		after := Match(text+" "+missing, keywords)
		if after.Score < before.Score {
			t.Errorf("adding %q decreased score from %v to %v", missing, before.Score, after.Score)
		}
	}
}

func TestDedupe(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "case insensitive duplicates keep first casing",
			input:    []string{"Docker", "docker", "DOCKER", "AWS"},
			expected: []string{"Docker", "AWS"},
		},
		{
			name:     "blank entries dropped",
			input:    []string{"", "  ", "Python", "---"},
			expected: []string{"Python"},
		},
		{
			name:     "order preserved",
			input:    []string{"Kubernetes", "AWS", "Docker", "aws"},
			expected: []string{"Kubernetes", "AWS", "Docker"},
		},
		{
			name:     "nil input",
			input:    nil,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Dedupe(tt.input)
			if !slices.Equal(got, tt.expected) {
				t.Errorf("Dedupe(%v) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestBuildIndex(t *testing.T) {
	jobText := `Senior Backend Engineer

We need someone with Python and Docker experience, ideally on AWS.
Familiarity with PostgreSQL and CI/CD pipelines is a plus. You will own
our ETL workflows end to end.`

	index := BuildIndex(jobText)

	for _, want := range []string{"Python", "Docker", "AWS", "PostgreSQL", "CI/CD", "ETL"} {
		found := false
		for _, kw := range index {
			if Normalize(kw) == Normalize(want) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("BuildIndex missing %q, got %v", want, index)
		}
	}

	// Index must be deduplicated
	seen := map[string]bool{}
	for _, kw := range index {
		key := Normalize(kw)
		if seen[key] {
			t.Errorf("duplicate index entry %q", kw)
		}
		seen[key] = true
	}
}

func TestParseJobText(t *testing.T) {
	jobText := `Job Title: Platform Engineer

We are scaling our infrastructure team. 5+ years of experience required.

Requirements:
- Kubernetes
- Go
- Terraform

Nice to have:
- Rust
- GraphQL
`

	job := ParseJobText(jobText)

	if job.JobTitle != "Platform Engineer" {
		t.Errorf("JobTitle = %q, want %q", job.JobTitle, "Platform Engineer")
	}
	if !slices.Equal(job.RequiredSkills, []string{"Kubernetes", "Go", "Terraform"}) {
		t.Errorf("RequiredSkills = %v", job.RequiredSkills)
	}
	if !slices.Equal(job.PreferredSkills, []string{"Rust", "GraphQL"}) {
		t.Errorf("PreferredSkills = %v", job.PreferredSkills)
	}
	if !strings.Contains(job.ExperienceRequired, "5") {
		t.Errorf("ExperienceRequired = %q", job.ExperienceRequired)
	}

	// Keywords start with required then preferred, then inferred terms
	if len(job.Keywords) < len(job.RequiredSkills)+len(job.PreferredSkills) {
		t.Errorf("Keywords %v shorter than skills union", job.Keywords)
	}
	for i, kw := range job.RequiredSkills {
		if job.Keywords[i] != kw {
			t.Errorf("Keywords[%d] = %q, want required skill %q", i, job.Keywords[i], kw)
		}
	}
}

func TestParseJobTextTitleFallback(t *testing.T) {
	job := ParseJobText("Data Engineer\n\nBuild pipelines with Spark and SQL.")
	if job.JobTitle != "Data Engineer" {
		t.Errorf("JobTitle = %q, want first-line fallback", job.JobTitle)
	}
}

func TestReconcileParsed(t *testing.T) {
	jobText := `Job Title: Platform Engineer

Requirements:
- Kubernetes
- Terraform

We also run PostgreSQL and Docker in production.
`

	t.Run("merges deterministic index into a successful parse", func(t *testing.T) {
		parsed := &types.JobRequirements{
			JobTitle:       "Platform Engineer",
			RequiredSkills: []string{"Kubernetes", "Terraform"},
			Keywords:       []string{"Helm"},
		}

		job, usedFallback := ReconcileParsed(parsed, nil, jobText)
		if usedFallback {
			t.Fatal("successful parse must not report fallback")
		}
		if job.JobTitle != "Platform Engineer" {
			t.Errorf("JobTitle = %q, parse result must survive the merge", job.JobTitle)
		}
		for i, kw := range job.RequiredSkills {
			if job.Keywords[i] != kw {
				t.Errorf("Keywords[%d] = %q, want required skill %q first", i, job.Keywords[i], kw)
			}
		}
		for _, want := range []string{"Helm", "PostgreSQL", "Docker"} {
			if !slices.Contains(job.Keywords, want) {
				t.Errorf("Keywords %v missing %q", job.Keywords, want)
			}
		}
	})

	t.Run("failed parse degrades to the deterministic parser", func(t *testing.T) {
		parsed := &types.JobRequirements{JobTitle: "garbage from a failed call"}

		job, usedFallback := ReconcileParsed(parsed, errors.New("model unavailable"), jobText)
		if !usedFallback {
			t.Fatal("failed parse must report fallback")
		}
		if job.JobTitle != "Platform Engineer" {
			t.Errorf("JobTitle = %q, want value from deterministic parse", job.JobTitle)
		}
		if !slices.Equal(job.RequiredSkills, []string{"Kubernetes", "Terraform"}) {
			t.Errorf("RequiredSkills = %v", job.RequiredSkills)
		}
		if len(job.Keywords) == 0 {
			t.Error("deterministic fallback produced no keyword index")
		}
	})
}

func BenchmarkMatch(b *testing.B) {
	text := strings.Repeat("Python Docker Kubernetes AWS PostgreSQL Redis ", 50)
	keywords := []string{"Python", "Docker", "Kubernetes", "AWS", "Terraform", "Machine Learning"}

	for b.Loop() {
		Match(text, keywords)
	}
}

func BenchmarkBuildIndex(b *testing.B) {
	jobText := strings.Repeat("We use Python, Docker, Kubernetes and AWS with CI/CD. ", 20)

	for b.Loop() {
		BuildIndex(jobText)
	}
}

package policy

import (
	"errors"
	"testing"

	apperrors "cvforge/internal/errors"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    Level
		expectError bool
	}{
		{name: "minimal", input: "minimal", expected: LevelMinimal},
		{name: "balanced", input: "balanced", expected: LevelBalanced},
		{name: "aggressive", input: "aggressive", expected: LevelAggressive},
		{name: "case insensitive", input: "Balanced", expected: LevelBalanced},
		{name: "surrounding whitespace", input: "  minimal  ", expected: LevelMinimal},
		{name: "unknown level", input: "turbo", expectError: true},
		{name: "empty level", input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := ParseLevel(tt.input)

			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				var appErr *apperrors.AppError
				if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrCodeConfiguration {
					t.Errorf("expected configuration error, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if level != tt.expected {
				t.Errorf("ParseLevel(%q) = %q, want %q", tt.input, level, tt.expected)
			}
		})
	}
}

func TestConstraintsFor(t *testing.T) {
	tests := []struct {
		name             string
		level            Level
		expectedFields   []Field
		allowNewSkills   bool
		allowRestructure bool
		maxSkills        int
	}{
		{
			name:           "minimal touches summary only",
			level:          LevelMinimal,
			expectedFields: []Field{FieldSummary},
			maxSkills:      30,
		},
		{
			name:           "balanced adds skills and experience",
			level:          LevelBalanced,
			expectedFields: []Field{FieldSummary, FieldSkills, FieldExperience},
			allowNewSkills: true,
			maxSkills:      30,
		},
		{
			name:             "aggressive touches everything",
			level:            LevelAggressive,
			expectedFields:   []Field{FieldSummary, FieldSkills, FieldExperience, FieldProjects},
			allowNewSkills:   true,
			allowRestructure: true,
			maxSkills:        35,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ConstraintsFor(tt.level)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(c.EligibleFields) != len(tt.expectedFields) {
				t.Fatalf("EligibleFields = %v, want %v", c.EligibleFields, tt.expectedFields)
			}
			for i, f := range tt.expectedFields {
				if c.EligibleFields[i] != f {
					t.Errorf("EligibleFields[%d] = %q, want %q", i, c.EligibleFields[i], f)
				}
			}
			if c.AllowNewSkills != tt.allowNewSkills {
				t.Errorf("AllowNewSkills = %v, want %v", c.AllowNewSkills, tt.allowNewSkills)
			}
			if c.AllowRestructure != tt.allowRestructure {
				t.Errorf("AllowRestructure = %v, want %v", c.AllowRestructure, tt.allowRestructure)
			}
			if c.MaxSkills != tt.maxSkills {
				t.Errorf("MaxSkills = %d, want %d", c.MaxSkills, tt.maxSkills)
			}
		})
	}

	t.Run("unknown level fails", func(t *testing.T) {
		if _, err := ConstraintsFor(Level("extreme")); err == nil {
			t.Error("expected error for unknown level")
		}
	})
}

func TestEligible(t *testing.T) {
	c, err := ConstraintsFor(LevelMinimal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !c.Eligible(FieldSummary) {
		t.Error("minimal should allow summary")
	}
	for _, field := range []Field{FieldSkills, FieldExperience, FieldProjects} {
		if c.Eligible(field) {
			t.Errorf("minimal should not allow %q", field)
		}
	}
}

func TestInjectionBudget(t *testing.T) {
	minimal, _ := ConstraintsFor(LevelMinimal)
	balanced, _ := ConstraintsFor(LevelBalanced)
	aggressive, _ := ConstraintsFor(LevelAggressive)

	tests := []struct {
		name        string
		constraints Constraints
		missing     int
		expected    int
	}{
		{name: "minimal caps at one", constraints: minimal, missing: 8, expected: 1},
		{name: "balanced takes half rounded up", constraints: balanced, missing: 7, expected: 4},
		{name: "balanced with one missing", constraints: balanced, missing: 1, expected: 1},
		{name: "aggressive targets all", constraints: aggressive, missing: 9, expected: 9},
		{name: "nothing missing means no budget", constraints: aggressive, missing: 0, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.constraints.InjectionBudget(tt.missing); got != tt.expected {
				t.Errorf("InjectionBudget(%d) = %d, want %d", tt.missing, got, tt.expected)
			}
		})
	}
}

func TestIsTransferable(t *testing.T) {
	tests := []struct {
		skill    string
		expected bool
	}{
		{"Agile", true},
		{"AWS", true},
		{"Python", true},
		{"Team Leadership", true},
		{"Rust", false},
		{"Kubernetes", false},
	}

	for _, tt := range tests {
		t.Run(tt.skill, func(t *testing.T) {
			if got := IsTransferable(tt.skill); got != tt.expected {
				t.Errorf("IsTransferable(%q) = %v, want %v", tt.skill, got, tt.expected)
			}
		})
	}
}

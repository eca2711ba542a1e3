// Package policy maps optimization levels to rewriting constraints. The
// policy is a pure lookup table: it holds no state and performs no
// generation itself.
package policy

import (
	"fmt"
	"strings"

	"cvforge/internal/errors"
)

// Level is an optimization aggressiveness setting
type Level string

const (
	LevelMinimal    Level = "minimal"
	LevelBalanced   Level = "balanced"
	LevelAggressive Level = "aggressive"
)

// Field identifies a rewritable resume field
type Field string

const (
	FieldSummary    Field = "summary"
	FieldSkills     Field = "skills"
	FieldExperience Field = "experience"
	FieldProjects   Field = "projects"
)

// Constraints describes what a tailoring run may change at a given level
type Constraints struct {
	EligibleFields []Field

	// MinKeywordInjections caps how many missing keywords a single prose
	// rewrite should work in. Zero means all missing keywords are targeted.
	MinKeywordInjections int

	AllowRestructure bool
	AllowNewSkills   bool

	// PreferredSkillBudget is how many preferred skills may be appended on
	// top of the required ones when AllowNewSkills is set.
	PreferredSkillBudget int

	// MaxSkills caps the skill list length after additions
	MaxSkills int

	// TransferableOnly restricts skill additions to the transferable
	// vocabulary below instead of the full required set.
	TransferableOnly bool
}

// transferableSkills is the vocabulary the balanced level may add from.
// These are broadly applicable terms a candidate plausibly has even when
// the resume does not list them.
var transferableSkills = []string{
	"agile", "scrum", "git", "communication", "leadership",
	"python", "java", "sql", "aws",
}

var levelTable = map[Level]Constraints{
	LevelMinimal: {
		EligibleFields:       []Field{FieldSummary},
		MinKeywordInjections: 1,
		AllowRestructure:     false,
		AllowNewSkills:       false,
		MaxSkills:            30,
	},
	LevelBalanced: {
		EligibleFields:       []Field{FieldSummary, FieldSkills, FieldExperience},
		MinKeywordInjections: 0, // half of missing, computed per pass
		AllowRestructure:     false,
		AllowNewSkills:       true,
		TransferableOnly:     true,
		MaxSkills:            30,
	},
	LevelAggressive: {
		EligibleFields:       []Field{FieldSummary, FieldSkills, FieldExperience, FieldProjects},
		MinKeywordInjections: 0,
		AllowRestructure:     true,
		AllowNewSkills:       true,
		PreferredSkillBudget: 5,
		MaxSkills:            35,
	},
}

// ParseLevel validates a level string. Unknown levels are a configuration
// error; callers must not fall back to a default.
func ParseLevel(s string) (Level, error) {
	level := Level(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := levelTable[level]; !ok {
		return "", errors.NewConfigurationError(
			fmt.Sprintf("unknown optimization level '%s' (expected minimal, balanced or aggressive)", s), nil)
	}
	return level, nil
}

// LevelNames returns the known level names, least to most aggressive
func LevelNames() []string {
	return []string{string(LevelMinimal), string(LevelBalanced), string(LevelAggressive)}
}

// ConstraintsFor returns the constraint set for a level
func ConstraintsFor(level Level) (Constraints, error) {
	constraints, ok := levelTable[level]
	if !ok {
		return Constraints{}, errors.NewConfigurationError(
			fmt.Sprintf("unknown optimization level '%s'", level), nil)
	}
	return constraints, nil
}

// FieldsEligibleFor returns the rewritable fields for a level
func FieldsEligibleFor(level Level) ([]Field, error) {
	constraints, err := ConstraintsFor(level)
	if err != nil {
		return nil, err
	}
	return constraints.EligibleFields, nil
}

// Eligible reports whether a field may be rewritten under the constraints
func (c Constraints) Eligible(field Field) bool {
	for _, f := range c.EligibleFields {
		if f == field {
			return true
		}
	}
	return false
}

// InjectionBudget returns how many of the missing keywords a prose pass
// should target: the configured floor, half of missing for balanced-style
// levels, or all of them when restructuring is allowed.
func (c Constraints) InjectionBudget(missingCount int) int {
	if missingCount == 0 {
		return 0
	}
	if c.AllowRestructure {
		return missingCount
	}
	if c.MinKeywordInjections > 0 {
		return min(c.MinKeywordInjections, missingCount)
	}
	return max(1, (missingCount+1)/2)
}

// TransferableSkills returns a copy of the transferable vocabulary
func TransferableSkills() []string {
	return append([]string(nil), transferableSkills...)
}

// IsTransferable reports whether a skill belongs to the transferable
// vocabulary, case-insensitively.
func IsTransferable(skill string) bool {
	lower := strings.ToLower(strings.TrimSpace(skill))
	for _, t := range transferableSkills {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

package keyword

import (
	"regexp"
	"strings"

	"cvforge/internal/types"
)

var (
	titlePattern      = regexp.MustCompile(`(?im)^\s*(?:job\s+title|position|role|title)\s*[:\-]\s*(.+)$`)
	experiencePattern = regexp.MustCompile(`(?i)(\d+)\+?\s*(?:to\s*\d+\s*)?years?(?:\s+of)?\s+(?:\w+\s+){0,3}experience`)
	requiredHeading   = regexp.MustCompile(`(?i)^\s*(?:requirements?|required\s+(?:skills|qualifications)|qualifications|must\s+have)\s*:?\s*$`)
	preferredHeading  = regexp.MustCompile(`(?i)^\s*(?:preferred\s+(?:skills|qualifications)|nice\s+to\s+have|bonus(?:\s+points)?|plus(?:es)?)\s*:?\s*$`)
	bulletPrefix      = regexp.MustCompile(`^\s*[-*•·]\s*`)
)

// ParseJobText builds JobRequirements from a raw job description without
// any generation call. Section headings split required from preferred
// bullet lists; the keyword superset adds the inferred technology index.
// The AI parse, when available, is merged on top of this result.
func ParseJobText(jobText string) *types.JobRequirements {
	job := &types.JobRequirements{
		JobTitle:           extractTitle(jobText),
		ExperienceRequired: extractExperience(jobText),
	}

	required, preferred := extractSkillSections(jobText)
	job.RequiredSkills = Dedupe(required)
	job.PreferredSkills = Dedupe(preferred)
	job.Keywords = MergeIndex(job.RequiredSkills, job.PreferredSkills, BuildIndex(jobText))

	return job
}

// ReconcileParsed folds the deterministic index into an AI-parsed job. When
// the parse failed, the result is discarded and ParseJobText supplies the
// whole structure instead; the second return reports that degradation so
// callers can log it.
func ReconcileParsed(parsed *types.JobRequirements, parseErr error, jobText string) (*types.JobRequirements, bool) {
	if parseErr != nil {
		return ParseJobText(jobText), true
	}
	inferred := Dedupe(append(parsed.Keywords, BuildIndex(jobText)...))
	parsed.Keywords = MergeIndex(parsed.RequiredSkills, parsed.PreferredSkills, inferred)
	return parsed, false
}

func extractTitle(jobText string) string {
	if m := titlePattern.FindStringSubmatch(jobText); m != nil {
		return strings.TrimSpace(m[1])
	}
	// Fall back to the first non-empty line when it is short enough to be
	// a heading rather than prose.
	for line := range strings.Lines(jobText) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if len(trimmed) <= 80 && !strings.HasSuffix(trimmed, ".") {
			return trimmed
		}
		break
	}
	return ""
}

func extractExperience(jobText string) string {
	if m := experiencePattern.FindString(jobText); m != "" {
		return strings.TrimSpace(m)
	}
	return ""
}

// extractSkillSections walks the description line by line, collecting
// bullet items under requirement and preference headings. A blank line or
// a new heading ends the current section.
func extractSkillSections(jobText string) (required, preferred []string) {
	const (
		sectionNone = iota
		sectionRequired
		sectionPreferred
	)

	section := sectionNone
	for line := range strings.Lines(jobText) {
		trimmed := strings.TrimSpace(line)

		switch {
		case requiredHeading.MatchString(trimmed):
			section = sectionRequired
			continue
		case preferredHeading.MatchString(trimmed):
			section = sectionPreferred
			continue
		case trimmed == "":
			section = sectionNone
			continue
		}

		if section == sectionNone {
			continue
		}

		item := bulletPrefix.ReplaceAllString(trimmed, "")
		item = strings.TrimSpace(item)
		if item == "" || len(item) > 100 {
			// Long lines are prose, not skill items
			continue
		}

		if section == sectionRequired {
			required = append(required, item)
		} else {
			preferred = append(preferred, item)
		}
	}

	return required, preferred
}

package tailor

import (
	"context"
	"fmt"
	"strings"

	"cvforge/internal/ats"
	"cvforge/internal/errors"
	"cvforge/internal/keyword"
	"cvforge/internal/policy"
	"cvforge/internal/session"
	"cvforge/internal/types"
)

// ReviseField regenerates one prose field of the session's tailored snapshot
// with user-supplied instructions, then commits only that field. Index selects
// the experience or projects entry and is ignored for the summary. Unlike a
// full run, an explicit revision surfaces a malformed generation response as
// an error instead of silently keeping the old text.
func (o *Orchestrator) ReviseField(ctx context.Context, sess *session.Session, field policy.Field, index int, instructions string) (*types.TailorResult, error) {
	tailored, ok := sess.Tailored()
	if !ok {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"No tailored resume to revise for this session", nil)
	}
	job, ok := sess.Job()
	if !ok {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"No job description parsed for this session", nil)
	}

	working := tailored.Clone()
	content, apply, err := resolveField(working, field, index)
	if err != nil {
		return nil, err
	}

	missing := keyword.Match(ats.ResumeText(working), job.Keywords).Missing
	out, _, err := o.generator.RewriteSection(ctx, types.RewriteSectionInput{
		Section:      string(field),
		Content:      content,
		JobTitle:     job.JobTitle,
		Keywords:     missing,
		Instructions: instructions,
	})
	if err != nil {
		return nil, err
	}

	rewritten := strings.TrimSpace(out.Rewritten)
	if rewritten == "" {
		return nil, errors.NewMalformedResponseError(
			"Generation returned an empty revision", nil)
	}
	apply(rewritten)

	customizations := append(sess.Customizations(),
		fmt.Sprintf("Revised %s per user instructions", field))
	after := o.scorer.Score(working, job)

	before, _ := sess.BeforeAnalysis()
	sess.CommitTailored(working, customizations, before)

	o.logger.Info("Revised tailored resume field",
		"field", string(field),
		"index", index,
		"ats_score", after.OverallScore)

	return &types.TailorResult{
		Tailored:       working,
		Customizations: customizations,
		Analysis:       after,
	}, nil
}

// resolveField returns the current text of a prose field and a setter that
// writes the revision back. Skills are list-shaped, not prose, so they cannot
// be revised this way.
func resolveField(snapshot *types.ResumeSnapshot, field policy.Field, index int) (string, func(string), error) {
	switch field {
	case policy.FieldSummary:
		return snapshot.Summary, func(text string) { snapshot.Summary = text }, nil
	case policy.FieldExperience:
		if index < 0 || index >= len(snapshot.Experience) {
			return "", nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("Experience entry %d does not exist", index), nil)
		}
		entry := &snapshot.Experience[index]
		content := strings.Join(entry.Responsibilities, "\n")
		return content, func(text string) {
			if bullets := splitBullets(text); len(bullets) > 0 {
				entry.Responsibilities = bullets
			}
		}, nil
	case policy.FieldProjects:
		if index < 0 || index >= len(snapshot.Projects) {
			return "", nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("Project %d does not exist", index), nil)
		}
		project := &snapshot.Projects[index]
		return project.Description, func(text string) { project.Description = text }, nil
	default:
		return "", nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("Field %q cannot be revised as prose", field), nil)
	}
}

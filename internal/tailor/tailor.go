// Package tailor orchestrates a tailoring run as an explicit state machine.
// Passes run strictly in sequence and only touch prose fields; factual
// content (dates, employers, degrees) passes through unchanged. The result
// is committed to the session in one step: a run that fails part-way leaves
// the session exactly as it was.
package tailor

import (
	"context"
	"fmt"
	"strings"

	"cvforge/internal/ai"
	"cvforge/internal/ats"
	"cvforge/internal/errors"
	"cvforge/internal/keyword"
	"cvforge/internal/policy"
	"cvforge/internal/session"
	"cvforge/internal/types"
)

// Generator produces rewritten prose for one resume field. Satisfied by the
// AI provider; tests substitute a deterministic fake.
type Generator interface {
	RewriteSection(ctx context.Context, input types.RewriteSectionInput) (types.RewriteSectionOutput, *ai.TokenUsage, error)
}

// State identifies where a run is in the pass sequence
type State string

const (
	StateNotStarted     State = "not_started"
	StateSummaryPass    State = "summary_pass"
	StateSkillsPass     State = "skills_pass"
	StateExperiencePass State = "experience_pass"
	StateProjectsPass   State = "projects_pass"
	StateScored         State = "scored"
	StateDone           State = "done"
)

// Orchestrator creates and drives tailoring runs
type Orchestrator struct {
	generator Generator
	scorer    *ats.Scorer
	logger    *errors.Logger
}

// NewOrchestrator creates an orchestrator around a generator and scorer
func NewOrchestrator(generator Generator, scorer *ats.Scorer, logger *errors.Logger) *Orchestrator {
	return &Orchestrator{generator: generator, scorer: scorer, logger: logger}
}

// Run is one in-flight tailoring run. It works on a clone of the original
// snapshot; nothing escapes until the caller commits the finished result.
type Run struct {
	generator Generator
	scorer    *ats.Scorer
	logger    *errors.Logger

	constraints policy.Constraints
	job         *types.JobRequirements

	original *types.ResumeSnapshot
	working  *types.ResumeSnapshot
	before   *types.ATSAnalysis
	after    *types.ATSAnalysis

	customizations []string
	state          State
}

// NewRun validates the level and prepares a run. The before-analysis is
// captured here so the baseline reflects the untouched original.
func (o *Orchestrator) NewRun(original *types.ResumeSnapshot, job *types.JobRequirements, level policy.Level) (*Run, error) {
	constraints, err := policy.ConstraintsFor(level)
	if err != nil {
		return nil, err
	}
	return &Run{
		generator:   o.generator,
		scorer:      o.scorer,
		logger:      o.logger,
		constraints: constraints,
		job:         job,
		original:    original,
		working:     original.Clone(),
		before:      o.scorer.Score(original, job),
		state:       StateNotStarted,
	}, nil
}

// Tailor runs the full pass sequence for a session and commits the result.
// The session must hold both an original snapshot and parsed job
// requirements.
func (o *Orchestrator) Tailor(ctx context.Context, sess *session.Session, level policy.Level) (*types.TailorResult, error) {
	original, ok := sess.Original()
	if !ok {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"No resume uploaded for this session", nil)
	}
	job, ok := sess.Job()
	if !ok {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"No job description parsed for this session", nil)
	}

	run, err := o.NewRun(original, job, level)
	if err != nil {
		return nil, err
	}
	result, err := run.Finish(ctx)
	if err != nil {
		return nil, err
	}

	sess.CommitTailored(result.Tailored, result.Customizations, run.BeforeAnalysis())
	return result, nil
}

// State returns the run's current state
func (r *Run) State() State {
	return r.state
}

// BeforeAnalysis returns the baseline analysis captured at run start
func (r *Run) BeforeAnalysis() *types.ATSAnalysis {
	return r.before
}

// Step executes the pass the run is currently entering and advances the
// state. Ineligible passes advance without doing any work. On error the
// state is left unchanged and the run must not be committed.
func (r *Run) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch r.state {
	case StateNotStarted:
		r.state = StateSummaryPass
	case StateSummaryPass:
		if err := r.summaryPass(ctx); err != nil {
			return err
		}
		r.state = StateSkillsPass
	case StateSkillsPass:
		r.skillsPass()
		r.state = StateExperiencePass
	case StateExperiencePass:
		if err := r.experiencePass(ctx); err != nil {
			return err
		}
		r.state = StateProjectsPass
	case StateProjectsPass:
		if err := r.projectsPass(ctx); err != nil {
			return err
		}
		r.state = StateScored
	case StateScored:
		r.after = r.scorer.Score(r.working, r.job)
		r.state = StateDone
	case StateDone:
	}
	return nil
}

// Finish drives the run to completion and returns the result
func (r *Run) Finish(ctx context.Context) (*types.TailorResult, error) {
	for r.state != StateDone {
		if err := r.Step(ctx); err != nil {
			return nil, err
		}
	}
	return r.Result()
}

// Result returns the finished run's output. Calling it before the run has
// reached Done is a programming error.
func (r *Run) Result() (*types.TailorResult, error) {
	if r.state != StateDone {
		return nil, errors.NewInternalError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("Tailoring run has not completed (state: %s)", r.state), nil)
	}
	customizations := r.customizations
	if customizations == nil {
		customizations = []string{}
	}
	return &types.TailorResult{
		Tailored:       r.working,
		Customizations: customizations,
		Analysis:       r.after,
	}, nil
}

// targets recomputes the missing keywords from the current working snapshot
// and trims them to the level's injection budget. Recomputing per pass means
// later passes only chase what earlier passes did not cover.
func (r *Run) targets() []string {
	match := keyword.Match(ats.ResumeText(r.working), r.job.Keywords)
	budget := r.constraints.InjectionBudget(len(match.Missing))
	return match.Missing[:budget]
}

func (r *Run) record(customization string) {
	r.customizations = append(r.customizations, customization)
}

// rewriteField asks the generator for one prose field. A malformed response
// skips the field: the original text stays, no customization is recorded.
// Any other generation error aborts the run.
func (r *Run) rewriteField(ctx context.Context, section, content string, targets []string) (string, bool, error) {
	out, _, err := r.generator.RewriteSection(ctx, types.RewriteSectionInput{
		Section:  section,
		Content:  content,
		JobTitle: r.job.JobTitle,
		Keywords: targets,
	})
	if err != nil {
		if errors.IsMalformedResponse(err) {
			r.logger.Warn("Keeping original text after malformed generation response",
				"section", section)
			return content, false, nil
		}
		return "", false, err
	}

	rewritten := strings.TrimSpace(out.Rewritten)
	if rewritten == "" || rewritten == strings.TrimSpace(content) {
		return content, false, nil
	}
	return rewritten, true, nil
}

func (r *Run) summaryPass(ctx context.Context) error {
	if !r.constraints.Eligible(policy.FieldSummary) {
		return nil
	}
	targets := r.targets()
	if len(targets) == 0 {
		return nil
	}

	rewritten, changed, err := r.rewriteField(ctx, "summary", r.working.Summary, targets)
	if err != nil {
		return err
	}
	if changed {
		r.working.Summary = rewritten
		r.record(fmt.Sprintf("Rewrote summary targeting %d missing keyword(s)", len(targets)))
	}
	return nil
}

// skillsPass is fully deterministic: job-matching skills move to the front
// of the list, then level-scoped additions fill up to the skill cap. No
// generation is involved.
func (r *Run) skillsPass() {
	if !r.constraints.Eligible(policy.FieldSkills) {
		return
	}

	reordered, moved := reorderMatchingFirst(r.working.Skills, r.job.Keywords)
	r.working.Skills = reordered
	if moved {
		r.record("Reordered skills to list job-matching skills first")
	}

	if !r.constraints.AllowNewSkills {
		return
	}
	if added := r.addSkills(); len(added) > 0 {
		r.record(fmt.Sprintf("Added %d skill(s): %s", len(added), strings.Join(added, ", ")))
	}
}

func (r *Run) experiencePass(ctx context.Context) error {
	if !r.constraints.Eligible(policy.FieldExperience) {
		return nil
	}
	targets := r.targets()
	if len(targets) == 0 {
		return nil
	}

	rewrittenEntries := 0
	for i := range r.working.Experience {
		entry := &r.working.Experience[i]
		if len(entry.Responsibilities) == 0 {
			continue
		}

		content := strings.Join(entry.Responsibilities, "\n")
		rewritten, changed, err := r.rewriteField(ctx, "experience", content, targets)
		if err != nil {
			return err
		}
		if !changed {
			continue
		}
		bullets := splitBullets(rewritten)
		if len(bullets) == 0 {
			continue
		}
		entry.Responsibilities = bullets
		rewrittenEntries++
	}

	if rewrittenEntries > 0 {
		noun := "entries"
		if rewrittenEntries == 1 {
			noun = "entry"
		}
		r.record(fmt.Sprintf("Rewrote responsibilities for %d experience %s", rewrittenEntries, noun))
	}
	return nil
}

func (r *Run) projectsPass(ctx context.Context) error {
	if !r.constraints.Eligible(policy.FieldProjects) {
		return nil
	}
	targets := r.targets()
	if len(targets) == 0 {
		return nil
	}

	rewrittenProjects := 0
	for i := range r.working.Projects {
		project := &r.working.Projects[i]
		if strings.TrimSpace(project.Description) == "" {
			continue
		}

		rewritten, changed, err := r.rewriteField(ctx, "projects", project.Description, targets)
		if err != nil {
			return err
		}
		if changed {
			project.Description = rewritten
			rewrittenProjects++
		}
	}

	if rewrittenProjects > 0 {
		r.record(fmt.Sprintf("Rewrote %d project description(s)", rewrittenProjects))
	}
	return nil
}

// reorderMatchingFirst partitions skills into job-matching and the rest,
// preserving relative order within each group.
func reorderMatchingFirst(skills, keywords []string) ([]string, bool) {
	matching := make([]string, 0, len(skills))
	rest := make([]string, 0, len(skills))
	for _, skill := range skills {
		if len(keyword.Match(skill, keywords).Matched) > 0 {
			matching = append(matching, skill)
		} else {
			rest = append(rest, skill)
		}
	}

	out := append(matching, rest...)
	for i := range skills {
		if out[i] != skills[i] {
			return out, true
		}
	}
	return out, false
}

// addSkills appends job skills the snapshot does not already cover, within
// the level's vocabulary restriction and skill cap. Candidates come from the
// required skills plus a budgeted slice of the preferred ones.
func (r *Run) addSkills() []string {
	candidates := append([]string(nil), r.job.RequiredSkills...)
	if r.constraints.PreferredSkillBudget > 0 {
		budget := min(r.constraints.PreferredSkillBudget, len(r.job.PreferredSkills))
		candidates = append(candidates, r.job.PreferredSkills[:budget]...)
	}

	var added []string
	for _, candidate := range keyword.Dedupe(candidates) {
		if len(r.working.Skills) >= r.constraints.MaxSkills {
			break
		}
		if r.constraints.TransferableOnly && !policy.IsTransferable(candidate) {
			continue
		}
		if hasSkill(r.working.Skills, candidate) {
			continue
		}
		r.working.Skills = append(r.working.Skills, candidate)
		added = append(added, candidate)
	}
	return added
}

// hasSkill reports whether the candidate is already covered by an existing
// skill, by normalized containment so "Python 3" covers "Python".
func hasSkill(skills []string, candidate string) bool {
	needle := keyword.Normalize(candidate)
	if needle == "" {
		return true
	}
	for _, skill := range skills {
		if strings.Contains(keyword.Normalize(skill), needle) {
			return true
		}
	}
	return false
}

// splitBullets turns rewritten multi-line prose back into responsibility
// bullets, stripping any bullet markers the generator emitted.
func splitBullets(text string) []string {
	var bullets []string
	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimLeft(line, "-•*"))
		if line != "" {
			bullets = append(bullets, line)
		}
	}
	return bullets
}

package tailor

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"cvforge/internal/ai"
	"cvforge/internal/ats"
	"cvforge/internal/errors"
	"cvforge/internal/policy"
	"cvforge/internal/session"
	"cvforge/internal/types"
)

// fakeGenerator appends the requested keywords to the content by default,
// so rewritten fields deterministically gain coverage. A custom rewrite
// function overrides that per test.
type fakeGenerator struct {
	calls   []types.RewriteSectionInput
	rewrite func(input types.RewriteSectionInput) (types.RewriteSectionOutput, error)
}

func (f *fakeGenerator) RewriteSection(_ context.Context, input types.RewriteSectionInput) (types.RewriteSectionOutput, *ai.TokenUsage, error) {
	f.calls = append(f.calls, input)
	if f.rewrite != nil {
		out, err := f.rewrite(input)
		return out, nil, err
	}
	return types.RewriteSectionOutput{
		Rewritten: input.Content + " " + strings.Join(input.Keywords, " "),
	}, nil, nil
}

func testOrchestrator(gen Generator) *Orchestrator {
	return NewOrchestrator(gen, ats.NewScorer(ats.DefaultWeights), errors.NewLogger(slog.LevelError))
}

func testSnapshot() *types.ResumeSnapshot {
	return &types.ResumeSnapshot{
		PersonalInfo: types.PersonalInfo{Name: "Dana Reyes"},
		Summary:      "Backend developer with five years of experience.",
		Skills:       []string{"Ruby", "Python", "PostgreSQL"},
		Experience: []types.Experience{
			{
				Position: "Backend Developer",
				Company:  "Acme",
				Responsibilities: []string{
					"Built internal billing services",
					"Maintained the deployment pipeline",
				},
			},
		},
		Education: []types.Education{{Degree: "BSc", Institution: "State University"}},
	}
}

func testJob() *types.JobRequirements {
	return &types.JobRequirements{
		JobTitle:       "Platform Engineer",
		RequiredSkills: []string{"Python", "Docker", "Kubernetes"},
		Keywords:       []string{"Python", "Docker", "Kubernetes", "PostgreSQL"},
	}
}

func TestTailorBalancedCommitsResult(t *testing.T) {
	gen := &fakeGenerator{}
	o := testOrchestrator(gen)

	sess := session.NewStore().Create()
	sess.SetOriginal(testSnapshot())
	sess.SetJob(testJob())

	result, err := o.Tailor(context.Background(), sess, policy.LevelBalanced)
	if err != nil {
		t.Fatalf("Tailor failed: %v", err)
	}

	if result.Analysis == nil {
		t.Fatal("result must carry the after-analysis")
	}
	if len(result.Customizations) == 0 {
		t.Error("a run that changed the resume must record customizations")
	}

	tailored, ok := sess.Tailored()
	if !ok {
		t.Fatal("tailored snapshot must be committed to the session")
	}
	if tailored != result.Tailored {
		t.Error("session must hold the run's tailored snapshot")
	}
	before, ok := sess.BeforeAnalysis()
	if !ok {
		t.Fatal("before-analysis must be committed alongside the tailored snapshot")
	}
	if result.Analysis.OverallScore < before.OverallScore {
		t.Errorf("after score %.3f dropped below before score %.3f",
			result.Analysis.OverallScore, before.OverallScore)
	}

	original, _ := sess.Original()
	if len(original.Skills) != 3 {
		t.Errorf("original snapshot was mutated: skills = %v", original.Skills)
	}
}

func TestTailorNoMissingKeywordsSkipsGeneration(t *testing.T) {
	gen := &fakeGenerator{}
	o := testOrchestrator(gen)

	snapshot := testSnapshot()
	snapshot.Skills = []string{"Python", "Docker", "Kubernetes", "PostgreSQL"}

	sess := session.NewStore().Create()
	sess.SetOriginal(snapshot)
	sess.SetJob(testJob())

	if _, err := o.Tailor(context.Background(), sess, policy.LevelMinimal); err != nil {
		t.Fatalf("Tailor failed: %v", err)
	}
	if len(gen.calls) != 0 {
		t.Errorf("fully matched resume triggered %d generation calls", len(gen.calls))
	}

	tailored, _ := sess.Tailored()
	if tailored.Summary != snapshot.Summary {
		t.Error("summary must be unchanged when nothing is missing")
	}
}

func TestGenerationUnavailableLeavesSessionUntouched(t *testing.T) {
	gen := &fakeGenerator{
		rewrite: func(types.RewriteSectionInput) (types.RewriteSectionOutput, error) {
			return types.RewriteSectionOutput{}, errors.NewGenerationUnavailableError("provider down", nil)
		},
	}
	o := testOrchestrator(gen)

	sess := session.NewStore().Create()
	sess.SetOriginal(testSnapshot())
	sess.SetJob(testJob())

	_, err := o.Tailor(context.Background(), sess, policy.LevelBalanced)
	if !errors.IsGenerationUnavailable(err) {
		t.Fatalf("expected generation-unavailable error, got %v", err)
	}
	if _, ok := sess.Tailored(); ok {
		t.Error("aborted run must not commit a tailored snapshot")
	}
	if _, ok := sess.BeforeAnalysis(); ok {
		t.Error("aborted run must not commit a before-analysis")
	}
}

func TestMalformedResponseSkipsFieldOnly(t *testing.T) {
	gen := &fakeGenerator{
		rewrite: func(input types.RewriteSectionInput) (types.RewriteSectionOutput, error) {
			if input.Section == "summary" {
				return types.RewriteSectionOutput{}, errors.NewMalformedResponseError("bad json", nil)
			}
			return types.RewriteSectionOutput{
				Rewritten: input.Content + "\nAdopted " + strings.Join(input.Keywords, " and "),
			}, nil
		},
	}
	o := testOrchestrator(gen)

	snapshot := testSnapshot()
	sess := session.NewStore().Create()
	sess.SetOriginal(snapshot)
	sess.SetJob(testJob())

	result, err := o.Tailor(context.Background(), sess, policy.LevelBalanced)
	if err != nil {
		t.Fatalf("Tailor failed: %v", err)
	}

	if result.Tailored.Summary != snapshot.Summary {
		t.Error("malformed summary response must leave the summary unchanged")
	}
	if len(result.Tailored.Experience[0].Responsibilities) <= 2 {
		t.Error("experience pass should still rewrite after the summary was skipped")
	}
	for _, c := range result.Customizations {
		if strings.Contains(c, "summary") {
			t.Errorf("skipped field must not record a customization: %q", c)
		}
	}
}

func TestContextCancellationAborts(t *testing.T) {
	gen := &fakeGenerator{}
	o := testOrchestrator(gen)

	sess := session.NewStore().Create()
	sess.SetOriginal(testSnapshot())
	sess.SetJob(testJob())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := o.Tailor(ctx, sess, policy.LevelAggressive); err == nil {
		t.Fatal("canceled context must abort the run")
	}
	if _, ok := sess.Tailored(); ok {
		t.Error("canceled run must not commit a tailored snapshot")
	}
}

func TestStateSequence(t *testing.T) {
	o := testOrchestrator(&fakeGenerator{})
	run, err := o.NewRun(testSnapshot(), testJob(), policy.LevelAggressive)
	if err != nil {
		t.Fatalf("NewRun failed: %v", err)
	}

	want := []State{
		StateNotStarted, StateSummaryPass, StateSkillsPass,
		StateExperiencePass, StateProjectsPass, StateScored, StateDone,
	}
	for i, state := range want {
		if run.State() != state {
			t.Fatalf("step %d: state = %s, want %s", i, run.State(), state)
		}
		if state == StateDone {
			break
		}
		if err := run.Step(context.Background()); err != nil {
			t.Fatalf("Step at %s failed: %v", state, err)
		}
	}

	if _, err := run.Result(); err != nil {
		t.Errorf("Result after Done failed: %v", err)
	}
}

func TestResultBeforeDoneFails(t *testing.T) {
	o := testOrchestrator(&fakeGenerator{})
	run, err := o.NewRun(testSnapshot(), testJob(), policy.LevelMinimal)
	if err != nil {
		t.Fatalf("NewRun failed: %v", err)
	}
	if _, err := run.Result(); err == nil {
		t.Error("Result before the run completes must fail")
	}
}

func TestSkillsPassReorderAndAdditions(t *testing.T) {
	o := testOrchestrator(&fakeGenerator{})
	run, err := o.NewRun(testSnapshot(), testJob(), policy.LevelAggressive)
	if err != nil {
		t.Fatalf("NewRun failed: %v", err)
	}

	run.skillsPass()

	skills := run.working.Skills
	if skills[0] != "Python" || skills[1] != "PostgreSQL" {
		t.Errorf("matching skills must come first, got %v", skills)
	}
	if skills[2] != "Ruby" {
		t.Errorf("non-matching skills keep relative order, got %v", skills)
	}

	joined := strings.ToLower(strings.Join(skills, " "))
	for _, want := range []string{"docker", "kubernetes"} {
		if !strings.Contains(joined, want) {
			t.Errorf("aggressive level should add required skill %q, got %v", want, skills)
		}
	}
	if strings.Count(joined, "python") != 1 {
		t.Errorf("already-covered skills must not be re-added: %v", skills)
	}
	if len(skills) > run.constraints.MaxSkills {
		t.Errorf("skill count %d exceeds the cap %d", len(skills), run.constraints.MaxSkills)
	}
}

func TestSkillsPassBalancedTransferableOnly(t *testing.T) {
	o := testOrchestrator(&fakeGenerator{})
	job := testJob()
	job.RequiredSkills = []string{"Docker", "Git", "Terraform"}
	job.Keywords = []string{"Docker", "Git", "Terraform"}

	run, err := o.NewRun(testSnapshot(), job, policy.LevelBalanced)
	if err != nil {
		t.Fatalf("NewRun failed: %v", err)
	}
	run.skillsPass()

	joined := strings.ToLower(strings.Join(run.working.Skills, " "))
	if !strings.Contains(joined, "git") {
		t.Errorf("balanced level should add transferable skill Git, got %v", run.working.Skills)
	}
	for _, blocked := range []string{"docker", "terraform"} {
		if strings.Contains(joined, blocked) {
			t.Errorf("balanced level must not add non-transferable skill %q: %v", blocked, run.working.Skills)
		}
	}
}

func TestMinimalLevelOnlyTouchesSummary(t *testing.T) {
	gen := &fakeGenerator{}
	o := testOrchestrator(gen)

	snapshot := testSnapshot()
	sess := session.NewStore().Create()
	sess.SetOriginal(snapshot)
	sess.SetJob(testJob())

	result, err := o.Tailor(context.Background(), sess, policy.LevelMinimal)
	if err != nil {
		t.Fatalf("Tailor failed: %v", err)
	}

	for _, call := range gen.calls {
		if call.Section != "summary" {
			t.Errorf("minimal level generated for section %q", call.Section)
		}
		if len(call.Keywords) > 1 {
			t.Errorf("minimal level targets at most one keyword, got %v", call.Keywords)
		}
	}
	if len(result.Tailored.Skills) != len(snapshot.Skills) {
		t.Errorf("minimal level must not touch skills: %v", result.Tailored.Skills)
	}
	if result.Tailored.Experience[0].Responsibilities[0] != snapshot.Experience[0].Responsibilities[0] {
		t.Error("minimal level must not touch experience")
	}
}

func TestTailorWithoutResumeFails(t *testing.T) {
	o := testOrchestrator(&fakeGenerator{})
	sess := session.NewStore().Create()
	sess.SetJob(testJob())

	if _, err := o.Tailor(context.Background(), sess, policy.LevelBalanced); err == nil {
		t.Error("tailoring without an uploaded resume must fail")
	}
}

func TestUnknownLevelFails(t *testing.T) {
	o := testOrchestrator(&fakeGenerator{})
	if _, err := o.NewRun(testSnapshot(), testJob(), policy.Level("turbo")); err == nil {
		t.Error("unknown level must be rejected")
	}
}

func TestSplitBullets(t *testing.T) {
	got := splitBullets("- Built services with Docker\n\n• Ran Kubernetes clusters\nPlain line")
	want := []string{"Built services with Docker", "Ran Kubernetes clusters", "Plain line"}
	if len(got) != len(want) {
		t.Fatalf("splitBullets = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bullet %d = %q, want %q", i, got[i], want[i])
		}
	}
}

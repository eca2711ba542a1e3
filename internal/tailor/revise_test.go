package tailor

import (
	"context"
	"strings"
	"testing"

	"cvforge/internal/errors"
	"cvforge/internal/policy"
	"cvforge/internal/session"
	"cvforge/internal/types"
)

func tailoredSession(t *testing.T) *session.Session {
	t.Helper()
	gen := &fakeGenerator{}
	o := testOrchestrator(gen)

	sess := session.NewStore().Create()
	sess.SetOriginal(testSnapshot())
	sess.SetJob(testJob())
	if _, err := o.Tailor(context.Background(), sess, policy.LevelBalanced); err != nil {
		t.Fatalf("Tailor failed: %v", err)
	}
	return sess
}

func TestReviseFieldSummary(t *testing.T) {
	sess := tailoredSession(t)
	gen := &fakeGenerator{rewrite: func(input types.RewriteSectionInput) (types.RewriteSectionOutput, error) {
		return types.RewriteSectionOutput{Rewritten: "Rewritten to emphasize platform work."}, nil
	}}
	o := testOrchestrator(gen)

	result, err := o.ReviseField(context.Background(), sess, policy.FieldSummary, 0, "emphasize platform work")
	if err != nil {
		t.Fatalf("ReviseField failed: %v", err)
	}

	if result.Tailored.Summary != "Rewritten to emphasize platform work." {
		t.Errorf("summary = %q, want the revised text", result.Tailored.Summary)
	}
	if len(gen.calls) != 1 {
		t.Fatalf("generator called %d times, want 1", len(gen.calls))
	}
	if gen.calls[0].Instructions != "emphasize platform work" {
		t.Errorf("instructions not passed through: %q", gen.calls[0].Instructions)
	}

	tailored, ok := sess.Tailored()
	if !ok {
		t.Fatal("revision must be committed to the session")
	}
	if tailored.Summary != result.Tailored.Summary {
		t.Error("committed snapshot must carry the revised summary")
	}
	last := result.Customizations[len(result.Customizations)-1]
	if !strings.Contains(last, "Revised summary") {
		t.Errorf("last customization = %q, want a revision note", last)
	}
}

func TestReviseFieldExperienceEntry(t *testing.T) {
	sess := tailoredSession(t)
	gen := &fakeGenerator{rewrite: func(input types.RewriteSectionInput) (types.RewriteSectionOutput, error) {
		return types.RewriteSectionOutput{Rewritten: "- Led billing platform migration\n- Cut deploy times in half"}, nil
	}}
	o := testOrchestrator(gen)

	result, err := o.ReviseField(context.Background(), sess, policy.FieldExperience, 0, "quantify the impact")
	if err != nil {
		t.Fatalf("ReviseField failed: %v", err)
	}

	got := result.Tailored.Experience[0].Responsibilities
	want := []string{"Led billing platform migration", "Cut deploy times in half"}
	if len(got) != len(want) {
		t.Fatalf("responsibilities = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bullet %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestReviseFieldRequiresTailored(t *testing.T) {
	sess := session.NewStore().Create()
	sess.SetOriginal(testSnapshot())
	sess.SetJob(testJob())

	o := testOrchestrator(&fakeGenerator{})
	if _, err := o.ReviseField(context.Background(), sess, policy.FieldSummary, 0, ""); err == nil {
		t.Fatal("revising without a tailored snapshot must fail")
	}
}

func TestReviseFieldRejectsSkills(t *testing.T) {
	sess := tailoredSession(t)
	o := testOrchestrator(&fakeGenerator{})

	_, err := o.ReviseField(context.Background(), sess, policy.FieldSkills, 0, "")
	if err == nil {
		t.Fatal("skills are not prose and must be rejected")
	}
	if !errors.HasCode(err, errors.ErrCodeInvalidRequest) {
		t.Errorf("error code = %v, want %s", err, errors.ErrCodeInvalidRequest)
	}
}

func TestReviseFieldIndexOutOfRange(t *testing.T) {
	sess := tailoredSession(t)
	o := testOrchestrator(&fakeGenerator{})

	if _, err := o.ReviseField(context.Background(), sess, policy.FieldExperience, 5, ""); err == nil {
		t.Fatal("out-of-range experience index must fail")
	}
}

func TestReviseFieldEmptyRewriteIsMalformed(t *testing.T) {
	sess := tailoredSession(t)
	before, _ := sess.Tailored()
	beforeSummary := before.Summary

	gen := &fakeGenerator{rewrite: func(input types.RewriteSectionInput) (types.RewriteSectionOutput, error) {
		return types.RewriteSectionOutput{Rewritten: "   "}, nil
	}}
	o := testOrchestrator(gen)

	_, err := o.ReviseField(context.Background(), sess, policy.FieldSummary, 0, "")
	if !errors.IsMalformedResponse(err) {
		t.Fatalf("err = %v, want malformed response", err)
	}

	after, _ := sess.Tailored()
	if after.Summary != beforeSummary {
		t.Error("a failed revision must not touch the session")
	}
}

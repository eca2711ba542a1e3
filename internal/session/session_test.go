package session

import (
	"sync"
	"testing"

	"cvforge/internal/types"
)

func TestSessionLifecycle(t *testing.T) {
	store := NewStore()
	s := store.Create()

	if s.ID() == "" {
		t.Fatal("session id must not be empty")
	}
	if _, ok := s.Original(); ok {
		t.Error("fresh session should have no original snapshot")
	}

	original := &types.ResumeSnapshot{Skills: []string{"Python", "Go"}}
	s.SetOriginal(original)
	s.SetJob(&types.JobRequirements{JobTitle: "Engineer", Keywords: []string{"Go"}})
	s.CommitTailored(&types.ResumeSnapshot{Skills: []string{"Go"}}, []string{"Rewrote summary"}, &types.ATSAnalysis{})

	status := s.Status()
	if !status.HasResume || !status.HasJob || !status.HasTailored {
		t.Errorf("Status = %+v, want all slots populated", status)
	}
	if status.SkillsCount != 2 || status.KeywordsCount != 1 || status.JobTitle != "Engineer" {
		t.Errorf("Status counts wrong: %+v", status)
	}
}

func TestSetOriginalClearsTailored(t *testing.T) {
	s := NewStore().Create()
	s.SetOriginal(&types.ResumeSnapshot{})
	s.CommitTailored(&types.ResumeSnapshot{}, []string{"change"}, &types.ATSAnalysis{})

	s.SetOriginal(&types.ResumeSnapshot{Skills: []string{"Rust"}})

	if _, ok := s.Tailored(); ok {
		t.Error("uploading a new resume must clear the tailored snapshot")
	}
	if got := s.Customizations(); len(got) != 0 {
		t.Errorf("Customizations = %v, want empty", got)
	}
}

// After a reset, every accessor must report "not set" — no stale data
func TestResetClearsAllSlots(t *testing.T) {
	s := NewStore().Create()
	s.SetOriginal(&types.ResumeSnapshot{Skills: []string{"Python"}})
	s.SetJob(&types.JobRequirements{JobTitle: "Engineer"})
	s.CommitTailored(&types.ResumeSnapshot{}, []string{"x"}, &types.ATSAnalysis{})

	s.Reset()

	if _, ok := s.Original(); ok {
		t.Error("Original set after reset")
	}
	if _, ok := s.Job(); ok {
		t.Error("Job set after reset")
	}
	if _, ok := s.Tailored(); ok {
		t.Error("Tailored set after reset")
	}
	if _, ok := s.BeforeAnalysis(); ok {
		t.Error("BeforeAnalysis set after reset")
	}
	if status := s.Status(); status.HasResume || status.HasJob || status.HasTailored {
		t.Errorf("Status after reset = %+v", status)
	}
}

// Snapshots handed out by the session are clones; mutating them (or the
// snapshot passed to a setter) must never change stored state
func TestSnapshotAccessorsReturnClones(t *testing.T) {
	s := NewStore().Create()

	uploaded := &types.ResumeSnapshot{Skills: []string{"Python", "Go"}}
	s.SetOriginal(uploaded)
	uploaded.Skills[0] = "COBOL"

	original, ok := s.Original()
	if !ok {
		t.Fatal("Original not set")
	}
	if original.Skills[0] != "Python" {
		t.Errorf("stored original changed through the setter argument: %v", original.Skills)
	}

	original.Skills[1] = "Fortran"
	again, _ := s.Original()
	if again.Skills[1] != "Go" {
		t.Errorf("stored original changed through a returned snapshot: %v", again.Skills)
	}

	committed := &types.ResumeSnapshot{Summary: "Backend engineer"}
	s.CommitTailored(committed, nil, &types.ATSAnalysis{})
	committed.Summary = "scribbled over"

	tailored, ok := s.Tailored()
	if !ok {
		t.Fatal("Tailored not set")
	}
	if tailored.Summary != "Backend engineer" {
		t.Errorf("stored tailored changed through the committed pointer: %q", tailored.Summary)
	}

	tailored.Summary = "also scribbled"
	if again, _ := s.Tailored(); again.Summary != "Backend engineer" {
		t.Errorf("stored tailored changed through a returned snapshot: %q", again.Summary)
	}
}

func TestStoreIsolation(t *testing.T) {
	store := NewStore()
	a := store.Create()
	b := store.Create()

	a.SetOriginal(&types.ResumeSnapshot{Skills: []string{"Python"}})

	if _, ok := b.Original(); ok {
		t.Error("sessions must not share state")
	}

	got, ok := store.Get(a.ID())
	if !ok || got != a {
		t.Error("Get should return the same session instance")
	}
	if _, ok := store.Get("unknown"); ok {
		t.Error("Get of unknown id should fail")
	}
}

func TestGetOrCreate(t *testing.T) {
	store := NewStore()
	a := store.Create()

	if got := store.GetOrCreate(a.ID()); got != a {
		t.Error("GetOrCreate should return the existing session")
	}
	if got := store.GetOrCreate(""); got == a {
		t.Error("GetOrCreate with empty id should create a new session")
	}
	if store.Len() != 2 {
		t.Errorf("Len = %d, want 2", store.Len())
	}
}

// Concurrent access across sessions and within one session must be safe
func TestConcurrentAccess(t *testing.T) {
	store := NewStore()
	s := store.Create()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.SetOriginal(&types.ResumeSnapshot{Skills: []string{"Go"}})
			s.Status()
			s.Reset()
		}()
		go func() {
			defer wg.Done()
			other := store.Create()
			other.SetJob(&types.JobRequirements{})
			store.Delete(other.ID())
		}()
	}
	wg.Wait()
}

// Package session holds per-workflow state: the original snapshot, the
// tailored snapshot, the parsed job and the before-analysis. Sessions are
// independent; concurrent workflows never share mutable state.
package session

import (
	"sync"

	"github.com/google/uuid"

	"cvforge/internal/types"
)

// Session is the state of one in-flight workflow. All slot transitions are
// explicit; there is no implicit auto-save.
type Session struct {
	mu sync.RWMutex

	id             string
	original       *types.ResumeSnapshot
	tailored       *types.ResumeSnapshot
	job            *types.JobRequirements
	beforeAnalysis *types.ATSAnalysis
	customizations []string
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// SetOriginal stores the uploaded snapshot. Uploading a new resume clears
// any previous tailoring result.
func (s *Session) SetOriginal(snapshot *types.ResumeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.original = snapshot.Clone()
	s.tailored = nil
	s.customizations = nil
	s.beforeAnalysis = nil
}

// Original returns a clone of the original snapshot, or ok=false when not
// set. Mutating the returned snapshot never changes stored state.
func (s *Session) Original() (*types.ResumeSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.original.Clone(), s.original != nil
}

// SetJob stores the parsed job requirements
func (s *Session) SetJob(job *types.JobRequirements) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.job = job
}

// Job returns the job requirements, or ok=false when not set
func (s *Session) Job() (*types.JobRequirements, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.job, s.job != nil
}

// CommitTailored stores a completed tailoring result in one step. A run
// that fails mid-way never calls this, so a half-tailored snapshot is
// never observable.
func (s *Session) CommitTailored(tailored *types.ResumeSnapshot, customizations []string, beforeAnalysis *types.ATSAnalysis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tailored = tailored.Clone()
	s.customizations = append([]string(nil), customizations...)
	s.beforeAnalysis = beforeAnalysis
}

// Tailored returns a clone of the tailored snapshot, or ok=false when not
// set. Mutating the returned snapshot never changes stored state.
func (s *Session) Tailored() (*types.ResumeSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tailored.Clone(), s.tailored != nil
}

// BeforeAnalysis returns the analysis captured before tailoring
func (s *Session) BeforeAnalysis() (*types.ATSAnalysis, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.beforeAnalysis, s.beforeAnalysis != nil
}

// Customizations returns a copy of the recorded customization strings
func (s *Session) Customizations() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.customizations...)
}

// Reset clears every slot atomically under one lock; a partially reset
// session is never observable.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.original = nil
	s.tailored = nil
	s.job = nil
	s.beforeAnalysis = nil
	s.customizations = nil
}

// Status reports which slots are populated
func (s *Session) Status() types.SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := types.SessionStatus{
		HasResume:   s.original != nil,
		HasJob:      s.job != nil,
		HasTailored: s.tailored != nil,
	}
	if s.original != nil {
		status.SkillsCount = len(s.original.Skills)
	}
	if s.job != nil {
		status.KeywordsCount = len(s.job.Keywords)
		status.JobTitle = s.job.JobTitle
	}
	return status
}

// Store is a session-keyed arena. Handles are uuid strings so sessions
// never leak across request contexts.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty session store
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create registers a new empty session and returns it
func (st *Store) Create() *Session {
	s := &Session{id: uuid.NewString()}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.id] = s
	return s
}

// Get looks up a session by id
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// GetOrCreate returns the session for id, creating a fresh one when the
// id is unknown or empty.
func (st *Store) GetOrCreate(id string) *Session {
	if id != "" {
		if s, ok := st.Get(id); ok {
			return s
		}
	}
	return st.Create()
}

// Delete removes a session from the store entirely
func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Len returns the number of live sessions
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

package types

// PersonalInfo holds the contact block of a resume. Every field is
// semantically optional free text.
type PersonalInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
}

// Experience represents one employment entry. Responsibilities keep their
// original order; only their prose is mutable during tailoring.
type Experience struct {
	Position         string   `json:"position"`
	Company          string   `json:"company"`
	StartDate        string   `json:"start_date,omitempty"`
	EndDate          string   `json:"end_date,omitempty"`
	Responsibilities []string `json:"responsibilities"`
}

// Education represents one education entry
type Education struct {
	Degree         string `json:"degree"`
	Institution    string `json:"institution"`
	GraduationDate string `json:"graduation_date,omitempty"`
	GPA            string `json:"gpa,omitempty"`
}

// Project represents one project entry
type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
}

// Certification represents one certification entry
type Certification struct {
	Name string `json:"name"`
	Date string `json:"date,omitempty"`
}

// ResumeSnapshot is the structured form of one resume. Skills and
// technologies are free-form, case-preserving strings; duplicates are
// allowed and matching deduplicates. A snapshot is never mutated by scoring.
type ResumeSnapshot struct {
	PersonalInfo   PersonalInfo    `json:"personal_info"`
	Summary        string          `json:"summary,omitempty"`
	Skills         []string        `json:"skills"`
	Experience     []Experience    `json:"experience"`
	Education      []Education     `json:"education"`
	Projects       []Project       `json:"projects,omitempty"`
	Certifications []Certification `json:"certifications,omitempty"`
}

// Clone returns a deep copy of the snapshot. Tailoring passes mutate the
// copy and commit it all-or-nothing, so the original is never half-updated.
func (r *ResumeSnapshot) Clone() *ResumeSnapshot {
	if r == nil {
		return nil
	}
	out := *r
	out.Skills = append([]string(nil), r.Skills...)
	out.Experience = make([]Experience, len(r.Experience))
	for i, exp := range r.Experience {
		out.Experience[i] = exp
		out.Experience[i].Responsibilities = append([]string(nil), exp.Responsibilities...)
	}
	out.Education = append([]Education(nil), r.Education...)
	out.Projects = make([]Project, len(r.Projects))
	for i, p := range r.Projects {
		out.Projects[i] = p
		out.Projects[i].Technologies = append([]string(nil), p.Technologies...)
	}
	out.Certifications = append([]Certification(nil), r.Certifications...)
	return &out
}

// JobRequirements is built once per job description and read-only
// thereafter. Keywords is the superset used for matching: required +
// preferred + inferred terms, deduplicated, in first-seen order.
type JobRequirements struct {
	JobTitle           string   `json:"job_title,omitempty"`
	RequiredSkills     []string `json:"required_skills"`
	PreferredSkills    []string `json:"preferred_skills,omitempty"`
	Keywords           []string `json:"keywords"`
	ExperienceRequired string   `json:"experience_required,omitempty"`
}

// KeywordMatchResult reports keyword coverage of a text against an ordered
// keyword sequence. Matched and Missing follow the keyword-set order, not
// the text order, so output is stable for diffing.
type KeywordMatchResult struct {
	Matched []string `json:"matched"`
	Missing []string `json:"missing"`
	Score   float64  `json:"score"`
}

// ATSAnalysis is the scoring result for one snapshot against one job.
// Derived, never persisted independently of the snapshot that produced it.
type ATSAnalysis struct {
	JobTitle          string   `json:"job_title,omitempty"`
	KeywordMatchScore float64  `json:"keyword_match_score"`
	SectionCoverage   float64  `json:"section_coverage"`
	OverallScore      float64  `json:"overall_score"`
	MatchedKeywords   []string `json:"matched_keywords"`
	MissingKeywords   []string `json:"missing_keywords"`
	Suggestions       []string `json:"suggestions"`
}

// EvaluationMetrics is a pure function of (snapshot, job, analysis)
type EvaluationMetrics struct {
	RelevanceToJob      float64  `json:"relevance_to_job"`
	ExperienceCoverage  float64  `json:"experience_coverage"`
	AchievementCoverage float64  `json:"achievement_coverage"`
	ATSComplianceScore  float64  `json:"ats_compliance_score"`
	KeywordDensity      float64  `json:"keyword_density"`
	OverallQuality      float64  `json:"overall_quality"`
	Recommendations     []string `json:"recommendations"`
}

// SnapshotStats is one side of a before/after comparison block
type SnapshotStats struct {
	Summary           string   `json:"summary"`
	SkillsCount       int      `json:"skills_count"`
	ExperienceBullets int      `json:"experience_bullets"`
	KeywordMatches    int      `json:"keyword_matches"`
	KeywordMatchScore float64  `json:"keyword_match_score"`
	OverallScore      float64  `json:"overall_score"`
	OverallQuality    float64  `json:"overall_quality"`
	MatchedKeywords   []string `json:"matched_keywords"`
}

// Improvement carries signed deltas between the before and after analyses.
// PercentageImprovement is never clamped; regressions surface as negatives.
type Improvement struct {
	KeywordScoreIncrease  float64 `json:"keyword_score_increase"`
	KeywordCountIncrease  int     `json:"keyword_count_increase"`
	PercentageImprovement float64 `json:"percentage_improvement"`
}

// ComparisonChanges is the diff block of a ComparisonResult
type ComparisonChanges struct {
	SummaryChanged     bool        `json:"summary_changed"`
	SkillsAdded        []string    `json:"skills_added"`
	SkillsRemoved      []string    `json:"skills_removed"`
	SkillsKeptCount    int         `json:"skills_kept_count"`
	NewKeywordsMatched []string    `json:"new_keywords_matched"`
	Improvement        Improvement `json:"improvement"`
}

// ComparisonResult is computed on demand from the two session snapshots
// and never cached beyond one session.
type ComparisonResult struct {
	Before         SnapshotStats     `json:"before"`
	After          SnapshotStats     `json:"after"`
	Changes        ComparisonChanges `json:"changes"`
	Customizations []string          `json:"customizations"`
}

// TailorResult bundles the output of one tailoring run
type TailorResult struct {
	Tailored       *ResumeSnapshot `json:"tailored_resume"`
	Customizations []string        `json:"customizations"`
	Analysis       *ATSAnalysis    `json:"ats_analysis"`
}

// ExtractResumeInput represents the input for structured resume extraction
type ExtractResumeInput struct {
	ResumeText string `json:"resume_text"`
}

// ParseJobInput represents the input for job description parsing
type ParseJobInput struct {
	JobText string `json:"job_text"`
}

// RewriteSectionInput represents the input for rewriting one prose field.
// Content holds the current text of the field; Keywords are the terms the
// rewrite should work in where they are truthful for the candidate.
type RewriteSectionInput struct {
	Section      string   `json:"section"`
	Content      string   `json:"content"`
	JobTitle     string   `json:"job_title,omitempty"`
	Keywords     []string `json:"keywords"`
	Instructions string   `json:"instructions,omitempty"`
}

// RewriteSectionOutput represents the output of one prose rewrite
type RewriteSectionOutput struct {
	Rewritten    string   `json:"rewritten"`
	KeywordsUsed []string `json:"keywords_used,omitempty"`
}

// SessionStatus reports which session slots are populated
type SessionStatus struct {
	HasResume     bool   `json:"has_resume"`
	HasJob        bool   `json:"has_job"`
	HasTailored   bool   `json:"has_tailored"`
	SkillsCount   int    `json:"skills_count"`
	KeywordsCount int    `json:"keywords_count"`
	JobTitle      string `json:"job_title,omitempty"`
}

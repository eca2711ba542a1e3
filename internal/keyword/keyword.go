package keyword

import (
	"regexp"
	"strings"

	"cvforge/internal/types"
)

// techVocabulary is the fixed technology term list scanned out of job
// descriptions. Terms keep their canonical casing in the index.
var techVocabulary = []string{
	"Python", "Java", "JavaScript", "TypeScript", "Go", "Rust", "C++", "C#",
	"SQL", "NoSQL", "MongoDB", "PostgreSQL", "MySQL", "Redis",
	"AWS", "Azure", "GCP", "Docker", "Kubernetes",
	"React", "Angular", "Vue", "Node.js",
	"Django", "Flask", "FastAPI", "Spring",
	"Git", "CI/CD", "Agile", "Scrum",
	"Machine Learning", "Deep Learning", "TensorFlow", "PyTorch",
	"REST", "GraphQL", "Microservices", "DevOps",
}

// acronymPattern picks up capitalized acronyms like SQL, ETL, SaaS-adjacent
// short forms. Two to five letters, word-bounded.
var acronymPattern = regexp.MustCompile(`\b[A-Z]{2,5}\b`)

// nonWordPattern matches runs of characters that are neither letters,
// digits, nor whitespace. Kept separate from whitespace collapsing so
// multi-word keywords survive normalization intact.
var nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

var whitespacePattern = regexp.MustCompile(`\s+`)

// Normalize lower-cases text, strips punctuation and collapses whitespace.
// Both keywords and candidate text go through the same normalization so
// substring containment is symmetric.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = nonWordPattern.ReplaceAllString(s, " ")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Dedupe removes case-insensitive duplicates from an ordered keyword
// sequence, keeping the first occurrence's casing and position. The index
// must stay an ordered sequence, not a set, so matched/missing output is
// reproducible.
func Dedupe(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		trimmed := strings.TrimSpace(kw)
		if trimmed == "" {
			continue
		}
		key := Normalize(trimmed)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

// BuildIndex extracts a normalized, deduplicated, ordered keyword index
// from a job description: known technology terms first, then standalone
// acronyms in order of appearance.
func BuildIndex(jobText string) []string {
	normalized := Normalize(jobText)

	var terms []string
	for _, term := range techVocabulary {
		if strings.Contains(normalized, Normalize(term)) {
			terms = append(terms, term)
		}
	}

	terms = append(terms, acronymPattern.FindAllString(jobText, -1)...)

	return Dedupe(terms)
}

// Match reports which keywords occur in text. A keyword is present when its
// normalized form is a substring of the normalized text; this matches
// multi-word technology names without a tokenizer at the cost of
// false positives on substrings (e.g. "AI" inside "maintain"). Matched and
// Missing preserve the keyword-set order. An empty keyword set is vacuously
// fully matched: score 1.0, both lists empty.
func Match(text string, keywords []string) types.KeywordMatchResult {
	if len(keywords) == 0 {
		return types.KeywordMatchResult{
			Matched: []string{},
			Missing: []string{},
			Score:   1.0,
		}
	}

	normalized := Normalize(text)
	matched := []string{}
	missing := []string{}

	for _, kw := range keywords {
		needle := Normalize(kw)
		if needle != "" && strings.Contains(normalized, needle) {
			matched = append(matched, kw)
		} else {
			missing = append(missing, kw)
		}
	}

	return types.KeywordMatchResult{
		Matched: matched,
		Missing: missing,
		Score:   float64(len(matched)) / float64(len(keywords)),
	}
}

// MergeIndex combines explicit skill lists with inferred terms into the
// keyword superset used for matching, deduplicated in first-seen order.
func MergeIndex(required, preferred, inferred []string) []string {
	merged := make([]string, 0, len(required)+len(preferred)+len(inferred))
	merged = append(merged, required...)
	merged = append(merged, preferred...)
	merged = append(merged, inferred...)
	return Dedupe(merged)
}

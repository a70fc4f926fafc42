package models

import "slices"

// Verdict is the categorical outcome of an AI review.
type Verdict string

const (
	VerdictPass             Verdict = "pass"
	VerdictPassWithWarnings Verdict = "pass-with-warnings"
	VerdictRevisionRequired Verdict = "revision-required"
	VerdictFail             Verdict = "fail"
)

// Verdicts lists the accepted verdict values in schema order.
var Verdicts = []Verdict{VerdictPass, VerdictPassWithWarnings, VerdictRevisionRequired, VerdictFail}

// Severity grades a single review issue.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

// Severities lists the accepted severity values.
var Severities = []Severity{SeverityCritical, SeverityMajor, SeverityMinor}

// DeterministicResult is the outcome of the rule-based checks run before any AI call.
type DeterministicResult struct {
	DeterministicPass bool     `json:"deterministicPass"`
	Flags             []string `json:"flags"`
	CriticalFail      bool     `json:"criticalFail"`
}

// QAResult is the structured review the AI service must return.
type QAResult struct {
	TotalScore       float64     `json:"total_score" firestore:"total_score"`
	Verdict          Verdict     `json:"verdict" firestore:"verdict"`
	ShortSummary     string      `json:"short_summary" firestore:"short_summary"`
	RevisionRequired bool        `json:"revision_required" firestore:"revision_required"`
	RevisionTriggers []string    `json:"revision_triggers" firestore:"revision_triggers"`
	Strengths        []string    `json:"strengths" firestore:"strengths"`
	Issues           []Issue     `json:"issues" firestore:"issues"`
	Risks            []string    `json:"risks" firestore:"risks"`
	Suggestions      []string    `json:"suggestions" firestore:"suggestions"`
	Scores           []ScoreLine `json:"scores" firestore:"scores"`
}

// Issue is a single problem the reviewer found, optionally pinned to a slide.
type Issue struct {
	SlideNumber *int     `json:"slideNumber,omitempty" firestore:"slideNumber,omitempty"`
	Severity    Severity `json:"severity" firestore:"severity"`
	Description string   `json:"description" firestore:"description"`
	Suggestion  string   `json:"suggestion" firestore:"suggestion"`
}

// ScoreLine is one rubric category score.
type ScoreLine struct {
	Category string  `json:"category" firestore:"category"`
	Score    float64 `json:"score" firestore:"score"`
	MaxScore float64 `json:"maxScore" firestore:"maxScore"`
	Notes    string  `json:"notes" firestore:"notes"`
}

// Clone returns a deep copy; no slice or pointer is shared with r.
func (r QAResult) Clone() QAResult {
	out := r
	out.RevisionTriggers = slices.Clone(r.RevisionTriggers)
	out.Strengths = slices.Clone(r.Strengths)
	out.Risks = slices.Clone(r.Risks)
	out.Suggestions = slices.Clone(r.Suggestions)
	out.Scores = slices.Clone(r.Scores)
	if r.Issues != nil {
		out.Issues = make([]Issue, len(r.Issues))
		for i, issue := range r.Issues {
			if issue.SlideNumber != nil {
				n := *issue.SlideNumber
				issue.SlideNumber = &n
			}
			out.Issues[i] = issue
		}
	}
	return out
}

package models

import (
	"slices"
	"time"
)

// QARun is the immutable audit record written once per completed review.
// The review result is stored twice: StructuredScores feeds dashboards and
// FullReport is what the report view renders.
type QARun struct {
	ID                      string       `json:"id" firestore:"-"`
	Mode                    Mode         `json:"mode" firestore:"mode"`
	Title                   string       `json:"title" firestore:"title"`
	SourceType              SourceType   `json:"source_type" firestore:"source_type"`
	SourceHash              string       `json:"source_hash,omitempty" firestore:"source_hash,omitempty"`
	NormalizedSlideCount    int          `json:"normalized_slide_count" firestore:"normalized_slide_count"`
	NotesDetectedCount      int          `json:"notes_detected_count" firestore:"notes_detected_count"`
	DetectedNotesPattern    NotesPattern `json:"detected_notes_pattern" firestore:"detected_notes_pattern"`
	NormalizationConfidence float64      `json:"normalization_confidence" firestore:"normalization_confidence"`
	DeterministicFlags      []string     `json:"deterministic_flags" firestore:"deterministic_flags"`
	Verdict                 Verdict      `json:"verdict" firestore:"verdict"`
	TotalScore              float64      `json:"total_score" firestore:"total_score"`
	StructuredScores        QAResult     `json:"structured_scores" firestore:"structured_scores"`
	FullReport              QAResult     `json:"full_report" firestore:"full_report"`
	RawAIResponse           string       `json:"raw_ai_response" firestore:"raw_ai_response"`
	PromptVersion           string       `json:"prompt_version" firestore:"prompt_version"`
	Model                   string       `json:"model" firestore:"model"`
	Attempts                int          `json:"attempts" firestore:"attempts"`
	ExecutionTimeMS         int64        `json:"execution_time_ms" firestore:"execution_time_ms"`
	CreatedBy               string       `json:"created_by" firestore:"created_by"`
	CreatedAt               time.Time    `json:"created_at" firestore:"created_at"`
}

// Clone returns a deep copy of the run.
func (r QARun) Clone() QARun {
	out := r
	out.DeterministicFlags = slices.Clone(r.DeterministicFlags)
	out.StructuredScores = r.StructuredScores.Clone()
	out.FullReport = r.FullReport.Clone()
	return out
}

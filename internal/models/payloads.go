package models

// These structs define the JSON payloads of the review entry points.

// ReviewRequest is the input for the lesson-review function. Exactly one of
// PDFBase64 and GCSUri must be set.
type ReviewRequest struct {
	Title      string `json:"title"`
	Mode       string `json:"mode"`
	SourceType string `json:"sourceType"`
	UserID     string `json:"userId"`
	PDFBase64  string `json:"pdfBase64,omitempty"`
	GCSUri     string `json:"gcsUri,omitempty"`
}

// ReviewResponse is the output of the lesson-review function.
type ReviewResponse struct {
	Status string   `json:"status"`
	RunID  string   `json:"runId,omitempty"`
	Stage  string   `json:"stage,omitempty"`
	Error  string   `json:"error,omitempty"`
	Flags  []string `json:"flags,omitempty"`
	Run    *QARun   `json:"run,omitempty"`
}

// Review response statuses.
const (
	StatusSuccess = "success"
	StatusBlocked = "blocked"
	StatusFailed  = "failed"
)

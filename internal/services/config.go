package services

import (
	"fmt"
	"time"

	"github.com/Lllllllleong/lessonreview/internal/gcp"
	"github.com/Lllllllleong/lessonreview/internal/review"
	"github.com/Lllllllleong/lessonreview/internal/store"
)

// LessonReviewConfig holds all configuration for the lesson review service.
type LessonReviewConfig struct {
	ProjectID         string
	FirestoreDatabase string
	VertexAIRegion    string
	VertexModel       string
	RunsCollection    string
	ConfigCollection  string
	PromptsCollection string
	// ReportsBucket and RevisionWorkflowID are optional; empty disables the feature.
	ReportsBucket      string
	RevisionWorkflowID string
	WorkflowLocation   string
	RetryBackoff       time.Duration
	// LocalOnly keeps runs in memory and uses built-in prompts. Vertex AI is still called.
	LocalOnly bool
}

// LoadLessonReviewConfig loads and validates the environment.
func LoadLessonReviewConfig() (*LessonReviewConfig, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	backoff, err := gcp.GetEnvDuration("RETRY_BACKOFF", review.DefaultRetryPolicy.Backoff)
	if err != nil {
		return nil, fmt.Errorf("invalid RETRY_BACKOFF: %w", err)
	}

	return &LessonReviewConfig{
		ProjectID:          projectID,
		FirestoreDatabase:  gcp.GetEnv("FIRESTORE_DATABASE", ""),
		VertexAIRegion:     gcp.GetEnv("VERTEX_AI_REGION", "us-central1"),
		VertexModel:        gcp.GetEnv("VERTEX_MODEL", gcp.DefaultReviewModel),
		RunsCollection:     gcp.GetEnv("RUNS_COLLECTION", store.DefaultRunsCollection),
		ConfigCollection:   gcp.GetEnv("CONFIG_COLLECTION", "app_config"),
		PromptsCollection:  gcp.GetEnv("PROMPTS_COLLECTION", "qa_prompts"),
		ReportsBucket:      gcp.GetEnv("REPORTS_BUCKET", ""),
		RevisionWorkflowID: gcp.GetEnv("REVISION_WORKFLOW_ID", ""),
		WorkflowLocation:   gcp.GetEnv("WORKFLOW_LOCATION", "us-central1"),
		RetryBackoff:       backoff,
	}, nil
}

func (c *LessonReviewConfig) firestoreTarget() gcp.FirestoreTarget {
	return gcp.FirestoreTarget{ProjectID: c.ProjectID, DatabaseID: c.FirestoreDatabase}
}

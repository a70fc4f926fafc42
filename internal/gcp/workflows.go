package gcp

import (
	"context"
	"encoding/json"
	"fmt"

	executions "cloud.google.com/go/workflows/executions/apiv1"
	"cloud.google.com/go/workflows/executions/apiv1/executionspb"

	"github.com/Lllllllleong/lessonreview/internal/models"
)

// RevisionPayload is the argument handed to the revision follow-up workflow.
type RevisionPayload struct {
	RunID            string   `json:"runId"`
	Mode             string   `json:"mode"`
	Title            string   `json:"title"`
	Verdict          string   `json:"verdict"`
	TotalScore       float64  `json:"totalScore"`
	RevisionTriggers []string `json:"revisionTriggers"`
	CreatedBy        string   `json:"createdBy"`
}

// NewRevisionPayload summarizes a run for the follow-up workflow.
func NewRevisionPayload(run *models.QARun) RevisionPayload {
	return RevisionPayload{
		RunID:            run.ID,
		Mode:             string(run.Mode),
		Title:            run.Title,
		Verdict:          string(run.Verdict),
		TotalScore:       run.TotalScore,
		RevisionTriggers: run.FullReport.RevisionTriggers,
		CreatedBy:        run.CreatedBy,
	}
}

// WorkflowTrigger starts executions of one Cloud Workflow.
type WorkflowTrigger struct {
	client *executions.Client
	parent string
}

func NewWorkflowTrigger(ctx context.Context, projectID, location, workflowID string) (*WorkflowTrigger, error) {
	if projectID == "" || location == "" || workflowID == "" {
		return nil, fmt.Errorf("NewWorkflowTrigger: projectID, location and workflowID are required")
	}
	client, err := executions.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Workflows Executions client: %w", err)
	}
	return &WorkflowTrigger{
		client: client,
		parent: fmt.Sprintf("projects/%s/locations/%s/workflows/%s", projectID, location, workflowID),
	}, nil
}

// Trigger starts one execution and returns its resource name.
func (w *WorkflowTrigger) Trigger(ctx context.Context, payload RevisionPayload) (string, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal workflow payload: %w", err)
	}
	exec, err := w.client.CreateExecution(ctx, &executionspb.CreateExecutionRequest{
		Parent: w.parent,
		Execution: &executionspb.Execution{
			Argument: string(payloadBytes),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to trigger workflow execution: %w", err)
	}
	return exec.GetName(), nil
}

func (w *WorkflowTrigger) Close() error {
	return w.client.Close()
}

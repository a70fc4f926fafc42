package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"cloud.google.com/go/storage"

	"github.com/Lllllllleong/lessonreview/internal/gcp"
	"github.com/Lllllllleong/lessonreview/internal/models"
)

// ReportExporter copies a finished run somewhere outside the run store.
type ReportExporter interface {
	Export(ctx context.Context, run *models.QARun) error
}

// RevisionTrigger starts the revision follow-up for a run that needs rework.
type RevisionTrigger interface {
	Trigger(ctx context.Context, payload gcp.RevisionPayload) (string, error)
}

// gcsReportExporter writes <mode>/<runId>.json to the reports bucket.
type gcsReportExporter struct {
	bucket *storage.BucketHandle
}

func (e *gcsReportExporter) Export(ctx context.Context, run *models.QARun) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run %s: %w", run.ID, err)
	}
	return gcp.SaveToGCSAtomically(ctx, e.bucket, reportObjectName(run), "application/json", data)
}

func reportObjectName(run *models.QARun) string {
	return fmt.Sprintf("%s/%s.json", run.Mode, run.ID)
}

// needsRevision reports whether a run should start the follow-up workflow.
func needsRevision(run *models.QARun) bool {
	return run.FullReport.RevisionRequired ||
		run.Verdict == models.VerdictRevisionRequired ||
		run.Verdict == models.VerdictFail
}

// afterRun runs the optional side effects. The run is already persisted, so
// failures here are logged and never change the outcome.
func (f *LessonReviewFunction) afterRun(ctx context.Context, logCtx *slog.Logger, run *models.QARun) {
	if f.reports != nil {
		if err := f.reports.Export(ctx, run); err != nil {
			logCtx.Warn("Report export failed.", "error", err)
		} else {
			logCtx.Info("Report exported.", "gcsObject", reportObjectName(run))
		}
	}

	if f.revisions != nil && needsRevision(run) {
		execution, err := f.revisions.Trigger(ctx, gcp.NewRevisionPayload(run))
		if err != nil {
			logCtx.Warn("Revision follow-up could not be started.", "error", err)
			return
		}
		logCtx.Info("Revision follow-up started.", "execution", execution)
	}
}

package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"

	"github.com/Lllllllleong/lessonreview/internal/gcp"
	"github.com/Lllllllleong/lessonreview/internal/models"
	"github.com/Lllllllleong/lessonreview/internal/pdftext"
	"github.com/Lllllllleong/lessonreview/internal/pipeline"
	"github.com/Lllllllleong/lessonreview/internal/prompts"
	"github.com/Lllllllleong/lessonreview/internal/review"
	"github.com/Lllllllleong/lessonreview/internal/store"
)

// defaultUploader is recorded as the caller for uploads without an uploadedBy label.
const defaultUploader = "gcs-upload"

// GCSEvent is the subset of a storage object-finalized event we read.
type GCSEvent struct {
	Bucket      string            `json:"bucket"`
	Name        string            `json:"name"`
	ContentType string            `json:"contentType"`
	Metadata    map[string]string `json:"metadata"`
}

// Runner is the part of the pipeline the service drives.
type Runner interface {
	Run(ctx context.Context, in pipeline.Input) (*pipeline.Outcome, error)
}

// DeckFetcher downloads a deck from object storage.
type DeckFetcher func(ctx context.Context, bucket, object string) ([]byte, error)

// LessonReviewFunction holds the dependencies for the review entry points.
type LessonReviewFunction struct {
	runner    Runner
	fetch     DeckFetcher
	runs      store.RunStore
	reports   ReportExporter
	revisions RevisionTrigger
	closers   []func() error
	config    LessonReviewConfig
}

// NewLessonReview creates a LessonReviewFunction from the environment.
func NewLessonReview(ctx context.Context) (*LessonReviewFunction, error) {
	config, err := LoadLessonReviewConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return NewLessonReviewWithConfig(ctx, *config)
}

// NewLessonReviewWithConfig wires every client the service needs.
func NewLessonReviewWithConfig(ctx context.Context, config LessonReviewConfig) (*LessonReviewFunction, error) {
	f := &LessonReviewFunction{config: config}

	vertexClient, err := gcp.NewVertexClient(ctx, config.ProjectID, config.VertexAIRegion, config.VertexModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex client: %w", err)
	}
	f.closers = append(f.closers, vertexClient.Close)

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	f.closers = append(f.closers, storageClient.Close)
	f.fetch = func(ctx context.Context, bucket, object string) ([]byte, error) {
		return gcp.ReadGCSObject(ctx, storageClient, bucket, object)
	}

	var resolver *prompts.Resolver
	if config.LocalOnly {
		f.runs = store.NewMemoryRunStore()
		resolver = prompts.NewResolver(nil, nil, nil)
	} else {
		firestoreClient, err := gcp.NewFirestoreClient(ctx, config.firestoreTarget())
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create firestore client: %w", err)
		}
		f.closers = append(f.closers, firestoreClient.Close)
		f.runs = store.NewFirestoreRunStore(firestoreClient, config.RunsCollection)
		resolver = promptResolver(firestoreClient, config)

		if config.ReportsBucket != "" {
			f.reports = &gcsReportExporter{bucket: storageClient.Bucket(config.ReportsBucket)}
		}
		if config.RevisionWorkflowID != "" {
			trigger, err := gcp.NewWorkflowTrigger(ctx, config.ProjectID, config.WorkflowLocation, config.RevisionWorkflowID)
			if err != nil {
				f.Close()
				return nil, err
			}
			f.closers = append(f.closers, trigger.Close)
			f.revisions = trigger
		}
	}

	orchestrator := review.NewOrchestrator(resolver, vertexClient, f.runs,
		review.WithRetryPolicy(review.RetryPolicy{MaxAttempts: review.MaxAttempts, Backoff: config.RetryBackoff}),
	)
	f.runner = pipeline.New(pdftext.NewExtractor(nil), orchestrator, nil)

	slog.Info("Lesson review logic initialized.",
		"model", vertexClient.Model(),
		"runsCollection", config.RunsCollection,
		"localOnly", config.LocalOnly,
		"reportsBucket", config.ReportsBucket,
		"revisionWorkflowId", config.RevisionWorkflowID,
	)
	return f, nil
}

func promptResolver(client *firestore.Client, config LessonReviewConfig) *prompts.Resolver {
	return prompts.NewResolver(
		prompts.NewFirestoreConfigStore(client, config.ConfigCollection),
		prompts.NewFirestoreVersionStore(client, config.PromptsCollection),
		nil,
	)
}

// Close releases every client, newest first.
func (f *LessonReviewFunction) Close() error {
	var errs []error
	for i := len(f.closers) - 1; i >= 0; i-- {
		if err := f.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	f.closers = nil
	return errors.Join(errs...)
}

// Process handles one HTTP review request.
func (f *LessonReviewFunction) Process(ctx context.Context, req *models.ReviewRequest) (*models.ReviewResponse, error) {
	logCtx := slog.With("title", req.Title, "mode", req.Mode, "userId", req.UserID)
	logCtx.Info("Starting lesson review.")

	in, err := requestInput(req)
	if err != nil {
		logCtx.Warn("Rejected review request.", "error", err)
		return failedResponse(err), err
	}

	if req.GCSUri != "" {
		bucket, object, err := gcp.ParseGCSURI(req.GCSUri)
		if err != nil {
			err = &pipeline.StageError{Stage: pipeline.StageInput, Err: err}
			return failedResponse(err), err
		}
		if in.PDF, err = f.fetch(ctx, bucket, object); err != nil {
			logCtx.Error("Failed to download deck", "error", err, "gcsUri", req.GCSUri)
			err = &pipeline.StageError{Stage: pipeline.StageExtraction, Err: err}
			return failedResponse(err), err
		}
	}

	return f.run(ctx, logCtx, in)
}

// ProcessUpload reviews a deck uploaded to <mode>/<sourceType>/<name>.pdf.
// Objects outside that layout are skipped, not failed.
func (f *LessonReviewFunction) ProcessUpload(ctx context.Context, e GCSEvent) (*models.ReviewResponse, error) {
	logCtx := slog.With("gcsBucket", e.Bucket, "gcsObject", e.Name)
	logCtx.Info("Processing uploaded deck.")

	in, err := uploadInput(e)
	if err != nil {
		logCtx.Info("Skipping object.", "reason", err.Error())
		return nil, nil
	}
	logCtx = logCtx.With("title", in.Title, "mode", in.Mode, "userId", in.UserID)

	if in.PDF, err = f.fetch(ctx, e.Bucket, e.Name); err != nil {
		logCtx.Error("Failed to download deck", "error", err)
		err = &pipeline.StageError{Stage: pipeline.StageExtraction, Err: err}
		return failedResponse(err), err
	}

	return f.run(ctx, logCtx, in)
}

// Review runs a deck that is already in memory, as the CLI does.
func (f *LessonReviewFunction) Review(ctx context.Context, in pipeline.Input) (*models.ReviewResponse, error) {
	logCtx := slog.With("title", in.Title, "mode", in.Mode, "userId", in.UserID)
	return f.run(ctx, logCtx, in)
}

func (f *LessonReviewFunction) run(ctx context.Context, logCtx *slog.Logger, in pipeline.Input) (*models.ReviewResponse, error) {
	out, err := f.runner.Run(ctx, in)
	if err != nil {
		logCtx.Error("Lesson review failed", "error", err, "stage", pipeline.StageOf(err))
		return failedResponse(err), err
	}

	if out.Blocked {
		logCtx.Warn("Lesson review blocked by deterministic checks.", "flags", out.Deterministic.Flags)
		return &models.ReviewResponse{
			Status: models.StatusBlocked,
			Flags:  out.Deterministic.Flags,
		}, nil
	}

	logCtx = logCtx.With("runId", out.RunID)
	f.afterRun(ctx, logCtx, out.Run)
	logCtx.Info("Lesson review complete.", "verdict", out.Run.Verdict, "totalScore", out.Run.TotalScore)

	return &models.ReviewResponse{
		Status: models.StatusSuccess,
		RunID:  out.RunID,
		Flags:  out.Deterministic.Flags,
		Run:    out.Run,
	}, nil
}

func requestInput(req *models.ReviewRequest) (pipeline.Input, error) {
	invalid := func(err error) (pipeline.Input, error) {
		return pipeline.Input{}, &pipeline.StageError{Stage: pipeline.StageInput, Err: err}
	}

	mode, err := models.ParseMode(req.Mode)
	if err != nil {
		return invalid(err)
	}
	sourceType, err := models.ParseSourceType(req.SourceType)
	if err != nil {
		return invalid(err)
	}
	if (req.PDFBase64 == "") == (req.GCSUri == "") {
		return invalid(errors.New("exactly one of pdfBase64 and gcsUri must be set"))
	}

	in := pipeline.Input{
		SourceType: sourceType,
		Mode:       mode,
		Title:      req.Title,
		UserID:     req.UserID,
	}
	if req.PDFBase64 != "" {
		if in.PDF, err = base64.StdEncoding.DecodeString(req.PDFBase64); err != nil {
			return invalid(fmt.Errorf("pdfBase64 is not valid base64: %w", err))
		}
	}
	return in, nil
}

func uploadInput(e GCSEvent) (pipeline.Input, error) {
	parts := strings.Split(e.Name, "/")
	if len(parts) != 3 || !strings.EqualFold(path.Ext(parts[2]), ".pdf") {
		return pipeline.Input{}, fmt.Errorf("object name %q is not <mode>/<sourceType>/<name>.pdf", e.Name)
	}
	mode, err := models.ParseMode(parts[0])
	if err != nil {
		return pipeline.Input{}, err
	}
	sourceType, err := models.ParseSourceType(parts[1])
	if err != nil {
		return pipeline.Input{}, err
	}

	title := strings.TrimSpace(e.Metadata["title"])
	if title == "" {
		title = strings.TrimSuffix(parts[2], path.Ext(parts[2]))
	}
	user := strings.TrimSpace(e.Metadata["uploadedBy"])
	if user == "" {
		user = defaultUploader
	}

	return pipeline.Input{SourceType: sourceType, Mode: mode, Title: title, UserID: user}, nil
}

func failedResponse(err error) *models.ReviewResponse {
	return &models.ReviewResponse{
		Status: models.StatusFailed,
		Stage:  string(pipeline.StageOf(err)),
		Error:  err.Error(),
	}
}

// HTTPStatus maps a review response to the status code the HTTP entry points return.
func HTTPStatus(res *models.ReviewResponse, err error) int {
	switch {
	case err != nil && pipeline.StageOf(err) == pipeline.StageInput:
		return http.StatusBadRequest
	case err != nil:
		return http.StatusInternalServerError
	case res != nil && res.Status == models.StatusBlocked:
		return http.StatusUnprocessableEntity
	}
	return http.StatusOK
}

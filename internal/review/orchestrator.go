package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Lllllllleong/lessonreview/internal/models"
	"github.com/Lllllllleong/lessonreview/internal/prompts"
)

var (
	// ErrReviewFailed wraps the last cause once every attempt has failed.
	ErrReviewFailed = errors.New("review failed")
	// ErrPersistFailed wraps a run store failure after a successful review.
	ErrPersistFailed = errors.New("failed to persist qa run")
)

// PromptResolver picks the system instruction for a mode.
type PromptResolver interface {
	Resolve(ctx context.Context, mode models.Mode) prompts.Resolved
}

// RunStore persists audit records. Records are only ever created.
type RunStore interface {
	Create(ctx context.Context, run *models.QARun) (string, error)
}

// RunInput is everything a review needs once the deck has passed the checks.
type RunInput struct {
	Slides                  []models.NormalizedSlide
	Mode                    models.Mode
	Title                   string
	SourceType              models.SourceType
	DeterministicFlags      []string
	NotesDetectedCount      int
	UserID                  string
	SourceHash              string
	NotesPattern            models.NotesPattern
	NormalizationConfidence float64
}

// Orchestrator runs prompt resolution, the AI review with its single retry, and persistence.
type Orchestrator struct {
	prompts PromptResolver
	client  *Client
	store   RunStore
	policy  RetryPolicy
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRetryPolicy overrides DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(o *Orchestrator) { o.policy = p }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

func NewOrchestrator(resolver PromptResolver, gen Generator, store RunStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		prompts: resolver,
		client:  NewClient(gen),
		store:   store,
		policy:  DefaultRetryPolicy,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run reviews one deck and writes exactly one QARun on success.
func (o *Orchestrator) Run(ctx context.Context, in RunInput) (*models.QARun, error) {
	start := o.now()
	logCtx := o.logger.With("mode", in.Mode, "title", in.Title)

	prompt := o.prompts.Resolve(ctx, in.Mode)
	logCtx.Info("Resolved review prompt", "promptVersion", prompt.Version, "source", prompt.Source)

	req := GenerateRequest{
		SystemInstruction: prompt.Instruction,
		Transcript:        BuildTranscript(in.Title, in.Mode, in.Slides),
	}

	attempt, attempts, err := Retry(ctx, o.policy, logCtx, func(ctx context.Context, n int) (*Attempt, error) {
		logCtx.Info("Requesting AI review", "attempt", n)
		return o.client.Review(ctx, req)
	})
	if err != nil {
		logCtx.Error("AI review failed", "error", err)
		return nil, fmt.Errorf("%w for mode %s: %w", ErrReviewFailed, in.Mode, err)
	}

	run := &models.QARun{
		Mode:                    in.Mode,
		Title:                   in.Title,
		SourceType:              in.SourceType,
		SourceHash:              in.SourceHash,
		NormalizedSlideCount:    len(in.Slides),
		NotesDetectedCount:      in.NotesDetectedCount,
		DetectedNotesPattern:    in.NotesPattern,
		NormalizationConfidence: in.NormalizationConfidence,
		DeterministicFlags:      append([]string{}, in.DeterministicFlags...),
		Verdict:                 attempt.Result.Verdict,
		TotalScore:              attempt.Result.TotalScore,
		StructuredScores:        *attempt.Result,
		FullReport:              attempt.Result.Clone(),
		RawAIResponse:           attempt.Raw,
		PromptVersion:           prompt.Version,
		Model:                   o.client.Model(),
		Attempts:                attempts,
		ExecutionTimeMS:         o.now().Sub(start).Milliseconds(),
		CreatedBy:               in.UserID,
		CreatedAt:               o.now(),
	}

	id, err := o.store.Create(ctx, run)
	if err != nil {
		logCtx.Error("Failed to persist QA run", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}
	run.ID = id

	logCtx.Info("QA run recorded", "runId", id, "verdict", run.Verdict, "totalScore", run.TotalScore, "attempts", attempts)
	return run, nil
}

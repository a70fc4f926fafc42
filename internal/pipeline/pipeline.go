// Package pipeline runs one lesson deck from PDF bytes to a persisted QA run.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/Lllllllleong/lessonreview/internal/checks"
	"github.com/Lllllllleong/lessonreview/internal/models"
	"github.com/Lllllllleong/lessonreview/internal/normalize"
	"github.com/Lllllllleong/lessonreview/internal/review"
)

// PageExtractor turns PDF bytes into raw pages.
type PageExtractor interface {
	Extract(ctx context.Context, pdf []byte) ([]models.RawPage, error)
}

// Reviewer runs the AI review and persists the result.
type Reviewer interface {
	Run(ctx context.Context, in review.RunInput) (*models.QARun, error)
}

// Input is one review request.
type Input struct {
	PDF        []byte
	SourceType models.SourceType
	Mode       models.Mode
	Title      string
	UserID     string
}

// Outcome is the result of a pipeline run. A blocked outcome is not an error:
// the deck failed a critical check and no AI review was attempted.
type Outcome struct {
	RunID         string                     `json:"runId,omitempty"`
	Run           *models.QARun              `json:"run,omitempty"`
	Normalization models.NormalizationResult `json:"normalization"`
	Deterministic models.DeterministicResult `json:"deterministic"`
	Blocked       bool                       `json:"blocked"`
	SourceHash    string                     `json:"sourceHash"`
}

type Pipeline struct {
	extractor PageExtractor
	reviewer  Reviewer
	logger    *slog.Logger
}

// New builds a pipeline. reviewer may be nil for check-only use.
func New(extractor PageExtractor, reviewer Reviewer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{extractor: extractor, reviewer: reviewer, logger: logger}
}

// Run executes every stage in order and stops at the first failure.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Outcome, error) {
	if p.reviewer == nil {
		return nil, stageErr(StageInput, errors.New("pipeline has no reviewer configured"))
	}

	out, err := p.Check(ctx, in)
	if err != nil {
		return nil, err
	}
	if out.Blocked {
		return out, nil
	}

	logCtx := p.logger.With("mode", in.Mode, "title", in.Title, "sourceHash", out.SourceHash)
	run, err := p.reviewer.Run(ctx, review.RunInput{
		Slides:                  out.Normalization.Slides,
		Mode:                    in.Mode,
		Title:                   in.Title,
		SourceType:              in.SourceType,
		DeterministicFlags:      out.Deterministic.Flags,
		NotesDetectedCount:      out.Normalization.NotesDetectedCount(),
		UserID:                  in.UserID,
		SourceHash:              out.SourceHash,
		NotesPattern:            out.Normalization.DetectedNotesPattern,
		NormalizationConfidence: out.Normalization.NormalizationConfidence,
	})
	if err != nil {
		if errors.Is(err, review.ErrPersistFailed) {
			return nil, stageErr(StagePersistence, err)
		}
		return nil, stageErr(StageReview, err)
	}

	out.Run = run
	out.RunID = run.ID
	logCtx.Info("Lesson review complete.", "runId", run.ID, "verdict", run.Verdict)
	return out, nil
}

// Check runs extraction, normalization and the deterministic checks without
// calling the AI service or writing anything.
func (p *Pipeline) Check(ctx context.Context, in Input) (*Outcome, error) {
	if err := validate(in); err != nil {
		return nil, stageErr(StageInput, err)
	}
	strategy, err := normalize.For(in.SourceType)
	if err != nil {
		return nil, stageErr(StageInput, err)
	}

	out := &Outcome{SourceHash: hashBytes(in.PDF)}
	logCtx := p.logger.With("mode", in.Mode, "title", in.Title, "sourceHash", out.SourceHash)

	pages, err := p.extractor.Extract(ctx, in.PDF)
	if err != nil {
		logCtx.Error("Page extraction failed", "error", err)
		return nil, stageErr(StageExtraction, err)
	}
	logCtx.Info("Pages extracted.", "pageCount", len(pages))

	out.Normalization = strategy.Normalize(pages)
	if len(out.Normalization.Slides) == 0 {
		logCtx.Error("Normalization produced no slides", "pageCount", len(pages))
		return nil, stageErr(StageNormalization, ErrNothingExtracted)
	}
	logCtx.Info("Slides normalized.",
		"slideCount", len(out.Normalization.Slides),
		"notesPattern", out.Normalization.DetectedNotesPattern,
		"confidence", out.Normalization.NormalizationConfidence,
	)

	out.Deterministic = checks.Run(out.Normalization.Slides, in.Mode, in.Title)
	if out.Deterministic.CriticalFail {
		out.Blocked = true
		logCtx.Warn("Deck blocked by deterministic checks.", "flags", out.Deterministic.Flags)
	}
	return out, nil
}

func validate(in Input) error {
	if !slices.Contains(models.Modes, in.Mode) {
		return fmt.Errorf("unknown review mode %q", in.Mode)
	}
	if _, err := models.ParseSourceType(string(in.SourceType)); err != nil {
		return err
	}
	if strings.TrimSpace(in.UserID) == "" {
		return errors.New("caller identity is required")
	}
	return nil
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

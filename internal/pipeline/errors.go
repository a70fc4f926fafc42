package pipeline

import (
	"errors"
	"fmt"
)

// Stage names the step of the pipeline that failed.
type Stage string

const (
	StageInput         Stage = "input"
	StageExtraction    Stage = "extraction"
	StageNormalization Stage = "normalization"
	StageReview        Stage = "review"
	StagePersistence   Stage = "persistence"
)

// ErrNothingExtracted means the document produced no slides; the deck
// usually needs to be re-exported.
var ErrNothingExtracted = errors.New("no slides could be extracted from the document")

// StageError is every failure Run returns.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}

// StageOf reports the failed stage, or "" if err did not come from a pipeline.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

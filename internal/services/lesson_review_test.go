package services

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"github.com/Lllllllleong/lessonreview/internal/gcp"
	"github.com/Lllllllleong/lessonreview/internal/models"
	"github.com/Lllllllleong/lessonreview/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	inputs  []pipeline.Input
	outcome *pipeline.Outcome
	err     error
}

func (f *fakeRunner) Run(_ context.Context, in pipeline.Input) (*pipeline.Outcome, error) {
	f.inputs = append(f.inputs, in)
	return f.outcome, f.err
}

type fakeExporter struct {
	runs []*models.QARun
	err  error
}

func (f *fakeExporter) Export(_ context.Context, run *models.QARun) error {
	f.runs = append(f.runs, run)
	return f.err
}

type fakeTrigger struct {
	payloads []gcp.RevisionPayload
	err      error
}

func (f *fakeTrigger) Trigger(_ context.Context, p gcp.RevisionPayload) (string, error) {
	f.payloads = append(f.payloads, p)
	return "executions/1", f.err
}

type fetchCall struct{ bucket, object string }

func newTestFunction(runner *fakeRunner) (*LessonReviewFunction, *[]fetchCall, *fakeExporter, *fakeTrigger) {
	var calls []fetchCall
	exporter := &fakeExporter{}
	trigger := &fakeTrigger{}
	f := &LessonReviewFunction{
		runner: runner,
		fetch: func(_ context.Context, bucket, object string) ([]byte, error) {
			calls = append(calls, fetchCall{bucket, object})
			return []byte("%PDF from gcs"), nil
		},
		reports:   exporter,
		revisions: trigger,
	}
	return f, &calls, exporter, trigger
}

func successOutcome(verdict models.Verdict, revision bool) *pipeline.Outcome {
	run := &models.QARun{
		ID:         "run-1",
		Mode:       models.ModeFullLesson,
		Verdict:    verdict,
		TotalScore: 70,
		FullReport: models.QAResult{Verdict: verdict, RevisionRequired: revision},
	}
	return &pipeline.Outcome{
		RunID:         "run-1",
		Run:           run,
		Deterministic: models.DeterministicResult{DeterministicPass: true, Flags: []string{}},
	}
}

func inlineRequest() *models.ReviewRequest {
	return &models.ReviewRequest{
		Title:      "Ecosystems",
		Mode:       "full-lesson",
		SourceType: "inline_notes",
		UserID:     "teacher-1",
		PDFBase64:  base64.StdEncoding.EncodeToString([]byte("%PDF inline")),
	}
}

func TestProcess_Success(t *testing.T) {
	runner := &fakeRunner{outcome: successOutcome(models.VerdictPass, false)}
	f, calls, exporter, trigger := newTestFunction(runner)

	res, err := f.Process(context.Background(), inlineRequest())

	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, res.Status)
	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, http.StatusOK, HTTPStatus(res, err))
	require.Len(t, runner.inputs, 1)
	assert.Equal(t, []byte("%PDF inline"), runner.inputs[0].PDF)
	assert.Equal(t, models.ModeFullLesson, runner.inputs[0].Mode)
	assert.Empty(t, *calls)
	assert.Len(t, exporter.runs, 1)
	assert.Empty(t, trigger.payloads)
}

func TestProcess_GCSUri(t *testing.T) {
	runner := &fakeRunner{outcome: successOutcome(models.VerdictPass, false)}
	f, calls, _, _ := newTestFunction(runner)
	req := inlineRequest()
	req.PDFBase64 = ""
	req.GCSUri = "gs://decks/uploads/ecosystems.pdf"

	_, err := f.Process(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, []fetchCall{{"decks", "uploads/ecosystems.pdf"}}, *calls)
	assert.Equal(t, []byte("%PDF from gcs"), runner.inputs[0].PDF)
}

func TestProcess_RevisionFollowUp(t *testing.T) {
	tests := []struct {
		name     string
		verdict  models.Verdict
		revision bool
		want     bool
	}{
		{"pass", models.VerdictPass, false, false},
		{"warnings", models.VerdictPassWithWarnings, false, false},
		{"flagged by reviewer", models.VerdictPassWithWarnings, true, true},
		{"revision required", models.VerdictRevisionRequired, false, true},
		{"fail", models.VerdictFail, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _, _, trigger := newTestFunction(&fakeRunner{outcome: successOutcome(tt.verdict, tt.revision)})

			_, err := f.Process(context.Background(), inlineRequest())

			require.NoError(t, err)
			assert.Equal(t, tt.want, len(trigger.payloads) == 1)
		})
	}
}

func TestProcess_SideEffectFailuresDoNotFailTheRun(t *testing.T) {
	f, _, exporter, trigger := newTestFunction(&fakeRunner{outcome: successOutcome(models.VerdictFail, true)})
	exporter.err = errors.New("bucket missing")
	trigger.err = errors.New("workflow missing")

	res, err := f.Process(context.Background(), inlineRequest())

	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, res.Status)
}

func TestProcess_Blocked(t *testing.T) {
	runner := &fakeRunner{outcome: &pipeline.Outcome{
		Blocked:       true,
		Deterministic: models.DeterministicResult{CriticalFail: true, Flags: []string{"Lesson title is missing or too short."}},
	}}
	f, _, exporter, _ := newTestFunction(runner)

	res, err := f.Process(context.Background(), inlineRequest())

	require.NoError(t, err)
	assert.Equal(t, models.StatusBlocked, res.Status)
	assert.Equal(t, []string{"Lesson title is missing or too short."}, res.Flags)
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(res, err))
	assert.Empty(t, exporter.runs)
}

func TestProcess_BadInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.ReviewRequest)
	}{
		{"unknown mode", func(r *models.ReviewRequest) { r.Mode = "lightning" }},
		{"unknown source type", func(r *models.ReviewRequest) { r.SourceType = "notes_pane" }},
		{"no pdf", func(r *models.ReviewRequest) { r.PDFBase64 = "" }},
		{"both sources", func(r *models.ReviewRequest) { r.GCSUri = "gs://decks/a.pdf" }},
		{"bad base64", func(r *models.ReviewRequest) { r.PDFBase64 = "%%%" }},
		{"bad gcs uri", func(r *models.ReviewRequest) {
			r.PDFBase64 = ""
			r.GCSUri = "decks/a.pdf"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{}
			f, _, _, _ := newTestFunction(runner)
			req := inlineRequest()
			tt.mutate(req)

			res, err := f.Process(context.Background(), req)

			require.Error(t, err)
			assert.Equal(t, models.StatusFailed, res.Status)
			assert.Equal(t, "input", res.Stage)
			assert.Equal(t, http.StatusBadRequest, HTTPStatus(res, err))
			assert.Empty(t, runner.inputs)
		})
	}
}

func TestProcess_PipelineFailure(t *testing.T) {
	cause := &pipeline.StageError{Stage: pipeline.StageReview, Err: errors.New("review failed for mode full-lesson: timeout")}
	f, _, _, _ := newTestFunction(&fakeRunner{err: cause})

	res, err := f.Process(context.Background(), inlineRequest())

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "review", res.Stage)
	assert.Contains(t, res.Error, "timeout")
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(res, err))
}

func TestProcessUpload(t *testing.T) {
	runner := &fakeRunner{outcome: successOutcome(models.VerdictPass, false)}
	f, calls, _, _ := newTestFunction(runner)

	res, err := f.ProcessUpload(context.Background(), GCSEvent{
		Bucket:   "decks",
		Name:     "stem-qa/separate_notes/forces-and-motion.pdf",
		Metadata: map[string]string{"uploadedBy": "designer-2"},
	})

	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, res.Status)
	assert.Equal(t, []fetchCall{{"decks", "stem-qa/separate_notes/forces-and-motion.pdf"}}, *calls)
	require.Len(t, runner.inputs, 1)
	in := runner.inputs[0]
	assert.Equal(t, models.ModeStemQA, in.Mode)
	assert.Equal(t, models.SourceTypeSeparateNotes, in.SourceType)
	assert.Equal(t, "forces-and-motion", in.Title)
	assert.Equal(t, "designer-2", in.UserID)
}

func TestUploadInput(t *testing.T) {
	in, err := uploadInput(GCSEvent{
		Name:     "chunk-qa/inline_notes/deck.PDF",
		Metadata: map[string]string{"title": "  Weather Systems "},
	})
	require.NoError(t, err)
	assert.Equal(t, "Weather Systems", in.Title)
	assert.Equal(t, defaultUploader, in.UserID)

	for _, name := range []string{
		"deck.pdf",
		"chunk-qa/deck.pdf",
		"chunk-qa/inline_notes/deck.pptx",
		"quick/inline_notes/deck.pdf",
		"chunk-qa/speaker/deck.pdf",
		"a/chunk-qa/inline_notes/deck.pdf",
	} {
		_, err := uploadInput(GCSEvent{Name: name})
		assert.Error(t, err, name)
	}
}

func TestProcessUpload_SkipsForeignObjects(t *testing.T) {
	runner := &fakeRunner{}
	f, calls, _, _ := newTestFunction(runner)

	res, err := f.ProcessUpload(context.Background(), GCSEvent{Bucket: "decks", Name: "reports/summary.json"})

	assert.NoError(t, err)
	assert.Nil(t, res)
	assert.Empty(t, *calls)
	assert.Empty(t, runner.inputs)
}

func TestReportObjectName(t *testing.T) {
	assert.Equal(t, "chunk-qa/abc.json", reportObjectName(&models.QARun{ID: "abc", Mode: models.ModeChunkQA}))
}

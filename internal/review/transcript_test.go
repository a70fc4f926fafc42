package review

import (
	"testing"

	"github.com/Lllllllleong/lessonreview/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestBuildTranscript(t *testing.T) {
	slides := []models.NormalizedSlide{
		{SlideNumber: 1, SlideText: "Fractions", SpeakerNotes: "Welcome the class."},
		{SlideNumber: 2, SlideText: " Halves and quarters "},
	}

	got := BuildTranscript(" Fractions 101 ", models.ModeChunkQA, slides)

	want := "Lesson title: Fractions 101\n" +
		"Review mode: chunk-qa\n" +
		"Slide count: 2\n" +
		"\n--- SLIDE 1 ---\n" +
		"Slide text:\nFractions\n" +
		"Speaker notes:\nWelcome the class.\n" +
		"\n--- SLIDE 2 ---\n" +
		"Slide text:\nHalves and quarters\n" +
		"Speaker notes:\n[none]\n"
	assert.Equal(t, want, got)
}

func TestBuildTranscript_NoSlides(t *testing.T) {
	got := BuildTranscript("Empty", models.ModeFullLesson, nil)

	assert.Equal(t, "Lesson title: Empty\nReview mode: full-lesson\nSlide count: 0\n", got)
}

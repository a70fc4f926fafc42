// Package normalize reconstructs slide text and speaker notes from
// undifferentiated PDF page text.
package normalize

import (
	"fmt"

	"github.com/Lllllllleong/lessonreview/internal/models"
)

// Strategy is one notes-recovery heuristic. Implementations are pure and
// never modify the pages they are given.
type Strategy interface {
	Normalize(pages []models.RawPage) models.NormalizationResult
	// Pattern is the notes pattern reported when at least one slide got notes.
	Pattern() models.NotesPattern
}

// For returns the strategy that matches how the deck was exported.
func For(sourceType models.SourceType) (Strategy, error) {
	switch sourceType {
	case models.SourceTypeInlineNotes:
		return NewInlineNotes(), nil
	case models.SourceTypeSeparateNotes:
		return NewPairedPages(), nil
	}
	return nil, fmt.Errorf("no normalizer for source type %q", sourceType)
}

// finish derives the pattern and confidence shared by both strategies.
func finish(slides []models.NormalizedSlide, found models.NotesPattern) models.NormalizationResult {
	res := models.NormalizationResult{
		Slides:               slides,
		DetectedNotesPattern: models.NotesPatternNone,
	}
	if len(slides) == 0 {
		res.Slides = []models.NormalizedSlide{}
		return res
	}
	withNotes := res.NotesDetectedCount()
	if withNotes > 0 {
		res.DetectedNotesPattern = found
	}
	res.NormalizationConfidence = float64(withNotes) / float64(len(slides))
	return res
}

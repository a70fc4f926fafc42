package normalize

import (
	"unicode/utf8"

	"github.com/Lllllllleong/lessonreview/internal/models"
)

// Heuristic constants for separate notes pages, kept configurable for tuning.
const (
	DefaultDenseItemFactor  = 1.3
	DefaultSmallFontFactor  = 0.85
	DefaultNotesPageMinText = 80
)

// PairedPages recovers notes exported as their own pages. A notes page is
// denser, or set in smaller type, than the deck average and carries a real
// amount of text.
type PairedPages struct {
	DenseItemFactor  float64
	SmallFontFactor  float64
	NotesPageMinText int
}

// NewPairedPages returns the strategy with its default thresholds.
func NewPairedPages() *PairedPages {
	return &PairedPages{
		DenseItemFactor:  DefaultDenseItemFactor,
		SmallFontFactor:  DefaultSmallFontFactor,
		NotesPageMinText: DefaultNotesPageMinText,
	}
}

// Pattern implements Strategy.
func (s *PairedPages) Pattern() models.NotesPattern { return models.NotesPatternSeparate }

// Normalize implements Strategy.
func (s *PairedPages) Normalize(pages []models.RawPage) models.NormalizationResult {
	isNotes := s.classify(pages)

	var slides []models.NormalizedSlide
	for i := 0; i < len(pages); {
		if isNotes[i] {
			if n := len(slides); n > 0 && !slides[n-1].HasNotes() {
				slides[n-1].SpeakerNotes = pages[i].Text
			}
			i++
			continue
		}

		slide := models.NormalizedSlide{SlideNumber: len(slides) + 1, SlideText: pages[i].Text}
		if i+1 < len(pages) && isNotes[i+1] {
			slide.SpeakerNotes = pages[i+1].Text
			i += 2
		} else {
			i++
		}
		slides = append(slides, slide)
	}
	return finish(slides, s.Pattern())
}

// classify marks notes pages against the corpus-wide means.
func (s *PairedPages) classify(pages []models.RawPage) []bool {
	out := make([]bool, len(pages))
	if len(pages) == 0 {
		return out
	}

	var items, font float64
	for _, p := range pages {
		items += float64(p.ItemCount)
		font += p.AvgFontSize
	}
	meanItems := items / float64(len(pages))
	meanFont := font / float64(len(pages))

	for i, p := range pages {
		dense := float64(p.ItemCount) > s.DenseItemFactor*meanItems
		small := p.AvgFontSize < s.SmallFontFactor*meanFont
		out[i] = (dense || small) && utf8.RuneCountInString(p.Text) > s.NotesPageMinText
	}
	return out
}

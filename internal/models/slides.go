package models

import "fmt"

// SourceType identifies how the exporting tool laid out speaker notes in the PDF.
type SourceType string

const (
	// SourceTypeInlineNotes is a deck whose notes share the page with the slide content.
	SourceTypeInlineNotes SourceType = "inline_notes"
	// SourceTypeSeparateNotes is a deck whose notes were exported as their own, text-dense pages.
	SourceTypeSeparateNotes SourceType = "separate_notes"
)

// ParseSourceType validates a caller-supplied source type flag.
func ParseSourceType(s string) (SourceType, error) {
	switch st := SourceType(s); st {
	case SourceTypeInlineNotes, SourceTypeSeparateNotes:
		return st, nil
	}
	return "", fmt.Errorf("unknown source type %q", s)
}

// NotesPattern is the notes layout the normalizer actually found.
type NotesPattern string

const (
	NotesPatternInline   NotesPattern = "inline"
	NotesPatternSeparate NotesPattern = "separate"
	NotesPatternNone     NotesPattern = "none"
)

// RawPage is one PDF page as produced by the extraction adapter.
type RawPage struct {
	PageNumber  int     `json:"pageNumber"`
	Text        string  `json:"text"`
	ItemCount   int     `json:"itemCount"`
	AvgFontSize float64 `json:"avgFontSize"`
}

// NormalizedSlide is one logical slide. An empty SpeakerNotes means the slide has no notes.
type NormalizedSlide struct {
	SlideNumber  int    `json:"slideNumber"`
	SlideText    string `json:"slideText"`
	SpeakerNotes string `json:"speakerNotes,omitempty"`
}

// HasNotes reports whether notes were found for the slide.
func (s NormalizedSlide) HasNotes() bool {
	return s.SpeakerNotes != ""
}

// NormalizationResult is the output of a normalizer strategy.
type NormalizationResult struct {
	Slides                  []NormalizedSlide `json:"slides"`
	DetectedNotesPattern    NotesPattern      `json:"detectedNotesPattern"`
	NormalizationConfidence float64           `json:"normalizationConfidence"`
}

// NotesDetectedCount returns how many slides carry speaker notes.
func (r NormalizationResult) NotesDetectedCount() int {
	n := 0
	for _, s := range r.Slides {
		if s.HasNotes() {
			n++
		}
	}
	return n
}

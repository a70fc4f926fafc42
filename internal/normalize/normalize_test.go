package normalize

import (
	"strings"
	"testing"

	"github.com/Lllllllleong/lessonreview/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	s, err := For(models.SourceTypeInlineNotes)
	require.NoError(t, err)
	assert.IsType(t, &InlineNotes{}, s)

	s, err = For(models.SourceTypeSeparateNotes)
	require.NoError(t, err)
	assert.IsType(t, &PairedPages{}, s)

	_, err = For("keynote")
	assert.Error(t, err)
}

func TestNormalize_ZeroPages(t *testing.T) {
	for _, s := range []Strategy{NewInlineNotes(), NewPairedPages()} {
		res := s.Normalize(nil)
		assert.Empty(t, res.Slides)
		assert.NotNil(t, res.Slides)
		assert.Equal(t, models.NotesPatternNone, res.DetectedNotesPattern)
		assert.Zero(t, res.NormalizationConfidence)
	}
}

func TestInlineNotes_Split(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantSlide string
		wantNotes string
	}{
		{
			name:      "whitespace run before capital",
			text:      "Adding Fractions with unlike denominators   Remember to check common multiples first",
			wantSlide: "Adding Fractions with unlike denominators",
			wantNotes: "Remember to check common multiples first",
		},
		{
			name:      "gap with short head is not a split",
			text:      "Intro text here.   Remember to smile and wave hello",
			wantSlide: "Intro text here.   Remember to smile and wave hello",
		},
		{
			name:      "bracket marker",
			text:      "Photosynthesis converts light to energy [Notes] Ask students what plants need",
			wantSlide: "Photosynthesis converts light to energy",
			wantNotes: "Ask students what plants need",
		},
		{
			name:      "singular lowercase bracket marker",
			text:      "Photosynthesis converts light to energy [note] Ask students what plants need",
			wantSlide: "Photosynthesis converts light to energy",
			wantNotes: "Ask students what plants need",
		},
		{
			name:      "speaker notes marker",
			text:      "The water cycle has four main stages SPEAKER NOTES: Draw the diagram on the board",
			wantSlide: "The water cycle has four main stages",
			wantNotes: "Draw the diagram on the board",
		},
		{
			name:      "falls through to the next separator when the gap head is short",
			text:      "Short   Title slide with enough words [Notes] Say hello to everyone",
			wantSlide: "Short   Title slide with enough words",
			wantNotes: "Say hello to everyone",
		},
		{
			name:      "marker with short tail is not a split",
			text:      "Photosynthesis converts light to energy [Notes] Ask",
			wantSlide: "Photosynthesis converts light to energy [Notes] Ask",
		},
		{
			name:      "no separator and few tokens",
			text:      "just a plain slide with no notes at all",
			wantSlide: "just a plain slide with no notes at all",
		},
	}

	s := NewInlineNotes()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.Normalize([]models.RawPage{{PageNumber: 1, Text: tt.text}})
			require.Len(t, res.Slides, 1)
			assert.Equal(t, tt.wantSlide, res.Slides[0].SlideText)
			assert.Equal(t, tt.wantNotes, res.Slides[0].SpeakerNotes)
		})
	}
}

func words(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = prefix + string(rune('a'+i%26)) + string(rune('a'+i/26))
	}
	return out
}

func TestInlineNotes_PositionalFallback(t *testing.T) {
	tokens := words("w", 40)
	res := NewInlineNotes().Normalize([]models.RawPage{{PageNumber: 1, Text: strings.Join(tokens, " ")}})

	require.Len(t, res.Slides, 1)
	assert.Equal(t, strings.Join(tokens[:26], " "), res.Slides[0].SlideText)
	assert.Equal(t, strings.Join(tokens[26:], " "), res.Slides[0].SpeakerNotes)
}

func TestInlineNotes_PositionalNeedsMoreThanThirtyTokens(t *testing.T) {
	text := strings.Join(words("w", 30), " ")
	res := NewInlineNotes().Normalize([]models.RawPage{{PageNumber: 1, Text: text}})

	require.Len(t, res.Slides, 1)
	assert.Equal(t, text, res.Slides[0].SlideText)
	assert.False(t, res.Slides[0].HasNotes())
}

func TestInlineNotes_PatternAndConfidence(t *testing.T) {
	pages := []models.RawPage{
		{PageNumber: 3, Text: "Photosynthesis converts light to energy [Notes] Ask students what plants need"},
		{PageNumber: 4, Text: "Plain slide"},
	}
	res := NewInlineNotes().Normalize(pages)

	require.Len(t, res.Slides, 2)
	assert.Equal(t, 1, res.Slides[0].SlideNumber)
	assert.Equal(t, 2, res.Slides[1].SlideNumber)
	assert.Equal(t, models.NotesPatternInline, res.DetectedNotesPattern)
	assert.InDelta(t, 0.5, res.NormalizationConfidence, 1e-9)

	res = NewInlineNotes().Normalize(pages[1:])
	assert.Equal(t, models.NotesPatternNone, res.DetectedNotesPattern)
	assert.Zero(t, res.NormalizationConfidence)
}

var longNotes = strings.Repeat("Walk the class through each worked example slowly. ", 3)

func TestPairedPages_DenseTrailingPages(t *testing.T) {
	pages := []models.RawPage{
		{PageNumber: 1, Text: "Slide one", ItemCount: 10, AvgFontSize: 20},
		{PageNumber: 2, Text: longNotes + "one", ItemCount: 30, AvgFontSize: 20},
		{PageNumber: 3, Text: "Slide two", ItemCount: 10, AvgFontSize: 20},
		{PageNumber: 4, Text: longNotes + "two", ItemCount: 30, AvgFontSize: 20},
	}
	res := NewPairedPages().Normalize(pages)

	require.Len(t, res.Slides, 2)
	assert.Equal(t, models.NormalizedSlide{SlideNumber: 1, SlideText: "Slide one", SpeakerNotes: longNotes + "one"}, res.Slides[0])
	assert.Equal(t, models.NormalizedSlide{SlideNumber: 2, SlideText: "Slide two", SpeakerNotes: longNotes + "two"}, res.Slides[1])
	assert.Equal(t, models.NotesPatternSeparate, res.DetectedNotesPattern)
	assert.InDelta(t, 1.0, res.NormalizationConfidence, 1e-9)
}

func TestPairedPages_SmallFontPage(t *testing.T) {
	pages := []models.RawPage{
		{PageNumber: 1, Text: "Slide one", ItemCount: 5, AvgFontSize: 20},
		{PageNumber: 2, Text: longNotes, ItemCount: 5, AvgFontSize: 12},
		{PageNumber: 3, Text: "Slide two", ItemCount: 5, AvgFontSize: 20},
	}
	res := NewPairedPages().Normalize(pages)

	require.Len(t, res.Slides, 2)
	assert.Equal(t, longNotes, res.Slides[0].SpeakerNotes)
	assert.False(t, res.Slides[1].HasNotes())
	assert.Equal(t, 2, res.Slides[1].SlideNumber)
	assert.InDelta(t, 0.5, res.NormalizationConfidence, 1e-9)
}

func TestPairedPages_ConsecutiveNotesPages(t *testing.T) {
	pages := []models.RawPage{
		{PageNumber: 1, Text: "Slide one", ItemCount: 10, AvgFontSize: 20},
		{PageNumber: 2, Text: longNotes + "first", ItemCount: 40, AvgFontSize: 20},
		{PageNumber: 3, Text: longNotes + "second", ItemCount: 40, AvgFontSize: 20},
		{PageNumber: 4, Text: "Slide two", ItemCount: 10, AvgFontSize: 20},
	}
	res := NewPairedPages().Normalize(pages)

	require.Len(t, res.Slides, 2)
	assert.Equal(t, longNotes+"first", res.Slides[0].SpeakerNotes)
	assert.False(t, res.Slides[1].HasNotes())
}

func TestPairedPages_LeadingNotesPageIsDropped(t *testing.T) {
	pages := []models.RawPage{
		{PageNumber: 1, Text: longNotes, ItemCount: 40, AvgFontSize: 20},
		{PageNumber: 2, Text: "Slide one", ItemCount: 10, AvgFontSize: 20},
		{PageNumber: 3, Text: "Slide two", ItemCount: 10, AvgFontSize: 20},
	}
	res := NewPairedPages().Normalize(pages)

	require.Len(t, res.Slides, 2)
	assert.Equal(t, "Slide one", res.Slides[0].SlideText)
	assert.Equal(t, 1, res.Slides[0].SlideNumber)
	assert.Equal(t, models.NotesPatternNone, res.DetectedNotesPattern)
	assert.Zero(t, res.NormalizationConfidence)
}

func TestPairedPages_ShortDensePageIsASlide(t *testing.T) {
	pages := []models.RawPage{
		{PageNumber: 1, Text: "Slide one", ItemCount: 10, AvgFontSize: 20},
		{PageNumber: 2, Text: "Dense but short", ItemCount: 40, AvgFontSize: 20},
	}
	res := NewPairedPages().Normalize(pages)

	require.Len(t, res.Slides, 2)
	assert.False(t, res.Slides[0].HasNotes())
}

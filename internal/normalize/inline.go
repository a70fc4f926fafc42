package normalize

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Lllllllleong/lessonreview/internal/models"
)

// Heuristic constants for inline notes. They have no documented derivation
// and are kept configurable for empirical tuning.
const (
	DefaultMinHeadChars      = 20
	DefaultMinTailChars      = 10
	DefaultPositionalTokens  = 30
	DefaultPositionalSplit   = 0.65
	DefaultPositionalTailLen = 20
	DefaultPositionalTailTok = 5
)

var (
	// A run of three or more whitespace characters right before a capital letter.
	gapBeforeCapital = regexp.MustCompile(`\s{3,}[A-Z]`)
	bracketNotes     = regexp.MustCompile(`(?i)\[notes?\]`)
	speakerNotes     = regexp.MustCompile(`(?i)speaker notes:`)
)

// separator splits page text into head and tail, reporting false when it does not apply.
type separator func(text string) (head, tail string, ok bool)

// InlineNotes recovers notes that share a page with the slide content.
type InlineNotes struct {
	MinHeadChars int
	MinTailChars int

	// Positional fallback: pages with more than PositionalTokens tokens are cut
	// at PositionalSplit of their tokens.
	PositionalTokens  int
	PositionalSplit   float64
	PositionalTailLen int
	PositionalTailTok int

	separators []separator
}

// NewInlineNotes returns the strategy with its default thresholds.
func NewInlineNotes() *InlineNotes {
	return &InlineNotes{
		MinHeadChars:      DefaultMinHeadChars,
		MinTailChars:      DefaultMinTailChars,
		PositionalTokens:  DefaultPositionalTokens,
		PositionalSplit:   DefaultPositionalSplit,
		PositionalTailLen: DefaultPositionalTailLen,
		PositionalTailTok: DefaultPositionalTailTok,
		separators: []separator{
			splitAtGap,
			splitAtMarker(bracketNotes),
			splitAtMarker(speakerNotes),
		},
	}
}

// Pattern implements Strategy.
func (s *InlineNotes) Pattern() models.NotesPattern { return models.NotesPatternInline }

// Normalize implements Strategy.
func (s *InlineNotes) Normalize(pages []models.RawPage) models.NormalizationResult {
	slides := make([]models.NormalizedSlide, 0, len(pages))
	for i, p := range pages {
		slide := models.NormalizedSlide{SlideNumber: i + 1, SlideText: p.Text}
		if head, tail, ok := s.split(p.Text); ok {
			slide.SlideText = head
			slide.SpeakerNotes = tail
		}
		slides = append(slides, slide)
	}
	return finish(slides, s.Pattern())
}

func (s *InlineNotes) split(text string) (string, string, bool) {
	for _, sep := range s.separators {
		head, tail, ok := sep(text)
		if !ok {
			continue
		}
		head, tail = strings.TrimSpace(head), strings.TrimSpace(tail)
		if utf8.RuneCountInString(head) > s.MinHeadChars && utf8.RuneCountInString(tail) > s.MinTailChars {
			return head, tail, true
		}
	}
	return s.positional(text)
}

func (s *InlineNotes) positional(text string) (string, string, bool) {
	tokens := strings.Fields(text)
	if len(tokens) <= s.PositionalTokens {
		return "", "", false
	}
	cut := int(math.Floor(float64(len(tokens)) * s.PositionalSplit))
	tailTokens := tokens[cut:]
	tail := strings.Join(tailTokens, " ")
	if utf8.RuneCountInString(tail) <= s.PositionalTailLen || len(tailTokens) <= s.PositionalTailTok {
		return "", "", false
	}
	return strings.Join(tokens[:cut], " "), tail, true
}

func splitAtGap(text string) (string, string, bool) {
	loc := gapBeforeCapital.FindStringIndex(text)
	if loc == nil {
		return "", "", false
	}
	// The tail keeps the capital letter that ends the match.
	return text[:loc[0]], text[loc[1]-1:], true
}

func splitAtMarker(re *regexp.Regexp) separator {
	return func(text string) (string, string, bool) {
		loc := re.FindStringIndex(text)
		if loc == nil {
			return "", "", false
		}
		return text[:loc[0]], text[loc[1]:], true
	}
}

// Package checks runs the rule-based structural checks that gate the AI review.
package checks

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Lllllllleong/lessonreview/internal/models"
)

const (
	minSlideTextChars   = 5
	minTitleChars       = 2
	minTotalTextChars   = 50
	criticalMissingNote = 0.8
)

// modeRule holds the per-mode thresholds.
type modeRule struct {
	MinSlides       int
	MaxMissingNotes float64
}

var rules = map[models.Mode]modeRule{
	models.ModeFullLesson:   {MinSlides: 5, MaxMissingNotes: 0.4},
	models.ModeChunkQA:      {MinSlides: 2, MaxMissingNotes: 0.5},
	models.ModeStemQA:       {MinSlides: 3, MaxMissingNotes: 0.4},
	models.ModePostDesignQA: {MinSlides: 3, MaxMissingNotes: 0.6},
}

// Run evaluates every rule against the normalized slides. All flags are
// collected; only some of them make the result a critical failure.
func Run(slides []models.NormalizedSlide, mode models.Mode, title string) models.DeterministicResult {
	rule, ok := rules[mode]
	if !ok {
		rule = rules[models.ModeFullLesson]
	}

	var res models.DeterministicResult
	flag := func(critical bool, format string, args ...any) {
		res.Flags = append(res.Flags, fmt.Sprintf(format, args...))
		if critical {
			res.CriticalFail = true
		}
	}

	if len(slides) < rule.MinSlides {
		flag(true, "Only %d slides detected; %s review requires at least %d.", len(slides), mode, rule.MinSlides)
	}

	var short []string
	for _, s := range slides {
		if utf8.RuneCountInString(strings.TrimSpace(s.SlideText)) < minSlideTextChars {
			short = append(short, strconv.Itoa(s.SlideNumber))
		}
	}
	if len(short) > 0 {
		flag(false, "Slides with little or no text: %s.", strings.Join(short, ", "))
	}

	missing := missingNotesRatio(slides)
	if missing > rule.MaxMissingNotes {
		flag(missing > criticalMissingNote, "%.0f%% of slides have no speaker notes (limit for %s is %.0f%%).",
			missing*100, mode, rule.MaxMissingNotes*100)
	}

	if utf8.RuneCountInString(strings.TrimSpace(title)) < minTitleChars {
		flag(true, "Lesson title is missing or too short.")
	}

	total := totalText(slides)
	if utf8.RuneCountInString(total) < minTotalTextChars {
		flag(true, "Only %d characters of slide text extracted; the PDF may not have exported text correctly.",
			utf8.RuneCountInString(total))
	}

	if mode == models.ModeStemQA && !strings.ContainsFunc(total, unicode.IsDigit) {
		flag(false, "No numbers found in any slide; STEM lessons usually include worked quantities.")
	}

	res.DeterministicPass = len(res.Flags) == 0
	if res.Flags == nil {
		res.Flags = []string{}
	}
	return res
}

func missingNotesRatio(slides []models.NormalizedSlide) float64 {
	if len(slides) == 0 {
		return 1
	}
	without := 0
	for _, s := range slides {
		if strings.TrimSpace(s.SpeakerNotes) == "" {
			without++
		}
	}
	return float64(without) / float64(len(slides))
}

func totalText(slides []models.NormalizedSlide) string {
	parts := make([]string, len(slides))
	for i, s := range slides {
		parts[i] = s.SlideText
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

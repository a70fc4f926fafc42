package review

import (
	"fmt"
	"strings"

	"github.com/Lllllllleong/lessonreview/internal/models"
)

const noNotes = "[none]"

// BuildTranscript renders the slides as the user content sent to the reviewer.
func BuildTranscript(title string, mode models.Mode, slides []models.NormalizedSlide) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Lesson title: %s\n", strings.TrimSpace(title))
	fmt.Fprintf(&sb, "Review mode: %s\n", mode)
	fmt.Fprintf(&sb, "Slide count: %d\n", len(slides))

	for _, s := range slides {
		fmt.Fprintf(&sb, "\n--- SLIDE %d ---\n", s.SlideNumber)
		sb.WriteString("Slide text:\n")
		sb.WriteString(strings.TrimSpace(s.SlideText))
		sb.WriteString("\nSpeaker notes:\n")
		if s.HasNotes() {
			sb.WriteString(strings.TrimSpace(s.SpeakerNotes))
		} else {
			sb.WriteString(noNotes)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

package models

import "fmt"

// Mode is the kind of review requested for a lesson.
type Mode string

const (
	ModeFullLesson   Mode = "full-lesson"
	ModeChunkQA      Mode = "chunk-qa"
	ModeStemQA       Mode = "stem-qa"
	ModePostDesignQA Mode = "post-design-qa"
)

// Modes lists every supported review mode.
var Modes = []Mode{ModeFullLesson, ModeChunkQA, ModeStemQA, ModePostDesignQA}

// ParseMode validates a caller-supplied review mode.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown review mode %q", s)
}

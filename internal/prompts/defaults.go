package prompts

import (
	_ "embed"
	"fmt"

	"github.com/Lllllllleong/lessonreview/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// builtin maps each mode to the instruction baked into the binary.
var builtin = mustLoadDefaults(defaultsYAML)

func loadDefaults(data []byte) (map[models.Mode]string, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse default prompts: %w", err)
	}
	out := make(map[models.Mode]string, len(raw))
	for _, m := range models.Modes {
		text, ok := raw[string(m)]
		if !ok || text == "" {
			return nil, fmt.Errorf("default prompt for mode %s is missing", m)
		}
		out[m] = text
	}
	return out, nil
}

func mustLoadDefaults(data []byte) map[models.Mode]string {
	d, err := loadDefaults(data)
	if err != nil {
		panic(err)
	}
	return d
}

// Default returns the built-in instruction for a mode.
func Default(mode models.Mode) string {
	if text, ok := builtin[mode]; ok {
		return text
	}
	return builtin[models.ModeFullLesson]
}

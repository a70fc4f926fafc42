// Package prompts resolves the review instruction for a mode from the
// configuration store, the versioned prompt records, or the built-in defaults.
package prompts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Lllllllleong/lessonreview/internal/models"
)

// ErrNotFound is returned by stores that hold no prompt for the request.
var ErrNotFound = errors.New("prompt not found")

// Source records which tier produced the instruction.
type Source string

const (
	SourceConfig    Source = "config"
	SourceVersioned Source = "versioned"
	SourceBuiltin   Source = "builtin"
)

// ConfigEntry is a per-mode prompt override in the configuration store.
type ConfigEntry struct {
	Instruction string `firestore:"instruction"`
	IsLocked    bool   `firestore:"isLocked"`
}

// PromptVersion is a stored, versioned prompt record.
type PromptVersion struct {
	Mode        string    `firestore:"mode"`
	Version     int       `firestore:"version"`
	Instruction string    `firestore:"instruction"`
	IsActive    bool      `firestore:"isActive"`
	CreatedAt   time.Time `firestore:"createdAt"`
}

// ConfigStore looks up configuration entries by key.
type ConfigStore interface {
	PromptConfig(ctx context.Context, key string) (*ConfigEntry, error)
}

// VersionStore returns the active prompt version for a mode.
type VersionStore interface {
	ActiveVersion(ctx context.Context, mode models.Mode) (*PromptVersion, error)
}

// Resolved is the instruction a run will use plus its audit tag.
type Resolved struct {
	Instruction string
	Version     string
	Source      Source
}

type lookup struct {
	source Source
	find   func(ctx context.Context, mode models.Mode) (Resolved, error)
}

// Resolver tries each lookup in order and falls back to the built-in default.
type Resolver struct {
	lookups []lookup
	logger  *slog.Logger
}

// NewResolver builds the precedence chain. Nil stores are skipped.
func NewResolver(config ConfigStore, versions VersionStore, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{logger: logger}
	if config != nil {
		r.lookups = append(r.lookups, lookup{source: SourceConfig, find: fromConfig(config)})
	}
	if versions != nil {
		r.lookups = append(r.lookups, lookup{source: SourceVersioned, find: fromVersions(versions)})
	}
	return r
}

// Resolve always returns an instruction. Store errors are logged and the next
// tier is tried.
func (r *Resolver) Resolve(ctx context.Context, mode models.Mode) Resolved {
	for _, l := range r.lookups {
		res, err := l.find(ctx, mode)
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			r.logger.Warn("Prompt lookup failed, trying next source.", "source", l.source, "mode", mode, "error", err)
		case strings.TrimSpace(res.Instruction) == "":
			r.logger.Warn("Prompt source returned an empty instruction.", "source", l.source, "mode", mode)
		default:
			return res
		}
	}
	return Resolved{
		Instruction: Default(mode),
		Version:     fmt.Sprintf("%s:builtin", mode),
		Source:      SourceBuiltin,
	}
}

// ConfigKey is the configuration store key for a mode's prompt.
func ConfigKey(mode models.Mode) string {
	return "qa_prompt_" + strings.ReplaceAll(string(mode), "-", "_")
}

func fromConfig(store ConfigStore) func(context.Context, models.Mode) (Resolved, error) {
	return func(ctx context.Context, mode models.Mode) (Resolved, error) {
		entry, err := store.PromptConfig(ctx, ConfigKey(mode))
		if err != nil {
			return Resolved{}, err
		}
		lock := "unlocked"
		if entry.IsLocked {
			lock = "locked"
		}
		return Resolved{
			Instruction: entry.Instruction,
			Version:     fmt.Sprintf("%s:config:%s", mode, lock),
			Source:      SourceConfig,
		}, nil
	}
}

func fromVersions(store VersionStore) func(context.Context, models.Mode) (Resolved, error) {
	return func(ctx context.Context, mode models.Mode) (Resolved, error) {
		v, err := store.ActiveVersion(ctx, mode)
		if err != nil {
			return Resolved{}, err
		}
		return Resolved{
			Instruction: v.Instruction,
			Version:     fmt.Sprintf("%s:v%d", mode, v.Version),
			Source:      SourceVersioned,
		}, nil
	}
}

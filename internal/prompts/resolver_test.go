package prompts

import (
	"context"
	"errors"
	"testing"

	"github.com/Lllllllleong/lessonreview/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConfig struct {
	entries map[string]*ConfigEntry
	err     error
	keys    []string
}

func (f *fakeConfig) PromptConfig(_ context.Context, key string) (*ConfigEntry, error) {
	f.keys = append(f.keys, key)
	if f.err != nil {
		return nil, f.err
	}
	if e, ok := f.entries[key]; ok {
		return e, nil
	}
	return nil, ErrNotFound
}

type fakeVersions struct {
	versions map[models.Mode]*PromptVersion
	err      error
}

func (f *fakeVersions) ActiveVersion(_ context.Context, mode models.Mode) (*PromptVersion, error) {
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.versions[mode]; ok {
		return v, nil
	}
	return nil, ErrNotFound
}

func TestResolve_Precedence(t *testing.T) {
	config := &fakeConfig{entries: map[string]*ConfigEntry{
		"qa_prompt_stem_qa":  {Instruction: "locked stem prompt", IsLocked: true},
		"qa_prompt_chunk_qa": {Instruction: "draft chunk prompt"},
	}}
	versions := &fakeVersions{versions: map[models.Mode]*PromptVersion{
		models.ModeStemQA:     {Version: 4, Instruction: "stem v4"},
		models.ModeFullLesson: {Version: 7, Instruction: "full lesson v7"},
	}}
	r := NewResolver(config, versions, nil)

	tests := []struct {
		mode    models.Mode
		want    string
		version string
		source  Source
	}{
		{models.ModeStemQA, "locked stem prompt", "stem-qa:config:locked", SourceConfig},
		{models.ModeChunkQA, "draft chunk prompt", "chunk-qa:config:unlocked", SourceConfig},
		{models.ModeFullLesson, "full lesson v7", "full-lesson:v7", SourceVersioned},
		{models.ModePostDesignQA, Default(models.ModePostDesignQA), "post-design-qa:builtin", SourceBuiltin},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			got := r.Resolve(context.Background(), tt.mode)
			assert.Equal(t, tt.want, got.Instruction)
			assert.Equal(t, tt.version, got.Version)
			assert.Equal(t, tt.source, got.Source)
		})
	}
}

func TestResolve_StoreErrorsFallThrough(t *testing.T) {
	config := &fakeConfig{err: errors.New("firestore unavailable")}
	versions := &fakeVersions{versions: map[models.Mode]*PromptVersion{
		models.ModeFullLesson: {Version: 2, Instruction: "v2"},
	}}

	got := NewResolver(config, versions, nil).Resolve(context.Background(), models.ModeFullLesson)

	assert.Equal(t, "v2", got.Instruction)
	assert.Equal(t, []string{"qa_prompt_full_lesson"}, config.keys)

	got = NewResolver(config, &fakeVersions{err: errors.New("boom")}, nil).Resolve(context.Background(), models.ModeFullLesson)
	assert.Equal(t, SourceBuiltin, got.Source)
}

func TestResolve_EmptyInstructionFallsThrough(t *testing.T) {
	config := &fakeConfig{entries: map[string]*ConfigEntry{
		"qa_prompt_full_lesson": {Instruction: "  ", IsLocked: true},
	}}

	got := NewResolver(config, nil, nil).Resolve(context.Background(), models.ModeFullLesson)

	assert.Equal(t, SourceBuiltin, got.Source)
	assert.Equal(t, Default(models.ModeFullLesson), got.Instruction)
}

func TestDefaults_CoverEveryMode(t *testing.T) {
	for _, m := range models.Modes {
		assert.NotEmpty(t, Default(m), m)
	}

	_, err := loadDefaults([]byte("full-lesson: only one\n"))
	require.Error(t, err)
}

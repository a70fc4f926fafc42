package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/lessonreview/internal/models"
	"github.com/Lllllllleong/lessonreview/internal/pipeline"
)

// deckFlags are shared by the review and check commands.
type deckFlags struct {
	mode        string
	sourceType  string
	title       string
	user        string
	concurrency int
}

func (d *deckFlags) input(path string, pdf []byte) (pipeline.Input, error) {
	mode, err := models.ParseMode(d.mode)
	if err != nil {
		return pipeline.Input{}, err
	}
	sourceType, err := models.ParseSourceType(d.sourceType)
	if err != nil {
		return pipeline.Input{}, err
	}
	title := d.title
	if title == "" {
		title = titleFromPath(path)
	}
	return pipeline.Input{PDF: pdf, SourceType: sourceType, Mode: mode, Title: title, UserID: d.user}, nil
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func defaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "lessonqa"
}

// deckResult is one line of command output.
type deckResult struct {
	File   string `json:"file"`
	Error  string `json:"error,omitempty"`
	Result any    `json:"result,omitempty"`
}

// forEachDeck runs fn over every file with bounded concurrency. One deck
// failing does not stop the others; results keep the order of files.
func forEachDeck(ctx context.Context, files []string, limit int, fn func(ctx context.Context, path string, pdf []byte) (any, error)) ([]deckResult, int) {
	results := make([]deckResult, len(files))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, path := range files {
		g.Go(func() error {
			results[i].File = path
			pdf, err := os.ReadFile(path)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			res, err := fn(ctx, path, pdf)
			if res != nil {
				results[i].Result = res
			}
			if err != nil {
				results[i].Error = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	return results, failed
}

func writeResults(w io.Writer, results []deckResult, failed int) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d decks failed", failed, len(results))
	}
	return nil
}

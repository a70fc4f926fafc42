// Package pdftext turns an exported slide deck PDF into per-page text with
// the layout statistics the notes normalizer relies on.
package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Lllllllleong/lessonreview/internal/models"
)

// ErrEmptyInput is returned when the PDF payload is empty.
var ErrEmptyInput = errors.New("pdf payload is empty")

// Extractor validates PDF bytes with pdfcpu and lays out each page's glyphs
// as decoded by ledongthuc/pdf.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an Extractor. A nil logger falls back to slog.Default().
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract returns one RawPage per PDF page, in page order. Any read or
// content error fails the whole document; no partial page list is returned.
func (e *Extractor) Extract(ctx context.Context, data []byte) ([]models.RawPage, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	pctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu validate: %w", err)
	}

	pages, err := readPages(ctx, data)
	if err != nil {
		return nil, err
	}
	if len(pages) != pctx.PageCount {
		return nil, fmt.Errorf("page count mismatch: pdfcpu found %d, text reader found %d", pctx.PageCount, len(pages))
	}

	e.logger.Info("Extracted PDF pages.", "pageCount", len(pages), "bytes", len(data))
	return pages, nil
}

// readPages decodes every page. The reader panics on some malformed
// content streams; a panic fails the whole document.
func readPages(ctx context.Context, data []byte) (pages []models.RawPage, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("malformed pdf content: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	total := r.NumPage()
	pages = make([]models.RawPage, 0, total)
	for pageNr := 1; pageNr <= total; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var stats pageStats
		page := r.Page(pageNr)
		if !page.V.IsNull() && !page.V.Key("Contents").IsNull() {
			stats = layoutPage(page.Content().Text)
		}
		pages = append(pages, models.RawPage{
			PageNumber:  pageNr,
			Text:        stats.text,
			ItemCount:   stats.items,
			AvgFontSize: stats.avgFontSize(),
		})
	}
	return pages, nil
}

package pdftext

import (
	"math"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

const (
	// blockGap separates text blocks that sit far apart vertically on the page.
	blockGap = "   "
	// blockGapFactor is the baseline drop, in font sizes, that starts a new block.
	blockGapFactor = 1.5
	// sameLineFactor is how far, in font sizes, two baselines may differ and still share a line.
	sameLineFactor = 0.5
	// wordGapFactor is the horizontal gap, in font sizes, read as a word break.
	wordGapFactor = 0.25
	// fragmentGapFactor is the horizontal gap, in font sizes, that ends a fragment.
	fragmentGapFactor = 3
)

// pageStats is what one page yields.
type pageStats struct {
	text     string
	items    int
	sizeSum  float64
	sizeSeen int
}

func (s pageStats) avgFontSize() float64 {
	if s.sizeSeen == 0 {
		return 0
	}
	return s.sizeSum / float64(s.sizeSeen)
}

// fragment is a run of glyphs sharing font, size and baseline.
type fragment struct {
	font string
	size float64
	y    float64
	endX float64
}

func (f fragment) continuedBy(g pdf.Text, size float64) bool {
	if g.Font != f.font || math.Abs(size-f.size) > 0.01 {
		return false
	}
	if math.Abs(g.Y-f.y) > sameLineFactor*size {
		return false
	}
	gap := g.X - f.endX
	return gap >= -sameLineFactor*size && gap <= fragmentGapFactor*size
}

// layoutPage groups positioned glyphs into fragments and renders the page text.
// Fragments whose baseline drops more than blockGapFactor font sizes below the
// previous one start a new block.
func layoutPage(glyphs []pdf.Text) pageStats {
	var (
		out   strings.Builder
		stats pageStats
		cur   fragment
		open  bool
	)

	for _, g := range glyphs {
		s := cleanGlyph(g.S)
		if s == "" {
			continue
		}
		size := math.Abs(g.FontSize)

		if open && cur.continuedBy(g, size) {
			if g.X-cur.endX > wordGapFactor*size {
				out.WriteByte(' ')
			}
			out.WriteString(s)
			cur.endX = math.Max(cur.endX, g.X+g.W)
			continue
		}
		if strings.TrimSpace(s) == "" {
			continue
		}

		if open {
			out.WriteString(separator(cur, g, size))
		}
		cur = fragment{font: g.Font, size: size, y: g.Y, endX: g.X + g.W}
		open = true
		out.WriteString(s)

		stats.items++
		if size > 0 {
			stats.sizeSum += size
			stats.sizeSeen++
		}
	}

	stats.text = collapse(out.String())
	return stats
}

func separator(prev fragment, g pdf.Text, size float64) string {
	switch {
	case size > 0 && prev.y-g.Y > blockGapFactor*size:
		return "\n\n"
	case math.Abs(g.Y-prev.y) > sameLineFactor*size:
		return " "
	case g.X-prev.endX > wordGapFactor*size:
		return " "
	}
	return ""
}

// cleanGlyph maps whitespace controls to spaces and drops other control runes.
func cleanGlyph(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
}

// collapse squeezes whitespace inside each block and joins blocks with blockGap.
func collapse(raw string) string {
	var blocks []string
	for _, b := range strings.Split(raw, "\n\n") {
		if f := strings.Fields(b); len(f) > 0 {
			blocks = append(blocks, strings.Join(f, " "))
		}
	}
	return strings.Join(blocks, blockGap)
}

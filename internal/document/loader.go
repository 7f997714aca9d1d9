package document

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// fallback when the page carries no resolvable MediaBox (A4 height in points)
const defaultPageHeight = 842.0

// horizontal gap, relative to font size, above which two runs on the same
// line are separate words
const wordGapFactor = 0.3

// FileExtractor turns a PDF file into an ordered Block sequence.
type FileExtractor struct{}

func (FileExtractor) Extract(path string) ([]Block, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document %q: %w", path, err)
	}
	defer f.Close()

	var blocks []Block
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		height := pageHeight(page)
		texts := page.Content().Text
		sort.SliceStable(texts, func(i, j int) bool {
			// The library reports Y from the page bottom, so reading order
			// is descending Y, then ascending X within a line.
			if math.Abs(texts[i].Y-texts[j].Y) > lineTolerance {
				return texts[i].Y > texts[j].Y
			}
			return texts[i].X < texts[j].X
		})

		blocks = append(blocks, groupRuns(texts, height, pageNum)...)
	}

	return blocks, nil
}

// groupRuns merges consecutive glyph runs that share a baseline and font size
// into one Block, converting Y to a top-origin coordinate.
func groupRuns(texts []pdf.Text, pageHeight float64, pageNum int) []Block {
	var blocks []Block
	var sb strings.Builder
	var cur pdf.Text
	var lastEnd float64

	flush := func() {
		if sb.Len() == 0 {
			return
		}
		blocks = append(blocks, Block{
			Text:     sb.String(),
			X:        cur.X,
			Y:        pageHeight - cur.Y,
			FontSize: cur.FontSize,
			Page:     pageNum,
		})
		sb.Reset()
	}

	for _, t := range texts {
		if t.S == "" {
			continue
		}
		sameLine := sb.Len() > 0 &&
			math.Abs(t.Y-cur.Y) <= lineTolerance &&
			t.FontSize == cur.FontSize
		if !sameLine {
			flush()
			cur = t
			lastEnd = t.X
		}
		if sb.Len() > 0 && t.X-lastEnd > t.FontSize*wordGapFactor && !strings.HasSuffix(sb.String(), " ") {
			sb.WriteString(" ")
		}
		sb.WriteString(t.S)
		lastEnd = t.X + t.W
	}
	flush()

	return blocks
}

func pageHeight(page pdf.Page) float64 {
	v := page.V
	for !v.IsNull() {
		if mb := v.Key("MediaBox"); !mb.IsNull() && mb.Len() == 4 {
			return mb.Index(3).Float64() - mb.Index(1).Float64()
		}
		v = v.Key("Parent")
	}
	return defaultPageHeight
}

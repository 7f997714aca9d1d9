package document

import (
	"math"
	"regexp"
	"strings"
)

const (
	// vertical movement below this is the same line
	lineTolerance = 1.0
	// vertical gap beyond this many font sizes starts a new paragraph
	// rather than a simple line wrap
	paragraphGapFactor = 1.5
)

var (
	// table-of-contents leader runs ("Term ・・・・・・ 12")
	tocLeaderRe = regexp.MustCompile(`・{4,}|\.{6,}`)
	// stray single-glyph index artifacts: bare Hangul consonants or
	// capital letters used as alphabetical section tabs
	indexGlyphRe = regexp.MustCompile(`^[ㄱ-ㅎA-Z]$`)
)

// Parser converts an ordered Block sequence into a markdown-ish structured
// document: headings become "## <title>" lines and paragraphs are separated
// by blank lines. Front matter before StartMarker and back matter from
// EndMarker on are discarded, as are running headers, footers, TOC leader
// lines and stray index glyphs.
type Parser struct {
	// StartMarker is the exact text of the first real content heading.
	// Empty means content starts at the first block.
	StartMarker string
	// EndMarker signals the appendix/colophon; matched as a substring.
	// Empty means content never ends.
	EndMarker string
	// HeadingFontSize is the threshold above which a line-starting
	// fragment is a heading.
	HeadingFontSize float64
	// HeaderYLimit / FooterYLimit bound the content band: blocks above
	// the header limit or below the footer limit are running headers and
	// page numbers.
	HeaderYLimit float64
	FooterYLimit float64
}

type phase int

const (
	beforeContent phase = iota
	inContent
	afterContent
)

// scanState is the state threaded through the fold over the block sequence.
type scanState struct {
	phase        phase
	lastY        float64
	lastFontSize float64
	page         int
}

// Parse runs the layout state machine over blocks and returns the structured
// document. It is a pure function of its input: two passes over the same
// blocks yield identical output.
func (p Parser) Parse(blocks []Block) string {
	var out buffer
	st := scanState{lastY: -1, lastFontSize: -1}
	if p.StartMarker == "" {
		st.phase = inContent
	}

	for _, b := range blocks {
		if st.page != 0 && b.Page != st.page {
			// page boundary: reset line tracking, break the paragraph
			if st.phase == inContent {
				out.ensureSuffix("\n\n")
			}
			st.lastY = -1
			st.lastFontSize = -1
		}
		st.page = b.Page
		p.feed(&st, b, &out)
	}

	return strings.TrimSpace(out.String())
}

func (p Parser) feed(st *scanState, b Block, out *buffer) {
	text := strings.TrimSpace(b.Text)
	if text == "" {
		return
	}

	if st.phase == afterContent {
		return
	}
	if p.EndMarker != "" && strings.Contains(text, p.EndMarker) {
		st.phase = afterContent
		return
	}
	if st.phase == beforeContent {
		if text != p.StartMarker {
			return
		}
		st.phase = inContent
		// the start marker is itself the first content heading: fall through
	}

	if tocLeaderRe.MatchString(text) {
		return
	}
	if b.Y < p.HeaderYLimit || b.Y > p.FooterYLimit {
		return
	}

	newLine := false
	switch {
	case st.lastY < 0:
		newLine = true
	case math.Abs(b.Y-st.lastY) > lineTolerance:
		newLine = true
		if math.Abs(b.Y-st.lastY) > b.FontSize*paragraphGapFactor {
			out.ensureSuffix("\n\n")
		} else {
			out.ensureSuffix("\n")
		}
	default:
		// same line: single separating space
		if out.Len() > 0 && !out.hasSuffix(" ") && !out.hasSuffix("\n") {
			out.WriteString(" ")
		}
	}

	junk := indexGlyphRe.MatchString(text)

	switch {
	case newLine && b.FontSize > p.HeadingFontSize && !junk:
		if out.Len() > 0 && !out.hasSuffix("\n\n") {
			if out.hasSuffix("\n") {
				out.truncate(1)
			}
			out.WriteString("\n\n")
		}
		out.WriteString("## ")
		out.WriteString(text)

	case newLine && junk:
		// retract the line break just emitted for the stray glyph
		if out.hasSuffix("\n\n") {
			out.truncate(2)
		} else if out.hasSuffix("\n") {
			out.truncate(1)
		}
		// the glyph itself is dropped and must not disturb line tracking
		return

	default:
		out.WriteString(text)
	}

	st.lastY = b.Y
	st.lastFontSize = b.FontSize
}

// buffer is a byte accumulator that, unlike strings.Builder, supports the
// suffix retraction the junk-glyph handling needs.
type buffer struct {
	b []byte
}

func (w *buffer) WriteString(s string) { w.b = append(w.b, s...) }
func (w *buffer) Len() int             { return len(w.b) }
func (w *buffer) String() string       { return string(w.b) }

func (w *buffer) hasSuffix(s string) bool {
	return strings.HasSuffix(string(w.b), s)
}

func (w *buffer) truncate(n int) {
	if n > len(w.b) {
		n = len(w.b)
	}
	w.b = w.b[:len(w.b)-n]
}

func (w *buffer) ensureSuffix(s string) {
	if w.Len() == 0 || w.hasSuffix(s) {
		return
	}
	// upgrading a single newline to a paragraph break must not double up
	if s == "\n\n" && w.hasSuffix("\n") {
		w.WriteString("\n")
		return
	}
	if s == "\n" && w.hasSuffix("\n\n") {
		return
	}
	w.WriteString(s)
}

package text

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	headingMarker     = "## "
	paragraphSplitter = "\n\n"
)

var (
	headingRe    = regexp.MustCompile(`(?m)^## `)
	excessBlanks = regexp.MustCompile(`\n\s*\n+`)
)

// Chunk is a bounded-length, heading-anchored excerpt of the structured
// document, the unit of retrieval.
type Chunk struct {
	Text   string
	Length int
}

// Chunker splits a structured document into retrieval chunks. Sections are
// cut at heading markers; oversized sections are re-split on paragraph
// boundaries with the heading repeated on every sub-chunk. Chunks that do
// not start with a heading or fall below MinChars are residual noise and
// dropped.
type Chunker struct {
	MaxChars int
	MinChars int
}

// Split is deterministic: the same document always yields the same chunks.
func (c Chunker) Split(doc string) []Chunk {
	var chunks []Chunk

	for _, section := range splitSections(doc) {
		section = normalize(section)
		if section == "" {
			continue
		}

		if len(section) <= c.MaxChars {
			chunks = c.appendValid(chunks, section)
			continue
		}

		slog.Warn("section exceeds chunk limit, re-splitting on paragraphs",
			"limit", c.MaxChars, "length", len(section), "section", preview(section))

		paragraphs := strings.Split(section, paragraphSplitter)
		if len(paragraphs) == 1 {
			// no paragraph boundaries to cut at; truncation is the last resort
			slog.Error("section has no paragraph boundaries, truncating",
				"limit", c.MaxChars, "section", preview(section))
			chunks = append(chunks, newChunk(truncate(section, c.MaxChars)))
			continue
		}

		heading := paragraphs[0]
		current := heading
		for _, paragraph := range paragraphs[1:] {
			paragraph = strings.TrimSpace(paragraph)
			if paragraph == "" {
				continue
			}

			if len(current)+len(paragraphSplitter)+len(paragraph) > c.MaxChars {
				chunks = c.appendValid(chunks, current)
				current = heading + paragraphSplitter + paragraph
				if len(current) > c.MaxChars {
					slog.Error("paragraph alone exceeds chunk limit, truncating",
						"limit", c.MaxChars, "section", preview(paragraph))
					current = truncate(current, c.MaxChars)
				}
			} else {
				current += paragraphSplitter + paragraph
			}
		}
		chunks = c.appendValid(chunks, current)
	}

	return chunks
}

func (c Chunker) appendValid(chunks []Chunk, text string) []Chunk {
	text = normalize(text)
	if !c.valid(text) {
		if text != "" {
			slog.Debug("dropping chunk without heading or below minimum length",
				"section", preview(text))
		}
		return chunks
	}
	return append(chunks, newChunk(text))
}

func (c Chunker) valid(text string) bool {
	return len(text) > c.MinChars && strings.HasPrefix(text, headingMarker)
}

func newChunk(text string) Chunk {
	return Chunk{Text: text, Length: len(text)}
}

// splitSections cuts the document immediately before every heading marker.
func splitSections(doc string) []string {
	starts := headingRe.FindAllStringIndex(doc, -1)
	if len(starts) == 0 {
		if doc == "" {
			return nil
		}
		return []string{doc}
	}

	var sections []string
	if starts[0][0] > 0 {
		sections = append(sections, doc[:starts[0][0]])
	}
	for i, loc := range starts {
		end := len(doc)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		sections = append(sections, doc[loc[0]:end])
	}
	return sections
}

func normalize(s string) string {
	return strings.TrimSpace(excessBlanks.ReplaceAllString(s, paragraphSplitter))
}

// truncate cuts at a rune boundary at or below max bytes.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

func preview(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > 50 {
		s = truncate(s, 50) + "..."
	}
	return s
}

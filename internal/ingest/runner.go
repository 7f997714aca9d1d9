package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"termchat/internal/document"
	"termchat/internal/text"
)

type Extractor interface {
	Extract(path string) ([]document.Block, error)
}

// Runner builds the knowledge base once at startup: load the source
// document, parse it into structured text, chunk it, embed every chunk
// through the pipeline, then open the readiness gate. It is started
// explicitly by the owning process after all dependencies exist.
type Runner struct {
	extractor Extractor
	parser    document.Parser
	chunker   text.Chunker
	pipeline  *Pipeline
	gate      *Gate

	documentPath string
}

func NewRunner(ex Extractor, parser document.Parser, chunker text.Chunker, p *Pipeline, g *Gate, documentPath string) *Runner {
	return &Runner{
		extractor:    ex,
		parser:       parser,
		chunker:      chunker,
		pipeline:     p,
		gate:         g,
		documentPath: documentPath,
	}
}

// Run executes the whole ingestion pass. A load or parse failure is fatal
// for the knowledge base: the gate stays closed and every request keeps
// degrading to the "still initializing" answer. Per-chunk embedding
// failures and queue-full rejections only shrink the index; the gate still
// opens on whatever succeeded.
func (r *Runner) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "ingestion started", "document", r.documentPath)

	blocks, err := r.extractor.Extract(r.documentPath)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	structured := r.parser.Parse(blocks)
	chunks := r.chunker.Split(structured)
	slog.InfoContext(ctx, "document parsed and chunked", "blocks", len(blocks), "chunks", len(chunks))

	r.pipeline.Start(ctx)

	rejected := 0
	for _, chunk := range chunks {
		if err := r.pipeline.Submit(chunk.Text); err != nil {
			rejected++
			slog.ErrorContext(ctx, "chunk submission rejected", "error", err, "chunk", chunkPreview(chunk.Text))
		}
	}

	r.pipeline.Wait()
	r.gate.Set()

	slog.InfoContext(ctx, "ingestion finished",
		"stored", r.pipeline.Stored(),
		"skipped", r.pipeline.Skipped(),
		"rejected", rejected)

	if rejected > 0 {
		return fmt.Errorf("%w: %d of %d chunks rejected", ErrQueueFull, rejected, len(chunks))
	}
	return nil
}

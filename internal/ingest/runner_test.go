package ingest_test

import (
	"context"
	"fmt"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"termchat/internal/document"
	"termchat/internal/index"
	"termchat/internal/ingest"
	"termchat/internal/text"
)

func testBlocks() []document.Block {
	return []document.Block{
		{Text: "TERM_A", X: 50, Y: 100, FontSize: 14, Page: 1},
		{Text: "a sufficiently long body for a valid retrieval chunk", X: 50, Y: 130, FontSize: 10, Page: 1},
	}
}

func testRunner(ex ingest.Extractor, p *ingest.Pipeline, g *ingest.Gate) *ingest.Runner {
	parser := document.Parser{
		StartMarker:     "TERM_A",
		HeadingFontSize: 11.5,
		HeaderYLimit:    70,
		FooterYLimit:    770,
	}
	chunker := text.Chunker{MaxChars: 10000, MinChars: 24}
	return ingest.NewRunner(ex, parser, chunker, p, g, "glossary.pdf")
}

func TestRunner_OpensGateAfterIngestion(t *testing.T) {
	extractor := new(MockExtractor)
	extractor.On("Extract", "glossary.pdf").Return(testBlocks(), nil)

	embedder := new(MockEmbedder)
	embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{1, 0}, nil)

	ix := index.New()
	gate := ingest.NewGate()
	runner := testRunner(extractor, ingest.NewPipeline(embedder, ix, 2, 8, time.Minute), gate)

	require.False(t, gate.Ready())
	require.NoError(t, runner.Run(context.Background()))

	assert.True(t, gate.Ready())
	assert.Equal(t, 1, ix.Len())
}

func TestRunner_MissingDocumentKeepsGateClosed(t *testing.T) {
	extractor := new(MockExtractor)
	extractor.On("Extract", "glossary.pdf").Return(nil, fs.ErrNotExist)

	embedder := new(MockEmbedder)
	ix := index.New()
	gate := ingest.NewGate()
	runner := testRunner(extractor, ingest.NewPipeline(embedder, ix, 2, 8, time.Minute), gate)

	err := runner.Run(context.Background())
	require.ErrorIs(t, err, fs.ErrNotExist)

	assert.False(t, gate.Ready())
	assert.Equal(t, 0, ix.Len())
	embedder.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
}

func TestRunner_QueueFullStillOpensGate(t *testing.T) {
	// more chunks than queue slots with a single slow-free worker: rejected
	// submissions surface as an error but whatever fit is still served
	blocks := []document.Block{
		{Text: "TERM_A", X: 50, Y: 100, FontSize: 14, Page: 1},
		{Text: "first body paragraph long enough to keep around", X: 50, Y: 130, FontSize: 10, Page: 1},
	}
	for i := 0; i < 5; i++ {
		blocks = append(blocks,
			document.Block{Text: fmt.Sprintf("Term Number %d", i), X: 50, Y: float64(200 + 100*i), FontSize: 14, Page: 1},
			document.Block{Text: "another body paragraph long enough to keep around", X: 50, Y: float64(230 + 100*i), FontSize: 10, Page: 1},
		)
	}

	extractor := new(MockExtractor)
	extractor.On("Extract", "glossary.pdf").Return(blocks, nil)

	embedder := new(MockEmbedder)
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	embedder.On("Embed", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			select {
			case started <- struct{}{}:
			default:
			}
			<-release
		}).
		Return([]float32{1, 0}, nil)

	ix := index.New()
	gate := ingest.NewGate()
	pipeline := ingest.NewPipeline(embedder, ix, 1, 1, time.Minute)
	runner := testRunner(extractor, pipeline, gate)

	go func() {
		// hold the worker until the submission loop has long finished so
		// the queue-full rejections are deterministic
		<-started
		time.Sleep(200 * time.Millisecond)
		close(release)
	}()

	err := runner.Run(context.Background())
	require.ErrorIs(t, err, ingest.ErrQueueFull)

	assert.True(t, gate.Ready())
	assert.Greater(t, ix.Len(), 0)
	assert.Less(t, ix.Len(), 6)
}

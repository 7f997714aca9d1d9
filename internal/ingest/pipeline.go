package ingest

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ErrQueueFull is returned by Submit when the task queue has no room. The
// submission is rejected immediately so a miscapacity is observable instead
// of silently blocking ingestion.
var ErrQueueFull = errors.New("embedding task queue is full")

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorStore interface {
	Insert(text string, vector []float32)
}

// Pipeline embeds chunks on a fixed-size worker pool with a bounded task
// queue and inserts the results into the vector store. A chunk whose
// embedding fails is logged and skipped; it never aborts the rest of the
// batch.
type Pipeline struct {
	embedder Embedder
	store    VectorStore

	tasks        chan string
	workers      int
	embedTimeout time.Duration
	wg           sync.WaitGroup

	stored  atomic.Int64
	skipped atomic.Int64
}

func NewPipeline(e Embedder, s VectorStore, workers, queueCapacity int, embedTimeout time.Duration) *Pipeline {
	return &Pipeline{
		embedder:     e,
		store:        s,
		tasks:        make(chan string, queueCapacity),
		workers:      workers,
		embedTimeout: embedTimeout,
	}
}

// Start launches the worker pool. Call once, before any Submit.
func (p *Pipeline) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work(ctx)
	}
}

// Submit queues one chunk for embedding. It fails fast with ErrQueueFull
// rather than blocking when the queue is at capacity.
func (p *Pipeline) Submit(chunk string) error {
	select {
	case p.tasks <- chunk:
		return nil
	default:
		return ErrQueueFull
	}
}

// Wait closes the queue and blocks until every submitted task has completed
// or failed. After Wait returns the store is stable.
func (p *Pipeline) Wait() {
	close(p.tasks)
	p.wg.Wait()
}

// Stored and Skipped report how many chunks made it into the store and how
// many were dropped on embedding failures.
func (p *Pipeline) Stored() int  { return int(p.stored.Load()) }
func (p *Pipeline) Skipped() int { return int(p.skipped.Load()) }

func (p *Pipeline) work(ctx context.Context) {
	defer p.wg.Done()

	for chunk := range p.tasks {
		p.process(ctx, chunk)
	}
}

func (p *Pipeline) process(ctx context.Context, chunk string) {
	embedCtx, cancel := context.WithTimeout(ctx, p.embedTimeout)
	defer cancel()

	vector, err := p.embedder.Embed(embedCtx, chunk)
	if err != nil {
		p.skipped.Add(1)
		slog.ErrorContext(ctx, "embedding failed, skipping chunk", "error", err, "chunk", chunkPreview(chunk))
		return
	}
	if len(vector) == 0 {
		p.skipped.Add(1)
		slog.WarnContext(ctx, "embedding returned no vector, skipping chunk", "chunk", chunkPreview(chunk))
		return
	}

	p.store.Insert(chunk, vector)
	p.stored.Add(1)
	slog.DebugContext(ctx, "chunk embedded and stored", "chunk", chunkPreview(chunk))
}

func chunkPreview(chunk string) string {
	const max = 70
	for i := range chunk {
		if i >= max {
			return chunk[:i] + "..."
		}
	}
	return chunk
}

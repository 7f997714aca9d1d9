package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"termchat/internal/adapter/gemini"
	"termchat/internal/answer"
	"termchat/internal/app"
	"termchat/internal/config"
	"termchat/internal/document"
	"termchat/internal/index"
	"termchat/internal/ingest"
	"termchat/internal/logger"
	"termchat/internal/text"
)

func main() {
	// Initialize structured logger
	handler := logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(slog.New(handler))

	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Gemini Client
	client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		slog.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	embedder := gemini.NewEmbedder(client, cfg.EmbeddingModel)
	completer := gemini.NewCompleter(client, cfg.CompletionModel)

	// 3. Knowledge Base
	ix := index.New()
	gate := ingest.NewGate()

	parser := document.Parser{
		StartMarker:     cfg.StartMarker,
		EndMarker:       cfg.EndMarker,
		HeadingFontSize: cfg.HeadingFontSize,
		HeaderYLimit:    cfg.HeaderYLimit,
		FooterYLimit:    cfg.FooterYLimit,
	}
	chunker := text.Chunker{
		MaxChars: cfg.ChunkMaxChars,
		MinChars: cfg.ChunkMinChars,
	}

	pipeline := ingest.NewPipeline(embedder, ix, cfg.WorkerPoolSize, cfg.QueueCapacity, cfg.EmbedCallTimeout())
	runner := ingest.NewRunner(document.FileExtractor{}, parser, chunker, pipeline, gate, cfg.DocumentPath)

	// Ingestion runs in the background; the server answers with a
	// placeholder until the gate opens.
	go func() {
		if err := runner.Run(ctx); err != nil {
			slog.Error("ingestion failed", "error", err)
		}
	}()

	// 4. Answering
	svc := answer.NewService(embedder, completer, ix, gate,
		cfg.SystemPrompt, cfg.TopK, cfg.RequestTimeout())

	// 5. HTTP Surface
	a := app.New(cfg, svc, gate)
	if err := a.Run(ctx); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

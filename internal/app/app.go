package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"termchat/features/chat"
	"termchat/internal/answer"
	"termchat/internal/config"
	"termchat/internal/middleware"
)

// App holds the wired HTTP surface. Ingestion runs outside of it; the
// readiness probe is the only coupling between the two.
type App struct {
	Handler http.Handler

	port int
}

func New(cfg *config.Config, svc chat.AnswerService, probe answer.ReadinessProbe) *App {
	chatHandler := chat.NewHandler(svc)

	mux := http.NewServeMux()

	mux.Handle("POST /chat", middleware.CorrelationID(http.HandlerFunc(chatHandler.Chat)))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, r *http.Request) {
		ready := probe.Ready()
		w.Header().Set("Content-Type", "application/json")
		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(map[string]bool{"ready": ready}); err != nil {
			slog.ErrorContext(r.Context(), "failed to encode readiness response", "error", err)
		}
	})

	return &App{
		Handler: mux,
		port:    cfg.ServerPort,
	}
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"termchat/internal/answer"
	"termchat/internal/middleware"
)

type AnswerService interface {
	Answer(ctx context.Context, question string) (answer.Answer, error)
}

type Handler struct {
	svc AnswerService
}

func NewHandler(svc AnswerService) *Handler {
	return &Handler{svc: svc}
}

type ChatRequest struct {
	Question string `json:"question"`
}

type ChatResponse struct {
	Answer string `json:"answer"`
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "INVALID_BODY", "request body must be JSON with a question field", http.StatusBadRequest)
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		h.writeError(ctx, w, "EMPTY_QUESTION", "question must not be empty", http.StatusBadRequest)
		return
	}

	res, err := h.svc.Answer(ctx, question)
	if errors.Is(err, context.DeadlineExceeded) {
		h.writeError(ctx, w, "TIMEOUT", "answering took too long, please try again", http.StatusGatewayTimeout)
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "answer service failed", "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to answer question", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ChatResponse{Answer: res.Answer}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

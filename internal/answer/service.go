package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	// NotReadyAnswer is returned while the knowledge base is still being
	// built. The request never waits on ingestion.
	NotReadyAnswer = "The system is still preparing its knowledge base. Please try again in a moment."

	promptTemplate = "Answer the [Question] using the [Reference] below.\n\n" +
		"[Reference]\n%s\n\n[Question]\n%s"
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type Retriever interface {
	TopK(query []float32, k int) []string
}

type ReadinessProbe interface {
	Ready() bool
}

// Answer is the eventual result of one question.
type Answer struct {
	Answer string `json:"answer"`
}

// Service runs the per-request pipeline: readiness gate, embed the
// question, retrieve context, build the augmented prompt, complete. Any
// stage failure is converted into an apologetic answer at this boundary;
// only a deadline overrun escapes as an error, so the caller can tell a
// timeout apart from a degraded answer.
type Service struct {
	embedder  Embedder
	completer Completer
	retriever Retriever
	readiness ReadinessProbe

	systemPrompt string
	topK         int
	timeout      time.Duration
}

func NewService(e Embedder, c Completer, r Retriever, probe ReadinessProbe, systemPrompt string, topK int, timeout time.Duration) *Service {
	return &Service{
		embedder:     e,
		completer:    c,
		retriever:    r,
		readiness:    probe,
		systemPrompt: systemPrompt,
		topK:         topK,
		timeout:      timeout,
	}
}

// Answer resolves one question against the knowledge base. The deadline
// covers the whole chain and is propagated into the external calls, so a
// timed-out request also cancels its in-flight embedding or completion
// instead of leaking it.
func (s *Service) Answer(ctx context.Context, question string) (Answer, error) {
	if !s.readiness.Ready() {
		slog.WarnContext(ctx, "knowledge base not ready, returning placeholder")
		return Answer{Answer: NotReadyAnswer}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	slog.InfoContext(ctx, "answering question", "length", len(question))

	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return s.fail(ctx, fmt.Errorf("embed question: %w", err))
	}
	if len(vector) == 0 {
		return s.fail(ctx, errors.New("embed question: empty vector"))
	}

	contextText := strings.Join(s.retriever.TopK(vector, s.topK), "\n\n")

	prompt := question
	if strings.TrimSpace(contextText) != "" {
		prompt = fmt.Sprintf(promptTemplate, contextText, question)
	} else {
		slog.WarnContext(ctx, "no reference material found, answering unaugmented")
	}

	content, err := s.completer.Complete(ctx, s.systemPrompt, prompt)
	if err != nil {
		return s.fail(ctx, fmt.Errorf("complete: %w", err))
	}

	slog.InfoContext(ctx, "question answered", "answer_length", len(content))
	return Answer{Answer: content}, nil
}

// fail maps a stage error to the boundary behavior: deadline overruns
// propagate so the caller sees a timeout, everything else becomes an
// apologetic answer carrying the error text.
func (s *Service) fail(ctx context.Context, err error) (Answer, error) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		slog.ErrorContext(ctx, "request timed out", "error", err)
		return Answer{}, context.DeadlineExceeded
	}
	slog.ErrorContext(ctx, "answer pipeline failed", "error", err)
	return Answer{Answer: fmt.Sprintf("Sorry, something went wrong while generating an answer: %v", err)}, nil
}

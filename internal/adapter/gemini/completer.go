package gemini

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// ErrEmptyCompletion marks a response that came back without any candidate
// text; callers treat it as a failure, not an empty success.
var ErrEmptyCompletion = errors.New("completion returned no content")

type Completer struct {
	client *genai.Client
	model  string
}

func NewCompleter(client *genai.Client, model string) *Completer {
	return &Completer{client: client, model: model}
}

func (c *Completer) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	slog.DebugContext(ctx, "requesting completion", "model", c.model, "prompt_length", len(userPrompt))

	m := c.client.GenerativeModel(c.model)
	if systemPrompt != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	}

	resp, err := m.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		slog.ErrorContext(ctx, "completion failed", "error", err)
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyCompletion
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyCompletion
	}
	return b.String(), nil
}

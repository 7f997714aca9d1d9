package answer_test

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Mocks

type MockEmbedder struct{ mock.Mock }

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type MockCompleter struct{ mock.Mock }

func (m *MockCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	args := m.Called(ctx, systemPrompt, userPrompt)
	return args.String(0), args.Error(1)
}

type MockRetriever struct{ mock.Mock }

func (m *MockRetriever) TopK(query []float32, k int) []string {
	args := m.Called(query, k)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

type stubProbe struct{ ready bool }

func (p stubProbe) Ready() bool { return p.ready }

// blockingCompleter never answers until its context is cancelled.
type blockingCompleter struct{}

func (blockingCompleter) Complete(ctx context.Context, _, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

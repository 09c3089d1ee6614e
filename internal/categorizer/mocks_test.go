package categorizer

import (
	"context"
	"sync"

	"rbc2mm/internal/store"
)

// TestMockAIClient replays scripted replies and records the prompts it saw.
type TestMockAIClient struct {
	mu        sync.Mutex
	Replies   []string
	Errors    []error
	CallCount int
	Prompts   []string
	// CompleteFunc overrides the scripted replies when set.
	CompleteFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *TestMockAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.CallCount
	m.CallCount++
	m.Prompts = append(m.Prompts, prompt)

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	if i < len(m.Errors) && m.Errors[i] != nil {
		return "", m.Errors[i]
	}
	if i < len(m.Replies) {
		return m.Replies[i], nil
	}
	if len(m.Replies) > 0 {
		return m.Replies[len(m.Replies)-1], nil
	}
	return "", nil
}

// scriptedFallback returns a fixed answer or error.
type scriptedFallback struct {
	name      string
	confirmed bool
	answer    Answer
	err       error
	calls     int
}

func (f *scriptedFallback) Name() string    { return f.name }
func (f *scriptedFallback) Confirmed() bool { return f.confirmed }

func (f *scriptedFallback) Resolve(ctx context.Context, tx Transaction) (Answer, error) {
	f.calls++
	return f.answer, f.err
}

func testTaxonomy() *store.Taxonomy {
	return store.NewTaxonomy(nil)
}

package categorizer

import (
	"context"
)

// AIClient sends a prompt to a generative model and returns its text reply.
// Implementations must respect ctx cancellation.
type AIClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Package llm provides the text-generation client used by the orchestrator.
// The model is treated as an opaque service: one prompt in, one raw text
// response out. Transport errors, timeouts and provider errors all surface as
// a plain error the orchestrator recovers from locally.
package llm

import "context"

// Client generates a raw text response for a prompt.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

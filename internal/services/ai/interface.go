package ai

import "context"

// ChatMessage is one role-tagged entry of the model request.
type ChatMessage struct {
	Role    string
	Content string
}

// Provider streams chat completions from a hosted model endpoint.
// Cancelling the context aborts the in-flight stream.
type Provider interface {
	// StreamCompletion sends the system prompt and ordered message
	// history, invoking onDelta for every incremental content chunk.
	// Returning an error from onDelta stops the stream.
	StreamCompletion(ctx context.Context, system string, messages []ChatMessage, onDelta func(delta string) error) error
}

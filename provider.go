package relay

import "context"

// Provider is a strategy pattern interface for chat completion backends.
// Complete sends the whole transcript and returns one text blob.
type Provider interface {
	Complete(ctx context.Context, req Request) (Reply, error)
}

// Reply is the raw text produced by the chat service for one request.
type Reply struct {
	Text  string
	Usage Usage
}

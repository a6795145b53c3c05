package relay

// Request carries the transcript and model selection for one chat request.
// The provider uses its own defaults when fields are zero.
type Request struct {
	Model     string // model ID, provider-specific; empty = provider default
	Messages  []Message
	MaxTokens int // 0 = provider default
}

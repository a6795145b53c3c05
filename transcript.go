package relay

import (
	"time"

	"github.com/google/uuid"
)

// Transcript is the ordered conversation history exchanged with the chat
// service. The first message is always the system instructions. During a run
// the transcript is owned by the agent loop; other components return values
// that the loop appends.
type Transcript struct {
	ID        string
	Messages  []Message
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTranscript starts a transcript whose first message carries the system
// instructions.
func NewTranscript(systemPrompt string) Transcript {
	now := time.Now()
	return Transcript{
		ID:        uuid.NewString(),
		Messages:  []Message{SystemMessage(systemPrompt)},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds messages to the end of the transcript.
func (t *Transcript) Append(msgs ...Message) {
	t.Messages = append(t.Messages, msgs...)
	t.UpdatedAt = time.Now()
}

// Len returns the number of messages.
func (t *Transcript) Len() int { return len(t.Messages) }

// Truncate drops every message at index n and beyond. It never removes the
// system message.
func (t *Transcript) Truncate(n int) {
	n = max(n, 1)
	if n >= len(t.Messages) {
		return
	}
	clear(t.Messages[n:])
	t.Messages = t.Messages[:n]
	t.UpdatedAt = time.Now()
}

// SystemPrompt returns the content of the leading system message, or "" if
// the transcript is malformed.
func (t *Transcript) SystemPrompt() string {
	if len(t.Messages) == 0 || t.Messages[0].Role != RoleSystem {
		return ""
	}
	return t.Messages[0].Content
}

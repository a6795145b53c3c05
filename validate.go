package relay

import "fmt"

// Validate checks universal constraints on Request.
// Provider implementations may apply additional provider-specific validation.
func (r Request) Validate() error {
	if r.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative, got %d: %w", r.MaxTokens, ErrValidation)
	}
	return ValidateMessages(r.Messages)
}

// ValidateMessages checks that a message sequence starts with exactly one
// system message and otherwise contains only user and assistant messages.
func ValidateMessages(msgs []Message) error {
	if len(msgs) == 0 {
		return fmt.Errorf("messages must not be empty: %w", ErrValidation)
	}
	if msgs[0].Role != RoleSystem {
		return fmt.Errorf("first message must be %s, got %q: %w", RoleSystem, msgs[0].Role, ErrValidation)
	}
	for i, m := range msgs[1:] {
		switch m.Role {
		case RoleUser, RoleAssistant:
		case RoleSystem:
			return fmt.Errorf("message %d: system message only allowed first: %w", i+1, ErrValidation)
		default:
			return fmt.Errorf("message %d: unknown role %q: %w", i+1, m.Role, ErrValidation)
		}
	}
	return nil
}

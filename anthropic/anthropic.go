// Package anthropic implements [relay.Provider] for the Anthropic Messages API.
//
// It wraps github.com/anthropics/anthropic-sdk-go. The transcript's system
// message is sent as the system prompt with a cache breakpoint, since it is
// identical for every request of a session. Consecutive messages with the
// same role are merged into one turn.
package anthropic

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/fwojciec/relay"
)

const (
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 4096
)

// convertSystem converts a system prompt to a cached text block. Returns nil
// when the prompt is empty.
func convertSystem(prompt string) []anthropic.TextBlockParam {
	if prompt == "" {
		return nil
	}
	return []anthropic.TextBlockParam{{
		Text:         prompt,
		CacheControl: anthropic.NewCacheControlEphemeralParam(),
	}}
}

// ConvertMessages splits relay Messages into the system prompt and the
// conversation turns.
// Exported for testing.
func ConvertMessages(msgs []relay.Message) (string, []anthropic.MessageParam) {
	var system string
	var result []anthropic.MessageParam
	for _, m := range msgs {
		var role anthropic.MessageParamRole
		switch m.Role {
		case relay.RoleSystem:
			system = m.Content
			continue
		case relay.RoleUser:
			role = anthropic.MessageParamRoleUser
		case relay.RoleAssistant:
			role = anthropic.MessageParamRoleAssistant
		default:
			continue
		}
		block := anthropic.NewTextBlock(m.Content)
		if n := len(result); n > 0 && result[n-1].Role == role {
			result[n-1].Content = append(result[n-1].Content, block)
			continue
		}
		result = append(result, anthropic.MessageParam{
			Role:    role,
			Content: []anthropic.ContentBlockParamUnion{block},
		})
	}
	return system, result
}

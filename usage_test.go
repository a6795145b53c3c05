package relay_test

import (
	"testing"

	"github.com/fwojciec/relay"
	"github.com/stretchr/testify/assert"
)

func TestRole_Values(t *testing.T) {
	t.Parallel()
	assert.Equal(t, relay.Role("system"), relay.RoleSystem)
	assert.Equal(t, relay.Role("user"), relay.RoleUser)
	assert.Equal(t, relay.Role("assistant"), relay.RoleAssistant)
}

func TestStopReason_Values(t *testing.T) {
	t.Parallel()
	assert.Equal(t, relay.StopReason("final"), relay.StopFinal)
	assert.Equal(t, relay.StopReason("plain_text"), relay.StopPlainText)
	assert.Equal(t, relay.StopReason("unknown_tool"), relay.StopUnknownTool)
	assert.Equal(t, relay.StopReason("declined"), relay.StopDeclined)
	assert.Equal(t, relay.StopReason("round_limit"), relay.StopRoundLimit)
}

func TestUsage_Add(t *testing.T) {
	t.Parallel()
	var u relay.Usage
	u = u.Add(relay.Usage{InputTokens: 10, OutputTokens: 3})
	u = u.Add(relay.Usage{InputTokens: 5, OutputTokens: 2})
	assert.Equal(t, relay.Usage{InputTokens: 15, OutputTokens: 5}, u)
}

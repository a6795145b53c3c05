package relay_test

import (
	"testing"
	"time"

	"github.com/fwojciec/relay"
	"github.com/stretchr/testify/assert"
)

func TestMessageConstructors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  relay.Message
		role relay.Role
	}{
		{name: "system", msg: relay.SystemMessage("rules"), role: relay.RoleSystem},
		{name: "user", msg: relay.UserMessage("rules"), role: relay.RoleUser},
		{name: "assistant", msg: relay.AssistantMessage("rules"), role: relay.RoleAssistant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.role, tt.msg.Role)
			assert.Equal(t, "rules", tt.msg.Content)
			assert.WithinDuration(t, time.Now(), tt.msg.Timestamp, time.Minute)
		})
	}
}

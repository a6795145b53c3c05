package main

import (
	"context"
	"testing"

	"github.com/fwojciec/relay"
	"github.com/fwojciec/relay/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const monitorConfig = "logs: {auth: /srv/auth.log, threat: /srv/threat.log}\n"

func TestMonitorTask(t *testing.T) {
	t.Parallel()
	assert.Equal(t,
		"Analyze /var/log/auth.log for suspicious activity and write notes to threat.log.",
		monitorTask("/var/log/auth.log", "threat.log"))
}

func TestMonitor(t *testing.T) {
	t.Parallel()

	t.Run("final summary", func(t *testing.T) {
		t.Parallel()

		p, rec := mock.Replies(
			`{"tool": "read_file", "args": {"path": "/srv/auth.log"}}`,
			`{"tool": "append_log", "args": {"path": "/srv/threat.log", "text": "3 failed root logins"}}`,
			`{"final": "Found 3 failed root logins."}`,
		)
		var calls []string
		inv := &mock.Invoker{
			InvokeFn: func(_ context.Context, name string, _ map[string]any) (any, error) {
				calls = append(calls, name)
				if name == "read_file" {
					return map[string]any{"status": "ok", "content": "Failed password for root"}, nil
				}
				return map[string]any{"status": "ok"}, nil
			},
		}
		a := newTestApp("", p, inv)

		require.NoError(t, a.execute("--config", writeConfig(t, monitorConfig), "monitor", "--yes"))

		assert.Equal(t, []string{"read_file", "append_log"}, calls)
		reqs := rec.Requests()
		require.Len(t, reqs, 3)
		first := reqs[0].Messages
		require.Len(t, first, 2)
		assert.Contains(t, first[0].Content, "You are an autonomous agent for log monitoring.")
		assert.Contains(t, first[0].Content, "read_file")
		assert.NotContains(t, first[0].Content, "run_command")
		assert.Equal(t, "Analyze /srv/auth.log for suspicious activity and write notes to /srv/threat.log.", first[1].Content)
		assert.Equal(t, "llama3.1", reqs[0].Model)

		out := a.output()
		assert.Contains(t, out, "[tool:read_file]")
		assert.Contains(t, out, "[tool:append_log]")
		assert.Contains(t, out, "===== FINAL AGENT SUMMARY =====\nFound 3 failed root logins.\n")
		assert.NotContains(t, out, "[y/N]")
	})

	t.Run("raw output", func(t *testing.T) {
		t.Parallel()

		p, _ := mock.Replies("Nothing suspicious today.")
		a := newTestApp("", p, noInvocations(t))

		require.NoError(t, a.execute("--config", writeConfig(t, monitorConfig), "monitor"))
		assert.Contains(t, a.output(), "===== FINAL RAW OUTPUT =====\nNothing suspicious today.\n")
	})

	t.Run("other capabilities are unknown", func(t *testing.T) {
		t.Parallel()

		p, _ := mock.Replies(`{"tool": "run_command", "args": {"command": "cat /srv/auth.log"}}`)
		a := newTestApp("", p, noInvocations(t))

		err := a.execute("--config", writeConfig(t, monitorConfig), "monitor", "--yes")
		require.ErrorIs(t, err, relay.ErrUnknownTool)
		assert.Contains(t, a.output(), "Unknown tool 'run_command'.\n")
		assert.NotContains(t, a.output(), "=====")
	})

	t.Run("asks before each call without --yes", func(t *testing.T) {
		t.Parallel()

		p, _ := mock.Replies(`{"tool": "read_file", "args": {"path": "/srv/auth.log"}}`)
		a := newTestApp("n\n", p, noInvocations(t))

		err := a.execute("--config", writeConfig(t, monitorConfig), "monitor")
		require.ErrorIs(t, err, relay.ErrDeclined)
		out := a.output()
		assert.Contains(t, out, "Execute tool 'read_file' with args")
		assert.Contains(t, out, "User declined to run tool read_file.\n")
	})

	t.Run("round limit", func(t *testing.T) {
		t.Parallel()

		read := `{"tool": "read_file", "args": {"path": "/srv/auth.log"}}`
		p, rec := mock.Replies(read, read, read)
		inv := &mock.Invoker{
			InvokeFn: func(context.Context, string, map[string]any) (any, error) {
				return map[string]any{"status": "ok", "content": ""}, nil
			},
		}
		a := newTestApp("", p, inv)

		err := a.execute("--config", writeConfig(t, monitorConfig), "monitor", "--yes", "--max-rounds", "2")
		require.ErrorIs(t, err, relay.ErrRoundLimit)
		assert.Len(t, rec.Requests(), 2)
		assert.Contains(t, a.output(), "Stopped after 2 tool rounds without a final answer.\n")
	})

	t.Run("negative max rounds", func(t *testing.T) {
		t.Parallel()

		p, _ := mock.Replies()
		a := newTestApp("", p, noInvocations(t))

		err := a.execute("--config", writeConfig(t, monitorConfig), "monitor", "--max-rounds", "-1")
		require.ErrorIs(t, err, relay.ErrValidation)
	})
}

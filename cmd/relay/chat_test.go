package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/relay"
	relayjson "github.com/fwojciec/relay/json"
	"github.com/fwojciec/relay/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat(t *testing.T) {
	t.Parallel()

	t.Run("plain reply then exit", func(t *testing.T) {
		t.Parallel()

		session := filepath.Join(t.TempDir(), "s.json")
		p, rec := mock.Replies("Hi there!")
		a := newTestApp("\n   \nhello\nexit\n", p, noInvocations(t))

		require.NoError(t, a.execute("--config", writeConfig(t, ""), "chat", "--session", session))

		out := a.output()
		assert.Contains(t, out, "Interactive automation chat. Type 'exit' to quit.\n")
		assert.Contains(t, out, "assistant> Hi there!\n")
		assert.Contains(t, out, "Goodbye.\n")
		assert.NotContains(t, out, "Exiting.")
		require.Len(t, rec.Requests(), 1)

		saved, err := relayjson.Load(session)
		require.NoError(t, err)
		require.Len(t, saved.Messages, 3)
		assert.Equal(t, relay.RoleSystem, saved.Messages[0].Role)
		assert.Contains(t, saved.Messages[0].Content, "You are a helpful command-line automation assistant.")
		assert.Equal(t, "hello", saved.Messages[1].Content)
		assert.Equal(t, "Hi there!", saved.Messages[2].Content)
	})

	t.Run("quit is case insensitive and chat is the default command", func(t *testing.T) {
		t.Parallel()

		p, rec := mock.Replies()
		a := newTestApp("QUIT\n", p, noInvocations(t))

		require.NoError(t, a.execute("--config", writeConfig(t, ""), "--session", filepath.Join(t.TempDir(), "s.json")))
		assert.Contains(t, a.output(), "Goodbye.\n")
		assert.Empty(t, rec.Requests())
	})

	t.Run("end of input exits", func(t *testing.T) {
		t.Parallel()

		p, _ := mock.Replies()
		a := newTestApp("", p, noInvocations(t))

		require.NoError(t, a.execute("--config", writeConfig(t, ""), "chat"))
		assert.Contains(t, a.output(), "Exiting.\n")
	})

	t.Run("confirmed tool call then final answer", func(t *testing.T) {
		t.Parallel()

		p, rec := mock.Replies(
			`{"tool": "scan_port", "args": {"host": "example.com", "port": 80}}`,
			`{"final": "Port 80 is open."}`,
		)
		var calls []string
		inv := &mock.Invoker{
			InvokeFn: func(_ context.Context, name string, args map[string]any) (any, error) {
				calls = append(calls, name)
				assert.Equal(t, "example.com", args["host"])
				return map[string]any{"status": "ok", "open": true}, nil
			},
		}
		session := filepath.Join(t.TempDir(), "s.json")
		a := newTestApp("scan example.com\ny\n", p, inv)

		require.NoError(t, a.execute("--config", writeConfig(t, ""), "--session", session))

		out := a.output()
		assert.Contains(t, out, "Execute tool 'scan_port' with args")
		assert.Contains(t, out, "[tool:scan_port]")
		assert.Contains(t, out, "Port 80 is open.")
		assert.Contains(t, out, "Exiting.\n")
		assert.Equal(t, []string{"scan_port"}, calls)

		reqs := rec.Requests()
		require.Len(t, reqs, 2)
		last := reqs[1].Messages[len(reqs[1].Messages)-1]
		assert.Equal(t, relay.RoleUser, last.Role)
		assert.Contains(t, last.Content, "Tool scan_port result: ")

		saved, err := relayjson.Load(session)
		require.NoError(t, err)
		assert.Len(t, saved.Messages, 5)
	})

	t.Run("declined tool call", func(t *testing.T) {
		t.Parallel()

		p, _ := mock.Replies(`{"tool": "run_command", "args": {"command": "rm -rf /tmp/x"}}`)
		a := newTestApp("clean up\nn\nexit\n", p, noInvocations(t))

		require.NoError(t, a.execute("--config", writeConfig(t, ""), "--session", filepath.Join(t.TempDir(), "s.json")))

		out := a.output()
		assert.Contains(t, out, "Execute: rm -rf /tmp/x? [y/N]: ")
		assert.Contains(t, out, "User declined to run tool run_command.\n")
		assert.Contains(t, out, "Goodbye.\n")
	})

	t.Run("provider failure keeps the chat going", func(t *testing.T) {
		t.Parallel()

		p, rec := mock.Replies()
		a := newTestApp("hello\nexit\n", p, noInvocations(t))

		require.NoError(t, a.execute("--config", writeConfig(t, ""), "--session", filepath.Join(t.TempDir(), "s.json")))

		out := a.output()
		assert.Contains(t, out, "Error: complete: mock: unexpected request 1\n")
		assert.Contains(t, out, "Goodbye.\n")
		assert.Len(t, rec.Requests(), 1)
	})

	t.Run("resumes a saved session", func(t *testing.T) {
		t.Parallel()

		session := filepath.Join(t.TempDir(), "s.json")
		prev := relay.NewTranscript("previous system prompt")
		prev.Append(relay.UserMessage("earlier"), relay.AssistantMessage("noted"))
		require.NoError(t, relayjson.Save(session, prev))

		p, rec := mock.Replies("again")
		a := newTestApp("more\nexit\n", p, noInvocations(t))

		require.NoError(t, a.execute("--config", writeConfig(t, ""), "--session", session))

		reqs := rec.Requests()
		require.Len(t, reqs, 1)
		require.Len(t, reqs[0].Messages, 4)
		assert.Equal(t, "previous system prompt", reqs[0].Messages[0].Content)

		saved, err := relayjson.Load(session)
		require.NoError(t, err)
		assert.Equal(t, prev.ID, saved.ID)
		assert.Len(t, saved.Messages, 5)
	})

	t.Run("auto approve skips the question", func(t *testing.T) {
		t.Parallel()

		p, _ := mock.Replies(
			`{"tool": "system_info", "args": {}}`,
			"All fine.",
		)
		inv := &mock.Invoker{
			InvokeFn: func(context.Context, string, map[string]any) (any, error) {
				return map[string]any{"status": "ok", "system": "Linux"}, nil
			},
		}
		a := newTestApp("status\nexit\n", p, inv)

		require.NoError(t, a.execute("--config", writeConfig(t, "agent: {auto_approve: true}\n"), "--session", filepath.Join(t.TempDir(), "s.json")))

		out := a.output()
		assert.NotContains(t, out, "[y/N]")
		assert.Contains(t, out, "[tool:system_info]")
		assert.Contains(t, out, "assistant> All fine.\n")
		assert.Contains(t, out, "Goodbye.\n")
	})
}

func TestChatSendsConfiguredModel(t *testing.T) {
	t.Parallel()

	p, rec := mock.Replies("ok")
	a := newTestApp("hi\nexit\n", p, noInvocations(t))

	cfg := writeConfig(t, "provider: anthropic\nanthropic: {model: claude-test, max_tokens: 512}\n")
	require.NoError(t, a.execute("--config", cfg, "--session", filepath.Join(t.TempDir(), "s.json")))

	reqs := rec.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "claude-test", reqs[0].Model)
	assert.Equal(t, 512, reqs[0].MaxTokens)
}

func TestLoadOrCreateTranscript(t *testing.T) {
	t.Parallel()

	t.Run("new without path", func(t *testing.T) {
		t.Parallel()
		tr, err := loadOrCreateTranscript("", "sys")
		require.NoError(t, err)
		assert.Equal(t, "sys", tr.SystemPrompt())
	})

	t.Run("new when file is missing", func(t *testing.T) {
		t.Parallel()
		tr, err := loadOrCreateTranscript(filepath.Join(t.TempDir(), "none.json"), "sys")
		require.NoError(t, err)
		assert.Equal(t, 1, tr.Len())
	})

	t.Run("corrupt file fails", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
		_, err := loadOrCreateTranscript(path, "sys")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load session")
	})
}

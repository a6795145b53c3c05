package reply_test

import (
	"testing"

	"github.com/fwojciec/relay"
	"github.com/fwojciec/relay/reply"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("whole text tool call", func(t *testing.T) {
		t.Parallel()
		cmd := reply.Parse(`{"tool":"scan_port","args":{"host":"example.com","port":80,"timeout":2.0}}`)
		call, ok := cmd.(relay.ToolCall)
		require.True(t, ok)
		assert.Equal(t, "scan_port", call.Name)
		assert.Equal(t, map[string]any{"host": "example.com", "port": float64(80), "timeout": 2.0}, call.Args)
		assert.False(t, call.Embedded)
	})

	t.Run("whole text final answer", func(t *testing.T) {
		t.Parallel()
		cmd := reply.Parse(`  {"final": "Port 80 is open."}  `)
		assert.Equal(t, relay.FinalAnswer{Summary: "Port 80 is open."}, cmd)
	})

	t.Run("plain text", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, relay.PlainText{Text: "Hello there!"}, reply.Parse("Hello there!"))
	})

	t.Run("empty text", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, relay.PlainText{Text: ""}, reply.Parse(""))
	})

	t.Run("object without tool or final is plain text", func(t *testing.T) {
		t.Parallel()
		text := `{"thought":"hmm"}`
		assert.Equal(t, relay.PlainText{Text: text}, reply.Parse(text))
	})

	t.Run("embedded object without tool or final is plain text", func(t *testing.T) {
		t.Parallel()
		text := `here you go: {"answer": 42}`
		assert.Equal(t, relay.PlainText{Text: text}, reply.Parse(text))
	})

	t.Run("whole text json that is not an object is plain text", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, relay.PlainText{Text: "42"}, reply.Parse("42"))
		assert.Equal(t, relay.PlainText{Text: `["tool"]`}, reply.Parse(`["tool"]`))
	})

	t.Run("tool call embedded in prose", func(t *testing.T) {
		t.Parallel()
		cmd := reply.Parse("Sure, let me check.\n```json\n{\"tool\": \"system_info\", \"args\": {}}\n```\nOne moment.")
		call, ok := cmd.(relay.ToolCall)
		require.True(t, ok)
		assert.Equal(t, "system_info", call.Name)
		assert.Empty(t, call.Args)
		assert.True(t, call.Embedded)
	})

	t.Run("final answer embedded in prose", func(t *testing.T) {
		t.Parallel()
		cmd := reply.Parse(`Done. {"final": "all clear"} Bye.`)
		assert.Equal(t, relay.FinalAnswer{Summary: "all clear", Embedded: true}, cmd)
	})

	t.Run("tool wins when both keys are present", func(t *testing.T) {
		t.Parallel()
		cmd := reply.Parse(`{"final":"x","tool":"system_info"}`)
		_, ok := cmd.(relay.ToolCall)
		assert.True(t, ok)
	})

	t.Run("non-mapping args default to empty mapping", func(t *testing.T) {
		t.Parallel()
		for _, text := range []string{
			`{"tool":"system_info","args":"none"}`,
			`{"tool":"system_info","args":[1,2]}`,
			`{"tool":"system_info","args":null}`,
			`{"tool":"system_info"}`,
		} {
			call, ok := reply.Parse(text).(relay.ToolCall)
			require.True(t, ok, text)
			assert.NotNil(t, call.Args, text)
			assert.Empty(t, call.Args, text)
		}
	})

	t.Run("non-string tool name is stringified", func(t *testing.T) {
		t.Parallel()
		call, ok := reply.Parse(`{"tool":7,"args":{}}`).(relay.ToolCall)
		require.True(t, ok)
		assert.Equal(t, "7", call.Name)
	})

	t.Run("non-string final is rendered as json", func(t *testing.T) {
		t.Parallel()
		cmd := reply.Parse(`{"final":{"open":true}}`)
		assert.Equal(t, relay.FinalAnswer{Summary: `{"open":true}`}, cmd)
	})

	t.Run("null final is empty summary", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, relay.FinalAnswer{}, reply.Parse(`{"final":null}`))
	})
}

func TestExtractObject(t *testing.T) {
	t.Parallel()

	t.Run("no brace", func(t *testing.T) {
		t.Parallel()
		_, ok := reply.ExtractObject("nothing here")
		assert.False(t, ok)
	})

	t.Run("unbalanced", func(t *testing.T) {
		t.Parallel()
		_, ok := reply.ExtractObject(`{"tool": "x"`)
		assert.False(t, ok)
	})

	t.Run("braces inside strings do not affect depth", func(t *testing.T) {
		t.Parallel()
		obj, ok := reply.ExtractObject(`run {"tool":"run_command","args":{"command":"echo '}{' }"}} now`)
		require.True(t, ok)
		args := obj["args"].(map[string]any)
		assert.Equal(t, "echo '}{' }", args["command"])
	})

	t.Run("escaped quotes inside strings", func(t *testing.T) {
		t.Parallel()
		text := `x {"tool":"run_command","args":{"command":"echo \"{\\\"a\\\": 1}\" }"}} y`
		obj, ok := reply.ExtractObject(text)
		require.True(t, ok)
		args := obj["args"].(map[string]any)
		assert.Equal(t, `echo "{\"a\": 1}" }`, args["command"])
	})

	t.Run("invalid first span resumes at next brace", func(t *testing.T) {
		t.Parallel()
		obj, ok := reply.ExtractObject(`{not json} then {"final":"ok"}`)
		require.True(t, ok)
		assert.Equal(t, "ok", obj["final"])
	})

	t.Run("prose brace before object", func(t *testing.T) {
		t.Parallel()
		obj, ok := reply.ExtractObject(`use {braces} carefully: {"final":"done"}`)
		require.True(t, ok)
		assert.Equal(t, "done", obj["final"])
	})

	t.Run("unclosed prose brace before object", func(t *testing.T) {
		t.Parallel()
		obj, ok := reply.ExtractObject(`a { b {"final":"done"} c`)
		require.True(t, ok)
		assert.Equal(t, "done", obj["final"])
	})

	t.Run("quoted prose braces before object", func(t *testing.T) {
		t.Parallel()
		obj, ok := reply.ExtractObject(`he wrote "{x" and "}y" then {"tool":"system_info","args":{}}`)
		require.True(t, ok)
		assert.Equal(t, "system_info", obj["tool"])
	})

	t.Run("first of two objects", func(t *testing.T) {
		t.Parallel()
		obj, ok := reply.ExtractObject(`{"final":"one"} {"final":"two"}`)
		require.True(t, ok)
		assert.Equal(t, "one", obj["final"])
	})
}

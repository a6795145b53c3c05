package terminal_test

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/fwojciec/relay"
	"github.com/fwojciec/relay/terminal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrinterHandle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		event relay.Event
		want  string
	}{
		{
			name:  "assistant text",
			event: relay.EventAssistantText{Text: "hello there"},
			want:  "assistant> hello there\n",
		},
		{
			name:  "tool result",
			event: relay.EventToolResult{Tool: "run_command", Display: "Mon Jan 1\n"},
			want:  "[tool:run_command] Mon Jan 1\n\n",
		},
		{
			name:  "final without renderer",
			event: relay.EventFinal{Summary: "All good."},
			want:  "assistant> All good.\n",
		},
		{
			name:  "notice",
			event: relay.EventNotice{Reason: relay.StopDeclined, Text: "User declined to run tool run_command."},
			want:  "User declined to run tool run_command.\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			p := terminal.NewPrinter(&out, terminal.NewStyles(relay.DefaultTheme()), nil)
			p.Handle(tt.event)
			assert.Equal(t, tt.want, ansi.Strip(out.String()))
		})
	}
}

func TestPrinterFinalRendersMarkdown(t *testing.T) {
	t.Parallel()

	r, err := terminal.NewRenderer("notty", 60)
	require.NoError(t, err)

	var out bytes.Buffer
	p := terminal.NewPrinter(&out, terminal.NewStyles(relay.DefaultTheme()), r)
	p.Handle(relay.EventFinal{Summary: "# Report\n\nNo **suspicious** logins."})

	got := ansi.Strip(out.String())
	assert.Regexp(t, `^assistant>\n`, got)
	assert.Contains(t, got, "Report")
	assert.Contains(t, got, "suspicious")
	assert.Contains(t, got, "logins.")
}

func TestPrinterHeader(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := terminal.NewPrinter(&out, terminal.NewStyles(relay.DefaultTheme()), nil)
	p.Header("===== FINAL AGENT SUMMARY =====")
	p.Line("done")

	assert.Equal(t, "===== FINAL AGENT SUMMARY =====\ndone\n", ansi.Strip(out.String()))
}

func TestRendererRender(t *testing.T) {
	t.Parallel()

	r, err := terminal.NewRenderer("notty", 0)
	require.NoError(t, err)

	assert.Empty(t, r.Render(""))
	assert.Contains(t, r.Render("plain words"), "plain words")

	var nilRenderer *terminal.Renderer
	assert.Equal(t, "*as is*", nilRenderer.Render("*as is*"))
}

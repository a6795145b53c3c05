package terminal_test

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/relay"
	"github.com/fwojciec/relay/terminal"
	"github.com/stretchr/testify/assert"
)

func TestNewStyles(t *testing.T) {
	t.Parallel()

	styles := terminal.NewStyles(relay.DefaultTheme())

	assert.Equal(t, lipgloss.Color("4"), styles.Prompt.GetForeground())
	assert.True(t, styles.Prompt.GetBold())

	assert.Equal(t, lipgloss.Color("5"), styles.Assistant.GetForeground())
	assert.True(t, styles.Assistant.GetBold())

	assert.Equal(t, lipgloss.Color("3"), styles.ToolCall.GetForeground())
	assert.Equal(t, lipgloss.Color("6"), styles.Tool.GetForeground())
	assert.Equal(t, lipgloss.Color("1"), styles.Error.GetForeground())

	assert.Equal(t, lipgloss.Color("2"), styles.Success.GetForeground())
	assert.True(t, styles.Success.GetBold())

	assert.Equal(t, lipgloss.Color("8"), styles.Muted.GetForeground())
	assert.True(t, styles.Muted.GetFaint())
}

func TestNewStylesNegativeIndexYieldsNoColor(t *testing.T) {
	t.Parallel()

	styles := terminal.NewStyles(relay.Theme{Prompt: -1})

	assert.Equal(t, lipgloss.NoColor{}, styles.Prompt.GetForeground())
}

package relay_test

import (
	"testing"

	"github.com/fwojciec/relay"
	"github.com/stretchr/testify/assert"
)

func TestDefaultTheme(t *testing.T) {
	t.Parallel()

	theme := relay.DefaultTheme()

	assert.Equal(t, 4, theme.Prompt)
	assert.Equal(t, 5, theme.Assistant)
	assert.Equal(t, 3, theme.ToolCall)
	assert.Equal(t, 6, theme.Tool)
	assert.Equal(t, 1, theme.Error)
	assert.Equal(t, 2, theme.Success)
	assert.Equal(t, 8, theme.Muted)
}

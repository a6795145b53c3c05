package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/fwojciec/relay"
	"github.com/fwojciec/relay/anthropic"
	"github.com/fwojciec/relay/config"
	"github.com/fwojciec/relay/gemini"
	"github.com/fwojciec/relay/mcp"
	"github.com/fwojciec/relay/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withProvider(name string) config.Config {
	cfg := config.Default()
	cfg.Provider = name
	return cfg
}

func TestResolveProvider(t *testing.T) {
	t.Parallel()

	keys := apiKeys{openAI: "sk-oai", anthropic: "sk-ant", gemini: "gk-gem"}

	t.Run("ollama needs no key", func(t *testing.T) {
		t.Parallel()
		p, err := resolveProvider(context.Background(), withProvider("ollama"), apiKeys{})
		require.NoError(t, err)
		assert.IsType(t, &openai.Client{}, p)
	})

	t.Run("openai", func(t *testing.T) {
		t.Parallel()
		p, err := resolveProvider(context.Background(), withProvider("openai"), keys)
		require.NoError(t, err)
		assert.IsType(t, &openai.Client{}, p)
	})

	t.Run("anthropic", func(t *testing.T) {
		t.Parallel()
		p, err := resolveProvider(context.Background(), withProvider("anthropic"), keys)
		require.NoError(t, err)
		assert.IsType(t, &anthropic.Client{}, p)
	})

	t.Run("gemini", func(t *testing.T) {
		t.Parallel()
		p, err := resolveProvider(context.Background(), withProvider("gemini"), keys)
		require.NoError(t, err)
		assert.IsType(t, &gemini.Client{}, p)
	})

	t.Run("missing keys", func(t *testing.T) {
		t.Parallel()
		for name, env := range map[string]string{
			"openai":    "OPENAI_API_KEY not set",
			"anthropic": "ANTHROPIC_API_KEY not set",
			"gemini":    "GEMINI_API_KEY not set",
		} {
			_, err := resolveProvider(context.Background(), withProvider(name), apiKeys{})
			require.Error(t, err, name)
			assert.Contains(t, err.Error(), env)
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		t.Parallel()
		_, err := resolveProvider(context.Background(), withProvider("mainframe"), keys)
		require.ErrorIs(t, err, relay.ErrValidation)
		assert.Contains(t, err.Error(), "unknown provider")
	})
}

func TestDepsReadKeysFromEnv(t *testing.T) {
	t.Parallel()

	a := newApp(nil, nil, nil, func(key string) string {
		if key == "ANTHROPIC_API_KEY" {
			return "sk-env"
		}
		return ""
	})
	a.cfg = withProvider("anthropic")
	a.invoker = noInvocations(t)

	p, _, err := a.deps(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &anthropic.Client{}, p)

	b := newApp(nil, nil, nil, func(string) string { return "" })
	b.cfg = withProvider("gemini")
	_, _, err = b.deps(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY not set")
}

func TestWorkerCommand(t *testing.T) {
	t.Parallel()

	self := func() (string, error) { return "/usr/local/bin/relay", nil }

	t.Run("configured command", func(t *testing.T) {
		t.Parallel()
		wc := config.WorkerConfig{Command: "python3", Args: []string{"worker.py"}, Dir: "/opt/w", Env: []string{"A=1"}}
		got, err := workerCommand(wc, "cfg.yaml", self)
		require.NoError(t, err)
		assert.Equal(t, mcp.Command{Path: "python3", Args: []string{"worker.py"}, Dir: "/opt/w", Env: []string{"A=1"}}, got)
	})

	t.Run("self without config", func(t *testing.T) {
		t.Parallel()
		got, err := workerCommand(config.WorkerConfig{}, "", self)
		require.NoError(t, err)
		assert.Equal(t, mcp.Command{Path: "/usr/local/bin/relay", Args: []string{"worker"}}, got)
	})

	t.Run("self passes an absolute config path", func(t *testing.T) {
		t.Parallel()
		got, err := workerCommand(config.WorkerConfig{}, "conf/relay.yaml", self)
		require.NoError(t, err)
		abs, err := filepath.Abs("conf/relay.yaml")
		require.NoError(t, err)
		assert.Equal(t, []string{"worker", "--config", abs}, got.Args)
	})

	t.Run("executable lookup fails", func(t *testing.T) {
		t.Parallel()
		_, err := workerCommand(config.WorkerConfig{}, "", func() (string, error) {
			return "", errors.New("no /proc")
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "locate worker executable")
	})
}

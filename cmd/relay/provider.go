package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fwojciec/relay"
	"github.com/fwojciec/relay/agent"
	"github.com/fwojciec/relay/anthropic"
	"github.com/fwojciec/relay/config"
	"github.com/fwojciec/relay/gemini"
	"github.com/fwojciec/relay/mcp"
	"github.com/fwojciec/relay/openai"
	"go.uber.org/zap"
)

// ollamaAPIKey is sent to Ollama, which ignores it.
const ollamaAPIKey = "ollama"

// apiKeys carries the provider keys read from the environment in main.
type apiKeys struct {
	openAI    string
	anthropic string
	gemini    string
}

// resolveProvider constructs the chat backend selected by cfg.Provider.
func resolveProvider(ctx context.Context, cfg config.Config, keys apiKeys) (relay.Provider, error) {
	switch cfg.Provider {
	case "ollama":
		opts := []openai.Option{openai.WithBaseURL(openai.OllamaBaseURL(cfg.Ollama.Host))}
		if cfg.Ollama.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Ollama.Model))
		}
		return openai.New(ollamaAPIKey, opts...), nil
	case "openai":
		if keys.openAI == "" {
			return nil, errors.New("OPENAI_API_KEY not set")
		}
		var opts []openai.Option
		if cfg.OpenAI.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.OpenAI.BaseURL))
		}
		if cfg.OpenAI.Model != "" {
			opts = append(opts, openai.WithModel(cfg.OpenAI.Model))
		}
		return openai.New(keys.openAI, opts...), nil
	case "anthropic":
		if keys.anthropic == "" {
			return nil, errors.New("ANTHROPIC_API_KEY not set")
		}
		var opts []anthropic.Option
		if cfg.Anthropic.Model != "" {
			opts = append(opts, anthropic.WithModel(cfg.Anthropic.Model))
		}
		if cfg.Anthropic.MaxTokens > 0 {
			opts = append(opts, anthropic.WithMaxTokens(cfg.Anthropic.MaxTokens))
		}
		return anthropic.New(keys.anthropic, opts...), nil
	case "gemini":
		if keys.gemini == "" {
			return nil, errors.New("GEMINI_API_KEY not set")
		}
		var opts []gemini.Option
		if cfg.Gemini.Model != "" {
			opts = append(opts, gemini.WithModel(cfg.Gemini.Model))
		}
		client, err := gemini.New(ctx, keys.gemini, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown provider %q: %w", cfg.Provider, relay.ErrValidation)
	}
}

// newBridge builds the worker bridge. Without a configured worker command
// the running executable is started as "relay worker", pointed at the same
// config file.
func newBridge(cfg config.Config, configPath string, stderr io.Writer, logger *zap.Logger) (*mcp.Bridge, error) {
	cmd, err := workerCommand(cfg.Worker, configPath, os.Executable)
	if err != nil {
		return nil, err
	}
	cmd.Stderr = stderr
	return mcp.New(
		mcp.WithCommand(cmd),
		mcp.WithCallTimeout(cfg.Worker.CallTimeout),
		mcp.WithLogger(logger),
	)
}

func workerCommand(wc config.WorkerConfig, configPath string, executable func() (string, error)) (mcp.Command, error) {
	if wc.Command != "" {
		return mcp.Command{Path: wc.Command, Args: wc.Args, Dir: wc.Dir, Env: wc.Env}, nil
	}
	self, err := executable()
	if err != nil {
		return mcp.Command{}, fmt.Errorf("locate worker executable: %w", err)
	}
	args := []string{"worker"}
	if configPath != "" {
		abs, err := filepath.Abs(configPath)
		if err != nil {
			return mcp.Command{}, fmt.Errorf("resolve config path: %w", err)
		}
		args = append(args, "--config", abs)
	}
	return mcp.Command{Path: self, Args: args, Dir: wc.Dir, Env: wc.Env}, nil
}

// runOptions sends the active provider's configured model with every
// request of a turn.
func runOptions(cfg config.Config) []agent.RunOption {
	var model string
	var maxTokens int
	switch cfg.Provider {
	case "ollama":
		model = cfg.Ollama.Model
	case "openai":
		model = cfg.OpenAI.Model
	case "anthropic":
		model, maxTokens = cfg.Anthropic.Model, cfg.Anthropic.MaxTokens
	case "gemini":
		model = cfg.Gemini.Model
	}
	return []agent.RunOption{agent.WithModel(model), agent.WithMaxTokens(maxTokens)}
}

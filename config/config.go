// Package config loads the relay configuration from YAML.
//
// A Config is built once at startup and passed by value to the components
// that need it; nothing here keeps package-level state.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/fwojciec/relay"
	relayfs "github.com/fwojciec/relay/fs"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no path is given.
const DefaultPath = "config.yaml"

// Providers lists the chat backends a Config may select.
var Providers = []string{"ollama", "openai", "anthropic", "gemini"}

// Config is the complete runtime configuration.
type Config struct {
	Provider  string          `yaml:"provider"`
	Ollama    OllamaConfig    `yaml:"ollama"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Worker    WorkerConfig    `yaml:"worker"`
	Agent     AgentConfig     `yaml:"agent"`
	FS        FSConfig        `yaml:"fs"`
	Logs      LogsConfig      `yaml:"logs"`
	Log       LogConfig       `yaml:"log"`
}

type OllamaConfig struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`
}

type OpenAIConfig struct {
	// BaseURL empty means the public OpenAI endpoint.
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type AnthropicConfig struct {
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

type GeminiConfig struct {
	Model string `yaml:"model"`
}

// WorkerConfig describes how capability workers are started. An empty
// Command runs the relay executable itself with the "worker" argument.
type WorkerConfig struct {
	Command     string        `yaml:"command"`
	Args        []string      `yaml:"args"`
	Dir         string        `yaml:"dir"`
	Env         []string      `yaml:"env"`
	CallTimeout time.Duration `yaml:"call_timeout"`
}

type AgentConfig struct {
	// MaxRounds of zero means no limit.
	MaxRounds   int  `yaml:"max_rounds"`
	AutoApprove bool `yaml:"auto_approve"`
}

// FSConfig restricts the file capabilities to paths matching Allow.
type FSConfig struct {
	Allow []string `yaml:"allow"`
}

// LogsConfig names the files used by the log monitor.
type LogsConfig struct {
	Auth   string `yaml:"auth"`
	Threat string `yaml:"threat"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Provider:  "ollama",
		Ollama:    OllamaConfig{Host: "http://localhost:11434", Model: "llama3.1"},
		OpenAI:    OpenAIConfig{Model: "gpt-4o-mini"},
		Anthropic: AnthropicConfig{Model: "claude-sonnet-4-20250514", MaxTokens: 4096},
		Gemini:    GeminiConfig{Model: "gemini-2.5-flash"},
		Worker:    WorkerConfig{CallTimeout: 60 * time.Second},
		Logs:      LogsConfig{Auth: "/var/log/auth.log", Threat: "threat.log"},
		Log:       LogConfig{Level: "info"},
	}
}

// Load reads the configuration at path over the defaults. An empty path
// means DefaultPath, which may be absent; an explicitly named file must
// exist. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values no component can use.
func (c Config) Validate() error {
	if !slices.Contains(Providers, c.Provider) {
		return fmt.Errorf("unknown provider %q: %w", c.Provider, relay.ErrValidation)
	}
	if c.Agent.MaxRounds < 0 {
		return fmt.Errorf("agent.max_rounds must be non-negative, got %d: %w", c.Agent.MaxRounds, relay.ErrValidation)
	}
	if c.Worker.CallTimeout <= 0 {
		return fmt.Errorf("worker.call_timeout must be positive, got %s: %w", c.Worker.CallTimeout, relay.ErrValidation)
	}
	if c.Anthropic.MaxTokens < 0 {
		return fmt.Errorf("anthropic.max_tokens must be non-negative: %w", relay.ErrValidation)
	}
	if _, err := c.Guard(); err != nil {
		return fmt.Errorf("fs.allow: %v: %w", err, relay.ErrValidation)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("log.level: %v: %w", err, relay.ErrValidation)
	}
	return nil
}

// Guard builds the file allow-list. It is nil when no patterns are set.
func (c Config) Guard() (*relayfs.Guard, error) {
	if len(c.FS.Allow) == 0 {
		return nil, nil
	}
	return relayfs.NewGuard(c.FS.Allow...)
}

// Level returns the configured log level.
func (c Config) Level() (zapcore.Level, error) {
	if c.Log.Level == "" {
		return zapcore.InfoLevel, nil
	}
	return zapcore.ParseLevel(c.Log.Level)
}

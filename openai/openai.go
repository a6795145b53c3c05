// Package openai implements [relay.Provider] for OpenAI-compatible chat
// completion endpoints, including Ollama's /v1 API.
//
// It wraps github.com/openai/openai-go. Transcript roles map one to one onto
// chat completion roles.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fwojciec/relay"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultModel = "gpt-4o-mini"

	// DefaultOllamaHost is where a local Ollama server listens.
	DefaultOllamaHost = "http://localhost:11434"
)

// OllamaBaseURL returns the OpenAI-compatible endpoint of an Ollama server.
func OllamaBaseURL(host string) string {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		host = DefaultOllamaHost
	}
	if strings.HasSuffix(host, "/v1") {
		return host
	}
	return host + "/v1"
}

// Interface compliance check.
var _ relay.Provider = (*Client)(nil)

// Client implements [relay.Provider] for a chat completions endpoint.
type Client struct {
	client openai.Client
	model  string
}

// Option configures a [Client].
type Option func(*clientConfig)

type clientConfig struct {
	model      string
	baseURL    string
	httpClient *http.Client
}

// WithModel sets the default model ID.
func WithModel(model string) Option {
	return func(c *clientConfig) { c.model = model }
}

// WithBaseURL sets the API base URL, e.g. [OllamaBaseURL].
func WithBaseURL(url string) Option {
	return func(c *clientConfig) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = hc }
}

// New creates a new [Client]. Ollama ignores the API key; any non-empty
// value works.
func New(apiKey string, opts ...Option) *Client {
	cfg := clientConfig{model: defaultModel}
	for _, o := range opts {
		o(&cfg)
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(cfg.httpClient))
	}
	return &Client{client: openai.NewClient(reqOpts...), model: cfg.model}
}

// Complete sends the transcript as a chat completion request and returns
// the first choice's content.
func (c *Client) Complete(ctx context.Context, req relay.Request) (relay.Reply, error) {
	if err := req.Validate(); err != nil {
		return relay.Reply{}, fmt.Errorf("openai: %w", err)
	}
	model := req.Model
	if model == "" {
		model = c.model
	}

	params := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: ConvertMessages(req.Messages),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return relay.Reply{}, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return relay.Reply{}, errors.New("openai: response has no choices")
	}
	return relay.Reply{
		Text: resp.Choices[0].Message.Content,
		Usage: relay.Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
	}, nil
}

// ConvertMessages converts relay Messages to chat completion messages.
// Exported for testing.
func ConvertMessages(msgs []relay.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case relay.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case relay.RoleUser:
			out = append(out, openai.UserMessage(m.Content))
		case relay.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		}
	}
	return out
}

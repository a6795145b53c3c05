package gemini

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fwojciec/relay"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ relay.Provider = (*Client)(nil)

// Client implements [relay.Provider] for the Google Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// Option configures a [Client].
type Option func(*clientConfig)

type clientConfig struct {
	model      string
	baseURL    string
	httpClient *http.Client
}

// WithModel sets the model ID. Default is gemini-2.5-flash.
func WithModel(model string) Option {
	return func(c *clientConfig) { c.model = model }
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) { c.baseURL = url }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = hc }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	cfg := clientConfig{model: defaultModel}
	for _, o := range opts {
		o(&cfg)
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  cfg.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return &Client{client: gc, model: cfg.model}, nil
}

// Complete sends the transcript to the Gemini API and returns the reply
// text. Thought parts are not part of the reply.
func (c *Client) Complete(ctx context.Context, req relay.Request) (relay.Reply, error) {
	if err := req.Validate(); err != nil {
		return relay.Reply{}, fmt.Errorf("gemini: %w", err)
	}
	model := req.Model
	if model == "" {
		model = c.model
	}

	system, contents := ConvertMessages(req.Messages)
	resp, err := c.client.Models.GenerateContent(ctx, model, contents, buildConfig(req, system))
	if err != nil {
		return relay.Reply{}, fmt.Errorf("gemini: %w", err)
	}

	reply := relay.Reply{Text: resp.Text()}
	if u := resp.UsageMetadata; u != nil {
		reply.Usage = relay.Usage{
			InputTokens:  int(u.PromptTokenCount),
			OutputTokens: int(u.CandidatesTokenCount),
		}
	}
	return reply, nil
}

func buildConfig(req relay.Request, system string) *genai.GenerateContentConfig {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}
	return config
}

// ConvertMessages splits relay Messages into the system instruction and the
// genai Contents of the conversation.
// Exported for testing.
func ConvertMessages(msgs []relay.Message) (string, []*genai.Content) {
	var system string
	var result []*genai.Content
	for _, m := range msgs {
		switch m.Role {
		case relay.RoleSystem:
			system = m.Content
		case relay.RoleUser:
			result = append(result, genai.NewContentFromText(m.Content, genai.RoleUser))
		case relay.RoleAssistant:
			result = append(result, genai.NewContentFromText(m.Content, genai.RoleModel))
		}
	}
	return system, result
}

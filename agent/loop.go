// Package agent orchestrates the conversation loop between a Provider and a
// tool Dispatcher.
package agent

import (
	"context"
	"fmt"

	"github.com/fwojciec/relay"
	"github.com/fwojciec/relay/dispatch"
	"github.com/fwojciec/relay/reply"
	"go.uber.org/zap"
)

// Dispatcher runs one tool call through the confirmation gate.
type Dispatcher interface {
	Dispatch(ctx context.Context, call relay.ToolCall) (dispatch.Outcome, error)
}

// Loop orchestrates the conversation between a Provider and a Dispatcher.
type Loop struct {
	provider   relay.Provider
	dispatcher Dispatcher
	maxRounds  int
	logger     *zap.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithMaxRounds ends a turn with a notice after n tool rounds without a
// final answer. Zero, the default, means no limit.
func WithMaxRounds(n int) Option {
	return func(l *Loop) { l.maxRounds = max(n, 0) }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

// New creates a new Loop with the given provider and dispatcher.
func New(provider relay.Provider, dispatcher Dispatcher, opts ...Option) *Loop {
	l := &Loop{provider: provider, dispatcher: dispatcher, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RunOption configures a single Run invocation.
type RunOption func(*runConfig)

type runConfig struct {
	onEvent   func(relay.Event)
	model     string
	maxTokens int
}

// WithEventHandler sets a callback that receives each event during the run.
// If nil or not set, events are silently discarded.
func WithEventHandler(h func(relay.Event)) RunOption {
	return func(c *runConfig) {
		c.onEvent = h
	}
}

// WithModel sets the model ID for provider requests during this run.
// Empty string means the provider uses its default model.
func WithModel(model string) RunOption {
	return func(c *runConfig) {
		c.model = model
	}
}

// WithMaxTokens caps the reply length of each provider request.
func WithMaxTokens(n int) RunOption {
	return func(c *runConfig) {
		c.maxTokens = n
	}
}

// TurnResult describes how a turn ended.
type TurnResult struct {
	Reason relay.StopReason
	// Text is the final summary or plain reply; empty for other reasons.
	Text string
	// Rounds counts provider requests made during the turn.
	Rounds int
	Usage  relay.Usage
}

// Err maps the stop reasons that end a turn without an answer to their
// sentinel errors. It returns nil for final answers and plain replies.
func (r TurnResult) Err() error {
	switch r.Reason {
	case relay.StopUnknownTool:
		return relay.ErrUnknownTool
	case relay.StopDeclined:
		return relay.ErrDeclined
	case relay.StopRoundLimit:
		return relay.ErrRoundLimit
	}
	return nil
}

// Run executes one user turn. A non-empty input is appended as a user
// message first. The loop then asks the provider for the next step,
// dispatches tool calls and feeds their results back, until the model gives
// a final answer or plain text, or dispatch stops the turn.
//
// If ctx is cancelled, or a confirmation cannot be obtained, the transcript
// is rolled back to the start of the interrupted round and the error is
// returned.
func (l *Loop) Run(ctx context.Context, transcript *relay.Transcript, input string, opts ...RunOption) (TurnResult, error) {
	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if input != "" {
		transcript.Append(relay.UserMessage(input))
	}

	var res TurnResult
	for {
		done, err := l.round(ctx, transcript, &cfg, &res)
		if err != nil || done {
			return res, err
		}
		if l.maxRounds > 0 && res.Rounds >= l.maxRounds {
			notice := fmt.Sprintf("Stopped after %d tool rounds without a final answer.", res.Rounds)
			l.logger.Info("round limit reached", zap.Int("rounds", res.Rounds))
			emit(&cfg, relay.EventNotice{Reason: relay.StopRoundLimit, Text: notice})
			res.Reason = relay.StopRoundLimit
			return res, nil
		}
	}
}

// round performs one request and acts on the reply. It reports whether the
// turn is over.
func (l *Loop) round(ctx context.Context, transcript *relay.Transcript, cfg *runConfig, res *TurnResult) (bool, error) {
	start := transcript.Len()
	rollback := func(err error) (bool, error) {
		transcript.Truncate(start)
		return true, err
	}
	if err := ctx.Err(); err != nil {
		return rollback(err)
	}

	req := relay.Request{
		Model:     cfg.model,
		Messages:  transcript.Messages,
		MaxTokens: cfg.maxTokens,
	}
	if err := req.Validate(); err != nil {
		return true, err
	}

	res.Rounds++
	rep, err := l.provider.Complete(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return rollback(ctx.Err())
		}
		return rollback(fmt.Errorf("complete: %w", err))
	}
	res.Usage = res.Usage.Add(rep.Usage)

	parsed := reply.Parse(rep.Text)
	switch cmd := parsed.(type) {
	case relay.ToolCall:
		transcript.Append(relay.AssistantMessage(rep.Text))
		if cmd.Embedded {
			emit(cfg, relay.EventAssistantText{Text: rep.Text})
		}
		l.logger.Debug("tool call", zap.String("tool", cmd.Name), zap.Int("round", res.Rounds))

		outcome, err := l.dispatcher.Dispatch(ctx, cmd)
		if err != nil {
			return rollback(err)
		}
		if err := ctx.Err(); err != nil {
			return rollback(err)
		}

		switch o := outcome.(type) {
		case dispatch.Stopped:
			transcript.Append(relay.UserMessage(o.Notice))
			emit(cfg, relay.EventNotice{Reason: o.Reason, Text: o.Notice})
			res.Reason = o.Reason
			return true, nil
		case dispatch.Executed:
			transcript.Append(relay.UserMessage(fmt.Sprintf("Tool %s result: %s", cmd.Name, o.Result)))
			emit(cfg, relay.EventToolResult{Tool: cmd.Name, Display: o.Display, Result: o.Result})
			return false, nil
		}
		return true, fmt.Errorf("unexpected dispatch outcome %T", outcome)

	case relay.FinalAnswer:
		if cmd.Embedded {
			emit(cfg, relay.EventAssistantText{Text: rep.Text})
		}
		transcript.Append(relay.AssistantMessage(cmd.Summary))
		emit(cfg, relay.EventFinal{Summary: cmd.Summary})
		res.Reason = relay.StopFinal
		res.Text = cmd.Summary
		return true, nil

	case relay.PlainText:
		transcript.Append(relay.AssistantMessage(rep.Text))
		emit(cfg, relay.EventAssistantText{Text: rep.Text})
		res.Reason = relay.StopPlainText
		res.Text = rep.Text
		return true, nil
	}
	return true, fmt.Errorf("unexpected command %T", parsed)
}

func emit(cfg *runConfig, e relay.Event) {
	if cfg.onEvent != nil {
		cfg.onEvent(e)
	}
}

// Package dispatch resolves tool calls against the capability table, gates
// each one behind a human confirmation, and invokes it.
//
// Dispatch has two ways to report an outcome. Unknown tools and declined
// confirmations produce Stopped, which ends the turn. Everything that happens
// once a call is approved produces Executed, including invocation failures,
// which become error results the model can react to.
package dispatch

import (
	"context"
	"fmt"

	"github.com/fwojciec/relay"
	"github.com/fwojciec/relay/capability"
	"go.uber.org/zap"
)

// Outcome is a sealed interface for the result of dispatching one call.
// The unexported marker method prevents external implementations.
type Outcome interface {
	outcome()
}

// Executed reports an approved call. Result goes into the transcript in
// full; Display is the human-facing echo.
type Executed struct {
	Result  relay.ToolResult
	Display string
}

func (Executed) outcome() {}

// Stopped ends the turn without a tool result. Notice is the text shown to
// the user and recorded in the transcript.
type Stopped struct {
	Reason relay.StopReason
	Notice string
}

func (Stopped) outcome() {}

// Interface compliance checks.
var (
	_ Outcome = Executed{}
	_ Outcome = Stopped{}
)

// Dispatcher runs tool calls through the confirmation gate.
type Dispatcher struct {
	invoker   relay.Invoker
	confirmer relay.Confirmer
	allowed   map[capability.Name]bool
	logger    *zap.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithAllowed restricts dispatch to the given capabilities. Calls to any
// other name are treated as unknown tools. By default every capability is
// allowed.
func WithAllowed(names ...capability.Name) Option {
	return func(d *Dispatcher) {
		d.allowed = make(map[capability.Name]bool, len(names))
		for _, n := range names {
			d.allowed[n] = true
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// New creates a Dispatcher.
func New(invoker relay.Invoker, confirmer relay.Confirmer, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		invoker:   invoker,
		confirmer: confirmer,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Allowed returns the capabilities this dispatcher accepts, in prompt order.
func (d *Dispatcher) Allowed() []capability.Name {
	var out []capability.Name
	for _, n := range capability.All() {
		if d.allowed == nil || d.allowed[n] {
			out = append(out, n)
		}
	}
	return out
}

// Dispatch runs one tool call. The returned error is non-nil only when no
// confirmation decision could be obtained; the caller should abandon the
// turn.
func (d *Dispatcher) Dispatch(ctx context.Context, call relay.ToolCall) (Outcome, error) {
	if !d.known(call.Name) {
		d.logger.Debug("unknown tool", zap.String("tool", call.Name))
		return Stopped{
			Reason: relay.StopUnknownTool,
			Notice: fmt.Sprintf("Unknown tool '%s'.", call.Name),
		}, nil
	}

	args := call.Args
	if args == nil {
		args = map[string]any{}
	}

	ok, err := d.confirmer.Confirm(ctx, Prompt(call.Name, args))
	if err != nil {
		return nil, fmt.Errorf("confirm %s: %w", call.Name, err)
	}
	if !ok {
		d.logger.Debug("tool declined", zap.String("tool", call.Name))
		return Stopped{
			Reason: relay.StopDeclined,
			Notice: fmt.Sprintf("User declined to run tool %s.", call.Name),
		}, nil
	}

	result := d.invoke(ctx, call.Name, args)
	return Executed{Result: result, Display: Display(result)}, nil
}

func (d *Dispatcher) known(name string) bool {
	if _, ok := capability.Lookup(name); !ok {
		return false
	}
	return d.allowed == nil || d.allowed[capability.Name(name)]
}

// invoke calls the invoker and turns every failure, including a panic, into
// an error result.
func (d *Dispatcher) invoke(ctx context.Context, name string, args map[string]any) (result relay.ToolResult) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("tool panicked", zap.String("tool", name), zap.Any("panic", r))
			result = relay.ErrorResult(fmt.Errorf("tool %s panicked: %v", name, r))
		}
	}()

	v, err := d.invoker.Invoke(ctx, name, args)
	if err != nil {
		d.logger.Warn("tool invocation failed", zap.String("tool", name), zap.Error(err))
		return relay.ErrorResult(err)
	}
	return relay.NewToolResult(v)
}

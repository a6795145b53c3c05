// Package mcp invokes capabilities on a worker process over the Model
// Context Protocol.
//
// Every call gets its own session: the bridge starts a worker, performs the
// protocol handshake, sends exactly one tool call, and tears the session
// down before returning, whatever the outcome. Sessions are never reused, so
// a wedged worker can only affect the call that started it.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	osexec "os/exec"
	"time"

	"github.com/fwojciec/relay"
	"github.com/fwojciec/relay/capability"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

var _ relay.Invoker = (*Bridge)(nil)

// DefaultCallTimeout bounds one session from worker start to teardown.
const DefaultCallTimeout = 60 * time.Second

// TransportFunc returns a transport to a fresh worker. It is called once per
// invocation.
type TransportFunc func(ctx context.Context) (sdk.Transport, error)

// Command describes how to start a worker process.
type Command struct {
	Path string
	Args []string
	Dir  string
	// Env is added to the current environment.
	Env []string
	// Stderr receives the worker's diagnostics. Nil discards them.
	Stderr io.Writer
}

// Bridge is a relay.Invoker that runs each call in a new worker session.
type Bridge struct {
	client      *sdk.Client
	transport   TransportFunc
	callTimeout time.Duration
	logger      *zap.Logger
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(b *Bridge) { b.logger = l }
}

// WithTransport sets how workers are reached. It takes precedence over the
// default command.
func WithTransport(fn TransportFunc) Option {
	return func(b *Bridge) { b.transport = fn }
}

// WithCommand starts workers with cmd.
func WithCommand(cmd Command) Option {
	return func(b *Bridge) { b.transport = commandTransport(cmd) }
}

// WithCallTimeout bounds each session. Zero or negative disables the bound;
// the capabilities still enforce their own timeouts.
func WithCallTimeout(d time.Duration) Option {
	return func(b *Bridge) { b.callTimeout = d }
}

// New creates a Bridge. Without WithCommand or WithTransport the worker is
// the running executable started with the single argument "worker".
func New(opts ...Option) (*Bridge, error) {
	b := &Bridge{
		client:      sdk.NewClient(&sdk.Implementation{Name: "relay", Version: relay.Version}, nil),
		callTimeout: DefaultCallTimeout,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.transport == nil {
		self, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("locate worker executable: %w", err)
		}
		b.transport = commandTransport(Command{Path: self, Args: []string{"worker"}})
	}
	return b, nil
}

func commandTransport(c Command) TransportFunc {
	return func(ctx context.Context) (sdk.Transport, error) {
		if c.Path == "" {
			return nil, errors.New("worker command is empty")
		}
		cmd := osexec.CommandContext(ctx, c.Path, c.Args...)
		cmd.Dir = c.Dir
		if len(c.Env) > 0 {
			cmd.Env = append(os.Environ(), c.Env...)
		}
		cmd.Stderr = c.Stderr
		return &sdk.CommandTransport{Command: cmd}, nil
	}
}

// Invoke validates args, then runs the call in a new worker session. The
// session is closed before Invoke returns; a failure to close it is logged
// and does not change the result.
func (b *Bridge) Invoke(ctx context.Context, name string, args map[string]any) (any, error) {
	prepared, err := capability.Prepare(name, args)
	if err != nil {
		return nil, err
	}

	if b.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.callTimeout)
		defer cancel()
	}

	start := time.Now()
	t, err := b.transport(ctx)
	if err != nil {
		return nil, fmt.Errorf("start worker: %w", err)
	}
	session, err := b.client.Connect(ctx, t, nil)
	if err != nil {
		return nil, b.callError(ctx, name, "connect to worker", err)
	}
	b.logger.Debug("worker session opened", zap.String("tool", name))
	defer b.close(session, name, start)

	res, err := session.CallTool(ctx, &sdk.CallToolParams{Name: name, Arguments: prepared})
	if err != nil {
		return nil, b.callError(ctx, name, "call "+name, err)
	}
	return Normalize(res)
}

func (b *Bridge) callError(ctx context.Context, name, op string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: tool %s timed out after %s: %w", op, name, b.callTimeout, ctx.Err())
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (b *Bridge) close(session *sdk.ClientSession, name string, start time.Time) {
	err := session.Close()
	if err != nil {
		b.logger.Warn("worker session teardown failed", zap.String("tool", name), zap.Error(err))
		return
	}
	b.logger.Debug("worker session closed",
		zap.String("tool", name),
		zap.Duration("elapsed", time.Since(start)))
}

// Package worker serves the host capabilities over the Model Context
// Protocol. A worker process handles one client session and exits when the
// client closes its input stream.
//
// Arguments are checked against the capability schemas again on arrival.
// Invalid arguments are answered with the protocol's error flag. Failures of
// the capability itself are ordinary payloads with status "error".
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/relay"
	"github.com/fwojciec/relay/capability"
	"github.com/fwojciec/relay/exec"
	"github.com/fwojciec/relay/fs"
	"github.com/fwojciec/relay/netprobe"
	"github.com/fwojciec/relay/sysinfo"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// Name identifies the worker in the protocol handshake.
const Name = "relay-worker"

// Server exposes the capabilities as MCP tools.
type Server struct {
	mcp     *mcp.Server
	runner  *exec.Runner
	files   *fs.FS
	scanner *netprobe.Scanner
	source  sysinfo.Source
	logger  *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithGuard limits read_file and append_log to the guard's patterns.
func WithGuard(g *fs.Guard) Option {
	return func(s *Server) { s.files = fs.New(g) }
}

// WithRunner replaces the process runner.
func WithRunner(r *exec.Runner) Option {
	return func(s *Server) { s.runner = r }
}

// WithScanner replaces the port scanner.
func WithScanner(sc *netprobe.Scanner) Option {
	return func(s *Server) { s.scanner = sc }
}

// WithSysinfo replaces the source of host facts.
func WithSysinfo(src sysinfo.Source) Option {
	return func(s *Server) { s.source = src }
}

// New creates a Server with every capability registered.
func New(opts ...Option) *Server {
	s := &Server{
		runner:  exec.NewRunner(),
		files:   fs.New(nil),
		scanner: &netprobe.Scanner{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcp = mcp.NewServer(&mcp.Implementation{Name: Name, Version: relay.Version}, nil)

	handlers := map[capability.Name]handlerFunc{
		capability.ReadFile:   s.readFile,
		capability.AppendLog:  s.appendLog,
		capability.RunCommand: s.runCommand,
		capability.SystemInfo: s.systemInfo,
		capability.PingHost:   s.pingHost,
		capability.ScanPort:   s.scanPort,
		capability.SSHCommand: s.sshCommand,
	}
	for _, name := range capability.All() {
		spec, _ := capability.Lookup(string(name))
		s.mcp.AddTool(&mcp.Tool{
			Name:        string(name),
			Description: spec.Description,
			InputSchema: spec.InputSchema(),
		}, s.handle(name, handlers[name]))
	}
	return s
}

// Run serves one session over stdin/stdout until the client disconnects or
// ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Debug("worker started")
	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	s.logger.Debug("worker stopped", zap.Error(err))
	return err
}

// Connect serves a session over t. It is used to run a worker in-process.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.mcp.Connect(ctx, t, nil)
}

// handlerFunc runs a capability with prepared arguments and returns the
// payload to send back.
type handlerFunc func(ctx context.Context, args map[string]any) any

func (s *Server) handle(name capability.Name, fn handlerFunc) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		args := map[string]any{}
		if raw := bytes.TrimSpace(req.Params.Arguments); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
			if err := json.Unmarshal(raw, &args); err != nil {
				return invalid(fmt.Errorf("%s: arguments must be an object: %w", name, err)), nil
			}
		}
		prepared, err := capability.Prepare(string(name), args)
		if err != nil {
			s.logger.Debug("invalid arguments", zap.String("tool", string(name)), zap.Error(err))
			return invalid(err), nil
		}

		payload := fn(ctx, prepared)

		res, err := encode(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: encode result: %w", name, err)
		}
		s.logger.Debug("tool finished",
			zap.String("tool", string(name)),
			zap.Duration("elapsed", time.Since(start)))
		return res, nil
	}
}

// encode carries payload both as structured content and as its JSON text,
// for clients that only read content blocks.
func encode(payload any) (*mcp.CallToolResult, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, err
	}
	data := json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n"))
	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: string(data)}},
		StructuredContent: data,
	}, nil
}

func invalid(err error) *mcp.CallToolResult {
	var res mcp.CallToolResult
	res.SetError(err)
	return &res
}

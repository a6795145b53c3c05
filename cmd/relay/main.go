// Command relay is a command-line automation assistant. A chat model decides
// which host capabilities to run; every call is confirmed by the operator and
// executed by a worker process spoken to over MCP.
//
// Usage:
//
//	relay [chat] [--session PATH]     interactive chat (default)
//	relay monitor [--yes]             analyze the auth log and write notes
//	relay worker                      serve capabilities over stdio
//
// Global flags:
//
//	--config string   Path to config file (default: config.yaml)
//	--verbose         Enable debug logging
//
// API keys are read from OPENAI_API_KEY, ANTHROPIC_API_KEY and
// GEMINI_API_KEY.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/fwojciec/relay"
	"github.com/fwojciec/relay/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	a := newApp(os.Stdin, os.Stdout, os.Stderr, os.Getenv)
	if err := a.command().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "relay: %v\n", err)
		os.Exit(1)
	}
}

// app holds what the subcommands share. Env vars are only read through
// getenv. provider and invoker are built from the config unless set.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string

	configPath string
	verbose    bool

	cfg      config.Config
	logger   *zap.Logger
	provider relay.Provider
	invoker  relay.Invoker
}

func newApp(stdin io.Reader, stdout, stderr io.Writer, getenv func(string) string) *app {
	return &app{stdin: stdin, stdout: stdout, stderr: stderr, getenv: getenv, logger: zap.NewNop()}
}

func (a *app) command() *cobra.Command {
	chat := a.chatCommand()
	root := &cobra.Command{
		Use:     "relay",
		Short:   "Command-line automation assistant",
		Version: relay.Version,
		Long: `relay lets a chat model operate this host through a closed set of
capabilities: reading and appending files, running commands, pinging hosts,
scanning ports, running remote commands over ssh and reporting system facts.
Every call is shown to you and runs only after you approve it.

Run without arguments to start the interactive chat.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
		RunE: chat.RunE,
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (default: "+config.DefaultPath+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.Flags().AddFlagSet(chat.Flags())

	root.AddCommand(chat)
	root.AddCommand(a.monitorCommand())
	root.AddCommand(a.workerCommand())
	return root
}

// setup loads the config and builds the logger.
func (a *app) setup(*cobra.Command, []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if a.verbose {
		level = zapcore.DebugLevel
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	logger, err := zc.Build()
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	a.logger = logger
	return nil
}

// deps builds the provider and invoker that were not injected.
func (a *app) deps(ctx context.Context) (relay.Provider, relay.Invoker, error) {
	if a.provider == nil {
		p, err := resolveProvider(ctx, a.cfg, apiKeys{
			openAI:    a.getenv("OPENAI_API_KEY"),
			anthropic: a.getenv("ANTHROPIC_API_KEY"),
			gemini:    a.getenv("GEMINI_API_KEY"),
		})
		if err != nil {
			return nil, nil, err
		}
		a.provider = p
	}
	if a.invoker == nil {
		b, err := newBridge(a.cfg, a.configPath, a.stderr, a.logger)
		if err != nil {
			return nil, nil, err
		}
		a.invoker = b
	}
	return a.provider, a.invoker, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

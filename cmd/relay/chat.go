package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/fwojciec/relay"
	"github.com/fwojciec/relay/agent"
	"github.com/fwojciec/relay/capability"
	"github.com/fwojciec/relay/dispatch"
	relayjson "github.com/fwojciec/relay/json"
	"github.com/fwojciec/relay/terminal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const chatBanner = "Interactive automation chat. Type 'exit' to quit."

func (a *app) chatCommand() *cobra.Command {
	var sessionPath string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runChat(cmd.Context(), sessionPath)
		},
	}
	cmd.Flags().StringVar(&sessionPath, "session", "", "Path to session file to resume and save")
	return cmd
}

func (a *app) runChat(ctx context.Context, sessionPath string) error {
	provider, invoker, err := a.deps(ctx)
	if err != nil {
		return err
	}

	styles := terminal.NewStyles(relay.DefaultTheme())
	console := terminal.NewConsole(a.stdin, a.stdout, styles)
	style := "notty"
	if isTerminal(a.stdout) {
		provider = terminal.Spinning(provider, terminal.NewSpinner(a.stdout, styles))
		style = ""
	}
	renderer, err := terminal.NewRenderer(style, 0)
	if err != nil {
		return err
	}
	printer := terminal.NewPrinter(a.stdout, styles, renderer)

	var confirmer relay.Confirmer = console
	if a.cfg.Agent.AutoApprove {
		confirmer = dispatch.ApproveAll{}
	}
	d := dispatch.New(invoker, confirmer, dispatch.WithLogger(a.logger))
	loop := agent.New(provider, d,
		agent.WithMaxRounds(a.cfg.Agent.MaxRounds),
		agent.WithLogger(a.logger),
	)

	transcript, err := loadOrCreateTranscript(sessionPath, capability.SystemPrompt(capability.ChatPreamble, d.Allowed()))
	if err != nil {
		return err
	}

	printer.Line(chatBanner)
	for {
		input, err := readInput(ctx, console)
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			printer.Line("Exiting.")
			break
		}
		if err != nil {
			return err
		}
		if input == "" {
			continue
		}
		if cmd := strings.ToLower(input); cmd == "exit" || cmd == "quit" {
			printer.Line("Goodbye.")
			break
		}

		turnCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		opts := append(runOptions(a.cfg), agent.WithEventHandler(printer.Handle))
		res, err := loop.Run(turnCtx, &transcript, input, opts...)
		stop()
		switch {
		case errors.Is(err, context.Canceled):
			printer.Notice("Interrupted.")
		case err != nil:
			a.logger.Error("turn failed", zap.Error(err))
			printer.Notice(fmt.Sprintf("Error: %v", err))
		default:
			a.logger.Debug("turn finished",
				zap.String("reason", string(res.Reason)),
				zap.Int("rounds", res.Rounds),
				zap.Int("input_tokens", res.Usage.InputTokens),
				zap.Int("output_tokens", res.Usage.OutputTokens),
			)
		}
	}
	return a.saveTranscript(sessionPath, transcript)
}

// readInput reads one prompt line. An interrupt while waiting cancels the
// read.
func readInput(ctx context.Context, console *terminal.Console) (string, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	return console.Prompt(ctx)
}

func loadOrCreateTranscript(sessionPath, systemPrompt string) (relay.Transcript, error) {
	if sessionPath != "" {
		t, err := relayjson.Load(sessionPath)
		switch {
		case err == nil:
			return t, nil
		case !errors.Is(err, os.ErrNotExist):
			return relay.Transcript{}, fmt.Errorf("load session: %w", err)
		}
	}
	return relay.NewTranscript(systemPrompt), nil
}

// saveTranscript writes the transcript to sessionPath, or auto-saves a
// transcript with conversation to the default location.
func (a *app) saveTranscript(sessionPath string, t relay.Transcript) error {
	if sessionPath != "" {
		if err := relayjson.Save(sessionPath, t); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		return nil
	}
	if t.Len() <= 1 {
		return nil
	}
	savePath := defaultSessionPath(t.ID)
	if err := relayjson.Save(savePath, t); err != nil {
		return fmt.Errorf("auto-save session: %w", err)
	}
	fmt.Fprintf(a.stderr, "Session saved to %s\n", savePath)
	return nil
}

func defaultSessionPath(id string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".relay", "sessions", id+".json")
}

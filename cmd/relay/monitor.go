package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fwojciec/relay"
	"github.com/fwojciec/relay/agent"
	"github.com/fwojciec/relay/capability"
	"github.com/fwojciec/relay/dispatch"
	"github.com/fwojciec/relay/terminal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) monitorCommand() *cobra.Command {
	var (
		yes       bool
		maxRounds int
	)
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Analyze the auth log for suspicious activity",
		Long: `monitor runs one autonomous turn with only read_file and append_log
enabled: the model reads logs.auth and writes its notes to logs.threat.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rounds := a.cfg.Agent.MaxRounds
			if cmd.Flags().Changed("max-rounds") {
				rounds = maxRounds
			}
			return a.runMonitor(cmd.Context(), yes || a.cfg.Agent.AutoApprove, rounds)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Approve every tool call without asking")
	cmd.Flags().IntVar(&maxRounds, "max-rounds", 0, "Stop after this many tool rounds (0: no limit; default from config)")
	return cmd
}

// monitorTask is the instruction given to the model.
func monitorTask(auth, threat string) string {
	return fmt.Sprintf("Analyze %s for suspicious activity and write notes to %s.", auth, threat)
}

func (a *app) runMonitor(ctx context.Context, autoApprove bool, maxRounds int) error {
	if maxRounds < 0 {
		return fmt.Errorf("max-rounds must be non-negative, got %d: %w", maxRounds, relay.ErrValidation)
	}
	provider, invoker, err := a.deps(ctx)
	if err != nil {
		return err
	}

	styles := terminal.NewStyles(relay.DefaultTheme())
	printer := terminal.NewPrinter(a.stdout, styles, nil)
	var confirmer relay.Confirmer = terminal.NewConsole(a.stdin, a.stdout, styles)
	if autoApprove {
		confirmer = dispatch.ApproveAll{}
	}
	d := dispatch.New(invoker, confirmer,
		dispatch.WithAllowed(capability.ReadFile, capability.AppendLog),
		dispatch.WithLogger(a.logger),
	)
	loop := agent.New(provider, d, agent.WithMaxRounds(maxRounds), agent.WithLogger(a.logger))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	transcript := relay.NewTranscript(capability.SystemPrompt(capability.MonitorPreamble, d.Allowed()))
	task := monitorTask(a.cfg.Logs.Auth, a.cfg.Logs.Threat)
	a.logger.Info("monitor started", zap.String("auth", a.cfg.Logs.Auth), zap.String("threat", a.cfg.Logs.Threat))

	// Final answers and plain replies are printed under a header below.
	opts := append(runOptions(a.cfg), agent.WithEventHandler(func(e relay.Event) {
		switch e.(type) {
		case relay.EventToolResult, relay.EventNotice:
			printer.Handle(e)
		}
	}))
	res, err := loop.Run(ctx, &transcript, task, opts...)
	if err != nil {
		return err
	}
	a.logger.Info("monitor finished", zap.String("reason", string(res.Reason)), zap.Int("rounds", res.Rounds))

	switch res.Reason {
	case relay.StopFinal:
		printer.Line("")
		printer.Header("===== FINAL AGENT SUMMARY =====")
		printer.Line(res.Text)
	case relay.StopPlainText:
		printer.Line("")
		printer.Header("===== FINAL RAW OUTPUT =====")
		printer.Line(res.Text)
	}
	return res.Err()
}

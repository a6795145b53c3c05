package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/fwojciec/relay/worker"
	"github.com/spf13/cobra"
)

func (a *app) workerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Serve the capabilities over stdio (started by the chat)",
		Long: `worker speaks MCP on stdin and stdout. The chat starts one worker per
tool call; it is not meant to be run by hand. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			guard, err := a.cfg.Guard()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			srv := worker.New(worker.WithGuard(guard), worker.WithLogger(a.logger))
			return srv.Run(ctx)
		},
	}
}

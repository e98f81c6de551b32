package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/chainreport/indexerd/internal/app"
)

// NewServeCmd creates the serve command: start the indexer, then serve
// the REST and proxy surfaces until interrupted.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin daemon and supervised indexer",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := setupViper(cmd)

			a, cleanup, err := app.InitApp(v)
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := a.Supervisor.Start(ctx); err != nil {
				// The daemon stays up; registrations restart the indexer.
				a.Log.Error("initial indexer start failed", "error", err)
			}

			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(),
				"indexerd serving on :%d (proxy :%d), project %s\n",
				a.Config.RESTPort, a.Config.ProxyPort, a.Config.ProjectRoot)

			err = a.Server.Run(ctx)

			stopCtx, cancel := context.WithTimeout(context.Background(), a.Config.GraceTimeout+a.Config.SettleDelay)
			defer cancel()
			if serr := a.Supervisor.Stop(stopCtx); serr != nil {
				a.Log.Error("indexer shutdown failed", "error", serr)
			}

			return err
		},
	}
}

package main

import (
	"context"

	"github.com/aretw0/botflow/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the botflow engine as an HTTP service. Events are posted per user; the flow file is reloaded when it changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bot, cfg, logger, err := cli.Open(v)
		if err != nil {
			return err
		}
		defer bot.Close()

		noWatch, _ := cmd.Flags().GetBool("no-watch")
		opts := cli.ServeOptions{
			Addr:    cfg.Listen,
			Handler: bot.HTTPHandler(),
			Logger:  logger,
		}
		if !noWatch {
			opts.Watcher = bot
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()
		return cli.RunServe(sigCtx, opts)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("no-watch", false, "Do not reload the flow when its file changes")
}

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/alovak/cardflow-gateway/cardapi"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the card HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := cardapi.LoadConfig(path)
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))

			app := cardapi.NewApp(logger, cfg)
			if err := app.Start(); err != nil {
				return err
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			select {
			case <-stop:
			case <-cmd.Context().Done():
			}

			app.Shutdown()
			return nil
		},
	}

	cmd.Flags().StringP("config", "c", "", "path to a YAML config file")

	return cmd
}

package main

import (
	"fmt"

	"github.com/GriffinCanCode/webtop/internal/infrastructure/server"
	"github.com/spf13/cobra"
)

func newServeCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}

			srv, err := server.NewServer(cfg)
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}

			runErr := srv.Run(cmd.Context())
			if err := srv.Close(); err != nil && runErr == nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&f.host, "host", "", "listen host (HOST)")
	cmd.Flags().StringVarP(&f.port, "port", "p", "", "listen port (PORT)")
	cmd.Flags().BoolVar(&f.watch, "watch", false, "reload app manifests on change (APPS_WATCH)")
	return cmd
}

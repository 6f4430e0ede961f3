package main

import (
	"fmt"
	"io"

	"github.com/GriffinCanCode/webtop/internal/domain/desktop"
	"github.com/GriffinCanCode/webtop/internal/infrastructure/config"
	"github.com/GriffinCanCode/webtop/internal/infrastructure/server"
	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

// openCore builds the window manager over a read-only copy of the state file
func openCore(f *flags, cmd *cobra.Command) (*server.Core, error) {
	cfg, err := f.load(cmd)
	if err != nil {
		return nil, err
	}
	cfg.Store.ReadOnly = true
	if !cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = "error"
	}
	return newCore(cfg)
}

func newCore(cfg *config.Config) (*server.Core, error) {
	logger := server.NewLogger(cfg.Logging)
	core, err := server.NewCore(cfg, logger.Logger, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	return core, nil
}

func printJSON(w io.Writer, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func newStateCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print the persisted desktop state",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := openCore(f, cmd)
			if err != nil {
				return err
			}
			defer core.Close()

			return printJSON(cmd.OutOrStdout(), map[string]any{
				"state":   core.Windows.GetState(),
				"windows": core.Windows.Windows(),
				"taskbar": desktop.Taskbar(core.Windows, core.Registry),
				"stats":   core.Windows.Stats(),
			})
		},
	}
}

func newAppsCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "apps",
		Short: "List the apps that would be registered at startup",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := openCore(f, cmd)
			if err != nil {
				return err
			}
			defer core.Close()

			return printJSON(cmd.OutOrStdout(), map[string]any{
				"seeded": core.Seeded,
				"menu":   desktop.StartMenu(core.Registry),
				"icons":  desktop.Icons(core.Registry),
			})
		},
	}
}

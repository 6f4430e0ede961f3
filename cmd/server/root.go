package main

import (
	"github.com/GriffinCanCode/webtop/internal/infrastructure/config"
	"github.com/spf13/cobra"
)

// flags override values loaded from the environment
type flags struct {
	host     string
	port     string
	store    string
	compress bool
	apps     string
	watch    bool
	dev      bool
	logLevel string
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:           "webtop",
		Short:         "Desktop window manager service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&f.store, "store", "", "state file path (STORE_PATH)")
	pf.BoolVar(&f.compress, "compress", false, "zstd-compress the state file (STORE_COMPRESS)")
	pf.StringVar(&f.apps, "apps", "", "app manifest directory (APPS_DIR)")
	pf.BoolVar(&f.dev, "dev", false, "development logging (LOG_DEV)")
	pf.StringVar(&f.logLevel, "log-level", "", "log level (LOG_LEVEL)")

	cmd.AddCommand(
		newServeCmd(f),
		newStateCmd(f),
		newAppsCmd(f),
	)
	return cmd
}

// load reads the environment and applies the flags the user set
func (f *flags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("host") {
		cfg.Server.Host = f.host
	}
	if changed("port") {
		cfg.Server.Port = f.port
	}
	if changed("store") {
		cfg.Store.Path = f.store
	}
	if changed("compress") {
		cfg.Store.Compress = f.compress
	}
	if changed("apps") {
		cfg.Apps.Dir = f.apps
	}
	if changed("watch") {
		cfg.Apps.Watch = f.watch
	}
	if changed("dev") {
		cfg.Logging.Development = f.dev
	}
	if changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	return cfg, nil
}

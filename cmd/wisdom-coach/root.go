package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/wisdom-coach/internal/config"
	"github.com/PabloGalante/wisdom-coach/internal/observability"
)

func Execute() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "wisdom-coach",
		Short:        "Journal-driven coaching engine",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Config file path (optional).")
	cmd.PersistentFlags().String("log-level", "", "Logging level: debug|info|warn|error (defaults to info).")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// loadConfig reads the config file and environment, applying command flags
// on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	v, err := config.New(path)
	if err != nil {
		return nil, err
	}
	if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
		v.Set("logging.level", f.Value.String())
	}
	if f := cmd.Flags().Lookup("port"); f != nil && f.Changed {
		v.Set("port", f.Value.String())
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	observability.SetLevel(cfg.LogLevel)
	return cfg, nil
}

package main

import (
	"swagflow/internal/di"
	"swagflow/internal/infrastructure/config"

	"github.com/spf13/cobra"
)

// rootFlags are shared by every subcommand and override the loaded config.
type rootFlags struct {
	configFile string
	envDir     string
	driver     string
	baseURL    string
	logLevel   string
	headless   bool
	headed     bool
}

func (f *rootFlags) override(cmd *cobra.Command) func(*config.Config) {
	return func(cfg *config.Config) {
		if f.driver != "" {
			cfg.Driver = f.driver
		}
		if f.baseURL != "" {
			cfg.BaseURL = f.baseURL
		}
		if f.logLevel != "" {
			cfg.LogLevel = f.logLevel
		}
		if cmd.Flags().Changed("headless") {
			cfg.Headless = f.headless
		}
		if f.headed {
			cfg.Headless = false
		}
	}
}

func (f *rootFlags) container(cmd *cobra.Command, extra func(*config.Config)) (*di.Container, error) {
	base := f.override(cmd)
	return di.NewContainer(di.Options{
		EnvDir:     f.envDir,
		ConfigFile: f.configFile,
		Override: func(cfg *config.Config) {
			base(cfg)
			if extra != nil {
				extra(cfg)
			}
		},
		Output: cmd.OutOrStdout(),
	})
}

func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "swagflow",
		Short:         "Resilient browser flows against the Swag Labs demo store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configFile, "config", "c", "", "YAML config file (default $SWAGFLOW_CONFIG)")
	pf.StringVar(&flags.envDir, "env-dir", ".", "directory holding .env files")
	pf.StringVar(&flags.driver, "driver", "", "browser driver: rod, playwright or chromedp")
	pf.StringVar(&flags.baseURL, "base-url", "", "store URL to test")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")
	pf.BoolVar(&flags.headless, "headless", false, "run the browser without a window")
	pf.BoolVar(&flags.headed, "headed", false, "force a visible browser window")
	cmd.MarkFlagsMutuallyExclusive("headless", "headed")

	cmd.AddCommand(newRunCmd(flags), newListCmd(), newDemoCmd(flags))
	return cmd
}

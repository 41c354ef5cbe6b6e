package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	cfgFile      string
	baseURLFlag  string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "shiptrack",
	Short: "Track shipments and manage notification preferences",
	Long: `shiptrack is a terminal client for the shipment tracking service.

Log in once and the session is remembered between runs. What you can do
depends on your role: every role can search shipments, only some can change
notification preferences.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with ctx, which is cancelled on interrupt.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "shiptrack.toml", "path to config file (missing file = defaults)")
	rootCmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", "", "tracking service base URL, overrides client.base_url")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn, error or off")
}

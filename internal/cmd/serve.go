package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/lachlan2k/shiptrack/internal/logging"
	"github.com/lachlan2k/shiptrack/internal/webserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local stand-in tracking service",
	Long: `Run a local tracking service with demo shipments and accounts, speaking the
same API the client uses. Every account's password is server.password ("demo"
unless configured).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig()
		if err != nil {
			return err
		}

		logger := logging.New("shiptrack-server", conf.Server.LogLevel, cmd.ErrOrStderr())

		if conf.SecretWasGenerated() {
			logger.Warnf("No cookie secret was provided, randomly generated one. Sessions won't survive a restart.")
		}

		server, err := webserver.New(conf, logger)
		if err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Run()
		}()

		logger.Infof("Server running on http://localhost:%d/api", conf.Server.ListenPort)

		select {
		case err := <-errCh:
			return err
		case <-cmd.Context().Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

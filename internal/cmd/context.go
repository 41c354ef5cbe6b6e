package cmd

import (
	"fmt"
	"io"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"github.com/lachlan2k/shiptrack/internal/api"
	"github.com/lachlan2k/shiptrack/internal/config"
	"github.com/lachlan2k/shiptrack/internal/logging"
	"github.com/lachlan2k/shiptrack/internal/portal"
	"github.com/lachlan2k/shiptrack/internal/ui"
)

// clientEnv is everything a client command needs, built fresh per invocation.
type clientEnv struct {
	conf   *config.Config
	logger *log.Logger
	jar    *api.FileJar
	term   *ui.Terminal
	app    *portal.App
}

func loadConfig() (*config.Config, error) {
	conf, err := config.LoadFromTomlFileAndValidate(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if baseURLFlag != "" {
		conf.Client.BaseURL = baseURLFlag
	}
	if logLevelFlag != "" {
		conf.Client.LogLevel = logLevelFlag
		conf.Server.LogLevel = logLevelFlag
	}

	return conf, nil
}

func newClientEnv(cmd *cobra.Command) (*clientEnv, error) {
	conf, err := loadConfig()
	if err != nil {
		return nil, err
	}

	return openClientEnv(conf, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// openClientEnv renders to out and logs to errOut.
func openClientEnv(conf *config.Config, out io.Writer, errOut io.Writer) (*clientEnv, error) {
	logger := logging.New("shiptrack", conf.Client.LogLevel, errOut)

	jar, err := api.NewFileJar(conf.CookieJarPath(), conf.Client.BaseURL)
	if err != nil {
		return nil, err
	}

	client, err := api.New(conf.Client.BaseURL, api.WithJar(jar), api.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	term := ui.NewTerminal(out)

	return &clientEnv{
		conf:   conf,
		logger: logger,
		jar:    jar,
		term:   term,
		app:    portal.New(client, term, logger),
	}, nil
}

// close persists the cookie jar so the next run can pick the session back up.
func (e *clientEnv) close() {
	if err := e.jar.Save(); err != nil {
		e.logger.Warnf("couldn't save session cookie: %v", err)
	}
}

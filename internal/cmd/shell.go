package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive session",
	Long: `Start an interactive session: restores the saved session if there is one,
otherwise asks you to log in, then lets you search shipments and edit
notification preferences until you quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newClientEnv(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		env.app.Bootstrap(ctx)

		for {
			fmt.Fprintln(out)
			if err := env.term.Render(); err != nil {
				return err
			}

			if _, ok := env.app.Session(); !ok {
				form := loginForm{}
				if err := promptLogin(&form, env.conf.Server.Roles); err != nil {
					return quietAbort(err)
				}
				env.app.Login(ctx, form.Email, form.Password, form.Role)
				continue
			}

			choice, err := promptMenu(env.term.ControlsEnabled())
			if err != nil {
				return quietAbort(err)
			}

			switch choice {
			case menuSearch:
				searchType, value, err := promptSearch()
				if err != nil {
					return quietAbort(err)
				}
				env.app.Search(ctx, searchType, value)

			case menuNotifications:
				if !env.term.ControlsEnabled() {
					// Let Save produce the refusal message, it won't hit the network
					current := env.app.Preferences()
					env.app.SaveNotifications(ctx, current.Email, current.Push)
					continue
				}
				desired, err := promptPreferences(env.app.Preferences())
				if err != nil {
					return quietAbort(err)
				}
				env.app.SaveNotifications(ctx, desired.Email, desired.Push)

			case menuRefresh:
				env.app.Bootstrap(ctx)

			case menuLogout:
				_ = env.app.Logout(ctx)

			case menuQuit:
				return nil
			}
		}
	},
}

// Ctrl-C in a form is how people leave the shell, not an error
func quietAbort(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return nil
	}
	return err
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

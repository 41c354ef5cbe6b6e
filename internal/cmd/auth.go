package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lachlan2k/shiptrack/internal/session"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the tracking service",
	Long: `Log in with email, password and role. Anything not given as a flag is
asked for interactively. The session is saved and reused by later commands.

Examples:
  shiptrack login --email me@example.com --role shipper
  shiptrack login --email me@example.com --role viewer --password demo`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newClientEnv(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		form := loginForm{}
		form.Email, _ = cmd.Flags().GetString("email")
		form.Password, _ = cmd.Flags().GetString("password")
		form.Role, _ = cmd.Flags().GetString("role")

		if err := promptLogin(&form, env.conf.Server.Roles); err != nil {
			return err
		}

		res := env.app.Login(cmd.Context(), form.Email, form.Password, form.Role)
		if err := env.term.Render(); err != nil {
			return err
		}
		if !res.OK {
			return fmt.Errorf("login failed")
		}

		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newClientEnv(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		return runLogout(cmd.Context(), env)
	},
}

// runLogout picks up the saved session first so the logout goes out with its
// cookie, then shows the resulting logged-out view.
func runLogout(ctx context.Context, env *clientEnv) error {
	env.app.Bootstrap(ctx)

	// The session ends locally even if the service can't be told, and
	// the failure is already logged
	_ = env.app.Logout(ctx)

	return env.term.Render()
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show who the saved session belongs to",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newClientEnv(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		switch p := env.app.Bootstrap(cmd.Context()).(type) {
		case *session.Session:
			fmt.Fprintf(cmd.OutOrStdout(), "%s\npermissions: %v\n", p, p.Permissions())
		default:
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
		}

		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password (prompted when omitted)")
	loginCmd.Flags().String("role", "", "role to log in as (prompted when omitted)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lachlan2k/shiptrack/internal/notifications"
)

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Show notification preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newClientEnv(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		// Bootstrap loads the preferences along with the session
		env.app.Bootstrap(cmd.Context())
		return env.term.Render()
	},
}

var notificationsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change notification preferences",
	Long: `Change email and/or push notifications. A flag left out keeps its current
value; if the current values can't be read, both flags are required.

Examples:
  shiptrack notifications set --email=true --push=false
  shiptrack notifications set --push=true`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newClientEnv(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		var email, push *bool
		if cmd.Flags().Changed("email") {
			v, _ := cmd.Flags().GetBool("email")
			email = &v
		}
		if cmd.Flags().Changed("push") {
			v, _ := cmd.Flags().GetBool("push")
			push = &v
		}

		return runNotificationsSet(cmd.Context(), env, email, push)
	},
}

// runNotificationsSet saves the given switches. A nil switch keeps the stored
// value, which must then have been read successfully.
func runNotificationsSet(ctx context.Context, env *clientEnv, email *bool, push *bool) error {
	env.app.Bootstrap(ctx)

	desired := env.app.Preferences()
	if email == nil || push == nil {
		if _, ok := env.app.Session(); ok {
			current, err := env.app.LoadNotifications(ctx)
			if err != nil {
				if rerr := env.term.Render(); rerr != nil {
					return rerr
				}
				return fmt.Errorf("couldn't read current preferences, pass both --email and --push: %w", err)
			}
			desired = current
		}
	}

	if email != nil {
		desired.Email = *email
	}
	if push != nil {
		desired.Push = *push
	}

	res := env.app.SaveNotifications(ctx, desired.Email, desired.Push)
	if err := env.term.Render(); err != nil {
		return err
	}

	if res.Kind != notifications.KindSaved {
		return fmt.Errorf("save preferences: %s", res.Kind)
	}
	return nil
}

func init() {
	notificationsSetCmd.Flags().Bool("email", false, "email notifications on/off")
	notificationsSetCmd.Flags().Bool("push", false, "push notifications on/off")

	notificationsCmd.AddCommand(notificationsSetCmd)
	rootCmd.AddCommand(notificationsCmd)
}

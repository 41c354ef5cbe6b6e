package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lachlan2k/shiptrack/internal/models"
	"github.com/lachlan2k/shiptrack/internal/tracking"
)

var searchCmd = &cobra.Command{
	Use:   "search <container|bl|booking> <reference>",
	Short: "Look up a shipment",
	Long: `Look up a shipment by container number, bill of lading or booking number.
Requires a role with tracking access.

Examples:
  shiptrack search container MSCU1234567
  shiptrack search booking BK-2026-2044`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newClientEnv(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		var value string
		if len(args) == 2 {
			value = args[1]
		}

		env.app.Bootstrap(cmd.Context())
		res := env.app.Search(cmd.Context(), models.SearchType(args[0]), value)

		if err := env.term.Render(); err != nil {
			return err
		}

		switch res.Kind {
		case tracking.KindFound, tracking.KindNotFound:
			return nil
		}
		return fmt.Errorf("search %s", res.Kind)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

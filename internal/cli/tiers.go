package cli

import (
	"fmt"

	"github.com/partnerdesk/platform/internal/infra"
	"github.com/spf13/cobra"
)

func newTiersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tiers",
		Short: "Inspect tier tables",
	}

	check := &cobra.Command{
		Use:   "check FILE",
		Short: "Validate a tier table file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := infra.LoadTierTable(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d tiers (%s)\n", table.Len(), table)
			return nil
		},
	}
	cmd.AddCommand(check)
	return cmd
}

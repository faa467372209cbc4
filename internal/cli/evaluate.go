package cli

import (
	"fmt"

	"github.com/partnerdesk/platform/internal/service"
	"github.com/partnerdesk/platform/internal/upstream"
	"github.com/spf13/cobra"
)

func newEvaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Compute a partner level from an upstream snapshot",
		Long: `Read an upstream roster snapshot (JSON, "-" for stdin), normalise it and
print the derived level, progress and dashboard stats. Nothing is stored.`,
		Args: cobra.NoArgs,
		RunE: runEvaluate,
	}
	cmd.Flags().StringP("snapshot", "s", "", "Snapshot JSON file, or - for stdin")
	cmd.Flags().StringP("tiers", "t", "", "Tier table file (.yaml or .toml)")
	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	tiers, err := resolveTiers(cmd)
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("snapshot")
	data, err := readInput(cmd, path)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	snap, err := upstream.ParseSnapshot(data)
	if err != nil {
		return err
	}

	eval, err := service.Evaluate(tiers, snap)
	if err != nil {
		return err
	}
	return printJSON(cmd, eval)
}

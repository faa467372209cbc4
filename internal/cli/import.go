package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/partnerdesk/platform/internal/service"
	"github.com/partnerdesk/platform/internal/upstream"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import an upstream roster snapshot for a partner",
		Long: `Upsert the clients and payments of an upstream snapshot into the partner
database and refresh the partner's level. Upstream ids map to stable UUIDs,
so re-importing the same export is a no-op.`,
		Args: cobra.NoArgs,
		RunE: runImport,
	}
	cmd.Flags().String("partner", "", "Partner id")
	cmd.Flags().StringP("snapshot", "s", "", "Snapshot JSON file, or - for stdin")
	_ = cmd.MarkFlagRequired("partner")
	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}

func runImport(cmd *cobra.Command, _ []string) error {
	raw, _ := cmd.Flags().GetString("partner")
	partnerID, err := uuid.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid partner id %q", raw)
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

	ctx := cmd.Context()
	logger := newLogger(cmd)
	svc, err := openServices(ctx, logger)
	if err != nil {
		return err
	}
	defer svc.close()

	clients := service.NewClientService(svc.stores, svc.levels, logger)
	res, err := clients.ImportSnapshot(ctx, partnerID, snap)
	if err != nil {
		return err
	}
	return printJSON(cmd, res)
}

package cli

import (
	"github.com/partnerdesk/platform/internal/infra"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := infra.LoadConfig()
			if err != nil {
				return err
			}
			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" {
				dir = cfg.MigrationsDir
			}
			return infra.RunMigrations(cfg.DSN(), dir, newLogger(cmd))
		},
	}
	cmd.Flags().String("dir", "", "Migrations directory (default: nearest db/migrations)")
	return cmd
}

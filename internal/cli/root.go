// Package cli implements the partnerctl command tree.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/partnerdesk/platform/internal/infra"
	"github.com/partnerdesk/platform/internal/policy"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the partnerctl command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "partnerctl",
		Short: "Operate the partner metrics engine",
		Long: `partnerctl runs the partner metrics engine offline over upstream
snapshots and performs maintenance against the partner database:
migrations, level refreshes, roster imports and dev tokens.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().Bool("verbose", false, "Log at debug level")

	root.AddCommand(
		newEvaluateCmd(),
		newTiersCmd(),
		newMigrateCmd(),
		newRefreshCmd(),
		newImportCmd(),
		newTokenCmd(),
	)
	return root
}

// Execute runs partnerctl with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// resolveTiers prefers an explicit --tiers file and falls back to the
// TIER_TABLE_FILE / PARTNER_TIERS configuration.
func resolveTiers(cmd *cobra.Command) (policy.TierTable, error) {
	if path, _ := cmd.Flags().GetString("tiers"); path != "" {
		return infra.LoadTierTable(path)
	}
	cfg, err := infra.LoadConfig()
	if err != nil {
		return policy.TierTable{}, err
	}
	return cfg.TierTable()
}

func openPool(ctx context.Context) (*infra.Config, *pgxpool.Pool, error) {
	cfg, err := infra.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	return cfg, pool, nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/partnerdesk/platform/internal/infra"
	"github.com/partnerdesk/platform/internal/projection"
	"github.com/partnerdesk/platform/internal/service"
	"github.com/spf13/cobra"
)

func newRefreshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Recompute and persist partner levels",
		Long: `Recompute the level of one partner (--partner) or of every active partner
(--all), persisting tier changes with their events and notifications.`,
		Args: cobra.NoArgs,
		RunE: runRefresh,
	}
	cmd.Flags().String("partner", "", "Partner id")
	cmd.Flags().Bool("all", false, "Refresh every active partner")
	cmd.MarkFlagsMutuallyExclusive("partner", "all")
	cmd.MarkFlagsOneRequired("partner", "all")
	return cmd
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := newLogger(cmd)

	svc, err := openServices(ctx, logger)
	if err != nil {
		return err
	}
	defer svc.close()
	levels := svc.levels

	if all, _ := cmd.Flags().GetBool("all"); all {
		report, err := levels.RefreshAll(ctx)
		if err != nil {
			return err
		}
		if err := printJSON(cmd, report); err != nil {
			return err
		}
		if len(report.Failures) > 0 {
			return fmt.Errorf("%d of %d refreshes failed", len(report.Failures), report.Checked)
		}
		return nil
	}

	raw, _ := cmd.Flags().GetString("partner")
	id, err := uuid.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid partner id %q", raw)
	}
	change, err := levels.Refresh(ctx, id)
	if err != nil {
		return err
	}
	return printJSON(cmd, change)
}

type services struct {
	stores service.Stores
	levels *service.LevelService
	close  func()
}

// openServices wires the level service against the configured database. The
// level cache is the API's Redis when enabled, so refreshes invalidate what the
// server serves.
func openServices(ctx context.Context, logger *slog.Logger) (*services, error) {
	cfg, pool, err := openPool(ctx)
	if err != nil {
		return nil, err
	}
	tiers, err := cfg.TierTable()
	if err != nil {
		pool.Close()
		return nil, err
	}

	closers := []func(){pool.Close}
	var cache projection.Store = projection.NewInMemoryStore()
	if cfg.RedisEnabled {
		client, err := infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		closers = append(closers, func() { client.Close() })
		cache = projection.NewRedisStore(client, "partnerdesk")
	}

	closeFn := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	st := service.NewStores(pool)
	return &services{
		stores: st,
		levels: service.NewLevelService(st, tiers, cache, cfg.LevelCacheTTL, logger),
		close:  closeFn,
	}, nil
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/scout/internal/contracts"
)

// invalidateCmd represents the invalidate command
var invalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Drop cached rankings",
	Long: `Drops cached rankings, either for one scoring configuration or as the
result of a raw data change notification.

  --config <id>            drop the fresh rankings of one configuration
  --config <id> --purge    also drop its last good rankings
  --all                    drop every fresh ranking
  --category <c> --count n report n changed rows of a raw category
                           (prospects, game_logs, advanced_metrics, grades,
                           attention); attention changes are batched

Example:
  go run ./cmd/prospects invalidate --config default
  go run ./cmd/prospects invalidate --category grades --count 12`,
	RunE: runInvalidate,
}

var (
	invalidateConfig   string
	invalidatePurge    bool
	invalidateAll      bool
	invalidateCategory string
	invalidateCount    int
)

func init() {
	rootCmd.AddCommand(invalidateCmd)

	invalidateCmd.Flags().StringVar(&invalidateConfig, "config", "", "scoring configuration id or meta id")
	invalidateCmd.Flags().BoolVar(&invalidatePurge, "purge", false, "also drop last good rankings")
	invalidateCmd.Flags().BoolVar(&invalidateAll, "all", false, "drop every fresh ranking")
	invalidateCmd.Flags().StringVar(&invalidateCategory, "category", "", "changed raw data category")
	invalidateCmd.Flags().IntVar(&invalidateCount, "count", 1, "changed rows")
	invalidateCmd.MarkFlagsMutuallyExclusive("config", "category", "all")
}

func runInvalidate(cmd *cobra.Command, args []string) error {
	if invalidateConfig == "" && invalidateCategory == "" && !invalidateAll {
		return fmt.Errorf("one of --config, --category or --all is required")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	switch {
	case invalidateAll:
		n, err := a.cache.InvalidateAll(ctx)
		if err != nil {
			return err
		}
		PrintSuccess(fmt.Sprintf("Dropped %d fresh rankings", n))

	case invalidateConfig != "":
		cfg, err := a.registry.Resolve(invalidateConfig)
		if err != nil {
			return err
		}
		var n int
		if invalidatePurge {
			n, err = a.cache.Purge(ctx, cfg.ID())
		} else {
			n, err = a.cache.InvalidateConfig(ctx, cfg.ID())
		}
		if err != nil {
			return err
		}
		PrintSuccess(fmt.Sprintf("Dropped %d rankings of %s", n, cfg.ID()))

	default:
		// 프로세스마다 누적값이 새로 시작: 배치 크기 이상을 한 번에 보고
		fired, err := a.invalidator.Notify(ctx, contracts.DataCategory(invalidateCategory), invalidateCount)
		if err != nil {
			return err
		}
		if !fired {
			PrintWarning(fmt.Sprintf("%d %s changes are below the invalidation batch; nothing dropped", invalidateCount, invalidateCategory))
			return nil
		}
		PrintSuccess(fmt.Sprintf("%s changed: fresh rankings dropped", invalidateCategory))
	}
	return nil
}

package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/scout/internal/selection"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Stored ranking history",
	Long: `Reads the rankings persisted by the refresh job
(RANKING_HISTORY_ENABLED=true).

Without --player the latest stored run of the configuration is shown.

Example:
  go run ./cmd/prospects history --config default --limit 25
  go run ./cmd/prospects history --config default --player 1042`,
	RunE: runHistory,
}

var (
	historyConfig string
	historyPlayer int64
	historyLimit  int
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyConfig, "config", "", "scoring configuration id or meta id")
	historyCmd.Flags().Int64Var(&historyPlayer, "player", 0, "player id")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 30, "rows to show")
	_ = historyCmd.MarkFlagRequired("config")
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.history == nil {
		return fmt.Errorf("ranking history is disabled (RANKING_HISTORY_ENABLED=false)")
	}
	cfg, err := a.registry.Resolve(historyConfig)
	if err != nil {
		return err
	}

	var rows []selection.HistoryEntry
	if historyPlayer != 0 {
		rows, err = a.history.GetPlayerHistory(cmd.Context(), cfg.ID(), historyPlayer, historyLimit)
	} else {
		rows, err = a.history.GetLatestRanking(cmd.Context(), cfg.ID(), historyLimit)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(rows)
	}

	columns := []string{"Date", "Player", "Rank", "Composite"}
	widths := []int{10, 8, 5, 9}
	PrintTableHeader(columns, widths)
	for _, h := range rows {
		composite := fmt.Sprintf("%.4f", h.Composite)
		if h.Unscored {
			composite = "-"
		}
		PrintTableRow([]string{
			h.ReferenceDate.Format("2006-01-02"),
			strconv.FormatInt(h.PlayerID, 10),
			strconv.Itoa(h.Rank),
			composite,
		}, widths)
	}
	return nil
}

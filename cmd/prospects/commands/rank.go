package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/scout/internal/contracts"
)

// rankCmd represents the rank command
var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Composite ranking of the filtered population",
	Long: `Prints the composite ranking of one scoring configuration.

A fresh cached ranking is returned as is; otherwise it is computed once
and cached. While a computation is in flight the last good ranking is
served and marked stale.

Example:
  go run ./cmd/prospects rank --config default
  go run ./cmd/prospects rank --config default --level AA --group hitter --limit 25
  go run ./cmd/prospects rank --config default --org SEA --org NYY --max-age 22 --json`,
	RunE: runRank,
}

var (
	// Flags
	rankConfig string
	rankLevels []string
	rankGroup  string
	rankOrgs   []string
	rankMaxAge int
	rankLimit  int
)

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringVar(&rankConfig, "config", "", "scoring configuration id or meta id")
	rankCmd.Flags().StringSliceVar(&rankLevels, "level", nil, "levels to include (MLB, AAA, AA, A+, A, CPX, NCAA)")
	rankCmd.Flags().StringVar(&rankGroup, "group", "", "position group (hitter|pitcher)")
	rankCmd.Flags().StringSliceVar(&rankOrgs, "org", nil, "organizations to include")
	rankCmd.Flags().IntVar(&rankMaxAge, "max-age", 0, "maximum age (0 = no limit)")
	rankCmd.Flags().IntVar(&rankLimit, "limit", 50, "rows to print (0 = all)")
	_ = rankCmd.MarkFlagRequired("config")
}

// buildFilter validates the filter flags
func buildFilter() (contracts.PopulationFilter, error) {
	f := contracts.PopulationFilter{
		Organizations: rankOrgs,
		MaxAge:        rankMaxAge,
	}
	for _, l := range rankLevels {
		level := contracts.Level(strings.ToUpper(strings.TrimSpace(l)))
		if !level.Valid() {
			return f, fmt.Errorf("unknown level %q", l)
		}
		f.Levels = append(f.Levels, level)
	}
	if rankGroup != "" {
		g := contracts.PositionGroup(strings.ToLower(rankGroup))
		if g != contracts.GroupHitter && g != contracts.GroupPitcher {
			return f, fmt.Errorf("unknown position group %q", rankGroup)
		}
		f.Group = g
	}
	if rankMaxAge < 0 {
		return f, fmt.Errorf("--max-age must be >= 0")
	}
	return f.Normalize(), nil
}

func runRank(cmd *cobra.Command, args []string) error {
	filter, err := buildFilter()
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	set, err := a.orchestrator.ComputeOrFetch(cmd.Context(), rankConfig, filter)
	if err != nil {
		return fmt.Errorf("rank: %w", err)
	}

	if jsonOutput {
		return printJSON(set)
	}
	printRanking(set, rankLimit)
	return nil
}

func printRanking(set *contracts.RankingSet, limit int) {
	PrintHeader("Composite Ranking", [][2]string{
		{"Config", set.ConfigID},
		{"Snapshot", set.SnapshotID},
		{"Filter", set.Filter.Canonical()},
		{"Players", strconv.Itoa(len(set.Rankings))},
	})
	if set.Stale {
		PrintWarning("Serving the last good ranking: a fresh one is being computed or failed")
	}

	columns := []string{"Rank", "ID", "Name", "Pos", "Org", "Level", "Score", "Sample", "Perf", "Adv", "Grade", "Hype"}
	widths := []int{5, 8, 22, 4, 5, 5, 7, 6, 6, 6, 6, 6}
	PrintTableHeader(columns, widths)

	for i, r := range set.Rankings {
		if limit > 0 && i >= limit {
			fmt.Printf("... %d more\n", len(set.Rankings)-limit)
			break
		}

		row := []string{
			strconv.Itoa(r.Rank),
			strconv.FormatInt(r.PlayerID, 10),
			truncate(r.Name, 22),
			string(r.Position),
			r.Organization,
			string(r.Level),
			fmt.Sprintf("%.4f", r.Composite),
			strconv.Itoa(r.SampleSize),
		}
		if r.Unscored {
			row[6] = "n/a"
		}
		for _, c := range contracts.Components() {
			cs, ok := r.Breakdown.Component(c)
			row = append(row, score(cs.Normalized, ok && cs.EffectiveWeight > 0))
		}
		PrintTableRow(row, widths)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

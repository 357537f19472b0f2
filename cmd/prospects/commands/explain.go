package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/scout/internal/brain"
	"github.com/wonny/scout/internal/contracts"
)

// explainCmd represents the explain command
var explainCmd = &cobra.Command{
	Use:   "explain <player_id>",
	Short: "Component breakdown of one player's composite",
	Long: `Shows how one player's composite was produced: raw and normalized
value of every component, configured and effective weights, the reason a
component was excluded, imputation provenance and grade warnings.

The breakdown comes from the all-players ranking of the configuration.

Example:
  go run ./cmd/prospects explain 1042 --config default
  go run ./cmd/prospects explain 1042 --config default --json`,
	Args: cobra.ExactArgs(1),
	RunE: runExplain,
}

var explainConfig string

func init() {
	rootCmd.AddCommand(explainCmd)

	explainCmd.Flags().StringVar(&explainConfig, "config", "", "scoring configuration id or meta id")
	_ = explainCmd.MarkFlagRequired("config")
}

func runExplain(cmd *cobra.Command, args []string) error {
	playerID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid player id %q: %w", args[0], err)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	exp, err := a.orchestrator.Explain(cmd.Context(), playerID, explainConfig)
	if err != nil {
		return fmt.Errorf("explain: %w", err)
	}

	if jsonOutput {
		return printJSON(exp)
	}
	printExplanation(exp)
	return nil
}

func printExplanation(exp *brain.Explanation) {
	r := exp.Ranking
	composite := fmt.Sprintf("%.4f", r.Composite)
	if r.Unscored {
		composite = "unscored (no component available)"
	}

	PrintHeader(fmt.Sprintf("%s (#%d)", r.Name, r.PlayerID), [][2]string{
		{"Config", exp.ConfigID},
		{"Snapshot", exp.SnapshotID},
		{"Position", fmt.Sprintf("%s / %s / %s", r.Position, r.Level, r.Organization)},
		{"Rank", strconv.Itoa(r.Rank)},
		{"Composite", composite},
	})
	if exp.Stale {
		PrintWarning("Explained from the last good ranking")
	}

	columns := []string{"Component", "Provenance", "Raw", "Norm", "Weight", "Effective", "Reason"}
	widths := []int{16, 11, 8, 6, 6, 9, 24}
	PrintTableHeader(columns, widths)
	for _, cs := range r.Breakdown.Components {
		PrintTableRow([]string{
			string(cs.Component),
			string(cs.Provenance),
			fmt.Sprintf("%.4f", cs.Raw),
			score(cs.Normalized, cs.EffectiveWeight > 0),
			fmt.Sprintf("%.2f", cs.ConfiguredWeight),
			fmt.Sprintf("%.4f", cs.EffectiveWeight),
			cs.Reason,
		}, widths)
	}

	b := r.Breakdown
	if s := b.StatLine; s != nil {
		fmt.Println()
		fmt.Printf("Performance window: %s %s ~ %s (full season: %v)\n",
			s.Window.Level, s.Window.From.Format("2006-01-02"), s.Window.To.Format("2006-01-02"), s.Window.IsFullSeason)
		if s.Batting != nil {
			PrintKeyValue("PA", strconv.Itoa(s.Batting.PlateAppearances), 6)
			PrintKeyValue("Slash", fmt.Sprintf("%.3f/%.3f/%.3f", s.Batting.AVG, s.Batting.OBP, s.Batting.SLG), 6)
			PrintKeyValue("OPS", fmt.Sprintf("%.3f", s.Batting.OPS), 6)
		}
		if s.Pitching != nil {
			PrintKeyValue("IP", fmt.Sprintf("%.1f", s.Pitching.InningsPitched), 6)
			PrintKeyValue("ERA", fmt.Sprintf("%.2f", s.Pitching.ERA), 6)
			PrintKeyValue("WHIP", fmt.Sprintf("%.2f", s.Pitching.WHIP), 6)
			PrintKeyValue("K-BB%", fmt.Sprintf("%.1f", s.Pitching.KMinusBBPct*100), 6)
		}
	}

	if b.Advanced != nil {
		fmt.Println()
		fmt.Println("Advanced metrics:")
		for _, m := range b.Advanced.Metrics {
			line := string(m.Provenance)
			if m.Provenance.Available() {
				line = fmt.Sprintf("%.3f (%s, confidence %.3f)", m.Value, m.Provenance, m.Confidence)
			}
			if len(m.Comparables) > 0 {
				line += fmt.Sprintf(", %d comparables", len(m.Comparables))
			}
			PrintKeyValue(string(m.Field), line, 18)
		}
	}

	if g := b.Grade; g != nil {
		fmt.Println()
		fmt.Printf("Scouting grade: %.3f (%d, %s)\n", g.Value, g.ReportYear, strings.Join(g.Sources, ", "))
	}

	if h := b.Hype; h != nil && h.Provenance != contracts.ProvenanceNoSignal {
		fmt.Println()
		fmt.Printf("Hype: %.3f from %d events, growth %+.1f%%\n", h.Score, h.EventCount, h.Growth*100)
	}

	for _, w := range b.Warnings {
		PrintWarning(w)
	}
}

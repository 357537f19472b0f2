package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/internal/scoringconfig"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Scoring configuration tools",
}

var (
	configValidateCmd = &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate scoring configuration files",
		Long: `Decodes and validates scoring configuration files without touching
any data source. Unknown keys, out-of-range values and weights not summing
to 1.0 are rejected. Non-fatal warnings are printed too.

Example:
  go run ./cmd/prospects config validate config/scoring/default.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: runConfigValidate,
	}

	configListCmd = &cobra.Command{
		Use:   "list",
		Short: "List the configurations of SCORING_CONFIG_DIR",
		RunE:  runConfigList,
	}
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configListCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	failed := 0
	for _, path := range args {
		cfg, _, err := scoringconfig.Load(path)
		if err != nil {
			failed++
			var cfgErr *contracts.InvalidWeightConfigError
			if errors.As(err, &cfgErr) {
				PrintError(cfgErr.Error())
			} else {
				PrintError(fmt.Sprintf("%s: %v", path, err))
			}
			continue
		}

		PrintSuccess(fmt.Sprintf("%s → %s", path, cfg.ID()))
		for _, w := range scoringconfig.Warn(cfg) {
			fmt.Printf("   ⚠️  [%s] %s\n", w.Code, w.Message)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d configurations invalid", failed, len(args))
	}
	return nil
}

func runConfigList(cmd *cobra.Command, args []string) error {
	dir := scoringDir
	if dir == "" {
		dir = os.Getenv("SCORING_CONFIG_DIR")
	}
	if dir == "" {
		dir = "config/scoring"
	}

	reg, err := scoringconfig.LoadDir(dir)
	if err != nil {
		return err
	}

	columns := []string{"ID", "Description", "Normalization"}
	widths := []int{28, 36, 13}
	PrintTableHeader(columns, widths)
	for _, id := range reg.IDs() {
		cfg, _ := reg.Get(id)
		PrintTableRow([]string{id, truncate(cfg.Meta.Description, 36), cfg.Normalization}, widths)
	}
	return nil
}

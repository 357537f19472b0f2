package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/scout/pkg/database"
	"github.com/wonny/scout/pkg/logger"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long: `Applies the pending migrations of MIGRATIONS_PATH to DATABASE_URL.
Already applied migrations are skipped.

Example:
  go run ./cmd/prospects migrate`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.UsesFixture() {
		return fmt.Errorf("migrate needs DATABASE_URL, not a fixture")
	}

	log := logger.New(cfg)
	if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath, log); err != nil {
		return err
	}
	PrintSuccess("Migrations applied")
	return nil
}

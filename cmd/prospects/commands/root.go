package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/scout/pkg/config"
)

var (
	// Global flags
	fixturePath string
	scoringDir  string
	env         string
	verbose     bool
	jsonOutput  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "prospects",
	Short: "Scout - prospect composite ranking",
	Long: `Scout prospect ranking CLI

Blends performance, advanced metrics, scouting grades and attention
into one cached, explainable composite ranking.

Usage:
  go run ./cmd/prospects [command]

Examples:
  go run ./cmd/prospects rank --config default --level AA --level AAA
  go run ./cmd/prospects explain 1042 --config default
  go run ./cmd/prospects --fixture testdata/fixture.json rank --config default
  go run ./cmd/prospects scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). Ctrl+C cancels the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&fixturePath, "fixture", "", "JSON fixture served instead of PostgreSQL (sets DATA_FIXTURE)")
	rootCmd.PersistentFlags().StringVar(&scoringDir, "scoring-dir", "", "scoring configuration directory (sets SCORING_CONFIG_DIR)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of tables")
}

// loadConfig applies flag overrides to the environment, then loads it.
// config.Load stays the only reader of environment variables.
func loadConfig() (*config.Config, error) {
	if fixturePath != "" {
		os.Setenv("DATA_FIXTURE", fixturePath)
		// 픽스처 실행은 기본적으로 인메모리 캐시
		if os.Getenv("CACHE_BACKEND") == "" {
			os.Setenv("CACHE_BACKEND", "memory")
		}
	}
	if scoringDir != "" {
		os.Setenv("SCORING_CONFIG_DIR", scoringDir)
	}
	if env != "" {
		os.Setenv("ENV", env)
	}
	if verbose {
		os.Setenv("LOG_LEVEL", "debug")
	}
	return config.Load()
}

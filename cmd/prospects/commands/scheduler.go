package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/scout/internal/api"
	"github.com/wonny/scout/internal/scheduler"
	"github.com/wonny/scout/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Periodic ranking refresh",
	Long: `Manages the periodic jobs of the ranking core.

Jobs:
  ranking_refresh  recompute the all-players ranking of every configuration
  data_watch       poll ingestion timestamps and invalidate on change
  cache_cleanup    sweep expired entries (memory cache backend only)

Example:
  go run ./cmd/prospects scheduler start
  go run ./cmd/prospects scheduler run ranking_refresh
  go run ./cmd/prospects scheduler list`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Run the scheduler and the ops server until interrupted",
		RunE:  runSchedulerStart,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs and their schedules",
		RunE:  runSchedulerList,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run <job>",
		Short: "Run one job now with the configured retry policy",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchedulerRun,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// buildScheduler registers every job of the app
func buildScheduler(a *app) (*scheduler.Scheduler, error) {
	s := scheduler.New(a.log.Component("scheduler"))
	s.SetRetryPolicy(a.cfg.Scheduler.MaxRetries, a.cfg.Scheduler.RetryDelay)

	configIDs := a.cfg.Scheduler.RefreshConfigIDs
	if len(configIDs) == 0 {
		configIDs = a.registry.IDs()
	}

	// typed nil 방지: 이력 비활성 시 nil interface 그대로
	var history jobs.HistoryWriter
	if a.history != nil {
		history = a.history
	}

	list := []scheduler.Job{
		jobs.NewRankingRefreshJob(a.orchestrator, configIDs, a.cfg.Scheduler.RefreshSchedule, history, a.log),
		jobs.NewDataWatchJob(a.source, a.invalidator, a.cfg.Scheduler.WatchSchedule, a.log),
	}
	if a.memoryStore != nil {
		list = append(list, jobs.NewCacheCleanupJob(a.memoryStore, a.log))
	}

	for _, job := range list {
		if err := s.AddJob(job); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := buildScheduler(a)
	if err != nil {
		return err
	}

	var srv *api.Server
	errCh := make(chan error, 1)
	if a.cfg.MetricsEnabled {
		srv = api.New(a.cfg, a.log, api.NewRouter(a.metrics.Handler(), a.healthChecks(), a.log))
		go func() {
			errCh <- srv.Start()
		}()
	}

	s.Start()
	PrintSuccess(fmt.Sprintf("Scheduler started with %d jobs (Ctrl+C to stop)", len(s.GetAllJobs())))

	select {
	case <-cmd.Context().Done():
	case err = <-errCh:
	}

	s.Stop()
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			a.log.WithError(shutdownErr).Warn("ops server shutdown failed")
		}
	}
	return err
}

func runSchedulerList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := buildScheduler(a)
	if err != nil {
		return err
	}

	stats := s.GetJobStats()
	if jsonOutput {
		return printJSON(stats)
	}

	columns := []string{"Job", "Schedule"}
	widths := []int{18, 20}
	PrintTableHeader(columns, widths)
	for _, name := range s.GetAllJobs() {
		PrintTableRow([]string{name, stats[name].Schedule}, widths)
	}
	return nil
}

func runSchedulerRun(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := buildScheduler(a)
	if err != nil {
		return err
	}

	result, err := s.RunJobNow(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if jsonOutput {
		if err := printJSON(result); err != nil {
			return err
		}
	} else {
		PrintKeyValue("Job", result.JobName, 10)
		PrintKeyValue("Attempts", fmt.Sprintf("%d", result.Attempts), 10)
		PrintKeyValue("Duration", result.Duration.Round(time.Millisecond).String(), 10)
	}

	if !result.Success {
		return fmt.Errorf("job %s failed: %s", result.JobName, result.Error)
	}
	if !jsonOutput {
		PrintSuccess("Job completed")
	}
	return nil
}

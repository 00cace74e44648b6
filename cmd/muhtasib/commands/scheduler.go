package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/muhtasib/backend/internal/scheduler"
	"github.com/wonny/muhtasib/backend/internal/scheduler/jobs"
	"github.com/wonny/muhtasib/backend/pkg/config"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `정기 성과 리포트 스케줄러를 관리합니다.
작업과 cron 스케줄은 SCHEDULER_JOBS_FILE (default: jobs.yaml)에서 읽습니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/muhtasib scheduler start
  go run ./cmd/muhtasib scheduler run session_report`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// jobFactories maps job names in the jobs file to constructors
func jobFactories(a *app) map[string]func(scheduler.JobSpec) scheduler.Job {
	return map[string]func(scheduler.JobSpec) scheduler.Job{
		"session_report": func(spec scheduler.JobSpec) scheduler.Job {
			return jobs.NewSessionReportJob(a.loader, a.engine, a.log, spec.Schedule, spec.LiveOnly)
		},
	}
}

func initScheduler(a *app) (*scheduler.Scheduler, error) {
	file, err := scheduler.LoadJobsFile(a.cfg.Scheduler.JobsFile)
	if err != nil {
		return nil, err
	}

	sched := scheduler.New(a.log, a.cfg.Scheduler.MaxRetries, a.cfg.Scheduler.RetryDelay)
	if err := sched.Register(file, jobFactories(a)); err != nil {
		return nil, fmt.Errorf("register jobs: %w", err)
	}
	return sched, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== muhtasib Scheduler ===")

	a, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	printJobs(sched)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	file, err := scheduler.LoadJobsFile(cfg.Scheduler.JobsFile)
	if err != nil {
		return err
	}

	fmt.Println("Configured jobs:")
	for _, spec := range file.Jobs {
		state := "disabled"
		if spec.Enabled {
			state = "enabled"
		}
		fmt.Printf("  - %-20s %-16s %s\n", spec.Name, spec.Schedule, state)
	}
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	file, err := scheduler.LoadJobsFile(cfg.Scheduler.JobsFile)
	if err != nil {
		return err
	}
	// 연결 전에 작업 이름/활성 여부 확인
	if _, err := file.Runnable(jobName); err != nil {
		return fmt.Errorf("❌ %w (see %s)", err, cfg.Scheduler.JobsFile)
	}

	a, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Printf("Running job: %s\n", jobName)
	result, err := sched.RunNow(jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	if !result.Success {
		return fmt.Errorf("❌ job %s failed after %d attempts: %s", jobName, result.Attempts, result.Error)
	}
	fmt.Printf("✅ Job %s completed in %.2fs\n", jobName, result.Duration.Seconds())
	return nil
}

func printJobs(sched *scheduler.Scheduler) {
	fmt.Println("\nRegistered jobs:")
	for _, st := range sched.Stats() {
		fmt.Printf("  - %s (%s)\n", st.JobName, st.Schedule)
	}
}

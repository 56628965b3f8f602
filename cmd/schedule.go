package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bioreason/bioreason/internal/config"
	"github.com/bioreason/bioreason/internal/coordinator"
	"github.com/bioreason/bioreason/internal/cron"
	"github.com/bioreason/bioreason/internal/dependency"
	"github.com/bioreason/bioreason/internal/shared/cmdutils"
	"github.com/bioreason/bioreason/internal/shared/llmutils"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Re-run the queries listed under \"schedule\" in the config",
	RunE:  runSchedule,
}

var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled queries and their last run",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		svc, err := newScheduler(cfg, nil)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		jobs := svc.Jobs()
		if len(jobs) == 0 {
			fmt.Fprintln(out, "No scheduled queries.")
			return nil
		}
		fmt.Fprintf(out, "%-16s %-16s %-12s %-17s %-8s %s\n", "Name", "Spec", "Mode", "Next Run", "Last", "Query")
		for _, j := range jobs {
			fmt.Fprintf(out, "%-16s %-16s %-12s %-17s %-8s %s\n",
				llmutils.Truncate(j.Name, 15), llmutils.Truncate(j.Spec, 15), llmutils.StringOrDefault(j.Mode, "(auto)"),
				j.NextRun.Format("2006-01-02 15:04"), llmutils.StringOrDefault(j.State.LastStatus, "-"), llmutils.Truncate(j.Query, 40))
		}
		return nil
	},
}

var scheduleRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Run one scheduled query now",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		container, err := dependency.New(cfg, dependency.Options{})
		if err != nil {
			return err
		}
		svc, err := newScheduler(cfg, scheduledRunner(container))
		if err != nil {
			return err
		}
		return svc.RunJob(context.Background(), args[0])
	},
}

func init() {
	scheduleCmd.AddCommand(scheduleListCmd)
	scheduleCmd.AddCommand(scheduleRunCmd)
}

func runSchedule(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(cfg.Schedule) == 0 {
		return fmt.Errorf("no scheduled queries in %s", llmutils.StringOrDefault(configPath, config.ConfigPath()))
	}
	container, err := dependency.New(cfg, dependency.Options{})
	if err != nil {
		return err
	}
	svc, err := newScheduler(cfg, scheduledRunner(container))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("%s Running %d scheduled queries. Press Ctrl+C to stop.\n", cmdutils.Logo, len(cfg.Schedule))
	if err := svc.Start(ctx); err != nil && err != context.Canceled {
		return err
	}
	fmt.Println("\nShutdown complete.")
	return nil
}

func newScheduler(cfg *config.Config, run cron.RunFunc) (*cron.Service, error) {
	svc := cron.NewService(filepath.Join(cfg.WorkspacePath(), "schedule", "state.json"), run)
	for _, q := range cfg.Schedule {
		if err := svc.AddJob(cron.Job{Name: q.Name, Spec: q.Spec, Query: q.Query, Mode: q.Mode}); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

// scheduledRunner answers a job's query; the coordinator stores the transcript.
func scheduledRunner(c *dependency.Container) cron.RunFunc {
	return func(ctx context.Context, job cron.Job) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
		defer cancel()
		classifier, err := c.Classifier("")
		if err != nil {
			return "", err
		}
		sel := coordinator.Classify(classifier)
		if job.Mode != "" {
			sel = coordinator.Mode(job.Mode)
		}
		res, err := c.Coordinator().ProcessQuery(ctx, job.Query, sel)
		if res == nil {
			return "", err
		}
		return res.SessionID, err
	}
}

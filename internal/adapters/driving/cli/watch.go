package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/planroomhq/planroom-cli/internal/intake"
)

var (
	watchProject string
	watchIgnore  []string
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and ingest dropped files",
	Long: `Watches a directory and ingests every file dropped into it, as if each
had been passed to 'planroom ingest'. Writes are debounced so a file
being copied in is picked up once, after it settles. Files already in
the directory are ingested on startup.

The directory defaults to the intake directory from settings. Press
Ctrl+C to stop.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchProject, "project", "p", "", "project to ingest into (defaults to the active project)")
	watchCmd.Flags().StringSliceVar(&watchIgnore, "ignore", nil, "glob patterns to skip, in addition to settings")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestOrchestrator == nil {
		return errors.New("ingestion service not configured")
	}

	var dir string
	if len(args) == 1 {
		dir = args[0]
	}

	ignore := watchIgnore
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			if dir == "" {
				dir = settings.Ingestion.IntakeDir
			}
			ignore = append(ignore, settings.Ingestion.IntakeIgnore...)
		}
	}
	if dir == "" {
		return errors.New("no directory given and no intake directory configured (set ingestion.intake_dir)")
	}

	projectID, err := resolveProject(watchProject)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	resumeInterrupted(ctx)

	// The watcher is long-running, so maintenance tasks run alongside it.
	if schedulerConfig.Enabled && schedulerService != nil {
		schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
		defer schedulerCancel()

		go func() {
			if err := schedulerService.Start(schedulerCtx); err != nil {
				fmt.Fprintf(os.Stderr, "scheduler stopped: %v\n", err)
			}
		}()

		defer func() {
			if err := schedulerService.Stop(); err != nil {
				fmt.Fprintf(os.Stderr, "scheduler stop error: %v\n", err)
			}
		}()
	}

	watcher, err := intake.New(intake.Config{
		Dir:       dir,
		ProjectID: projectID,
		Ignore:    ignore,
	}, ingestOrchestrator)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	cmd.Printf("Watching %s (project %s). Press Ctrl+C to stop.\n", dir, projectID)

	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watcher failed: %w", err)
	}

	cmd.Println("Stopped.")
	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
	"github.com/planroomhq/planroom-cli/internal/extractors/pdf"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index status and health",
	Long: `Prints a summary of the index (documents, chunks, projects), the state
of the configuration, and whether external tooling such as pdftotext is
available.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx := context.Background()

	stats, err := documentService.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read index stats: %w", err)
	}

	cmd.Println("Index:")
	cmd.Printf("  Documents: %d\n", stats.Documents)
	cmd.Printf("  Chunks:    %d\n", stats.Chunks)
	cmd.Printf("  Projects:  %d\n", stats.Projects)

	if len(stats.DocumentsByStatus) > 0 {
		cmd.Println("\n  By status:")
		for _, status := range []domain.DocumentStatus{
			domain.StatusUploading,
			domain.StatusProcessing,
			domain.StatusReady,
			domain.StatusError,
		} {
			if count := stats.DocumentsByStatus[status]; count > 0 {
				cmd.Printf("    %-11s %d\n", status, count)
			}
		}
	}

	if ingestOrchestrator != nil {
		if inFlight := ingestOrchestrator.InFlight(); inFlight > 0 {
			cmd.Printf("\nIngestion: %d document(s) in flight\n", inFlight)
		}
	}

	cmd.Println("\nConfiguration:")
	if settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			cmd.Printf("  Settings:  unreadable (%v)\n", err)
		} else {
			active := settings.ActiveProjectID
			if active == "" {
				active = "(none)"
			}
			cmd.Printf("  Active project: %s\n", active)

			if settings.Embedding.IsConfigured() {
				cmd.Printf("  Embedding:      %s (%s)\n", settings.Embedding.Provider, settings.Embedding.Model)
			} else {
				cmd.Println("  Embedding:      not configured (keyword-only search)")
			}

			if settings.OCR.Enabled {
				cmd.Println("  OCR fallback:   enabled")
			} else {
				cmd.Println("  OCR fallback:   disabled")
			}
		}

		if err := settingsService.Validate(); err != nil {
			cmd.Printf("  Warning:        %v\n", err)
		}
	}

	cmd.Println("\nTooling:")
	if err := pdf.CheckAvailable(); err != nil {
		cmd.Println("  pdftotext: missing (PDF ingestion will fail)")
		cmd.Printf("    %s\n", pdf.InstallInstructions())
	} else {
		cmd.Println("  pdftotext: available")
	}

	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
	"github.com/planroomhq/planroom-cli/internal/core/ports/driving"
	"github.com/planroomhq/planroom-cli/internal/intake"
	"github.com/planroomhq/planroom-cli/internal/logger"
)

var (
	ingestProject string
	ingestType    string
	ingestTitle   string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Index documents into the plan room",
	Long: `Copies files into blob storage, runs them through the ingestion
pipeline (extraction, OCR fallback for scans, chunking, embedding) and
waits until each one is READY or ERROR.

The document type biases retrieval ranking: addenda and change orders
outrank meeting minutes at equal relevance. When --type is omitted the
type is inferred from the file (images become DRAWING, everything else
PORTFOLIO).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestProject, "project", "p", "", "project to file the documents under (default: active project)")
	ingestCmd.Flags().StringVarP(&ingestType, "type", "t", "", "document type (SPEC, DRAWING, ADDENDUM, CHANGE, CONTRACT, ...)")
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "document title, single file only (default: file name)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestOrchestrator == nil {
		return errors.New("ingestion service not configured")
	}
	if ingestTitle != "" && len(args) > 1 {
		return errors.New("--title applies to a single file")
	}

	project, err := resolveProject(ingestProject)
	if err != nil {
		return err
	}

	var docType domain.DocumentType
	if ingestType != "" {
		docType = domain.DocumentType(strings.ToUpper(ingestType))
		if !docType.IsValid() {
			return fmt.Errorf("unknown document type %q", ingestType)
		}
	}

	ctx := context.Background()
	ids := make([]string, 0, len(args))

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		title := ingestTitle
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}

		fileType := docType
		if fileType == "" {
			fileType = intake.DefaultType(path)
		}

		doc, err := ingestOrchestrator.Register(ctx, driving.RegisterRequest{
			ProjectID: project,
			Title:     title,
			Type:      fileType,
			MIMEType:  intake.DetectMIME(path),
			Data:      data,
		})
		if err != nil {
			return fmt.Errorf("register %s: %w", path, err)
		}

		if err := ingestOrchestrator.Enqueue(ctx, doc.ID); err != nil {
			return fmt.Errorf("enqueue %s: %w", path, err)
		}

		cmd.Printf("Ingesting %s as %s (%s)\n", filepath.Base(path), doc.ID, fileType)
		ids = append(ids, doc.ID)
	}

	return waitForIngestion(ctx, cmd, ids)
}

// resolveProject falls back to the active project when no explicit one
// was given.
func resolveProject(project string) (string, error) {
	if project != "" {
		return project, nil
	}
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil && settings.ActiveProjectID != "" {
			return settings.ActiveProjectID, nil
		}
	}
	return "", errors.New("no project given and no active project set (use --project or 'planroom settings set active_project <id>')")
}

// waitForIngestion polls pipeline progress until every document reaches
// READY or ERROR.
func waitForIngestion(ctx context.Context, cmd *cobra.Command, ids []string) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	pending := make(map[string]domain.IngestionState, len(ids))
	for _, id := range ids {
		pending[id] = ""
	}

	failed := 0
	for len(pending) > 0 {
		for id, lastState := range pending {
			status, err := ingestOrchestrator.Status(ctx, id)
			if err != nil || status == nil {
				// Transient; keep polling
				continue
			}

			if status.State != lastState {
				logger.Debug("Document %s: %s", id, status.State)
				pending[id] = status.State
			}

			switch status.Status {
			case domain.StatusReady:
				cmd.Printf("  %s: ready\n", id)
				delete(pending, id)
			case domain.StatusError:
				cmd.Printf("  %s: failed: %s\n", id, status.LastError)
				failed++
				delete(pending, id)
			default:
				// Still in the pipeline
			}
		}

		if len(pending) == 0 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d document(s) failed to ingest", failed)
	}

	cmd.Println("Done.")
	return nil
}

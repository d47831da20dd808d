// Package cli implements the PlanRoom command line interface. Commands
// are package-level cobra vars registered in init functions; the
// services they call are injected through SetServices, either by main
// (real wiring) or by tests (mocks).
package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/planroomhq/planroom-cli/internal/adapters/driven/ai"
	"github.com/planroomhq/planroom-cli/internal/adapters/driven/blob/filesystem"
	"github.com/planroomhq/planroom-cli/internal/adapters/driven/config/file"
	"github.com/planroomhq/planroom-cli/internal/adapters/driven/storage/sqlite"
	"github.com/planroomhq/planroom-cli/internal/core/domain"
	"github.com/planroomhq/planroom-cli/internal/core/ports/driven"
	"github.com/planroomhq/planroom-cli/internal/core/ports/driving"
	"github.com/planroomhq/planroom-cli/internal/core/services"
	"github.com/planroomhq/planroom-cli/internal/extractors"
	"github.com/planroomhq/planroom-cli/internal/logger"
)

// version is stamped at build time via -ldflags.
var version = "dev"

// Injected driving ports. Commands read these; tests swap in mocks.
var (
	searchService      driving.SearchService
	documentService    driving.DocumentService
	ingestOrchestrator driving.IngestionOrchestrator
	settingsService    driving.SettingsService
	schedulerService   driving.Scheduler
	schedulerConfig    domain.SchedulerConfig
)

// Persistent flags.
var (
	verboseFlag bool
	dataDirFlag string
)

// wired is set once services are injected or built, so test doubles
// installed before Execute are never overwritten.
var (
	wired   bool
	cleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "planroom",
	Short: "Index and search construction project documents",
	Long: `PlanRoom indexes construction project documents (specifications,
drawings, addenda, RFIs and more) and answers free-text queries with
hybrid keyword + semantic retrieval.

Run without arguments to launch the interactive terminal UI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verboseFlag)
		switch cmd.Name() {
		case "version", "help", "completion":
			// No services needed
			return nil
		}
		return ensureServices(cmd.Context())
	},
	RunE: runTUI,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory (default ~/.planroom)")
}

// Execute runs the root command and releases wired resources.
func Execute() error {
	defer func() {
		if cleanup != nil {
			cleanup()
		}
	}()
	return rootCmd.Execute()
}

// SetVersion records build metadata for the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Services aggregates the driving ports the commands depend on.
type Services struct {
	Search          driving.SearchService
	Document        driving.DocumentService
	Ingestion       driving.IngestionOrchestrator
	Settings        driving.SettingsService
	Scheduler       driving.Scheduler
	SchedulerConfig domain.SchedulerConfig

	// Cleanup releases resources held by the services (database
	// handles, HTTP clients). May be nil.
	Cleanup func()
}

// SetServices injects service implementations, replacing any previous
// wiring. Tests use this to run commands against mocks.
func SetServices(s *Services) {
	if s == nil {
		searchService = nil
		documentService = nil
		ingestOrchestrator = nil
		settingsService = nil
		schedulerService = nil
		schedulerConfig = domain.SchedulerConfig{}
		wired = false
		cleanup = nil
		return
	}

	searchService = s.Search
	documentService = s.Document
	ingestOrchestrator = s.Ingestion
	settingsService = s.Settings
	schedulerService = s.Scheduler
	schedulerConfig = s.SchedulerConfig
	wired = true
	cleanup = s.Cleanup
}

// ensureServices builds the full service stack on first use: config
// store, settings, SQLite store, blob store, extractor registry, the
// configured embedding and OCR providers, and the core services.
func ensureServices(ctx context.Context) error {
	if wired {
		return nil
	}

	configStore, err := file.NewConfigStore(dataDirFlag)
	if err != nil {
		return err
	}

	settingsSvc := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsSvc.Get()
	if err != nil {
		return err
	}

	dataDir := dataDirFlag
	if dataDir == "" {
		dataDir = settings.DataDir
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return err
	}

	blobStore, err := filesystem.NewBlobStore(dataDir)
	if err != nil {
		store.Close() //nolint:errcheck
		return err
	}

	registry := extractors.NewDefaultRegistry()

	// A missing or unreachable embedding provider degrades retrieval
	// to keyword-only rather than blocking the CLI.
	var embedder driven.EmbeddingService
	if settings.Embedding.IsConfigured() {
		embedder, err = ai.CreateAndValidateEmbeddingService(&settings.Embedding)
		if err != nil {
			logger.Warn("Embedding provider unavailable, running keyword-only: %v", err)
			embedder = nil
		}
	}

	var ocr driven.OCRService
	if settings.OCR.Enabled && settings.OCR.IsConfigured() {
		ocr, err = ai.CreateOCRService(ctx, &settings.OCR)
		if err != nil {
			logger.Warn("OCR service unavailable, scanned documents will fail: %v", err)
			ocr = nil
		}
	}

	orchestrator := services.NewIngestionOrchestrator(
		store.DocumentStore(),
		store.JobStore(),
		blobStore,
		registry,
		embedder,
		ocr,
		settings.Ingestion,
	)

	SetServices(&Services{
		Search: services.NewSearchService(
			store.DocumentStore(),
			store.SearchEngine(),
			store.VectorIndex(),
			embedder,
			settings.Search,
		),
		Document: services.NewDocumentService(
			store.DocumentStore(),
			store.JobStore(),
			blobStore,
		),
		Ingestion: orchestrator,
		Settings:  settingsSvc,
		Scheduler: services.NewScheduler(
			settings.Scheduler,
			store.SchedulerStore(),
			orchestrator,
			store.DocumentStore(),
		),
		SchedulerConfig: settings.Scheduler,
		Cleanup: func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			orchestrator.Shutdown(shutdownCtx) //nolint:errcheck
			if embedder != nil {
				embedder.Close() //nolint:errcheck
			}
			store.Close() //nolint:errcheck
		},
	})

	return nil
}

// resumeInterrupted requeues pipelines cut off by a previous process.
// Long-running surfaces call it once after wiring.
func resumeInterrupted(ctx context.Context) {
	if ingestOrchestrator == nil {
		return
	}
	n, err := ingestOrchestrator.ResumePending(ctx)
	if err != nil {
		logger.Warn("Resume pending ingestions: %v", err)
		return
	}
	if n > 0 {
		logger.Info("Resumed %d interrupted ingestion(s)", n)
	}
}

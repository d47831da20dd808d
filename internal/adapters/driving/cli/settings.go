package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the active project, retrieval tuning, the embedding
provider, the OCR fallback and the intake watcher.

Use 'settings set' for plain values and 'settings set-key' for secrets,
which are read with a masked prompt and never echoed.`,
	RunE: runSettingsList,
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsList,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Long: `Change one setting. Available keys:

  active_project          project used for scoping and as the ingest default
  keyword_similarity      similarity assigned to keyword-only hits (0..1)
  search.threshold        default minimum vector similarity (0..1)
  search.limit            default candidate cap per retrieval pass
  embedding.provider      ollama or openai (use set-key for the API key)
  embedding.model         embedding model name
  embedding.base_url      API endpoint override
  ocr.enabled             true/false (use set-key for credentials)
  ingestion.intake_dir    directory watched by 'planroom watch'
  ingestion.intake_ignore comma-separated glob patterns the watcher skips
  ingestion.max_concurrent  in-flight ingestion pipeline cap
  scheduler.enabled       true/false`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Set a secret with a masked prompt",
	Long: `Interactively set the embedding API key, the OCR API key, or the OCR
OAuth credentials. Secrets are read without echo when stdin is a
terminal.

To obtain OCR OAuth credentials through the browser instead, use
'settings ocr-login'.`,
	Args: cobra.NoArgs,
	RunE: runSettingsSetKey,
}

func init() {
	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsSetKeyCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsList(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[General]")
	active := settings.ActiveProjectID
	if active == "" {
		active = "(none)"
	}
	cmd.Printf("  Active project: %s\n", active)
	dataDir := settings.DataDir
	if dataDir == "" {
		dataDir = "(default)"
	}
	cmd.Printf("  Data directory: %s\n", dataDir)
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Keyword similarity: %.2f\n", settings.Search.KeywordSimilarity)
	cmd.Printf("  Default threshold:  %.2f\n", settings.Search.DefaultThreshold)
	cmd.Printf("  Default limit:      %d\n", settings.Search.DefaultLimit)
	cmd.Println()

	cmd.Println("[Embedding]")
	if settings.Embedding.Provider != "" {
		cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
		cmd.Printf("  Model:    %s\n", settings.Embedding.Model)
		if settings.Embedding.BaseURL != "" {
			cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
		}
		if settings.Embedding.Provider.RequiresAPIKey() {
			if settings.Embedding.APIKey != "" {
				cmd.Printf("  API Key:  %s\n", maskAPIKey(settings.Embedding.APIKey))
			} else {
				cmd.Printf("  API Key:  (not set)\n")
			}
		}
	}
	status := "configured"
	if !settings.Embedding.IsConfigured() {
		status = "not configured (keyword-only search)"
	}
	cmd.Printf("  Status:   %s\n", status)
	cmd.Println()

	cmd.Println("[OCR]")
	if settings.OCR.Enabled {
		cmd.Printf("  Enabled: yes\n")
		switch {
		case settings.OCR.APIKey != "":
			cmd.Printf("  Auth:    API key %s\n", maskAPIKey(settings.OCR.APIKey))
		case settings.OCR.ClientID != "":
			cmd.Printf("  Auth:    OAuth client %s\n", settings.OCR.ClientID)
		default:
			cmd.Printf("  Auth:    (not set)\n")
		}
	} else {
		cmd.Printf("  Enabled: no (scanned documents will fail ingestion)\n")
	}
	cmd.Println()

	cmd.Println("[Ingestion]")
	cmd.Printf("  Max concurrent: %d\n", settings.Ingestion.MaxConcurrent)
	cmd.Printf("  Max attempts:   %d\n", settings.Ingestion.MaxAttempts)
	intakeDir := settings.Ingestion.IntakeDir
	if intakeDir == "" {
		intakeDir = "(disabled)"
	}
	cmd.Printf("  Intake dir:     %s\n", intakeDir)
	if len(settings.Ingestion.IntakeIgnore) > 0 {
		cmd.Printf("  Intake ignore:  %s\n", strings.Join(settings.Ingestion.IntakeIgnore, ", "))
	}
	cmd.Println()

	cmd.Println("[Scheduler]")
	if settings.Scheduler.Enabled {
		cmd.Printf("  Enabled: yes\n")
	} else {
		cmd.Printf("  Enabled: no\n")
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	key := strings.ToLower(args[0])
	switch key {
	case "active_project":
		cmd.Println(settings.ActiveProjectID)
	case "keyword_similarity":
		cmd.Printf("%.2f\n", settings.Search.KeywordSimilarity)
	case "search.threshold":
		cmd.Printf("%.2f\n", settings.Search.DefaultThreshold)
	case "search.limit":
		cmd.Printf("%d\n", settings.Search.DefaultLimit)
	case "embedding.provider":
		cmd.Println(settings.Embedding.Provider)
	case "embedding.model":
		cmd.Println(settings.Embedding.Model)
	case "embedding.base_url":
		cmd.Println(settings.Embedding.BaseURL)
	case "embedding.api_key":
		cmd.Println(maskAPIKey(settings.Embedding.APIKey))
	case "ocr.enabled":
		cmd.Printf("%t\n", settings.OCR.Enabled)
	case "ingestion.intake_dir":
		cmd.Println(settings.Ingestion.IntakeDir)
	case "ingestion.intake_ignore":
		cmd.Println(strings.Join(settings.Ingestion.IntakeIgnore, ","))
	case "ingestion.max_concurrent":
		cmd.Printf("%d\n", settings.Ingestion.MaxConcurrent)
	case "scheduler.enabled":
		cmd.Printf("%t\n", settings.Scheduler.Enabled)
	default:
		return fmt.Errorf("unknown setting %q", args[0])
	}

	return nil
}

//nolint:gocyclo // One case per settable key; splitting would obscure the mapping.
func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := strings.ToLower(args[0])
	value := args[1]

	switch key {
	case "active_project":
		if err := settingsService.SetActiveProject(value); err != nil {
			return fmt.Errorf("failed to set active project: %w", err)
		}

	case "keyword_similarity":
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("keyword_similarity must be a number: %w", err)
		}
		if err := settingsService.SetKeywordSimilarity(parsed); err != nil {
			return fmt.Errorf("failed to set keyword similarity: %w", err)
		}

	case "search.threshold":
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil || parsed < 0 || parsed > 1 {
			return fmt.Errorf("search.threshold must be between 0 and 1")
		}
		if err := updateSettings(func(s *domain.AppSettings) {
			s.Search.DefaultThreshold = parsed
		}); err != nil {
			return err
		}

	case "search.limit":
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 1 {
			return fmt.Errorf("search.limit must be a positive integer")
		}
		if err := updateSettings(func(s *domain.AppSettings) {
			s.Search.DefaultLimit = parsed
		}); err != nil {
			return err
		}

	case "embedding.provider":
		provider := domain.AIProvider(strings.ToLower(value))
		if !provider.IsValid() {
			return fmt.Errorf("unknown embedding provider %q (ollama, openai)", value)
		}
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		model := settings.Embedding.Model
		if model == "" {
			model = domain.DefaultEmbeddingModels()[provider]
		}
		if err := settingsService.SetEmbeddingProvider(provider, model, settings.Embedding.BaseURL, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("failed to set embedding provider: %w", err)
		}
		if provider.RequiresAPIKey() && settings.Embedding.APIKey == "" {
			cmd.Println("Note: this provider needs an API key. Run 'planroom settings set-key'.")
		}

	case "embedding.model":
		if err := updateSettings(func(s *domain.AppSettings) {
			s.Embedding.Model = value
		}); err != nil {
			return err
		}

	case "embedding.base_url":
		if err := updateSettings(func(s *domain.AppSettings) {
			s.Embedding.BaseURL = value
		}); err != nil {
			return err
		}

	case "ocr.enabled":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("ocr.enabled must be true or false")
		}
		if err := updateSettings(func(s *domain.AppSettings) {
			s.OCR.Enabled = parsed
		}); err != nil {
			return err
		}
		if parsed {
			settings, getErr := settingsService.Get()
			if getErr == nil && !settings.OCR.IsConfigured() {
				cmd.Println("Note: OCR needs credentials. Run 'planroom settings set-key'.")
			}
		}

	case "ingestion.intake_dir":
		if err := updateSettings(func(s *domain.AppSettings) {
			s.Ingestion.IntakeDir = value
		}); err != nil {
			return err
		}

	case "ingestion.intake_ignore":
		var patterns []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				patterns = append(patterns, p)
			}
		}
		if err := updateSettings(func(s *domain.AppSettings) {
			s.Ingestion.IntakeIgnore = patterns
		}); err != nil {
			return err
		}

	case "ingestion.max_concurrent":
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 1 {
			return fmt.Errorf("ingestion.max_concurrent must be a positive integer")
		}
		if err := updateSettings(func(s *domain.AppSettings) {
			s.Ingestion.MaxConcurrent = parsed
		}); err != nil {
			return err
		}

	case "scheduler.enabled":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("scheduler.enabled must be true or false")
		}
		if err := updateSettings(func(s *domain.AppSettings) {
			s.Scheduler.Enabled = parsed
		}); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown setting %q (see 'planroom settings set --help')", args[0])
	}

	cmd.Printf("Set %s.\n", key)
	return nil
}

func runSettingsSetKey(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Select secret to set")
	cmd.Println("  1. Embedding API key (OpenAI)")
	cmd.Println("  2. OCR API key (Cloud Vision)")
	cmd.Println("  3. OCR OAuth credentials")
	cmd.Print("\nEnter choice: ")
	input := readLine(reader)
	choice := parseChoice(input, 3, 0)

	switch choice {
	case 1:
		return setEmbeddingAPIKey(cmd, reader)
	case 2:
		cmd.Print("Enter OCR API key: ")
		apiKey := readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key must not be empty")
		}
		if err := settingsService.SetOCRAPIKey(apiKey); err != nil {
			return fmt.Errorf("failed to set OCR API key: %w", err)
		}
		cmd.Println("OCR API key saved. OCR fallback enabled.")
		return nil
	case 3:
		cmd.Print("Enter OAuth client ID: ")
		clientID := readLine(reader)
		cmd.Print("Enter OAuth client secret: ")
		clientSecret := readPassword()
		cmd.Println()
		cmd.Print("Enter OAuth refresh token: ")
		refreshToken := readPassword()
		cmd.Println()
		if clientID == "" || clientSecret == "" || refreshToken == "" {
			return errors.New("all three OAuth values are required")
		}
		if err := settingsService.SetOCRCredentials(clientID, clientSecret, refreshToken); err != nil {
			return fmt.Errorf("failed to set OCR credentials: %w", err)
		}
		cmd.Println("OCR credentials saved. OCR fallback enabled.")
		return nil
	default:
		return errors.New("invalid selection")
	}
}

func setEmbeddingAPIKey(cmd *cobra.Command, reader *bufio.Reader) error {
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	provider := settings.Embedding.Provider
	if !provider.IsValid() {
		provider = domain.AIProviderOpenAI
	}
	model := settings.Embedding.Model
	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}

	cmd.Print("Enter API key: ")
	apiKey := readPassword()
	cmd.Println()
	if apiKey == "" {
		return errors.New("API key must not be empty")
	}

	if err := settingsService.SetEmbeddingProvider(provider, model, settings.Embedding.BaseURL, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n", provider.Description(), model)
	return nil
}

// updateSettings applies a mutation to the current settings and saves them.
func updateSettings(mutate func(*domain.AppSettings)) error {
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	mutate(settings)
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
)

var (
	searchProject     string
	searchAllProjects bool
	searchTypes       []string
	searchLimit       int
	searchThreshold   float64
	searchJSON        bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Runs a hybrid search across the indexed documents: keyword matching and
semantic similarity in parallel, merged and ranked by relevance, document
type, recency and project scope. Results are grouped per document with
the strongest chunks listed underneath.

By default only the active project is searched. Use --project to search
another project, or --all-projects to search everything (chunks from the
active project still rank higher).`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchProject, "project", "p", "", "project to search (defaults to the active project)")
	searchCmd.Flags().BoolVarP(&searchAllProjects, "all-projects", "a", false, "search across all projects")
	searchCmd.Flags().StringSliceVarP(&searchTypes, "type", "t", nil, "restrict to document types (repeatable, e.g. SPEC,RFI)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum candidates per retrieval pass (0 = default)")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", 0, "minimum vector similarity (0 = default)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(args[0])
	if query == "" {
		return errors.New("query must not be empty")
	}

	if searchService == nil {
		return errors.New("search service not configured")
	}

	opts := domain.SearchOptions{
		AllProjects: searchAllProjects,
		Limit:       searchLimit,
		Threshold:   searchThreshold,
	}

	var active string
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			active = settings.ActiveProjectID
		}
	}

	if searchAllProjects {
		opts.ActiveProjectID = active
	} else {
		opts.ProjectID = searchProject
		if opts.ProjectID == "" {
			opts.ProjectID = active
		}
		if opts.ProjectID == "" {
			return errors.New("no project given and no active project set (use --project or --all-projects)")
		}
	}

	for _, raw := range searchTypes {
		docType := domain.DocumentType(strings.ToUpper(strings.TrimSpace(raw)))
		if !docType.IsValid() {
			return fmt.Errorf("unknown document type %q", raw)
		}
		opts.Types = append(opts.Types, docType)
	}

	ctx := context.Background()
	groups, err := searchService.Search(ctx, query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, groups)
	}

	return outputSearchGroups(cmd, groups)
}

func outputSearchJSON(cmd *cobra.Command, groups []domain.ResultGroup) error {
	data, err := json.MarshalIndent(groups, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchGroups(cmd *cobra.Command, groups []domain.ResultGroup) error {
	if len(groups) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, group := range groups {
		title := group.Document.Title
		if title == "" {
			title = group.Document.ID
		}

		cmd.Printf("  [%d] %s (%s, score %.2f)\n", i+1, title, group.Document.Type, group.BestScore)
		cmd.Printf("      id: %s\n", group.Document.ID)
		for _, scored := range group.Chunks {
			marker := ""
			if scored.IsMarginal {
				marker = " [marginal]"
			}
			cmd.Printf("      %.2f%s %s %s\n", scored.FinalScore, marker, chunkLocation(scored.Chunk), snippet(scored.Chunk.Content))
		}
		cmd.Println()
	}

	return nil
}

// chunkLocation renders where in the document a chunk sits, e.g. "(p.12, 07 62 00)".
func chunkLocation(chunk domain.Chunk) string {
	var parts []string
	if chunk.PageNumber != nil {
		parts = append(parts, fmt.Sprintf("p.%d", *chunk.PageNumber))
	}
	if chunk.SectionRef != "" {
		parts = append(parts, chunk.SectionRef)
	}
	if len(parts) == 0 {
		return fmt.Sprintf("(chunk %d)", chunk.Index)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// snippet returns the first line of a chunk, truncated for display.
func snippet(content string) string {
	content = strings.TrimSpace(content)
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		content = strings.TrimSpace(content[:idx])
	}

	const maxRunes = 120
	runes := []rune(content)
	if len(runes) > maxRunes {
		return string(runes[:maxRunes]) + "..."
	}
	return content
}

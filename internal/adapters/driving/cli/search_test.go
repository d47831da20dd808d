package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_Short(t *testing.T) {
	assert.Equal(t, "Search indexed documents", searchCmd.Short)
}

func TestSearchCmd_Long(t *testing.T) {
	assert.Contains(t, searchCmd.Long, "hybrid search")
	assert.Contains(t, searchCmd.Long, "semantic")
	assert.Contains(t, searchCmd.Long, "active project")
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasFlags(t *testing.T) {
	limit := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, limit, "limit flag should exist")
	assert.Equal(t, "n", limit.Shorthand)
	assert.Equal(t, "0", limit.DefValue)

	assert.NotNil(t, searchCmd.Flags().Lookup("project"))
	assert.NotNil(t, searchCmd.Flags().Lookup("all-projects"))
	assert.NotNil(t, searchCmd.Flags().Lookup("type"))
	assert.NotNil(t, searchCmd.Flags().Lookup("threshold"))
	assert.NotNil(t, searchCmd.Flags().Lookup("json"))
}

func TestSearchCmd_UsesActiveProject(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	mock := &mockCLISearchService{}
	searchService = mock

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "roof flashing"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, "roof flashing", mock.lastQuery)
	assert.Equal(t, "proj-1", mock.lastOpts.ProjectID)
	assert.False(t, mock.lastOpts.AllProjects)
	assert.Contains(t, buf.String(), "Results:")
	assert.Contains(t, buf.String(), "Roofing Spec")
}

func TestSearchCmd_ExplicitProjectFlag(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	mock := &mockCLISearchService{}
	searchService = mock

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "--project", "proj-9", "roof flashing"})
	defer func() {
		rootCmd.SetArgs(nil)
		searchProject = ""
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, "proj-9", mock.lastOpts.ProjectID)
}

func TestSearchCmd_AllProjects(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	mock := &mockCLISearchService{}
	searchService = mock

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "--all-projects", "roof flashing"})
	defer func() {
		rootCmd.SetArgs(nil)
		searchAllProjects = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.True(t, mock.lastOpts.AllProjects)
	assert.Empty(t, mock.lastOpts.ProjectID)
	// Active project still informs the scope boost
	assert.Equal(t, "proj-1", mock.lastOpts.ActiveProjectID)
}

func TestSearchCmd_TypeFilter(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	mock := &mockCLISearchService{}
	searchService = mock

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "--type", "spec,rfi", "roof flashing"})
	defer func() {
		rootCmd.SetArgs(nil)
		searchTypes = nil
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, []domain.DocumentType{domain.TypeSpec, domain.TypeRFI}, mock.lastOpts.Types)
}

func TestSearchCmd_UnknownTypeRejected(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search", "--type", "blueprintz", "roof flashing"})
	defer func() {
		rootCmd.SetArgs(nil)
		searchTypes = nil
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown document type")
}

func TestSearchCmd_MarginalMarker(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "roof flashing"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "[marginal]")
	assert.Contains(t, buf.String(), "07 62 00")
	assert.Contains(t, buf.String(), "p.12")
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "--json", "roof flashing"})
	defer func() {
		rootCmd.SetArgs(nil)
		searchJSON = false // Reset flag
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	// JSON uses capitalized field names from struct tags
	assert.Contains(t, buf.String(), "\"Document\"")
	assert.Contains(t, buf.String(), "\"Chunks\"")
	assert.Contains(t, buf.String(), "\"BestScore\"")
}

func TestSearchCmd_NoProjectAnywhere(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	settings := newMockCLISettingsService()
	settings.settings.ActiveProjectID = ""
	settingsService = settings

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search", "roof flashing"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no project given and no active project set")
}

func TestSearchCmd_ServiceNotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	searchService = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search", "test"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "search service not configured")
}

func TestSearchCmd_ServiceError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	searchService = &mockSearchServiceError{}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search", "test"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "search failed")
}

func TestOutputSearchJSON_EmptyResults(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	err := outputSearchJSON(rootCmd, []domain.ResultGroup{})

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "[]")
}

func TestOutputSearchGroups_EmptyResults(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	err := outputSearchGroups(rootCmd, []domain.ResultGroup{})

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No results found")
}

func TestOutputSearchGroups_FallsBackToID(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	groups := []domain.ResultGroup{
		{
			Document:  domain.Document{ID: "doc-123", Type: domain.TypeRFI},
			BestScore: 0.75,
		},
	}

	err := outputSearchGroups(rootCmd, groups)

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "doc-123")
	assert.Contains(t, buf.String(), "0.75")
}

func TestChunkLocation(t *testing.T) {
	tests := []struct {
		name     string
		chunk    domain.Chunk
		expected string
	}{
		{
			name:     "Page and section",
			chunk:    domain.Chunk{PageNumber: intPtr(4), SectionRef: "09 91 23"},
			expected: "(p.4, 09 91 23)",
		},
		{
			name:     "Page only",
			chunk:    domain.Chunk{PageNumber: intPtr(7)},
			expected: "(p.7)",
		},
		{
			name:     "Section only",
			chunk:    domain.Chunk{SectionRef: "03 30 00"},
			expected: "(03 30 00)",
		},
		{
			name:     "Neither falls back to index",
			chunk:    domain.Chunk{Index: 5},
			expected: "(chunk 5)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, chunkLocation(tt.chunk))
		})
	}
}

func TestSnippet(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "Short content unchanged",
			content:  "Install flashing at all penetrations.",
			expected: "Install flashing at all penetrations.",
		},
		{
			name:     "First line only",
			content:  "First line.\nSecond line.",
			expected: "First line.",
		},
		{
			name:     "Surrounding whitespace trimmed",
			content:  "  padded  \nrest",
			expected: "padded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, snippet(tt.content))
		})
	}
}

func TestSnippet_TruncatesLongContent(t *testing.T) {
	long := ""
	for i := 0; i < 40; i++ {
		long += "concrete "
	}

	result := snippet(long)

	assert.LessOrEqual(t, len([]rune(result)), 123)
	assert.Contains(t, result, "...")
}

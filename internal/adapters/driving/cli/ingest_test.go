package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
)

// writeIngestFile creates a file for ingest tests and returns its path.
func writeIngestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest [file...]", ingestCmd.Use)
}

func TestIngestCmd_Short(t *testing.T) {
	assert.Equal(t, "Index documents into the plan room", ingestCmd.Short)
}

func TestIngestCmd_RequiresAtLeastOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestIngestCmd_HasFlags(t *testing.T) {
	assert.NotNil(t, ingestCmd.Flags().Lookup("project"))
	assert.NotNil(t, ingestCmd.Flags().Lookup("type"))
	assert.NotNil(t, ingestCmd.Flags().Lookup("title"))
}

func TestIngestCmd_RegistersAndEnqueues(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	mock := &mockCLIIngestOrchestrator{}
	ingestOrchestrator = mock

	path := writeIngestFile(t, "division-07-specs.pdf", "roofing specification text")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", "--project", "proj-2", path})
	defer func() {
		rootCmd.SetArgs(nil)
		ingestProject = ""
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	require.Len(t, mock.registered, 1)
	req := mock.registered[0]
	assert.Equal(t, "proj-2", req.ProjectID)
	assert.Equal(t, "division-07-specs", req.Title)
	assert.Equal(t, "application/pdf", req.MIMEType)
	assert.Equal(t, []byte("roofing specification text"), req.Data)
	assert.Equal(t, []string{"doc-new"}, mock.enqueued)
	assert.Contains(t, buf.String(), "doc-new: ready")
	assert.Contains(t, buf.String(), "Done.")
}

func TestIngestCmd_DefaultsToActiveProject(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	mock := &mockCLIIngestOrchestrator{}
	ingestOrchestrator = mock

	path := writeIngestFile(t, "rfi-014.txt", "clarification request")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", path})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	require.Len(t, mock.registered, 1)
	assert.Equal(t, "proj-1", mock.registered[0].ProjectID)
}

func TestIngestCmd_ExplicitTypeAndTitle(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	mock := &mockCLIIngestOrchestrator{}
	ingestOrchestrator = mock

	path := writeIngestFile(t, "scan0001.pdf", "addendum content")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", "--type", "addendum", "--title", "Addendum 02", path})
	defer func() {
		rootCmd.SetArgs(nil)
		ingestType = ""
		ingestTitle = ""
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	require.Len(t, mock.registered, 1)
	assert.Equal(t, domain.TypeAddendum, mock.registered[0].Type)
	assert.Equal(t, "Addendum 02", mock.registered[0].Title)
}

func TestIngestCmd_UnknownTypeRejected(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	path := writeIngestFile(t, "plan.pdf", "x")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", "--type", "blueprintz", path})
	defer func() {
		rootCmd.SetArgs(nil)
		ingestType = ""
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown document type")
}

func TestIngestCmd_TitleWithMultipleFilesRejected(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	pathA := writeIngestFile(t, "a.txt", "x")
	pathB := writeIngestFile(t, "b.txt", "y")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", "--title", "One Title", pathA, pathB})
	defer func() {
		rootCmd.SetArgs(nil)
		ingestTitle = ""
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "--title applies to a single file")
}

func TestIngestCmd_MissingFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", "/nonexistent/file.pdf"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
}

func TestIngestCmd_NoProjectAnywhere(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	settings := newMockCLISettingsService()
	settings.settings.ActiveProjectID = ""
	settingsService = settings

	path := writeIngestFile(t, "spec.pdf", "x")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", path})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no project given and no active project set")
}

func TestIngestCmd_ReportsFailedIngestion(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	ingestOrchestrator = &mockCLIIngestOrchestrator{failStatus: true}

	path := writeIngestFile(t, "bad-scan.pdf", "x")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", path})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "1 document(s) failed to ingest")
	assert.Contains(t, buf.String(), "extraction produced no text")
}

func TestIngestCmd_ServiceNotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	ingestOrchestrator = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", "whatever.pdf"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ingestion service not configured")
}

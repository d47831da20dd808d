package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Documents Command Tests

func TestDocumentsCmd_Use(t *testing.T) {
	assert.Equal(t, "documents", documentsCmd.Use)
}

func TestDocumentsCmd_Short(t *testing.T) {
	assert.Equal(t, "Manage indexed documents", documentsCmd.Short)
}

func TestDocumentsCmd_HasSubcommands(t *testing.T) {
	commands := documentsCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "show")
	assert.Contains(t, commandNames, "content")
	assert.Contains(t, commandNames, "delete")
	assert.Contains(t, commandNames, "reprocess")
}

// Documents List Tests

func TestDocumentsListCmd_Use(t *testing.T) {
	assert.Equal(t, "list", documentsListCmd.Use)
}

func TestDocumentsListCmd_HasFilterFlags(t *testing.T) {
	assert.NotNil(t, documentsListCmd.Flags().Lookup("project"))
	assert.NotNil(t, documentsListCmd.Flags().Lookup("status"))
	assert.NotNil(t, documentsListCmd.Flags().Lookup("type"))
}

func TestDocumentsListCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"documents", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Documents:")
	assert.Contains(t, buf.String(), "doc-1")
	assert.Contains(t, buf.String(), "Test Document 1")
	assert.Contains(t, buf.String(), "Total: 2 documents")
}

func TestDocumentsListCmd_ShowsErrorDetail(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"documents", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "extraction produced no text")
}

func TestDocumentsListCmd_RejectsUnknownStatus(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"documents", "list", "--status", "LIMBO"})
	defer func() {
		rootCmd.SetArgs(nil)
		documentsListStatus = ""
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown document status")
}

func TestDocumentsListCmd_RejectsUnknownType(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"documents", "list", "--type", "blueprintz"})
	defer func() {
		rootCmd.SetArgs(nil)
		documentsListType = ""
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown document type")
}

func TestDocumentsListCmd_EmptyList(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	documentService = &mockDocumentServiceEmpty{}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"documents", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No documents found")
}

// Documents Show Tests

func TestDocumentsShowCmd_Use(t *testing.T) {
	assert.Equal(t, "show [doc-id]", documentsShowCmd.Use)
}

func TestDocumentsShowCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"documents", "show"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestDocumentsShowCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"documents", "show", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Document: doc-1")
	assert.Contains(t, buf.String(), "Title:")
	assert.Contains(t, buf.String(), "Chunks:    4")
	assert.Contains(t, buf.String(), "Pages:     12")
	assert.Contains(t, buf.String(), "2025-06-01 10:00:00")
}

func TestDocumentsShowCmd_ListsSections(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"documents", "show", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Sections:")
	assert.Contains(t, buf.String(), "07 62 00")
	assert.Contains(t, buf.String(), "07 92 00")
}

// Documents Content Tests

func TestDocumentsContentCmd_Use(t *testing.T) {
	assert.Equal(t, "content [doc-id]", documentsContentCmd.Use)
}

func TestDocumentsContentCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"documents", "content", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "This is the content of the test document.")
}

// Documents Delete Tests

func TestDocumentsDeleteCmd_Use(t *testing.T) {
	assert.Equal(t, "delete [doc-id]", documentsDeleteCmd.Use)
}

func TestDocumentsDeleteCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	mock := &mockCLIDocumentService{}
	documentService = mock

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"documents", "delete", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, []string{"doc-1"}, mock.deleted)
	assert.Contains(t, buf.String(), "Document doc-1 deleted.")
}

// Documents Reprocess Tests

func TestDocumentsReprocessCmd_Use(t *testing.T) {
	assert.Equal(t, "reprocess [doc-id]", documentsReprocessCmd.Use)
}

func TestDocumentsReprocessCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	mock := &mockCLIIngestOrchestrator{}
	ingestOrchestrator = mock

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"documents", "reprocess", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, []string{"doc-1"}, mock.reprocessed)
	assert.Contains(t, buf.String(), "Reprocessing doc-1...")
	assert.Contains(t, buf.String(), "doc-1: ready")
	assert.Contains(t, buf.String(), "Done.")
}

func TestDocumentsReprocessCmd_ReportsFailure(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	ingestOrchestrator = &mockCLIIngestOrchestrator{failStatus: true}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"documents", "reprocess", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "1 document(s) failed to ingest")
	assert.Contains(t, buf.String(), "extraction produced no text")
}

// Service Not Configured Tests

func TestDocumentsListCmd_ServiceNotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	documentService = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"documents", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "document service not configured")
}

func TestDocumentsReprocessCmd_ServiceNotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	ingestOrchestrator = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"documents", "reprocess", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ingestion service not configured")
}

// Service Error Tests

func TestDocumentsListCmd_ServiceError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	documentService = &mockDocumentServiceError{}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"documents", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list documents")
}

func TestDocumentsShowCmd_ServiceError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	documentService = &mockDocumentServiceError{}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"documents", "show", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get document")
}

func TestDocumentsContentCmd_ServiceError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	documentService = &mockDocumentServiceError{}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"documents", "content", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get document content")
}

func TestDocumentsDeleteCmd_ServiceError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	documentService = &mockDocumentServiceError{}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"documents", "delete", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to delete document")
}

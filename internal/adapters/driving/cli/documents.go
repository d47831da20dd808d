package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
	"github.com/planroomhq/planroom-cli/internal/core/ports/driving"
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "Manage indexed documents",
	Long:    `List, inspect, delete, or reprocess indexed documents.`,
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentsList,
}

var documentsShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show document metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsShow,
}

var documentsContentCmd = &cobra.Command{
	Use:   "content [doc-id]",
	Short: "Print the indexed text of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsContent,
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document from the index",
	Long:  `Removes the document record, its chunks and its stored bytes.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsDelete,
}

var documentsReprocessCmd = &cobra.Command{
	Use:   "reprocess [doc-id]",
	Short: "Re-run the ingestion pipeline for a document",
	Long: `Re-extracts, re-chunks and re-embeds a document from its stored bytes.
Useful after changing the embedding provider or when an earlier ingestion
failed for a transient reason.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentsReprocess,
}

// List filters.
var (
	documentsListProject string
	documentsListStatus  string
	documentsListType    string
)

func init() {
	documentsListCmd.Flags().StringVarP(&documentsListProject, "project", "p", "", "only documents in this project")
	documentsListCmd.Flags().StringVarP(&documentsListStatus, "status", "s", "", "only documents in this state (UPLOADING, PROCESSING, READY, ERROR)")
	documentsListCmd.Flags().StringVarP(&documentsListType, "type", "t", "", "only documents of this type (e.g. SPEC, RFI)")

	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsShowCmd)
	documentsCmd.AddCommand(documentsContentCmd)
	documentsCmd.AddCommand(documentsDeleteCmd)
	documentsCmd.AddCommand(documentsReprocessCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsList(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	opts := driving.ListOptions{ProjectID: documentsListProject}

	if documentsListStatus != "" {
		status := domain.DocumentStatus(strings.ToUpper(documentsListStatus))
		if !status.IsValid() {
			return fmt.Errorf("unknown document status %q", documentsListStatus)
		}
		opts.Status = status
	}

	if documentsListType != "" {
		docType := domain.DocumentType(strings.ToUpper(documentsListType))
		if !docType.IsValid() {
			return fmt.Errorf("unknown document type %q", documentsListType)
		}
		opts.Type = docType
	}

	ctx := context.Background()
	docs, err := documentService.List(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Title:   %s\n", docs[i].Title)
		cmd.Printf("    Project: %s\n", docs[i].ProjectID)
		cmd.Printf("    Type:    %s\n", docs[i].Type)
		cmd.Printf("    Status:  %s\n", docs[i].Status)
		if docs[i].Status == domain.StatusError && docs[i].ErrorDetail != "" {
			cmd.Printf("    Error:   %s\n", docs[i].ErrorDetail)
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentsShow(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docID := args[0]
	ctx := context.Background()

	details, err := documentService.GetDetails(ctx, docID)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", details.ID)
	cmd.Printf("  Title:     %s\n", details.Title)
	cmd.Printf("  Project:   %s\n", details.ProjectID)
	cmd.Printf("  Type:      %s\n", details.Type)
	cmd.Printf("  Status:    %s\n", details.Status)
	cmd.Printf("  MIME:      %s\n", details.MIMEType)
	cmd.Printf("  Size:      %d bytes\n", details.SizeBytes)
	if details.PageCount > 0 {
		cmd.Printf("  Pages:     %d\n", details.PageCount)
	}
	cmd.Printf("  Chunks:    %d\n", details.ChunkCount)
	cmd.Printf("  Created:   %s\n", details.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated:   %s\n", details.UpdatedAt.Format("2006-01-02 15:04:05"))

	if details.ErrorDetail != "" {
		cmd.Printf("  Error:     %s\n", details.ErrorDetail)
	}

	if len(details.Sections) > 0 {
		cmd.Println("\n  Sections:")
		for _, section := range details.Sections {
			cmd.Printf("    %s\n", section)
		}
	}

	return nil
}

func runDocumentsContent(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docID := args[0]
	ctx := context.Background()

	content, err := documentService.GetContent(ctx, docID)
	if err != nil {
		return fmt.Errorf("failed to get document content: %w", err)
	}

	cmd.Println(content)
	return nil
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docID := args[0]
	ctx := context.Background()

	if err := documentService.Delete(ctx, docID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Document %s deleted.\n", docID)
	return nil
}

func runDocumentsReprocess(cmd *cobra.Command, args []string) error {
	if ingestOrchestrator == nil {
		return errors.New("ingestion service not configured")
	}

	docID := args[0]
	ctx := context.Background()

	if err := ingestOrchestrator.Reprocess(ctx, docID); err != nil {
		return fmt.Errorf("failed to reprocess document: %w", err)
	}

	cmd.Printf("Reprocessing %s...\n", docID)
	return waitForIngestion(ctx, cmd, []string{docID})
}

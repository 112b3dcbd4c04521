package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

var (
	indexCourseID int64
	indexJSON     bool
	indexChunks   int
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage document indices",
	Long:  `List, inspect and remove the per-document indices of a course.`,
}

var indexListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List the indices of a course",
	Args:    cobra.NoArgs,
	RunE:    runIndexList,
}

var indexShowCmd = &cobra.Command{
	Use:   "show [store-id]",
	Short: "Show an index and its first chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexShow,
}

var indexRemoveCmd = &cobra.Command{
	Use:     "rm [store-id]",
	Aliases: []string{"remove"},
	Short:   "Remove an index",
	Long:    `Deletes the stored index of a document and forgets it in the course catalog.`,
	Args:    cobra.ExactArgs(1),
	RunE:    runIndexRemove,
}

func init() {
	indexListCmd.Flags().Int64VarP(&indexCourseID, "course", "c", 0, "course id (required)")
	indexListCmd.Flags().BoolVar(&indexJSON, "json", false, "output store ids as JSON")
	indexShowCmd.Flags().IntVar(&indexChunks, "chunks", 3, "number of chunks to preview")
	indexCmd.AddCommand(indexListCmd)
	indexCmd.AddCommand(indexShowCmd)
	indexCmd.AddCommand(indexRemoveCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexList(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errIngestNotConfigured
	}
	if err := requireCourse(indexCourseID); err != nil {
		return err
	}

	ids, err := ingestService.Indices(cmd.Context(), indexCourseID)
	if err != nil {
		return fmt.Errorf("failed to list indices: %w", err)
	}
	if indexJSON {
		return printJSON(cmd, ids)
	}
	if len(ids) == 0 {
		cmd.Println("No indices found.")
		return nil
	}
	for _, id := range ids {
		cmd.Println(id)
	}
	return nil
}

func runIndexShow(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errIngestNotConfigured
	}

	idx, err := ingestService.Inspect(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("index %s not found", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to load index: %w", err)
	}

	cmd.Printf("Store ID:  %s\n", idx.StoreID)
	cmd.Printf("Title:     %s\n", idx.DocumentTitle)
	cmd.Printf("Course:    %d\n", idx.CourseID)
	if idx.DocumentID > 0 {
		cmd.Printf("Document:  %d\n", idx.DocumentID)
	}
	cmd.Printf("Model:     %s (%d dimensions)\n", idx.ModelID, idx.Dimension)
	cmd.Printf("Chunks:    %d\n", len(idx.Chunks))
	if !idx.CreatedAt.IsZero() {
		cmd.Printf("Created:   %s\n", idx.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	for i, c := range idx.Chunks {
		if i >= indexChunks {
			break
		}
		cmd.Printf("\n  #%d %s\n", c.Ordinal, snippet(c.Text, 160))
	}
	return nil
}

func runIndexRemove(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errIngestNotConfigured
	}
	if err := ingestService.Remove(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to remove index: %w", err)
	}
	cmd.Printf("Removed %s\n", args[0])
	return nil
}

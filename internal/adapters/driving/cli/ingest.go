package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

var (
	ingestCourseID   int64
	ingestDocumentID int64
	ingestTitle      string
	ingestText       string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Index a course document",
	Long: `Extracts text from a document, splits it into overlapping chunks, embeds
every chunk and stores the index under the course.

Supported files: .pdf, .docx, .md, .txt. Use --text to index raw text instead.
Re-ingesting a document with the same title replaces its index.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().Int64VarP(&ingestCourseID, "course", "c", 0, "course id (required)")
	ingestCmd.Flags().Int64Var(&ingestDocumentID, "document", 0, "document id used for filtering")
	ingestCmd.Flags().StringVarP(&ingestTitle, "title", "t", "", "document title (defaults to the file name)")
	ingestCmd.Flags().StringVar(&ingestText, "text", "", "index this text instead of a file")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errIngestNotConfigured
	}
	if err := requireCourse(ingestCourseID); err != nil {
		return err
	}

	var (
		storeID string
		err     error
	)
	switch {
	case ingestText != "":
		if ingestTitle == "" {
			return errors.New("--title is required with --text")
		}
		storeID, err = ingestService.Ingest(cmd.Context(), domain.IngestRequest{
			CourseID:   ingestCourseID,
			DocumentID: ingestDocumentID,
			Title:      ingestTitle,
			Text:       ingestText,
		})
	case len(args) == 1:
		title := ingestTitle
		if title == "" {
			title = titleFromPath(args[0])
		}
		storeID, err = ingestService.IngestFile(cmd.Context(), ingestCourseID, ingestDocumentID, title, args[0])
	default:
		return errors.New("a file or --text is required")
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Indexed %s\n", storeID)
	return nil
}

// titleFromPath derives a title from the file name without its extension.
func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

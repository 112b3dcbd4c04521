package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

var (
	retrieveCourseID  int64
	retrieveLimit     int
	retrieveDocuments []int64
	retrieveJSON      bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Show the passages ranked for a query",
	Long: `Embeds the query and ranks chunks from every document index of the
course by similarity. Scores are 1/(1+distance), higher is closer.`,
	Args: cobra.ExactArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().Int64VarP(&retrieveCourseID, "course", "c", 0, "course id (required)")
	retrieveCmd.Flags().IntVarP(&retrieveLimit, "limit", "n", 0, "maximum number of passages (default from settings)")
	retrieveCmd.Flags().Int64SliceVarP(&retrieveDocuments, "document", "d", nil, "restrict to document ids")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output passages as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errRetrievalNotConfigured
	}
	if err := requireCourse(retrieveCourseID); err != nil {
		return err
	}

	limit := retrieveLimit
	if limit <= 0 {
		limit = retrievalTopK
	}
	results := retrievalService.RetrieveWithFallback(cmd.Context(), retrieveCourseID, args[0], domain.RetrievalOptions{
		K:                  limit,
		AllowedDocumentIDs: retrieveDocuments,
	})

	if retrieveJSON {
		return printJSON(cmd, results)
	}
	return outputPassages(cmd, results)
}

func outputPassages(cmd *cobra.Command, results []domain.RetrievalResult) error {
	if len(results) == 0 {
		cmd.Println("No passages found.")
		return nil
	}

	cmd.Println("Passages:")
	cmd.Println()
	for i := range results {
		title := results[i].Source.DocumentTitle
		if title == "" {
			title = "(untitled)"
		}
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, results[i].Score)
		cmd.Printf("      %s\n", snippet(results[i].Content, 160))
		cmd.Println()
	}
	return nil
}

// snippet collapses whitespace and truncates to n runes.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

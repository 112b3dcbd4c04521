package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

var (
	askCourseID  int64
	askDocuments []int64
	askJSON      bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from course material",
	Long: `Moderates the question, retrieves the most relevant passages from the
course, asks the LLM to answer from them and moderates the answer.

Use --document to restrict retrieval to specific documents. When the filter
finds nothing, retrieval falls back to the whole course.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().Int64VarP(&askCourseID, "course", "c", 0, "course id (required)")
	askCmd.Flags().Int64SliceVarP(&askDocuments, "document", "d", nil, "restrict to document ids")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the response as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errAnswerNotConfigured
	}
	if err := requireCourse(askCourseID); err != nil {
		return err
	}

	resp, err := answerService.Answer(cmd.Context(), domain.AnswerRequest{
		CourseID:           askCourseID,
		Query:              args[0],
		AllowedDocumentIDs: askDocuments,
	}, moderationPolicy)
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	if askJSON {
		return printJSON(cmd, resp)
	}

	cmd.Println(resp.Answer)
	if len(resp.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, src := range resp.Sources {
			cmd.Printf("  [%d] %s (%.2f)\n", i+1, src.Source.DocumentTitle, src.Score)
		}
	}
	for _, w := range resp.ModerationWarnings {
		cmd.Printf("Warning: %s\n", w)
	}
	cmd.Printf("\nConfidence: %.2f\n", resp.Confidence)
	return nil
}

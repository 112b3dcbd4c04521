package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/learnly-labs/learnly-engine/internal/adapters/driving/tui"
)

var (
	chatCourseID  int64
	chatStudentID int64
)

// chatCmd represents the chat command.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Launch the interactive course tutor",
	Long: `Launch the interactive terminal user interface for a course.

The TUI provides a conversation grounded in the course documents, a passage
explorer and practice quizzes. With --student quiz results are recorded and
quiz difficulty follows the student's competency.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Send / Select
  ctrl+s   - Show sources
  Esc      - Back
  ctrl+c   - Quit`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().Int64VarP(&chatCourseID, "course", "c", 0, "course id (required)")
	chatCmd.Flags().Int64Var(&chatStudentID, "student", 0, "student id for recorded quizzes")
	rootCmd.AddCommand(chatCmd)
}

// newChatPorts builds the TUI ports from the configured services.
func newChatPorts() *tui.Ports {
	return &tui.Ports{
		Answer:    answerService,
		Retrieval: retrievalService,
		Quiz:      quizService,
		Grading:   gradingService,
		Policy:    moderationPolicy,
		CourseID:  chatCourseID,
		StudentID: chatStudentID,
		TopK:      retrievalTopK,
	}
}

func runChat(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if answerService == nil {
		return errAnswerNotConfigured
	}
	if err := requireCourse(chatCourseID); err != nil {
		return err
	}

	app, err := tui.NewApp(newChatPorts())
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	app.WithContext(cmd.Context())
	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

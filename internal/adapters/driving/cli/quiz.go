package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

var (
	quizCourseID   int64
	quizDifficulty string
	quizStudentID  int64
	quizQuestions  int
	quizDocuments  []int64
	quizOut        string
	quizJSON       bool
)

var quizCmd = &cobra.Command{
	Use:   "quiz [topic]",
	Short: "Generate a quiz from course material",
	Long: `Retrieves material about the topic (or the whole course when no topic is
given) and asks the LLM for questions grounded in it.

Difficulty comes from --difficulty, or from the student's competency when
--student is set, and defaults to medium. Use --out to save the quiz as a
YAML question bank for 'learnly grade'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuiz,
}

func init() {
	quizCmd.Flags().Int64VarP(&quizCourseID, "course", "c", 0, "course id (required)")
	quizCmd.Flags().StringVar(&quizDifficulty, "difficulty", "", "easy, medium or hard")
	quizCmd.Flags().Int64Var(&quizStudentID, "student", 0, "adapt difficulty to this student")
	quizCmd.Flags().IntVarP(&quizQuestions, "questions", "n", 5, "number of questions")
	quizCmd.Flags().Int64SliceVarP(&quizDocuments, "document", "d", nil, "restrict to document ids")
	quizCmd.Flags().StringVarP(&quizOut, "out", "o", "", "write the quiz to a YAML file")
	quizCmd.Flags().BoolVar(&quizJSON, "json", false, "output questions as JSON")
	rootCmd.AddCommand(quizCmd)
}

func runQuiz(cmd *cobra.Command, args []string) error {
	if quizService == nil {
		return errQuizNotConfigured
	}
	if err := requireCourse(quizCourseID); err != nil {
		return err
	}

	difficulty, err := resolveDifficulty(cmd)
	if err != nil {
		return err
	}

	req := domain.QuizRequest{
		CourseID:           quizCourseID,
		Difficulty:         difficulty,
		NumQuestions:       quizQuestions,
		AllowedDocumentIDs: quizDocuments,
	}
	if len(args) == 1 {
		req.Topic = args[0]
	}

	questions, err := quizService.Generate(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("quiz generation failed: %w", err)
	}

	if quizOut != "" {
		if err := writeQuestionBank(quizOut, questions); err != nil {
			return err
		}
		cmd.Printf("Wrote %d questions to %s\n", len(questions), quizOut)
		return nil
	}
	if quizJSON {
		return printJSON(cmd, questions)
	}
	outputQuestions(cmd, difficulty, questions)
	return nil
}

// resolveDifficulty prefers the flag, then the student's competency.
func resolveDifficulty(cmd *cobra.Command) (domain.Difficulty, error) {
	if quizDifficulty != "" {
		return domain.ParseDifficulty(quizDifficulty), nil
	}
	if quizStudentID <= 0 {
		return domain.DifficultyMedium, nil
	}
	if gradingService == nil {
		return "", errGradingNotConfigured
	}
	d, err := gradingService.AdaptiveDifficulty(cmd.Context(), quizStudentID)
	if err != nil {
		return "", fmt.Errorf("failed to pick difficulty: %w", err)
	}
	return d, nil
}

func outputQuestions(cmd *cobra.Command, difficulty domain.Difficulty, questions []domain.QuizQuestion) {
	cmd.Printf("Quiz (%s, %d questions)\n\n", difficulty, len(questions))
	for i, q := range questions {
		cmd.Printf("%d. %s\n", i+1, q.QuestionText)
		for j, opt := range q.Options {
			cmd.Printf("   %c) %s\n", 'a'+j, opt)
		}
		cmd.Printf("   Answer: %s\n", q.CorrectAnswer)
		if q.Explanation != "" {
			cmd.Printf("   %s\n", q.Explanation)
		}
		cmd.Println()
	}
}

func writeQuestionBank(path string, questions []domain.QuizQuestion) error {
	data, err := yaml.Marshal(questionBank{Questions: questions})
	if err != nil {
		return fmt.Errorf("failed to encode quiz: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write quiz: %w", err)
	}
	return nil
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

// questionBank is the YAML file written by quiz --out.
// Questions are numbered from 1 in file order.
type questionBank struct {
	Questions []domain.QuizQuestion `yaml:"questions"`
}

// bankQuestion reads one question of a bank. Points is a pointer so a
// missing value can default while an explicit 0 is kept.
type bankQuestion struct {
	QuestionText  string              `yaml:"question_text"`
	QuestionType  domain.QuestionType `yaml:"question_type"`
	CorrectAnswer string              `yaml:"correct_answer"`
	Explanation   string              `yaml:"explanation"`
	Points        *int                `yaml:"points"`
}

func (q bankQuestion) points() float64 {
	if q.Points == nil {
		return domain.DefaultQuestionPoints
	}
	return float64(*q.Points)
}

// answerSheet is the YAML file of a student's answers.
type answerSheet struct {
	Answers []domain.SubmittedAnswer `yaml:"answers"`
}

var (
	gradeStudentID int64
	gradeQuizID    int64
	gradeJSON      bool
)

var gradeCmd = &cobra.Command{
	Use:   "grade [question-bank.yaml] [answers.yaml]",
	Short: "Grade an answer sheet against a question bank",
	Long: `Grades each answer against its question. Multiple choice and true/false
answers must match exactly, ignoring case; short answers are accepted when
either the answer or the key contains the other.

With --student the attempt is recorded and the student's competency is
updated. Answer sheet format:

  answers:
    - question_id: 1
      student_answer: Mitochondria`,
	Args: cobra.ExactArgs(2),
	RunE: runGrade,
}

func init() {
	gradeCmd.Flags().Int64Var(&gradeStudentID, "student", 0, "record the attempt for this student")
	gradeCmd.Flags().Int64Var(&gradeQuizID, "quiz", 0, "quiz id stored with the attempt")
	gradeCmd.Flags().BoolVar(&gradeJSON, "json", false, "output the graded attempt as JSON")
	rootCmd.AddCommand(gradeCmd)
}

func runGrade(cmd *cobra.Command, args []string) error {
	if gradingService == nil {
		return errGradingNotConfigured
	}

	var bank struct {
		Questions []bankQuestion `yaml:"questions"`
	}
	if err := readYAML(args[0], &bank); err != nil {
		return err
	}
	var sheet answerSheet
	if err := readYAML(args[1], &sheet); err != nil {
		return err
	}

	questions := make([]domain.GradableQuestion, len(bank.Questions))
	for i, q := range bank.Questions {
		questions[i] = domain.NewGradableQuestion(int64(i+1), q.QuestionType, q.CorrectAnswer, q.points())
		questions[i].Explanation = q.Explanation
	}

	attempt := gradingService.Grade(questions, sheet.Answers)

	competency := -1
	if gradeStudentID > 0 {
		score, err := gradingService.RecordAttempt(cmd.Context(), gradeStudentID, gradeQuizID, attempt)
		if err != nil {
			return fmt.Errorf("failed to record attempt: %w", err)
		}
		competency = score
	}

	if gradeJSON {
		out := struct {
			domain.GradedAttempt
			Competency *int `json:"competency,omitempty"`
		}{GradedAttempt: attempt}
		if competency >= 0 {
			out.Competency = &competency
		}
		return printJSON(cmd, out)
	}

	for _, r := range attempt.PerQuestion {
		mark := "correct"
		if !r.IsCorrect {
			mark = "wrong, expected " + r.CorrectAnswer
		}
		cmd.Printf("  %d. %s\n", r.QuestionID, mark)
	}
	cmd.Printf("\nScore: %s\n", attempt)
	if competency >= 0 {
		cmd.Printf("Competency: %d\n", competency)
	}
	return nil
}

func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var competencyCmd = &cobra.Command{
	Use:   "competency [student-id]",
	Short: "Show a student's competency and next quiz difficulty",
	Long: `Prints the student's competency score (0-100) and the difficulty the next
adaptive quiz would use. Students without attempts start at 50.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompetency,
}

func init() {
	rootCmd.AddCommand(competencyCmd)
}

func runCompetency(cmd *cobra.Command, args []string) error {
	if gradingService == nil {
		return errGradingNotConfigured
	}

	studentID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || studentID <= 0 {
		return errors.New("student id must be a positive integer")
	}

	score, err := gradingService.Competency(cmd.Context(), studentID)
	if err != nil {
		return fmt.Errorf("failed to get competency: %w", err)
	}
	difficulty, err := gradingService.AdaptiveDifficulty(cmd.Context(), studentID)
	if err != nil {
		return fmt.Errorf("failed to pick difficulty: %w", err)
	}

	cmd.Printf("Student %d\n", studentID)
	cmd.Printf("  Competency: %d/100\n", score)
	cmd.Printf("  Next quiz:  %s\n", difficulty)
	return nil
}

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

var (
	moderateFile      string
	moderateThreshold float64
	moderateAudit     bool
	moderateJSON      bool
)

var moderateCmd = &cobra.Command{
	Use:   "moderate [text...]",
	Short: "Check text against the moderation policy",
	Long: `Runs each text through the keyword moderation gate and prints the verdicts
with a summary. Use --file to check one text per line.

With --audit every verdict is written to the moderation log, flagged texts
as warned and the rest as allowed.`,
	RunE: runModerate,
}

func init() {
	moderateCmd.Flags().StringVarP(&moderateFile, "file", "f", "", "read texts from a file, one per line")
	moderateCmd.Flags().Float64Var(&moderateThreshold, "threshold", 0, "override the default threshold")
	moderateCmd.Flags().BoolVar(&moderateAudit, "audit", false, "record verdicts in the moderation log")
	moderateCmd.Flags().BoolVar(&moderateJSON, "json", false, "output verdicts and summary as JSON")
	rootCmd.AddCommand(moderateCmd)
}

func runModerate(cmd *cobra.Command, args []string) error {
	if moderationService == nil {
		return errModerationNotConfigured
	}

	texts := append([]string(nil), args...)
	if moderateFile != "" {
		lines, err := readLines(moderateFile)
		if err != nil {
			return err
		}
		texts = append(texts, lines...)
	}
	if len(texts) == 0 {
		return errors.New("no text to moderate")
	}

	policy := moderationPolicy
	if moderateThreshold > 0 {
		policy.DefaultThreshold = moderateThreshold
	}

	verdicts := moderationService.ModerateBatch(cmd.Context(), texts, policy)
	summary := moderationService.Summarise(verdicts)

	if moderateAudit {
		for i, v := range verdicts {
			action := domain.ModerationActionAllowed
			if !v.Passed {
				action = domain.ModerationActionWarned
			}
			if err := moderationService.Audit(cmd.Context(), texts[i], v, action, map[string]string{"source": "cli"}); err != nil {
				return fmt.Errorf("failed to record verdict: %w", err)
			}
		}
	}

	if moderateJSON {
		return printJSON(cmd, struct {
			Verdicts []domain.ModerationVerdict `json:"verdicts"`
			Summary  domain.ModerationSummary   `json:"summary"`
		}{verdicts, summary})
	}

	for i, v := range verdicts {
		status := "passed"
		if !v.Passed {
			status = fmt.Sprintf("flagged %s (%.2f)", v.Category, v.Confidence)
		}
		cmd.Printf("  [%d] %s: %s\n", i+1, snippet(texts[i], 60), status)
		for _, w := range v.Warnings {
			cmd.Printf("      %s\n", w)
		}
	}
	cmd.Printf("\nChecked %d, flagged %d, pass rate %.1f%%\n",
		summary.TotalChecked, summary.TotalFlagged, summary.PassRate*100)
	for _, c := range domain.AllModerationCategories() {
		if n := summary.Categories[c]; n > 0 {
			cmd.Printf("  %s: %d\n", c, n)
		}
	}
	return nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return lines, nil
}

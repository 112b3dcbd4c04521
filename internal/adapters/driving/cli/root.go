// Package cli provides the learnly command line interface.
// It is a driving adapter: commands translate flags into calls on the
// driving ports and render the results.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driving"
	"github.com/learnly-labs/learnly-engine/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

var verbose bool

// Services wired in by main.
var (
	ingestService     driving.IngestService
	retrievalService  driving.RetrievalService
	answerService     driving.AnswerService
	quizService       driving.QuizService
	gradingService    driving.GradingService
	moderationService driving.ModerationService
	settingsService   driving.SettingsService
	moderationPolicy  = domain.DefaultModerationPolicy()
	retrievalTopK     = domain.DefaultTopK
)

// Services holds the driving ports the commands call.
type Services struct {
	Ingest     driving.IngestService
	Retrieval  driving.RetrievalService
	Answer     driving.AnswerService
	Quiz       driving.QuizService
	Grading    driving.GradingService
	Moderation driving.ModerationService
	Settings   driving.SettingsService
}

// SetServices injects the driving ports. Nil fields leave their commands
// reporting that the service is not configured.
func SetServices(s Services) {
	ingestService = s.Ingest
	retrievalService = s.Retrieval
	answerService = s.Answer
	quizService = s.Quiz
	gradingService = s.Grading
	moderationService = s.Moderation
	settingsService = s.Settings
}

// SetModerationPolicy sets the policy used by ask, moderate, chat and mcp.
func SetModerationPolicy(p domain.ModerationPolicy) {
	moderationPolicy = p
}

// SetRetrievalTopK sets the default number of passages for retrieve and chat.
func SetRetrievalTopK(k int) {
	if k > 0 {
		retrievalTopK = k
	}
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var rootCmd = &cobra.Command{
	Use:   "learnly",
	Short: "Adaptive retrieval and assessment for course material",
	Long: `Learnly indexes course documents, answers questions grounded in them,
generates practice quizzes, grades attempts and tracks each student's
competency to adapt quiz difficulty.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command. ctx reaches every command through
// cmd.Context(), so cancelling it stops in-flight work.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

var (
	errIngestNotConfigured     = errors.New("ingest service not configured")
	errRetrievalNotConfigured  = errors.New("retrieval service not configured")
	errAnswerNotConfigured     = errors.New("answer service not configured")
	errQuizNotConfigured       = errors.New("quiz service not configured")
	errGradingNotConfigured    = errors.New("grading service not configured")
	errModerationNotConfigured = errors.New("moderation service not configured")
	errSettingsNotConfigured   = errors.New("settings service not configured")
	errCourseRequired          = errors.New("--course is required")
)

func requireCourse(courseID int64) error {
	if courseID <= 0 {
		return errCourseRequired
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

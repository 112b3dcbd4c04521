package cli

import (
	"bytes"
	"context"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

// mockIngestService implements driving.IngestService for testing.
type mockIngestService struct {
	gotCtx   context.Context
	gotReq   domain.IngestRequest
	gotPath  string
	gotTitle string
	removed  string
	indices  []string
	index    *domain.DocumentIndex
	err      error
}

func (m *mockIngestService) Ingest(ctx context.Context, req domain.IngestRequest) (string, error) {
	m.gotCtx, m.gotReq = ctx, req
	if m.err != nil {
		return "", m.err
	}
	return domain.StoreIDFor(req.CourseID, req.Title), nil
}

func (m *mockIngestService) IngestFile(
	_ context.Context, courseID, _ int64, title, path string,
) (string, error) {
	m.gotPath, m.gotTitle = path, title
	if m.err != nil {
		return "", m.err
	}
	return domain.StoreIDFor(courseID, title), nil
}

func (m *mockIngestService) Remove(_ context.Context, storeID string) error {
	m.removed = storeID
	return m.err
}

func (m *mockIngestService) Indices(context.Context, int64) ([]string, error) {
	return m.indices, m.err
}

func (m *mockIngestService) Inspect(context.Context, string) (*domain.DocumentIndex, error) {
	if m.index == nil {
		return nil, domain.ErrNotFound
	}
	return m.index, nil
}

// mockRetrievalService implements driving.RetrievalService for testing.
type mockRetrievalService struct {
	results []domain.RetrievalResult
	gotOpts domain.RetrievalOptions
}

func (m *mockRetrievalService) Retrieve(
	_ context.Context, _ int64, _ string, opts domain.RetrievalOptions,
) []domain.RetrievalResult {
	m.gotOpts = opts
	return m.results
}

func (m *mockRetrievalService) RetrieveWithFallback(
	ctx context.Context, courseID int64, query string, opts domain.RetrievalOptions,
) []domain.RetrievalResult {
	return m.Retrieve(ctx, courseID, query, opts)
}

// mockAnswerService implements driving.AnswerService for testing.
type mockAnswerService struct {
	resp   *domain.AnswerResponse
	err    error
	gotReq domain.AnswerRequest
}

func (m *mockAnswerService) Answer(
	_ context.Context, req domain.AnswerRequest, _ domain.ModerationPolicy,
) (*domain.AnswerResponse, error) {
	m.gotReq = req
	return m.resp, m.err
}

// mockQuizService implements driving.QuizService for testing.
type mockQuizService struct {
	questions []domain.QuizQuestion
	err       error
	gotReq    domain.QuizRequest
}

func (m *mockQuizService) Generate(_ context.Context, req domain.QuizRequest) ([]domain.QuizQuestion, error) {
	m.gotReq = req
	return m.questions, m.err
}

// mockGradingService implements driving.GradingService for testing.
type mockGradingService struct {
	competency   int
	difficulty   domain.Difficulty
	recorded     bool
	gotQuestions []domain.GradableQuestion
	gotAnswers   []domain.SubmittedAnswer
}

func (m *mockGradingService) Grade(
	questions []domain.GradableQuestion, answers []domain.SubmittedAnswer,
) domain.GradedAttempt {
	m.gotQuestions, m.gotAnswers = questions, answers
	attempt := domain.GradedAttempt{}
	for i, q := range questions {
		r := domain.QuestionResult{QuestionID: q.ID, CorrectAnswer: q.Key.Correct()}
		if i < len(answers) && q.Key.Check(answers[i].StudentAnswer) {
			r.IsCorrect = true
			r.PointsEarned = q.Points
		}
		attempt.PerQuestion = append(attempt.PerQuestion, r)
		attempt.EarnedPoints += r.PointsEarned
		attempt.MaxPoints += q.Points
	}
	if attempt.MaxPoints > 0 {
		attempt.Percentage = attempt.EarnedPoints / attempt.MaxPoints * 100
	}
	return attempt
}

func (m *mockGradingService) RecordAttempt(context.Context, int64, int64, domain.GradedAttempt) (int, error) {
	m.recorded = true
	return m.competency, nil
}

func (m *mockGradingService) UpdateCompetency(context.Context, int64, float64) (int, error) {
	return m.competency, nil
}

func (m *mockGradingService) Competency(context.Context, int64) (int, error) {
	return m.competency, nil
}

func (m *mockGradingService) AdaptiveDifficulty(context.Context, int64) (domain.Difficulty, error) {
	return m.difficulty, nil
}

// mockModerationService flags any text containing "attack".
type mockModerationService struct {
	audited []domain.ModerationAction
	policy  domain.ModerationPolicy
}

func (m *mockModerationService) Moderate(
	_ context.Context, text string, policy domain.ModerationPolicy,
) domain.ModerationVerdict {
	m.policy = policy
	if strings.Contains(text, "attack") {
		return domain.ModerationVerdict{
			Category:   domain.CategoryViolence,
			Confidence: 0.9,
			Warnings:   []string{"Potential violence content detected"},
		}
	}
	return domain.ModerationVerdict{Passed: true, Category: domain.CategoryNone}
}

func (m *mockModerationService) ModerateBatch(
	ctx context.Context, texts []string, policy domain.ModerationPolicy,
) []domain.ModerationVerdict {
	out := make([]domain.ModerationVerdict, len(texts))
	for i, t := range texts {
		out[i] = m.Moderate(ctx, t, policy)
	}
	return out
}

func (m *mockModerationService) Summarise(verdicts []domain.ModerationVerdict) domain.ModerationSummary {
	s := domain.ModerationSummary{TotalChecked: len(verdicts), Categories: map[domain.ModerationCategory]int{}}
	for _, v := range verdicts {
		if !v.Passed {
			s.TotalFlagged++
			s.Categories[v.Category]++
		}
	}
	if s.TotalChecked > 0 {
		s.PassRate = float64(s.TotalChecked-s.TotalFlagged) / float64(s.TotalChecked)
	}
	return s
}

func (m *mockModerationService) Audit(
	_ context.Context, _ string, _ domain.ModerationVerdict, action domain.ModerationAction, _ map[string]string,
) error {
	m.audited = append(m.audited, action)
	return nil
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	category    domain.ModerationCategory
	threshold   float64
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding = domain.EmbeddingSettings{Provider: p, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.LLM = domain.LLMSettings{Provider: p, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetModerationThreshold(c domain.ModerationCategory, t float64) error {
	m.category, m.threshold = c, t
	return nil
}

func (m *mockSettingsService) Validate() error                 { return m.validateErr }
func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (m *mockSettingsService) ValidateEmbeddingConfig() error  { return nil }
func (m *mockSettingsService) ValidateLLMConfig() error        { return nil }

// testServices is the set of mocks installed by setupTestServices.
type testServices struct {
	ingest     *mockIngestService
	retrieval  *mockRetrievalService
	answer     *mockAnswerService
	quiz       *mockQuizService
	grading    *mockGradingService
	moderation *mockModerationService
	settings   *mockSettingsService
}

// setupTestServices installs fresh mocks and returns them with a cleanup func.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		ingest:     &mockIngestService{},
		retrieval:  &mockRetrievalService{},
		answer:     &mockAnswerService{resp: &domain.AnswerResponse{}},
		quiz:       &mockQuizService{},
		grading:    &mockGradingService{competency: domain.DefaultCompetency, difficulty: domain.DifficultyMedium},
		moderation: &mockModerationService{},
		settings:   &mockSettingsService{settings: domain.DefaultAppSettings()},
	}
	SetServices(Services{
		Ingest:     ts.ingest,
		Retrieval:  ts.retrieval,
		Answer:     ts.answer,
		Quiz:       ts.quiz,
		Grading:    ts.grading,
		Moderation: ts.moderation,
		Settings:   ts.settings,
	})
	return ts, func() { SetServices(Services{}) }
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(args ...string) (string, error) {
	resetFlags(rootCmd)
	defer resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default between runs.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

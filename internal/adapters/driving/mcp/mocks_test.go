package mcp

import (
	"context"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results  []domain.RetrievalResult
	gotQuery string
	gotOpts  domain.RetrievalOptions
}

func (m *mockRetrievalService) Retrieve(
	_ context.Context,
	_ int64,
	query string,
	opts domain.RetrievalOptions,
) []domain.RetrievalResult {
	m.gotQuery, m.gotOpts = query, opts
	return m.results
}

func (m *mockRetrievalService) RetrieveWithFallback(
	ctx context.Context,
	courseID int64,
	query string,
	opts domain.RetrievalOptions,
) []domain.RetrievalResult {
	return m.Retrieve(ctx, courseID, query, opts)
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	resp      *domain.AnswerResponse
	err       error
	gotReq    domain.AnswerRequest
	gotPolicy domain.ModerationPolicy
}

func (m *mockAnswerService) Answer(
	_ context.Context,
	req domain.AnswerRequest,
	policy domain.ModerationPolicy,
) (*domain.AnswerResponse, error) {
	m.gotReq, m.gotPolicy = req, policy
	return m.resp, m.err
}

// mockModerationService is a mock implementation of driving.ModerationService.
type mockModerationService struct {
	verdict domain.ModerationVerdict
}

func (m *mockModerationService) Moderate(
	_ context.Context,
	_ string,
	_ domain.ModerationPolicy,
) domain.ModerationVerdict {
	return m.verdict
}

func (m *mockModerationService) ModerateBatch(
	_ context.Context,
	texts []string,
	_ domain.ModerationPolicy,
) []domain.ModerationVerdict {
	out := make([]domain.ModerationVerdict, len(texts))
	for i := range out {
		out[i] = m.verdict
	}
	return out
}

func (m *mockModerationService) Summarise(v []domain.ModerationVerdict) domain.ModerationSummary {
	return domain.ModerationSummary{TotalChecked: len(v)}
}

func (m *mockModerationService) Audit(
	_ context.Context,
	_ string,
	_ domain.ModerationVerdict,
	_ domain.ModerationAction,
	_ map[string]string,
) error {
	return nil
}

// mockQuizService is a mock implementation of driving.QuizService.
type mockQuizService struct {
	questions []domain.QuizQuestion
	err       error
	gotReq    domain.QuizRequest
}

func (m *mockQuizService) Generate(_ context.Context, req domain.QuizRequest) ([]domain.QuizQuestion, error) {
	m.gotReq = req
	return m.questions, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	indices []string
	index   *domain.DocumentIndex
	err     error
}

func (m *mockIngestService) Ingest(_ context.Context, _ domain.IngestRequest) (string, error) {
	return "", m.err
}

func (m *mockIngestService) IngestFile(_ context.Context, _, _ int64, _, _ string) (string, error) {
	return "", m.err
}

func (m *mockIngestService) Remove(_ context.Context, _ string) error {
	return m.err
}

func (m *mockIngestService) Indices(_ context.Context, _ int64) ([]string, error) {
	return m.indices, m.err
}

func (m *mockIngestService) Inspect(_ context.Context, _ string) (*domain.DocumentIndex, error) {
	return m.index, m.err
}

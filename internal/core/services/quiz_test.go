package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driven"
)

func TestQuizService_Generate(t *testing.T) {
	llm := &mockLLMService{response: "```json\n" + validQuiz + "\n```"}
	retrieval := &mockRetrievalService{results: twoPassages()}
	svc := NewQuizService(retrieval, llm, 0)

	questions, err := svc.Generate(context.Background(), domain.QuizRequest{
		CourseID:     1,
		Topic:        "photosynthesis",
		Difficulty:   domain.DifficultyHard,
		NumQuestions: 3,
	})

	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "Glucose", questions[0].CorrectAnswer)

	require.Len(t, retrieval.calls, 1)
	assert.Equal(t, DefaultQuizTopK, retrieval.calls[0].K)

	assert.True(t, strings.HasPrefix(llm.lastPrompt, "You are an expert educator. Generate EXACTLY 3 quiz questions"))
	assert.Contains(t, llm.lastPrompt, "- Difficulty level: hard")
	assert.Contains(t, llm.lastPrompt, "- Topic focus: photosynthesis")
	assert.Contains(t, llm.lastPrompt, `"difficulty": "hard"`)
	assert.Contains(t, llm.lastPrompt, "Photosynthesis converts light into chemical energy.\n\nxxx")
	assert.True(t, strings.HasSuffix(llm.lastPrompt, "Generate 3 questions now as JSON only:"))
	assert.True(t, llm.lastOpts.JSONMode)
	assert.InDelta(t, 0.7, llm.lastOpts.Temperature, 1e-9)
}

func TestQuizService_Generate_Defaults(t *testing.T) {
	llm := &mockLLMService{response: validQuiz}
	svc := NewQuizService(&mockRetrievalService{results: twoPassages()}, llm, 4)

	_, err := svc.Generate(context.Background(), domain.QuizRequest{CourseID: 1})

	require.NoError(t, err)
	assert.Contains(t, llm.lastPrompt, "Generate EXACTLY 5 quiz questions")
	assert.Contains(t, llm.lastPrompt, "- Difficulty level: medium")
	assert.Contains(t, llm.lastPrompt, "- Topic focus: "+domain.QuizDefaultFocus)
}

// queryRecorder captures the retrieval query text.
type queryRecorder struct {
	mockRetrievalService
	queries []string
}

func (q *queryRecorder) RetrieveWithFallback(ctx context.Context, courseID int64, query string, opts domain.RetrievalOptions) []domain.RetrievalResult {
	q.queries = append(q.queries, query)
	return q.mockRetrievalService.RetrieveWithFallback(ctx, courseID, query, opts)
}

func TestQuizService_Generate_ContextQuery(t *testing.T) {
	rec := &queryRecorder{mockRetrievalService: mockRetrievalService{results: twoPassages()}}
	svc := NewQuizService(rec, &mockLLMService{response: validQuiz}, 0)
	ctx := context.Background()

	_, err := svc.Generate(ctx, domain.QuizRequest{CourseID: 1, Topic: "cells"})
	require.NoError(t, err)
	_, err = svc.Generate(ctx, domain.QuizRequest{CourseID: 1, Topic: "  "})
	require.NoError(t, err)

	assert.Equal(t, []string{"Provide information about cells", domain.QuizSummaryQuery}, rec.queries)
}

func TestQuizService_Generate_FilterFallback(t *testing.T) {
	retrieval := &mockRetrievalService{results: nil, unfiltered: twoPassages()}
	svc := NewQuizService(retrieval, &mockLLMService{response: validQuiz}, 0)

	questions, err := svc.Generate(context.Background(), domain.QuizRequest{
		CourseID:           1,
		AllowedDocumentIDs: []int64{42},
	})

	require.NoError(t, err)
	assert.Len(t, questions, 1)
	require.Len(t, retrieval.calls, 2)
	assert.True(t, retrieval.calls[0].Filtered())
	assert.False(t, retrieval.calls[1].Filtered())
}

func TestQuizService_Generate_NoMaterial(t *testing.T) {
	llm := &mockLLMService{response: validQuiz}
	svc := NewQuizService(&mockRetrievalService{}, llm, 0)

	_, err := svc.Generate(context.Background(), domain.QuizRequest{CourseID: 1, AllowedDocumentIDs: []int64{1}})

	assert.ErrorIs(t, err, domain.ErrNoMaterial)
	assert.Zero(t, llm.generateCalls)
}

func TestQuizService_Generate_ProviderUnavailable(t *testing.T) {
	ctx := context.Background()
	req := domain.QuizRequest{CourseID: 1}

	for name, llm := range map[string]driven.LLMService{
		"error": &mockLLMService{generateErr: errors.New("connection refused")},
		"empty": &mockLLMService{response: ""},
		"nil":   nil,
	} {
		t.Run(name, func(t *testing.T) {
			svc := NewQuizService(&mockRetrievalService{results: twoPassages()}, llm, 0)
			_, err := svc.Generate(ctx, req)
			assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
		})
	}
}

func TestQuizService_Generate_Malformed(t *testing.T) {
	svc := NewQuizService(&mockRetrievalService{results: twoPassages()},
		&mockLLMService{response: "Sorry, here are some ideas: photosynthesis, cells."}, 0)

	questions, err := svc.Generate(context.Background(), domain.QuizRequest{CourseID: 1})

	assert.Nil(t, questions)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

package services

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

const fence = "```"

// RecoverJSON strips the wrapping a text-generation provider tends to put
// around a JSON object. Each step only applies when its marker is present.
func RecoverJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if _, after, ok := strings.Cut(s, fence+"json"); ok {
		s = after
	} else if _, after, ok := strings.Cut(s, fence); ok {
		s = after
	}
	if before, _, ok := strings.Cut(s, fence); ok {
		s = before
	}
	s = strings.TrimSpace(s)

	if !strings.HasPrefix(s, "{") {
		if i := strings.Index(s, "{"); i >= 0 {
			s = s[i:]
		}
	}
	if !strings.HasSuffix(s, "}") {
		if i := strings.LastIndex(s, "}"); i >= 0 {
			s = s[:i+1]
		}
	}
	return s
}

// generatedQuestion mirrors the JSON schema requested from the provider.
// correct_answer is kept raw so booleans and numbers survive.
type generatedQuestion struct {
	QuestionText  string          `json:"question_text"`
	QuestionType  string          `json:"question_type"`
	Options       []string        `json:"options"`
	CorrectAnswer json.RawMessage `json:"correct_answer"`
	Explanation   string          `json:"explanation"`
	Difficulty    string          `json:"difficulty"`
	Points        *float64        `json:"points"`
}

// ParseQuiz recovers and validates a quiz response.
// Missing question types default to multiple choice, missing difficulties to
// fallback and missing points to domain.DefaultQuestionPoints.
func ParseQuiz(raw string, fallback domain.Difficulty) ([]domain.QuizQuestion, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &domain.MalformedResponseError{Detail: "empty response"}
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(RecoverJSON(raw)), &doc); err != nil {
		return nil, &domain.MalformedResponseError{Detail: "invalid JSON: " + err.Error()}
	}
	field, ok := doc["questions"]
	if !ok {
		return nil, &domain.MalformedResponseError{Detail: "missing questions field"}
	}

	var generated []generatedQuestion
	if err := json.Unmarshal(field, &generated); err != nil {
		return nil, &domain.MalformedResponseError{Detail: "questions is not a list of questions: " + err.Error()}
	}
	if len(generated) == 0 {
		return nil, &domain.MalformedResponseError{Detail: "no questions generated"}
	}

	questions := make([]domain.QuizQuestion, 0, len(generated))
	for _, g := range generated {
		q := domain.QuizQuestion{
			QuestionText:  g.QuestionText,
			QuestionType:  domain.QuestionType(strings.TrimSpace(g.QuestionType)),
			Options:       g.Options,
			CorrectAnswer: rawAnswer(g.CorrectAnswer),
			Explanation:   g.Explanation,
			Difficulty:    domain.Difficulty(strings.ToLower(strings.TrimSpace(g.Difficulty))),
			Points:        domain.DefaultQuestionPoints,
		}
		if g.Points != nil {
			q.Points = max(int(math.Round(*g.Points)), 0)
		}
		if q.QuestionType == "" {
			q.QuestionType = domain.QuestionMultipleChoice
		}
		if !q.Difficulty.IsValid() {
			q.Difficulty = fallback
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// rawAnswer renders a JSON scalar as text.
func rawAnswer(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

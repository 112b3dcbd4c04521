package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

const validQuiz = `{
  "questions": [
    {
      "question_text": "What does photosynthesis produce?",
      "question_type": "multiple_choice",
      "options": ["Glucose", "Salt", "Iron", "Sand"],
      "correct_answer": "Glucose",
      "explanation": "Plants make sugar from light.",
      "difficulty": "easy"
    }
  ]
}`

func TestRecoverJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"whitespace", "  \n{\"a\":1}\n ", `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around fence", "Here you go:\n```json\n{\"a\":1}\n```\nEnjoy!", `{"a":1}`},
		{"leading prose", `Sure! {"a":1}`, `{"a":1}`},
		{"trailing prose", `{"a":1} Hope this helps.`, `{"a":1}`},
		{"both", `Result: {"a":{"b":2}} done`, `{"a":{"b":2}}`},
		{"no braces", "not json", "not json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RecoverJSON(tt.raw))
		})
	}
}

func TestParseQuiz_FencedMatchesUnwrapped(t *testing.T) {
	plain, err := ParseQuiz(validQuiz, domain.DifficultyMedium)
	require.NoError(t, err)

	fenced, err := ParseQuiz("```json\n"+validQuiz+"\n```", domain.DifficultyMedium)
	require.NoError(t, err)

	trailing, err := ParseQuiz(validQuiz+"\n\nLet me know if you need more questions!", domain.DifficultyMedium)
	require.NoError(t, err)

	assert.Equal(t, plain, fenced)
	assert.Equal(t, plain, trailing)

	require.Len(t, plain, 1)
	q := plain[0]
	assert.Equal(t, "What does photosynthesis produce?", q.QuestionText)
	assert.Equal(t, domain.QuestionMultipleChoice, q.QuestionType)
	assert.Equal(t, []string{"Glucose", "Salt", "Iron", "Sand"}, q.Options)
	assert.Equal(t, "Glucose", q.CorrectAnswer)
	assert.Equal(t, domain.DifficultyEasy, q.Difficulty)
	assert.Equal(t, domain.DefaultQuestionPoints, q.Points)
}

func TestParseQuiz_Defaults(t *testing.T) {
	raw := `{"questions":[
		{"question_text":"Water boils at 100C at sea level.","correct_answer":true,"points":2},
		{"question_text":"Name the powerhouse of the cell.","question_type":"short_answer","correct_answer":"mitochondria","difficulty":"HARD"},
		{"question_text":"Warm-up: is the sky blue?","question_type":"true_false","correct_answer":"true","points":0}
	]}`

	questions, err := ParseQuiz(raw, domain.DifficultyMedium)

	require.NoError(t, err)
	require.Len(t, questions, 3)
	assert.Equal(t, domain.QuestionMultipleChoice, questions[0].QuestionType)
	assert.Equal(t, "true", questions[0].CorrectAnswer)
	assert.Equal(t, domain.DifficultyMedium, questions[0].Difficulty)
	assert.Equal(t, 2, questions[0].Points)
	assert.Empty(t, questions[0].Options)
	assert.Equal(t, domain.QuestionShortAnswer, questions[1].QuestionType)
	assert.Equal(t, domain.DifficultyHard, questions[1].Difficulty)
	assert.Equal(t, domain.DefaultQuestionPoints, questions[1].Points)
	assert.Zero(t, questions[2].Points, "explicit zero points are kept")
}

func TestParseQuiz_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		detail string
	}{
		{"empty", "   ", "empty response"},
		{"not json", "I could not generate a quiz today.", "invalid JSON"},
		{"truncated", `{"questions": [{"question_text": "Wh`, "invalid JSON"},
		{"missing field", `{"quiz": []}`, "missing questions field"},
		{"not a list", `{"questions": "none"}`, "not a list"},
		{"empty list", `{"questions": []}`, "no questions generated"},
		{"list of strings", `{"questions": ["What is a cell?"]}`, "not a list"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questions, err := ParseQuiz(tt.raw, domain.DifficultyMedium)

			assert.Nil(t, questions)
			require.ErrorIs(t, err, domain.ErrMalformedResponse)
			var malformed *domain.MalformedResponseError
			require.ErrorAs(t, err, &malformed)
			assert.Contains(t, malformed.Detail, tt.detail)
		})
	}
}

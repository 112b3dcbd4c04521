package domain

import (
	"fmt"
	"strings"
)

// AnswerKey checks a student answer against the expected one.
// Each question type has its own comparison rule.
type AnswerKey interface {
	// Type returns the question type the key belongs to.
	Type() QuestionType

	// Correct returns the expected answer.
	Correct() string

	// Check reports whether the student answer is correct.
	Check(studentAnswer string) bool
}

// MultipleChoiceKey matches the chosen option exactly, ignoring case.
type MultipleChoiceKey struct{ Answer string }

// TrueFalseKey matches true/false answers exactly, ignoring case.
type TrueFalseKey struct{ Answer string }

// ShortAnswerKey accepts answers where either side contains the other, ignoring case.
// A blank answer is never correct.
type ShortAnswerKey struct{ Answer string }

// ExactKey is used for unrecognised question types.
type ExactKey struct {
	Kind   QuestionType
	Answer string
}

func (k MultipleChoiceKey) Type() QuestionType { return QuestionMultipleChoice }
func (k MultipleChoiceKey) Correct() string    { return k.Answer }
func (k MultipleChoiceKey) Check(s string) bool {
	return normaliseAnswer(s) == normaliseAnswer(k.Answer)
}

func (k TrueFalseKey) Type() QuestionType { return QuestionTrueFalse }
func (k TrueFalseKey) Correct() string    { return k.Answer }
func (k TrueFalseKey) Check(s string) bool {
	return normaliseAnswer(s) == normaliseAnswer(k.Answer)
}

func (k ShortAnswerKey) Type() QuestionType { return QuestionShortAnswer }
func (k ShortAnswerKey) Correct() string    { return k.Answer }
func (k ShortAnswerKey) Check(s string) bool {
	student := normaliseAnswer(s)
	correct := normaliseAnswer(k.Answer)
	if student == "" {
		return false
	}
	return strings.Contains(student, correct) || strings.Contains(correct, student)
}

func (k ExactKey) Type() QuestionType { return k.Kind }
func (k ExactKey) Correct() string    { return k.Answer }
func (k ExactKey) Check(s string) bool {
	return normaliseAnswer(s) == normaliseAnswer(k.Answer)
}

// NewAnswerKey builds the key for a question type.
func NewAnswerKey(t QuestionType, correct string) AnswerKey {
	switch t {
	case QuestionMultipleChoice:
		return MultipleChoiceKey{Answer: correct}
	case QuestionTrueFalse:
		return TrueFalseKey{Answer: correct}
	case QuestionShortAnswer:
		return ShortAnswerKey{Answer: correct}
	default:
		return ExactKey{Kind: t, Answer: correct}
	}
}

func normaliseAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// GradableQuestion is a persisted question ready to be graded.
type GradableQuestion struct {
	ID          int64
	Key         AnswerKey
	Points      float64
	Explanation string
}

// NewGradableQuestion builds a question from stored fields.
// A zero point value is kept; negative values count as zero.
func NewGradableQuestion(id int64, t QuestionType, correct string, points float64) GradableQuestion {
	points = max(points, 0)
	return GradableQuestion{ID: id, Key: NewAnswerKey(t, correct), Points: points}
}

// SubmittedAnswer is a student's answer to one question.
type SubmittedAnswer struct {
	QuestionID    int64  `json:"question_id" yaml:"question_id"`
	StudentAnswer string `json:"student_answer" yaml:"student_answer"`
}

// QuestionResult is the graded outcome of one question.
type QuestionResult struct {
	QuestionID    int64   `json:"question_id"`
	StudentAnswer string  `json:"student_answer"`
	CorrectAnswer string  `json:"correct_answer"`
	IsCorrect     bool    `json:"is_correct"`
	PointsEarned  float64 `json:"points_earned"`
	Explanation   string  `json:"explanation,omitempty"`
}

// GradedAttempt is computed once per submission and never modified.
type GradedAttempt struct {
	PerQuestion  []QuestionResult `json:"per_question"`
	EarnedPoints float64          `json:"earned_points"`
	MaxPoints    float64          `json:"max_points"`
	Percentage   float64          `json:"percentage"`
}

// String returns a short human-readable summary.
func (a GradedAttempt) String() string {
	return fmt.Sprintf("%.2f/%.2f (%.1f%%)", a.EarnedPoints, a.MaxPoints, a.Percentage)
}

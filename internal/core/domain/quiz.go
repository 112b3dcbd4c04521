package domain

import "strings"

// QuestionType identifies how a question is answered and checked.
type QuestionType string

// Question types.
const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionShortAnswer    QuestionType = "short_answer"
)

// IsValid returns true if the question type is recognised.
func (t QuestionType) IsValid() bool {
	switch t {
	case QuestionMultipleChoice, QuestionTrueFalse, QuestionShortAnswer:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t QuestionType) String() string {
	return string(t)
}

// Difficulty is the requested or assigned difficulty of a quiz.
type Difficulty string

// Difficulty levels.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// IsValid returns true if the difficulty is recognised.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (d Difficulty) String() string {
	return string(d)
}

// ParseDifficulty normalises user input, defaulting to medium.
func ParseDifficulty(s string) Difficulty {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.IsValid() {
		return DifficultyMedium
	}
	return d
}

// DefaultQuestionPoints is the point value of a question that does not specify one.
const DefaultQuestionPoints = 1

// QuizQuestion is a generated question. It is written once and never modified.
type QuizQuestion struct {
	QuestionText  string       `json:"question_text" yaml:"question_text"`
	QuestionType  QuestionType `json:"question_type" yaml:"question_type"`
	Options       []string     `json:"options" yaml:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer" yaml:"correct_answer"`
	Explanation   string       `json:"explanation" yaml:"explanation,omitempty"`
	Difficulty    Difficulty   `json:"difficulty" yaml:"difficulty"`
	Points        int          `json:"points" yaml:"points"`
}

// QuizRequest describes a quiz to generate.
type QuizRequest struct {
	CourseID           int64
	Topic              string
	Difficulty         Difficulty
	NumQuestions       int
	AllowedDocumentIDs []int64
}

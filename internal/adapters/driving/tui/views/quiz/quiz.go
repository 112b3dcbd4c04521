// Package quiz provides the practice quiz view for the TUI.
package quiz

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/learnly-labs/learnly-engine/internal/adapters/driving/tui/components/input"
	"github.com/learnly-labs/learnly-engine/internal/adapters/driving/tui/components/status"
	"github.com/learnly-labs/learnly-engine/internal/adapters/driving/tui/keymap"
	"github.com/learnly-labs/learnly-engine/internal/adapters/driving/tui/messages"
	"github.com/learnly-labs/learnly-engine/internal/adapters/driving/tui/styles"
	"github.com/learnly-labs/learnly-engine/internal/core/domain"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driving"
)

// DefaultQuestions is the quiz length when none is configured.
const DefaultQuestions = 5

// Stage is the step of the quiz flow.
type Stage int

const (
	// StageTopic asks for the quiz topic.
	StageTopic Stage = iota
	// StageGenerating waits for questions.
	StageGenerating
	// StageAnswering steps through the questions.
	StageAnswering
	// StageGrading waits for the graded attempt.
	StageGrading
	// StageResults shows the graded attempt.
	StageResults
)

// View runs a quiz from topic entry to graded results.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.PromptInput
	statusbar *status.Bar

	quizzes      driving.QuizService
	grading      driving.GradingService
	courseID     int64
	studentID    int64
	numQuestions int
	ctx          context.Context

	stage      Stage
	quizID     int64
	difficulty domain.Difficulty
	questions  []domain.QuizQuestion
	answers    []domain.SubmittedAnswer
	current    int
	attempt    *domain.GradedAttempt
	competency int
	err        error

	width  int
	height int
	ready  bool
}

// NewView creates a quiz view. A studentID of zero runs unrecorded practice.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	quizzes driving.QuizService,
	grading driving.GradingService,
	courseID, studentID int64,
	numQuestions int,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	if numQuestions <= 0 {
		numQuestions = DefaultQuestions
	}

	bar := status.NewBar(s, km)
	bar.SetCourse(courseID)
	bar.SetHints(km.ShortHelp())

	return &View{
		styles:       s,
		keymap:       km,
		input:        input.NewPromptInput(s, "Topic: ", "e.g. photosynthesis"),
		statusbar:    bar,
		quizzes:      quizzes,
		grading:      grading,
		courseID:     courseID,
		studentID:    studentID,
		numQuestions: numQuestions,
		ctx:          context.Background(),
		competency:   -1,
		width:        80,
		height:       24,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the quiz view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.QuizGenerated:
		return v, v.handleGenerated(msg)

	case messages.QuizGraded:
		v.handleGraded(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.fail(msg.Err, StageTopic)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()
	if keymap.Matches(keyStr, v.keymap.Back) {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	switch v.stage {
	case StageGenerating, StageGrading:
		return v, nil

	case StageResults:
		if keymap.Matches(keyStr, v.keymap.NewQuery) {
			v.Reset()
			return v, v.input.Focus()
		}
		return v, nil

	case StageTopic, StageAnswering:
		if keymap.Matches(keyStr, v.keymap.Send) {
			return v, v.submit()
		}
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit advances the flow with the current input.
func (v *View) submit() tea.Cmd {
	value := strings.TrimSpace(v.input.Value())

	if v.stage == StageTopic {
		if value == "" {
			return nil
		}
		v.input.Reset()
		v.err = nil
		v.stage = StageGenerating
		v.statusbar.SetState(status.StateThinking)
		return v.generate(value)
	}

	q := v.questions[v.current]
	v.answers = append(v.answers, domain.SubmittedAnswer{
		QuestionID:    int64(v.current + 1),
		StudentAnswer: resolveOption(q, value),
	})
	v.input.Reset()
	v.current++
	if v.current < len(v.questions) {
		return nil
	}

	v.stage = StageGrading
	v.statusbar.SetState(status.StateThinking)
	return v.grade()
}

// resolveOption maps an option number to its text for multiple choice questions.
func resolveOption(q domain.QuizQuestion, answer string) string {
	if q.QuestionType != domain.QuestionMultipleChoice {
		return answer
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(q.Options) {
		return answer
	}
	return q.Options[n-1]
}

func (v *View) generate(topic string) tea.Cmd {
	quizzes, grading, ctx := v.quizzes, v.grading, v.ctx
	req := domain.QuizRequest{
		CourseID:     v.courseID,
		Topic:        topic,
		Difficulty:   domain.DifficultyMedium,
		NumQuestions: v.numQuestions,
	}
	studentID := v.studentID

	return func() tea.Msg {
		if quizzes == nil {
			return messages.ErrorOccurred{Err: ErrNoQuizService}
		}
		if grading != nil && studentID > 0 {
			if d, err := grading.AdaptiveDifficulty(ctx, studentID); err == nil {
				req.Difficulty = d
			}
		}
		questions, err := quizzes.Generate(ctx, req)
		return messages.QuizGenerated{Difficulty: req.Difficulty, Questions: questions, Err: err}
	}
}

func (v *View) handleGenerated(msg messages.QuizGenerated) tea.Cmd {
	if msg.Err != nil {
		v.fail(msg.Err, StageTopic)
		return nil
	}
	if len(msg.Questions) == 0 {
		v.fail(ErrNoQuestions, StageTopic)
		return nil
	}

	v.quizID = int64(uuid.New().ID())
	v.difficulty = msg.Difficulty
	v.questions = msg.Questions
	v.answers = make([]domain.SubmittedAnswer, 0, len(msg.Questions))
	v.current = 0
	v.stage = StageAnswering
	v.statusbar.Clear()
	v.statusbar.SetMessage(fmt.Sprintf("%d questions, %s", len(msg.Questions), msg.Difficulty))
	v.input.SetPlaceholder("Your answer")
	return v.input.Focus()
}

func (v *View) grade() tea.Cmd {
	grading, ctx := v.grading, v.ctx
	studentID, quizID := v.studentID, v.quizID
	questions := make([]domain.GradableQuestion, len(v.questions))
	for i, q := range v.questions {
		questions[i] = domain.NewGradableQuestion(int64(i+1), q.QuestionType, q.CorrectAnswer, float64(q.Points))
		questions[i].Explanation = q.Explanation
	}
	answers := append([]domain.SubmittedAnswer(nil), v.answers...)

	return func() tea.Msg {
		if grading == nil {
			return messages.QuizGraded{Competency: -1, Err: ErrNoGradingService}
		}
		attempt := grading.Grade(questions, answers)
		if studentID <= 0 {
			return messages.QuizGraded{Attempt: attempt, Competency: -1}
		}
		score, err := grading.RecordAttempt(ctx, studentID, quizID, attempt)
		if err != nil {
			return messages.QuizGraded{Attempt: attempt, Competency: -1, Err: err}
		}
		return messages.QuizGraded{Attempt: attempt, Competency: score}
	}
}

func (v *View) handleGraded(msg messages.QuizGraded) {
	if msg.Err != nil && len(msg.Attempt.PerQuestion) == 0 {
		v.fail(msg.Err, StageTopic)
		return
	}

	attempt := msg.Attempt
	v.attempt = &attempt
	v.competency = msg.Competency
	v.stage = StageResults
	v.input.Blur()
	v.statusbar.Clear()
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetCompetency(msg.Competency)
	v.statusbar.SetHints(v.keymap.ResultsHelp())

	// A failed save still shows the grade.
	v.err = msg.Err
	if msg.Err != nil {
		v.statusbar.SetMessage(msg.Err.Error())
	}
}

func (v *View) fail(err error, stage Stage) {
	v.err = err
	v.stage = stage
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the quiz view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{v.styles.Title.Render("Practice quiz"), ""}
	switch v.stage {
	case StageTopic:
		sections = append(sections, v.styles.Muted.Render("Choose a topic from the course."), "", v.input.View())
	case StageGenerating:
		sections = append(sections, v.styles.Muted.Render("Writing questions..."))
	case StageAnswering:
		sections = append(sections, v.renderQuestion(), "", v.input.View())
	case StageGrading:
		sections = append(sections, v.styles.Muted.Render("Grading..."))
	case StageResults:
		sections = append(sections, v.renderResults())
	}

	if v.err != nil {
		sections = append(sections, "", v.styles.Error.Render("Error: "+v.err.Error()))
	}
	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderQuestion() string {
	q := v.questions[v.current]
	wrap := lipgloss.NewStyle().Width(max(v.width-4, 20))

	lines := []string{
		v.styles.Subtitle.Render(fmt.Sprintf("Question %d of %d", v.current+1, len(v.questions))),
		wrap.Render(q.QuestionText),
	}
	switch q.QuestionType {
	case domain.QuestionMultipleChoice:
		for i, opt := range q.Options {
			lines = append(lines, v.styles.Normal.Render(fmt.Sprintf("  %d. %s", i+1, opt)))
		}
	case domain.QuestionTrueFalse:
		lines = append(lines, v.styles.Muted.Render("  true / false"))
	case domain.QuestionShortAnswer:
	}
	return strings.Join(lines, "\n")
}

func (v *View) renderResults() string {
	if v.attempt == nil {
		return ""
	}

	lines := []string{v.styles.Subtitle.Render("Score " + v.attempt.String())}
	if v.competency >= 0 {
		lines = append(lines, v.styles.Normal.Render(fmt.Sprintf("Competency %d/100", v.competency)))
	}
	lines = append(lines, "")

	for i, r := range v.attempt.PerQuestion {
		mark := v.styles.Success.Render("correct")
		if !r.IsCorrect {
			mark = v.styles.Error.Render("wrong, expected " + r.CorrectAnswer)
		}
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, mark))
		if r.Explanation != "" && !r.IsCorrect {
			lines = append(lines, v.styles.Muted.Render("   "+r.Explanation))
		}
	}
	return strings.Join(lines, "\n")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
}

// Stage returns the current step of the flow.
func (v *View) Stage() Stage {
	return v.stage
}

// Questions returns the generated questions.
func (v *View) Questions() []domain.QuizQuestion {
	return v.questions
}

// Answers returns the answers given so far.
func (v *View) Answers() []domain.SubmittedAnswer {
	return v.answers
}

// Attempt returns the graded attempt, or nil before grading.
func (v *View) Attempt() *domain.GradedAttempt {
	return v.attempt
}

// Competency returns the recorded competency, or -1.
func (v *View) Competency() int {
	return v.competency
}

// Difficulty returns the difficulty of the current quiz.
func (v *View) Difficulty() domain.Difficulty {
	return v.difficulty
}

// SetInput sets the input text.
func (v *View) SetInput(value string) {
	v.input.SetValue(value)
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset returns to topic entry.
func (v *View) Reset() {
	v.stage = StageTopic
	v.questions = nil
	v.answers = nil
	v.current = 0
	v.attempt = nil
	v.err = nil
	v.input.Reset()
	v.input.SetPlaceholder("e.g. photosynthesis")
	v.input.Focus()
	v.statusbar.Clear()
	v.statusbar.SetHints(v.keymap.ShortHelp())
}

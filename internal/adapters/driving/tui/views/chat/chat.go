// Package chat provides the course conversation view for the TUI.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/learnly-labs/learnly-engine/internal/adapters/driving/tui/components/input"
	"github.com/learnly-labs/learnly-engine/internal/adapters/driving/tui/components/status"
	"github.com/learnly-labs/learnly-engine/internal/adapters/driving/tui/keymap"
	"github.com/learnly-labs/learnly-engine/internal/adapters/driving/tui/messages"
	"github.com/learnly-labs/learnly-engine/internal/adapters/driving/tui/styles"
	"github.com/learnly-labs/learnly-engine/internal/core/domain"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driving"
)

// reservedLines is the height taken by header, input and status bar.
const reservedLines = 8

// View is a scrolling transcript with a prompt input.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.PromptInput
	transcript viewport.Model
	statusbar  *status.Bar

	answers  driving.AnswerService
	policy   domain.ModerationPolicy
	courseID int64
	ctx      context.Context

	history     []domain.Turn
	sources     []domain.RetrievalResult
	warnings    []string
	showSources bool
	pending     bool
	err         error

	width  int
	height int
	ready  bool
}

// NewView creates a chat view for a course.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	answers driving.AnswerService,
	policy domain.ModerationPolicy,
	courseID int64,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetCourse(courseID)
	bar.SetHints(km.ChatHelp())

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewPromptInput(s, "Ask: ", "Ask about the course..."),
		transcript: viewport.New(80, 24-reservedLines),
		statusbar:  bar,
		answers:    answers,
		policy:     policy,
		courseID:   courseID,
		ctx:        context.Background(),
		width:      80,
		height:     24,
	}
}

// WithContext sets the context used for answer calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerCompleted:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.pending = false
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()
	switch {
	case keymap.Matches(keyStr, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case keymap.Matches(keyStr, v.keymap.ToggleSources):
		v.showSources = !v.showSources
		v.refresh()
		return v, nil

	case keymap.Matches(keyStr, v.keymap.Up):
		v.transcript.SetYOffset(v.transcript.YOffset - 1)
		return v, nil

	case keymap.Matches(keyStr, v.keymap.Down):
		v.transcript.SetYOffset(v.transcript.YOffset + 1)
		return v, nil

	case keymap.Matches(keyStr, v.keymap.Send):
		query := strings.TrimSpace(v.input.Value())
		if query == "" || v.pending {
			return v, nil
		}
		return v, v.submit(query)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit records the learner turn and starts the answer call.
func (v *View) submit(query string) tea.Cmd {
	prior := append([]domain.Turn(nil), v.history...)
	v.history = append(v.history, domain.Turn{Role: domain.RoleUser, Content: query})
	v.input.Reset()
	v.pending = true
	v.err = nil
	v.statusbar.SetState(status.StateThinking)
	v.refresh()

	req := domain.AnswerRequest{CourseID: v.courseID, Query: query, History: prior}
	answers, policy, ctx := v.answers, v.policy, v.ctx
	return func() tea.Msg {
		if answers == nil {
			return messages.ErrorOccurred{Err: ErrNoAnswerService}
		}
		resp, err := answers.Answer(ctx, req, policy)
		return messages.AnswerCompleted{Query: query, Response: resp, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerCompleted) {
	v.pending = false
	if msg.Err != nil || msg.Response == nil {
		err := msg.Err
		if err == nil {
			err = ErrEmptyAnswer
		}
		v.err = err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(err.Error())
		v.refresh()
		return
	}

	v.history = append(v.history, domain.Turn{Role: domain.RoleAssistant, Content: msg.Response.Answer})
	v.sources = msg.Response.Sources
	v.warnings = msg.Response.ModerationWarnings
	v.statusbar.Clear()
	if len(v.sources) > 0 {
		v.statusbar.SetMessage(fmt.Sprintf("%d sources", len(v.sources)))
	}
	v.refresh()
}

// refresh re-renders the transcript and scrolls to the newest turn.
func (v *View) refresh() {
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

func (v *View) renderTranscript() string {
	wrap := lipgloss.NewStyle().Width(max(v.width-4, 20))
	blocks := make([]string, 0, len(v.history)+3)

	if len(v.history) == 0 {
		blocks = append(blocks, v.styles.Muted.Render("Ask a question about the course material."))
	}
	for _, turn := range v.history {
		label := v.styles.Learner.Render("You")
		if turn.Role == domain.RoleAssistant {
			label = v.styles.Assistant.Render("Tutor")
		}
		blocks = append(blocks, label+"\n"+wrap.Render(turn.Content))
	}
	if v.pending {
		blocks = append(blocks, v.styles.Muted.Render("Tutor is thinking..."))
	}
	for _, w := range v.warnings {
		blocks = append(blocks, v.styles.Warning.Render("! "+w))
	}
	if v.showSources && len(v.sources) > 0 {
		lines := make([]string, 0, len(v.sources)+1)
		lines = append(lines, v.styles.Subtitle.Render("Sources"))
		for i, src := range v.sources {
			lines = append(lines, v.styles.Source.Render(
				fmt.Sprintf("[%d] %s (%.2f)", i+1, src.Source.DocumentTitle, src.Score)))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("Learnly Chat"),
		"",
		v.transcript.View(),
		"",
		v.input.View(),
	}
	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	}
	sections = append(sections, v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.transcript.Width = width
	v.transcript.Height = max(height-reservedLines, 3)
	v.statusbar.SetWidth(width)
	v.refresh()
}

// History returns the conversation so far, oldest first.
func (v *View) History() []domain.Turn {
	return v.history
}

// Sources returns the sources of the last answer.
func (v *View) Sources() []domain.RetrievalResult {
	return v.sources
}

// ShowingSources reports whether the sources panel is visible.
func (v *View) ShowingSources() bool {
	return v.showSources
}

// Pending reports whether an answer is in flight.
func (v *View) Pending() bool {
	return v.pending
}

// Err returns the last error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset focuses the input, keeping the conversation.
func (v *View) Reset() {
	v.input.Focus()
	v.err = nil
	v.statusbar.Clear()
}

// Clear forgets the conversation.
func (v *View) Clear() {
	v.history = nil
	v.sources = nil
	v.warnings = nil
	v.err = nil
	v.refresh()
}

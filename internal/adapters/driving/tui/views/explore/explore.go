// Package explore provides the passage explorer view for the TUI.
package explore

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/learnly-labs/learnly-engine/internal/adapters/driving/tui/components/input"
	"github.com/learnly-labs/learnly-engine/internal/adapters/driving/tui/components/list"
	"github.com/learnly-labs/learnly-engine/internal/adapters/driving/tui/components/status"
	"github.com/learnly-labs/learnly-engine/internal/adapters/driving/tui/keymap"
	"github.com/learnly-labs/learnly-engine/internal/adapters/driving/tui/messages"
	"github.com/learnly-labs/learnly-engine/internal/adapters/driving/tui/styles"
	"github.com/learnly-labs/learnly-engine/internal/core/domain"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driving"
)

// View shows the passages retrieval ranks for a query.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.PromptInput
	list      *list.PassageList
	statusbar *status.Bar

	retrieval driving.RetrievalService
	courseID  int64
	topK      int
	ctx       context.Context

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = typing a query, false = navigating passages
	expanded   bool
}

// NewView creates a new explore view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	retrieval driving.RetrievalService,
	courseID int64,
	topK int,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetCourse(courseID)
	bar.SetHints(km.ShortHelp())

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewPromptInput(s, "Query: ", "Find passages..."),
		list:       list.NewPassageList(s),
		statusbar:  bar,
		retrieval:  retrieval,
		courseID:   courseID,
		topK:       topK,
		ctx:        context.Background(),
		width:      80,
		height:     24,
		focusInput: true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the explore view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.RetrievalCompleted:
		v.handleRetrievalCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
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

	if keymap.Matches(keyStr, v.keymap.Back) {
		if v.expanded {
			v.expanded = false
			return v, nil
		}
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		if keymap.Matches(keyStr, v.keymap.Send) {
			query := strings.TrimSpace(v.input.Value())
			if query == "" {
				return v, nil
			}
			v.statusbar.SetState(status.StateThinking)
			v.focusInput = false
			v.input.Blur()
			return v, v.performRetrieval(query)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case keymap.Matches(keyStr, v.keymap.Send):
		if v.list.SelectedResult() != nil {
			v.expanded = !v.expanded
		}
	case keymap.Matches(keyStr, v.keymap.Up), keyStr == "k":
		v.list.MoveUp()
	case keymap.Matches(keyStr, v.keymap.Down), keyStr == "j":
		v.list.MoveDown()
	case keymap.Matches(keyStr, v.keymap.NewQuery):
		v.expanded = false
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	}
	return v, nil
}

func (v *View) performRetrieval(query string) tea.Cmd {
	retrieval, ctx := v.retrieval, v.ctx
	opts := domain.RetrievalOptions{K: v.topK}
	courseID := v.courseID
	return func() tea.Msg {
		if retrieval == nil {
			return messages.ErrorOccurred{Err: ErrNoRetrievalService}
		}
		return messages.RetrievalCompleted{
			Query:   query,
			Results: retrieval.RetrieveWithFallback(ctx, courseID, query, opts),
		}
	}
}

func (v *View) handleRetrievalCompleted(msg messages.RetrievalCompleted) {
	v.err = nil
	v.expanded = false
	v.list.SetResults(msg.Results)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetCount(len(msg.Results))
	v.statusbar.SetHints(v.keymap.ResultsHelp())

	v.focusInput = false
	v.input.Blur()
}

// View renders the explore view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("Explore passages"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.expanded {
		sections = append(sections, v.renderPassage())
	} else {
		sections = append(sections, v.list.View())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderPassage shows the full text of the selected passage.
func (v *View) renderPassage() string {
	r := v.list.SelectedResult()
	if r == nil {
		return ""
	}
	title := r.Source.DocumentTitle
	if title == "" {
		title = "(untitled)"
	}
	body := lipgloss.NewStyle().Width(max(v.width-6, 20)).Render(r.Content)
	return v.styles.Border.Padding(0, 1).Render(
		v.styles.Subtitle.Render(title) + "\n\n" + body)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10)
	v.statusbar.SetWidth(width)
}

// Query returns the current query text.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the query text.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Results returns the current passages.
func (v *View) Results() []domain.RetrievalResult {
	return v.list.Results()
}

// SelectedIndex returns the index of the selected passage.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Expanded reports whether the selected passage is shown in full.
func (v *View) Expanded() bool {
	return v.expanded
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset returns the view to query entry.
func (v *View) Reset() {
	v.focusInput = true
	v.expanded = false
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetResults(nil)
	v.err = nil
	v.statusbar.Clear()
	v.statusbar.SetHints(v.keymap.ShortHelp())
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/learnly-labs/learnly-engine/internal/adapters/driving/tui/keymap"
	"github.com/learnly-labs/learnly-engine/internal/adapters/driving/tui/messages"
	"github.com/learnly-labs/learnly-engine/internal/adapters/driving/tui/styles"
	"github.com/learnly-labs/learnly-engine/internal/adapters/driving/tui/views/chat"
	"github.com/learnly-labs/learnly-engine/internal/adapters/driving/tui/views/explore"
	"github.com/learnly-labs/learnly-engine/internal/adapters/driving/tui/views/menu"
	"github.com/learnly-labs/learnly-engine/internal/adapters/driving/tui/views/quiz"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// menuView is the main navigation menu.
	menuView *menu.View

	// chatView is the course conversation.
	chatView *chat.View

	// exploreView is the passage explorer. Nil without a retrieval service.
	exploreView *explore.View

	// quizView runs practice quizzes. Nil without quiz and grading services.
	quizView *quiz.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if ports == nil {
		return nil, fmt.Errorf("creating app: %w", ErrMissingAnswerService)
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	a := &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		chatView:    chat.NewView(s, km, ports.Answer, ports.Policy, ports.CourseID),
		currentView: messages.ViewMenu,
	}
	if ports.Retrieval != nil {
		a.exploreView = explore.NewView(s, km, ports.Retrieval, ports.CourseID, ports.TopK)
	}
	if ports.Quiz != nil && ports.Grading != nil {
		a.quizView = quiz.NewView(s, km, ports.Quiz, ports.Grading,
			ports.CourseID, ports.StudentID, ports.QuizQuestions)
	}
	a.menuView = menu.NewView(s, ports.CourseID, a.exploreView != nil, a.quizView != nil)
	return a, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	if a.exploreView != nil {
		a.exploreView.WithContext(ctx)
	}
	if a.quizView != nil {
		a.quizView.WithContext(ctx)
	}
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("learnly"),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewMenu
			}
			return a, nil
		}

	case messages.ViewChanged:
		return a, a.switchView(msg.View)

	case messages.ErrorOccurred:
		a.err = msg.Err

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward everything else to the active view
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
		a.err = a.chatView.Err()
	case messages.ViewExplore:
		if a.exploreView != nil {
			a.exploreView, cmd = a.exploreView.Update(msg)
			a.err = a.exploreView.Err()
		}
	case messages.ViewQuiz:
		if a.quizView != nil {
			a.quizView, cmd = a.quizView.Update(msg)
			a.err = a.quizView.Err()
		}
	case messages.ViewHelp:
		// Help view doesn't need to handle other messages
	}

	return a, cmd
}

// switchView activates a view, falling back to the menu for unavailable ones.
func (a *App) switchView(view messages.ViewType) tea.Cmd {
	a.currentView = view
	switch view {
	case messages.ViewChat:
		a.chatView.Reset()
		return a.chatView.Init()
	case messages.ViewExplore:
		if a.exploreView == nil {
			a.currentView = messages.ViewMenu
			return nil
		}
		a.exploreView.Reset()
		return a.exploreView.Init()
	case messages.ViewQuiz:
		if a.quizView == nil {
			a.currentView = messages.ViewMenu
			return nil
		}
		a.quizView.Reset()
		return a.quizView.Init()
	case messages.ViewMenu, messages.ViewHelp:
		// No initialisation needed
	}
	return nil
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewChat:
		return a.chatView.View()
	case messages.ViewExplore:
		if a.exploreView != nil {
			return a.exploreView.View()
		}
	case messages.ViewQuiz:
		if a.quizView != nil {
			return a.quizView.View()
		}
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewMenu:
	}
	return a.menuView.View()
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Navigation:
  esc         Back to Menu
  ctrl+c      Quit

Menu:
  j/k, ↑/↓    Navigate options
  enter       Select option
  q           Quit

Chat:
  (type)      Ask a question
  enter       Send
  ctrl+s      Show or hide sources
  ↑/↓         Scroll the conversation

Explore:
  enter       Search, then expand a passage
  j/k, ↑/↓    Navigate passages
  n           New query

Quiz:
  (type)      Topic, then each answer
  1-9         Pick a numbered option
  n           New quiz after grading

[esc] back to menu`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions and sizes every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	a.menuView.SetDimensions(width, height)
	a.chatView.SetDimensions(width, height)
	if a.exploreView != nil {
		a.exploreView.SetDimensions(width, height)
	}
	if a.quizView != nil {
		a.quizView.SetDimensions(width, height)
	}
}

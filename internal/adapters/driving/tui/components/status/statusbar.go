// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/learnly-labs/learnly-engine/internal/adapters/driving/tui/keymap"
	"github.com/learnly-labs/learnly-engine/internal/adapters/driving/tui/styles"
)

// State represents the current activity for display.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateError    State = "error"
	StateResults  State = "results"
)

// Bar displays course, activity and keybinding hints.
type Bar struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	hints      []key.Binding
	state      State
	message    string
	courseID   int64
	competency int
	count      int
	width      int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles:     s,
		keymap:     km,
		hints:      km.ShortHelp(),
		state:      StateReady,
		competency: -1,
		width:      80,
	}
}

// View renders the status bar.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	padding := b.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return b.styles.StatusBar.Width(b.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (b *Bar) renderLeft() string {
	parts := make([]string, 0, 3)
	if b.courseID > 0 {
		parts = append(parts, b.styles.Normal.Render(fmt.Sprintf("course %d", b.courseID)))
	}
	if b.competency >= 0 {
		parts = append(parts, b.styles.Normal.Render(fmt.Sprintf("competency %d", b.competency)))
	}

	switch b.state {
	case StateThinking:
		parts = append(parts, b.styles.Muted.Render("Thinking..."))
	case StateError:
		msg := "Error"
		if b.message != "" {
			msg = "Error: " + b.message
		}
		parts = append(parts, b.styles.Error.Render(msg))
	case StateResults:
		parts = append(parts, b.styles.Normal.Render(fmt.Sprintf("%d results", b.count)))
	case StateReady:
		if b.message != "" {
			parts = append(parts, b.styles.Muted.Render(b.message))
		}
	}
	return strings.Join(parts, b.styles.Muted.Render(" · "))
}

func (b *Bar) renderRight() string {
	hints := make([]string, 0, len(b.hints))
	for _, binding := range b.hints {
		h := binding.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return b.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetHints replaces the keybinding hints shown on the right.
func (b *Bar) SetHints(bindings []key.Binding) {
	b.hints = bindings
}

// SetState sets the current state.
func (b *Bar) SetState(state State) {
	b.state = state
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// SetMessage sets a custom message.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// Message returns the current message.
func (b *Bar) Message() string {
	return b.message
}

// SetCourse sets the course shown on the left.
func (b *Bar) SetCourse(courseID int64) {
	b.courseID = courseID
}

// SetCompetency sets the competency score. Negative hides it.
func (b *Bar) SetCompetency(score int) {
	b.competency = score
}

// SetCount sets the result count shown in the results state.
func (b *Bar) SetCount(count int) {
	b.count = count
}

// SetWidth sets the status bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Width returns the current width.
func (b *Bar) Width() int {
	return b.width
}

// Clear resets the activity, keeping course and competency.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
	b.count = 0
}

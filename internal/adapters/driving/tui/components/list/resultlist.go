// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	"github.com/learnly-labs/learnly-engine/internal/adapters/driving/tui/styles"
	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

// linesPerPassage is the rendered height of one passage.
const linesPerPassage = 2

// PassageList displays retrieved passages in a navigable list.
type PassageList struct {
	results  []domain.RetrievalResult
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewPassageList creates a new passage list component.
func NewPassageList(s *styles.Styles) *PassageList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &PassageList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// View renders the visible window of passages around the selection.
func (l *PassageList) View() string {
	if len(l.results) == 0 {
		return l.styles.Muted.Render("No passages")
	}

	lines := make([]string, 0, len(l.results)*linesPerPassage+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Passages (%d)", len(l.results))), "")

	visible := (l.height - 2) / linesPerPassage
	if visible < 1 {
		visible = 1
	}
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.results))

	for i := start; i < end; i++ {
		lines = append(lines, l.renderPassage(i, &l.results[i]))
	}
	return strings.Join(lines, "\n")
}

func (l *PassageList) renderPassage(index int, r *domain.RetrievalResult) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	title := r.Source.DocumentTitle
	if title == "" {
		title = "(untitled)"
	}
	title = Truncate(title, max(l.width-20, 10))
	score := fmt.Sprintf("%.2f", r.Score)

	var titleLine string
	if index == l.selected {
		titleLine = l.styles.Selected.Render(fmt.Sprintf("%s%s  %s", indicator, title, score))
	} else {
		titleLine = l.styles.Normal.Render(indicator+title+"  ") + l.styles.Muted.Render(score)
	}

	preview := strings.Join(strings.Fields(r.Content), " ")
	preview = Truncate(preview, max(l.width-6, 20))
	return titleLine + "\n" + l.styles.Muted.Render("    "+preview)
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// SetResults replaces the passages and resets the selection.
func (l *PassageList) SetResults(results []domain.RetrievalResult) {
	l.results = results
	l.selected = 0
}

// Results returns the current passages.
func (l *PassageList) Results() []domain.RetrievalResult {
	return l.results
}

// Selected returns the index of the selected passage.
func (l *PassageList) Selected() int {
	return l.selected
}

// SelectedResult returns the selected passage, or nil if none.
func (l *PassageList) SelectedResult() *domain.RetrievalResult {
	if l.selected < 0 || l.selected >= len(l.results) {
		return nil
	}
	return &l.results[l.selected]
}

// MoveUp moves the selection up.
func (l *PassageList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves the selection down.
func (l *PassageList) MoveDown() {
	if l.selected < len(l.results)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *PassageList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of passages.
func (l *PassageList) Count() int {
	return len(l.results)
}

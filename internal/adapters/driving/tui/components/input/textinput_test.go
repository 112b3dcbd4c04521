package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPromptInput(t *testing.T) {
	p := NewPromptInput(nil, "Ask: ", "Ask about the course...")

	require.NotNil(t, p)
	assert.True(t, p.Focused())
	assert.Equal(t, "Ask: ", p.Label())
	assert.Empty(t, p.Value())
	assert.NotNil(t, p.Init())
}

func TestPromptInput_Typing(t *testing.T) {
	p := NewPromptInput(nil, "Ask: ", "")

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("why")})

	assert.Equal(t, "why", p.Value())
}

func TestPromptInput_SetValueAndReset(t *testing.T) {
	p := NewPromptInput(nil, "Answer: ", "")

	p.SetValue("true")
	assert.Equal(t, "true", p.Value())

	p.Reset()
	assert.Empty(t, p.Value())
}

func TestPromptInput_FocusBlur(t *testing.T) {
	p := NewPromptInput(nil, "Ask: ", "")

	p.Blur()
	assert.False(t, p.Focused())

	p.Focus()
	assert.True(t, p.Focused())
}

func TestPromptInput_SetWidth(t *testing.T) {
	p := NewPromptInput(nil, "Ask: ", "")

	p.SetWidth(120)
	assert.Equal(t, 120, p.Width())

	p.SetWidth(5)
	assert.Equal(t, 5, p.Width())
	assert.Equal(t, 20, p.textinput.Width)
}

func TestPromptInput_ViewContainsLabel(t *testing.T) {
	p := NewPromptInput(nil, "Ask: ", "")
	p.SetValue("osmosis")

	view := p.View()

	assert.Contains(t, view, "Ask:")
	assert.Contains(t, view, "osmosis")
}

package chat

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnly-labs/learnly-engine/internal/adapters/driving/tui/messages"
	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

// mockAnswerService implements driving.AnswerService for testing.
type mockAnswerService struct {
	resp   *domain.AnswerResponse
	err    error
	gotReq domain.AnswerRequest
}

func (m *mockAnswerService) Answer(
	_ context.Context,
	req domain.AnswerRequest,
	_ domain.ModerationPolicy,
) (*domain.AnswerResponse, error) {
	m.gotReq = req
	return m.resp, m.err
}

func newTestView(svc *mockAnswerService) *View {
	v := NewView(nil, nil, svc, domain.DefaultModerationPolicy(), 7)
	v.SetDimensions(100, 30)
	return v
}

func typeText(v *View, s string) *View {
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return v
}

func TestView_NotReady(t *testing.T) {
	v := NewView(nil, nil, nil, domain.ModerationPolicy{}, 1)
	assert.Equal(t, "Initialising...", v.View())
}

func TestView_EmptyTranscriptHint(t *testing.T) {
	v := newTestView(&mockAnswerService{})

	assert.Contains(t, v.View(), "Ask a question about the course material.")
}

func TestView_SubmitAndAnswer(t *testing.T) {
	svc := &mockAnswerService{resp: &domain.AnswerResponse{
		Answer:           "Mitochondria make ATP.",
		Sources:          []domain.RetrievalResult{{Content: "x", Score: 0.8, Source: domain.SourceRef{DocumentTitle: "Cells"}}},
		ModerationPassed: true,
	}}
	v := newTestView(svc)
	v = typeText(v, "Where is ATP made?")

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, v.Pending())
	require.Len(t, v.History(), 1)
	assert.Equal(t, domain.RoleUser, v.History()[0].Role)

	msg := cmd()
	completed, ok := msg.(messages.AnswerCompleted)
	require.True(t, ok)
	assert.Equal(t, int64(7), svc.gotReq.CourseID)
	assert.Empty(t, svc.gotReq.History)

	v, _ = v.Update(completed)
	assert.False(t, v.Pending())
	require.Len(t, v.History(), 2)
	assert.Equal(t, "Mitochondria make ATP.", v.History()[1].Content)
	assert.Len(t, v.Sources(), 1)
	assert.Contains(t, v.View(), "Mitochondria make ATP.")
}

func TestView_HistoryIsPassedOnNextTurn(t *testing.T) {
	svc := &mockAnswerService{resp: &domain.AnswerResponse{Answer: "first answer"}}
	v := newTestView(svc)

	v = typeText(v, "one")
	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v, _ = v.Update(cmd())

	v = typeText(v, "two")
	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	cmd()

	require.Len(t, svc.gotReq.History, 2)
	assert.Equal(t, "one", svc.gotReq.History[0].Content)
	assert.Equal(t, "first answer", svc.gotReq.History[1].Content)
	assert.Equal(t, "two", svc.gotReq.Query)
}

func TestView_EnterIgnoredWhenEmptyOrPending(t *testing.T) {
	v := newTestView(&mockAnswerService{resp: &domain.AnswerResponse{}})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)

	v = typeText(v, "q")
	v, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	v = typeText(v, "again")
	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Len(t, v.History(), 1)
}

func TestView_AnswerError(t *testing.T) {
	v := newTestView(&mockAnswerService{err: domain.ErrProviderUnavailable})
	v = typeText(v, "q")
	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	v, _ = v.Update(cmd())

	assert.ErrorIs(t, v.Err(), domain.ErrProviderUnavailable)
	assert.False(t, v.Pending())
	assert.Len(t, v.History(), 1)
	assert.Contains(t, v.View(), "Error:")
}

func TestView_NilResponseIsAnError(t *testing.T) {
	v := newTestView(&mockAnswerService{})

	v, _ = v.Update(messages.AnswerCompleted{Query: "q"})

	assert.ErrorIs(t, v.Err(), ErrEmptyAnswer)
}

func TestView_NoService(t *testing.T) {
	v := NewView(nil, nil, nil, domain.ModerationPolicy{}, 1)
	v.SetDimensions(80, 24)
	v = typeText(v, "q")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, messages.ErrorOccurred{Err: ErrNoAnswerService}, cmd())
}

func TestView_ModerationWarningsShown(t *testing.T) {
	v := newTestView(&mockAnswerService{})

	v, _ = v.Update(messages.AnswerCompleted{Response: &domain.AnswerResponse{
		Answer:             "text",
		ModerationWarnings: []string{"Potential violence content detected"},
	}})

	assert.Contains(t, v.View(), "Potential violence content detected")
}

func TestView_ToggleSources(t *testing.T) {
	v := newTestView(&mockAnswerService{})
	v, _ = v.Update(messages.AnswerCompleted{Response: &domain.AnswerResponse{
		Answer:  "text",
		Sources: []domain.RetrievalResult{{Score: 0.5, Source: domain.SourceRef{DocumentTitle: "Plants"}}},
	}})
	assert.NotContains(t, v.View(), "[1] Plants")

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.True(t, v.ShowingSources())
	assert.Contains(t, v.View(), "[1] Plants (0.50)")
}

func TestView_EscGoesToMenu(t *testing.T) {
	v := newTestView(&mockAnswerService{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_ErrorOccurred(t *testing.T) {
	v := newTestView(&mockAnswerService{})

	v, _ = v.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, v.Err(), "boom")
	v.Reset()
	assert.NoError(t, v.Err())
}

func TestView_Clear(t *testing.T) {
	v := newTestView(&mockAnswerService{})
	v, _ = v.Update(messages.AnswerCompleted{Response: &domain.AnswerResponse{Answer: "a"}})

	v.Clear()

	assert.Empty(t, v.History())
	assert.Empty(t, v.Sources())
}

package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnly-labs/learnly-engine/internal/core/ports/driven"
)

func newTestPromptStore(t *testing.T) (*PromptStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	store, err := NewPromptStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".learnly", "prompts"), store.Dir())
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	store, dir := newTestPromptStore(t)

	_, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)

	for _, f := range []string{"answer_system.txt", "answer.txt", "quiz.txt", "README.md"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "expected file %s to exist", f)
	}
}

func TestPromptStore_Load_ReturnsDefaultContent(t *testing.T) {
	store, _ := newTestPromptStore(t)

	prompt, err := store.Load(driven.PromptQuiz)

	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(driven.DefaultPrompts()[driven.PromptQuiz]), prompt)
	assert.Contains(t, prompt, "%[1]d")
}

func TestPromptStore_Load_ReturnsCustomContent(t *testing.T) {
	store, dir := newTestPromptStore(t)
	custom := "Answer briefly.\n%[2]s\nQ: %[3]s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "answer.txt"), []byte(custom+"\n\n"), 0600))

	prompt, err := store.Load(driven.PromptAnswer)

	require.NoError(t, err)
	assert.Equal(t, custom, prompt)
}

func TestPromptStore_Load_FallsBackToDefault(t *testing.T) {
	store, dir := newTestPromptStore(t)
	_, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "answer_system.txt")))

	prompt, err := store.Load(driven.PromptAnswerSystem)

	require.NoError(t, err)
	assert.Equal(t, driven.DefaultPrompts()[driven.PromptAnswerSystem], prompt)
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, _ := newTestPromptStore(t)

	_, err := store.Load("does_not_exist")

	assert.Error(t, err)
}

func TestPromptStore_Load_InitFailureUsesDefaults(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))
	store, err := NewPromptStore(filepath.Join(blocker, "prompts"))
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptQuiz)
	require.NoError(t, err)
	assert.Equal(t, driven.DefaultPrompts()[driven.PromptQuiz], prompt)

	_, err = store.Load("unknown")
	assert.ErrorContains(t, err, "init failed")
}

func TestPromptStore_Reload_ClearsCache(t *testing.T) {
	store, dir := newTestPromptStore(t)
	path := filepath.Join(dir, "quiz.txt")

	_, err := store.Load(driven.PromptQuiz)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("edited"), 0600))

	cached, err := store.Load(driven.PromptQuiz)
	require.NoError(t, err)
	assert.NotEqual(t, "edited", cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptQuiz)
	require.NoError(t, err)
	assert.Equal(t, "edited", fresh)
}

func TestPromptStore_DoesNotOverwriteExistingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quiz.txt")
	require.NoError(t, os.WriteFile(path, []byte("mine"), 0600))
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptQuiz)

	require.NoError(t, err)
	assert.Equal(t, "mine", prompt)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mine", string(data))
}

func TestPromptStore_Load_ConcurrentAccess(t *testing.T) {
	store, _ := newTestPromptStore(t)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, name := range []string{driven.PromptAnswerSystem, driven.PromptAnswer, driven.PromptQuiz} {
				p, err := store.Load(name)
				assert.NoError(t, err)
				assert.NotEmpty(t, p)
			}
		}()
	}
	wg.Wait()
}

func TestShouldReload(t *testing.T) {
	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"write prompt", fsnotify.Event{Name: "/p/quiz.txt", Op: fsnotify.Write}, true},
		{"create prompt", fsnotify.Event{Name: "/p/answer.txt", Op: fsnotify.Create}, true},
		{"remove prompt", fsnotify.Event{Name: "/p/answer.txt", Op: fsnotify.Remove}, true},
		{"rename prompt", fsnotify.Event{Name: "/p/answer.txt", Op: fsnotify.Rename}, true},
		{"chmod prompt", fsnotify.Event{Name: "/p/quiz.txt", Op: fsnotify.Chmod}, false},
		{"readme", fsnotify.Event{Name: "/p/README.md", Op: fsnotify.Write}, false},
		{"editor swap file", fsnotify.Event{Name: "/p/.quiz.txt", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldReload(tt.ev))
		})
	}
}

func TestPromptStore_Watch_ReloadsOnEdit(t *testing.T) {
	store, dir := newTestPromptStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, store.Watch(ctx))
	_, err := store.Load(driven.PromptQuiz)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "quiz.txt"), []byte("watched edit"), 0600))

	assert.Eventually(t, func() bool {
		p, err := store.Load(driven.PromptQuiz)
		return err == nil && p == "watched edit"
	}, 5*time.Second, 20*time.Millisecond)
}
